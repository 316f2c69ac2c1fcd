package repositories

import (
	"context"
	"time"

	"github.com/elitetable/elitetable/app/models"
)

func (s *GormStorage) CreateActivityLog(ctx context.Context, l *models.ActivityLog) error {
	return create(ctx, s, l)
}

// ListActivityLogs returns the newest entries; limit <= 0 means 100.
func (s *GormStorage) ListActivityLogs(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	db, cancel := s.conn(ctx)
	defer cancel()
	out := []models.ActivityLog{}
	err := db.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, translate(err)
}

func (s *GormStorage) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	return getByID[models.Notification](ctx, s, id)
}

// ListNotifications returns the user's own notifications plus broadcasts.
func (s *GormStorage) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	out := []models.Notification{}
	err := db.Where("user_id = ? OR user_id IS NULL", userID).Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStorage) ListAllNotifications(ctx context.Context) ([]models.Notification, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	out := []models.Notification{}
	err := db.Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStorage) CreateNotification(ctx context.Context, n *models.Notification) error {
	return create(ctx, s, n)
}

func (s *GormStorage) MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error) {
	return updateByID[models.Notification](ctx, s, id, map[string]any{"read": true})
}

func (s *GormStorage) SumRevenue(ctx context.Context) (float64, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var sum struct{ Total float64 }
	err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Where("status <> ?", models.OrderCancelled).
		Scan(&sum).Error
	return sum.Total, translate(err)
}

// RevenueRows returns non-cancelled orders created at or after since.
// Day bucketing happens in the service so it behaves the same on every
// dialect.
func (s *GormStorage) RevenueRows(ctx context.Context, since time.Time) ([]RevenueRow, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	rows := []RevenueRow{}
	err := db.Model(&models.Order{}).
		Select("created_at, total").
		Where("status <> ? AND created_at >= ?", models.OrderCancelled, since).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func countByRestaurant(ctx context.Context, s *GormStorage, model any) ([]RestaurantCount, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	out := []RestaurantCount{}
	err := db.Model(model).
		Select("restaurant_id, COUNT(*) AS count").
		Group("restaurant_id").
		Scan(&out).Error
	return out, translate(err)
}

func (s *GormStorage) ReservationCountsByRestaurant(ctx context.Context) ([]RestaurantCount, error) {
	return countByRestaurant(ctx, s, &models.Reservation{})
}

func (s *GormStorage) OrderCountsByRestaurant(ctx context.Context) ([]RestaurantCount, error) {
	return countByRestaurant(ctx, s, &models.Order{})
}
