package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elitetable/elitetable/app/models"
)

func (s *GormStorage) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	return getByID[models.Reservation](ctx, s, id)
}

// ListReservations filters by user, by restaurant, or both when both are set.
func (s *GormStorage) ListReservations(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	out := []models.Reservation{}
	if f.RestaurantIDs != nil && len(f.RestaurantIDs) == 0 {
		return out, nil
	}
	db, cancel := s.conn(ctx)
	defer cancel()

	q := db.Model(&models.Reservation{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.RestaurantID != "" {
		q = q.Where("restaurant_id = ?", f.RestaurantID)
	}
	if f.RestaurantIDs != nil {
		q = q.Where("restaurant_id IN ?", f.RestaurantIDs)
	}
	return out, translate(q.Order("created_at DESC").Find(&out).Error)
}

func (s *GormStorage) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return create(ctx, s, r)
}

// UpdateReservation never writes confirmation_code.
func (s *GormStorage) UpdateReservation(ctx context.Context, id string, columns map[string]any) (*models.Reservation, error) {
	delete(columns, "confirmation_code")
	return updateByID[models.Reservation](ctx, s, id, columns)
}

func (s *GormStorage) ReservationCodeExists(ctx context.Context, code string) (bool, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var n int64
	err := db.Model(&models.Reservation{}).Where("confirmation_code = ?", code).Count(&n).Error
	return n > 0, translate(err)
}

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC").Order("id ASC") }

func (s *GormStorage) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var o models.Order
	if err := db.Preload("Items", orderedItems).Where("id = ?", id).Take(&o).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (s *GormStorage) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	out := []models.Order{}
	if f.RestaurantIDs != nil && len(f.RestaurantIDs) == 0 {
		return out, nil
	}
	db, cancel := s.conn(ctx)
	defer cancel()

	q := db.Model(&models.Order{}).Preload("Items", orderedItems)
	if f.RestaurantID != "" {
		q = q.Where("restaurant_id = ?", f.RestaurantID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.RestaurantIDs != nil {
		q = q.Where("restaurant_id IN ?", f.RestaurantIDs)
	}
	return out, translate(q.Order("created_at DESC").Find(&out).Error)
}

// CreateOrder writes the order and its items in one transaction.
func (s *GormStorage) CreateOrder(ctx context.Context, o *models.Order) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return err
		}
		if len(o.Items) == 0 {
			return nil
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
		}
		return tx.Omit(clause.Associations).Create(&o.Items).Error
	})
	return translate(err)
}

func (s *GormStorage) UpdateOrder(ctx context.Context, id string, columns map[string]any) (*models.Order, error) {
	return updateByID[models.Order](ctx, s, id, columns, "Items")
}

func (s *GormStorage) CountReservationsByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, s, &models.Reservation{})
}

func (s *GormStorage) CountOrdersByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, s, &models.Order{})
}

func (s *GormStorage) CountRestaurantsByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, s, &models.Restaurant{})
}
