package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/elitetable/elitetable/app/models"
)

func (s *GormStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	return getByID[models.User](ctx, s, id)
}

func (s *GormStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var u models.User
	if err := db.Where("email = ?", email).Take(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var out []models.User
	err := db.Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStorage) CreateUser(ctx context.Context, u *models.User) error {
	return create(ctx, s, u)
}

func (s *GormStorage) UpdateUser(ctx context.Context, id string, columns map[string]any) (*models.User, error) {
	return updateByID[models.User](ctx, s, id, columns)
}

// DeleteUser removes the user together with the rows that only make sense
// for them: favorites and targeted notifications. Activity logs keep their
// history with the user reference cleared. Callers check UserHoldings first;
// a remaining restaurant, booking, order or review makes the delete fail
// with ErrReference.
func (s *GormStorage) DeleteUser(ctx context.Context, id string) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ActivityLog{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	})
	return translate(err)
}

func (s *GormStorage) UserHoldings(ctx context.Context, id string) (UserHoldings, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var h UserHoldings
	counts := []struct {
		model  any
		column string
		dest   *int64
	}{
		{&models.Restaurant{}, "owner_id", &h.Restaurants},
		{&models.Reservation{}, "user_id", &h.Reservations},
		{&models.Order{}, "user_id", &h.Orders},
		{&models.Review{}, "user_id", &h.Reviews},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.column+" = ?", id).Count(c.dest).Error; err != nil {
			return UserHoldings{}, translate(err)
		}
	}
	return h, nil
}

func (s *GormStorage) CountUsers(ctx context.Context) (int64, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var n int64
	err := db.Model(&models.User{}).Count(&n).Error
	return n, translate(err)
}
