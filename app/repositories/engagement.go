package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elitetable/elitetable/app/models"
)

// ListFavoriteRestaurants returns the user's favorites, most recently added first.
func (s *GormStorage) ListFavoriteRestaurants(ctx context.Context, userID string) ([]models.Restaurant, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	out := []models.Restaurant{}
	err := db.Model(&models.Restaurant{}).
		Joins("JOIN favorites ON favorites.restaurant_id = restaurants.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&out).Error
	return out, translate(err)
}

func (s *GormStorage) IsFavorite(ctx context.Context, userID, restaurantID string) (bool, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var n int64
	err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Count(&n).Error
	return n > 0, translate(err)
}

func (s *GormStorage) CreateFavorite(ctx context.Context, f *models.Favorite) error {
	return create(ctx, s, f)
}

// DeleteFavorite succeeds when the pair does not exist.
func (s *GormStorage) DeleteFavorite(ctx context.Context, userID, restaurantID string) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	err := db.Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).Delete(&models.Favorite{}).Error
	return translate(err)
}

func (s *GormStorage) ListReviews(ctx context.Context, restaurantID string) ([]models.Review, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	out := []models.Review{}
	err := db.Where("restaurant_id = ?", restaurantID).Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}

// CreateReview inserts the review and sets the restaurant's rating to the
// average of all its reviews, in one transaction.
func (s *GormStorage) CreateReview(ctx context.Context, r *models.Review) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(r).Error; err != nil {
			return err
		}
		var avg struct{ Avg float64 }
		if err := tx.Model(&models.Review{}).
			Select("AVG(rating) AS avg").
			Where("restaurant_id = ?", r.RestaurantID).
			Scan(&avg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Restaurant{}).
			Where("id = ?", r.RestaurantID).
			Update("rating", roundTo(avg.Avg, 2)).Error
	})
	return translate(err)
}

func roundTo(v float64, places int) float64 {
	p := 1.0
	for i := 0; i < places; i++ {
		p *= 10
	}
	if v < 0 {
		return float64(int64(v*p-0.5)) / p
	}
	return float64(int64(v*p+0.5)) / p
}
