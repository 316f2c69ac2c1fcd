package repositories

import (
	"context"
	"strings"

	"github.com/elitetable/elitetable/app/models"
)

func (s *GormStorage) ListGovernorates(ctx context.Context) ([]models.Governorate, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var out []models.Governorate
	err := db.Order("name ASC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStorage) GetGovernorate(ctx context.Context, id string) (*models.Governorate, error) {
	return getByID[models.Governorate](ctx, s, id)
}

// ListDistricts returns every district when governorateID is empty.
func (s *GormStorage) ListDistricts(ctx context.Context, governorateID string) ([]models.District, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	q := db.Order("name ASC")
	if governorateID != "" {
		q = q.Where("governorate_id = ?", governorateID)
	}
	var out []models.District
	return out, translate(q.Find(&out).Error)
}

func (s *GormStorage) GetDistrict(ctx context.Context, id string) (*models.District, error) {
	return getByID[models.District](ctx, s, id)
}

func (s *GormStorage) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	return getByID[models.Restaurant](ctx, s, id)
}

func (s *GormStorage) ListRestaurants(ctx context.Context, f RestaurantFilter) ([]models.Restaurant, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	q := db.Model(&models.Restaurant{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.GovernorateID != "" {
		q = q.Where("governorate_id = ?", f.GovernorateID)
	}
	if f.DistrictID != "" {
		q = q.Where("district_id = ?", f.DistrictID)
	}
	if f.Cuisine != "" {
		q = q.Where("LOWER(cuisine) = ?", strings.ToLower(f.Cuisine))
	}
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(cuisine) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", like, like, like)
	}

	var out []models.Restaurant
	return out, translate(q.Order("created_at DESC").Find(&out).Error)
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func (s *GormStorage) RestaurantIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	ids := []string{}
	err := db.Model(&models.Restaurant{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error
	return ids, translate(err)
}

func (s *GormStorage) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	return create(ctx, s, r)
}

func (s *GormStorage) UpdateRestaurant(ctx context.Context, id string, columns map[string]any) (*models.Restaurant, error) {
	return updateByID[models.Restaurant](ctx, s, id, columns)
}

func (s *GormStorage) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	return getByID[models.MenuItem](ctx, s, id)
}

// ListMenuItems orders by category, then name.
func (s *GormStorage) ListMenuItems(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var out []models.MenuItem
	err := db.Where("restaurant_id = ?", restaurantID).Order("category ASC").Order("name ASC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStorage) MenuItemsByID(ctx context.Context, ids []string) (map[string]models.MenuItem, error) {
	out := make(map[string]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	db, cancel := s.conn(ctx)
	defer cancel()
	var rows []models.MenuItem
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	for _, m := range rows {
		out[m.ID] = m
	}
	return out, nil
}

func (s *GormStorage) CreateMenuItem(ctx context.Context, m *models.MenuItem) error {
	return create(ctx, s, m)
}

func (s *GormStorage) UpdateMenuItem(ctx context.Context, id string, columns map[string]any) (*models.MenuItem, error) {
	return updateByID[models.MenuItem](ctx, s, id, columns)
}

// DeleteMenuItem succeeds for a missing row. Items referenced by past
// orders are kept and the call fails with ErrReference.
func (s *GormStorage) DeleteMenuItem(ctx context.Context, id string) error {
	return deleteByID[models.MenuItem](ctx, s, id)
}
