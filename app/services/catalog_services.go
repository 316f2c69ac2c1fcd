package services

import (
	"context"
	"errors"
	"time"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/app/requests"
	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/auth"
	"github.com/elitetable/elitetable/pkg/cache"
	"github.com/elitetable/elitetable/pkg/event"
	"github.com/elitetable/elitetable/pkg/logger"
)

// GovernoratesCacheKey holds the cached governorate list; seeding forgets it.
const GovernoratesCacheKey = "elitetable:governorates"

const governoratesTTL = time.Hour

// CatalogService covers locations, restaurants, menus and reviews.
type CatalogService struct {
	store  repositories.Storage
	events *event.Bus
}

func NewCatalogService(store repositories.Storage, events *event.Bus) *CatalogService {
	return &CatalogService{store: store, events: events}
}

// ─── Locations ────────────────────────────────────────────────────────────────

func (s *CatalogService) Governorates(ctx context.Context) ([]models.Governorate, error) {
	var out []models.Governorate
	if cache.Get(ctx, GovernoratesCacheKey, &out) {
		return out, nil
	}
	out, err := s.store.ListGovernorates(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := cache.Set(ctx, GovernoratesCacheKey, out, governoratesTTL); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache governorates", "error", err)
	}
	return out, nil
}

func (s *CatalogService) Districts(ctx context.Context, governorateID string) ([]models.District, error) {
	out, err := s.store.ListDistricts(ctx, governorateID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// checkLocation verifies the governorate and district exist and agree.
func (s *CatalogService) checkLocation(ctx context.Context, governorateID, districtID *string) error {
	if governorateID != nil {
		if _, err := s.store.GetGovernorate(ctx, *governorateID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperr.Validation(map[string]string{"governorateId": "The selected governorate is invalid."})
			}
			return apperr.Internal(err)
		}
	}
	if districtID != nil {
		d, err := s.store.GetDistrict(ctx, *districtID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.Validation(map[string]string{"districtId": "The selected district is invalid."})
		}
		if err != nil {
			return apperr.Internal(err)
		}
		if governorateID != nil && d.GovernorateID != *governorateID {
			return apperr.Validation(map[string]string{"districtId": "The district does not belong to the governorate."})
		}
	}
	return nil
}

// ─── Restaurants ──────────────────────────────────────────────────────────────

// Restaurants is the public listing; only active restaurants are returned.
func (s *CatalogService) Restaurants(ctx context.Context, f repositories.RestaurantFilter) ([]models.Restaurant, error) {
	f.Status = models.RestaurantActive
	f.OwnerID = ""
	out, err := s.store.ListRestaurants(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// Restaurant returns an active restaurant. Pending and suspended ones are
// visible only to their owner and admins; everyone else gets NotFound.
func (s *CatalogService) Restaurant(ctx context.Context, p *auth.Principal, id string) (*models.Restaurant, error) {
	r, err := s.store.GetRestaurant(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Restaurant")
	}
	if r.Status != models.RestaurantActive && !canManage(p, r) {
		return nil, apperr.NotFound("Restaurant")
	}
	return r, nil
}

// OwnedRestaurants lists every restaurant the caller owns, in any status.
func (s *CatalogService) OwnedRestaurants(ctx context.Context, p *auth.Principal) ([]models.Restaurant, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	out, err := s.store.ListRestaurants(ctx, repositories.RestaurantFilter{OwnerID: p.UserID})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// CreateRestaurant registers a restaurant owned by the caller. It starts
// pending until an admin activates it.
func (s *CatalogService) CreateRestaurant(ctx context.Context, p *auth.Principal, in requests.RestaurantInput) (*models.Restaurant, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := s.checkLocation(ctx, in.GovernorateID, in.DistrictID); err != nil {
		return nil, err
	}
	r := &models.Restaurant{
		OwnerID:       p.UserID,
		Name:          in.Name,
		Description:   in.Description,
		Cuisine:       in.Cuisine,
		Address:       in.Address,
		Phone:         in.Phone,
		Image:         in.Image,
		GovernorateID: in.GovernorateID,
		DistrictID:    in.DistrictID,
		PriceRange:    in.PriceRange,
		Rating:        models.DefaultRating,
		Status:        models.RestaurantPending,
		OpeningHours:  in.OpeningHours,
	}
	if err := s.store.CreateRestaurant(ctx, r); err != nil {
		return nil, storeErr(err, "Restaurant")
	}
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityRestaurantCreated,
		Description: "Restaurant created: " + r.Name, EntityType: "restaurant", EntityID: r.ID,
	})
	return r, nil
}

// UpdateRestaurant edits descriptive fields. Owner or admin only; status
// goes through AdminService.SetRestaurantStatus.
func (s *CatalogService) UpdateRestaurant(ctx context.Context, p *auth.Principal, id string, in requests.RestaurantPatch) (*models.Restaurant, error) {
	current, err := managedRestaurant(ctx, s.store, p, id)
	if err != nil {
		return nil, err
	}

	gov, dist := current.GovernorateID, current.DistrictID
	if in.GovernorateID != nil {
		gov = in.GovernorateID
	}
	if in.DistrictID != nil {
		dist = in.DistrictID
	}
	if in.GovernorateID != nil || in.DistrictID != nil {
		if err := s.checkLocation(ctx, gov, dist); err != nil {
			return nil, err
		}
	}

	cols := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("name", in.Name)
	set("description", in.Description)
	set("cuisine", in.Cuisine)
	set("address", in.Address)
	set("phone", in.Phone)
	set("image", in.Image)
	set("governorate_id", in.GovernorateID)
	set("district_id", in.DistrictID)
	set("price_range", in.PriceRange)
	set("opening_hours", in.OpeningHours)

	r, err := s.store.UpdateRestaurant(ctx, id, cols)
	if err != nil {
		return nil, storeErr(err, "Restaurant")
	}
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityRestaurantUpdated,
		Description: "Restaurant updated: " + r.Name, EntityType: "restaurant", EntityID: r.ID,
	})
	return r, nil
}

// ─── Menu ─────────────────────────────────────────────────────────────────────

func (s *CatalogService) Menu(ctx context.Context, p *auth.Principal, restaurantID string) ([]models.MenuItem, error) {
	if _, err := s.Restaurant(ctx, p, restaurantID); err != nil {
		return nil, err
	}
	out, err := s.store.ListMenuItems(ctx, restaurantID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *CatalogService) CreateMenuItem(ctx context.Context, p *auth.Principal, in requests.MenuItemInput) (*models.MenuItem, error) {
	if _, err := managedRestaurant(ctx, s.store, p, in.RestaurantID); err != nil {
		return nil, err
	}
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	m := &models.MenuItem{
		RestaurantID: in.RestaurantID,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Category:     in.Category,
		Image:        in.Image,
		Available:    available,
	}
	if err := s.store.CreateMenuItem(ctx, m); err != nil {
		return nil, storeErr(err, "Menu item")
	}
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityMenuItemCreated,
		Description: "Menu item created: " + m.Name, EntityType: "menu_item", EntityID: m.ID,
	})
	return m, nil
}

// managedMenuItem loads item id and checks p manages its restaurant.
func (s *CatalogService) managedMenuItem(ctx context.Context, p *auth.Principal, id string) (*models.MenuItem, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	m, err := s.store.GetMenuItem(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Menu item")
	}
	if _, err := managedRestaurant(ctx, s.store, p, m.RestaurantID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CatalogService) UpdateMenuItem(ctx context.Context, p *auth.Principal, id string, in requests.MenuItemPatch) (*models.MenuItem, error) {
	if _, err := s.managedMenuItem(ctx, p, id); err != nil {
		return nil, err
	}
	cols := map[string]any{}
	if in.Name != nil {
		cols["name"] = *in.Name
	}
	if in.Description != nil {
		cols["description"] = *in.Description
	}
	if in.Price != nil {
		cols["price"] = *in.Price
	}
	if in.Category != nil {
		cols["category"] = *in.Category
	}
	if in.Image != nil {
		cols["image"] = *in.Image
	}
	if in.Available != nil {
		cols["available"] = *in.Available
	}

	m, err := s.store.UpdateMenuItem(ctx, id, cols)
	if err != nil {
		return nil, storeErr(err, "Menu item")
	}
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityMenuItemUpdated,
		Description: "Menu item updated: " + m.Name, EntityType: "menu_item", EntityID: m.ID,
	})
	return m, nil
}

// DeleteMenuItem removes an item. Items already ordered are kept for the
// order history; mark them unavailable instead.
func (s *CatalogService) DeleteMenuItem(ctx context.Context, p *auth.Principal, id string) error {
	m, err := s.managedMenuItem(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteMenuItem(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrReference) {
			return apperr.Invalid("Menu item has been ordered and cannot be deleted; mark it unavailable instead")
		}
		return apperr.Internal(err)
	}
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityMenuItemDeleted,
		Description: "Menu item deleted: " + m.Name, EntityType: "menu_item", EntityID: m.ID,
	})
	return nil
}

// ─── Reviews ──────────────────────────────────────────────────────────────────

func (s *CatalogService) Reviews(ctx context.Context, p *auth.Principal, restaurantID string) ([]models.Review, error) {
	if _, err := s.Restaurant(ctx, p, restaurantID); err != nil {
		return nil, err
	}
	out, err := s.store.ListReviews(ctx, restaurantID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// CreateReview stores a review and recomputes the restaurant's rating.
func (s *CatalogService) CreateReview(ctx context.Context, p *auth.Principal, restaurantID string, in requests.ReviewInput) (*models.Review, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	r, err := s.store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, storeErr(err, "Restaurant")
	}
	rv := &models.Review{UserID: p.UserID, RestaurantID: r.ID, Rating: in.Rating, Comment: in.Comment}
	if err := s.store.CreateReview(ctx, rv); err != nil {
		return nil, storeErr(err, "Review")
	}
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityReviewCreated,
		Description: "Review posted for " + r.Name, EntityType: "review", EntityID: rv.ID,
	})
	notify(ctx, s.events, Notice{
		UserID: r.OwnerID, Title: "New review",
		Message: "Your restaurant " + r.Name + " received a new review", Type: "info",
	})
	return rv, nil
}
