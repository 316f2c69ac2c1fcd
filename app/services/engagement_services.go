package services

import (
	"context"
	"errors"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/app/requests"
	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/auth"
	"github.com/elitetable/elitetable/pkg/event"
)

// EngagementService covers favorites and the caller's notifications.
// Everything is scoped to the principal; there is no way to name another
// user.
type EngagementService struct {
	store  repositories.Storage
	events *event.Bus
}

func NewEngagementService(store repositories.Storage, events *event.Bus) *EngagementService {
	return &EngagementService{store: store, events: events}
}

func (s *EngagementService) Favorites(ctx context.Context, p *auth.Principal) ([]models.Restaurant, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	out, err := s.store.ListFavoriteRestaurants(ctx, p.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *EngagementService) IsFavorite(ctx context.Context, p *auth.Principal, restaurantID string) (bool, error) {
	if err := requirePrincipal(p); err != nil {
		return false, err
	}
	ok, err := s.store.IsFavorite(ctx, p.UserID, restaurantID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return ok, nil
}

func (s *EngagementService) AddFavorite(ctx context.Context, p *auth.Principal, in requests.FavoriteInput) (*models.Favorite, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRestaurant(ctx, in.RestaurantID); err != nil {
		return nil, storeErr(err, "Restaurant")
	}
	f := &models.Favorite{UserID: p.UserID, RestaurantID: in.RestaurantID}
	if err := s.store.CreateFavorite(ctx, f); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("Restaurant is already a favorite")
		}
		return nil, storeErr(err, "Favorite")
	}
	return f, nil
}

// RemoveFavorite succeeds whether or not the pair existed.
func (s *EngagementService) RemoveFavorite(ctx context.Context, p *auth.Principal, restaurantID string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if err := s.store.DeleteFavorite(ctx, p.UserID, restaurantID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Notifications returns the caller's notifications plus broadcasts.
func (s *EngagementService) Notifications(ctx context.Context, p *auth.Principal) ([]models.Notification, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	out, err := s.store.ListNotifications(ctx, p.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// MarkNotificationRead flags a notification as read. A broadcast has one
// shared read flag, so only admins may set it.
func (s *EngagementService) MarkNotificationRead(ctx context.Context, p *auth.Principal, id string) (*models.Notification, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Notification")
	}
	if n.UserID != nil && !p.Is(*n.UserID) && !p.IsAdmin() {
		return nil, apperr.NotFound("Notification")
	}
	if n.UserID == nil && !p.IsAdmin() {
		return nil, apperr.Forbidden("Broadcast notifications can only be marked read by an admin")
	}
	n, err = s.store.MarkNotificationRead(ctx, id)
	return n, storeErr(err, "Notification")
}
