// Package services holds EliteTable's business rules.
//
// Every service takes the caller's *auth.Principal explicitly; nothing reads
// identity from globals. Services talk to the database only through
// repositories.Storage and report failures as *apperr.Error values.
package services

import (
	"context"
	"errors"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/auth"
)

// storeErr maps repository sentinels onto application errors. what names
// the entity in the client message.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound(what)
	case errors.Is(err, repositories.ErrDuplicate):
		return apperr.Conflict(what + " already exists")
	case errors.Is(err, repositories.ErrReference):
		return apperr.Invalid("%s references a record that does not exist", what)
	}
	return apperr.Internal(err)
}

func requirePrincipal(p *auth.Principal) error {
	if p == nil {
		return apperr.Unauthenticated("")
	}
	return nil
}

// canManage reports whether p may change restaurant r or anything it owns.
func canManage(p *auth.Principal, r *models.Restaurant) bool {
	return p.IsAdmin() || p.Is(r.OwnerID)
}

// managedRestaurant loads restaurant id and checks p may manage it.
func managedRestaurant(ctx context.Context, store repositories.Storage, p *auth.Principal, id string) (*models.Restaurant, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	r, err := store.GetRestaurant(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Restaurant")
	}
	if !canManage(p, r) {
		return nil, apperr.Forbidden("You do not manage this restaurant")
	}
	return r, nil
}

// restaurantScope is the set of restaurants whose bookings p may see as
// staff. nil means every restaurant (admin).
func restaurantScope(ctx context.Context, store repositories.Storage, p *auth.Principal) ([]string, error) {
	if p.IsAdmin() {
		return nil, nil
	}
	ids, err := store.RestaurantIDsByOwner(ctx, p.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// strPtr turns "" into nil.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
