// Package requests holds the client-supplied input for every write
// operation. Server-assigned fields (id, createdAt, ownerId, rating, status
// on create, confirmationCode) have no field here and so cannot be set.
package requests

import (
	"strings"

	"github.com/elitetable/elitetable/app/models"
)

type RegisterInput struct {
	Email    string  `json:"email"    validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Name     string  `json:"name"     validate:"required,max=255"`
	Phone    *string `json:"phone"    validate:"nullable,max=50"`
	Role     string  `json:"role"`
}

// EffectiveRole coerces anything but restaurant_owner to customer, so a
// client can never self-assign admin.
func (in RegisterInput) EffectiveRole() string {
	if in.Role == models.RoleRestaurantOwner {
		return models.RoleRestaurantOwner
	}
	return models.RoleCustomer
}

// NormalizedEmail is the lower-cased, trimmed email used as the login key.
func (in RegisterInput) NormalizedEmail() string { return NormalizeEmail(in.Email) }

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name     *string `json:"name"     validate:"nullable,min=1,max=255"`
	Phone    *string `json:"phone"    validate:"nullable,max=50"`
	Avatar   *string `json:"avatar"   validate:"nullable,max=1024"`
	Password *string `json:"password" validate:"nullable,min=6,max=72"`
}

type RoleInput struct {
	Role string `json:"role" validate:"required,in=customer restaurant_owner admin"`
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
