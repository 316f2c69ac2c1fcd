package models

import "github.com/elitetable/elitetable/pkg/auth"

// Roles, shared with pkg/auth.
const (
	RoleCustomer        = auth.RoleCustomer
	RoleRestaurantOwner = auth.RoleRestaurantOwner
	RoleAdmin           = auth.RoleAdmin
)

// Roles lists every valid role.
var Roles = []string{RoleCustomer, RoleRestaurantOwner, RoleAdmin}

// User is an account. Password holds the bcrypt hash and is never serialised.
type User struct {
	Mutable
	Email    string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string  `gorm:"size:255;not null" json:"-"`
	Name     string  `gorm:"size:255;not null" json:"name"`
	Phone    *string `gorm:"size:50" json:"phone"`
	Avatar   *string `gorm:"size:1024" json:"avatar"`
	Role     string  `gorm:"size:32;not null;default:customer;index" json:"role"`
}

// Principal is the request identity for u.
func (u *User) Principal() *auth.Principal {
	return &auth.Principal{UserID: u.ID, Role: u.Role}
}
