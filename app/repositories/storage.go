// Package repositories is the only code that talks to the database.
//
// Storage is the contract the services depend on; GormStorage implements it
// for every dialect pkg/database can open. Missing rows come back as
// ErrNotFound, unique violations as ErrDuplicate and broken references as
// ErrReference. Anything else is a wrapped driver error.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/elitetable/elitetable/app/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrReference = errors.New("referenced record does not exist")
)

// RestaurantFilter narrows ListRestaurants. Empty fields do not filter.
type RestaurantFilter struct {
	GovernorateID string
	DistrictID    string
	Cuisine       string
	Search        string // case-insensitive match on name, cuisine or description
	Status        models.RestaurantStatus
	OwnerID       string
}

// ReservationFilter narrows ListReservations. RestaurantIDs restricts to a
// set of restaurants (an owner's dashboard); a non-nil empty set matches
// nothing.
type ReservationFilter struct {
	UserID        string
	RestaurantID  string
	RestaurantIDs []string
}

// OrderFilter narrows ListOrders, with the same RestaurantIDs semantics.
type OrderFilter struct {
	RestaurantID  string
	UserID        string
	RestaurantIDs []string
}

// UserHoldings counts the rows that keep a user from being deleted.
type UserHoldings struct {
	Restaurants  int64
	Reservations int64
	Orders       int64
	Reviews      int64
}

// Any reports whether the user still owns anything.
func (h UserHoldings) Any() bool {
	return h.Restaurants+h.Reservations+h.Orders+h.Reviews > 0
}

// RevenueRow is one non-cancelled order reduced to what analytics needs.
type RevenueRow struct {
	CreatedAt time.Time
	Total     float64
}

// RestaurantCount pairs a restaurant with a row count.
type RestaurantCount struct {
	RestaurantID string
	Count        int64
}

// Storage is the persistence contract. Every method honours ctx and runs
// under the configured query timeout; nothing is retried.
type Storage interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, id string, columns map[string]any) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	UserHoldings(ctx context.Context, id string) (UserHoldings, error)

	ListGovernorates(ctx context.Context) ([]models.Governorate, error)
	GetGovernorate(ctx context.Context, id string) (*models.Governorate, error)
	ListDistricts(ctx context.Context, governorateID string) ([]models.District, error)
	GetDistrict(ctx context.Context, id string) (*models.District, error)

	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context, f RestaurantFilter) ([]models.Restaurant, error)
	RestaurantIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	UpdateRestaurant(ctx context.Context, id string, columns map[string]any) (*models.Restaurant, error)

	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	ListMenuItems(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	MenuItemsByID(ctx context.Context, ids []string) (map[string]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, m *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, id string, columns map[string]any) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error

	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	ListReservations(ctx context.Context, f ReservationFilter) ([]models.Reservation, error)
	CreateReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservation(ctx context.Context, id string, columns map[string]any) (*models.Reservation, error)
	ReservationCodeExists(ctx context.Context, code string) (bool, error)

	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	UpdateOrder(ctx context.Context, id string, columns map[string]any) (*models.Order, error)

	ListFavoriteRestaurants(ctx context.Context, userID string) ([]models.Restaurant, error)
	IsFavorite(ctx context.Context, userID, restaurantID string) (bool, error)
	CreateFavorite(ctx context.Context, f *models.Favorite) error
	DeleteFavorite(ctx context.Context, userID, restaurantID string) error

	ListReviews(ctx context.Context, restaurantID string) ([]models.Review, error)
	CreateReview(ctx context.Context, r *models.Review) error

	CreateActivityLog(ctx context.Context, l *models.ActivityLog) error
	ListActivityLogs(ctx context.Context, limit int) ([]models.ActivityLog, error)

	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	ListAllNotifications(ctx context.Context) ([]models.Notification, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
	MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error)

	CountUsers(ctx context.Context) (int64, error)
	CountRestaurantsByStatus(ctx context.Context) (map[string]int64, error)
	CountReservationsByStatus(ctx context.Context) (map[string]int64, error)
	CountOrdersByStatus(ctx context.Context) (map[string]int64, error)
	SumRevenue(ctx context.Context) (float64, error)
	RevenueRows(ctx context.Context, since time.Time) ([]RevenueRow, error)
	ReservationCountsByRestaurant(ctx context.Context) ([]RestaurantCount, error)
	OrderCountsByRestaurant(ctx context.Context) ([]RestaurantCount, error)
}
