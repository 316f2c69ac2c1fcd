// Package routes holds the declarative API route tables.
package routes

import (
	"net/http"

	"github.com/elitetable/elitetable/app/controllers"
	"github.com/elitetable/elitetable/pkg/ctx"
	"github.com/elitetable/elitetable/pkg/middleware"
	"github.com/elitetable/elitetable/pkg/rbac"
	"github.com/elitetable/elitetable/pkg/router"
)

// Controllers bundles every handler set mounted under /api.
type Controllers struct {
	Auth       *controllers.AuthController
	Catalog    *controllers.CatalogController
	Booking    *controllers.BookingController
	Engagement *controllers.EngagementController
	Admin      *controllers.AdminController
	Upload     *controllers.UploadController
	Seed       *controllers.SeedController
}

func route(method, path, name string, h ctx.HandlerFunc, mws ...router.Middleware) router.Route {
	return router.Route{Method: method, Path: path, Name: name, Handler: ctx.Wrap(h), Middleware: mws}
}

// Public routes need no session.
func Public(c Controllers) []router.Route {
	return []router.Route{
		route(http.MethodPost, "/auth/register", "auth.register", c.Auth.Register),
		route(http.MethodPost, "/auth/login", "auth.login", c.Auth.Login),
		route(http.MethodPost, "/auth/token", "auth.token", c.Auth.Token),
		route(http.MethodPost, "/auth/logout", "auth.logout", c.Auth.Logout),

		route(http.MethodGet, "/governorates", "governorates.index", c.Catalog.Governorates),
		route(http.MethodGet, "/districts", "districts.index", c.Catalog.Districts),
		route(http.MethodGet, "/restaurants", "restaurants.index", c.Catalog.Restaurants),
		route(http.MethodGet, "/restaurants/{id}", "restaurants.show", c.Catalog.Restaurant),
		route(http.MethodGet, "/restaurants/{id}/menu", "restaurants.menu", c.Catalog.Menu),
		route(http.MethodGet, "/restaurants/{id}/reviews", "restaurants.reviews", c.Catalog.Reviews),

		route(http.MethodPost, "/seed", "seed", c.Seed.Seed),
	}
}

// Authenticated routes reject anonymous callers with 401. Ownership and
// visibility are enforced by the services.
func Authenticated(c Controllers) []router.Route {
	return []router.Route{
		route(http.MethodGet, "/auth/me", "auth.me", c.Auth.Me),
		route(http.MethodPatch, "/auth/me", "auth.me.update", c.Auth.UpdateMe),

		route(http.MethodPost, "/restaurants", "restaurants.store", c.Catalog.CreateRestaurant),
		route(http.MethodPatch, "/restaurants/{id}", "restaurants.update", c.Catalog.UpdateRestaurant),
		route(http.MethodPost, "/restaurants/{id}/reviews", "restaurants.reviews.store", c.Catalog.CreateReview),
		route(http.MethodGet, "/owner/restaurants", "owner.restaurants", c.Catalog.OwnedRestaurants),
		route(http.MethodPost, "/menu-items", "menu-items.store", c.Catalog.CreateMenuItem),
		route(http.MethodPatch, "/menu-items/{id}", "menu-items.update", c.Catalog.UpdateMenuItem),
		route(http.MethodDelete, "/menu-items/{id}", "menu-items.destroy", c.Catalog.DeleteMenuItem),

		route(http.MethodGet, "/reservations", "reservations.index", c.Booking.Reservations),
		route(http.MethodGet, "/reservations/{id}", "reservations.show", c.Booking.Reservation),
		route(http.MethodPost, "/reservations", "reservations.store", c.Booking.CreateReservation),
		route(http.MethodPatch, "/reservations/{id}", "reservations.update", c.Booking.UpdateReservation),
		route(http.MethodGet, "/orders", "orders.index", c.Booking.Orders),
		route(http.MethodGet, "/orders/{id}", "orders.show", c.Booking.Order),
		route(http.MethodPost, "/orders", "orders.store", c.Booking.CreateOrder),
		route(http.MethodPatch, "/orders/{id}", "orders.update", c.Booking.UpdateOrder),

		route(http.MethodGet, "/favorites", "favorites.index", c.Engagement.Favorites),
		route(http.MethodGet, "/favorites/{restaurantId}", "favorites.show", c.Engagement.IsFavorite),
		route(http.MethodPost, "/favorites", "favorites.store", c.Engagement.AddFavorite),
		route(http.MethodDelete, "/favorites/{restaurantId}", "favorites.destroy", c.Engagement.RemoveFavorite),
		route(http.MethodGet, "/notifications", "notifications.index", c.Engagement.Notifications),
		route(http.MethodGet, "/notifications/ws", "notifications.stream", c.Engagement.Stream),
		route(http.MethodPatch, "/notifications/{id}/read", "notifications.read", c.Engagement.MarkRead),

		route(http.MethodPost, "/uploads", "uploads.store", c.Upload.Image),
	}
}

// Admin routes are mounted under /admin behind the admin role gate.
func Admin(c Controllers) []router.Route {
	return []router.Route{
		route(http.MethodGet, "/stats", "admin.stats", c.Admin.Stats),
		route(http.MethodGet, "/users", "admin.users", c.Admin.Users),
		route(http.MethodPatch, "/users/{id}/role", "admin.users.role", c.Admin.SetRole),
		route(http.MethodDelete, "/users/{id}", "admin.users.destroy", c.Admin.DeleteUser),
		route(http.MethodGet, "/restaurants", "admin.restaurants", c.Admin.Restaurants),
		route(http.MethodPatch, "/restaurants/{id}/status", "admin.restaurants.status", c.Admin.SetRestaurantStatus),
		route(http.MethodGet, "/reservations", "admin.reservations", c.Admin.Reservations),
		route(http.MethodGet, "/orders", "admin.orders", c.Admin.Orders),
		route(http.MethodGet, "/notifications", "admin.notifications", c.Admin.Notifications),
		route(http.MethodPost, "/notifications", "admin.notifications.store", c.Admin.SendNotification),
		route(http.MethodGet, "/activity-logs", "admin.activity-logs", c.Admin.ActivityLogs),
		route(http.MethodGet, "/analytics/revenue", "admin.analytics.revenue", c.Admin.Revenue),
		route(http.MethodGet, "/analytics/popular-restaurants", "admin.analytics.popular", c.Admin.PopularRestaurants),
	}
}

// RegisterAPI mounts the three tables under /api.
func RegisterAPI(r *router.Router, c Controllers) {
	api := r.Group("/api")
	api.Register(Public(c)...)
	api.Group("", middleware.RequireAuth).Register(Authenticated(c)...)
	api.Group("/admin", rbac.Admin).Register(Admin(c)...)
}
