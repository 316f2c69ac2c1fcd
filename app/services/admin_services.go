package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/app/requests"
	"github.com/elitetable/elitetable/app/statemachine"
	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/auth"
	"github.com/elitetable/elitetable/pkg/event"
	"github.com/elitetable/elitetable/pkg/metrics"
	"github.com/elitetable/elitetable/pkg/workerpool"
)

// AdminService backs /api/admin. Callers are already known to be admins;
// the principal is passed for self-protection and the audit trail.
type AdminService struct {
	store  repositories.Storage
	events *event.Bus
	pool   *workerpool.Pool
	now    func() time.Time
}

func NewAdminService(store repositories.Storage, events *event.Bus, pool *workerpool.Pool) *AdminService {
	return &AdminService{store: store, events: events, pool: pool, now: time.Now}
}

// Stats is the dashboard summary.
type Stats struct {
	TotalUsers           int64            `json:"totalUsers"`
	TotalRestaurants     int64            `json:"totalRestaurants"`
	ActiveRestaurants    int64            `json:"activeRestaurants"`
	PendingRestaurants   int64            `json:"pendingRestaurants"`
	TotalReservations    int64            `json:"totalReservations"`
	PendingReservations  int64            `json:"pendingReservations"`
	TotalOrders          int64            `json:"totalOrders"`
	TotalRevenue         float64          `json:"totalRevenue"`
	RestaurantsByStatus  map[string]int64 `json:"restaurantsByStatus"`
	ReservationsByStatus map[string]int64 `json:"reservationsByStatus"`
	OrdersByStatus       map[string]int64 `json:"ordersByStatus"`
}

func sum(m map[string]int64) int64 {
	var n int64
	for _, v := range m {
		n += v
	}
	return n
}

// Stats loads the counters in parallel on the worker pool.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := workerpool.Gather(ctx, s.pool,
		func(ctx context.Context) (err error) {
			st.TotalUsers, err = s.store.CountUsers(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			st.RestaurantsByStatus, err = s.store.CountRestaurantsByStatus(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			st.ReservationsByStatus, err = s.store.CountReservationsByStatus(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			st.OrdersByStatus, err = s.store.CountOrdersByStatus(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			st.TotalRevenue, err = s.store.SumRevenue(ctx)
			return err
		},
	)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	st.TotalRestaurants = sum(st.RestaurantsByStatus)
	st.ActiveRestaurants = st.RestaurantsByStatus[string(models.RestaurantActive)]
	st.PendingRestaurants = st.RestaurantsByStatus[string(models.RestaurantPending)]
	st.TotalReservations = sum(st.ReservationsByStatus)
	st.PendingReservations = st.ReservationsByStatus[string(models.ReservationPending)]
	st.TotalOrders = sum(st.OrdersByStatus)
	st.TotalRevenue = math.Round(st.TotalRevenue*100) / 100
	return &st, nil
}

// ─── Users ────────────────────────────────────────────────────────────────────

func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	out, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// SetRole changes a user's role. Admins cannot change their own role, so
// the last admin cannot lock everyone out.
func (s *AdminService) SetRole(ctx context.Context, p *auth.Principal, id string, in requests.RoleInput) (*models.User, error) {
	if p.Is(id) {
		return nil, apperr.Invalid("You cannot change your own role")
	}
	before, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	u, err := s.store.UpdateUser(ctx, id, map[string]any{"role": in.Role})
	if err != nil {
		return nil, storeErr(err, "User")
	}
	if before.Role != u.Role {
		record(ctx, s.events, Activity{
			UserID: p.UserID, Type: models.ActivityRoleChanged,
			Description: fmt.Sprintf("%s role %s -> %s", u.Email, before.Role, u.Role),
			EntityType:  "user", EntityID: u.ID,
		})
		notify(ctx, s.events, Notice{
			UserID: u.ID, Title: "Role updated",
			Message: "Your account role is now " + u.Role, Type: "info",
		})
	}
	return u, nil
}

// DeleteUser removes an account. Admins cannot delete themselves, and users
// who still own restaurants, bookings or reviews are refused.
func (s *AdminService) DeleteUser(ctx context.Context, p *auth.Principal, id string) error {
	if p.Is(id) {
		return apperr.Invalid("You cannot delete your own account")
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return storeErr(err, "User")
	}
	h, err := s.store.UserHoldings(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if h.Any() {
		return apperr.Invalid("User still has %d restaurant(s), %d reservation(s), %d order(s) and %d review(s)",
			h.Restaurants, h.Reservations, h.Orders, h.Reviews)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return storeErr(err, "User")
	}
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityUserDeleted,
		Description: "User deleted: " + u.Email, EntityType: "user", EntityID: u.ID,
	})
	return nil
}

// ─── Moderation ───────────────────────────────────────────────────────────────

// Restaurants lists every restaurant, optionally narrowed to one status.
func (s *AdminService) Restaurants(ctx context.Context, status string) ([]models.Restaurant, error) {
	out, err := s.store.ListRestaurants(ctx, repositories.RestaurantFilter{Status: models.RestaurantStatus(status)})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// SetRestaurantStatus moves a restaurant along the moderation state machine.
func (s *AdminService) SetRestaurantStatus(ctx context.Context, p *auth.Principal, id string, in requests.RestaurantStatusInput) (*models.Restaurant, error) {
	current, err := s.store.GetRestaurant(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Restaurant")
	}
	to := models.RestaurantStatus(in.Status)
	if err := statemachine.Restaurant.Check(current.Status, to, statemachine.ActorAdmin); err != nil {
		return nil, err
	}
	if to == current.Status {
		return current, nil
	}
	r, err := s.store.UpdateRestaurant(ctx, id, map[string]any{"status": to})
	if err != nil {
		return nil, storeErr(err, "Restaurant")
	}

	metrics.StatusTransitions.WithLabelValues("restaurant", string(to)).Inc()
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityRestaurantStatusChanged,
		Description: fmt.Sprintf("%s %s -> %s", r.Name, current.Status, r.Status),
		EntityType:  "restaurant", EntityID: r.ID,
	})
	typ := "success"
	if to == models.RestaurantSuspended {
		typ = "warning"
	}
	notify(ctx, s.events, Notice{
		UserID: r.OwnerID, Title: "Restaurant " + string(r.Status),
		Message: fmt.Sprintf("%s is now %s", r.Name, r.Status), Type: typ,
	})
	return r, nil
}

func (s *AdminService) Reservations(ctx context.Context) ([]models.Reservation, error) {
	out, err := s.store.ListReservations(ctx, repositories.ReservationFilter{})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *AdminService) Orders(ctx context.Context) ([]models.Order, error) {
	out, err := s.store.ListOrders(ctx, repositories.OrderFilter{})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// ─── Notifications & audit ────────────────────────────────────────────────────

func (s *AdminService) Notifications(ctx context.Context) ([]models.Notification, error) {
	out, err := s.store.ListAllNotifications(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// SendNotification stores a notification for one user, or for everyone when
// userId is omitted, and pushes it to connected clients.
func (s *AdminService) SendNotification(ctx context.Context, p *auth.Principal, in requests.NotificationInput) (*models.Notification, error) {
	if in.UserID != nil {
		if _, err := s.store.GetUser(ctx, *in.UserID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperr.Validation(map[string]string{"userId": "The selected user is invalid."})
			}
			return nil, apperr.Internal(err)
		}
	}
	n := &models.Notification{UserID: in.UserID, Title: in.Title, Message: in.Message, Type: in.Type, Link: in.Link}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, storeErr(err, "Notification")
	}
	if s.events != nil {
		s.events.FireAsync(ctx, EventNotification, n)
	}
	target := "all users"
	if in.UserID != nil {
		target = *in.UserID
	}
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityNotificationSent,
		Description: fmt.Sprintf("Notification %q sent to %s", n.Title, target),
		EntityType:  "notification", EntityID: n.ID,
	})
	return n, nil
}

// ActivityLogs returns the newest limit entries (100 when limit <= 0).
func (s *AdminService) ActivityLogs(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	out, err := s.store.ListActivityLogs(ctx, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// ─── Analytics ────────────────────────────────────────────────────────────────

// RevenuePoint is one day of non-cancelled order revenue.
type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

// Revenue returns one point per UTC day for the last days days, oldest
// first, with empty days included. days is clamped to 1..365.
func (s *AdminService) Revenue(ctx context.Context, days int) ([]RevenuePoint, error) {
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	rows, err := s.store.RevenueRows(ctx, since)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]RevenuePoint, days)
	index := make(map[string]int, days)
	for i := range out {
		d := since.AddDate(0, 0, i).Format(time.DateOnly)
		out[i].Date = d
		index[d] = i
	}
	for _, r := range rows {
		i, ok := index[r.CreatedAt.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		out[i].Revenue += r.Total
		out[i].Orders++
	}
	for i := range out {
		out[i].Revenue = math.Round(out[i].Revenue*100) / 100
	}
	return out, nil
}

// PopularRestaurant ranks a restaurant by bookings.
type PopularRestaurant struct {
	RestaurantID string `json:"restaurantId"`
	Name         string `json:"name"`
	Reservations int64  `json:"reservations"`
	Orders       int64  `json:"orders"`
}

// PopularRestaurants returns the top limit restaurants by reservations plus
// orders.
func (s *AdminService) PopularRestaurants(ctx context.Context, limit int) ([]PopularRestaurant, error) {
	if limit <= 0 {
		limit = 10
	}
	var (
		restaurants []models.Restaurant
		res, ord    []repositories.RestaurantCount
	)
	err := workerpool.Gather(ctx, s.pool,
		func(ctx context.Context) (err error) {
			restaurants, err = s.store.ListRestaurants(ctx, repositories.RestaurantFilter{})
			return err
		},
		func(ctx context.Context) (err error) {
			res, err = s.store.ReservationCountsByRestaurant(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			ord, err = s.store.OrderCountsByRestaurant(ctx)
			return err
		},
	)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	byID := make(map[string]*PopularRestaurant, len(restaurants))
	out := make([]*PopularRestaurant, 0, len(restaurants))
	for _, r := range restaurants {
		pr := &PopularRestaurant{RestaurantID: r.ID, Name: r.Name}
		byID[r.ID] = pr
		out = append(out, pr)
	}
	for _, c := range res {
		if pr, ok := byID[c.RestaurantID]; ok {
			pr.Reservations = c.Count
		}
	}
	for _, c := range ord {
		if pr, ok := byID[c.RestaurantID]; ok {
			pr.Orders = c.Count
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Reservations+out[i].Orders, out[j].Reservations+out[j].Orders
		if a != b {
			return a > b
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	ranked := make([]PopularRestaurant, len(out))
	for i, pr := range out {
		ranked[i] = *pr
	}
	return ranked, nil
}
