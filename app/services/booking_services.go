package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/app/requests"
	"github.com/elitetable/elitetable/app/statemachine"
	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/auth"
	"github.com/elitetable/elitetable/pkg/event"
	"github.com/elitetable/elitetable/pkg/metrics"
)

const (
	codePrefix   = "ELITE"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	codeAttempts = 5
)

// BookingService covers reservations and orders.
type BookingService struct {
	store  repositories.Storage
	events *event.Bus
}

func NewBookingService(store repositories.Storage, events *event.Bus) *BookingService {
	return &BookingService{store: store, events: events}
}

// ConfirmationCode returns ELITE followed by six random upper-case
// alphanumerics.
func ConfirmationCode() (string, error) {
	b := make([]byte, codeLength)
	size := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return codePrefix + string(b), nil
}

func (s *BookingService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := ConfirmationCode()
		if err != nil {
			return "", err
		}
		taken, err := s.store.ReservationCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free confirmation code after %d attempts", codeAttempts)
}

// bookingActor decides in which capacity p acts on a booking made by
// userID at restaurant r. ok is false when p has no say at all.
func bookingActor(p *auth.Principal, userID string, r *models.Restaurant) (statemachine.Actor, bool) {
	switch {
	case canManage(p, r):
		return statemachine.ActorStaff, true
	case p.Is(userID):
		return statemachine.ActorCustomer, true
	}
	return "", false
}

// ─── Reservations ─────────────────────────────────────────────────────────────

// Reservations lists what p may see. Customers get their own bookings,
// owners the bookings of their restaurants (or their own with
// userId=self), admins everything.
func (s *BookingService) Reservations(ctx context.Context, p *auth.Principal, userID, restaurantID string) ([]models.Reservation, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	f := repositories.ReservationFilter{UserID: userID, RestaurantID: restaurantID}
	switch {
	case p.IsAdmin():
	case userID == p.UserID || (userID == "" && p.Role == auth.RoleCustomer):
		f.UserID = p.UserID
	case userID != "":
		return nil, apperr.Forbidden("You may only list your own reservations")
	default:
		scope, err := restaurantScope(ctx, s.store, p)
		if err != nil {
			return nil, err
		}
		f.RestaurantIDs = scope
	}
	out, err := s.store.ListReservations(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// visibleReservation loads reservation id with its restaurant and the
// capacity p acts in.
func (s *BookingService) visibleReservation(ctx context.Context, p *auth.Principal, id string) (*models.Reservation, *models.Restaurant, statemachine.Actor, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, nil, "", err
	}
	res, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, nil, "", storeErr(err, "Reservation")
	}
	r, err := s.store.GetRestaurant(ctx, res.RestaurantID)
	if err != nil {
		return nil, nil, "", storeErr(err, "Restaurant")
	}
	actor, ok := bookingActor(p, res.UserID, r)
	if !ok {
		return nil, nil, "", apperr.Forbidden("You do not have access to this reservation")
	}
	return res, r, actor, nil
}

func (s *BookingService) Reservation(ctx context.Context, p *auth.Principal, id string) (*models.Reservation, error) {
	res, _, _, err := s.visibleReservation(ctx, p, id)
	return res, err
}

// CreateReservation books a table at an active restaurant for the caller
// and assigns a unique confirmation code.
func (s *BookingService) CreateReservation(ctx context.Context, p *auth.Principal, in requests.ReservationInput) (*models.Reservation, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	r, err := s.store.GetRestaurant(ctx, in.RestaurantID)
	if err != nil {
		return nil, storeErr(err, "Restaurant")
	}
	if r.Status != models.RestaurantActive {
		return nil, apperr.Invalid("Restaurant is not accepting reservations")
	}
	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	res := &models.Reservation{
		UserID:           p.UserID,
		RestaurantID:     r.ID,
		Date:             in.Date,
		Time:             in.Time,
		PartySize:        in.PartySize,
		SpecialRequests:  in.SpecialRequests,
		Status:           models.ReservationPending,
		ConfirmationCode: code,
	}
	if err := s.store.CreateReservation(ctx, res); err != nil {
		return nil, storeErr(err, "Reservation")
	}

	metrics.ReservationsCreated.Inc()
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityReservationCreated,
		Description: fmt.Sprintf("Reservation %s at %s for %d", code, r.Name, res.PartySize),
		EntityType:  "reservation", EntityID: res.ID,
	})
	notify(ctx, s.events, Notice{
		UserID: r.OwnerID, Title: "New reservation",
		Message: fmt.Sprintf("%s: party of %d on %s at %s", r.Name, res.PartySize, res.Date, res.Time),
		Type:    "info",
	})
	return res, nil
}

// UpdateReservation applies a patch. Customers may only cancel; staff may
// reschedule and move the status along the reservation state machine.
// The confirmation code never changes.
func (s *BookingService) UpdateReservation(ctx context.Context, p *auth.Principal, id string, in requests.ReservationPatch) (*models.Reservation, error) {
	current, r, actor, err := s.visibleReservation(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if actor == statemachine.ActorCustomer && (in.Date != nil || in.Time != nil || in.PartySize != nil || in.SpecialRequests != nil) {
		return nil, apperr.Forbidden("Customers may only cancel a reservation")
	}

	cols := map[string]any{}
	if in.Status != nil {
		to := models.ReservationStatus(*in.Status)
		if err := statemachine.Reservation.Check(current.Status, to, actor); err != nil {
			return nil, err
		}
		cols["status"] = to
	}
	if in.Date != nil {
		cols["date"] = *in.Date
	}
	if in.Time != nil {
		cols["time"] = *in.Time
	}
	if in.PartySize != nil {
		cols["party_size"] = *in.PartySize
	}
	if in.SpecialRequests != nil {
		cols["special_requests"] = *in.SpecialRequests
	}

	res, err := s.store.UpdateReservation(ctx, id, cols)
	if err != nil {
		return nil, storeErr(err, "Reservation")
	}

	if res.Status != current.Status {
		metrics.StatusTransitions.WithLabelValues("reservation", string(res.Status)).Inc()
		record(ctx, s.events, Activity{
			UserID: p.UserID, Type: models.ActivityReservationStatus,
			Description: fmt.Sprintf("Reservation %s %s -> %s", res.ConfirmationCode, current.Status, res.Status),
			EntityType:  "reservation", EntityID: res.ID,
		})
		target := res.UserID
		if actor == statemachine.ActorCustomer {
			target = r.OwnerID
		}
		notify(ctx, s.events, Notice{
			UserID: target, Title: "Reservation " + string(res.Status),
			Message: fmt.Sprintf("Reservation %s at %s is now %s", res.ConfirmationCode, r.Name, res.Status),
			Type:    reservationNoticeType(res.Status),
		})
	}
	return res, nil
}

func reservationNoticeType(s models.ReservationStatus) string {
	switch s {
	case models.ReservationConfirmed, models.ReservationCompleted:
		return "success"
	case models.ReservationCancelled:
		return "warning"
	}
	return "info"
}

// ─── Orders ───────────────────────────────────────────────────────────────────

// Orders lists what p may see, with the same rules as Reservations.
// Orders lists orders the caller may see. userId=self lists the orders a
// caller placed as a diner, whatever their role.
func (s *BookingService) Orders(ctx context.Context, p *auth.Principal, userID, restaurantID string) ([]models.Order, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	f := repositories.OrderFilter{UserID: userID, RestaurantID: restaurantID}
	switch {
	case p.IsAdmin():
	case userID == p.UserID || (userID == "" && p.Role == auth.RoleCustomer):
		f.UserID = p.UserID
	case userID != "":
		return nil, apperr.Forbidden("You may only list your own orders")
	default:
		scope, err := restaurantScope(ctx, s.store, p)
		if err != nil {
			return nil, err
		}
		f.RestaurantIDs = scope
	}
	out, err := s.store.ListOrders(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *BookingService) visibleOrder(ctx context.Context, p *auth.Principal, id string) (*models.Order, *models.Restaurant, statemachine.Actor, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, nil, "", err
	}
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, nil, "", storeErr(err, "Order")
	}
	r, err := s.store.GetRestaurant(ctx, o.RestaurantID)
	if err != nil {
		return nil, nil, "", storeErr(err, "Restaurant")
	}
	var owner string
	if o.UserID != nil {
		owner = *o.UserID
	}
	actor, ok := bookingActor(p, owner, r)
	if !ok {
		return nil, nil, "", apperr.Forbidden("You do not have access to this order")
	}
	return o, r, actor, nil
}

func (s *BookingService) Order(ctx context.Context, p *auth.Principal, id string) (*models.Order, error) {
	o, _, _, err := s.visibleOrder(ctx, p, id)
	return o, err
}

// CreateOrder checks out a cart. Names and prices are copied from the menu
// so later menu edits do not change the order.
func (s *BookingService) CreateOrder(ctx context.Context, p *auth.Principal, in requests.OrderInput) (*models.Order, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	r, err := s.store.GetRestaurant(ctx, in.RestaurantID)
	if err != nil {
		return nil, storeErr(err, "Restaurant")
	}
	if r.Status != models.RestaurantActive {
		return nil, apperr.Invalid("Restaurant is not accepting orders")
	}

	if in.ReservationID != nil {
		res, err := s.store.GetReservation(ctx, *in.ReservationID)
		if err != nil {
			return nil, storeErr(err, "Reservation")
		}
		if res.RestaurantID != r.ID {
			return nil, apperr.Validation(map[string]string{"reservationId": "The reservation is for a different restaurant."})
		}
		if _, ok := bookingActor(p, res.UserID, r); !ok {
			return nil, apperr.Forbidden("You do not have access to this reservation")
		}
	}

	ids := make([]string, len(in.Items))
	for i, line := range in.Items {
		ids[i] = line.MenuItemID
	}
	menu, err := s.store.MenuItemsByID(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	fields := map[string]string{}
	items := make([]models.OrderItem, 0, len(in.Items))
	var total float64
	for i, line := range in.Items {
		key := fmt.Sprintf("items[%d].menuItemId", i)
		m, ok := menu[line.MenuItemID]
		switch {
		case !ok:
			fields[key] = "The selected menu item is invalid."
			continue
		case m.RestaurantID != r.ID:
			fields[key] = "The menu item belongs to a different restaurant."
			continue
		case !m.Available:
			fields[key] = m.Name + " is not available."
			continue
		}
		items = append(items, models.OrderItem{
			MenuItemID: m.ID,
			Name:       m.Name,
			Quantity:   line.Quantity,
			Price:      m.Price,
		})
		total += m.Price * float64(line.Quantity)
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	name := ""
	if in.CustomerName != nil {
		name = *in.CustomerName
	}
	if name == "" {
		u, err := s.store.GetUser(ctx, p.UserID)
		if err != nil {
			return nil, storeErr(err, "User")
		}
		name = u.Name
	}

	o := &models.Order{
		RestaurantID:  r.ID,
		UserID:        &p.UserID,
		ReservationID: in.ReservationID,
		CustomerName:  name,
		Status:        models.OrderPending,
		Total:         math.Round(total*100) / 100,
		Notes:         in.Notes,
		Items:         items,
	}
	if err := s.store.CreateOrder(ctx, o); err != nil {
		return nil, storeErr(err, "Order")
	}

	metrics.OrdersCreated.Inc()
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityOrderCreated,
		Description: fmt.Sprintf("Order at %s totalling %.2f", r.Name, o.Total),
		EntityType:  "order", EntityID: o.ID,
	})
	notify(ctx, s.events, Notice{
		UserID: r.OwnerID, Title: "New order",
		Message: fmt.Sprintf("%s ordered %d item(s) at %s", o.CustomerName, len(items), r.Name),
		Type:    "info",
	})
	return o, nil
}

// UpdateOrderStatus moves an order along the kitchen pipeline.
func (s *BookingService) UpdateOrderStatus(ctx context.Context, p *auth.Principal, id string, in requests.OrderPatch) (*models.Order, error) {
	current, r, actor, err := s.visibleOrder(ctx, p, id)
	if err != nil {
		return nil, err
	}
	to := models.OrderStatus(in.Status)
	if err := statemachine.Order.Check(current.Status, to, actor); err != nil {
		return nil, err
	}
	if to == current.Status {
		return current, nil
	}

	o, err := s.store.UpdateOrder(ctx, id, map[string]any{"status": to})
	if err != nil {
		return nil, storeErr(err, "Order")
	}

	metrics.StatusTransitions.WithLabelValues("order", string(to)).Inc()
	record(ctx, s.events, Activity{
		UserID: p.UserID, Type: models.ActivityOrderStatus,
		Description: fmt.Sprintf("Order %s %s -> %s", o.ID, current.Status, o.Status),
		EntityType:  "order", EntityID: o.ID,
	})
	if o.UserID != nil && actor == statemachine.ActorStaff {
		notify(ctx, s.events, Notice{
			UserID: *o.UserID, Title: "Order " + string(o.Status),
			Message: fmt.Sprintf("Your order at %s is now %s", r.Name, o.Status),
			Type:    "info",
		})
	}
	return o, nil
}
