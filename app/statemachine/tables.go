package statemachine

import "github.com/elitetable/elitetable/app/models"

// Restaurant moderation is admin-only.
var Restaurant = New("restaurant",
	Transition[models.RestaurantStatus]{models.RestaurantPending, models.RestaurantActive, ActorAdmin},
	Transition[models.RestaurantStatus]{models.RestaurantPending, models.RestaurantSuspended, ActorAdmin},
	Transition[models.RestaurantStatus]{models.RestaurantActive, models.RestaurantSuspended, ActorAdmin},
	Transition[models.RestaurantStatus]{models.RestaurantSuspended, models.RestaurantActive, ActorAdmin},
)

// Reservation: staff confirm and complete, either side may cancel an open booking.
var Reservation = New("reservation",
	Transition[models.ReservationStatus]{models.ReservationPending, models.ReservationConfirmed, ActorStaff},
	Transition[models.ReservationStatus]{models.ReservationConfirmed, models.ReservationCompleted, ActorStaff},
	Transition[models.ReservationStatus]{models.ReservationPending, models.ReservationCancelled, ActorStaff},
	Transition[models.ReservationStatus]{models.ReservationConfirmed, models.ReservationCancelled, ActorStaff},
	Transition[models.ReservationStatus]{models.ReservationPending, models.ReservationCancelled, ActorCustomer},
	Transition[models.ReservationStatus]{models.ReservationConfirmed, models.ReservationCancelled, ActorCustomer},
)

// Order advances through the kitchen pipeline or diverts to cancelled.
// Customers may only cancel.
var Order = New("order",
	Transition[models.OrderStatus]{models.OrderPending, models.OrderPreparing, ActorStaff},
	Transition[models.OrderStatus]{models.OrderPreparing, models.OrderReady, ActorStaff},
	Transition[models.OrderStatus]{models.OrderReady, models.OrderServed, ActorStaff},
	Transition[models.OrderStatus]{models.OrderPending, models.OrderCancelled, ActorStaff},
	Transition[models.OrderStatus]{models.OrderPreparing, models.OrderCancelled, ActorStaff},
	Transition[models.OrderStatus]{models.OrderReady, models.OrderCancelled, ActorStaff},
	Transition[models.OrderStatus]{models.OrderPending, models.OrderCancelled, ActorCustomer},
	Transition[models.OrderStatus]{models.OrderPreparing, models.OrderCancelled, ActorCustomer},
	Transition[models.OrderStatus]{models.OrderReady, models.OrderCancelled, ActorCustomer},
)
