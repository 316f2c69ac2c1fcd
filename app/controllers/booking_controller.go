package controllers

import (
	"github.com/elitetable/elitetable/app/requests"
	"github.com/elitetable/elitetable/app/services"
	"github.com/elitetable/elitetable/pkg/ctx"
)

type BookingController struct {
	service *services.BookingService
}

func NewBookingController(service *services.BookingService) *BookingController {
	return &BookingController{service: service}
}

func (h *BookingController) Reservations(c *ctx.Context) {
	out, err := h.service.Reservations(c.Context(), c.Principal(), c.Query("userId"), c.Query("restaurantId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *BookingController) Reservation(c *ctx.Context) {
	r, err := h.service.Reservation(c.Context(), c.Principal(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(r)
}

func (h *BookingController) CreateReservation(c *ctx.Context) {
	var in requests.ReservationInput
	if !c.BindJSON(&in) {
		return
	}
	r, err := h.service.CreateReservation(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(r)
}

func (h *BookingController) UpdateReservation(c *ctx.Context) {
	var in requests.ReservationPatch
	if !c.BindJSON(&in) {
		return
	}
	r, err := h.service.UpdateReservation(c.Context(), c.Principal(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(r)
}

func (h *BookingController) Orders(c *ctx.Context) {
	out, err := h.service.Orders(c.Context(), c.Principal(), c.Query("userId"), c.Query("restaurantId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *BookingController) Order(c *ctx.Context) {
	o, err := h.service.Order(c.Context(), c.Principal(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(o)
}

func (h *BookingController) CreateOrder(c *ctx.Context) {
	var in requests.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	o, err := h.service.CreateOrder(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(o)
}

func (h *BookingController) UpdateOrder(c *ctx.Context) {
	var in requests.OrderPatch
	if !c.BindJSON(&in) {
		return
	}
	o, err := h.service.UpdateOrderStatus(c.Context(), c.Principal(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(o)
}
