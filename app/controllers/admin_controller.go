package controllers

import (
	"strconv"

	"github.com/elitetable/elitetable/app/requests"
	"github.com/elitetable/elitetable/app/services"
	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/ctx"
)

type AdminController struct {
	service *services.AdminService
}

func NewAdminController(service *services.AdminService) *AdminController {
	return &AdminController{service: service}
}

// intQuery reads an optional integer query parameter. Zero means "use the
// service default".
func intQuery(c *ctx.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.Fail(apperr.Validation(map[string]string{key: "Must be a whole number"}))
		return 0, false
	}
	return n, true
}

func (h *AdminController) Stats(c *ctx.Context) {
	st, err := h.service.Stats(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(st)
}

func (h *AdminController) Users(c *ctx.Context) {
	out, err := h.service.Users(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *AdminController) SetRole(c *ctx.Context) {
	var in requests.RoleInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := h.service.SetRole(c.Context(), c.Principal(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}

func (h *AdminController) DeleteUser(c *ctx.Context) {
	if err := h.service.DeleteUser(c.Context(), c.Principal(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"success": true})
}

func (h *AdminController) Restaurants(c *ctx.Context) {
	out, err := h.service.Restaurants(c.Context(), c.Query("status"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *AdminController) SetRestaurantStatus(c *ctx.Context) {
	var in requests.RestaurantStatusInput
	if !c.BindJSON(&in) {
		return
	}
	r, err := h.service.SetRestaurantStatus(c.Context(), c.Principal(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(r)
}

func (h *AdminController) Reservations(c *ctx.Context) {
	out, err := h.service.Reservations(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *AdminController) Orders(c *ctx.Context) {
	out, err := h.service.Orders(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *AdminController) Notifications(c *ctx.Context) {
	out, err := h.service.Notifications(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *AdminController) SendNotification(c *ctx.Context) {
	var in requests.NotificationInput
	if !c.BindJSON(&in) {
		return
	}
	n, err := h.service.SendNotification(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(n)
}

func (h *AdminController) ActivityLogs(c *ctx.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	out, err := h.service.ActivityLogs(c.Context(), limit)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *AdminController) Revenue(c *ctx.Context) {
	days, ok := intQuery(c, "days")
	if !ok {
		return
	}
	out, err := h.service.Revenue(c.Context(), days)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *AdminController) PopularRestaurants(c *ctx.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	out, err := h.service.PopularRestaurants(c.Context(), limit)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}
