package controllers

import (
	"net/http"

	"github.com/elitetable/elitetable/app/requests"
	"github.com/elitetable/elitetable/app/services"
	"github.com/elitetable/elitetable/pkg/ctx"
	"github.com/elitetable/elitetable/pkg/logger"
	"github.com/elitetable/elitetable/pkg/ws"
)

type EngagementController struct {
	service *services.EngagementService
	hub     *ws.Hub
}

// NewEngagementController builds the favorites and notifications handlers.
// hub may be nil, in which case the websocket stream answers 503.
func NewEngagementController(service *services.EngagementService, hub *ws.Hub) *EngagementController {
	return &EngagementController{service: service, hub: hub}
}

func (h *EngagementController) Favorites(c *ctx.Context) {
	out, err := h.service.Favorites(c.Context(), c.Principal())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *EngagementController) IsFavorite(c *ctx.Context) {
	ok, err := h.service.IsFavorite(c.Context(), c.Principal(), c.Param("restaurantId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"isFavorite": ok})
}

func (h *EngagementController) AddFavorite(c *ctx.Context) {
	var in requests.FavoriteInput
	if !c.BindJSON(&in) {
		return
	}
	f, err := h.service.AddFavorite(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(f)
}

func (h *EngagementController) RemoveFavorite(c *ctx.Context) {
	if err := h.service.RemoveFavorite(c.Context(), c.Principal(), c.Param("restaurantId")); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"success": true})
}

func (h *EngagementController) Notifications(c *ctx.Context) {
	out, err := h.service.Notifications(c.Context(), c.Principal())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(out)
}

func (h *EngagementController) MarkRead(c *ctx.Context) {
	n, err := h.service.MarkNotificationRead(c.Context(), c.Principal(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(n)
}

// Stream upgrades to a websocket that receives the caller's notifications
// and broadcasts as they are created.
func (h *EngagementController) Stream(c *ctx.Context) {
	if h.hub == nil {
		c.Error(http.StatusServiceUnavailable, "Notification stream unavailable")
		return
	}
	p := c.Principal()
	if err := h.hub.Upgrade(c.W, c.R, p.UserID); err != nil {
		// Upgrade has already answered the handshake.
		logger.WithCtx(c.Context()).Warn("ws: upgrade failed", "user_id", p.UserID, "error", err)
	}
}
