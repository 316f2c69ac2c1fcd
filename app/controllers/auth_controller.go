// Package controllers adapts HTTP requests to service calls. Controllers
// bind and validate input, pass the request principal to the service and
// write the result; they hold no business rules.
package controllers

import (
	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/app/requests"
	"github.com/elitetable/elitetable/app/services"
	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/ctx"
	"github.com/elitetable/elitetable/pkg/middleware"
	"github.com/elitetable/elitetable/pkg/session"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (h *AuthController) Register(c *ctx.Context) {
	var in requests.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := h.service.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(u)
}

// Login starts a session for the user. The session ID is rotated so a
// pre-login cookie cannot be fixated.
func (h *AuthController) Login(c *ctx.Context) {
	var in requests.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := h.service.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	if err := startSession(c, u); err != nil {
		c.Fail(apperr.Internal(err))
		return
	}
	c.Success(u)
}

func startSession(c *ctx.Context, u *models.User) error {
	sess := session.FromCtx(c.R)
	if sess == nil {
		return nil
	}
	sess.Regenerate()
	sess.Set(middleware.SessionUserID, u.ID)
	sess.Set(middleware.SessionRole, u.Role)
	return sess.Save(c.Context(), c.W)
}

// Token is the stateless login: it returns a bearer JWT instead of a cookie.
func (h *AuthController) Token(c *ctx.Context) {
	var in requests.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := h.service.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	tok, err := h.service.Token(u)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"token": tok, "user": u})
}

func (h *AuthController) Logout(c *ctx.Context) {
	if sess := session.FromCtx(c.R); sess != nil {
		sess.Invalidate()
		if err := sess.Save(c.Context(), c.W); err != nil {
			c.Fail(apperr.Internal(err))
			return
		}
	}
	c.Success(map[string]string{"message": "Logged out successfully"})
}

func (h *AuthController) Me(c *ctx.Context) {
	u, err := h.service.Me(c.Context(), c.Principal())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}

func (h *AuthController) UpdateMe(c *ctx.Context) {
	var in requests.ProfileInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := h.service.UpdateProfile(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}
