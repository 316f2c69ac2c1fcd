package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/elitetable/elitetable/pkg/auth"
	"github.com/elitetable/elitetable/pkg/logger"
	"github.com/elitetable/elitetable/pkg/response"
	"github.com/elitetable/elitetable/pkg/session"
)

// Session keys written at login.
const (
	SessionUserID = "user_id"
	SessionRole   = "role"
)

// PrincipalResolver reloads the caller by ID so role changes and deletions
// take effect immediately. It returns (nil, nil) for unknown users.
type PrincipalResolver func(ctx context.Context, userID string) (*auth.Principal, error)

// Authenticate resolves the caller from a Bearer token or the session and
// stores an *auth.Principal in the request context. Anonymous requests pass
// through untouched; use RequireAuth to reject them.
func Authenticate(resolve PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var p *auth.Principal

			if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
				claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
				if err != nil {
					response.Error(w, http.StatusUnauthorized, "Invalid token")
					return
				}
				p = &auth.Principal{UserID: claims.UserID, Role: claims.Role}
			} else if sess := session.FromCtx(r); sess != nil {
				if uid, ok := sess.GetString(SessionUserID); ok && uid != "" {
					role, _ := sess.GetString(SessionRole)
					p = &auth.Principal{UserID: uid, Role: role}
				}
			}

			if p != nil && resolve != nil {
				fresh, err := resolve(r.Context(), p.UserID)
				if err != nil {
					logger.WithCtx(r.Context()).Error("auth: resolve principal", "user_id", p.UserID, "error", err)
					response.Error(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				p = fresh
			}

			if p != nil {
				r = r.WithContext(auth.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) == nil {
			response.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
