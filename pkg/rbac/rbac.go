// Package rbac guards routes by role.
package rbac

import (
	"net/http"

	"github.com/elitetable/elitetable/pkg/auth"
	"github.com/elitetable/elitetable/pkg/response"
)

// HasRole allows only principals holding one of roles. Anonymous callers get
// 401, authenticated callers with another role get 403. Mount after
// middleware.Authenticate.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.FromContext(r.Context())
			if p == nil {
				response.Unauthorized(w)
				return
			}
			if !allowed[p.Role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Admin is HasRole(auth.RoleAdmin).
var Admin = HasRole(auth.RoleAdmin)
