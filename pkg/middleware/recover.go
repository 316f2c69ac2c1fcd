package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/elitetable/elitetable/pkg/logger"
	"github.com/elitetable/elitetable/pkg/response"
)

// Recovery turns a panic into a generic 500. The stack trace is logged,
// never sent to the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logger.WithCtx(r.Context()).Error("panic recovered",
					"error", fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				response.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
