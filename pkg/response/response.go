// Package response writes JSON bodies for code paths that run outside a
// handler context (middleware, router fallbacks).
package response

import (
	"encoding/json"
	"net/http"

	"github.com/elitetable/elitetable/pkg/apperr"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, apperr.Body{Error: message})
}

// Fail maps err through apperr and writes the result.
func Fail(w http.ResponseWriter, err error, exposeDetails bool) {
	JSON(w, apperr.Status(err), apperr.Response(err, exposeDetails))
}

func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Not authenticated")
}

func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}

func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
