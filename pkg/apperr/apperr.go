// Package apperr defines the error taxonomy shared by services and handlers.
//
// Services return *apperr.Error values and the HTTP layer maps them with
// Status and Response:
//
//	if errors.Is(err, repositories.ErrNotFound) {
//	    return nil, apperr.NotFound("Restaurant")
//	}
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInfrastructure Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "infrastructure"
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field messages keyed by JSON path (validation only).
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return e.Message + " (" + strings.Join(keys, ", ") + ")"
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports field-level input failures.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// Invalid reports a request that is well-formed but not acceptable.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(message string) *Error {
	if message == "" {
		message = "Not authenticated"
	}
	return &Error{Kind: KindAuthentication, Message: message}
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "Forbidden"
	}
	return &Error{Kind: KindAuthorization, Message: message}
}

// NotFound builds "<what> not found".
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps an infrastructure failure. The wrapped error is logged,
// never shown to clients in production.
func Internal(err error) *Error {
	return &Error{Kind: KindInfrastructure, Message: "Internal server error", Err: err}
}

// As extracts an *Error, classifying anything else as infrastructure.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Status maps err to an HTTP status code. Conflicts surface as 400 to keep
// the duplicate-email contract of the registration endpoint.
func Status(err error) int {
	switch As(err).Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON error payload.
type Body struct {
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors,omitempty"`
	Details string            `json:"details,omitempty"`
}

// Response builds the payload for err. Details of infrastructure errors are
// included only when exposeDetails is true.
func Response(err error, exposeDetails bool) Body {
	e := As(err)
	b := Body{Error: e.Message, Errors: e.Fields}
	if e.Kind == KindInfrastructure && exposeDetails && e.Err != nil {
		b.Details = e.Err.Error()
	}
	return b
}
