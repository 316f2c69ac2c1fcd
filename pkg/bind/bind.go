// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/elitetable/elitetable/config"
	"github.com/elitetable/elitetable/pkg/apperr"
	"github.com/elitetable/elitetable/pkg/validate"
)

const defaultMaxBody = 1 << 20

// JSON decodes r.Body into dest and validates it. Unknown fields are
// ignored, which is how server-assigned fields (id, createdAt, ...) are
// stripped from client input. The body is capped at MAX_BODY_BYTES.
//
// Every failure is an *apperr.Error of kind validation.
func JSON(r *http.Request, dest any) error {
	limit := int64(config.Int("MAX_BODY_BYTES", defaultMaxBody))
	if limit <= 0 {
		limit = defaultMaxBody
	}
	r.Body = http.MaxBytesReader(nil, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Invalid("request body too large (max %d bytes)", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return apperr.Invalid("request body is empty")
		default:
			return apperr.Invalid("invalid JSON: %v", err)
		}
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return apperr.Validation(errs)
	}
	return nil
}
