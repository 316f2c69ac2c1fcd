package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elitetable/elitetable/pkg/apperr"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation(map[string]string{"email": "bad"}), http.StatusBadRequest},
		{apperr.Conflict("Email already registered"), http.StatusBadRequest},
		{apperr.Unauthenticated(""), http.StatusUnauthorized},
		{apperr.Forbidden(""), http.StatusForbidden},
		{apperr.NotFound("Restaurant"), http.StatusNotFound},
		{apperr.Internal(errors.New("dial tcp: refused")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, apperr.Status(tc.err), tc.err.Error())
	}
}

func TestStatusSeesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("create restaurant: %w", apperr.Forbidden("not your restaurant"))
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
}

func TestResponseHidesDetails(t *testing.T) {
	err := apperr.Internal(errors.New("pq: password authentication failed"))

	hidden := apperr.Response(err, false)
	assert.Equal(t, "Internal server error", hidden.Error)
	assert.Empty(t, hidden.Details)

	shown := apperr.Response(err, true)
	assert.Equal(t, "pq: password authentication failed", shown.Details)
}

func TestValidationResponseCarriesFields(t *testing.T) {
	body := apperr.Response(apperr.Validation(map[string]string{"items[0].quantity": "too small"}), false)
	assert.Equal(t, "Validation failed", body.Error)
	assert.Equal(t, "too small", body.Errors["items[0].quantity"])
}
