package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitetable/elitetable/pkg/cache"
	"github.com/elitetable/elitetable/pkg/session"
)

func opts() session.Options {
	o := session.DefaultOptions()
	o.Secret = "test-secret"
	return o
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	cache.Use(cache.NewMemory())
	mw := session.Middleware(opts())

	login := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromCtx(r)
		s.Regenerate()
		s.Set("user_id", "u-1")
		require.NoError(t, s.Save(r.Context(), w))
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	var got string
	me := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromCtx(r).GetString("user_id")
	}))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookies[0])
	me.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "u-1", got)
}

func TestTamperedCookieStartsEmptySession(t *testing.T) {
	cache.Use(cache.NewMemory())
	mw := session.Middleware(opts())

	var got string
	var ok bool
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = session.FromCtx(r).GetString("user_id")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "elitetable_session", Value: "forged"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestInvalidateExpiresCookie(t *testing.T) {
	cache.Use(cache.NewMemory())
	mw := session.Middleware(opts())

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromCtx(r)
		s.Invalidate()
		require.NoError(t, s.Save(r.Context(), w))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}
