// Package session provides cookie sessions whose data lives in pkg/cache
// (Redis, or memory for single-process deployments). The cookie only
// carries the session ID, sealed with SESSION_SECRET.
//
//	r.Use(session.Middleware(session.DefaultOptions()))
//
//	sess := session.FromCtx(r)
//	sess.Regenerate()
//	sess.Set("user_id", user.ID)
//	_ = sess.Save(r.Context(), w)
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/elitetable/elitetable/config"
	"github.com/elitetable/elitetable/pkg/cache"
	"github.com/elitetable/elitetable/pkg/crypt"
)

// Options configures session behaviour.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	SameSite   http.SameSite
	Path       string
	Secret     string
}

// DefaultOptions reads the secret from SESSION_SECRET and marks the cookie
// Secure in production.
func DefaultOptions() Options {
	return Options{
		CookieName: "elitetable_session",
		TTL:        7 * 24 * time.Hour,
		Secure:     config.IsProduction(),
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
		Secret:     config.SessionSecret(),
	}
}

type ctxKey struct{}

// Session is an in-request session handle.
type Session struct {
	id        string
	prevID    string
	data      map[string]any
	opts      Options
	box       *crypt.Box
	changed   bool
	destroyed bool
}

func newID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func cacheKey(id string) string { return "elitetable:session:" + id }

func (s *Session) Set(key string, value any) {
	s.data[key] = value
	s.changed = true
}

func (s *Session) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key].(string)
	return v, ok
}

func (s *Session) Delete(key string) {
	delete(s.data, key)
	s.changed = true
}

// Regenerate issues a fresh ID, keeping the data. Call on login.
func (s *Session) Regenerate() {
	if s.prevID == "" {
		s.prevID = s.id
	}
	s.id = newID()
	s.changed = true
}

// Invalidate clears the data and expires the cookie on Save. Call on logout.
func (s *Session) Invalidate() {
	s.data = map[string]any{}
	s.destroyed = true
	s.changed = true
}

func (s *Session) ID() string { return s.id }

// Save persists the session and writes (or expires) the cookie.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	if s.prevID != "" {
		_ = cache.Forget(ctx, cacheKey(s.prevID))
		s.prevID = ""
	}

	if s.destroyed {
		_ = cache.Forget(ctx, cacheKey(s.id))
		http.SetCookie(w, s.cookie("", -1))
		s.changed = false
		return nil
	}

	if err := cache.Set(ctx, cacheKey(s.id), s.data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	sealed, err := s.box.SealString(s.id)
	if err != nil {
		return fmt.Errorf("session: seal: %w", err)
	}
	http.SetCookie(w, s.cookie(sealed, int(s.opts.TTL.Seconds())))

	s.changed = false
	return nil
}

func (s *Session) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     s.opts.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	}
}

// Middleware loads (or starts) the session for every request. A cookie that
// fails to unseal starts a fresh, empty session.
func Middleware(opts Options) func(http.Handler) http.Handler {
	box, err := crypt.New(opts.Secret)
	if err != nil {
		panic(fmt.Sprintf("session: %v", err))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{opts: opts, box: box, data: map[string]any{}}

			if c, err := r.Cookie(opts.CookieName); err == nil && c.Value != "" {
				if id, err := box.OpenString(c.Value); err == nil {
					sess.id = id
					var data map[string]any
					if cache.Get(r.Context(), cacheKey(id), &data) && data != nil {
						sess.data = data
					}
				}
			}
			if sess.id == "" {
				sess.id = newID()
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

// FromCtx returns the request's session, or nil when the middleware did not
// run (e.g. stateless deployments).
func FromCtx(r *http.Request) *Session {
	s, _ := r.Context().Value(ctxKey{}).(*Session)
	return s
}
