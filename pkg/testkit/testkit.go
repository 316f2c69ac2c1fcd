// Package testkit holds shared helpers for package tests: a migrated
// in-memory database and small HTTP request/response helpers built on
// httptest and testify.
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/elitetable/elitetable/database/migrations"
	"github.com/elitetable/elitetable/pkg/database"
	"github.com/elitetable/elitetable/pkg/migration"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with foreign keys on and
// every migration applied. It is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("elitetable_test_%d", dbSeq.Add(1))
	db, err := database.Open("file:" + name + "?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	_, err = migration.New(db, io.Discard).Run()
	require.NoError(t, err)
	return db
}

// Request describes one call made with Do.
type Request struct {
	Method  string
	Path    string
	Body    any // marshalled to JSON unless it is a string or []byte
	Headers map[string]string
	Cookies []*http.Cookie
}

// Do runs req against h and returns the recorder.
func Do(t testing.TB, h http.Handler, req Request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch b := req.Body.(type) {
	case nil:
	case string:
		body = strings.NewReader(b)
	case []byte:
		body = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(req.Method, req.Path, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}
	for _, c := range req.Cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

// Decode unmarshals the recorder body into a fresh T.
func Decode[T any](t testing.TB, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

// Bearer builds an Authorization header map.
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
