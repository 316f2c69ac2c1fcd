package kernel_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/database/seeders"
	"github.com/elitetable/elitetable/internal/kernel"
	"github.com/elitetable/elitetable/pkg/cache"
	"github.com/elitetable/elitetable/pkg/session"
	"github.com/elitetable/elitetable/pkg/storage"
	"github.com/elitetable/elitetable/pkg/testkit"
	"github.com/elitetable/elitetable/pkg/ws"
)

type harness struct {
	h    http.Handler
	k    *kernel.Kernel
	db   *gorm.DB
	disk *storage.Local
}

func newHarness(t *testing.T, mutate ...func(*kernel.Options)) *harness {
	t.Helper()
	cache.Use(cache.NewMemory())

	disk, err := storage.NewLocal(t.TempDir(), "http://test.local/storage")
	require.NoError(t, err)

	sess := session.DefaultOptions()
	sess.Secret = "kernel-test-secret"
	sess.Secure = false

	opts := kernel.Options{DB: testkit.NewDB(t), Disk: disk, Session: sess}
	for _, m := range mutate {
		m(&opts)
	}
	k, err := kernel.New(opts)
	require.NoError(t, err)
	t.Cleanup(k.Close)
	return &harness{h: k.Handler(), k: k, db: opts.DB, disk: disk}
}

func (hs *harness) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return testkit.Do(t, hs.h, testkit.Request{Method: method, Path: path, Body: body, Headers: headers})
}

func (hs *harness) seed(t *testing.T) {
	t.Helper()
	rec := hs.do(t, http.MethodPost, "/api/seed", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// token logs in through /api/auth/token and returns a bearer header.
func (hs *harness) token(t *testing.T, email, password string) map[string]string {
	t.Helper()
	rec := hs.do(t, http.MethodPost, "/api/auth/token", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := testkit.Decode[struct {
		Token string `json:"token"`
	}](t, rec)
	require.NotEmpty(t, out.Token)
	return testkit.Bearer(out.Token)
}

func (hs *harness) register(t *testing.T, email, role string) *httptest.ResponseRecorder {
	t.Helper()
	return hs.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email": email, "password": "secret123", "name": "Test User", "role": role,
	}, nil)
}

type errorBody struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors"`
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	hs := newHarness(t)

	require.Equal(t, http.StatusCreated, hs.register(t, "dup@example.com", "").Code)

	rec := hs.register(t, "  DUP@Example.com ", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", testkit.Decode[errorBody](t, rec).Error)
}

func TestRegisterNeutralizesRoleEscalation(t *testing.T) {
	hs := newHarness(t)

	rec := hs.register(t, "sneaky@example.com", "admin")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "customer", testkit.Decode[map[string]any](t, rec)["role"])

	rec = hs.register(t, "chef@example.com", "restaurant_owner")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "restaurant_owner", testkit.Decode[map[string]any](t, rec)["role"])
}

func TestRegisterValidation(t *testing.T) {
	hs := newHarness(t)

	rec := hs.do(t, http.MethodPost, "/api/auth/register", map[string]any{"email": "not-an-email", "password": "x"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := testkit.Decode[errorBody](t, rec)
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "password")
	assert.Contains(t, body.Errors, "name")
}

func TestPasswordNeverLeaks(t *testing.T) {
	hs := newHarness(t)
	hs.seed(t)

	reg := hs.register(t, "leak@example.com", "")
	require.Equal(t, http.StatusCreated, reg.Code)
	admin := hs.token(t, "admin@elitetable.com", seeders.DemoPassword)

	for _, rec := range []*httptest.ResponseRecorder{
		reg,
		hs.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "leak@example.com", "password": "secret123"}, nil),
		hs.do(t, http.MethodGet, "/api/auth/me", nil, admin),
		hs.do(t, http.MethodGet, "/api/admin/users", nil, admin),
	} {
		require.Less(t, rec.Code, 300, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), `"password"`)
		assert.NotContains(t, rec.Body.String(), "$2a$")
	}
}

func TestSessionLoginAndLogout(t *testing.T) {
	hs := newHarness(t)
	require.Equal(t, http.StatusCreated, hs.register(t, "sess@example.com", "").Code)

	login := hs.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "sess@example.com", "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	me := testkit.Do(t, hs.h, testkit.Request{Method: http.MethodGet, Path: "/api/auth/me", Cookies: cookies})
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "sess@example.com", testkit.Decode[map[string]any](t, me)["email"])

	out := testkit.Do(t, hs.h, testkit.Request{Method: http.MethodPost, Path: "/api/auth/logout", Cookies: cookies})
	require.Equal(t, http.StatusOK, out.Code)

	again := testkit.Do(t, hs.h, testkit.Request{Method: http.MethodGet, Path: "/api/auth/me", Cookies: cookies})
	assert.Equal(t, http.StatusUnauthorized, again.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	hs := newHarness(t)
	hs.seed(t)

	rec := hs.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@elitetable.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	unknown := hs.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ghost@elitetable.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, rec.Body.String(), unknown.Body.String())
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	hs := newHarness(t)
	hs.seed(t)

	assert.Equal(t, http.StatusUnauthorized, hs.do(t, http.MethodGet, "/api/admin/stats", nil, nil).Code)

	customer := hs.token(t, "customer@elitetable.com", seeders.DemoPassword)
	assert.Equal(t, http.StatusForbidden, hs.do(t, http.MethodGet, "/api/admin/stats", nil, customer).Code)
	owner := hs.token(t, "owner@elitetable.com", seeders.DemoPassword)
	assert.Equal(t, http.StatusForbidden, hs.do(t, http.MethodGet, "/api/admin/users", nil, owner).Code)

	admin := hs.token(t, "admin@elitetable.com", seeders.DemoPassword)
	rec := hs.do(t, http.MethodGet, "/api/admin/stats", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := testkit.Decode[map[string]any](t, rec)
	assert.EqualValues(t, 5, stats["totalUsers"])
	assert.EqualValues(t, 6, stats["totalRestaurants"])
	assert.EqualValues(t, 4, stats["activeRestaurants"])
}

func TestInvalidBearerTokenIs401(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/api/auth/me", nil, testkit.Bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSeedIsIdempotent(t *testing.T) {
	hs := newHarness(t)

	first := hs.do(t, http.MethodPost, "/api/seed", nil, nil)
	require.Equal(t, http.StatusOK, first.Code)
	second := hs.do(t, http.MethodPost, "/api/seed", nil, nil)
	require.Equal(t, http.StatusOK, second.Code)

	type result struct {
		Message string         `json:"message"`
		Counts  map[string]int `json:"counts"`
	}
	a, b := testkit.Decode[result](t, first), testkit.Decode[result](t, second)
	assert.Equal(t, a.Counts, b.Counts)
	assert.Equal(t, 5, a.Counts["users"])

	admin := hs.token(t, "admin@elitetable.com", seeders.DemoPassword)
	users := testkit.Decode[[]map[string]any](t, hs.do(t, http.MethodGet, "/api/admin/users", nil, admin))
	assert.Len(t, users, 5)
	all := testkit.Decode[[]map[string]any](t, hs.do(t, http.MethodGet, "/api/admin/restaurants", nil, admin))
	assert.Len(t, all, 6)
}

func TestSeedGuards(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		hs := newHarness(t, func(o *kernel.Options) { o.Production = true })
		assert.Equal(t, http.StatusForbidden, hs.do(t, http.MethodPost, "/api/seed", nil, nil).Code)
	})
	t.Run("token", func(t *testing.T) {
		hs := newHarness(t, func(o *kernel.Options) { o.SeedToken = "s3cret" })
		assert.Equal(t, http.StatusForbidden, hs.do(t, http.MethodPost, "/api/seed", nil, nil).Code)
		assert.Equal(t, http.StatusForbidden, hs.do(t, http.MethodPost, "/api/seed", nil, map[string]string{"X-Seed-Token": "nope"}).Code)
		assert.Equal(t, http.StatusOK, hs.do(t, http.MethodPost, "/api/seed", nil, map[string]string{"X-Seed-Token": "s3cret"}).Code)
	})
}

func TestPublicListingShowsOnlyActiveRestaurants(t *testing.T) {
	hs := newHarness(t)
	hs.seed(t)

	rec := hs.do(t, http.MethodGet, "/api/restaurants", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	for _, r := range testkit.Decode[[]map[string]any](t, rec) {
		assert.Equal(t, "active", r["status"])
		names = append(names, r["name"].(string))
	}
	assert.ElementsMatch(t, []string{"Sequoia", "Abou El Sid", "Zooba", "Fish Market"}, names)

	egyptian := testkit.Decode[[]map[string]any](t, hs.do(t, http.MethodGet, "/api/restaurants?cuisine=Egyptian", nil, nil))
	require.Len(t, egyptian, 1)
	assert.Equal(t, "Abou El Sid", egyptian[0]["name"])

	owner := hs.token(t, "owner@elitetable.com", seeders.DemoPassword)
	mine := testkit.Decode[[]map[string]any](t, hs.do(t, http.MethodGet, "/api/owner/restaurants", nil, owner))
	assert.Len(t, mine, 3)
}

func TestHiddenRestaurantsAreNotPublic(t *testing.T) {
	hs := newHarness(t)
	hs.seed(t)

	customer := hs.token(t, "customer@elitetable.com", seeders.DemoPassword)
	owner := hs.token(t, "owner@elitetable.com", seeders.DemoPassword)
	admin := hs.token(t, "admin@elitetable.com", seeders.DemoPassword)

	pending := "/api/restaurants/" + seeders.FixtureID("restaurants", "Kazoku")
	suspended := "/api/restaurants/" + seeders.FixtureID("restaurants", "Koshary Corner")

	for _, path := range []string{pending, suspended} {
		for _, suffix := range []string{"", "/menu", "/reviews"} {
			assert.Equal(t, http.StatusNotFound, hs.do(t, http.MethodGet, path+suffix, nil, nil).Code, path+suffix)
			assert.Equal(t, http.StatusNotFound, hs.do(t, http.MethodGet, path+suffix, nil, customer).Code, path+suffix)
			assert.Equal(t, http.StatusOK, hs.do(t, http.MethodGet, path+suffix, nil, admin).Code, path+suffix)
		}
	}

	assert.Equal(t, http.StatusOK, hs.do(t, http.MethodGet, pending, nil, owner).Code)
	assert.Equal(t, http.StatusOK, hs.do(t, http.MethodGet, pending+"/menu", nil, owner).Code)
	assert.Equal(t, http.StatusNotFound, hs.do(t, http.MethodGet, suspended, nil, owner).Code)
}

func TestReservationConfirmationRoundTrip(t *testing.T) {
	hs := newHarness(t)
	hs.seed(t)
	customer := hs.token(t, "customer2@elitetable.com", seeders.DemoPassword)
	sequoia := seeders.FixtureID("restaurants", "Sequoia")

	rec := hs.do(t, http.MethodPost, "/api/reservations", map[string]any{
		"restaurantId": sequoia, "date": "2030-01-15", "time": "19:30", "partySize": 2,
	}, customer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := testkit.Decode[map[string]any](t, rec)
	code, _ := created["confirmationCode"].(string)
	assert.Regexp(t, `^ELITE[A-Z0-9]{6}$`, code)
	assert.Equal(t, "pending", created["status"])
	id := created["id"].(string)

	got := testkit.Decode[map[string]any](t, hs.do(t, http.MethodGet, "/api/reservations/"+id, nil, customer))
	assert.Equal(t, code, got["confirmationCode"])

	owner := hs.token(t, "owner@elitetable.com", seeders.DemoPassword)
	confirm := hs.do(t, http.MethodPatch, "/api/reservations/"+id, map[string]any{"status": "confirmed"}, owner)
	require.Equal(t, http.StatusOK, confirm.Code, confirm.Body.String())
	assert.Equal(t, code, testkit.Decode[map[string]any](t, confirm)["confirmationCode"])

	other := hs.token(t, "customer@elitetable.com", seeders.DemoPassword)
	assert.Equal(t, http.StatusForbidden, hs.do(t, http.MethodGet, "/api/reservations/"+id, nil, other).Code)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	hs := newHarness(t)
	hs.seed(t)
	admin := hs.token(t, "admin@elitetable.com", seeders.DemoPassword)

	rec := hs.do(t, http.MethodDelete, "/api/admin/users/"+seeders.FixtureID("users", "admin@elitetable.com"), nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You cannot delete your own account", testkit.Decode[errorBody](t, rec).Error)

	assert.Equal(t, http.StatusOK, hs.do(t, http.MethodGet, "/api/auth/me", nil, admin).Code)
}

func TestDeletedUserLosesAccess(t *testing.T) {
	hs := newHarness(t)
	hs.seed(t)
	require.Equal(t, http.StatusCreated, hs.register(t, "temp@example.com", "").Code)
	temp := hs.token(t, "temp@example.com", "secret123")
	me := testkit.Decode[map[string]any](t, hs.do(t, http.MethodGet, "/api/auth/me", nil, temp))

	admin := hs.token(t, "admin@elitetable.com", seeders.DemoPassword)
	require.Equal(t, http.StatusOK, hs.do(t, http.MethodDelete, "/api/admin/users/"+me["id"].(string), nil, admin).Code)

	assert.Equal(t, http.StatusUnauthorized, hs.do(t, http.MethodGet, "/api/auth/me", nil, temp).Code)
}

type catalogResponse struct {
	Data struct {
		Restaurants []struct {
			Name string `json:"name"`
			Menu []struct {
				Name  string  `json:"name"`
				Price float64 `json:"price"`
			} `json:"menu"`
		} `json:"restaurants"`
	} `json:"data"`
	Errors []any `json:"errors"`
}

func TestGraphQLCatalog(t *testing.T) {
	hs := newHarness(t)
	hs.seed(t)

	rec := hs.do(t, http.MethodPost, "/graphql", map[string]any{
		"query": `{ restaurants(cuisine: "Mediterranean") { name menu { name price } } }`,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	out := testkit.Decode[catalogResponse](t, rec)
	require.Empty(t, out.Errors)
	require.Len(t, out.Data.Restaurants, 1)
	assert.Equal(t, "Sequoia", out.Data.Restaurants[0].Name)
	assert.NotEmpty(t, out.Data.Restaurants[0].Menu)

	pending := hs.do(t, http.MethodPost, "/graphql", map[string]any{
		"query": `query($id: ID!) { restaurant(id: $id) { name } }`,
		"variables": map[string]any{"id": seeders.FixtureID("restaurants", "Kazoku")},
	}, nil)
	assert.Contains(t, pending.Body.String(), `"restaurant":null`)
}

func TestImageUpload(t *testing.T) {
	hs := newHarness(t)
	require.Equal(t, http.StatusCreated, hs.register(t, "uploader@example.com", "restaurant_owner").Code)
	owner := hs.token(t, "uploader@example.com", "secret123")

	upload := func(headers map[string]string, name string, content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		hs.h.ServeHTTP(rec, req)
		return rec
	}

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	assert.Equal(t, http.StatusUnauthorized, upload(nil, "logo.png", png).Code)

	rec := upload(owner, "logo.png", png)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := testkit.Decode[map[string]string](t, rec)
	assert.True(t, strings.HasPrefix(out["path"], "restaurants/"))
	assert.True(t, strings.HasSuffix(out["path"], ".png"))
	_, err := os.Stat(filepath.Join(hs.disk.Root(), filepath.FromSlash(out["path"])))
	assert.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, upload(owner, "notes.png", []byte("just some text")).Code)
}

func TestHealthz(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIWithoutDatabase(t *testing.T) {
	cache.Use(cache.NewMemory())
	k, err := kernel.New(kernel.Options{Session: session.DefaultOptions()})
	require.NoError(t, err)
	t.Cleanup(k.Close)

	rec := testkit.Do(t, k.Handler(), testkit.Request{Method: http.MethodGet, Path: "/api/restaurants"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"DATABASE_URL is not configured"}`, rec.Body.String())

	health := testkit.Do(t, k.Handler(), testkit.Request{Method: http.MethodGet, Path: "/healthz"})
	assert.Equal(t, http.StatusServiceUnavailable, health.Code)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestNotificationStreamPushesToUser(t *testing.T) {
	hub := ws.NewHub(nil)
	runCtx, stop := context.WithCancel(context.Background())
	t.Cleanup(stop)
	go hub.Run(runCtx)

	hs := newHarness(t, func(o *kernel.Options) { o.Hub = hub })
	hs.seed(t)
	srv := httptest.NewServer(hs.h)
	t.Cleanup(srv.Close)

	customer := hs.token(t, "customer@elitetable.com", seeders.DemoPassword)
	header := http.Header{}
	header.Set("Authorization", customer["Authorization"])
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/notifications/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	admin := hs.token(t, "admin@elitetable.com", seeders.DemoPassword)
	rec := hs.do(t, http.MethodPost, "/api/admin/notifications", map[string]any{
		"userId":  seeders.FixtureID("users", "customer@elitetable.com"),
		"title":   "Table ready",
		"message": "Your table at Sequoia is ready.",
		"type":    "success",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type         string         `json:"type"`
		Notification map[string]any `json:"notification"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "notification", msg.Type)
	assert.Equal(t, "Table ready", msg.Notification["title"])

	unauth, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/notifications/ws", nil)
	if unauth != nil {
		_ = unauth.Close()
	}
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestActivityLogSurvivesRegistrationBurst(t *testing.T) {
	hs := newHarness(t, func(o *kernel.Options) { o.AsyncEvents = true })

	const burst = 40
	var wg sync.WaitGroup
	for i := 0; i < burst; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := testkit.Do(t, hs.h, testkit.Request{
				Method: http.MethodPost, Path: "/api/auth/register",
				Body: map[string]any{"email": fmt.Sprintf("diner%d@example.com", i), "password": "secret123", "name": "Diner"},
			})
			assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		}(i)
	}
	wg.Wait()
	hs.k.Close()

	var n int64
	require.NoError(t, hs.db.Model(&models.ActivityLog{}).
		Where("activity_type = ?", models.ActivityUserRegistered).Count(&n).Error)
	assert.Equal(t, int64(burst), n)
}
