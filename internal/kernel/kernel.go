// Package kernel assembles the EliteTable HTTP handler: the global
// middleware stack, the API route tables and the side endpoints
// (/healthz, /metrics, /graphql, /storage).
//
//	k, err := kernel.New(kernel.FromConfig(database.DB, disk, hub))
//	defer k.Close()
//	http.ListenAndServe(":8080", k.Handler())
package kernel

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/elitetable/elitetable/app/controllers"
	"github.com/elitetable/elitetable/app/graph"
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/app/routes"
	"github.com/elitetable/elitetable/app/services"
	"github.com/elitetable/elitetable/config"
	"github.com/elitetable/elitetable/pkg/database"
	"github.com/elitetable/elitetable/pkg/event"
	gql "github.com/elitetable/elitetable/pkg/graphql"
	"github.com/elitetable/elitetable/pkg/logger"
	"github.com/elitetable/elitetable/pkg/metrics"
	"github.com/elitetable/elitetable/pkg/middleware"
	"github.com/elitetable/elitetable/pkg/reqid"
	"github.com/elitetable/elitetable/pkg/response"
	"github.com/elitetable/elitetable/pkg/router"
	"github.com/elitetable/elitetable/pkg/session"
	"github.com/elitetable/elitetable/pkg/storage"
	"github.com/elitetable/elitetable/pkg/workerpool"
	"github.com/elitetable/elitetable/pkg/ws"
)

// Options configures New. DB may be nil, in which case every /api route
// answers 500 until the process is restarted with DATABASE_URL set.
type Options struct {
	DB           *gorm.DB
	Disk         storage.Disk
	Hub          *ws.Hub // nil disables the notification stream
	QueryTimeout time.Duration

	Session        session.Options
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	Production bool
	SeedToken  string

	// AsyncEvents runs listeners on a worker pool. Tests leave it off so
	// side effects are visible when the request returns.
	AsyncEvents bool
}

// FromConfig fills Options from the environment.
func FromConfig(db *gorm.DB, disk storage.Disk, hub *ws.Hub) Options {
	return Options{
		DB:             db,
		Disk:           disk,
		Hub:            hub,
		QueryTimeout:   config.QueryTimeout(),
		Session:        session.DefaultOptions(),
		CORSOrigins:    config.CORSOrigins(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
		Production:     config.IsProduction(),
		SeedToken:      config.SeedToken(),
		AsyncEvents:    true,
	}
}

// Kernel owns the router and the worker pools behind it.
type Kernel struct {
	router  *router.Router
	db      *gorm.DB
	pools   []*workerpool.Pool
	Events  *event.Bus
	Auth    *services.AuthService
	Catalog *services.CatalogService
}

// New wires repositories, services, controllers and routes.
func New(opts Options) (*Kernel, error) {
	k := &Kernel{router: router.New(), db: opts.DB}
	r := k.router

	// Outermost first: metrics sees total latency, recovery guards the
	// rest, the request ID exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(opts.CORSOrigins)))
	r.Use(session.Middleware(opts.Session))
	limit := func() {
		if opts.RateLimitRPS > 0 {
			r.Use(middleware.NewLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Middleware)
		}
	}

	if opts.DB == nil {
		logger.Warn("kernel: no database configured, API disabled")
		limit()
		k.mountCommon(opts.Disk)
		r.Mount("/api", "api.unavailable", http.HandlerFunc(notConfigured))
		return k, nil
	}

	store := repositories.NewGormStorage(opts.DB)
	if opts.QueryTimeout > 0 {
		store = store.WithTimeout(opts.QueryTimeout)
	}

	var eventPool *workerpool.Pool
	if opts.AsyncEvents {
		eventPool = workerpool.New(4)
		k.pools = append(k.pools, eventPool)
	}
	queryPool := workerpool.New(8)
	k.pools = append(k.pools, queryPool)

	k.Events = event.New(eventPool)
	var push services.Pusher
	if opts.Hub != nil {
		push = opts.Hub
	}
	services.RegisterListeners(k.Events, store, push)

	k.Auth = services.NewAuthService(store, k.Events)
	k.Catalog = services.NewCatalogService(store, k.Events)
	booking := services.NewBookingService(store, k.Events)
	engagement := services.NewEngagementService(store, k.Events)
	admin := services.NewAdminService(store, k.Events, queryPool)
	seed := services.NewSeedService(opts.DB, k.Events, services.SeedOptions{
		Production: opts.Production,
		Token:      opts.SeedToken,
	})

	schema, err := graph.NewSchema(k.Catalog)
	if err != nil {
		k.Close()
		return nil, err
	}

	// Global middleware ends here; chi requires all of it before any route.
	// The limiter follows Authenticate so signed-in callers get per-user quotas.
	r.Use(middleware.Authenticate(k.Auth.Resolve))
	limit()

	k.mountCommon(opts.Disk)
	r.Handle(http.MethodPost, "/graphql", "graphql", gql.Handler(schema))
	routes.RegisterAPI(r, routes.Controllers{
		Auth:       controllers.NewAuthController(k.Auth),
		Catalog:    controllers.NewCatalogController(k.Catalog),
		Booking:    controllers.NewBookingController(booking),
		Engagement: controllers.NewEngagementController(engagement, opts.Hub),
		Admin:      controllers.NewAdminController(admin),
		Upload:     controllers.NewUploadController(opts.Disk),
		Seed:       controllers.NewSeedController(seed),
	})
	return k, nil
}

func (k *Kernel) mountCommon(disk storage.Disk) {
	k.router.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())
	k.router.Handle(http.MethodGet, "/healthz", "healthz", http.HandlerFunc(k.health))
	if local, ok := disk.(*storage.Local); ok {
		k.router.Mount("/storage", "storage", http.StripPrefix("/storage", http.FileServer(http.Dir(local.Root()))))
	}
}

func (k *Kernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists every mounted route.
func (k *Kernel) Routes() []router.Info { return k.router.Routes() }

// Close drains the worker pools.
func (k *Kernel) Close() {
	for _, p := range k.pools {
		p.Shutdown()
	}
}

func (k *Kernel) health(w http.ResponseWriter, r *http.Request) {
	if k.db == nil {
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": database.ErrNotConfigured.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := database.Ping(ctx, k.db); err != nil {
		logger.WithCtx(r.Context()).Error("healthz: database ping failed", "error", err)
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func notConfigured(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, http.StatusInternalServerError, database.ErrNotConfigured.Error())
}
