// Package app wires configuration, storage, caches and the HTTP surface
// into a runnable service.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/publishkit/db"
	"github.com/dmitrymomot/publishkit/internal/api"
	"github.com/dmitrymomot/publishkit/internal/content"
	"github.com/dmitrymomot/publishkit/internal/metrics"
	"github.com/dmitrymomot/publishkit/internal/store/postgres"
	"github.com/dmitrymomot/publishkit/pkg/cache"
	"github.com/dmitrymomot/publishkit/pkg/environment"
	"github.com/dmitrymomot/publishkit/pkg/httpserver"
	"github.com/dmitrymomot/publishkit/pkg/logger"
	"github.com/dmitrymomot/publishkit/pkg/module"
	"github.com/dmitrymomot/publishkit/pkg/pg"
	"github.com/dmitrymomot/publishkit/pkg/redis"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

// App holds the wired components of a running process.
type App struct {
	Config Config
	Log    *slog.Logger

	DB    *sql.DB
	Cache cache.Store

	Tenants     *postgres.TenantStore
	Memberships *postgres.MembershipStore
	Modules     *postgres.ModuleStore
	Resolver    *tenant.Resolver
	Gate        *module.Gate
	Content     *content.Service

	checks  map[string]httpserver.Check
	closers []func()
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(environment.Parse(cfg.Env), cfg.ServiceName),
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(tenant.LoggerExtractor(), logger.RequestIDExtractor()),
	}
	if lvl, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		opts = append(opts, logger.WithLevel(lvl))
	}
	return logger.New(opts...)
}

// Open connects to Postgres and the configured cache and wires the app.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB := pg.OpenDB(pool)

	var (
		store   cache.Store
		client  *goredis.Client
		closers = []func(){func() { _ = sqlDB.Close() }, pool.Close}
	)
	switch cfg.CacheBackend {
	case CacheRedis:
		client, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		store = cache.NewRedisStore(client, cache.WithKeyPrefix(cfg.Redis.KeyPrefix))
	case CacheMemory, "":
		store = cache.NewMemoryStore(cache.WithCapacity(cfg.CacheCapacity))
	default:
		closeAll(closers)
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}

	a, err := New(cfg, log, sqlDB, store)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	a.closers = closers
	a.checks = readinessChecks(pool, client)
	return a, nil
}

func readinessChecks(pool *pgxpool.Pool, client *goredis.Client) map[string]httpserver.Check {
	checks := map[string]httpserver.Check{"postgres": pg.Healthcheck(pool)}
	if client != nil {
		checks["redis"] = redis.Healthcheck(client)
	}
	return checks
}

// New wires the app on top of an open database and cache.
func New(cfg Config, log *slog.Logger, sqlDB *sql.DB, store cache.Store) (*App, error) {
	if sqlDB == nil || store == nil {
		return nil, errors.New("app: database and cache are required")
	}
	if log == nil {
		log = logger.Discard()
	}

	stores, err := content.NewSQLStores(sqlDB)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:      cfg,
		Log:         log,
		DB:          sqlDB,
		Cache:       store,
		Tenants:     postgres.NewTenantStore(sqlDB),
		Memberships: postgres.NewMembershipStore(sqlDB),
		Modules:     postgres.NewModuleStore(sqlDB),
		checks: map[string]httpserver.Check{
			"postgres": func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
		},
	}

	a.Resolver = tenant.NewResolver(a.Tenants, store,
		tenant.WithCacheTTL(cfg.Tenant.CacheTTL),
		tenant.WithNegativeCacheTTL(cfg.Tenant.NegativeCacheTTL),
		tenant.WithDevHosts(cfg.Tenant.DevHosts...),
		tenant.WithHostPrefixes(cfg.Tenant.HostPrefixes...),
		tenant.WithResolverLogger(log.With(logger.Component("tenant"))),
		tenant.WithObserver(metrics.ObserveResolution),
	)

	gateOpts := []module.GateOption{
		module.WithCacheTTL(cfg.Module.CacheTTL),
		module.WithPathPrefix(cfg.Module.PathPrefix),
		module.WithLogger(log.With(logger.Component("module_gate"))),
		module.WithObserver(metrics.ObserveGate),
	}
	if cfg.Module.Exempt != nil {
		gateOpts = append(gateOpts, module.WithExempt(cfg.Module.Exempt...))
	}
	a.Gate = module.NewGate(a.Modules, store, gateOpts...)

	a.Content = content.NewService(stores,
		content.WithServiceLogger(log.With(logger.Component("content"))),
		content.WithAudience(a.Memberships),
	)
	return a, nil
}

// Handler returns the HTTP router.
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.Deps{
		Log:              a.Log,
		Resolver:         a.Resolver,
		Memberships:      a.Memberships,
		Tenants:          a.Tenants,
		Modules:          a.Modules,
		Gate:             a.Gate,
		Content:          a.Content,
		Checks:           a.checks,
		AllowedOrigins:   a.Config.CORSAllowedOrigins,
		TrustAuthHeaders: a.Config.TrustAuthHeaders,
	})
}

// Migrate applies the embedded schema migrations.
func (a *App) Migrate(ctx context.Context) error {
	return pg.Migrate(ctx, a.DB, db.Migrations, db.MigrationsDir, a.Config.PG, a.Log)
}

// Serve runs the HTTP server until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	srv := httpserver.NewFromConfig(a.Config.HTTP, httpserver.WithLogger(a.Log.With(logger.Component("http"))))
	return srv.Run(ctx, a.Handler())
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	closeAll(a.closers)
	a.closers = nil
}

func closeAll(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

