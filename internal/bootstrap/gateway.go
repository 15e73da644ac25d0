package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ranjeet447/schoolerp-gateway/config"
	"github.com/ranjeet447/schoolerp-gateway/internal/adapters/auditapi"
	"github.com/ranjeet447/schoolerp-gateway/internal/adapters/authroles"
	"github.com/ranjeet447/schoolerp-gateway/internal/adapters/headless"
	postgresstore "github.com/ranjeet447/schoolerp-gateway/internal/adapters/postgres"
	redisstore "github.com/ranjeet447/schoolerp-gateway/internal/adapters/redis"
	memorystore "github.com/ranjeet447/schoolerp-gateway/internal/adapters/memory"
	"github.com/ranjeet447/schoolerp-gateway/internal/observability/statsd"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
	"github.com/ranjeet447/schoolerp-gateway/internal/service"
)

// Gateway bundles the wired service layer and the handles a command needs
// to drive it.
type Gateway struct {
	Config     config.AppConfig
	Logger     *slog.Logger
	Store      ports.SessionStore
	Navigator  ports.Navigator
	Dispatcher *service.Dispatcher
	Guard      *service.RedirectGuard
	Auth       *service.AuthService
	Manager    *service.ImpersonationManager
	Metrics    *statsd.Client

	closers []func()
}

// Close releases backend connections.
func (g *Gateway) Close() {
	for i := len(g.closers) - 1; i >= 0; i-- {
		g.closers[i]()
	}
}

// BuildGateway wires the full service stack from configuration: the
// session store backend, navigator, redirect guard, dispatcher, auth
// facade, and impersonation manager.
func BuildGateway(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*Gateway, error) {
	g := &Gateway{Config: cfg, Logger: logger}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  "schoolerp",
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	g.Metrics = metrics
	if metrics != nil {
		g.closers = append(g.closers, func() { _ = metrics.Close() })
	}

	store, err := buildStore(ctx, cfg, g)
	if err != nil {
		return nil, err
	}
	g.Store = store

	nav := headless.NewNavigator(logger, "/")
	g.Navigator = nav

	g.Guard = service.NewRedirectGuard(service.RedirectGuardOptions{
		Store:           store,
		Navigator:       nav,
		Logger:          logger,
		Metrics:         metrics,
		LoginPathPrefix: cfg.Gateway.LoginPath,
	})

	g.Dispatcher = service.NewDispatcher(service.DispatcherOptions{
		BaseURL:       cfg.Gateway.APIBaseURL,
		Origin:        cfg.Gateway.Origin,
		DefaultTenant: cfg.Gateway.DefaultTenant,
		ExemptPaths:   cfg.Gateway.ExemptPaths,
		Store:         store,
		Guard:         g.Guard,
		Logger:        logger,
		Metrics:       metrics,
		TokenSkew:     cfg.Gateway.TokenSkew,
	})

	g.Auth = service.NewAuthService(service.AuthServiceOptions{
		Dispatcher: g.Dispatcher,
		Store:      store,
		Navigator:  nav,
		Policy:     authroles.Default(),
		Logger:     logger,
		Metrics:    metrics,
		LoginPath:  cfg.Gateway.LoginPath,
		TokenSkew:  cfg.Gateway.TokenSkew,
	})

	g.Manager = service.NewImpersonationManager(service.ImpersonationManagerOptions{
		Store:     store,
		Navigator: nav,
		Auditor:   auditapi.New(g.Dispatcher),
		Logger:    logger,
		Metrics:   metrics,
	})

	return g, nil
}

func buildStore(ctx context.Context, cfg config.AppConfig, g *Gateway) (ports.SessionStore, error) {
	switch cfg.Gateway.StoreMode {
	case config.StoreModeRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.URI,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		g.closers = append(g.closers, func() { _ = client.Close() })
		return redisstore.NewSessionStoreWithPrefix(client, cfg.Gateway.StorePrefix), nil

	case config.StoreModePostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgresstore.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		g.closers = append(g.closers, pool.Close)
		return postgresstore.NewSessionStore(pool, cfg.Gateway.Principal), nil

	default:
		return memorystore.NewSessionStore(), nil
	}
}
