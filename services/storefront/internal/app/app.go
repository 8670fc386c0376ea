package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/EcommerceGo/pkg/database"
	"github.com/utafrali/EcommerceGo/pkg/health"
	pkgkafka "github.com/utafrali/EcommerceGo/pkg/kafka"
	"github.com/utafrali/EcommerceGo/pkg/middleware"
	"github.com/utafrali/EcommerceGo/pkg/tracing"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/config"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/event"
	handler "github.com/utafrali/EcommerceGo/services/storefront/internal/handler/http"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/pricing"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository/breaker"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository/leveldb"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository/memory"
	pgrepo "github.com/utafrali/EcommerceGo/services/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/EcommerceGo/services/storefront/internal/repository/redis"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/migrations"
)

const serviceName = "storefront"

// pinger is implemented by every store backend.
type pinger interface {
	Ping(ctx context.Context) error
}

// closer releases one resource on shutdown.
type closer struct {
	name  string
	close func() error
}

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	closers        []closer
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracingCfg := tracing.DefaultConfig(serviceName)
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracingCfg.Enabled = cfg.OTELEnabled
	shutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	healthHandler := health.NewHandler()

	store, err := a.openStore(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}
	if cfg.StorageBreakerEnabled && cfg.StorageBackend != config.BackendMemory {
		store = breaker.New(store, breaker.DefaultConfig(cfg.StorageBackend), logger)
	}
	if p, ok := store.(pinger); ok {
		healthHandler.RegisterCritical("storage", p.Ping)
	}

	// Events. The broadcaster always feeds the count stream; Kafka is optional.
	broadcaster := event.NewBroadcaster()
	notifiers := event.Notifiers{broadcaster}
	var (
		catalogEvents service.CatalogEvents
		orderEvents   service.OrderEvents
	)
	if cfg.KafkaEnabled() {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.closers = append(a.closers, closer{name: "kafka producer", close: producer.Close})
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

		eventProducer := event.NewProducer(producer, logger)
		notifiers = append(notifiers, eventProducer)
		catalogEvents = eventProducer
		orderEvents = eventProducer
	} else {
		logger.Info("kafka disabled, events stay in process")
	}

	// Build the dependency graph.
	catalog := service.NewCatalogStore(store, catalogEvents, logger)
	cart := service.NewCartStore(store, catalog, notifiers, logger)
	checkout := service.NewCheckout(cart, pricing.NewEngine(catalog), orderEvents, logger)

	router := handler.NewRouter(handler.Handlers{
		Products: handler.NewProductHandler(catalog, logger),
		Cart:     handler.NewCartHandler(cart, checkout, broadcaster, logger),
		Checkout: handler.NewCheckoutHandler(checkout, logger),
	}, healthHandler, logger, handler.RouterConfig{
		Environment:         cfg.Environment,
		AllowedOrigins:      cfg.CORSAllowedOrigins,
		PprofCIDRs:          cfg.PprofAllowedCIDRs,
		CatalogCacheSeconds: cfg.CatalogCacheSeconds,
		WriteRateLimit: middleware.RateLimitConfig{
			RPS:   cfg.WriteRateLimitRPS,
			Burst: cfg.WriteRateLimitBurst,
		},
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: the cart count stream stays open. Regular routes
		// are bounded by the router's timeout middleware.
	}

	return a, nil
}

// openStore connects the configured storage backend and registers its
// cleanup.
func (a *App) openStore(ctx context.Context) (repository.RecordStore, error) {
	cfg := a.cfg

	switch cfg.StorageBackend {
	case config.BackendLevelDB:
		store, err := leveldb.Open(cfg.LevelDBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closer{name: "leveldb", close: store.Close})
		a.logger.Info("opened leveldb store", slog.String("path", cfg.LevelDBPath))
		return store, nil

	case config.BackendRedis:
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB
		client, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, closer{name: "redis", close: client.Close})
		a.logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		return redisrepo.NewStore(client, cfg.RedisNamespace), nil

	case config.BackendPostgres:
		pgCfg := database.DefaultPostgresConfig()
		pgCfg.Host = cfg.PostgresHost
		pgCfg.Port = cfg.PostgresPort
		pgCfg.User = cfg.PostgresUser
		pgCfg.Password = cfg.PostgresPass
		pgCfg.DBName = cfg.PostgresDB
		pgCfg.SSLMode = cfg.PostgresSSL
		pgCfg.MaxConns = cfg.DBMaxConns
		pgCfg.MinConns = cfg.DBMinConns

		pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, closer{name: "postgres", close: func() error {
			pool.Close()
			return nil
		}})

		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, fmt.Errorf("register pool metrics: %w", err)
			}
		}
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
		return pgrepo.NewStore(pool), nil

	case config.BackendMemory:
		a.logger.Warn("using in-memory storage, nothing survives a restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Handler returns the HTTP handler serving the storefront API.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeAll()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeAll()

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// closeAll releases resources in reverse order of acquisition.
func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Error(c.name+" close error", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}
