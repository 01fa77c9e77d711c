package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/chageun/carpick/internal/config"
	"github.com/chageun/carpick/internal/event"
	handler "github.com/chageun/carpick/internal/handler/http"
	"github.com/chageun/carpick/internal/repository/postgres"
	redisrepo "github.com/chageun/carpick/internal/repository/redis"
	"github.com/chageun/carpick/internal/service"
	"github.com/chageun/carpick/migrations"
	"github.com/chageun/carpick/pkg/database"
	"github.com/chageun/carpick/pkg/health"
	pkgkafka "github.com/chageun/carpick/pkg/kafka"
	"github.com/chageun/carpick/pkg/middleware"
	"github.com/chageun/carpick/pkg/tracing"
)

// App wires together all dependencies and runs the carpick service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	lookups        *redisrepo.LookupCache
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error

	migrationsPending bool
}

const migrationRetryInterval = 30 * time.Second

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// The pool dials lazily. A store that is down at boot is not fatal:
	// requests get store_unavailable notices until it comes back.
	pgCfg := cfg.Postgres()
	pool, err := database.OpenPostgresPool(ctx, &pgCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	database.RegisterPoolMetrics(pool, handler.ServiceName)

	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	storeReachable := true
	if err := database.PingPostgres(ctx, pool, logger); err != nil {
		storeReachable = false
		logger.Warn("postgres unreachable at startup, serving degraded",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
	}

	rdb := database.NewRedisClient(database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := database.PingRedis(ctx, rdb); err != nil {
		logger.Warn("redis unreachable at startup, sessions unavailable until it recovers",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
	}

	// Every store call goes through the circuit breaker.
	db := database.NewBreakerDB(pool, database.DefaultBreakerConfig("postgres"), logger)

	lookups := redisrepo.NewLookupCache(rdb, postgres.NewLookupRepository(db), cfg.LookupCacheTTL, logger)

	migrationsPending := cfg.RunMigrations
	if migrationsPending && storeReachable {
		err := applyMigrations(ctx, pool, lookups, logger)
		switch {
		case err == nil:
			migrationsPending = false
		case database.IsConnectionError(err):
			logger.Warn("postgres lost during migrations", slog.String("error", err.Error()))
		default:
			_ = rdb.Close()
			pool.Close()
			return nil, err
		}
	}
	switch {
	case !cfg.RunMigrations:
		invalidateLookups(ctx, lookups, logger)
	case migrationsPending:
		logger.Warn("database migrations deferred until postgres is reachable")
	}

	// Initialize Kafka producer.
	var (
		producer  *pkgkafka.Producer
		publisher service.RecommendationPublisher
	)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	opts := service.Options{
		CatalogPageSize:     cfg.CatalogPageSize,
		ReviewPageSize:      cfg.ReviewPageSize,
		BlockSize:           cfg.PageBlockSize,
		RecommendationLimit: cfg.RecommendationLimit,
		RankTieBreak:        cfg.RankTieBreak,
		ExposeStatements:    cfg.IsDevelopment(),
	}

	vehicles := postgres.NewVehicleRepository(db)
	catalogService := service.NewCatalogService(vehicles, lookups, opts, logger)
	reviewService := service.NewReviewService(postgres.NewReviewRepository(db), opts, logger)
	statisticsService := service.NewStatisticsService(postgres.NewStatisticsRepository(db), opts, logger)
	sessionService := service.NewSessionService(service.SessionDeps{
		Sessions:        redisrepo.NewSessionRepository(rdb, cfg.SessionTTL),
		Profiles:        postgres.NewProfileRepository(db),
		Recommendations: postgres.NewRecommendationRepository(db),
		Ranker:          service.NewRanker(vehicles, opts.RankTieBreak, opts.RecommendationLimit),
		Catalog:         catalogService,
		Reviews:         reviewService,
		Statistics:      statisticsService,
		Publisher:       publisher,
	}, opts, logger)

	// Health checks.
	healthHandler := health.NewHandler(5 * time.Second)
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if producer != nil {
		healthHandler.RegisterOptional("kafka", producer.Ping)
	}

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins
	cors.Environment = cfg.Environment

	router := handler.NewRouter(
		handler.Services{
			Catalog:    catalogService,
			Reviews:    reviewService,
			Statistics: statisticsService,
			Sessions:   sessionService,
		},
		handler.RouterConfig{
			CORS:              cors,
			RequestTimeout:    cfg.RequestTimeout,
			RateLimitPerMin:   cfg.RateLimitPerMin,
			LookupCacheMaxAge: cfg.LookupCacheTTL,
			PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		},
		healthHandler,
		logger,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:               cfg,
		logger:            logger,
		pool:              pool,
		rdb:               rdb,
		lookups:           lookups,
		producer:          producer,
		httpServer:        httpServer,
		tracerShutdown:    tracerShutdown,
		migrationsPending: migrationsPending,
	}, nil
}

// applyMigrations runs the embedded migrations and drops cached lookups,
// which the migrations may have changed.
func applyMigrations(ctx context.Context, pool *pgxpool.Pool, lookups *redisrepo.LookupCache, logger *slog.Logger) error {
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")
	invalidateLookups(ctx, lookups, logger)
	return nil
}

func invalidateLookups(ctx context.Context, lookups *redisrepo.LookupCache, logger *slog.Logger) {
	if err := lookups.Invalidate(ctx); err != nil {
		logger.Warn("failed to invalidate lookup cache", slog.String("error", err.Error()))
	}
}

// retryMigrations applies deferred migrations once postgres answers. It
// stops on success, on a statement error, or when ctx is done.
func (a *App) retryMigrations(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := a.pool.Ping(ctx); err != nil {
			a.logger.Debug("postgres still unreachable", slog.String("error", err.Error()))
			continue
		}
		err := applyMigrations(ctx, a.pool, a.lookups, a.logger)
		if err == nil {
			return
		}
		if !database.IsConnectionError(err) {
			a.logger.Error("deferred migrations failed", slog.String("error", err.Error()))
			return
		}
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	if a.migrationsPending {
		go a.retryMigrations(ctx, migrationRetryInterval)
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
