package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/Nyctonit/feature-flags-service/internal/app"
	"github.com/Nyctonit/feature-flags-service/internal/config"
	"github.com/Nyctonit/feature-flags-service/internal/database"
	"github.com/Nyctonit/feature-flags-service/internal/http/handler"
	"github.com/Nyctonit/feature-flags-service/internal/http/middleware"
	"github.com/Nyctonit/feature-flags-service/internal/http/router"
	"github.com/Nyctonit/feature-flags-service/internal/observability"
	"github.com/Nyctonit/feature-flags-service/internal/repository"
	"github.com/Nyctonit/feature-flags-service/internal/service"
)

var (
	ConfigSet        = wire.NewSet(config.Load)
	ObservabilitySet = wire.NewSet(provideLogger, provideObservabilityRuntime)
	RuntimeInfraSet  = wire.NewSet(provideDB, provideRedisClient)
	RepositorySet    = wire.NewSet(repository.NewFeatureFlagRepository)
	ServiceSet       = wire.NewSet(provideEvaluationCacheStore, provideFeatureFlagService)
	HTTPSet          = wire.NewSet(
		handler.NewFeatureFlagHandler,
		provideHealthHandler,
		provideRateLimiter,
		provideRouterDependencies,
		router.New,
		provideHTTPServer,
	)
	AppSet = wire.NewSet(app.New)
)

func provideLogger(cfg *config.Config) *slog.Logger {
	return observability.NewLogger(cfg)
}

func provideObservabilityRuntime(cfg *config.Config, logger *slog.Logger) (*observability.Runtime, error) {
	return observability.InitRuntime(context.Background(), cfg, logger)
}

func provideDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("database ready")
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) (redis.UniversalClient, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	logger.Info("redis configured", "addr", opts.Addr)
	return redis.NewClient(opts), nil
}

func provideEvaluationCacheStore(cfg *config.Config, client redis.UniversalClient) service.EvaluationCacheStore {
	if cfg.EvalCacheTTL <= 0 {
		return service.NewNoopEvaluationCacheStore()
	}
	if client != nil {
		return service.NewRedisEvaluationCacheStore(client, "flag_eval_cache")
	}
	return service.NewInMemoryEvaluationCacheStore()
}

func provideFeatureFlagService(repo repository.FeatureFlagRepository, cache service.EvaluationCacheStore, cfg *config.Config) service.FeatureFlagService {
	return service.NewFeatureFlagService(repo, cache, cfg.EvalCacheTTL)
}

func provideHealthHandler(cfg *config.Config) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.ServiceVersion)
}

func provideRateLimiter(cfg *config.Config, client redis.UniversalClient) *middleware.RateLimiter {
	if client != nil {
		return middleware.NewDistributedRateLimiter(
			middleware.NewRedisFixedWindowLimiter(client, "rl"),
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
		)
	}
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute)
}

func provideRouterDependencies(
	logger *slog.Logger,
	flagHandler *handler.FeatureFlagHandler,
	health *handler.HealthHandler,
	rateLimiter *middleware.RateLimiter,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		Logger:      logger,
		FlagHandler: flagHandler,
		Health:      health,
		RateLimiter: rateLimiter,
		CORSOrigins: cfg.CORSAllowedOrigins,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           otelhttp.NewHandler(h, "http.server"),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

type MigrationRunner struct {
	db *gorm.DB
}

func NewMigrationRunner(db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

func (m *MigrationRunner) Run() error {
	return database.Migrate(m.db)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}
