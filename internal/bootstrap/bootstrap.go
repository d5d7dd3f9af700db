package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/mepla/Enchilada/internal/config"
	"github.com/mepla/Enchilada/internal/core"
	"github.com/mepla/Enchilada/internal/metrics"
	"github.com/mepla/Enchilada/internal/services"
	"github.com/mepla/Enchilada/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store
	MetricsRecorder      metrics.Recorder
	MetricsCache         core.Cache[int64]
	MetricsCacheCloser   func() error
	RateLimitRedisClient *redis.Client

	// Services
	AuditService *services.AuditService
	Services     serviceSet

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	// Phase 1: Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Phases 2-4: infrastructure, services, HTTP
	app, err := newApplication(context.Background(), cfg)
	if err != nil {
		return err
	}

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

func newApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	if err := app.initializeInfrastructure(ctx); err != nil {
		return nil, err
	}
	if err := app.initializeBusinessLayer(); err != nil {
		return nil, err
	}
	app.initializeHTTPLayer()

	return app, nil
}

// initializeInfrastructure sets up database, metrics, cache, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database, then the optional policy file on top of the seeded defaults
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}
	if err := applyPolicyFile(ctx, app.Config, app.DB); err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config)
	app.MetricsCache, app.MetricsCacheCloser, err = initializeMetricsCache(ctx, app.Config)
	if err != nil {
		return err
	}

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() error {
	// Audit service (required by other services)
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	var err error
	app.Services, err = initializeServices(app.Config, app.DB, app.AuditService, app.MetricsRecorder)
	return err
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = initializeHandlers(app.Services)

	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.Services.gate,
		app.MetricsRecorder,
		app.AuditService,
		app.RateLimitRedisClient,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	cfg := app.Config

	addHTTPServerJobs(m, app.Server, cfg.ServerShutdownTimeout)
	addTimedShutdownJob(m, "audit service", cfg.AuditShutdownTimeout, app.AuditService.Shutdown)
	if app.RateLimitRedisClient != nil {
		addCloserJob(m, "rate limit redis", cfg.RedisCloseTimeout, app.RateLimitRedisClient.Close)
	}
	addCloserJob(m, "metrics cache", cfg.CacheCloseTimeout, app.MetricsCacheCloser)

	if cfg.EnableAuditLogging && cfg.AuditLogRetention > 0 {
		addPeriodicJob(m, cfg.AuditLogCleanupInterval, func(ctx context.Context) {
			deleted, err := app.AuditService.CleanupOldLogs(ctx, cfg.AuditLogRetention)
			if err != nil {
				log.Printf("[Audit] cleanup failed: %v", err)
			} else if deleted > 0 {
				log.Printf("[Audit] removed %d entries older than %s", deleted, cfg.AuditLogRetention)
			}
		})
	}

	if cfg.MetricsEnabled && cfg.MetricsGaugeUpdateEnabled && app.MetricsCache != nil {
		gauges := metrics.NewCacheWrapper(app.DB, app.MetricsCache)
		// Cache TTL equals the interval so each tick costs at most one count query.
		addPeriodicJob(m, cfg.MetricsGaugeUpdateInterval, func(ctx context.Context) {
			gauges.UpdateGauges(ctx, app.MetricsRecorder, cfg.MetricsGaugeUpdateInterval)
		})
	}

	<-m.Done()
}
