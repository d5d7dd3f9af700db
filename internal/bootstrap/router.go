package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mepla/Enchilada/internal/config"
	"github.com/mepla/Enchilada/internal/handlers"
	"github.com/mepla/Enchilada/internal/metrics"
	"github.com/mepla/Enchilada/internal/middleware"
	"github.com/mepla/Enchilada/internal/services"
	"github.com/mepla/Enchilada/internal/store"
	"github.com/mepla/Enchilada/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	gate *services.Gate,
	prometheusMetrics metrics.Recorder,
	auditService *services.AuditService,
	rateLimitRedisClient *redis.Client,
) *gin.Engine {
	setupGinMode(cfg)
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(prometheusMetrics))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	r.GET("/health", createHealthCheckHandler(db))
	setupMetricsEndpoint(r, cfg)

	rateLimiters := setupRateLimiting(cfg, auditService, rateLimitRedisClient)
	setupAllRoutes(r, cfg, h, gate, rateLimiters)

	logServerStartup(cfg)

	return r
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	gate *services.Gate,
	rateLimiters rateLimitMiddlewares,
) {
	// Client-authenticated routes
	r.POST("/login", rateLimiters.login, h.login.Login)
	r.POST("/signup", rateLimiters.signUp, h.signUp.SignUp)

	// Bearer-token routes behind the request gate
	gateOpts := []middleware.GateOption{middleware.WithClientIDHeader(cfg.ClientIDHeader)}
	if cfg.GateCallerParam != "" {
		gateOpts = append(gateOpts, middleware.WithCallerParam(cfg.GateCallerParam))
	}
	protected := r.Group("", middleware.RequireToken(gate, gateOpts...))
	{
		protected.GET("/users/:user_id", h.users.GetUser)
		protected.PUT("/users/:user_id", h.users.UpdateUser)
		protected.DELETE("/users/:user_id", h.users.DeleteUser)
		protected.GET("/tokeninfo", handlers.TokenInfo)
	}
}

// createHealthCheckHandler reports database reachability.
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		switch err := db.Health(ctx); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

func logServerStartup(cfg *config.Config) {
	log.Printf("Enchilada starting on %s", cfg.ServerAddr)
	log.Printf("Database: %s", cfg.DatabaseDriver)
	log.Printf("Client id header: %s", cfg.ClientIDHeader)
	log.Printf("Password hash scheme: %s", cfg.PasswordHashScheme)
	log.Printf("Access token TTL: %s", cfg.AccessTokenTTL)
}
