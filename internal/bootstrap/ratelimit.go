package bootstrap

import (
	"log"

	"github.com/mepla/Enchilada/internal/config"
	"github.com/mepla/Enchilada/internal/middleware"
	"github.com/mepla/Enchilada/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	login  gin.HandlerFunc
	signUp gin.HandlerFunc
}

// setupRateLimiting returns pass-through middlewares when rate limiting is disabled.
func setupRateLimiting(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) rateLimitMiddlewares {
	if !cfg.EnableRateLimit {
		noOp := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{login: noOp, signUp: noOp}
	}
	return createRateLimiters(cfg, auditService, redisClient)
}

func createRateLimiters(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) rateLimitMiddlewares {
	log.Printf("Rate limiting enabled (store: %s)", cfg.RateLimitStore)

	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)

	createLimiter := func(requestsPerMinute int, name string) gin.HandlerFunc {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Name:              name,
			RequestsPerMinute: requestsPerMinute,
			StoreType:         storeType,
			RedisClient:       redisClient,
			CleanupInterval:   cfg.RateLimitCleanupInterval,
			AuditService:      auditService,
		})
		if err != nil {
			log.Fatalf("Failed to create rate limiter for %s: %v", name, err)
		}
		return limiter
	}

	return rateLimitMiddlewares{
		login:  createLimiter(cfg.LoginRateLimit, "login"),
		signUp: createLimiter(cfg.SignUpRateLimit, "signup"),
	}
}
