package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mepla/Enchilada/internal/models"
	"github.com/mepla/Enchilada/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitStoreType defines the type of rate limit store
type RateLimitStoreType string

const (
	// RateLimitStoreMemory keeps counters in process (single instance only)
	RateLimitStoreMemory RateLimitStoreType = "memory"
	// RateLimitStoreRedis shares counters between instances
	RateLimitStoreRedis RateLimitStoreType = "redis"
)

var ErrRedisClientRequired = errors.New("redis rate limit store requires a redis client")

type RateLimitConfig struct {
	// Name keeps counters of different endpoints apart in a shared store.
	Name              string
	RequestsPerMinute int
	CleanupInterval   time.Duration

	StoreType   RateLimitStoreType
	RedisClient *redis.Client

	AuditService *services.AuditService
}

// NewRateLimiter limits requests per client IP.
func NewRateLimiter(config RateLimitConfig) (gin.HandlerFunc, error) {
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(config.RequestsPerMinute),
	}

	prefix := "ratelimit"
	if config.Name != "" {
		prefix += ":" + config.Name
	}

	var store limiter.Store
	switch config.StoreType {
	case RateLimitStoreRedis:
		if config.RedisClient == nil {
			return nil, ErrRedisClientRequired
		}
		var err error
		store, err = limiterRedis.NewStoreWithOptions(config.RedisClient, limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: config.CleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
	default:
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: config.CleanupInterval,
		})
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		config.AuditService.Log(c.Request.Context(), services.AuditLogEntry{
			EventType: models.EventRateLimitExceeded,
			Severity:  models.SeverityWarning,
			RemoteIP:  c.ClientIP(),
			Action:    "Rate limit exceeded",
			Details:   models.AuditDetails{"limiter": config.Name, "limit": config.RequestsPerMinute},
			Success:   false,
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
		})
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limit_exceeded",
			"message": "Too many requests. Please try again later.",
		})
	})), nil
}

// NewMemoryRateLimiter creates an in-memory rate limiter (single instance)
func NewMemoryRateLimiter(name string, requestsPerMinute int) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		Name:              name,
		RequestsPerMinute: requestsPerMinute,
		StoreType:         RateLimitStoreMemory,
		CleanupInterval:   5 * time.Minute,
	})
}
