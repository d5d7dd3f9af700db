package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newLimitedRouter(t *testing.T, limiter gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limiter)
	router.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return router
}

func hit(router http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewMemoryRateLimiter(t *testing.T) {
	limiter, err := NewMemoryRateLimiter("login", 5)
	require.NoError(t, err)
	router := newLimitedRouter(t, limiter)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(router, "192.168.1.100").Code, "request %d", i+1)
	}

	w := hit(router, "192.168.1.100")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t,
		`{"error":"rate_limit_exceeded","message":"Too many requests. Please try again later."}`,
		w.Body.String(),
	)
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	limiter, err := NewMemoryRateLimiter("login", 2)
	require.NoError(t, err)
	router := newLimitedRouter(t, limiter)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2").Code, "other IPs are counted separately")
}

func TestNewRateLimiter_RedisWithoutClient(t *testing.T) {
	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 5,
		StoreType:         RateLimitStoreRedis,
	})
	assert.ErrorIs(t, err, ErrRedisClientRequired)
	assert.Nil(t, limiter)
}

func TestRedisRateLimiter_SharedAcrossInstances(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	client := startRedis(t)

	newLimiter := func() gin.HandlerFunc {
		l, err := NewRateLimiter(RateLimitConfig{
			Name:              "login",
			RequestsPerMinute: 5,
			StoreType:         RateLimitStoreRedis,
			RedisClient:       client,
			CleanupInterval:   time.Minute,
		})
		require.NoError(t, err)
		return l
	}
	pod1 := newLimitedRouter(t, newLimiter())
	pod2 := newLimitedRouter(t, newLimiter())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(pod1, "192.168.88.1").Code)
	}
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, hit(pod2, "192.168.88.1").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(pod1, "192.168.88.1").Code)
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Docker not available: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}
