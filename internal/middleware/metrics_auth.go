package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/mepla/Enchilada/internal/services"

	"github.com/gin-gonic/gin"
)

// MetricsAuthMiddleware guards /metrics with the static METRICS_TOKEN bearer
// token. It is a pass-through when token is empty.
func MetricsAuthMiddleware(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	want := []byte(token)

	return func(c *gin.Context) {
		provided, ok := services.ParseBearer(c.GetHeader("Authorization"))
		switch {
		case !ok:
			abortMetricsUnauthorized(c, "Bearer token required")
		case subtle.ConstantTimeCompare([]byte(provided), want) != 1:
			abortMetricsUnauthorized(c, "Invalid token")
		default:
			c.Next()
		}
	}
}

func abortMetricsUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="metrics"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}
