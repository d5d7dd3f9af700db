package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const testToken = "test-secret-token-123"

func TestMetricsAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		configured string
		header     string
		wantCode   int
		wantBody   string
	}{
		{name: "open when unconfigured", configured: "", header: "", wantCode: http.StatusOK, wantBody: "metrics"},
		{name: "valid token", configured: testToken, header: "Bearer " + testToken, wantCode: http.StatusOK, wantBody: "metrics"},
		{name: "wrong token", configured: testToken, header: "Bearer wrong-token", wantCode: http.StatusUnauthorized, wantBody: "Invalid token"},
		{name: "missing header", configured: testToken, header: "", wantCode: http.StatusUnauthorized, wantBody: "Bearer token required"},
		{name: "basic scheme", configured: testToken, header: "Basic dGVzdDp0ZXN0", wantCode: http.StatusUnauthorized, wantBody: "Bearer token required"},
		{name: "empty bearer", configured: testToken, header: "Bearer ", wantCode: http.StatusUnauthorized, wantBody: "Bearer token required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(MetricsAuthMiddleware(tt.configured))
			r.GET("/metrics", func(c *gin.Context) {
				c.String(http.StatusOK, "metrics")
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="metrics"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
