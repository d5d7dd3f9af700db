package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSetIPContext(t *testing.T) {
	ctx := SetIPContext(context.Background(), "192.168.1.1")
	assert.Equal(t, "192.168.1.1", GetIPFromContext(ctx))

	ctx = SetIPContext(context.Background(), "")
	assert.Empty(t, GetIPFromContext(ctx))

	ctx = SetIPContext(context.Background(), "2001:db8::1")
	assert.Equal(t, "2001:db8::1", GetIPFromContext(ctx))
}

func TestIPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IPMiddleware())

	var fromRequest string
	r.GET("/", func(c *gin.Context) {
		fromRequest = GetIPFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:4242"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "10.0.0.7", fromRequest)
}
