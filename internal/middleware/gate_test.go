package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mepla/Enchilada/internal/metrics"
	"github.com/mepla/Enchilada/internal/models"
	"github.com/mepla/Enchilada/internal/services"
	"github.com/mepla/Enchilada/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gateFixture struct {
	router *gin.Engine
	token  string
}

func setupGateRouter(t *testing.T, opts ...GateOption) *gateFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	s, err := store.New(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.UpsertClient(ctx, &models.OAuthClient{
		ClientID: "c1", ClientSecret: "unused", Scopes: "self_only", IsActive: true,
	}))
	require.NoError(t, s.UpsertScopeDefinition(ctx, models.NewScopeDefinition(
		"self_only", "", "get /users/{self}", "put /users/{self}",
	)))

	m := metrics.NewNoopMetrics()
	audit := services.NewAuditService(s, false, 0)
	tokens := services.NewTokenService(s, s, 0, audit, m)
	gate := services.NewGate(tokens, services.NewScopeService(s, audit), audit, m)

	tok, err := tokens.Issue(ctx, "u1", "c1", "self_only", 0)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/users/:user_id", RequireToken(gate, opts...), func(c *gin.Context) {
		result, ok := GateResultFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{
			"uid":     result.UID,
			"path":    result.Path,
			"user_id": c.Param("user_id"),
			"caller":  c.Param("caller"),
		})
	})
	return &gateFixture{router: router, token: tok.RawAccessToken}
}

func (f *gateFixture) get(path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRequireToken_Allow(t *testing.T) {
	f := setupGateRouter(t)

	w := f.get("/users/self", map[string]string{
		DefaultClientIDHeader: "c1",
		"Authorization":       "Bearer " + f.token,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["uid"])
	assert.Equal(t, "/users/u1", body["path"])
	assert.Equal(t, "u1", body["user_id"])
	assert.Empty(t, body["caller"])
}

func TestRequireToken_Options(t *testing.T) {
	f := setupGateRouter(t, WithClientIDHeader("X-Echo-Client-Id"), WithCallerParam("caller"))

	w := f.get("/users/u1", map[string]string{
		"X-Echo-Client-Id": "c1",
		"Authorization":    "Bearer " + f.token,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["caller"])

	w = f.get("/users/u1", map[string]string{
		DefaultClientIDHeader: "c1",
		"Authorization":       "Bearer " + f.token,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "default header is no longer read")
}

func TestRequireToken_Failures(t *testing.T) {
	f := setupGateRouter(t)

	tests := []struct {
		name     string
		path     string
		headers  map[string]string
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing client id",
			path:     "/users/u1",
			headers:  map[string]string{"Authorization": "Bearer " + f.token},
			wantCode: http.StatusUnauthorized,
			wantErr:  services.GateCodeMissingClientID,
		},
		{
			name:     "malformed authorization",
			path:     "/users/u1",
			headers:  map[string]string{DefaultClientIDHeader: "c1", "Authorization": f.token},
			wantCode: http.StatusUnauthorized,
			wantErr:  services.GateCodeMalformedAuthorization,
		},
		{
			name:     "unknown token",
			path:     "/users/u1",
			headers:  map[string]string{DefaultClientIDHeader: "c1", "Authorization": "Bearer nope"},
			wantCode: http.StatusUnauthorized,
			wantErr:  services.GateCodeInvalidToken,
		},
		{
			name:     "other client",
			path:     "/users/u1",
			headers:  map[string]string{DefaultClientIDHeader: "c2", "Authorization": "Bearer " + f.token},
			wantCode: http.StatusUnauthorized,
			wantErr:  services.GateCodeClientMismatch,
		},
		{
			name:     "other user",
			path:     "/users/u2",
			headers:  map[string]string{DefaultClientIDHeader: "c1", "Authorization": "Bearer " + f.token},
			wantCode: http.StatusForbidden,
			wantErr:  services.GateCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.get(tt.path, tt.headers)
			assert.Equal(t, tt.wantCode, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestGateResultFrom_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GateResultFrom(c)
	assert.False(t, ok)
}
