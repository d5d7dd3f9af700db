package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return newMetrics(prometheus.NewRegistry())
}

func TestInit(t *testing.T) {
	m := Init(true)
	metrics, ok := m.(*Metrics)
	assert.True(t, ok, "Init(true) should return *Metrics")
	assert.NotNil(t, metrics.GateDecisionsTotal)
	assert.Same(t, metrics, Init(true))

	_, ok = Init(false).(*NoopMetrics)
	assert.True(t, ok, "Init(false) should return *NoopMetrics")
}

func TestRecordGateDecision(t *testing.T) {
	m := newTestMetrics()

	m.RecordGateDecision("allow", time.Millisecond)
	m.RecordGateDecision("allow", time.Millisecond)
	m.RecordGateDecision("forbidden", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GateDecisionsTotal.WithLabelValues("allow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisionsTotal.WithLabelValues("forbidden")))
}

func TestRecordTokenIssuedAndGauges(t *testing.T) {
	m := newTestMetrics()

	m.SetActiveTokensCount(10)
	m.RecordTokenIssued("password", 2*time.Millisecond)
	m.RecordTokenIssued("refresh_token", 2*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensIssuedTotal.WithLabelValues("password")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.TokensActive))

	m.SetUsersCount(3)
	m.RecordSignUp(true)
	m.RecordSignUp(false)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.UsersTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignUpTotal.WithLabelValues(resultFailure)))
}

func TestRecordAuthCounters(t *testing.T) {
	m := newTestMetrics()

	m.RecordClientAuthentication("wrong_scopes")
	m.RecordLogin("password", false, 10*time.Millisecond)
	m.RecordTokenRefresh(true)
	m.RecordDatabaseQueryError("count_users")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClientAuthTotal.WithLabelValues("wrong_scopes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginTotal.WithLabelValues("password", resultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensRefreshedTotal.WithLabelValues(resultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseQueryErrorsTotal.WithLabelValues("count_users")))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestMetrics()

	r := gin.New()
	r.Use(HTTPMetricsMiddleware(m))
	r.GET("/users/:user_id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/users/u1", "/users/u2", "/metrics", "/nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/users/:user_id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unknown", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestHTTPMetricsMiddleware_Noop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetricsMiddleware(NewNoopMetrics()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "unknown", normalizePath(""))
	assert.Equal(t, "/users/:user_id", normalizePath("/users/:user_id"))
}
