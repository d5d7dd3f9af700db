package metrics

import (
	"sync"
	"time"

	"github.com/mepla/Enchilada/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is a type alias for core.Recorder.
type Recorder = core.Recorder

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Client Metrics
	ClientAuthTotal *prometheus.CounterVec

	// Resource Owner Metrics
	LoginTotal    *prometheus.CounterVec
	LoginDuration *prometheus.HistogramVec
	SignUpTotal   *prometheus.CounterVec
	UsersTotal    prometheus.Gauge

	// Token Metrics
	TokensIssuedTotal       *prometheus.CounterVec
	TokensRefreshedTotal    *prometheus.CounterVec
	TokensActive            prometheus.Gauge
	TokenGenerationDuration *prometheus.HistogramVec

	// Gate Metrics
	GateDecisionsTotal *prometheus.CounterVec
	GateDuration       *prometheus.HistogramVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns the Prometheus recorder when enabled and a no-op otherwise.
// Collectors are registered once per process.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = newMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ClientAuthTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_authentications_total",
				Help: "Total number of API client authentications",
			},
			[]string{"result"}, // success, not_found, bad_secret, wrong_scopes
		),

		LoginTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_total",
				Help: "Total number of login attempts",
			},
			[]string{"grant_type", "result"},
		),
		LoginDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_login_duration_seconds",
				Help:    "Login request duration",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"grant_type"},
		),
		SignUpTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_signup_total",
				Help: "Total number of sign up attempts",
			},
			[]string{"result"},
		),
		UsersTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "users_total",
				Help: "Current number of registered users",
			},
		),

		TokensIssuedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokens_issued_total",
				Help: "Total number of bearer tokens issued",
			},
			[]string{"grant_type"}, // password, refresh_token
		),
		TokensRefreshedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokens_refreshed_total",
				Help: "Total number of token refresh attempts",
			},
			[]string{"result"},
		),
		TokensActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tokens_active",
				Help: "Current number of unexpired tokens",
			},
		),
		TokenGenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "token_generation_duration_seconds",
				Help:    "Time taken to generate and persist a token",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25},
			},
			[]string{"grant_type"},
		),

		GateDecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gate_decisions_total",
				Help: "Total number of request gate decisions",
			},
			[]string{"result"}, // allow or the error code
		),
		GateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gate_decision_duration_seconds",
				Help:    "Time taken by the request gate",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1},
			},
			[]string{"result"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		DatabaseQueryErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors during metric collection",
			},
			[]string{"operation"}, // count_active_tokens, count_users
		),
	}
}

func successLabel(success bool) string {
	if success {
		return resultSuccess
	}
	return resultFailure
}

func (m *Metrics) RecordClientAuthentication(result string) {
	m.ClientAuthTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordLogin(grantType string, success bool, duration time.Duration) {
	m.LoginTotal.WithLabelValues(grantType, successLabel(success)).Inc()
	m.LoginDuration.WithLabelValues(grantType).Observe(duration.Seconds())
}

func (m *Metrics) RecordSignUp(success bool) {
	m.SignUpTotal.WithLabelValues(successLabel(success)).Inc()
	if success {
		m.UsersTotal.Inc()
	}
}

// RecordTokenIssued counts an issued token and bumps the active gauge until
// the next periodic gauge update corrects it.
func (m *Metrics) RecordTokenIssued(grantType string, generationTime time.Duration) {
	m.TokensIssuedTotal.WithLabelValues(grantType).Inc()
	m.TokensActive.Inc()
	m.TokenGenerationDuration.WithLabelValues(grantType).Observe(generationTime.Seconds())
}

func (m *Metrics) RecordTokenRefresh(success bool) {
	m.TokensRefreshedTotal.WithLabelValues(successLabel(success)).Inc()
}

func (m *Metrics) RecordGateDecision(result string, duration time.Duration) {
	m.GateDecisionsTotal.WithLabelValues(result).Inc()
	m.GateDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func (m *Metrics) SetActiveTokensCount(count int) {
	m.TokensActive.Set(float64(count))
}

func (m *Metrics) SetUsersCount(count int) {
	m.UsersTotal.Set(float64(count))
}

func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
