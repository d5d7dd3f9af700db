package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Client authentication
	RecordClientAuthentication(result string)

	// Resource owner authentication
	RecordLogin(grantType string, success bool, duration time.Duration)
	RecordSignUp(success bool)

	// Token Operations
	RecordTokenIssued(grantType string, generationTime time.Duration)
	RecordTokenRefresh(success bool)

	// Request gate
	RecordGateDecision(result string, duration time.Duration)

	// Gauge Setters (for periodic updates)
	SetActiveTokensCount(count int)
	SetUsersCount(count int)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}
