package metrics

import "time"

// NoopMetrics discards everything; used when METRICS_ENABLED is false.
type NoopMetrics struct{}

var _ Recorder = (*NoopMetrics)(nil)

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordClientAuthentication(result string)                           {}
func (n *NoopMetrics) RecordLogin(grantType string, success bool, duration time.Duration) {}
func (n *NoopMetrics) RecordSignUp(success bool)                                          {}
func (n *NoopMetrics) RecordTokenIssued(grantType string, generationTime time.Duration)   {}
func (n *NoopMetrics) RecordTokenRefresh(success bool)                                    {}
func (n *NoopMetrics) RecordGateDecision(result string, duration time.Duration)           {}
func (n *NoopMetrics) SetActiveTokensCount(count int)                                     {}
func (n *NoopMetrics) SetUsersCount(count int)                                            {}
func (n *NoopMetrics) RecordDatabaseQueryError(operation string)                          {}
