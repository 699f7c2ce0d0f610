package service

import "time"

// Access decision outcomes.
const (
	OutcomeAllowed      = "allowed"
	OutcomeUnauthorized = "unauthorized"
	OutcomeForbidden    = "forbidden"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// MetricsRecorder collects security counters without tying the use cases to a metrics backend.
type MetricsRecorder interface {
	RecordAccessDecision(policy, outcome string)
	RecordLogin(success bool)
	RecordRegistration(success bool)
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) RecordAccessDecision(string, string)                   {}
func (NopMetrics) RecordLogin(bool)                                      {}
func (NopMetrics) RecordRegistration(bool)                               {}
func (NopMetrics) ObserveHTTPRequest(string, string, int, time.Duration) {}
