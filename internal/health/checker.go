// Package health reports whether the quiz service can answer requests.
//
// Checkers report one Result each; a Manager runs them in parallel and a
// ProbeManager turns the outcome into liveness, readiness and startup
// probes:
//
//	pm := health.NewProbeManager(version.Version)
//	pm.AddChecker(health.NewLibraryChecker(watcher.Current))
//	result := pm.CheckReadiness(ctx)
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency of the service.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "quiz-data".
	Name() string

	// Check must respect the context deadline.
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check. Degraded means the service still
// answers, with reduced quality.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is what a Checker reports.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency_ns"`
}

// NewResult creates a result with empty details.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail sets one detail and returns r.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithDetails copies every entry of details into r.
func (r *Result) WithDetails(details map[string]any) *Result {
	for k, v := range details {
		r.Details[k] = v
	}
	return r
}

// WithLatency sets the latency and returns r.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

func Healthy(message string) *Result   { return NewResult(StatusHealthy, message) }
func Degraded(message string) *Result  { return NewResult(StatusDegraded, message) }
func Unhealthy(message string) *Result { return NewResult(StatusUnhealthy, message) }
