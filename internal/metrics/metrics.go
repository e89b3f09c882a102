// Package metrics defines the Prometheus instruments of the quiz service.
// Counters are process-local operational metrics; nothing is persisted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scarepick"

// Selection outcomes.
const (
	OutcomeQuestion = "question"
	OutcomeResult   = "result"
	OutcomeIgnored  = "ignored"
)

// Metrics holds every instrument. Create one per registry.
type Metrics struct {
	// Session metrics
	SessionsStarted *prometheus.CounterVec
	SessionsEnded   *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
	Selections      *prometheus.CounterVec
	Restarts        prometheus.Counter
	Recommendations *prometheus.CounterVec
	NotFoundViews   *prometheus.CounterVec

	// Data metrics
	DataReloads   *prometheus.CounterVec
	DataQuestions prometheus.Gauge
	DataMovies    prometheus.Gauge

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Errors by structured error code
	Errors *prometheus.CounterVec
}

// NewMetrics creates all instruments and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		SessionsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_started_total",
				Help:      "Quiz sessions started",
			},
			[]string{"surface"},
		),
		SessionsEnded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_ended_total",
				Help:      "Quiz sessions ended, by reason",
			},
			[]string{"reason"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Quiz sessions currently held in memory",
			},
		),
		Selections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selections_total",
				Help:      "Answer selections, by outcome",
			},
			[]string{"outcome"},
		),
		Restarts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "restarts_total",
				Help:      "Quiz restarts",
			},
		),
		Recommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendations_total",
				Help:      "Movies recommended at the end of a quiz",
			},
			[]string{"movie"},
		),
		NotFoundViews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "not_found_views_total",
				Help:      "Views rendered for an unknown question or movie",
			},
			[]string{"missing"},
		),

		DataReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "data_reloads_total",
				Help:      "Quiz data snapshots published",
			},
			[]string{"fingerprint"},
		),
		DataQuestions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "data_questions",
				Help:      "Questions in the current snapshot",
			},
		),
		DataMovies: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "data_movies",
				Help:      "Movies in the current snapshot",
			},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests, by route pattern and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Errors returned to clients, by error code",
			},
			[]string{"error_code"},
		),
	}
}

// RecordSelection counts one answer and, for a result, the recommended movie.
func (m *Metrics) RecordSelection(outcome, movieID string) {
	m.Selections.WithLabelValues(outcome).Inc()
	if outcome == OutcomeResult && movieID != "" {
		m.Recommendations.WithLabelValues(movieID).Inc()
	}
}

// RecordData publishes the size of a newly loaded snapshot.
func (m *Metrics) RecordData(fingerprint string, questions, movies int) {
	m.DataReloads.WithLabelValues(shortFingerprint(fingerprint)).Inc()
	m.DataQuestions.Set(float64(questions))
	m.DataMovies.Set(float64(movies))
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
