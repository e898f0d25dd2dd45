package metrics

import (
	"time"

	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetrics tracks engine evaluation outcomes.
//
// Metrics:
//   - arbiter_evaluations_total: evaluation count by disposition and status
//   - arbiter_evaluation_duration_seconds: end-to-end evaluation latency
type DecisionMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
}

// NewDecisionMetrics creates and registers decision metrics with the
// provided registry.
func NewDecisionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DecisionMetrics {
	dm := &DecisionMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of loan application evaluations",
			},
			[]string{"disposition", "status"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of application evaluations in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"disposition"},
		),
	}

	registry.MustRegister(
		dm.evaluationsTotal,
		dm.evaluationDuration,
	)

	return dm
}

// RecordEvaluation records one evaluation attempt. Failed evaluations
// carry an empty disposition, reported under the "none" label.
func (dm *DecisionMetrics) RecordEvaluation(disposition engine.Disposition, status string, elapsed time.Duration) {
	label := string(disposition)
	if label == "" {
		label = "none"
	}

	dm.evaluationsTotal.WithLabelValues(label, status).Inc()
	dm.evaluationDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}
