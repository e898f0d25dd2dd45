package metrics

import (
	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ReviewMetrics tracks the review queue and human resolutions.
//
// Metrics:
//   - arbiter_review_queue_depth: applications currently awaiting review
//   - arbiter_review_resolutions_total: resolutions by decision and
//     feedback marker
type ReviewMetrics struct {
	queueDepth       prometheus.Gauge
	resolutionsTotal *prometheus.CounterVec
}

// NewReviewMetrics creates and registers review metrics with the provided
// registry.
func NewReviewMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ReviewMetrics {
	rm := &ReviewMetrics{
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "review_queue_depth",
				Help:      "Number of applications currently awaiting human review",
			},
		),

		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "review_resolutions_total",
				Help:      "Total number of human resolutions",
			},
			[]string{"decision", "feedback"},
		),
	}

	registry.MustRegister(
		rm.queueDepth,
		rm.resolutionsTotal,
	)

	return rm
}

// RecordResolution records one human resolution.
func (rm *ReviewMetrics) RecordResolution(decision audit.HumanDecision, feedbackTriggered bool) {
	feedback := "none"
	if feedbackTriggered {
		feedback = "triggered"
	}
	rm.resolutionsTotal.WithLabelValues(string(decision), feedback).Inc()
}
