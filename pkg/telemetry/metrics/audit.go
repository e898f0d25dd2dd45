package metrics

import (
	"nexus-hq/arbiter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks the append-only audit log and its async recorder.
//
// Metrics:
//   - arbiter_audit_writes_total: storage appends by status
//   - arbiter_audit_write_retries_total: retried append attempts
//   - arbiter_audit_recorder_backlog: records buffered in the recorder
type AuditMetrics struct {
	writesTotal     *prometheus.CounterVec
	retriesTotal    prometheus.Counter
	recorderBacklog prometheus.Gauge
}

// NewAuditMetrics creates and registers audit metrics with the provided
// registry.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_writes_total",
				Help:      "Total number of audit record appends",
			},
			[]string{"status"},
		),

		retriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_write_retries_total",
				Help:      "Total number of retried audit append attempts",
			},
		),

		recorderBacklog: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_recorder_backlog",
				Help:      "Audit records buffered in the async recorder",
			},
		),
	}

	registry.MustRegister(
		am.writesTotal,
		am.retriesTotal,
		am.recorderBacklog,
	)

	return am
}

// RecordWrite records a completed append and any retries it took.
func (am *AuditMetrics) RecordWrite(status string, attempts int) {
	am.writesTotal.WithLabelValues(status).Inc()
	if attempts > 1 {
		am.retriesTotal.Add(float64(attempts - 1))
	}
}
