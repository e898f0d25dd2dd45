package metrics

import (
	"time"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric the service exposes. It holds a
// private registry so tests can create collectors without colliding on the
// global default registry.
//
// A nil-config or disabled collector records nothing; callers do not need
// to guard individual calls.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	decisionMetrics *DecisionMetrics
	reviewMetrics   *ReviewMetrics
	auditMetrics    *AuditMetrics
}

// NewCollector creates a metrics collector with the given configuration
// and registry. If registry is nil a fresh private registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.decisionMetrics = NewDecisionMetrics(cfg, registry)
	c.reviewMetrics = NewReviewMetrics(cfg, registry)
	c.auditMetrics = NewAuditMetrics(cfg, registry)

	return c
}

// RecordEvaluation records one engine evaluation attempt. For failed
// evaluations the disposition is empty and only the status counter moves.
func (c *Collector) RecordEvaluation(disposition engine.Disposition, status string, elapsed time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.decisionMetrics.RecordEvaluation(disposition, status, elapsed)
}

// RecordResolution records a human resolution of a queued application.
func (c *Collector) RecordResolution(decision audit.HumanDecision, feedbackTriggered bool) {
	if !c.config.Enabled {
		return
	}
	c.reviewMetrics.RecordResolution(decision, feedbackTriggered)
}

// QueueDepthInc notes an application entering the review queue.
func (c *Collector) QueueDepthInc() {
	if !c.config.Enabled {
		return
	}
	c.reviewMetrics.queueDepth.Inc()
}

// QueueDepthDec notes an application leaving the review queue.
func (c *Collector) QueueDepthDec() {
	if !c.config.Enabled {
		return
	}
	c.reviewMetrics.queueDepth.Dec()
}

// RecordAuditWrite records one audit storage append attempt.
func (c *Collector) RecordAuditWrite(status string, attempts int) {
	if !c.config.Enabled {
		return
	}
	c.auditMetrics.RecordWrite(status, attempts)
}

// SetRecorderBacklog reports the number of audit records waiting in the
// async recorder buffer.
func (c *Collector) SetRecorderBacklog(n int) {
	if !c.config.Enabled {
		return
	}
	c.auditMetrics.recorderBacklog.Set(float64(n))
}

// Registry exposes the underlying registry, primarily for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
