// Package metrics provides Prometheus instrumentation for the decision
// pipeline.
//
// A Collector bundles three metric groups: decision metrics (evaluation
// counts and latency by disposition), review metrics (queue depth and
// human resolutions), and audit metrics (append counts, retries, recorder
// backlog). Each collector owns a private registry, exposed over HTTP by
// Handler.
//
// Basic usage:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	http.Handle("/metrics", collector.Handler())
package metrics
