// Package server exposes the decision pipeline over HTTP.
//
// Endpoints:
//
//	POST /v1/applications          submit an application for evaluation
//	GET  /v1/review                list applications awaiting review
//	POST /v1/review/{id}/resolve   record a reviewer's decision
//	GET  /v1/audit                 query the audit log (read-only)
//	GET  /health                   liveness probe
//	GET  /ready                    readiness probe with dependency checks
//	GET  /metrics                  Prometheus metrics, when enabled
//
// The audit surface is read-only by construction; no endpoint mutates
// recorded history. Requests carry an X-Request-ID correlation header and
// the server shuts down gracefully on SIGINT/SIGTERM.
package server
