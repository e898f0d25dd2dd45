// Package health provides liveness and readiness probes for the HTTP
// server. Dependency checks (audit storage, review queue) register by
// name; readiness aggregates them and the handlers expose the results as
// JSON endpoints.
package health
