// Package feedback exports feedback-triggered audit records for the
// retraining pipeline.
//
// A record is feedback-triggered when a reviewer's decision diverged from
// the disposition the engine would have produced on the same signals.
// The exporter streams those records from audit storage into JSON Lines
// files; the scheduler runs it on a cron expression, exporting each
// record exactly once across successive files.
//
// Exports are strictly read-only. The audit log's append-only contract is
// not relaxed here: nothing in this package mutates or removes history.
package feedback
