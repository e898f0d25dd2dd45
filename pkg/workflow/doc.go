// Package workflow wires the decision engine to the review queue and the
// audit recorder.
//
// Submit evaluates an application under a governance snapshot and routes
// it: automatic approvals are finalized into the audit log immediately,
// deferred applications wait in the review queue. Resolve completes a
// deferred application with a reviewer's binding decision and appends the
// resulting record, including the override and feedback-loop markers the
// queue computes.
//
// The pipeline never produces an automatic decline. The only path to a
// DECLINED outcome runs through a human resolution.
package workflow
