package audit

import (
	"context"
	"time"

	"nexus-hq/arbiter/pkg/engine"
)

// HumanDecision is a reviewer's binding decision on a queued application.
type HumanDecision string

const (
	DecisionApproved HumanDecision = "APPROVED"
	DecisionDeclined HumanDecision = "DECLINED"
)

// Valid reports whether the decision is one of the two allowed values.
func (d HumanDecision) Valid() bool {
	return d == DecisionApproved || d == DecisionDeclined
}

// Disposition maps the human decision onto the disposition recorded in the
// audit trail.
func (d HumanDecision) Disposition() engine.Disposition {
	if d == DecisionApproved {
		return engine.DispositionAutoApprove
	}
	return engine.DispositionAutoDecline
}

// FeedbackType classifies what a feedback-tagged record should drive
// downstream.
type FeedbackType string

const (
	// FeedbackModelRetraining marks records for risk-model retraining.
	FeedbackModelRetraining FeedbackType = "MODEL_RETRAINING"

	// FeedbackPolicyAdjustment marks records for policy tuning. Reserved;
	// the current resolution path always tags MODEL_RETRAINING.
	FeedbackPolicyAdjustment FeedbackType = "POLICY_ADJUSTMENT"
)

// HumanOverride captures a reviewer's resolution of a deferred application.
// It is present on a record if and only if the original disposition was
// HITL_REVIEW and required human resolution.
type HumanOverride struct {
	// OriginalDisposition is the disposition arbitration produced before
	// the human stepped in (always HITL_REVIEW on the resolution path).
	OriginalDisposition engine.Disposition `json:"original_disposition"`

	// FinalDecision is the reviewer's binding decision.
	FinalDecision HumanDecision `json:"final_decision"`

	// Justification is the reviewer's free-text rationale, recorded
	// verbatim.
	Justification string `json:"justification"`

	// ResolvedAt is when the reviewer resolved the entry.
	ResolvedAt time.Time `json:"resolved_at"`
}

// FeedbackLoop tags a record for the downstream feedback/retraining
// process. Triggered is true exactly when the human's decision diverged
// from the counterfactual disposition the engine would have produced on the
// same signals.
type FeedbackLoop struct {
	Triggered bool         `json:"triggered"`
	Type      FeedbackType `json:"type"`
}

// Record is an immutable audit record of a finalized decision. Records are
// created only when a disposition is finalized, automatically or by human
// resolution, and are never mutated afterward: corrections append a new
// record rather than editing history.
type Record struct {
	// ID uniquely identifies this record.
	ID string `json:"id"`

	// ApplicationID is the application this decision concerns.
	ApplicationID string `json:"application_id"`

	// Application is the full application snapshot at decision time.
	Application engine.LoanApplication `json:"application"`

	// Policy, Risk, and Content are the signals the decision was based
	// on, captured at evaluation time; risk is never re-derived.
	Policy  engine.PolicyResult  `json:"policy"`
	Risk    engine.RiskResult    `json:"risk"`
	Content engine.ContentResult `json:"content"`

	// Disposition is the final outcome.
	Disposition engine.Disposition `json:"disposition"`

	// EvaluatedAt is when arbitration produced the engine result.
	EvaluatedAt time.Time `json:"evaluated_at"`

	// RecordedAt is when this record was finalized.
	RecordedAt time.Time `json:"recorded_at"`

	// HumanOverride is set only for human-resolved dispositions.
	HumanOverride *HumanOverride `json:"human_override,omitempty"`

	// FeedbackLoop is set only for human-resolved dispositions.
	FeedbackLoop *FeedbackLoop `json:"feedback_loop,omitempty"`
}

// Query defines filter parameters for reading audit records.
type Query struct {
	// ApplicationID filters to a single application's record.
	ApplicationID string `json:"application_id,omitempty"`

	// Disposition filters by final disposition.
	Disposition engine.Disposition `json:"disposition,omitempty"`

	// StartTime and EndTime bound RecordedAt (inclusive).
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// FeedbackTriggered filters by the feedback-loop marker.
	FeedbackTriggered *bool `json:"feedback_triggered,omitempty"`

	// OverriddenOnly restricts results to human-resolved records.
	OverriddenOnly bool `json:"overridden_only,omitempty"`

	// Limit and Offset paginate results. A zero Limit returns all
	// matching records.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortOrder orders by RecordedAt: "asc" or "desc" (default "desc").
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage is the append-only audit log backend. Implementations must be
// safe for concurrent use.
//
// The interface deliberately has no update or delete operation: audit
// history is immutable. This is a design invariant of the store, not an
// unimplemented feature.
type Storage interface {
	// Append persists a finalized record. Insertion order is decision
	// order.
	Append(ctx context.Context, record *Record) error

	// Query retrieves records matching the filters. Returns an empty
	// slice when nothing matches.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// QueryStream streams records matching the filters for large result
	// sets. Both channels are closed when the query completes or errors;
	// callers must drain both.
	QueryStream(ctx context.Context, query *Query) (<-chan *Record, <-chan error, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}
