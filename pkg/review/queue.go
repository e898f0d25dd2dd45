package review

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"
)

// Entry is a deferred application awaiting human resolution. The stored
// engine result keeps the original signals, and the stored governance is
// the snapshot the evaluation ran under, so resolution can recompute the
// counterfactual disposition deterministically: neither a re-run of a
// possibly non-deterministic risk estimate nor a governance reload between
// enqueue and resolve can change it.
type Entry struct {
	Result      engine.EngineResult     `json:"result"`
	Application engine.LoanApplication  `json:"application"`
	Governance  config.GovernanceConfig `json:"governance"`
	EnqueuedAt  time.Time               `json:"enqueued_at"`
}

// Queue holds applications whose disposition requires human judgment.
// Entries are keyed by application id and have a single lifecycle
// transition: PENDING until resolved, removed exactly when resolution
// finalizes them into an audit record. No other path removes an entry.
//
// Implementations must be safe for concurrent use and must make
// enqueue/resolve pairs for an application id linearizable: resolve is a
// compare-and-remove on presence, so no two resolutions for the same id
// can both succeed.
type Queue interface {
	// Enqueue adds an entry for the result's application, pinning the
	// governance snapshot the evaluation ran under. It fails with
	// DuplicateEnqueueError if an entry for that id already exists;
	// duplicate enqueue is a programming error, not a normal condition.
	Enqueue(ctx context.Context, result *engine.EngineResult, app *engine.LoanApplication, gov config.GovernanceConfig) error

	// Resolve finalizes a pending entry with the reviewer's decision,
	// removes it, and returns the audit record to append. It fails with
	// NotFoundError if no pending entry exists for the id: resolving an
	// already-resolved or never-enqueued application is an error, not a
	// silent success. The justification is recorded verbatim.
	Resolve(ctx context.Context, applicationID string, decision audit.HumanDecision, justification string) (*audit.Record, error)

	// Pending lists all pending entries, oldest first.
	Pending(ctx context.Context) ([]*Entry, error)

	// Len returns the number of pending entries.
	Len(ctx context.Context) (int, error)

	// Close releases any resources held by the queue.
	Close() error
}

// finalize builds the audit record for a resolved entry.
//
// The feedback-loop marker compares the reviewer's decision against the
// counterfactual disposition the engine would have produced on the stored
// signals, under the entry's stored governance, had the policy checklist
// passed. A divergence means the human disagreed with the engine and the
// record is tagged for retraining. Since arbitration never auto-declines,
// every DECLINED resolution diverges by construction.
func finalize(entry *Entry, decision audit.HumanDecision, justification string, now time.Time) *audit.Record {
	natural := engine.Counterfactual(entry.Result.Risk, entry.Result.Content, &entry.Application, entry.Governance)
	triggered := decision.Disposition() != natural

	return &audit.Record{
		ID:            uuid.New().String(),
		ApplicationID: entry.Application.ID,
		Application:   entry.Application,
		Policy:        entry.Result.Policy,
		Risk:          entry.Result.Risk,
		Content:       entry.Result.Content,
		Disposition:   decision.Disposition(),
		EvaluatedAt:   entry.Result.EvaluatedAt,
		RecordedAt:    now,
		HumanOverride: &audit.HumanOverride{
			OriginalDisposition: entry.Result.Disposition,
			FinalDecision:       decision,
			Justification:       justification,
			ResolvedAt:          now,
		},
		FeedbackLoop: &audit.FeedbackLoop{
			Triggered: triggered,
			Type:      audit.FeedbackModelRetraining,
		},
	}
}
