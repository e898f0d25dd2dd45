package review

import (
	"context"
	"sort"
	"sync"
	"time"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"
)

// MemoryQueue implements Queue with a mutex-guarded map. A single
// queue-wide lock makes enqueue/resolve pairs trivially linearizable;
// throughput is not a concern at review-queue volumes.
type MemoryQueue struct {
	entries map[string]*Entry
	mu      sync.Mutex
}

// NewMemoryQueue creates an empty in-memory review queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		entries: make(map[string]*Entry),
	}
}

// Enqueue adds a pending entry keyed by the application id.
func (q *MemoryQueue) Enqueue(ctx context.Context, result *engine.EngineResult, app *engine.LoanApplication, gov config.GovernanceConfig) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.entries[app.ID]; exists {
		return &DuplicateEnqueueError{ApplicationID: app.ID}
	}

	q.entries[app.ID] = &Entry{
		Result:      *result,
		Application: *app,
		Governance:  gov,
		EnqueuedAt:  time.Now().UTC(),
	}
	return nil
}

// Resolve finalizes and removes a pending entry atomically under the queue
// lock, so a second resolve for the same id observes the removal and fails
// with NotFoundError.
func (q *MemoryQueue) Resolve(ctx context.Context, applicationID string, decision audit.HumanDecision, justification string) (*audit.Record, error) {
	if !decision.Valid() {
		return nil, &InvalidDecisionError{Decision: string(decision)}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	entry, exists := q.entries[applicationID]
	if !exists {
		return nil, &NotFoundError{ApplicationID: applicationID}
	}

	record := finalize(entry, decision, justification, time.Now().UTC())
	delete(q.entries, applicationID)
	return record, nil
}

// Pending lists all pending entries, oldest first.
func (q *MemoryQueue) Pending(ctx context.Context) ([]*Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := make([]*Entry, 0, len(q.entries))
	for _, entry := range q.entries {
		entryCopy := *entry
		entries = append(entries, &entryCopy)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EnqueuedAt.Before(entries[j].EnqueuedAt)
	})
	return entries, nil
}

// Len returns the number of pending entries.
func (q *MemoryQueue) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries), nil
}

// Close releases resources held by the queue.
func (q *MemoryQueue) Close() error {
	return nil
}
