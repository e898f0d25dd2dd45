package storage

import (
	"context"
	"sort"
	"sync"

	"nexus-hq/arbiter/pkg/audit"
)

// MemoryStorage implements audit.Storage with an in-memory append-only
// slice. It is intended for testing and ephemeral deployments.
type MemoryStorage struct {
	records []*audit.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory audit storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Append persists a record in insertion order.
func (s *MemoryStorage) Append(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later caller mutations cannot rewrite history.
	recordCopy := *record
	s.records = append(s.records, &recordCopy)
	return nil
}

// Query retrieves records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*audit.Record
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	if query.SortOrder == "asc" {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].RecordedAt.Before(results[j].RecordedAt)
		})
	} else {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].RecordedAt.After(results[j].RecordedAt)
		})
	}

	start := query.Offset
	if start > len(results) {
		return []*audit.Record{}, nil
	}
	end := len(results)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}
	return results[start:end], nil
}

// QueryStream streams records matching the query filters.
func (s *MemoryStorage) QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.Record, <-chan error, error) {
	recordsCh := make(chan *audit.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		records, err := s.Query(ctx, query)
		if err != nil {
			errCh <- err
			return
		}

		for _, record := range records {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// Close releases resources held by the backend.
func (s *MemoryStorage) Close() error {
	return nil
}

// Size returns the number of stored records (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *audit.Record, query *audit.Query) bool {
	if query.ApplicationID != "" && record.ApplicationID != query.ApplicationID {
		return false
	}
	if query.Disposition != "" && record.Disposition != query.Disposition {
		return false
	}
	if query.StartTime != nil && record.RecordedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.RecordedAt.After(*query.EndTime) {
		return false
	}
	if query.OverriddenOnly && record.HumanOverride == nil {
		return false
	}
	if query.FeedbackTriggered != nil {
		triggered := record.FeedbackLoop != nil && record.FeedbackLoop.Triggered
		if triggered != *query.FeedbackTriggered {
			return false
		}
	}
	return true
}
