package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/engine"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()

	config := DefaultSQLiteConfig()
	config.Path = filepath.Join(t.TempDir(), "audit.db")

	s, err := NewSQLiteStorage(config)
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	recordedAt := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	record := sampleRecord("LN-SQL001", engine.DispositionAutoDecline, recordedAt)
	if err := s.Append(ctx, record); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	results, err := s.Query(ctx, &audit.Query{ApplicationID: "LN-SQL001"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 record, got %d", len(results))
	}

	got := results[0]
	if got.ID != record.ID {
		t.Errorf("id = %s, want %s", got.ID, record.ID)
	}
	if got.Disposition != engine.DispositionAutoDecline {
		t.Errorf("disposition = %s", got.Disposition)
	}
	if got.Application.CreditScore != 710 {
		t.Errorf("application payload lost: %+v", got.Application)
	}
	if got.Risk.Level != engine.RiskLow {
		t.Errorf("risk payload lost: %+v", got.Risk)
	}
	if got.HumanOverride == nil || got.HumanOverride.FinalDecision != audit.DecisionDeclined {
		t.Errorf("override payload lost: %+v", got.HumanOverride)
	}
	if got.FeedbackLoop == nil || !got.FeedbackLoop.Triggered {
		t.Errorf("feedback payload lost: %+v", got.FeedbackLoop)
	}
	if !got.RecordedAt.Equal(recordedAt) {
		t.Errorf("recorded_at = %s, want %s", got.RecordedAt, recordedAt)
	}
}

func TestSQLiteStorage_FiltersAndCount(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		disposition := engine.DispositionAutoApprove
		if i%2 == 0 {
			disposition = engine.DispositionAutoDecline
		}
		if err := s.Append(ctx, sampleRecord(fmt.Sprintf("LN-SQLF%02d", i), disposition, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	declined, err := s.Query(ctx, &audit.Query{Disposition: engine.DispositionAutoDecline})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(declined) != 3 {
		t.Errorf("expected 3 declined, got %d", len(declined))
	}

	triggered := true
	count, err := s.Count(ctx, &audit.Query{FeedbackTriggered: &triggered})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 triggered, got %d", count)
	}

	asc, err := s.Query(ctx, &audit.Query{SortOrder: "asc", Limit: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(asc) != 2 || asc[0].ApplicationID != "LN-SQLF00" {
		t.Errorf("ascending page wrong: %v", asc)
	}
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.db")
	ctx := context.Background()

	config := DefaultSQLiteConfig()
	config.Path = path
	s, err := NewSQLiteStorage(config)
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	if err := s.Append(ctx, sampleRecord("LN-PERSIST", engine.DispositionAutoApprove, time.Now().UTC())); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStorage(config)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	count, err := reopened.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 record after reopen, got %d", count)
	}
}

func TestSQLiteStorage_UnlimitedQueryReturnsEverything(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		if err := s.Append(ctx, sampleRecord(fmt.Sprintf("LN-BULK%03d", i), engine.DispositionAutoDecline, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	results, err := s.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 150 {
		t.Errorf("zero-limit Query returned %d records, want 150", len(results))
	}

	records, errCh, err := s.QueryStream(ctx, &audit.Query{SortOrder: "asc"})
	if err != nil {
		t.Fatalf("QueryStream failed: %v", err)
	}
	streamed := 0
	for range records {
		streamed++
	}
	if err := <-errCh; err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if streamed != 150 {
		t.Errorf("zero-limit stream yielded %d records, want 150", streamed)
	}
}

func TestSQLiteStorage_QueryStream(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 10; i++ {
		if err := s.Append(ctx, sampleRecord(fmt.Sprintf("LN-SSTR%02d", i), engine.DispositionAutoApprove, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	records, errCh, err := s.QueryStream(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("QueryStream failed: %v", err)
	}
	count := 0
	for range records {
		count++
	}
	if err := <-errCh; err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if count != 10 {
		t.Errorf("expected 10 streamed records, got %d", count)
	}
}
