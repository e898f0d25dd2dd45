package feedback

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"nexus-hq/arbiter/pkg/audit/storage"
	"nexus-hq/arbiter/pkg/config"
)

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer store.Close()

	s := NewScheduler(NewExporter(store), config.FeedbackConfig{
		Enabled:   true,
		Schedule:  "not a cron expression",
		OutputDir: t.TempDir(),
	})
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestScheduler_DisabledIsNoOp(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer store.Close()

	s := NewScheduler(NewExporter(store), config.FeedbackConfig{Enabled: false})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("disabled Start failed: %v", err)
	}
	s.Stop()
}

func TestScheduler_RunNowAdvancesWindow(t *testing.T) {
	store := seedStorage(t)
	dir := t.TempDir()

	s := NewScheduler(NewExporter(store), config.FeedbackConfig{
		Enabled:   true,
		Schedule:  "0 3 * * *",
		OutputDir: dir,
	})

	s.RunNow(context.Background())
	if s.lastRun == nil {
		t.Fatal("successful run should advance the window")
	}
	if s.lastCount != 3 {
		t.Errorf("lastCount = %d, want 3", s.lastCount)
	}

	// nothing new was recorded, so the next run exports an empty file
	s.RunNow(context.Background())
	if s.lastCount != 0 {
		t.Errorf("second run lastCount = %d, want 0", s.lastCount)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(files) < 1 {
		t.Fatal("no export files written")
	}
}

func TestScheduler_FailureKeepsWindow(t *testing.T) {
	store := seedStorage(t)

	// an unwritable output path fails the export
	dir := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(dir, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	s := NewScheduler(NewExporter(store), config.FeedbackConfig{
		Enabled:   true,
		Schedule:  "0 3 * * *",
		OutputDir: dir,
	})

	s.RunNow(context.Background())
	if s.lastRun != nil {
		t.Error("failed run must not advance the window")
	}
}
