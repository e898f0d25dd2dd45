package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nexus-hq/arbiter/pkg/audit"
)

// Exporter writes feedback-triggered audit records as JSON Lines for the
// downstream retraining pipeline. It only reads from storage; the audit
// log itself is never modified by an export.
type Exporter struct {
	storage audit.Storage
	logger  *slog.Logger
}

// NewExporter creates an exporter over the given audit storage.
func NewExporter(storage audit.Storage) *Exporter {
	return &Exporter{
		storage: storage,
		logger:  slog.Default().With("component", "feedback.exporter"),
	}
}

// Export streams every feedback-triggered record in the window to w, one
// JSON object per line, and returns the number of records written. A nil
// since exports the full history.
func (e *Exporter) Export(ctx context.Context, since *time.Time, w io.Writer) (int, error) {
	triggered := true
	query := &audit.Query{
		FeedbackTriggered: &triggered,
		StartTime:         since,
		SortOrder:         "asc",
	}

	records, errCh, err := e.storage.QueryStream(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("feedback export query: %w", err)
	}

	enc := json.NewEncoder(w)
	count := 0
	for record := range records {
		if err := enc.Encode(record); err != nil {
			for range records {
			}
			<-errCh
			return count, fmt.Errorf("feedback export encode: %w", err)
		}
		count++
	}
	if err := <-errCh; err != nil {
		return count, fmt.Errorf("feedback export stream: %w", err)
	}
	return count, nil
}

// ExportToDir runs Export into a timestamped file under dir, creating the
// directory if needed. The file is named feedback-<UTC timestamp>.jsonl.
// An export that finds no records still produces an (empty) file, so a
// scheduled run is distinguishable from a missed one.
func (e *Exporter) ExportToDir(ctx context.Context, since *time.Time, dir string) (string, int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("feedback export dir: %w", err)
	}

	name := fmt.Sprintf("feedback-%s.jsonl", time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("feedback export file: %w", err)
	}

	count, exportErr := e.Export(ctx, since, f)
	closeErr := f.Close()
	if exportErr != nil {
		return path, count, exportErr
	}
	if closeErr != nil {
		return path, count, fmt.Errorf("feedback export close: %w", closeErr)
	}

	e.logger.Info("feedback export written",
		"path", path,
		"records", count,
	)
	return path, count, nil
}
