package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"nexus-hq/arbiter/pkg/config"
)

// Scheduler runs the feedback export on a cron schedule. Each run exports
// the records triggered since the previous successful run, so consumers
// see each record exactly once across the file series.
type Scheduler struct {
	exporter *Exporter
	cfg      config.FeedbackConfig
	cron     *cron.Cron
	logger   *slog.Logger

	mu        sync.Mutex
	running   bool
	lastRun   *time.Time
	lastCount int
}

// NewScheduler creates a feedback export scheduler.
func NewScheduler(exporter *Exporter, cfg config.FeedbackConfig) *Scheduler {
	return &Scheduler{
		exporter: exporter,
		cfg:      cfg,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "feedback.scheduler"),
	}
}

// Start begins scheduled exports. It validates the cron expression up
// front and stops automatically when ctx is cancelled. Starting a
// disabled scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled {
		s.logger.Info("feedback export disabled, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid feedback export schedule %q: %w", s.cfg.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.runExport(ctx) }); err != nil {
		return fmt.Errorf("schedule feedback export: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("feedback export scheduler started",
		"schedule", s.cfg.Schedule,
		"output_dir", s.cfg.OutputDir,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled exports. An in-flight export finishes first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("feedback export scheduler stopped")
}

// RunNow triggers an immediate export outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) {
	s.runExport(ctx)
}

func (s *Scheduler) runExport(ctx context.Context) {
	s.mu.Lock()
	since := s.lastRun
	s.mu.Unlock()

	started := time.Now().UTC()
	path, count, err := s.exporter.ExportToDir(ctx, since, s.cfg.OutputDir)
	if err != nil {
		// The window is not advanced on failure; the next run retries
		// the same records.
		s.logger.Error("feedback export failed",
			"path", path,
			"error", err,
		)
		return
	}

	s.mu.Lock()
	s.lastRun = &started
	s.lastCount = count
	s.mu.Unlock()
}
