// Package batch runs the decision engine over synthetic applications and
// aggregates disposition counts.
//
// Batch statistics reflect pre-human dispositions only. Arbitration never
// produces AUTO_DECLINE, so a batch report's declined count is structurally
// zero; declines only exist as human resolutions of deferred applications,
// which a batch run does not perform.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"
	"nexus-hq/arbiter/pkg/generator"
)

// Report aggregates the outcome of one batch run.
type Report struct {
	// Total is the number of applications submitted.
	Total int `json:"total"`

	// Approved counts AUTO_APPROVE dispositions.
	Approved int `json:"approved"`

	// Review counts HITL_REVIEW dispositions.
	Review int `json:"review"`

	// Failed counts applications whose evaluation errored. Failures are
	// distinct from deferrals; a failed evaluation produced no
	// disposition at all.
	Failed int `json:"failed"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}

// Runner evaluates batches of synthetic applications under a fixed
// governance snapshot.
type Runner struct {
	engine      *engine.Engine
	generator   *generator.Generator
	governance  config.GovernanceConfig
	concurrency int
	logger      *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency sets the number of concurrent evaluations. Values below
// one fall back to the default of 8.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRunnerLogger sets the runner logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a batch runner. The governance snapshot is taken once
// and applies to every evaluation in the run, so a concurrent config
// reload cannot split a report across two policy regimes.
func NewRunner(eng *engine.Engine, gen *generator.Generator, gov config.GovernanceConfig, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:      eng,
		generator:   gen,
		governance:  gov,
		concurrency: 8,
		logger:      slog.Default().With("component", "batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run generates n applications and evaluates them all, returning the
// aggregate report. Evaluation errors are counted, logged, and do not
// abort the run; a cancelled context does.
func (r *Runner) Run(ctx context.Context, n int) (*Report, error) {
	apps := r.generator.GenerateBatch(n)
	return r.RunApplications(ctx, apps)
}

// RunApplications evaluates the given applications with bounded
// concurrency and aggregates the dispositions.
func (r *Runner) RunApplications(ctx context.Context, apps []*engine.LoanApplication) (*Report, error) {
	start := time.Now()

	var mu sync.Mutex
	report := &Report{Total: len(apps)}

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, app := range apps {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(app *engine.LoanApplication) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := r.engine.Evaluate(ctx, app, r.governance)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				r.logger.Warn("batch evaluation failed",
					"application_id", app.ID,
					"error", err,
				)
				return
			}
			switch result.Disposition {
			case engine.DispositionAutoApprove:
				report.Approved++
			case engine.DispositionReview:
				report.Review++
			}
		}(app)
	}
	wg.Wait()

	report.Duration = time.Since(start)

	r.logger.Info("batch run complete",
		"total", report.Total,
		"approved", report.Approved,
		"review", report.Review,
		"failed", report.Failed,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}
