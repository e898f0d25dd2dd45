package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/audit/recorder"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"
	"nexus-hq/arbiter/pkg/review"
	"nexus-hq/arbiter/pkg/telemetry/metrics"
)

// DefaultJustification is recorded when a reviewer resolves an entry
// without providing a rationale. The queue stores justifications verbatim;
// substituting the placeholder is this layer's responsibility.
const DefaultJustification = "No justification provided."

// GovernanceSource supplies the governance snapshot an evaluation runs
// under. Each call returns an independent copy, so a snapshot taken at
// submission time is unaffected by concurrent configuration reloads.
type GovernanceSource func() config.GovernanceConfig

// Pipeline routes an application from evaluation to its terminal audit
// record. Auto-approved applications are recorded immediately; deferred
// applications park in the review queue until a human resolves them, and
// resolution produces the record instead.
//
// The pipeline is safe for concurrent use.
type Pipeline struct {
	engine     *engine.Engine
	queue      review.Queue
	recorder   *recorder.Recorder
	governance GovernanceSource
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithMetrics attaches a metrics collector. Nil disables metric recording.
func WithMetrics(collector *metrics.Collector) PipelineOption {
	return func(p *Pipeline) { p.metrics = collector }
}

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// NewPipeline creates a Pipeline. The governance source is consulted once
// per submission; the snapshot travels with a deferred entry so resolution
// recomputes the counterfactual under the rules the evaluation saw. Pass
// config.Governance to follow the live configuration, or a closure over a
// fixed snapshot for deterministic batch runs.
func NewPipeline(eng *engine.Engine, queue review.Queue, rec *recorder.Recorder, governance GovernanceSource, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		engine:     eng,
		queue:      queue,
		recorder:   rec,
		governance: governance,
		logger:     slog.Default().With("component", "workflow"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit evaluates an application and routes it by disposition:
// AUTO_APPROVE finalizes an audit record immediately, HITL_REVIEW parks
// the entry in the review queue. The returned result carries the
// disposition either way.
//
// A failed evaluation (invalid application, unavailable signal) routes
// nowhere: no queue entry, no audit record.
func (p *Pipeline) Submit(ctx context.Context, app *engine.LoanApplication) (*engine.EngineResult, error) {
	gov := p.governance()
	start := time.Now()

	result, err := p.engine.Evaluate(ctx, app, gov)
	if err != nil {
		p.observeEvaluation("", time.Since(start), err)
		return nil, err
	}
	p.observeEvaluation(result.Disposition, time.Since(start), nil)

	switch result.Disposition {
	case engine.DispositionAutoApprove:
		record := autoRecord(result, app)
		if err := p.recorder.Record(ctx, record); err != nil {
			return nil, err
		}

	case engine.DispositionReview:
		if err := p.queue.Enqueue(ctx, result, app, gov); err != nil {
			return nil, err
		}
		if p.metrics != nil {
			p.metrics.QueueDepthInc()
		}
	}

	p.logger.Info("application routed",
		"application_id", app.ID,
		"disposition", result.Disposition,
	)
	return result, nil
}

// Resolve finalizes a queued application with the reviewer's decision and
// appends the resulting audit record. A blank justification is replaced
// with DefaultJustification before it reaches the queue.
func (p *Pipeline) Resolve(ctx context.Context, applicationID string, decision audit.HumanDecision, justification string) (*audit.Record, error) {
	if !decision.Valid() {
		return nil, &review.InvalidDecisionError{Decision: string(decision)}
	}
	if justification == "" {
		justification = DefaultJustification
	}

	record, err := p.queue.Resolve(ctx, applicationID, decision, justification)
	if err != nil {
		return nil, err
	}

	if err := p.recorder.Record(ctx, record); err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.QueueDepthDec()
		p.metrics.RecordResolution(decision, record.FeedbackLoop != nil && record.FeedbackLoop.Triggered)
	}

	p.logger.Info("application resolved",
		"application_id", applicationID,
		"decision", decision,
		"feedback_triggered", record.FeedbackLoop != nil && record.FeedbackLoop.Triggered,
	)
	return record, nil
}

// Pending lists the applications awaiting human review, oldest first.
func (p *Pipeline) Pending(ctx context.Context) ([]*review.Entry, error) {
	return p.queue.Pending(ctx)
}

// autoRecord builds the audit record for an automatically approved
// application. No override or feedback marker applies: the engine's own
// disposition stood.
func autoRecord(result *engine.EngineResult, app *engine.LoanApplication) *audit.Record {
	return &audit.Record{
		ID:            uuid.New().String(),
		ApplicationID: app.ID,
		Application:   *app,
		Policy:        result.Policy,
		Risk:          result.Risk,
		Content:       result.Content,
		Disposition:   result.Disposition,
		EvaluatedAt:   result.EvaluatedAt,
		RecordedAt:    time.Now().UTC(),
	}
}

func (p *Pipeline) observeEvaluation(disposition engine.Disposition, elapsed time.Duration, err error) {
	if p.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		var invalid *engine.InvalidApplicationError
		status = "signal_error"
		if errors.As(err, &invalid) {
			status = "invalid"
		}
	}
	p.metrics.RecordEvaluation(disposition, status, elapsed)
}
