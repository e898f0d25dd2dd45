package engine

import (
	"context"
	"log/slog"
	"time"

	"nexus-hq/arbiter/pkg/config"
)

// Engine evaluates loan applications by fanning out to the risk estimator
// and content analyzer concurrently, running the local policy checklist,
// and arbitrating the three signals into a disposition.
//
// The engine itself is stateless; shared state lives in the review queue
// and audit log. It is safe for concurrent use by multiple callers.
type Engine struct {
	risk          RiskEstimator
	content       ContentAnalyzer
	signalTimeout time.Duration
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSignalTimeout sets the per-signal deadline for the risk estimator and
// content analyzer. Zero disables the deadline.
func WithSignalTimeout(d time.Duration) Option {
	return func(e *Engine) { e.signalTimeout = d }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine backed by the given signal providers.
func New(risk RiskEstimator, content ContentAnalyzer, opts ...Option) *Engine {
	e := &Engine{
		risk:          risk,
		content:       content,
		signalTimeout: config.DefaultSignalTimeout,
		logger:        slog.Default().With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// signalOutcome carries one provider's answer across the fan-in point.
type signalOutcome struct {
	signal  string
	risk    *RiskResult
	content *ContentResult
	err     error
}

// Evaluate validates the application, gathers the three signals, and
// arbitrates them into an EngineResult against the supplied governance
// snapshot.
//
// The risk and content providers run concurrently under the configured
// signal timeout; policy evaluation is local and synchronous. If either
// provider fails or times out, Evaluate returns a SignalUnavailableError
// and no EngineResult: a failed evaluation is distinguishable from a
// completed HITL_REVIEW disposition, and partial signals are never
// substituted with defaults.
func (e *Engine) Evaluate(ctx context.Context, app *LoanApplication, gov config.GovernanceConfig) (*EngineResult, error) {
	if err := ValidateApplication(app); err != nil {
		return nil, err
	}

	signalCtx := ctx
	var cancel context.CancelFunc
	if e.signalTimeout > 0 {
		signalCtx, cancel = context.WithTimeout(ctx, e.signalTimeout)
		defer cancel()
	}

	start := time.Now()
	outcomes := make(chan signalOutcome, 2)

	go func() {
		risk, err := e.risk.Estimate(signalCtx, app)
		outcomes <- signalOutcome{signal: SignalRisk, risk: risk, err: err}
	}()
	go func() {
		content, err := e.content.Analyze(signalCtx, app)
		outcomes <- signalOutcome{signal: SignalContent, content: content, err: err}
	}()

	// Policy is local and cheap; run it while the providers work.
	policy := EvaluatePolicy(app, gov)

	var risk *RiskResult
	var content *ContentResult
	for i := 0; i < 2; i++ {
		outcome := <-outcomes
		if outcome.err != nil {
			e.logger.Warn("signal provider failed",
				"application_id", app.ID,
				"signal", outcome.signal,
				"error", outcome.err,
			)
			return nil, NewSignalUnavailableError(outcome.signal, app.ID, outcome.err)
		}
		switch outcome.signal {
		case SignalRisk:
			risk = outcome.risk
		case SignalContent:
			content = outcome.content
		}
	}

	disposition := Decide(policy, *risk, *content, app, gov)

	result := &EngineResult{
		ApplicationID: app.ID,
		Policy:        policy,
		Risk:          *risk,
		Content:       *content,
		Disposition:   disposition,
		EvaluatedAt:   time.Now().UTC(),
	}

	e.logger.Info("application evaluated",
		"application_id", app.ID,
		"disposition", disposition,
		"policy_passed", policy.Passed,
		"risk_level", risk.Level,
		"content_flags", len(content.Flags),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// ValidateApplication checks that all required application fields are
// present and well-formed. Absence of a field is a caller error; the engine
// supplies no implicit defaults.
func ValidateApplication(app *LoanApplication) error {
	var bad []string

	if app == nil {
		return &InvalidApplicationError{Fields: []string{"application"}}
	}
	if app.ID == "" {
		bad = append(bad, "id")
	}
	if app.BusinessName == "" {
		bad = append(bad, "business_name")
	}
	if app.ApplicantName == "" {
		bad = append(bad, "applicant_name")
	}
	if app.Revenue < 0 {
		bad = append(bad, "revenue")
	}
	if app.RequestedAmount <= 0 {
		bad = append(bad, "requested_amount")
	}
	if app.CreditScore <= 0 {
		bad = append(bad, "credit_score")
	}
	if !app.Industry.Valid() {
		bad = append(bad, "industry")
	}
	if app.Description == "" {
		bad = append(bad, "description")
	}
	if app.SubmittedAt.IsZero() {
		bad = append(bad, "submitted_at")
	}

	if len(bad) > 0 {
		return &InvalidApplicationError{ApplicationID: app.ID, Fields: bad}
	}
	return nil
}
