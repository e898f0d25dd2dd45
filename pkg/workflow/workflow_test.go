package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/audit/recorder"
	"nexus-hq/arbiter/pkg/audit/storage"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"
	"nexus-hq/arbiter/pkg/review"
)

type fixedEstimator struct {
	result *engine.RiskResult
}

func (e *fixedEstimator) Estimate(ctx context.Context, app *engine.LoanApplication) (*engine.RiskResult, error) {
	r := *e.result
	return &r, nil
}

type fixedAnalyzer struct {
	result *engine.ContentResult
}

func (a *fixedAnalyzer) Analyze(ctx context.Context, app *engine.LoanApplication) (*engine.ContentResult, error) {
	r := *a.result
	return &r, nil
}

func testGovernance() config.GovernanceConfig {
	return config.GovernanceConfig{
		MinCreditScore:         600,
		MaxLoanAmount:          50000,
		StrictIndustryChecking: true,
		RestrictedIndustries:   []string{"Gambling"},
	}
}

func testPipeline(t *testing.T) (*Pipeline, review.Queue, *storage.MemoryStorage) {
	t.Helper()

	eng := engine.New(
		&fixedEstimator{result: &engine.RiskResult{ProbabilityOfDefault: 0.1, Level: engine.RiskLow}},
		&fixedAnalyzer{result: &engine.ContentResult{Sentiment: engine.SentimentPositive, Summary: "clean"}},
	)
	queue := review.NewMemoryQueue()
	store := storage.NewMemoryStorage()
	rec := recorder.New(store, config.RecorderConfig{
		Buffer:       16,
		WriteTimeout: time.Second,
		RetryInitial: time.Millisecond,
		RetryMax:     5 * time.Millisecond,
	})
	t.Cleanup(func() {
		rec.Close()
		store.Close()
	})

	governance := func() config.GovernanceConfig { return testGovernance() }
	return NewPipeline(eng, queue, rec, governance), queue, store
}

func healthyApplication(id string) *engine.LoanApplication {
	return &engine.LoanApplication{
		ID:              id,
		BusinessName:    "Acme Analytics",
		ApplicantName:   "Jane Smith",
		Revenue:         120000,
		RequestedAmount: 25000,
		CreditScore:     720,
		Industry:        engine.IndustryTechnology,
		Description:     "expanding the engineering team",
		SubmittedAt:     time.Now().UTC(),
	}
}

func waitForRecords(t *testing.T, store *storage.MemoryStorage, want int) []*audit.Record {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		records, err := store.Query(context.Background(), &audit.Query{})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(records) == want {
			return records
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d audit records", want)
	return nil
}

func TestPipeline_AutoApproveRecordsImmediately(t *testing.T) {
	p, queue, store := testPipeline(t)
	ctx := context.Background()

	result, err := p.Submit(ctx, healthyApplication("LN-WF00001"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Disposition != engine.DispositionAutoApprove {
		t.Fatalf("disposition = %s, want AUTO_APPROVE", result.Disposition)
	}

	if n, _ := queue.Len(ctx); n != 0 {
		t.Errorf("queue depth = %d, want 0", n)
	}

	records := waitForRecords(t, store, 1)
	record := records[0]
	if record.ApplicationID != "LN-WF00001" {
		t.Errorf("application_id = %s", record.ApplicationID)
	}
	if record.Disposition != engine.DispositionAutoApprove {
		t.Errorf("disposition = %s", record.Disposition)
	}
	if record.HumanOverride != nil {
		t.Errorf("auto-approved record should carry no override: %+v", record.HumanOverride)
	}
	if record.FeedbackLoop != nil {
		t.Errorf("auto-approved record should carry no feedback marker: %+v", record.FeedbackLoop)
	}
}

func TestPipeline_DeferredThenDeclined(t *testing.T) {
	p, queue, store := testPipeline(t)
	ctx := context.Background()

	app := healthyApplication("LN-WF00002")
	app.Revenue = 20000 // below the revenue floor

	result, err := p.Submit(ctx, app)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Disposition != engine.DispositionReview {
		t.Fatalf("disposition = %s, want HITL_REVIEW", result.Disposition)
	}
	if n, _ := queue.Len(ctx); n != 1 {
		t.Fatalf("queue depth = %d, want 1", n)
	}

	record, err := p.Resolve(ctx, "LN-WF00002", audit.DecisionDeclined, "insufficient collateral")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if record.Disposition != engine.DispositionAutoDecline {
		t.Errorf("final disposition = %s, want AUTO_DECLINE", record.Disposition)
	}
	if record.HumanOverride == nil {
		t.Fatal("expected override block")
	}
	if record.HumanOverride.OriginalDisposition != engine.DispositionReview {
		t.Errorf("original disposition = %s", record.HumanOverride.OriginalDisposition)
	}
	if record.HumanOverride.Justification != "insufficient collateral" {
		t.Errorf("justification = %q", record.HumanOverride.Justification)
	}

	if n, _ := queue.Len(ctx); n != 0 {
		t.Errorf("queue depth after resolve = %d, want 0", n)
	}

	records := waitForRecords(t, store, 1)
	if records[0].ApplicationID != "LN-WF00002" {
		t.Errorf("recorded application_id = %s", records[0].ApplicationID)
	}
}

func TestPipeline_BlankJustificationGetsPlaceholder(t *testing.T) {
	p, _, _ := testPipeline(t)
	ctx := context.Background()

	app := healthyApplication("LN-WF00003")
	app.Revenue = 20000

	if _, err := p.Submit(ctx, app); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	record, err := p.Resolve(ctx, "LN-WF00003", audit.DecisionApproved, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if record.HumanOverride.Justification != DefaultJustification {
		t.Errorf("justification = %q, want %q", record.HumanOverride.Justification, DefaultJustification)
	}
}

func TestPipeline_ResolveRejectsInvalidDecision(t *testing.T) {
	p, queue, _ := testPipeline(t)
	ctx := context.Background()

	app := healthyApplication("LN-WF00004")
	app.Revenue = 20000
	if _, err := p.Submit(ctx, app); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	_, err := p.Resolve(ctx, "LN-WF00004", audit.HumanDecision("MAYBE"), "hmm")
	var invalid *review.InvalidDecisionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidDecisionError, got %v", err)
	}

	// the entry must remain pending
	if n, _ := queue.Len(ctx); n != 1 {
		t.Errorf("queue depth = %d, want 1", n)
	}
}

func TestPipeline_ResolveUnknownApplication(t *testing.T) {
	p, _, _ := testPipeline(t)

	_, err := p.Resolve(context.Background(), "LN-MISSING", audit.DecisionApproved, "x")
	var notFound *review.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestPipeline_InvalidApplicationRoutesNowhere(t *testing.T) {
	p, queue, store := testPipeline(t)
	ctx := context.Background()

	app := healthyApplication("LN-WF00005")
	app.RequestedAmount = 0

	_, err := p.Submit(ctx, app)
	var invalid *engine.InvalidApplicationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidApplicationError, got %v", err)
	}

	if n, _ := queue.Len(ctx); n != 0 {
		t.Errorf("queue depth = %d, want 0", n)
	}
	time.Sleep(20 * time.Millisecond)
	count, _ := store.Count(ctx, &audit.Query{})
	if count != 0 {
		t.Errorf("audit records = %d, want 0", count)
	}
}

func TestPipeline_PendingListsQueuedApplications(t *testing.T) {
	p, _, _ := testPipeline(t)
	ctx := context.Background()

	for _, id := range []string{"LN-WF00006", "LN-WF00007"} {
		app := healthyApplication(id)
		app.Revenue = 20000
		if _, err := p.Submit(ctx, app); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	entries, err := p.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 pending entries, got %d", len(entries))
	}
	if entries[0].Application.ID != "LN-WF00006" {
		t.Errorf("entries not oldest first: %s", entries[0].Application.ID)
	}
}

func TestPipeline_CounterfactualUsesSubmitTimeGovernance(t *testing.T) {
	eng := engine.New(
		&fixedEstimator{result: &engine.RiskResult{ProbabilityOfDefault: 0.1, Level: engine.RiskLow}},
		&fixedAnalyzer{result: &engine.ContentResult{Sentiment: engine.SentimentPositive, Summary: "clean"}},
	)
	queue := review.NewMemoryQueue()
	store := storage.NewMemoryStorage()
	rec := recorder.New(store, config.RecorderConfig{
		Buffer:       16,
		WriteTimeout: time.Second,
		RetryInitial: time.Millisecond,
		RetryMax:     5 * time.Millisecond,
	})
	t.Cleanup(func() {
		rec.Close()
		store.Close()
	})

	gov := testGovernance()
	p := NewPipeline(eng, queue, rec, func() config.GovernanceConfig { return gov })
	ctx := context.Background()

	// Low revenue fails the policy checklist, so the application defers
	// despite clean signals. Under the governance in force at submission the
	// counterfactual is an approval.
	app := healthyApplication("LN-WF00005")
	app.Revenue = 20000
	app.RequestedAmount = 10000
	result, err := p.Submit(ctx, app)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Disposition != engine.DispositionReview {
		t.Fatalf("disposition = %s, want HITL_REVIEW", result.Disposition)
	}

	// Tighten the loan cap below the requested amount before the reviewer
	// acts. The counterfactual must still reflect the rules the evaluation
	// ran under, so an approval agrees with it and triggers no feedback.
	gov.MaxLoanAmount = 5000

	record, err := p.Resolve(ctx, "LN-WF00005", audit.DecisionApproved, "fits the book")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if record.FeedbackLoop == nil {
		t.Fatal("expected feedback block")
	}
	if record.FeedbackLoop.Triggered {
		t.Error("governance reload after enqueue must not flip the feedback marker")
	}
}
