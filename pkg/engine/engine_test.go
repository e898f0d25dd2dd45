package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubEstimator returns a fixed risk result or error.
type stubEstimator struct {
	result RiskResult
	err    error
	delay  time.Duration
}

func (s *stubEstimator) Estimate(ctx context.Context, app *LoanApplication) (*RiskResult, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	result := s.result
	return &result, nil
}

// stubAnalyzer returns a fixed content result or error.
type stubAnalyzer struct {
	result ContentResult
	err    error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, app *LoanApplication) (*ContentResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := s.result
	return &result, nil
}

func TestEvaluate_AutoApprove(t *testing.T) {
	eng := New(
		&stubEstimator{result: lowRisk()},
		&stubAnalyzer{result: cleanContent()},
	)

	result, err := eng.Evaluate(context.Background(), validApplication(), testGovernance())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if result.Disposition != DispositionAutoApprove {
		t.Errorf("expected AUTO_APPROVE, got %s", result.Disposition)
	}
	if result.ApplicationID != "LN-TEST0001" {
		t.Errorf("expected application id on result, got %q", result.ApplicationID)
	}
	if result.EvaluatedAt.IsZero() {
		t.Error("expected EvaluatedAt to be set")
	}
	if !result.Policy.Passed {
		t.Error("expected policy to pass")
	}
}

func TestEvaluate_InvalidApplication(t *testing.T) {
	eng := New(
		&stubEstimator{result: lowRisk()},
		&stubAnalyzer{result: cleanContent()},
	)

	app := validApplication()
	app.BusinessName = ""
	app.CreditScore = 0

	_, err := eng.Evaluate(context.Background(), app, testGovernance())
	var invalid *InvalidApplicationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidApplicationError, got %v", err)
	}
	if len(invalid.Fields) != 2 {
		t.Errorf("expected 2 bad fields, got %v", invalid.Fields)
	}
}

func TestEvaluate_RiskEstimatorFailure(t *testing.T) {
	eng := New(
		&stubEstimator{err: errors.New("scoring service down")},
		&stubAnalyzer{result: cleanContent()},
	)

	result, err := eng.Evaluate(context.Background(), validApplication(), testGovernance())
	if result != nil {
		t.Fatal("expected no result on signal failure")
	}

	var unavailable *SignalUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected SignalUnavailableError, got %v", err)
	}
	if unavailable.Signal != SignalRisk {
		t.Errorf("expected signal %q, got %q", SignalRisk, unavailable.Signal)
	}
}

func TestEvaluate_ContentAnalyzerFailure(t *testing.T) {
	eng := New(
		&stubEstimator{result: lowRisk()},
		&stubAnalyzer{err: errors.New("analyzer down")},
	)

	_, err := eng.Evaluate(context.Background(), validApplication(), testGovernance())
	var unavailable *SignalUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected SignalUnavailableError, got %v", err)
	}
	if unavailable.Signal != SignalContent {
		t.Errorf("expected signal %q, got %q", SignalContent, unavailable.Signal)
	}
}

func TestEvaluate_SignalTimeout(t *testing.T) {
	eng := New(
		&stubEstimator{result: lowRisk(), delay: 500 * time.Millisecond},
		&stubAnalyzer{result: cleanContent()},
		WithSignalTimeout(20*time.Millisecond),
	)

	_, err := eng.Evaluate(context.Background(), validApplication(), testGovernance())
	var unavailable *SignalUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected SignalUnavailableError on timeout, got %v", err)
	}
}

func TestEvaluate_FailedEvaluationDistinctFromReview(t *testing.T) {
	// A deferral is a completed evaluation; a signal failure is not. The
	// two must never be conflated.
	deferred := New(
		&stubEstimator{result: RiskResult{Level: RiskHigh}},
		&stubAnalyzer{result: cleanContent()},
	)
	result, err := deferred.Evaluate(context.Background(), validApplication(), testGovernance())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if result.Disposition != DispositionReview {
		t.Fatalf("expected HITL_REVIEW, got %s", result.Disposition)
	}

	failed := New(
		&stubEstimator{err: errors.New("down")},
		&stubAnalyzer{result: cleanContent()},
	)
	result, err = failed.Evaluate(context.Background(), validApplication(), testGovernance())
	if err == nil || result != nil {
		t.Fatal("expected error and nil result on signal failure")
	}
}

func TestValidateApplication(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*LoanApplication)
		wantBad  []string
		wantPass bool
	}{
		{"valid", func(*LoanApplication) {}, nil, true},
		{"missing id", func(a *LoanApplication) { a.ID = "" }, []string{"id"}, false},
		{"negative revenue", func(a *LoanApplication) { a.Revenue = -1 }, []string{"revenue"}, false},
		{"zero amount", func(a *LoanApplication) { a.RequestedAmount = 0 }, []string{"requested_amount"}, false},
		{"unknown industry", func(a *LoanApplication) { a.Industry = "Crypto" }, []string{"industry"}, false},
		{"zero submit time", func(a *LoanApplication) { a.SubmittedAt = time.Time{} }, []string{"submitted_at"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := validApplication()
			tt.mutate(app)

			err := ValidateApplication(app)
			if tt.wantPass {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}

			var invalid *InvalidApplicationError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidApplicationError, got %v", err)
			}
			if len(invalid.Fields) != len(tt.wantBad) {
				t.Fatalf("expected fields %v, got %v", tt.wantBad, invalid.Fields)
			}
			for i, field := range tt.wantBad {
				if invalid.Fields[i] != field {
					t.Errorf("field %d: expected %q, got %q", i, field, invalid.Fields[i])
				}
			}
		})
	}
}

func TestValidateApplication_NilApplication(t *testing.T) {
	err := ValidateApplication(nil)
	var invalid *InvalidApplicationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidApplicationError, got %v", err)
	}
}
