package engine

import (
	"strings"
	"testing"
	"time"

	"nexus-hq/arbiter/pkg/config"
)

func testGovernance() config.GovernanceConfig {
	return config.GovernanceConfig{
		MinCreditScore:         600,
		MaxLoanAmount:          50000,
		AIConfidenceThreshold:  80,
		StrictIndustryChecking: true,
		RestrictedIndustries:   []string{"Gambling"},
	}
}

func validApplication() *LoanApplication {
	return &LoanApplication{
		ID:              "LN-TEST0001",
		BusinessName:    "Alpha Solutions",
		ApplicantName:   "Jane Smith",
		Revenue:         80000,
		RequestedAmount: 10000,
		CreditScore:     720,
		Industry:        IndustryTechnology,
		Description:     "expansion",
		SubmittedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEvaluatePolicy_AllRulesPass(t *testing.T) {
	result := EvaluatePolicy(validApplication(), testGovernance())

	if !result.Passed {
		t.Fatalf("expected policy to pass, reasons: %v", result.Reasons)
	}
	if len(result.Checklist) != 3 {
		t.Fatalf("expected 3 checklist entries, got %d", len(result.Checklist))
	}
	for _, check := range result.Checklist {
		if !check.Passed {
			t.Errorf("expected rule %q to pass", check.Rule)
		}
	}
	if len(result.Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", result.Reasons)
	}
}

func TestEvaluatePolicy_RevenueBelowFloor(t *testing.T) {
	app := validApplication()
	app.Revenue = 20000

	result := EvaluatePolicy(app, testGovernance())

	if result.Passed {
		t.Fatal("expected policy to fail")
	}
	if result.Checklist[0].Passed {
		t.Error("expected revenue rule to fail")
	}
	if !result.Checklist[1].Passed || !result.Checklist[2].Passed {
		t.Error("expected credit and industry rules to pass")
	}
	if len(result.Reasons) != 1 {
		t.Fatalf("expected 1 reason, got %v", result.Reasons)
	}
}

func TestEvaluatePolicy_RestrictedIndustry(t *testing.T) {
	app := validApplication()
	app.Industry = IndustryGambling

	result := EvaluatePolicy(app, testGovernance())

	if result.Passed {
		t.Fatal("expected policy to fail")
	}
	if !result.Checklist[0].Passed {
		t.Error("expected revenue rule to pass")
	}
	if !result.Checklist[1].Passed {
		t.Error("expected credit rule to pass")
	}
	if result.Checklist[2].Passed {
		t.Error("expected industry rule to fail")
	}
}

func TestEvaluatePolicy_StrictCheckingDisabled(t *testing.T) {
	app := validApplication()
	app.Industry = IndustryGambling

	gov := testGovernance()
	gov.StrictIndustryChecking = false

	result := EvaluatePolicy(app, gov)

	if !result.Passed {
		t.Fatalf("expected policy to pass with strict checking off, reasons: %v", result.Reasons)
	}
}

func TestEvaluatePolicy_CreditScoreBoundary(t *testing.T) {
	tests := []struct {
		name       string
		score      int
		wantPassed bool
	}{
		{"exactly at minimum", 600, true},
		{"one above minimum", 601, true},
		{"one below minimum", 599, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := validApplication()
			app.CreditScore = tt.score

			result := EvaluatePolicy(app, testGovernance())
			if result.Passed != tt.wantPassed {
				t.Errorf("score %d: passed = %v, want %v", tt.score, result.Passed, tt.wantPassed)
			}
		})
	}
}

func TestEvaluatePolicy_ChecklistOrderStable(t *testing.T) {
	pass := EvaluatePolicy(validApplication(), testGovernance())

	failing := validApplication()
	failing.Revenue = 0
	failing.CreditScore = 300
	failing.Industry = IndustryGambling
	fail := EvaluatePolicy(failing, testGovernance())

	if len(pass.Checklist) != len(fail.Checklist) {
		t.Fatalf("checklist length differs: %d vs %d", len(pass.Checklist), len(fail.Checklist))
	}
	for i := range pass.Checklist {
		if pass.Checklist[i].Rule != fail.Checklist[i].Rule {
			t.Errorf("rule %d differs: %q vs %q", i, pass.Checklist[i].Rule, fail.Checklist[i].Rule)
		}
	}
	if !strings.Contains(pass.Checklist[0].Rule, "Revenue") {
		t.Errorf("expected revenue rule first, got %q", pass.Checklist[0].Rule)
	}
	if !strings.Contains(pass.Checklist[1].Rule, "Credit Score") {
		t.Errorf("expected credit rule second, got %q", pass.Checklist[1].Rule)
	}
}

func TestEvaluatePolicy_ConfiguredMinimumInRuleName(t *testing.T) {
	gov := testGovernance()
	gov.MinCreditScore = 650

	result := EvaluatePolicy(validApplication(), gov)
	if !strings.Contains(result.Checklist[1].Rule, "650") {
		t.Errorf("expected rule name to embed configured minimum, got %q", result.Checklist[1].Rule)
	}
}
