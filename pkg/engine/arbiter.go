package engine

import "nexus-hq/arbiter/pkg/config"

// Decide combines the three signals into a final disposition using a fixed
// precedence, first match wins:
//
//  1. Policy failure defers to a human (HITL_REVIEW) rather than declining
//     automatically, so a person sees full context before any binding
//     decline.
//  2. Low risk, no content flags, and a requested amount within the
//     auto-approval ceiling approves automatically.
//  3. Everything else defers to a human.
//
// Decide never returns AUTO_DECLINE: the autopilot can say yes or "ask a
// human", never an automatic no. That disposition is reachable only through
// human resolution of a queued entry.
func Decide(policy PolicyResult, risk RiskResult, content ContentResult, app *LoanApplication, gov config.GovernanceConfig) Disposition {
	if !policy.Passed {
		return DispositionReview
	}
	if risk.Level == RiskLow && len(content.Flags) == 0 && app.RequestedAmount <= gov.MaxLoanAmount {
		return DispositionAutoApprove
	}
	return DispositionReview
}

// Counterfactual returns the disposition arbitration would have produced on
// the stored signals had the policy checklist passed. The review queue uses
// it at resolution time to detect human disagreement with the engine: if
// the reviewer's decision diverges from this answer, the resolution is
// tagged for the feedback/retraining pipeline.
func Counterfactual(risk RiskResult, content ContentResult, app *LoanApplication, gov config.GovernanceConfig) Disposition {
	if risk.Level == RiskLow && len(content.Flags) == 0 && app.RequestedAmount <= gov.MaxLoanAmount {
		return DispositionAutoApprove
	}
	return DispositionReview
}
