package engine

import (
	"fmt"

	"nexus-hq/arbiter/pkg/config"
)

// MinAnnualRevenue is the fixed revenue floor in whole currency units.
// Unlike the credit-score floor it is not operator-configurable.
const MinAnnualRevenue int64 = 50000

// policyRule is a single deterministic checklist rule. Rules are evaluated
// in declaration order and every rule emits a checklist entry whether it
// passes or fails.
type policyRule struct {
	// name renders the checklist label; it may embed config values.
	name func(gov config.GovernanceConfig) string

	// check returns pass/fail and, on failure, a human-readable reason.
	check func(app *LoanApplication, gov config.GovernanceConfig) (bool, string)
}

// policyRules is the fixed rule set, in checklist order: revenue floor,
// credit-score floor, restricted-industry check. Adding a rule means
// appending here; order is part of the audit contract.
var policyRules = []policyRule{
	{
		name: func(config.GovernanceConfig) string {
			return fmt.Sprintf("Min Revenue > $%dk", MinAnnualRevenue/1000)
		},
		check: func(app *LoanApplication, _ config.GovernanceConfig) (bool, string) {
			if app.Revenue >= MinAnnualRevenue {
				return true, ""
			}
			return false, fmt.Sprintf("Annual Revenue below minimum threshold ($%dk)", MinAnnualRevenue/1000)
		},
	},
	{
		name: func(gov config.GovernanceConfig) string {
			return fmt.Sprintf("Credit Score > %d", gov.MinCreditScore)
		},
		check: func(app *LoanApplication, gov config.GovernanceConfig) (bool, string) {
			if app.CreditScore >= gov.MinCreditScore {
				return true, ""
			}
			return false, fmt.Sprintf("Credit Score (%d) below policy minimum", app.CreditScore)
		},
	},
	{
		name: func(config.GovernanceConfig) string {
			return "Restricted Industry Check"
		},
		check: func(app *LoanApplication, gov config.GovernanceConfig) (bool, string) {
			if !gov.StrictIndustryChecking {
				return true, ""
			}
			for _, restricted := range gov.RestrictedIndustries {
				if string(app.Industry) == restricted {
					return false, fmt.Sprintf("Industry %q is restricted", app.Industry)
				}
			}
			return true, ""
		},
	},
}

// EvaluatePolicy applies the deterministic policy checklist to an
// application against a governance snapshot. It is pure and total: any
// input produces a result, and the checklist order is identical across
// evaluations.
func EvaluatePolicy(app *LoanApplication, gov config.GovernanceConfig) PolicyResult {
	result := PolicyResult{
		Checklist: make([]RuleCheck, 0, len(policyRules)),
	}

	for _, rule := range policyRules {
		passed, reason := rule.check(app, gov)
		result.Checklist = append(result.Checklist, RuleCheck{
			Rule:   rule.name(gov),
			Passed: passed,
		})
		if !passed {
			result.Reasons = append(result.Reasons, reason)
		}
	}

	result.Passed = len(result.Reasons) == 0
	return result
}
