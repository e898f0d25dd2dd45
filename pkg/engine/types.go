package engine

import (
	"context"
	"time"
)

// Industry categorizes the applicant's business sector.
type Industry string

const (
	IndustryRetail        Industry = "Retail"
	IndustryTechnology    Industry = "Technology"
	IndustryManufacturing Industry = "Manufacturing"
	IndustryHospitality   Industry = "Hospitality"
	IndustryGambling      Industry = "Gambling"
	IndustryConstruction  Industry = "Construction"
	IndustryLogistics     Industry = "Logistics"
)

// Industries lists every recognized industry category.
var Industries = []Industry{
	IndustryRetail,
	IndustryTechnology,
	IndustryManufacturing,
	IndustryHospitality,
	IndustryGambling,
	IndustryConstruction,
	IndustryLogistics,
}

// Valid reports whether the industry is one of the recognized categories.
func (i Industry) Valid() bool {
	for _, known := range Industries {
		if i == known {
			return true
		}
	}
	return false
}

// Disposition is the three-valued outcome of arbitration.
type Disposition string

const (
	// DispositionAutoApprove approves the application without human
	// involvement.
	DispositionAutoApprove Disposition = "AUTO_APPROVE"

	// DispositionAutoDecline is a binding decline. Arbitration never
	// produces it directly; it is reachable only through human
	// resolution of a queued review entry.
	DispositionAutoDecline Disposition = "AUTO_DECLINE"

	// DispositionReview defers the application to a human reviewer.
	DispositionReview Disposition = "HITL_REVIEW"
)

// LoanApplication is a single loan request. Applications are immutable once
// created; the engine never mutates them and the audit log stores a full
// snapshot alongside each decision.
type LoanApplication struct {
	// ID uniquely identifies the application (e.g., "LN-4F2A91C3").
	ID string `json:"id"`

	// BusinessName is the applying business.
	BusinessName string `json:"business_name"`

	// ApplicantName is the person submitting on behalf of the business.
	ApplicantName string `json:"applicant_name"`

	// Revenue is the declared annual revenue in whole currency units.
	Revenue int64 `json:"revenue"`

	// RequestedAmount is the requested loan amount in whole currency units.
	RequestedAmount int64 `json:"requested_amount"`

	// CreditScore is the applicant credit score. Domain convention bounds
	// it to [300, 850] but the engine does not enforce the range.
	CreditScore int `json:"credit_score"`

	// Industry is the business sector category.
	Industry Industry `json:"industry"`

	// Description is the free-text purpose of the loan, inspected by the
	// content analyzer.
	Description string `json:"description"`

	// SubmittedAt is when the application was created.
	SubmittedAt time.Time `json:"submitted_at"`
}

// RuleCheck is a single entry in the policy checklist.
type RuleCheck struct {
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
}

// PolicyResult is the output of the deterministic policy evaluator.
// Checklist entries appear in a fixed order regardless of pass/fail so the
// audit trail is reproducible and diffable across evaluations.
type PolicyResult struct {
	Passed    bool        `json:"passed"`
	Checklist []RuleCheck `json:"checklist"`
	Reasons   []string    `json:"reasons"`
}

// RiskLevel categorizes the probability of default.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// LevelForProbability derives the categorical risk level from a probability
// of default: below 0.2 is Low, above 0.6 is High, otherwise Medium.
func LevelForProbability(pd float64) RiskLevel {
	switch {
	case pd < 0.2:
		return RiskLow
	case pd > 0.6:
		return RiskHigh
	default:
		return RiskMedium
	}
}

// FactorImpact is one entry of the explainability vector: a named feature
// with its signed contribution to the risk score.
type FactorImpact struct {
	Feature string  `json:"feature"`
	Impact  float64 `json:"impact"`
}

// RiskResult is the output of a risk estimator.
type RiskResult struct {
	// Score is the inverse-risk score in [0, 100]; higher is safer.
	Score int `json:"score"`

	// ProbabilityOfDefault is the estimated default probability in [0, 1].
	ProbabilityOfDefault float64 `json:"probability_of_default"`

	// Level is the categorical risk level derived from the probability.
	Level RiskLevel `json:"level"`

	// ShapValues is the explainability vector, sorted by descending
	// absolute impact. Every estimator implementation must preserve this
	// ordering.
	ShapValues []FactorImpact `json:"shap_values"`
}

// Sentiment categorizes the tone of the application description.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// ContentResult is the output of a content analyzer.
type ContentResult struct {
	// Summary is a free-text summary of the application.
	Summary string `json:"summary"`

	// Flags lists semantic risk flags found in the description. Empty
	// means the description is clean.
	Flags []string `json:"flags"`

	// Sentiment is Positive exactly when Flags is empty.
	Sentiment Sentiment `json:"sentiment"`

	// Reasoning explains the analyzer's conclusion.
	Reasoning string `json:"reasoning"`
}

// EngineResult is the immutable outcome of one arbitration call. Exactly
// one EngineResult is produced per evaluated application.
type EngineResult struct {
	ApplicationID string        `json:"application_id"`
	Policy        PolicyResult  `json:"policy"`
	Risk          RiskResult    `json:"risk"`
	Content       ContentResult `json:"content"`
	Disposition   Disposition   `json:"disposition"`
	EvaluatedAt   time.Time     `json:"evaluated_at"`
}

// RiskEstimator produces a risk estimate for an application. Implementations
// may be non-deterministic or backed by an external scoring service; callers
// must not assume idempotence across repeated estimates of the same
// application. Implementations must sort the explainability vector by
// descending absolute impact.
type RiskEstimator interface {
	Estimate(ctx context.Context, app *LoanApplication) (*RiskResult, error)
}

// ContentAnalyzer inspects the free-text application fields for semantic
// risk flags and sentiment. Implementations may be backed by an external
// classification service that can fail or time out.
type ContentAnalyzer interface {
	Analyze(ctx context.Context, app *LoanApplication) (*ContentResult, error)
}
