// Package risk provides the reference risk estimator.
//
// The heuristic estimator stands in for a real scoring service: it derives
// a probability of default from the credit score with sampled noise, so
// repeated estimates of the same application are not idempotent. The audit
// log captures the estimate alongside the decision instead of re-deriving
// it. A production deployment substitutes a real model behind the
// engine.RiskEstimator interface without touching arbitration logic.
package risk

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"

	"nexus-hq/arbiter/pkg/engine"
)

// HeuristicEstimator implements engine.RiskEstimator with a credit-score
// driven heuristic. It is safe for concurrent use.
type HeuristicEstimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristicEstimator creates an estimator seeded from seed. A zero seed
// produces a randomly seeded estimator.
func NewHeuristicEstimator(seed int64) *HeuristicEstimator {
	src := rand.NewSource(seed)
	if seed == 0 {
		src = rand.NewSource(rand.Int63())
	}
	return &HeuristicEstimator{rng: rand.New(src)}
}

// Estimate derives a risk estimate for the application. Lower credit
// scores generally produce higher default probabilities; Technology and
// Manufacturing applicants receive a sector adjustment.
func (h *HeuristicEstimator) Estimate(ctx context.Context, app *engine.LoanApplication) (*engine.RiskResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	noise := h.rng.Float64()*0.2 - 0.1
	debtRatio := h.rng.Float64()*0.2 - 0.1
	h.mu.Unlock()

	pd := float64(850-app.CreditScore)/850 + noise
	if app.Industry == engine.IndustryTechnology || app.Industry == engine.IndustryManufacturing {
		pd -= 0.1
	}
	pd = clamp(pd, 0, 1)

	factors := []engine.FactorImpact{
		{Feature: "Credit History", Impact: impactFor(app.CreditScore > 700, -0.25, 0.3)},
		{Feature: "Revenue Stability", Impact: impactFor(app.Revenue > 200000, -0.15, 0.05)},
		{Feature: "Sector Risk", Impact: sectorImpact(app.Industry)},
		{Feature: "Debt Ratio", Impact: debtRatio},
	}
	SortByImpact(factors)

	return &engine.RiskResult{
		Score:                int((1 - pd) * 100),
		ProbabilityOfDefault: math.Round(pd*1000) / 1000,
		Level:                engine.LevelForProbability(pd),
		ShapValues:           factors,
	}, nil
}

// SortByImpact orders an explainability vector by descending absolute
// impact, the ordering contract every estimator must satisfy.
func SortByImpact(factors []engine.FactorImpact) {
	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].Impact) > math.Abs(factors[j].Impact)
	})
}

func sectorImpact(industry engine.Industry) float64 {
	if industry == engine.IndustryRetail || industry == engine.IndustryHospitality {
		return 0.1
	}
	return -0.05
}

func impactFor(cond bool, yes, no float64) float64 {
	if cond {
		return yes
	}
	return no
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
