// Package content provides the reference content analyzer.
//
// The keyword analyzer stands in for a real NLP classifier: it is pure over
// the description text and flags a small set of distress markers. A
// production deployment substitutes a classification service behind the
// engine.ContentAnalyzer interface; such a service may fail or time out,
// which the engine surfaces as SignalUnavailable rather than substituting
// defaults.
package content

import (
	"context"
	"fmt"
	"strings"

	"nexus-hq/arbiter/pkg/engine"
)

// flagRule maps description keywords to a semantic risk flag.
type flagRule struct {
	keywords []string
	flag     string
}

// flagRules are checked in order; each contributes at most one flag.
var flagRules = []flagRule{
	{keywords: []string{"debt", "refinance"}, flag: "Refinancing existing debt"},
	{keywords: []string{"urgent"}, flag: "Urgency detected - potential cash flow distress"},
	{keywords: []string{"gamble", "casino"}, flag: "High risk keyword detected in description"},
}

// KeywordAnalyzer implements engine.ContentAnalyzer with keyword matching
// over the application description. It is stateless and safe for
// concurrent use.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer creates a keyword analyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

// Analyze inspects the application description for distress markers.
// Sentiment is Positive exactly when no flags are raised.
func (a *KeywordAnalyzer) Analyze(ctx context.Context, app *engine.LoanApplication) (*engine.ContentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.ToLower(app.Description)

	var flags []string
	for _, rule := range flagRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				flags = append(flags, rule.flag)
				break
			}
		}
	}

	sentiment := engine.SentimentPositive
	reasoning := "Applicant demonstrates clear growth intent (expansion/assets) with no linguistic markers of financial distress."
	if len(flags) > 0 {
		sentiment = engine.SentimentNeutral
		reasoning = fmt.Sprintf("Detected caution markers related to: %s. Context suggests defensive capital usage.",
			strings.Join(flags, ", "))
	}

	return &engine.ContentResult{
		Summary: fmt.Sprintf("Applicant %s (%s) seeks $%d for: %q.",
			app.BusinessName, app.Industry, app.RequestedAmount, app.Description),
		Flags:     flags,
		Sentiment: sentiment,
		Reasoning: reasoning,
	}, nil
}
