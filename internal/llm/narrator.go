package llm

import (
	"context"
	"log"
	"strings"

	"github.com/advisorhq/portfolio-advisor/internal/portfolio"
)

const narratorSystemPrompt = `You are a friendly portfolio advisor narrating an
analysis for an individual investor. Rewrite the provided step results as
short, plain-English commentary. Do not invent numbers; use only the figures
given. Keep it under 120 words.`

// Narrator turns raw step results into conversational commentary.
type Narrator struct {
	completer Completer
}

// NewNarrator builds a narrator over a completion backend.
func NewNarrator(completer Completer) *Narrator {
	return &Narrator{completer: completer}
}

// Narrate rewrites a step result conversationally. When the completion
// backend fails, the fallback text is returned so the stream never stalls on
// a narration problem.
func (n *Narrator) Narrate(ctx context.Context, stepResult, fallback string) string {
	text, err := n.completer.Complete(ctx, narratorSystemPrompt, stepResult)
	if err != nil {
		log.Printf("narration failed, using fallback text: %v", err)
		return fallback
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	return text
}

// ExplainRecommendations builds the plain-English rationale for a set of
// recommendations from the investor's questionnaire answers. It needs no
// model call, which also makes it the narration fallback for the
// explainability step.
func ExplainRecommendations(riskTolerance, investmentGoal string) string {
	riskLevel := portfolio.ParseRiskLevel(riskTolerance)

	var explanations []string

	switch {
	case riskLevel <= 2:
		explanations = append(explanations, "Given your conservative risk profile, I'm recommending a higher bond allocation to preserve capital while providing steady income.")
	case riskLevel >= 4:
		explanations = append(explanations, "With your aggressive risk tolerance, I'm suggesting higher equity exposure to maximize long-term growth potential.")
	default:
		explanations = append(explanations, "For your moderate risk profile, I'm balancing growth and stability with a diversified allocation.")
	}

	goal := strings.ToLower(investmentGoal)
	switch {
	case strings.Contains(goal, "growth"):
		explanations = append(explanations, "Since growth is your primary goal, I'm tilting toward equities while maintaining appropriate diversification.")
	case strings.Contains(goal, "income"):
		explanations = append(explanations, "To support your income goal, I'm increasing fixed-income allocations that provide regular distributions.")
	case strings.Contains(goal, "preservation"):
		explanations = append(explanations, "For capital preservation, I'm emphasizing lower-volatility assets while maintaining some growth exposure.")
	}

	explanations = append(explanations, "The rebalancing will help maintain your target risk level and optimize expected returns within your comfort zone.")

	var b strings.Builder
	b.WriteString("Why These Recommendations Make Sense:\n")
	for _, line := range explanations {
		b.WriteString("\n- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\nThis strategy aligns with your stated preferences while following modern portfolio theory principles.")
	return b.String()
}
