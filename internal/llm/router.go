package llm

import (
	"context"
	"encoding/json"
	"log"
)

// Intent is a routed user request category.
type Intent string

// The intents the router can produce.
const (
	IntentFetchData    Intent = "fetch_data"
	IntentAnalyzeDrift Intent = "analyze_drift"
	IntentOptimize     Intent = "optimize_portfolio"
	IntentExplain      Intent = "explain_recommendations"
	IntentFullAnalysis Intent = "full_analysis"
	IntentClarify      Intent = "clarify"
)

var knownIntents = map[Intent]bool{
	IntentFetchData:    true,
	IntentAnalyzeDrift: true,
	IntentOptimize:     true,
	IntentExplain:      true,
	IntentFullAnalysis: true,
	IntentClarify:      true,
}

const routerSystemPrompt = `You are an intent classifier for a portfolio advisor.
Classify the user's request into one or more of these intents:
- fetch_data: the user wants current prices or portfolio values
- analyze_drift: the user wants to compare their allocation against targets
- optimize_portfolio: the user wants rebalancing recommendations
- explain_recommendations: the user wants the reasoning behind recommendations
- full_analysis: the user wants the complete analysis workflow
- clarify: the request does not match any of the above

Respond with ONLY a JSON object. Use {"intents": ["intent1", "intent2"]} when
the request names several actions in order, or {"intent": "intent1"} for a
single action.`

// Router classifies free-text chat messages into advisor intents.
type Router struct {
	completer Completer
}

// NewRouter builds a router over a completion backend.
func NewRouter(completer Completer) *Router {
	return &Router{completer: completer}
}

// routerResponse accepts both shapes the classifier is known to emit.
type routerResponse struct {
	Intent  string   `json:"intent"`
	Intents []string `json:"intents"`
}

// Route classifies a user message. It always returns at least one intent:
// any classification failure, unknown label, or malformed response collapses
// to clarify rather than guessing at an action.
func (r *Router) Route(ctx context.Context, userMessage string) []Intent {
	raw, err := r.completer.Complete(ctx, routerSystemPrompt,
		`Classify this user request: "`+userMessage+`". Return ONLY a JSON object.`)
	if err != nil {
		log.Printf("intent routing failed, defaulting to clarify: %v", err)
		return []Intent{IntentClarify}
	}

	return parseIntents(raw)
}

func parseIntents(raw string) []Intent {
	jsonText := ExtractJSON(StripCodeFences(raw))
	if jsonText == "" {
		return []Intent{IntentClarify}
	}

	var resp routerResponse
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		return []Intent{IntentClarify}
	}

	labels := resp.Intents
	if len(labels) == 0 && resp.Intent != "" {
		labels = []string{resp.Intent}
	}

	intents := make([]Intent, 0, len(labels))
	seen := make(map[Intent]bool)
	for _, label := range labels {
		intent := Intent(label)
		if !knownIntents[intent] || intent == IntentClarify || seen[intent] {
			continue
		}
		seen[intent] = true
		intents = append(intents, intent)
	}

	if len(intents) == 0 {
		return []Intent{IntentClarify}
	}

	// A full analysis covers everything else that was asked for.
	if seen[IntentFullAnalysis] {
		return []Intent{IntentFullAnalysis}
	}

	return intents
}
