package advisor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/advisorhq/portfolio-advisor/internal/config"
	"github.com/advisorhq/portfolio-advisor/internal/llm"
	"github.com/advisorhq/portfolio-advisor/internal/model"
	"github.com/advisorhq/portfolio-advisor/internal/pricing"
	"github.com/advisorhq/portfolio-advisor/internal/service"
	"github.com/advisorhq/portfolio-advisor/internal/testutil"
)

// captureEmitter records every emitted event.
type captureEmitter struct {
	events []Event
}

func (c *captureEmitter) Emit(event Event) error {
	c.events = append(c.events, event)
	return nil
}

func (c *captureEmitter) byType(eventType EventType) []Event {
	var out []Event
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (c *captureEmitter) agents(eventType EventType) []string {
	var out []string
	for _, e := range c.byType(eventType) {
		out = append(out, e.Agent)
	}
	return out
}

// stubRouter returns a fixed intent list.
type stubRouter struct {
	intents []llm.Intent
}

func (s *stubRouter) Route(_ context.Context, _ string) []llm.Intent {
	return s.intents
}

func testConfig() config.AdvisorConfig {
	return config.AdvisorConfig{PacingDelay: 0, StepTimeout: 5 * time.Second}
}

// newTestOrchestrator seeds a session with a moderate portfolio: $5000 of
// SPY, $3000 self-reported bonds, $2000 self-reported cash.
func newTestOrchestrator(t *testing.T, router IntentRouter) (*Orchestrator, *service.SessionService) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	sessions := testutil.NewTestSessionService(t, db)

	testutil.SeedSession(t, sessions, "session-1", map[string]string{
		"risk_tolerance":  "3 - Moderate",
		"investment_goal": "Long-term growth",
		"time_horizon":    "10+ years",
	}, model.Positions{
		"US Stocks": {{Ticker: "SPY", Amount: 10, Units: model.UnitsShares}},
		"Bonds":     {{Ticker: "", Amount: 3000, Units: model.UnitsUSD}},
		"Cash":      {{Ticker: "", Amount: 2000, Units: model.UnitsUSD}},
	})

	oracle := &testutil.StaticOracle{Prices: pricing.PriceMap{"SPY": 500}}
	return New(sessions, oracle, router, nil, testConfig()), sessions
}

func TestStreamChatFullAnalysis(t *testing.T) {
	o, sessions := newTestOrchestrator(t, &stubRouter{intents: []llm.Intent{llm.IntentFullAnalysis}})

	emitter := &captureEmitter{}
	if err := o.StreamChat(context.Background(), "session-1", "run everything", emitter); err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	wantAgents := []string{AgentDataFetch, AgentAnalysis, AgentOptimization, AgentExplainability}
	gotAgents := emitter.agents(EventAgentStart)
	if len(gotAgents) != len(wantAgents) {
		t.Fatalf("agent_start agents = %v, want %v", gotAgents, wantAgents)
	}
	for i := range wantAgents {
		if gotAgents[i] != wantAgents[i] {
			t.Errorf("step %d agent = %s, want %s", i, gotAgents[i], wantAgents[i])
		}
	}

	responses := emitter.byType(EventAgentResponse)
	if len(responses) != 4 {
		t.Fatalf("agent_response count = %d, want 4", len(responses))
	}

	// Fetch step: 10 shares of SPY at $500 plus $5000 of self-reported value.
	if !strings.Contains(responses[0].Content, "$5000.00") && !strings.Contains(responses[0].Content, "10000.00") {
		t.Errorf("fetch response missing valuation figures:\n%s", responses[0].Content)
	}
	// Analysis step: 50/30/20 vs risk-3 targets drifts 50 points in total.
	if !strings.Contains(responses[1].Content, "Total portfolio drift: 50.0%") {
		t.Errorf("analysis response missing drift total:\n%s", responses[1].Content)
	}
	if !strings.Contains(responses[1].Content, "Rebalancing recommended") {
		t.Errorf("analysis response missing recommendation:\n%s", responses[1].Content)
	}
	// Optimization step: US equity is 10 points overweight.
	if !strings.Contains(responses[2].Content, "Sell 10.0% in US Equity") {
		t.Errorf("optimization response missing trade:\n%s", responses[2].Content)
	}
	// Explainability step falls back to the deterministic text.
	if !strings.Contains(responses[3].Content, "moderate risk profile") {
		t.Errorf("explain response missing risk rationale:\n%s", responses[3].Content)
	}

	last := emitter.events[len(emitter.events)-1]
	if last.Type != EventStreamEnd {
		t.Errorf("last event type = %s, want stream_end", last.Type)
	}

	// The turn is persisted: one user message, one combined agent response.
	messages, err := sessions.GetMessages(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(messages))
	}
	if messages[0].Type != model.MessageTypeUser || messages[1].Type != model.MessageTypeAgent {
		t.Errorf("message types = %s, %s", messages[0].Type, messages[1].Type)
	}
}

func TestStreamChatClarify(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubRouter{intents: []llm.Intent{llm.IntentClarify}})

	emitter := &captureEmitter{}
	if err := o.StreamChat(context.Background(), "session-1", "ummm", emitter); err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	starts := emitter.byType(EventAgentStart)
	if len(starts) != 1 || starts[0].Agent != AgentOrchestrator {
		t.Fatalf("clarify starts = %+v, want one orchestrator event", starts)
	}
	if !strings.Contains(starts[0].Content, "Run a full portfolio analysis") {
		t.Errorf("clarify menu missing suggestions:\n%s", starts[0].Content)
	}
	if len(emitter.byType(EventAgentResponse)) != 0 {
		t.Error("clarify turn should run no steps")
	}
	if emitter.events[len(emitter.events)-1].Type != EventStreamEnd {
		t.Error("stream must end with stream_end")
	}
}

func TestStreamChatImplicitRefresh(t *testing.T) {
	t.Run("drift gets a data refresh first", func(t *testing.T) {
		o, _ := newTestOrchestrator(t, &stubRouter{intents: []llm.Intent{llm.IntentAnalyzeDrift}})

		emitter := &captureEmitter{}
		if err := o.StreamChat(context.Background(), "session-1", "how is my drift", emitter); err != nil {
			t.Fatalf("StreamChat returned error: %v", err)
		}

		agents := emitter.agents(EventAgentStart)
		if len(agents) != 2 || agents[0] != AgentDataFetch || agents[1] != AgentAnalysis {
			t.Errorf("agents = %v, want [data_fetch analysis]", agents)
		}
	})

	t.Run("refresh runs once for drift plus optimize", func(t *testing.T) {
		o, _ := newTestOrchestrator(t, &stubRouter{
			intents: []llm.Intent{llm.IntentAnalyzeDrift, llm.IntentOptimize},
		})

		emitter := &captureEmitter{}
		if err := o.StreamChat(context.Background(), "session-1", "drift then optimize", emitter); err != nil {
			t.Fatalf("StreamChat returned error: %v", err)
		}

		agents := emitter.agents(EventAgentStart)
		want := []string{AgentDataFetch, AgentAnalysis, AgentOptimization}
		if len(agents) != len(want) {
			t.Fatalf("agents = %v, want %v", agents, want)
		}
		for i := range want {
			if agents[i] != want[i] {
				t.Errorf("step %d agent = %s, want %s", i, agents[i], want[i])
			}
		}
	})

	t.Run("explain alone does not refresh", func(t *testing.T) {
		o, _ := newTestOrchestrator(t, &stubRouter{intents: []llm.Intent{llm.IntentExplain}})

		emitter := &captureEmitter{}
		if err := o.StreamChat(context.Background(), "session-1", "why these trades", emitter); err != nil {
			t.Fatalf("StreamChat returned error: %v", err)
		}

		agents := emitter.agents(EventAgentStart)
		if len(agents) != 1 || agents[0] != AgentExplainability {
			t.Errorf("agents = %v, want [explainability]", agents)
		}
	})

	t.Run("explicit fetch counts as the refresh", func(t *testing.T) {
		o, _ := newTestOrchestrator(t, &stubRouter{
			intents: []llm.Intent{llm.IntentFetchData, llm.IntentAnalyzeDrift},
		})

		emitter := &captureEmitter{}
		if err := o.StreamChat(context.Background(), "session-1", "fetch then analyze", emitter); err != nil {
			t.Fatalf("StreamChat returned error: %v", err)
		}

		agents := emitter.agents(EventAgentStart)
		if len(agents) != 2 || agents[0] != AgentDataFetch || agents[1] != AgentAnalysis {
			t.Errorf("agents = %v, want [data_fetch analysis]", agents)
		}
	})
}

func TestStreamChatStepFailureContinues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sessions := testutil.NewTestSessionService(t, db)

	// Questionnaire context only, no positions at all.
	testutil.SeedSession(t, sessions, "session-empty", map[string]string{
		"risk_tolerance":  "2 - Cautious",
		"investment_goal": "income",
		"time_horizon":    "5 years",
	}, nil)

	oracle := &testutil.StaticOracle{Prices: pricing.PriceMap{}}
	o := New(sessions, oracle, &stubRouter{
		intents: []llm.Intent{llm.IntentAnalyzeDrift, llm.IntentExplain},
	}, nil, testConfig())

	emitter := &captureEmitter{}
	if err := o.StreamChat(context.Background(), "session-empty", "analyze then explain", emitter); err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	errs := emitter.byType(EventError)
	if len(errs) != 2 {
		t.Fatalf("error events = %+v, want refresh and analysis failures", errs)
	}
	for _, e := range errs {
		if !strings.Contains(e.Content, "complete the questionnaire") {
			t.Errorf("error content = %q, want missing-data guidance", e.Content)
		}
	}

	// The explain step still ran after the failures.
	responses := emitter.byType(EventAgentResponse)
	if len(responses) != 1 || responses[0].Agent != AgentExplainability {
		t.Fatalf("responses = %+v, want one explainability response", responses)
	}
	if !strings.Contains(responses[0].Content, "conservative risk profile") {
		t.Errorf("explain response missing rationale:\n%s", responses[0].Content)
	}
	if emitter.events[len(emitter.events)-1].Type != EventStreamEnd {
		t.Error("stream must end with stream_end")
	}
}

func TestStreamChatUnpricedTickerAsymmetry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sessions := testutil.NewTestSessionService(t, db)

	testutil.SeedSession(t, sessions, "session-bad", map[string]string{
		"risk_tolerance":  "3",
		"investment_goal": "growth",
		"time_horizon":    "10 years",
	}, model.Positions{
		"US Stocks": {
			{Ticker: "SPY", Amount: 10, Units: model.UnitsShares},
			{Ticker: "ZZZZINVALID", Amount: 5, Units: model.UnitsShares},
		},
	})

	oracle := &testutil.StaticOracle{Prices: pricing.PriceMap{"SPY": 500}}

	t.Run("fetch path errors naming the ticker", func(t *testing.T) {
		o := New(sessions, oracle, &stubRouter{intents: []llm.Intent{llm.IntentFetchData}}, nil, testConfig())

		emitter := &captureEmitter{}
		if err := o.StreamChat(context.Background(), "session-bad", "show my data", emitter); err != nil {
			t.Fatalf("StreamChat returned error: %v", err)
		}

		errs := emitter.byType(EventError)
		if len(errs) != 1 {
			t.Fatalf("error events = %+v, want exactly one", errs)
		}
		if !strings.Contains(errs[0].Content, "ZZZZINVALID") {
			t.Errorf("error content = %q, want offending ticker named", errs[0].Content)
		}
	})

	t.Run("drift path silently skips the ticker", func(t *testing.T) {
		o := New(sessions, oracle, &stubRouter{intents: []llm.Intent{llm.IntentAnalyzeDrift}}, nil, testConfig())

		emitter := &captureEmitter{}
		if err := o.StreamChat(context.Background(), "session-bad", "analyze drift", emitter); err != nil {
			t.Fatalf("StreamChat returned error: %v", err)
		}

		// The implicit refresh step fails on the bad ticker, but the drift
		// analysis itself succeeds on the priced remainder.
		responses := emitter.byType(EventAgentResponse)
		var analysis *Event
		for i := range responses {
			if responses[i].Agent == AgentAnalysis {
				analysis = &responses[i]
			}
		}
		if analysis == nil {
			t.Fatalf("responses = %+v, want an analysis response", responses)
		}
		if !strings.Contains(analysis.Content, "Portfolio Drift Analysis") {
			t.Errorf("analysis content = %q", analysis.Content)
		}
	})
}

func TestStreamChatMissingQuestionnaireContext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sessions := testutil.NewTestSessionService(t, db)

	// Positions but no risk/goal/horizon answers.
	testutil.SeedSession(t, sessions, "session-noctx", map[string]string{}, model.Positions{
		"US Stocks": {{Ticker: "SPY", Amount: 10, Units: model.UnitsShares}},
	})

	oracle := &testutil.StaticOracle{Prices: pricing.PriceMap{"SPY": 500}}
	o := New(sessions, oracle, &stubRouter{intents: []llm.Intent{llm.IntentOptimize}}, nil, testConfig())

	emitter := &captureEmitter{}
	if err := o.StreamChat(context.Background(), "session-noctx", "optimize", emitter); err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	var found bool
	for _, e := range emitter.byType(EventError) {
		if e.Agent == AgentOptimization && strings.Contains(e.Content, "risk tolerance") {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %+v, want optimization context error", emitter.events)
	}
}

func TestStreamChatUnknownSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sessions := testutil.NewTestSessionService(t, db)
	oracle := &testutil.StaticOracle{}

	o := New(sessions, oracle, &stubRouter{intents: []llm.Intent{llm.IntentFetchData}}, nil, testConfig())

	emitter := &captureEmitter{}
	if err := o.StreamChat(context.Background(), "no-such-session", "hello", emitter); err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}

	if len(emitter.events) != 2 {
		t.Fatalf("events = %+v, want error then stream_end", emitter.events)
	}
	if emitter.events[0].Type != EventError || emitter.events[1].Type != EventStreamEnd {
		t.Errorf("event types = %s, %s", emitter.events[0].Type, emitter.events[1].Type)
	}
}

func TestChatKeywordRouting(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		wantContains string
	}{
		{"portfolio data", "show me my portfolio data", "Portfolio Data Retrieved Successfully"},
		{"drift analysis", "run a drift check", "Portfolio Drift Analysis"},
		{"optimization", "optimize my allocation", "Optimized Portfolio Allocation"},
		{"explanation", "explain why", "Why These Recommendations Make Sense"},
		{"full analysis trigger", "begin", "Portfolio Drift Analysis"},
		{"unrecognized", "what's the weather", "I wasn't completely sure what you wanted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := newTestOrchestrator(t, nil)

			reply, err := o.Chat(context.Background(), "session-1", tt.message)
			if err != nil {
				t.Fatalf("Chat returned error: %v", err)
			}
			if !strings.Contains(reply, tt.wantContains) {
				t.Errorf("reply missing %q:\n%s", tt.wantContains, reply)
			}
		})
	}
}

func TestRouteByKeyword(t *testing.T) {
	tests := []struct {
		message string
		want    llm.Intent
	}{
		{"please begin", llm.IntentFullAnalysis},
		{"start analysis now", llm.IntentFullAnalysis},
		{"show my data", llm.IntentFetchData},
		{"check my drift", llm.IntentAnalyzeDrift},
		{"any recommendations?", llm.IntentOptimize},
		{"why though", llm.IntentExplain},
		{"hello there", llm.IntentClarify},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := routeByKeyword(tt.message)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("routeByKeyword(%q) = %v, want [%s]", tt.message, got, tt.want)
			}
		})
	}
}
