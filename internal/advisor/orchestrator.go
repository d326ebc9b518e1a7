package advisor

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/advisorhq/portfolio-advisor/internal/apperrors"
	"github.com/advisorhq/portfolio-advisor/internal/config"
	"github.com/advisorhq/portfolio-advisor/internal/llm"
	"github.com/advisorhq/portfolio-advisor/internal/model"
	"github.com/advisorhq/portfolio-advisor/internal/pricing"
	"github.com/advisorhq/portfolio-advisor/internal/service"
)

// IntentRouter classifies a chat message into advisor intents.
type IntentRouter interface {
	Route(ctx context.Context, userMessage string) []llm.Intent
}

// Narrator rewrites a step result conversationally, returning the fallback
// text when it cannot.
type Narrator interface {
	Narrate(ctx context.Context, stepResult, fallback string) string
}

// Orchestrator runs the advisory state machine: classify the message, then
// dispatch one or more analysis steps, streaming progress as it goes.
type Orchestrator struct {
	sessions *service.SessionService
	oracle   pricing.Oracle
	router   IntentRouter
	narrator Narrator

	pacing      time.Duration
	stepTimeout time.Duration
	now         func() time.Time
}

// New builds an orchestrator. router and narrator may be nil, in which case
// routing falls back to keyword matching and narration to deterministic text.
func New(
	sessions *service.SessionService,
	oracle pricing.Oracle,
	router IntentRouter,
	narrator Narrator,
	cfg config.AdvisorConfig,
) *Orchestrator {
	return &Orchestrator{
		sessions:    sessions,
		oracle:      oracle,
		router:      router,
		narrator:    narrator,
		pacing:      cfg.PacingDelay,
		stepTimeout: cfg.StepTimeout,
		now:         time.Now,
	}
}

// step is one unit of the streamed sequence.
type step struct {
	agent    string
	intro    string
	thinking []string
	run      func(ctx context.Context, session model.Session) (string, error)
}

const clarifyMenu = "I wasn't completely sure what you wanted. Here are a few things I can do:\n\n" +
	"- Show my portfolio data\n" +
	"- Analyze my portfolio drift\n" +
	"- Optimize my allocation\n" +
	"- Explain the recommendations\n" +
	"- Run a full portfolio analysis\n\n" +
	"Please let me know which one you'd like!"

// StreamChat handles one chat turn over a streaming connection. It always
// terminates the stream with a stream_end event; a non-nil return means the
// client disconnected and no further events can be delivered.
func (o *Orchestrator) StreamChat(ctx context.Context, sessionID, userMessage string, emitter Emitter) error {
	session, err := o.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if emitErr := emitter.Emit(Event{Type: EventError, Agent: AgentOrchestrator,
			Content: "I couldn't find your session. Please start over from the questionnaire."}); emitErr != nil {
			return emitErr
		}
		return emitter.Emit(Event{Type: EventStreamEnd})
	}

	if err := o.sessions.SaveMessage(ctx, sessionID, model.MessageTypeUser, userMessage, nil); err != nil {
		log.Printf("failed to save user message for session %s: %v", sessionID, err)
	}

	intents := o.route(ctx, userMessage)

	if len(intents) == 0 || intents[0] == llm.IntentClarify {
		if err := emitter.Emit(Event{Type: EventAgentStart, Agent: AgentOrchestrator, Content: clarifyMenu}); err != nil {
			return err
		}
		if err := emitter.Emit(Event{Type: EventAgentComplete, Agent: AgentOrchestrator,
			Content: "Please tell me which one sounds right!"}); err != nil {
			return err
		}
		o.saveAgentMessage(ctx, sessionID, clarifyMenu)
		return emitter.Emit(Event{Type: EventStreamEnd})
	}

	sequence := o.buildSequence(intents)

	var results []string
	for _, st := range sequence {
		if err := emitter.Emit(Event{Type: EventAgentStart, Agent: st.agent, Content: st.intro}); err != nil {
			return err
		}
		o.pause(ctx)

		for _, thought := range st.thinking {
			if err := emitter.Emit(Event{Type: EventAgentThinking, Agent: st.agent, Content: thought}); err != nil {
				return err
			}
			o.pause(ctx)
		}

		stepCtx, cancel := o.stepDeadline(ctx)
		text, err := st.run(stepCtx, session)
		cancel()

		if err != nil {
			log.Printf("advisor step %s failed for session %s: %v", st.agent, sessionID, err)
			if emitErr := emitter.Emit(Event{Type: EventError, Agent: st.agent, Content: stepErrorMessage(err)}); emitErr != nil {
				return emitErr
			}
			continue
		}

		results = append(results, text)
		if err := emitter.Emit(Event{Type: EventAgentResponse, Agent: st.agent, Content: text}); err != nil {
			return err
		}
		o.pause(ctx)
	}

	complete := "Task complete. Let me know what you would like to do next!"
	if len(sequence) > 1 {
		complete = "Sequence complete. Let me know what else I can help with!"
	}
	if err := emitter.Emit(Event{Type: EventAgentComplete, Agent: AgentOrchestrator, Content: complete}); err != nil {
		return err
	}

	if len(results) > 0 {
		o.saveAgentMessage(ctx, sessionID, strings.Join(results, "\n\n"))
	}

	return emitter.Emit(Event{Type: EventStreamEnd})
}

// Chat handles one chat turn synchronously, using keyword routing only. The
// full response text is returned in one piece.
func (o *Orchestrator) Chat(ctx context.Context, sessionID, userMessage string) (string, error) {
	session, err := o.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if err := o.sessions.SaveMessage(ctx, sessionID, model.MessageTypeUser, userMessage, nil); err != nil {
		log.Printf("failed to save user message for session %s: %v", sessionID, err)
	}

	intents := routeByKeyword(userMessage)
	if intents[0] == llm.IntentClarify {
		o.saveAgentMessage(ctx, sessionID, clarifyMenu)
		return clarifyMenu, nil
	}

	var parts []string
	for _, st := range o.buildSequence(intents) {
		stepCtx, cancel := o.stepDeadline(ctx)
		text, err := st.run(stepCtx, session)
		cancel()

		if err != nil {
			log.Printf("advisor step %s failed for session %s: %v", st.agent, sessionID, err)
			parts = append(parts, stepErrorMessage(err))
			continue
		}
		parts = append(parts, text)
	}

	response := strings.Join(parts, "\n\n")
	o.saveAgentMessage(ctx, sessionID, response)
	return response, nil
}

// route prefers the LLM router and falls back to keyword matching when none
// is configured.
func (o *Orchestrator) route(ctx context.Context, userMessage string) []llm.Intent {
	if o.router != nil {
		return o.router.Route(ctx, userMessage)
	}
	return routeByKeyword(userMessage)
}

// routeByKeyword is the deterministic fallback used when no LLM router is
// configured, and always for the synchronous chat endpoint. First match wins.
func routeByKeyword(userMessage string) []llm.Intent {
	text := strings.ToLower(userMessage)

	switch {
	case strings.Contains(text, "start analysis") || strings.Contains(text, "begin"):
		return []llm.Intent{llm.IntentFullAnalysis}
	case strings.Contains(text, "data") || strings.Contains(text, "portfolio"):
		return []llm.Intent{llm.IntentFetchData}
	case strings.Contains(text, "analysis") || strings.Contains(text, "drift"):
		return []llm.Intent{llm.IntentAnalyzeDrift}
	case strings.Contains(text, "optimize") || strings.Contains(text, "recommend"):
		return []llm.Intent{llm.IntentOptimize}
	case strings.Contains(text, "explain") || strings.Contains(text, "why"):
		return []llm.Intent{llm.IntentExplain}
	default:
		return []llm.Intent{llm.IntentClarify}
	}
}

// buildSequence expands routed intents into the ordered step list. A
// full_analysis intent expands to the complete fixed workflow; otherwise
// drift and optimize steps get an implicit data refresh if none has run yet
// this turn. Explanations never trigger a refresh.
func (o *Orchestrator) buildSequence(intents []llm.Intent) []step {
	for _, intent := range intents {
		if intent == llm.IntentFullAnalysis {
			return []step{
				{AgentDataFetch, "Starting Full Portfolio Analysis. First, let me gather your current data...",
					[]string{"Accessing your portfolio information...", "Fetching live prices..."}, o.runFetch},
				o.analyzeStep(),
				o.optimizeStep(),
				o.explainStep(),
			}
		}
	}

	var sequence []step
	hasData := false

	for _, intent := range intents {
		if (intent == llm.IntentAnalyzeDrift || intent == llm.IntentOptimize) && !hasData {
			sequence = append(sequence, step{
				AgentDataFetch,
				"Data-Fetch Agent: First, let me get your latest portfolio data...",
				[]string{"Refreshing your records...", "Pulling live prices..."},
				o.runFetch,
			})
			hasData = true
		}

		switch intent {
		case llm.IntentFetchData:
			sequence = append(sequence, step{
				AgentDataFetch,
				"Data-Fetch Agent: Retrieving your portfolio data and current market prices...",
				[]string{"Accessing your portfolio information...", "Fetching live prices..."},
				o.runFetch,
			})
			hasData = true
		case llm.IntentAnalyzeDrift:
			sequence = append(sequence, o.analyzeStep())
		case llm.IntentOptimize:
			sequence = append(sequence, o.optimizeStep())
		case llm.IntentExplain:
			sequence = append(sequence, o.explainStep())
		}
	}

	return sequence
}

func (o *Orchestrator) analyzeStep() step {
	return step{
		AgentAnalysis,
		"Analysis Agent: Analyzing your portfolio drift...",
		[]string{"Loading your positions...", "Calculating drift..."},
		o.runAnalyze,
	}
}

func (o *Orchestrator) optimizeStep() step {
	return step{
		AgentOptimization,
		"Optimization Agent: Optimizing your portfolio allocation...",
		[]string{"Loading risk preferences...", "Running optimization..."},
		o.runOptimize,
	}
}

func (o *Orchestrator) explainStep() step {
	return step{
		AgentExplainability,
		"Explainability Agent: Explaining the rationale behind the recommendations...",
		[]string{"Reviewing prior recommendations..."},
		func(ctx context.Context, session model.Session) (string, error) {
			return o.runExplain(ctx, session), nil
		},
	}
}

// stepErrorMessage converts a step failure into the user-facing text emitted
// for that step. Later steps in the sequence still proceed.
func stepErrorMessage(err error) string {
	if tickers, ok := apperrors.IsUnpricedTickers(err); ok {
		return "Error: One or more ticker symbols could not be priced: " +
			strings.Join(tickers, ", ") +
			". Please correct the ticker symbol(s) and resubmit the questionnaire."
	}

	switch {
	case errors.Is(err, apperrors.ErrNoPositionData):
		return "No position data found. Please complete the questionnaire holdings table first."
	case errors.Is(err, apperrors.ErrZeroPortfolioValue):
		return "Unable to compute: total portfolio value is zero."
	case errors.Is(err, apperrors.ErrNoQuestionnaireContext):
		return "I couldn't find your questionnaire responses. Please complete the questionnaire first so I know your risk tolerance and goals."
	case errors.Is(err, context.DeadlineExceeded):
		return "This step took too long and was stopped. Please try again."
	default:
		return "I ran into a problem completing this step. Please try again."
	}
}

func (o *Orchestrator) saveAgentMessage(ctx context.Context, sessionID, content string) {
	if err := o.sessions.SaveMessage(ctx, sessionID, model.MessageTypeAgent, content, nil); err != nil {
		log.Printf("failed to save agent message for session %s: %v", sessionID, err)
	}
}

// pause inserts the cosmetic narration delay, respecting cancellation.
func (o *Orchestrator) pause(ctx context.Context) {
	if o.pacing <= 0 {
		return
	}
	select {
	case <-time.After(o.pacing):
	case <-ctx.Done():
	}
}
