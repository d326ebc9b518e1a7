// Package advisor sequences the questionnaire, pricing, and analysis
// components behind a streamed multi-step narration, with a synchronous chat
// fallback.
package advisor

// EventType categorizes a streamed progress event.
type EventType string

// Event types emitted over the stream, in the order a step produces them:
// start, zero or more thinking updates, then a result or response. The
// orchestrator closes every stream with a stream_end event.
const (
	EventAgentStart    EventType = "agent_start"
	EventAgentThinking EventType = "agent_thinking"
	EventAgentResult   EventType = "agent_result"
	EventAgentResponse EventType = "agent_response"
	EventAgentComplete EventType = "agent_complete"
	EventError         EventType = "error"
	EventStreamEnd     EventType = "stream_end"
)

// Agent labels attached to events so the front-end can attribute narration.
const (
	AgentDataFetch      = "data_fetch"
	AgentAnalysis       = "analysis"
	AgentOptimization   = "optimization"
	AgentExplainability = "explainability"
	AgentRouter         = "router"
	AgentOrchestrator   = "orchestrator"
)

// Event is one streamed progress notification.
type Event struct {
	Type    EventType `json:"type"`
	Agent   string    `json:"agent,omitempty"`
	Content string    `json:"content,omitempty"`
}

// Emitter delivers events to the client. A returned error means the client
// is gone and the stream should stop.
type Emitter interface {
	Emit(event Event) error
}
