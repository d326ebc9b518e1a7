// Package request defines the JSON request bodies accepted by the HTTP layer.
package request

// InitSessionRequest represents the request body for starting a session.
type InitSessionRequest struct {
	SessionID string `json:"session_id"`
}

// SubmitQuestionnaireRequest represents a questionnaire submission. The
// responses map carries free-text answers keyed by question identifier,
// including the JSON-encoded "positions" payload.
type SubmitQuestionnaireRequest struct {
	SessionID string            `json:"session_id"`
	Responses map[string]string `json:"responses"`
}

// ChatRequest represents one chat turn, for both the synchronous and the
// streaming endpoint.
type ChatRequest struct {
	SessionID   string `json:"session_id"`
	UserMessage string `json:"user_message"`
}
