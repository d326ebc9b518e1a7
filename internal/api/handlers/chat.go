package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/advisorhq/portfolio-advisor/internal/advisor"
	"github.com/advisorhq/portfolio-advisor/internal/apperrors"
	"github.com/advisorhq/portfolio-advisor/internal/api/request"
	"github.com/advisorhq/portfolio-advisor/internal/api/response"
	"github.com/advisorhq/portfolio-advisor/internal/validation"
)

// ChatHandler handles the synchronous and streaming chat endpoints.
type ChatHandler struct {
	orchestrator *advisor.Orchestrator
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(orchestrator *advisor.Orchestrator) *ChatHandler {
	return &ChatHandler{
		orchestrator: orchestrator,
	}
}

// ChatResponse is the synchronous chat reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// Chat handles POST requests for one synchronous chat turn.
//
// Endpoint: POST /agent/chat
// Response: 200 OK with ChatResponse
// Error: 400 Bad Request on validation failure, 404 when the session is unknown
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ChatRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateChat(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	reply, err := h.orchestrator.Chat(r.Context(), req.SessionID, req.UserMessage)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			response.RespondError(w, http.StatusNotFound, "session not found", "")
			return
		}
		errorResponse := map[string]string{
			"error":  "Failed to process chat message",
			"detail": err.Error(),
		}
		response.RespondJSON(w, http.StatusInternalServerError, errorResponse)
		return
	}

	response.RespondJSON(w, http.StatusOK, ChatResponse{Response: reply})
}

// ChatStream handles POST requests for one streamed chat turn. Progress is
// delivered as Server-Sent Events; the stream always ends with a stream_end
// event.
//
// Endpoint: POST /agent/chat/stream
// Response: 200 OK, Content-Type text/event-stream
// Error: 400 Bad Request on validation failure (before the stream starts)
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ChatRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateChat(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.RespondError(w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	emitter := &sseEmitter{w: w, flusher: flusher}
	if err := h.orchestrator.StreamChat(r.Context(), req.SessionID, req.UserMessage, emitter); err != nil {
		// The client is gone; nothing further can be delivered.
		return
	}
}

// sseEmitter frames advisor events as Server-Sent Events.
type sseEmitter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (e *sseEmitter) Emit(event advisor.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}
