package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/advisorhq/portfolio-advisor/internal/apperrors"
	"github.com/advisorhq/portfolio-advisor/internal/api/request"
	"github.com/advisorhq/portfolio-advisor/internal/api/response"
	"github.com/advisorhq/portfolio-advisor/internal/service"
	"github.com/advisorhq/portfolio-advisor/internal/validation"
)

// SessionHandler handles session lifecycle and questionnaire HTTP requests
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// SessionActionResponse is the acknowledgement returned by the session
// lifecycle endpoints.
type SessionActionResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// InitSession handles POST requests to start (or resume) a session.
//
// Endpoint: POST /init-session
// Response: 200 OK with SessionActionResponse
// Error: 400 Bad Request on validation failure, 500 on storage failure
func (h *SessionHandler) InitSession(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.InitSessionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateInitSession(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	session, err := h.sessionService.InitSession(r.Context(), req.SessionID)
	if err != nil {
		errorResponse := map[string]string{
			"error":  "Failed to initialize session",
			"detail": err.Error(),
		}
		response.RespondJSON(w, http.StatusInternalServerError, errorResponse)
		return
	}

	response.RespondJSON(w, http.StatusOK, SessionActionResponse{
		Success:   true,
		Message:   "Session initialized",
		SessionID: session.SessionID,
	})
}

// SubmitQuestionnaire handles POST requests that store questionnaire answers.
//
// Endpoint: POST /submit-questionnaire
// Response: 200 OK with SessionActionResponse
// Error: 400 Bad Request on validation failure, 500 on storage failure
func (h *SessionHandler) SubmitQuestionnaire(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseSubmission(w, r)
	if !ok {
		return
	}

	response.RespondJSON(w, http.StatusOK, SessionActionResponse{
		Success:   true,
		Message:   "Questionnaire responses saved",
		SessionID: req.SessionID,
	})
}

// IntakeBulk is the agent-facing alias of SubmitQuestionnaire. It creates the
// session if needed and overwrites any previous answers, so repeated intake
// calls are safe.
//
// Endpoint: POST /agent/intake_bulk
// Response: 200 OK with {success: true}
func (h *SessionHandler) IntakeBulk(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.parseSubmission(w, r); !ok {
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *SessionHandler) parseSubmission(w http.ResponseWriter, r *http.Request) (request.SubmitQuestionnaireRequest, bool) {
	req, err := parseJSON[request.SubmitQuestionnaireRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return req, false
	}

	if err := validation.ValidateSubmitQuestionnaire(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return req, false
	}

	if err := h.sessionService.SubmitResponses(r.Context(), req.SessionID, req.Responses); err != nil {
		errorResponse := map[string]string{
			"error":  "Failed to save questionnaire responses",
			"detail": err.Error(),
		}
		response.RespondJSON(w, http.StatusInternalServerError, errorResponse)
		return req, false
	}

	return req, true
}

// SessionResponse is the session record projection returned to the front-end.
type SessionResponse struct {
	SessionID    string            `json:"session_id"`
	Status       string            `json:"status"`
	Responses    map[string]string `json:"responses"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	MessageCount int               `json:"message_count"`
}

// GetSession handles GET requests to retrieve a session record.
//
// Endpoint: GET /agent/session/{session_id}
// Response: 200 OK with SessionResponse
// Error: 404 Not Found when the session does not exist
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	session, err := h.sessionService.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			response.RespondError(w, http.StatusNotFound, "session not found", "")
			return
		}
		errorResponse := map[string]string{
			"error":  "Failed to retrieve session",
			"detail": err.Error(),
		}
		response.RespondJSON(w, http.StatusInternalServerError, errorResponse)
		return
	}

	messages, err := h.sessionService.GetMessages(r.Context(), sessionID)
	if err != nil {
		errorResponse := map[string]string{
			"error":  "Failed to retrieve chat history",
			"detail": err.Error(),
		}
		response.RespondJSON(w, http.StatusInternalServerError, errorResponse)
		return
	}

	response.RespondJSON(w, http.StatusOK, SessionResponse{
		SessionID:    session.SessionID,
		Status:       session.Status,
		Responses:    session.Responses,
		Metadata:     session.Metadata,
		CreatedAt:    session.CreatedAt,
		CompletedAt:  session.CompletedAt,
		MessageCount: len(messages),
	})
}
