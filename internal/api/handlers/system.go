package handlers

import (
	"database/sql"
	"net/http"

	"github.com/advisorhq/portfolio-advisor/internal/api/response"
	"github.com/advisorhq/portfolio-advisor/internal/database"
)

// Version is the reported application version.
const Version = "1.0.0"

// SystemHandler handles service metadata and health HTTP requests
type SystemHandler struct {
	db *sql.DB
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *sql.DB) *SystemHandler {
	return &SystemHandler{
		db: db,
	}
}

// MetaResponse describes the running service.
type MetaResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

// Meta handles GET requests to the service root.
//
// Endpoint: GET /
// Response: 200 OK with MetaResponse
func (h *SystemHandler) Meta(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, MetaResponse{
		Service: "portfolio-advisor",
		Version: Version,
		Status:  "running",
		Endpoints: []string{
			"POST /init-session",
			"POST /submit-questionnaire",
			"POST /agent/intake_bulk",
			"POST /agent/chat",
			"POST /agent/chat/stream",
			"GET /agent/session/{session_id}",
			"GET /validate-ticker/{ticker}",
			"GET /health",
			"GET /metrics",
		},
	})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := database.HealthCheck(h.db); err != nil {
		response.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}
