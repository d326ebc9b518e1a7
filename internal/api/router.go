// Package api wires the HTTP surface: routing, middleware, and handlers.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/advisorhq/portfolio-advisor/internal/advisor"
	"github.com/advisorhq/portfolio-advisor/internal/api/handlers"
	custommiddleware "github.com/advisorhq/portfolio-advisor/internal/api/middleware"
	"github.com/advisorhq/portfolio-advisor/internal/config"
	"github.com/advisorhq/portfolio-advisor/internal/metrics"
	"github.com/advisorhq/portfolio-advisor/internal/pricing"
	"github.com/advisorhq/portfolio-advisor/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	sessionService *service.SessionService,
	orchestrator *advisor.Orchestrator,
	oracle pricing.Oracle,
	db *sql.DB,
	collector *metrics.HTTPCollector,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)
	if collector != nil {
		r.Use(collector.InstrumentHandler)
	}

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(db)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	chatHandler := handlers.NewChatHandler(orchestrator)
	marketHandler := handlers.NewMarketHandler(oracle)

	r.Get("/", systemHandler.Meta)
	r.Get("/health", systemHandler.Health)
	if collector != nil {
		r.Get("/metrics", collector.Handler().ServeHTTP)
	}

	r.Post("/init-session", sessionHandler.InitSession)
	r.Post("/submit-questionnaire", sessionHandler.SubmitQuestionnaire)

	r.Route("/agent", func(r chi.Router) {
		r.Post("/intake_bulk", sessionHandler.IntakeBulk)
		r.Post("/chat", chatHandler.Chat)
		r.Post("/chat/stream", chatHandler.ChatStream)

		r.Route("/session/{session_id}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateSessionIDMiddleware)
			r.Get("/", sessionHandler.GetSession)
		})
	})

	r.Get("/validate-ticker/{ticker}", marketHandler.ValidateTicker)

	return r
}
