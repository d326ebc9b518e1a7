// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/advisorhq/portfolio-advisor/internal/api/response"
	"github.com/advisorhq/portfolio-advisor/internal/validation"
)

// ValidateSessionIDMiddleware validates that the session_id URL parameter is
// present and well formed. Returns 400 Bad Request otherwise.
//
// Example usage in router:
//
//	r.Route("/session/{session_id}", func(r chi.Router) {
//	    r.Use(middleware.ValidateSessionIDMiddleware)
//	    r.Get("/", handler.GetSession)
//	})
func ValidateSessionIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "session_id")

		if sessionID == "" {
			response.RespondError(w, http.StatusBadRequest, "valid session_id is required", "")
			return
		}

		if err := validation.ValidateSessionID(sessionID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid session_id format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
