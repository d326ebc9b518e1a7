package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/advisorhq/portfolio-advisor/internal/model"
	"github.com/advisorhq/portfolio-advisor/internal/repository"
	"github.com/advisorhq/portfolio-advisor/internal/secure"
	"github.com/advisorhq/portfolio-advisor/internal/service"
)

// NewTestSessionService builds a SessionService over the given test database
// with encryption disabled.
func NewTestSessionService(t *testing.T, db *sql.DB) *service.SessionService {
	t.Helper()

	codec, err := secure.NewCodec("")
	if err != nil {
		t.Fatalf("Failed to create codec: %v", err)
	}

	sessionRepo := repository.NewSessionRepository(db, codec)
	chatRepo := repository.NewChatRepository(db)

	return service.NewSessionService(sessionRepo, chatRepo)
}

// SeedSession creates a session with submitted questionnaire responses. The
// positions payload, when non-nil, is JSON-encoded into the "positions"
// answer the way the front-end submits it.
func SeedSession(
	t *testing.T,
	svc *service.SessionService,
	sessionID string,
	responses map[string]string,
	positions model.Positions,
) {
	t.Helper()

	ctx := context.Background()
	if _, err := svc.InitSession(ctx, sessionID); err != nil {
		t.Fatalf("Failed to init session: %v", err)
	}

	if responses == nil {
		responses = map[string]string{}
	}
	if positions != nil {
		payload, err := json.Marshal(positions)
		if err != nil {
			t.Fatalf("Failed to encode positions: %v", err)
		}
		responses["positions"] = string(payload)
	}

	if err := svc.SubmitResponses(ctx, sessionID, responses); err != nil {
		t.Fatalf("Failed to submit responses: %v", err)
	}
}
