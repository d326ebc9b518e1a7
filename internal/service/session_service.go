package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/advisorhq/portfolio-advisor/internal/apperrors"
	"github.com/advisorhq/portfolio-advisor/internal/model"
	"github.com/advisorhq/portfolio-advisor/internal/repository"
)

// SessionService handles session lifecycle and chat persistence logic.
type SessionService struct {
	sessionRepo *repository.SessionRepository
	chatRepo    *repository.ChatRepository
}

// NewSessionService creates a new SessionService with the provided repository dependencies.
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	chatRepo *repository.ChatRepository,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		chatRepo:    chatRepo,
	}
}

// InitSession creates a new advisory session. Creating an existing session is
// not an error for the caller-facing flow; the existing record is kept.
func (s *SessionService) InitSession(ctx context.Context, sessionID string) (*model.Session, error) {
	exists, err := s.sessionRepo.SessionExists(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}
	if exists {
		session, err := s.sessionRepo.GetSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return &session, nil
	}

	session := &model.Session{
		SessionID: sessionID,
		Status:    model.SessionStatusStarted,
		Responses: model.QuestionnaireResponses{},
		Metadata:  map[string]string{"user_agent": "web", "platform": "agentic_advisor"},
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.InsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFailedToCreateSession, err)
	}

	return session, nil
}

// GetSession retrieves a session by ID.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	return s.sessionRepo.GetSession(ctx, sessionID)
}

// SubmitResponses stores questionnaire responses for a session, creating the
// session first if it does not exist (idempotent intake).
func (s *SessionService) SubmitResponses(ctx context.Context, sessionID string, responses model.QuestionnaireResponses) error {
	exists, err := s.sessionRepo.SessionExists(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to check session existence: %w", err)
	}
	if !exists {
		if _, err := s.InitSession(ctx, sessionID); err != nil {
			return err
		}
	}

	if err := s.sessionRepo.UpdateResponses(ctx, sessionID, responses, time.Now()); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrFailedToSaveResponses, err)
	}

	return nil
}

// StructuredPositions parses the stored positions payload for a session.
// Returns ErrNoPositionData when the payload is absent or empty.
func (s *SessionService) StructuredPositions(ctx context.Context, sessionID string) (model.Positions, error) {
	session, err := s.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	positionsJSON := session.Responses.PositionsJSON()
	if positionsJSON == "" {
		return nil, apperrors.ErrNoPositionData
	}

	var positions model.Positions
	if err := json.Unmarshal([]byte(positionsJSON), &positions); err != nil {
		return nil, fmt.Errorf("failed to parse positions payload: %w", err)
	}

	if len(positions) == 0 {
		return nil, apperrors.ErrNoPositionData
	}

	return positions, nil
}

// SaveMessage persists one chat message for a session.
func (s *SessionService) SaveMessage(ctx context.Context, sessionID, messageType, content string, metadata map[string]string) error {
	msg := &model.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Type:      messageType,
		Content:   content,
		Metadata:  metadata,
		Timestamp: time.Now(),
	}

	if err := s.chatRepo.InsertMessage(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrFailedToSaveMessage, err)
	}

	return nil
}

// GetMessages retrieves a session's conversation log in chronological order.
func (s *SessionService) GetMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	messages, err := s.chatRepo.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFailedToRetrieveHistory, err)
	}
	return messages, nil
}

// ActiveTickers exposes the distinct tickers across completed sessions for
// the price cache warm job.
func (s *SessionService) ActiveTickers(ctx context.Context) ([]string, error) {
	return s.sessionRepo.ActiveTickers(ctx)
}
