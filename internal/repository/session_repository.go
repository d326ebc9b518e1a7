package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/advisorhq/portfolio-advisor/internal/apperrors"
	"github.com/advisorhq/portfolio-advisor/internal/model"
	"github.com/advisorhq/portfolio-advisor/internal/secure"
)

// SessionRepository provides data access methods for the portfolio_session
// table. Questionnaire payloads go through the secure codec on the way in and
// out so positions are encrypted at rest when a key is configured.
type SessionRepository struct {
	db    *sql.DB
	codec *secure.Codec
}

// NewSessionRepository creates a new SessionRepository with the provided
// database connection and payload codec.
func NewSessionRepository(db *sql.DB, codec *secure.Codec) *SessionRepository {
	return &SessionRepository{db: db, codec: codec}
}

// InsertSession creates a new session row in questionnaire_started status.
func (s *SessionRepository) InsertSession(ctx context.Context, session *model.Session) error {
	metadataJSON, err := json.Marshal(session.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal session metadata: %w", err)
	}

	query := `
          INSERT INTO portfolio_session (session_id, status, questionnaire_responses, responses_encrypted, metadata, created_at)
          VALUES (?, ?, ?, ?, ?, ?)
      `

	stored, err := s.storeResponses(session.Responses)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		session.SessionID,
		session.Status,
		stored,
		s.codec.Enabled(),
		string(metadataJSON),
		session.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio_session row: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID.
func (s *SessionRepository) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	query := `
          SELECT session_id, status, questionnaire_responses, responses_encrypted, metadata, created_at, completed_at
          FROM portfolio_session
          WHERE session_id = ?
      `

	var (
		session     model.Session
		responses   string
		encrypted   bool
		metadata    string
		completedAt sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.SessionID,
		&session.Status,
		&responses,
		&encrypted,
		&metadata,
		&session.CreatedAt,
		&completedAt,
	)
	if err == sql.ErrNoRows {
		return model.Session{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to query portfolio_session table: %w", err)
	}

	session.Responses, err = s.loadResponses(responses, encrypted)
	if err != nil {
		return model.Session{}, err
	}

	if err := json.Unmarshal([]byte(metadata), &session.Metadata); err != nil {
		return model.Session{}, fmt.Errorf("failed to unmarshal session metadata: %w", err)
	}

	if completedAt.Valid {
		t := completedAt.Time
		session.CompletedAt = &t
	}

	return session, nil
}

// SessionExists reports whether a session row exists for the given ID.
func (s *SessionRepository) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM portfolio_session WHERE session_id = ?", sessionID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query portfolio_session table: %w", err)
	}
	return count > 0, nil
}

// UpdateResponses stores a fresh questionnaire payload and moves the session
// to questionnaire_completed.
func (s *SessionRepository) UpdateResponses(ctx context.Context, sessionID string, responses model.QuestionnaireResponses, completedAt time.Time) error {
	stored, err := s.storeResponses(responses)
	if err != nil {
		return err
	}

	query := `
          UPDATE portfolio_session
          SET questionnaire_responses = ?, responses_encrypted = ?, status = ?, completed_at = ?
          WHERE session_id = ?
      `

	result, err := s.db.ExecContext(ctx, query,
		stored,
		s.codec.Enabled(),
		model.SessionStatusCompleted,
		completedAt.UTC(),
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio_session row: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrSessionNotFound
	}

	return nil
}

// ActiveTickers returns the distinct set of tickers present in the structured
// positions of completed sessions. Used by the scheduler to warm the price
// cache.
func (s *SessionRepository) ActiveTickers(ctx context.Context) ([]string, error) {
	query := `
          SELECT questionnaire_responses, responses_encrypted
          FROM portfolio_session
          WHERE status = ?
      `

	rows, err := s.db.QueryContext(ctx, query, model.SessionStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio_session table: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var tickers []string

	for rows.Next() {
		var stored string
		var encrypted bool
		if err := rows.Scan(&stored, &encrypted); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio_session results: %w", err)
		}

		responses, err := s.loadResponses(stored, encrypted)
		if err != nil {
			// Undecodable payloads should not take the warm job down.
			continue
		}

		positionsJSON := responses.PositionsJSON()
		if positionsJSON == "" {
			continue
		}

		var positions model.Positions
		if err := json.Unmarshal([]byte(positionsJSON), &positions); err != nil {
			continue
		}

		for _, rowSet := range positions {
			for _, row := range rowSet {
				if row.Ticker == "" || seen[row.Ticker] {
					continue
				}
				seen[row.Ticker] = true
				tickers = append(tickers, row.Ticker)
			}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio_session table: %w", err)
	}

	return tickers, nil
}

// storeResponses encodes and (when enabled) encrypts a responses payload.
func (s *SessionRepository) storeResponses(responses model.QuestionnaireResponses) (string, error) {
	if responses == nil {
		responses = model.QuestionnaireResponses{}
	}

	raw, err := json.Marshal(responses)
	if err != nil {
		return "", fmt.Errorf("failed to marshal questionnaire responses: %w", err)
	}

	stored, err := s.codec.Encrypt(string(raw))
	if err != nil {
		return "", err
	}

	return stored, nil
}

// loadResponses reverses storeResponses. Rows written before encryption was
// enabled carry responses_encrypted = false and are read as plaintext.
func (s *SessionRepository) loadResponses(stored string, encrypted bool) (model.QuestionnaireResponses, error) {
	raw := stored
	if encrypted {
		var err error
		raw, err = s.codec.Decrypt(stored)
		if err != nil {
			return nil, err
		}
	}

	var responses model.QuestionnaireResponses
	if err := json.Unmarshal([]byte(raw), &responses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questionnaire responses: %w", err)
	}

	return responses, nil
}
