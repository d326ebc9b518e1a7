package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/advisorhq/portfolio-advisor/internal/model"
)

// ChatRepository provides data access methods for the chat_message table.
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new ChatRepository with the provided database connection.
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// InsertMessage appends one message to a session's conversation log.
func (s *ChatRepository) InsertMessage(ctx context.Context, msg *model.ChatMessage) error {
	metadataJSON, err := json.Marshal(orEmpty(msg.Metadata))
	if err != nil {
		return fmt.Errorf("failed to marshal message metadata: %w", err)
	}

	query := `
          INSERT INTO chat_message (id, session_id, message_type, content, metadata, timestamp)
          VALUES (?, ?, ?, ?, ?, ?)
      `

	_, err = s.db.ExecContext(ctx, query,
		msg.ID,
		msg.SessionID,
		msg.Type,
		msg.Content,
		string(metadataJSON),
		msg.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat_message row: %w", err)
	}

	return nil
}

// GetMessages retrieves a session's messages in chronological order.
func (s *ChatRepository) GetMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	query := `
          SELECT id, session_id, message_type, content, metadata, timestamp
          FROM chat_message
          WHERE session_id = ?
          ORDER BY timestamp ASC
      `

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat_message table: %w", err)
	}
	defer rows.Close()

	messages := []model.ChatMessage{}

	for rows.Next() {
		var m model.ChatMessage
		var metadata string

		err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&m.Type,
			&m.Content,
			&metadata,
			&m.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat_message results: %w", err)
		}

		if err := json.Unmarshal([]byte(metadata), &m.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message metadata: %w", err)
		}

		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat_message table: %w", err)
	}

	return messages, nil
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
