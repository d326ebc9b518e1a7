package model

import "time"

// Chat message types mirror the roles stored with each message.
const (
	MessageTypeUser   = "user"
	MessageTypeAgent  = "agent"
	MessageTypeSystem = "system"
)

// ChatMessage is one persisted message in a session's conversation log.
type ChatMessage struct {
	ID        string
	SessionID string
	Type      string
	Content   string
	Metadata  map[string]string
	Timestamp time.Time
}
