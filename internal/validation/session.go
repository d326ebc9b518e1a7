package validation

import (
	"strings"

	"github.com/advisorhq/portfolio-advisor/internal/api/request"
)

const (
	maxSessionIDLength = 128
	maxTickerLength    = 12
)

// ValidateSessionID checks that a session ID is present, within length
// limits, and uses only URL-safe characters. Session IDs are generated by
// the front-end, so the format is deliberately loose.
func ValidateSessionID(sessionID string) error {
	errors := make(map[string]string)

	if strings.TrimSpace(sessionID) == "" {
		errors["session_id"] = "session_id is required"
	} else if len(sessionID) > maxSessionIDLength {
		errors["session_id"] = "session_id is too long"
	} else {
		for _, ch := range sessionID {
			if !isSessionIDChar(ch) {
				errors["session_id"] = "session_id contains invalid characters"
				break
			}
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func isSessionIDChar(ch rune) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	case ch == '-' || ch == '_' || ch == '.':
		return true
	}
	return false
}

// ValidateTicker checks that a ticker symbol looks like one before it is
// sent to the market data feed.
func ValidateTicker(ticker string) error {
	errors := make(map[string]string)

	trimmed := strings.TrimSpace(ticker)
	if trimmed == "" {
		errors["ticker"] = "ticker is required"
	} else if len(trimmed) > maxTickerLength {
		errors["ticker"] = "ticker is too long"
	} else {
		for _, ch := range trimmed {
			if !isTickerChar(ch) {
				errors["ticker"] = "ticker contains invalid characters"
				break
			}
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func isTickerChar(ch rune) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	case ch == '.' || ch == '-' || ch == '^':
		return true
	}
	return false
}

// ValidateInitSession validates the init-session request body.
func ValidateInitSession(req request.InitSessionRequest) error {
	return ValidateSessionID(req.SessionID)
}

// ValidateSubmitQuestionnaire validates the questionnaire submission body.
func ValidateSubmitQuestionnaire(req request.SubmitQuestionnaireRequest) error {
	errors := make(map[string]string)
	mergeFields(errors, ValidateSessionID(req.SessionID))

	if len(req.Responses) == 0 {
		errors["responses"] = "responses payload is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateChat validates a chat request body.
func ValidateChat(req request.ChatRequest) error {
	errors := make(map[string]string)
	mergeFields(errors, ValidateSessionID(req.SessionID))

	if strings.TrimSpace(req.UserMessage) == "" {
		errors["user_message"] = "user_message is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func mergeFields(into map[string]string, err error) {
	if verr, ok := err.(*Error); ok {
		for field, msg := range verr.Fields {
			into[field] = msg
		}
	}
}
