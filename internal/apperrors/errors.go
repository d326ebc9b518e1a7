package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain entity errors represent missing or invalid entities in the system.
var (
	// ErrSessionNotFound indicates that a session with the given ID does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists indicates an attempt to initialize a session ID that is already in use.
	ErrSessionExists = errors.New("session already exists")
)

// Advisory computation errors. These map one-to-one onto the user-facing
// failure modes of the valuation and drift pipeline.
var (
	// ErrNoPositionData indicates the session has no structured positions payload.
	// The user must complete the questionnaire holdings table before any
	// valuation can run.
	ErrNoPositionData = errors.New("no position data found")

	// ErrZeroPortfolioValue indicates the portfolio valued to exactly zero,
	// which would make weight computation a division by zero.
	ErrZeroPortfolioValue = errors.New("total portfolio value is zero")

	// ErrNoQuestionnaireContext indicates risk tolerance, goal, or horizon
	// answers are missing and the optimize step cannot run.
	ErrNoQuestionnaireContext = errors.New("questionnaire context missing")
)

// Validation errors for request fields.
var (
	ErrInvalidSessionID = errors.New("session_id is required")
	ErrEmptyMessage     = errors.New("user_message is required")
	ErrEmptyResponses   = errors.New("responses payload is required")
	ErrInvalidTicker    = errors.New("ticker symbol is invalid")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data.
var (
	ErrFailedToCreateSession   = errors.New("failed to create session")
	ErrFailedToRetrieveSession = errors.New("failed to retrieve session")
	ErrFailedToSaveResponses   = errors.New("failed to save questionnaire responses")
	ErrFailedToSaveMessage     = errors.New("failed to save chat message")
	ErrFailedToRetrieveHistory = errors.New("failed to retrieve chat history")
	ErrPriceLookupFailed       = errors.New("price lookup failed")
)

// UnpricedTickersError is returned by the fetch path when one or more
// requested tickers could not be priced. The drift and optimize paths
// deliberately do not use it; they skip unpriced rows instead.
type UnpricedTickersError struct {
	Tickers []string
}

func (e *UnpricedTickersError) Error() string {
	return fmt.Sprintf("could not price ticker(s): %s", strings.Join(e.Tickers, ", "))
}

// IsUnpricedTickers reports whether err wraps an UnpricedTickersError and
// returns the offending tickers when it does.
func IsUnpricedTickers(err error) ([]string, bool) {
	var ut *UnpricedTickersError
	if errors.As(err, &ut) {
		return ut.Tickers, true
	}
	return nil, false
}
