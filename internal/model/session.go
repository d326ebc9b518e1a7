package model

import "time"

// Session status values. Sessions move from started to completed when the
// questionnaire is submitted.
const (
	SessionStatusStarted   = "questionnaire_started"
	SessionStatusCompleted = "questionnaire_completed"
)

// Session represents one advisory session owned by the front-end. The
// questionnaire responses are stored as a JSON object; the "positions" field
// inside it holds a JSON-encoded string of asset class -> position rows,
// which is the sole authoritative source for valuation.
type Session struct {
	SessionID   string
	Status      string
	Responses   QuestionnaireResponses
	Metadata    map[string]string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// QuestionnaireResponses is the raw questionnaire payload submitted by the
// front-end. Keys are question identifiers; values are free-text answers.
type QuestionnaireResponses map[string]string

// RiskTolerance returns the stored risk tolerance answer, e.g. "3 - Moderate".
func (q QuestionnaireResponses) RiskTolerance() string { return q["risk_tolerance"] }

// InvestmentGoal returns the stored investment goal answer.
func (q QuestionnaireResponses) InvestmentGoal() string { return q["investment_goal"] }

// TimeHorizon returns the stored time horizon answer.
func (q QuestionnaireResponses) TimeHorizon() string { return q["time_horizon"] }

// Holdings returns the free-text holdings description, used only by the
// legacy keyword mapping when no structured positions exist.
func (q QuestionnaireResponses) Holdings() string { return q["holdings"] }

// PositionsJSON returns the JSON-encoded structured positions payload, or ""
// when the questionnaire has none.
func (q QuestionnaireResponses) PositionsJSON() string { return q["positions"] }
