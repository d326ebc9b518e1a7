package model

// PositionRow is a single row of the questionnaire holdings table. A row
// either describes a share count for a ticker or a fixed dollar amount;
// rows without a ticker and with Units "usd" are self-reported values for
// their asset class and never hit the price feed.
type PositionRow struct {
	Ticker string  `json:"ticker"`
	Amount float64 `json:"amount"`
	Units  string  `json:"units"` // "shares" or "usd"
}

// Position units.
const (
	UnitsShares = "shares"
	UnitsUSD    = "usd"
)

// Positions maps a user-supplied asset class label to its rows, in the order
// the user entered them.
type Positions map[string][]PositionRow
