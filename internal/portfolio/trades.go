package portfolio

import "math"

// TradeAction is the direction of a rebalancing trade.
type TradeAction string

// Trade directions.
const (
	TradeBuy  TradeAction = "Buy"
	TradeSell TradeAction = "Sell"
)

// minTradePct suppresses noise trades: deltas under one percentage point
// after rounding are not worth transacting.
const minTradePct = 1.0

// Trade is one recommended rebalancing move.
type Trade struct {
	Bucket    Bucket      `json:"bucket"`
	Action    TradeAction `json:"action"`
	DeltaPct  float64     `json:"delta_pct"`
	AmountUSD float64     `json:"amount_usd"`
}

// Trades derives the rebalancing moves from a drift report. Each bucket's
// delta is target minus actual, rounded to one decimal place; deltas smaller
// than one point are dropped. An empty result means the portfolio is already
// aligned with its targets.
func Trades(report DriftReport) []Trade {
	trades := make([]Trade, 0, len(report.Buckets))

	for _, bd := range report.Buckets {
		delta := round1(bd.TargetPct - bd.ActualPct)
		if math.Abs(delta) < minTradePct {
			continue
		}

		action := TradeBuy
		if delta < 0 {
			action = TradeSell
		}

		trades = append(trades, Trade{
			Bucket:    bd.Bucket,
			Action:    action,
			DeltaPct:  math.Abs(delta),
			AmountUSD: round2(math.Abs(delta) / 100 * report.TotalValue),
		})
	}

	return trades
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
