package portfolio

import (
	"sort"
	"strings"

	"github.com/advisorhq/portfolio-advisor/internal/model"
)

// QuantityKind distinguishes a share count from a fixed dollar amount. The
// upstream data model encoded this in the sign of a single float; the tagged
// form removes that invariant.
type QuantityKind int

// Quantity kinds.
const (
	KindShares QuantityKind = iota
	KindFixedUSD
)

// Quantity is the accumulated holding for one ticker, split by kind. A ticker
// reported both as shares and as fixed dollars accumulates into both fields.
type Quantity struct {
	Shares   float64
	FixedUSD float64
}

// NormalizedPositions is the canonical form the valuation engine consumes.
type NormalizedPositions struct {
	// Tickers lists distinct tickers in first-seen order.
	Tickers []string
	// Quantities maps each ticker to its accumulated quantity.
	Quantities map[string]Quantity
	// SelfReported maps an asset class label to the summed USD value of its
	// ticker-less rows. These bypass price lookup entirely.
	SelfReported map[string]float64
	// AssetClassByTicker records which asset class each ticker first appeared
	// under, for display.
	AssetClassByTicker map[string]string
}

// Normalize parses the per-asset-class position rows into the canonical set
// of tickers and quantities. Tickers are uppercased; duplicates within or
// across asset classes accumulate. Rows with no ticker contribute to the
// self-reported value of their asset class when denominated in dollars, and
// are dropped otherwise.
func Normalize(positions model.Positions) NormalizedPositions {
	normalized := NormalizedPositions{
		Quantities:         make(map[string]Quantity),
		SelfReported:       make(map[string]float64),
		AssetClassByTicker: make(map[string]string),
	}

	// JSON objects decode into an unordered map, so asset classes are walked
	// in sorted label order to keep ticker order deterministic. Row order
	// within a class is preserved as entered.
	assetClasses := make([]string, 0, len(positions))
	for assetClass := range positions {
		assetClasses = append(assetClasses, assetClass)
	}
	sort.Strings(assetClasses)

	for _, assetClass := range assetClasses {
		for _, row := range positions[assetClass] {
			ticker := strings.ToUpper(strings.TrimSpace(row.Ticker))

			if ticker == "" {
				if row.Units == model.UnitsUSD && row.Amount > 0 {
					normalized.SelfReported[assetClass] += row.Amount
				}
				continue
			}

			if _, seen := normalized.Quantities[ticker]; !seen {
				normalized.Tickers = append(normalized.Tickers, ticker)
				normalized.AssetClassByTicker[ticker] = assetClass
			}

			q := normalized.Quantities[ticker]
			if row.Units == model.UnitsUSD {
				q.FixedUSD += row.Amount
			} else {
				q.Shares += row.Amount
			}
			normalized.Quantities[ticker] = q
		}
	}

	return normalized
}

// Empty reports whether normalization produced nothing to value.
func (n NormalizedPositions) Empty() bool {
	return len(n.Tickers) == 0 && len(n.SelfReported) == 0
}
