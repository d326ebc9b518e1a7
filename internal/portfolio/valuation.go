package portfolio

import (
	"math"

	"github.com/advisorhq/portfolio-advisor/internal/pricing"
)

// PricedPosition is one priced holding in a valuation.
type PricedPosition struct {
	Ticker     string  `json:"ticker"`
	AssetClass string  `json:"asset_class"`
	Shares     float64 `json:"shares,omitempty"`
	FixedUSD   float64 `json:"fixed_usd,omitempty"`
	Price      float64 `json:"price,omitempty"`
	Value      float64 `json:"value"`
}

// Valuation is the dollar view of a normalized portfolio against a set of
// quoted prices.
type Valuation struct {
	// Positions holds every priced holding, in normalization order.
	Positions []PricedPosition
	// BucketTotals sums position values into canonical buckets. Balanced
	// classes are split 60/40 across US Equity and Bonds.
	BucketTotals map[Bucket]float64
	// Total is the sum of all bucket totals.
	Total float64
	// Unpriced lists tickers that required a quote but had none, in
	// normalization order. Their positions are excluded from the totals.
	Unpriced []string
}

// Value prices a normalized portfolio. A ticker with a share count but no
// usable quote (absent or NaN) is recorded in Unpriced and its shares
// contribute nothing; callers decide whether that is an error. Fixed-dollar
// holdings and self-reported values never need a quote, so a fixed-dollar
// amount on an unpriced ticker is still credited.
func Value(n NormalizedPositions, prices pricing.PriceMap) Valuation {
	v := Valuation{
		BucketTotals: make(map[Bucket]float64, len(Buckets)),
	}
	for _, bucket := range Buckets {
		v.BucketTotals[bucket] = 0
	}

	for _, ticker := range n.Tickers {
		q := n.Quantities[ticker]
		assetClass := n.AssetClassByTicker[ticker]

		value := q.FixedUSD
		price, ok := prices[ticker]
		if q.Shares > 0 {
			if !ok || math.IsNaN(price) {
				v.Unpriced = append(v.Unpriced, ticker)
				if q.FixedUSD > 0 {
					v.credit(assetClass, q.FixedUSD)
				}
				continue
			}
			value += q.Shares * price
		}

		v.Positions = append(v.Positions, PricedPosition{
			Ticker:     ticker,
			AssetClass: assetClass,
			Shares:     q.Shares,
			FixedUSD:   q.FixedUSD,
			Price:      price,
			Value:      value,
		})
		v.credit(assetClass, value)
	}

	for assetClass, amount := range n.SelfReported {
		v.credit(assetClass, amount)
	}

	for _, bucket := range Buckets {
		v.Total += v.BucketTotals[bucket]
	}

	return v
}

func (v *Valuation) credit(assetClass string, value float64) {
	if IsBalanced(assetClass) {
		v.BucketTotals[BucketUSEquity] += value * balancedEquityShare
		v.BucketTotals[BucketBonds] += value * balancedBondShare
		return
	}
	v.BucketTotals[Classify(assetClass)] += value
}
