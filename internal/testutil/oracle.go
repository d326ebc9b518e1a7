package testutil

import (
	"context"

	"github.com/advisorhq/portfolio-advisor/internal/pricing"
)

// StaticOracle is a pricing.Oracle backed by a fixed price map. Tickers
// absent from Prices are simply missing from the result, mirroring the real
// oracle's contract for unresolvable symbols.
type StaticOracle struct {
	Prices pricing.PriceMap
	// Err, when set, fails every lookup.
	Err error
	// Calls counts LatestPrices invocations.
	Calls int
}

// LatestPrices implements pricing.Oracle.
func (o *StaticOracle) LatestPrices(_ context.Context, tickers []string) (pricing.PriceMap, error) {
	o.Calls++
	if o.Err != nil {
		return nil, o.Err
	}

	prices := make(pricing.PriceMap, len(tickers))
	for _, ticker := range tickers {
		if price, ok := o.Prices[ticker]; ok {
			prices[ticker] = price
		}
	}
	return prices, nil
}

// Warm implements the price cache warmer contract.
func (o *StaticOracle) Warm(ctx context.Context, tickers []string) error {
	_, err := o.LatestPrices(ctx, tickers)
	return err
}
