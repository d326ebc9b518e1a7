// Package pricing defines the price oracle contract the advisor consumes and
// provides a cached adapter over the Yahoo Finance client.
package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/advisorhq/portfolio-advisor/internal/yahoo"
)

// PriceMap maps ticker symbols to their latest known price. A requested
// ticker that could not be priced is simply absent.
type PriceMap map[string]float64

// Oracle is the price lookup contract. Implementations return one price per
// resolvable ticker; unresolvable tickers are absent from the map. A returned
// error means the whole lookup failed, not a partial result.
type Oracle interface {
	LatestPrices(ctx context.Context, tickers []string) (PriceMap, error)
}

// YahooOracle adapts the Yahoo Finance client to the Oracle contract with a
// short-lived in-process cache. The cache keeps repeated advisor steps within
// one conversation from re-querying the same tickers.
type YahooOracle struct {
	client *yahoo.FinanceClient
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]cachedPrice
	now   func() time.Time
}

type cachedPrice struct {
	price     float64
	fetchedAt time.Time
}

// NewYahooOracle creates a cached oracle over the given client. A zero ttl
// disables caching.
func NewYahooOracle(client *yahoo.FinanceClient, ttl time.Duration) *YahooOracle {
	return &YahooOracle{
		client: client,
		ttl:    ttl,
		cache:  make(map[string]cachedPrice),
		now:    time.Now,
	}
}

// LatestPrices returns the latest close for each requested ticker, serving
// from cache where possible and fetching the remainder in one batch.
func (o *YahooOracle) LatestPrices(ctx context.Context, tickers []string) (PriceMap, error) {
	prices := make(PriceMap, len(tickers))
	var missing []string

	o.mu.Lock()
	for _, ticker := range tickers {
		if entry, ok := o.cache[ticker]; ok && o.now().Sub(entry.fetchedAt) < o.ttl {
			prices[ticker] = entry.price
			continue
		}
		missing = append(missing, ticker)
	}
	o.mu.Unlock()

	if len(missing) == 0 {
		return prices, nil
	}

	fetched, err := o.client.LatestPrices(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %v: %w", missing, err)
	}

	o.mu.Lock()
	for ticker, price := range fetched {
		prices[ticker] = price
		o.cache[ticker] = cachedPrice{price: price, fetchedAt: o.now()}
	}
	o.mu.Unlock()

	return prices, nil
}

// Warm pre-fetches prices for the given tickers, ignoring per-ticker misses.
// Called by the scheduler so interactive requests hit a hot cache.
func (o *YahooOracle) Warm(ctx context.Context, tickers []string) error {
	_, err := o.LatestPrices(ctx, tickers)
	return err
}
