package scheduler

import (
	"context"
	"time"
)

// tickerSource lists the tickers worth keeping warm.
type tickerSource interface {
	ActiveTickers(ctx context.Context) ([]string, error)
}

// priceWarmer pre-fetches quotes into the price cache.
type priceWarmer interface {
	Warm(ctx context.Context, tickers []string) error
}

// WarmPricesJob refreshes the price cache for every ticker held by a
// completed session, so interactive analysis requests hit warm quotes.
type WarmPricesJob struct {
	source  tickerSource
	warmer  priceWarmer
	timeout time.Duration
}

// NewWarmPricesJob builds the cache warm job.
func NewWarmPricesJob(source tickerSource, warmer priceWarmer, timeout time.Duration) *WarmPricesJob {
	return &WarmPricesJob{
		source:  source,
		warmer:  warmer,
		timeout: timeout,
	}
}

// Name implements Job.
func (j *WarmPricesJob) Name() string { return "warm-prices" }

// Run implements Job.
func (j *WarmPricesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	tickers, err := j.source.ActiveTickers(ctx)
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		return nil
	}

	return j.warmer.Warm(ctx, tickers)
}
