package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentQueries bounds parallel chart requests so a large holdings
// table does not hammer the upstream API.
const maxConcurrentQueries = 4

// FinanceClient fetches market data from the Yahoo Finance chart API.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client with default HTTP settings.
func NewFinanceClient() *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{},
		baseURL:    "https://query1.finance.yahoo.com",
	}
}

// NewFinanceClientWithBaseURL creates a client pointed at a custom endpoint.
// Used by tests to target an httptest server.
func NewFinanceClientWithBaseURL(baseURL string) *FinanceClient {
	c := NewFinanceClient()
	c.baseURL = baseURL
	return c
}

// QueryFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// The 5-day range makes the latest close available even across weekends and
// market holidays.
func (c *FinanceClient) QueryFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, symbol)
	result, err := c.queryYahoo(ctx, url)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, &symbolError{message: fmt.Sprintf("no results returned for symbol %s", symbol)}
	}

	return result, nil
}

// LatestClose extracts the most recent non-null closing price from a chart
// response. Returns false when the series has no usable close.
func LatestClose(response Response) (float64, bool) {
	if len(response.Chart.Result) == 0 {
		return 0, false
	}

	quotes := response.Chart.Result[0].Indicators.Quote
	if len(quotes) == 0 {
		return 0, false
	}

	closes := quotes[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] == nil {
			continue
		}
		price := *closes[i]
		if math.IsNaN(price) {
			continue
		}
		return price, true
	}

	return 0, false
}

// LatestPrice fetches the latest close for a single symbol. Returns ok=false
// when the symbol resolves but has no usable close.
func (c *FinanceClient) LatestPrice(ctx context.Context, symbol string) (float64, bool, error) {
	response, err := c.QueryFiveDaySymbol(ctx, symbol)
	if err != nil {
		return 0, false, err
	}

	price, ok := LatestClose(response)
	return price, ok, nil
}

// LatestPrices fetches the latest close for each requested symbol, querying
// concurrently with bounded parallelism. Symbols that resolve but carry no
// usable price are simply absent from the result map; a transport-level
// failure fails the whole batch.
func (c *FinanceClient) LatestPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQueries)

	for _, symbol := range symbols {
		g.Go(func() error {
			response, err := c.QueryFiveDaySymbol(ctx, symbol)
			if err != nil {
				// An unknown symbol is a missing price, not a batch failure.
				// Yahoo reports it inside the chart payload, which queryYahoo
				// surfaces as a yahoo error.
				if isSymbolError(err) {
					return nil
				}
				return err
			}

			price, ok := LatestClose(response)
			if !ok {
				return nil
			}

			mu.Lock()
			prices[symbol] = price
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return prices, nil
}

// queryYahoo executes one chart API request and decodes the response.
func (c *FinanceClient) queryYahoo(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return response, &symbolError{message: *response.Chart.Error}
	}

	return response, nil
}

// symbolError marks failures reported by Yahoo for a specific symbol, as
// opposed to transport failures.
type symbolError struct {
	message string
}

func (e *symbolError) Error() string {
	return fmt.Sprintf("yahoo error: %s", e.message)
}

func isSymbolError(err error) bool {
	_, ok := err.(*symbolError)
	return ok
}
