package advisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/advisorhq/portfolio-advisor/internal/apperrors"
	"github.com/advisorhq/portfolio-advisor/internal/llm"
	"github.com/advisorhq/portfolio-advisor/internal/model"
	"github.com/advisorhq/portfolio-advisor/internal/portfolio"
)

// runFetch prices the session's holdings and formats a portfolio summary.
// Unlike the analysis paths, any ticker that cannot be priced is a hard
// error naming the offending symbols.
func (o *Orchestrator) runFetch(ctx context.Context, session model.Session) (string, error) {
	normalized, err := o.normalizedPositions(ctx, session)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoPositionData) {
			return o.runLegacyFetch(ctx, session)
		}
		return "", err
	}

	prices, err := o.oracle.LatestPrices(ctx, normalized.Tickers)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrPriceLookupFailed, err)
	}

	valuation := portfolio.Value(normalized, prices)
	if len(valuation.Unpriced) > 0 {
		return "", &apperrors.UnpricedTickersError{Tickers: valuation.Unpriced}
	}

	var b strings.Builder
	b.WriteString("Portfolio Data Retrieved Successfully:\n\n")
	for _, pos := range valuation.Positions {
		if pos.Shares > 0 {
			fmt.Fprintf(&b, "- %s: $%.2f x %.2f sh = $%.2f\n", pos.Ticker, pos.Price, pos.Shares, pos.Shares*pos.Price)
		}
		if pos.FixedUSD > 0 {
			fmt.Fprintf(&b, "- %s: $%.2f USD\n", pos.Ticker, pos.FixedUSD)
		}
	}
	for _, assetClass := range sortedKeys(normalized.SelfReported) {
		fmt.Fprintf(&b, "- %s: $%.2f (self-reported)\n", assetClass, normalized.SelfReported[assetClass])
	}
	fmt.Fprintf(&b, "\nTotal Portfolio Market Value: $%.2f\n", valuation.Total)
	fmt.Fprintf(&b, "Data pulled %s from Yahoo Finance\n", o.now().UTC().Format("2006-01-02 15:04 UTC"))

	return b.String(), nil
}

// runLegacyFetch covers sessions that described their holdings in free text
// instead of the structured positions table. The description is mapped to
// representative ETFs and live quotes are shown without share counts.
func (o *Orchestrator) runLegacyFetch(ctx context.Context, session model.Session) (string, error) {
	holdings := strings.TrimSpace(session.Responses.Holdings())
	if holdings == "" {
		return "", apperrors.ErrNoPositionData
	}

	tickers := portfolio.MapLegacyHoldings(holdings)
	prices, err := o.oracle.LatestPrices(ctx, tickers)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrPriceLookupFailed, err)
	}

	var unpriced []string
	var b strings.Builder
	b.WriteString("Live Market Data for Representative Funds:\n\n")
	for _, ticker := range tickers {
		price, ok := prices[ticker]
		if !ok {
			unpriced = append(unpriced, ticker)
			continue
		}
		fmt.Fprintf(&b, "- %s: $%.2f\n", ticker, price)
	}
	if len(unpriced) == len(tickers) {
		return "", &apperrors.UnpricedTickersError{Tickers: unpriced}
	}

	fmt.Fprintf(&b, "\nInput processed: %q\n", holdings)
	fmt.Fprintf(&b, "Mapped to tickers: %s\n", strings.Join(tickers, ", "))
	b.WriteString("No share counts were provided, so quotes are shown without position values.\n")

	return b.String(), nil
}

// runAnalyze compares current bucket weights against the target allocation
// for the session's risk tolerance. Unpriced tickers are silently excluded
// from the weights.
func (o *Orchestrator) runAnalyze(ctx context.Context, session model.Session) (string, error) {
	valuation, err := o.lenientValuation(ctx, session)
	if err != nil {
		return "", err
	}

	riskLevel := portfolio.ParseRiskLevel(session.Responses.RiskTolerance())
	report, err := portfolio.AnalyzeDrift(valuation, riskLevel)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Portfolio Drift Analysis:\n")
	for _, bd := range report.Buckets {
		direction := "below"
		if bd.Diff > 0 {
			direction = "above"
		}
		fmt.Fprintf(&b, "- %s: %+.1f%% %s target\n", bd.Bucket, bd.Diff, direction)
	}
	fmt.Fprintf(&b, "- Total portfolio drift: %.1f%%\n", report.TotalAbsDrift)

	recommendation := "Drift is within acceptable range."
	if report.Rebalance {
		recommendation = "Rebalancing recommended to realign with targets."
	}
	fmt.Fprintf(&b, "- Recommendation: %s", recommendation)

	return b.String(), nil
}

// runOptimize derives trade tilts from the gap between current weights and
// the target allocation. It requires the questionnaire context answers.
func (o *Orchestrator) runOptimize(ctx context.Context, session model.Session) (string, error) {
	risk := session.Responses.RiskTolerance()
	goal := session.Responses.InvestmentGoal()
	horizon := session.Responses.TimeHorizon()
	if risk == "" || goal == "" || horizon == "" {
		return "", apperrors.ErrNoQuestionnaireContext
	}

	valuation, err := o.lenientValuation(ctx, session)
	if err != nil {
		return "", err
	}

	riskLevel := portfolio.ParseRiskLevel(risk)
	report, err := portfolio.AnalyzeDrift(valuation, riskLevel)
	if err != nil {
		return "", err
	}
	trades := portfolio.Trades(report)

	target := portfolio.TargetAllocation(riskLevel)

	var b strings.Builder
	b.WriteString("Optimized Portfolio Allocation:\n")
	for _, bucket := range portfolio.Buckets {
		fmt.Fprintf(&b, "- %s: %g%%\n", bucket, target[bucket])
	}

	b.WriteString("\nSuggested Trades:\n")
	if len(trades) == 0 {
		b.WriteString("- Portfolio already aligned with target weights.")
	} else {
		for i, trade := range trades {
			fmt.Fprintf(&b, "- %s %.1f%% in %s (~$%.2f)", trade.Action, trade.DeltaPct, trade.Bucket, trade.AmountUSD)
			if i < len(trades)-1 {
				b.WriteString("\n")
			}
		}
	}

	return b.String(), nil
}

// runExplain builds the plain-English rationale for the session's
// recommendations. The deterministic text doubles as the narration fallback,
// so this step cannot fail.
func (o *Orchestrator) runExplain(ctx context.Context, session model.Session) string {
	canned := llm.ExplainRecommendations(
		session.Responses.RiskTolerance(),
		session.Responses.InvestmentGoal(),
	)

	if o.narrator == nil {
		return canned
	}
	return o.narrator.Narrate(ctx, canned, canned)
}

// normalizedPositions loads and normalizes the session's structured holdings.
func (o *Orchestrator) normalizedPositions(ctx context.Context, session model.Session) (portfolio.NormalizedPositions, error) {
	positions, err := o.sessions.StructuredPositions(ctx, session.SessionID)
	if err != nil {
		return portfolio.NormalizedPositions{}, err
	}

	normalized := portfolio.Normalize(positions)
	if normalized.Empty() {
		return portfolio.NormalizedPositions{}, apperrors.ErrNoPositionData
	}
	return normalized, nil
}

// lenientValuation values the session's holdings for the analysis paths,
// skipping tickers the oracle could not price.
func (o *Orchestrator) lenientValuation(ctx context.Context, session model.Session) (portfolio.Valuation, error) {
	normalized, err := o.normalizedPositions(ctx, session)
	if err != nil {
		return portfolio.Valuation{}, err
	}

	prices, err := o.oracle.LatestPrices(ctx, normalized.Tickers)
	if err != nil {
		return portfolio.Valuation{}, fmt.Errorf("%w: %s", apperrors.ErrPriceLookupFailed, err)
	}

	return portfolio.Value(normalized, prices), nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stepDeadline applies the per-step timeout when one is configured.
func (o *Orchestrator) stepDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.stepTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.stepTimeout)
}
