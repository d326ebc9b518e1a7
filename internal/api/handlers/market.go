package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/advisorhq/portfolio-advisor/internal/api/response"
	"github.com/advisorhq/portfolio-advisor/internal/pricing"
	"github.com/advisorhq/portfolio-advisor/internal/validation"
)

// MarketHandler handles market data HTTP requests
type MarketHandler struct {
	oracle pricing.Oracle
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(oracle pricing.Oracle) *MarketHandler {
	return &MarketHandler{
		oracle: oracle,
	}
}

// ValidateTickerResponse reports whether a ticker resolves to a live quote.
// Price is null when the symbol is unknown.
type ValidateTickerResponse struct {
	Valid bool     `json:"valid"`
	Price *float64 `json:"price"`
}

// ValidateTicker handles GET requests that probe a single ticker symbol.
// An unresolvable symbol is a negative result, not an error status.
//
// Endpoint: GET /validate-ticker/{ticker}
// Response: 200 OK with ValidateTickerResponse
// Error: 400 Bad Request when the symbol is malformed
func (h *MarketHandler) ValidateTicker(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "ticker")))

	if err := validation.ValidateTicker(ticker); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid ticker", err.Error())
		return
	}

	prices, err := h.oracle.LatestPrices(r.Context(), []string{ticker})
	if err != nil {
		// Lookup failure means unverifiable, not invalid input.
		response.RespondJSON(w, http.StatusOK, ValidateTickerResponse{Valid: false, Price: nil})
		return
	}

	price, ok := prices[ticker]
	if !ok {
		response.RespondJSON(w, http.StatusOK, ValidateTickerResponse{Valid: false, Price: nil})
		return
	}

	response.RespondJSON(w, http.StatusOK, ValidateTickerResponse{Valid: true, Price: &price})
}
