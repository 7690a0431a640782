package handlers

import (
	"net/http"
	"strconv"
)

// APIQuote returns a live quote for a ticker
func (h *Handler) APIQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		h.jsonError(w, "Ticker parameter required", http.StatusBadRequest)
		return
	}

	quote, err := h.marketSvc.GetQuote(r.Context(), ticker)
	if err != nil {
		h.jsonError(w, "Failed to fetch quote: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, http.StatusOK, quote)
}

// APIVolatility returns the annualized volatility of a ticker computed
// over its recent daily closes
func (h *Handler) APIVolatility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		h.jsonError(w, "Ticker parameter required", http.StatusBadRequest)
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 4 || parsed > 365 {
			h.jsonError(w, "Days must be a number between 4 and 365", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	vol, err := h.marketSvc.RealizedVolatility(r.Context(), ticker, days)
	if err != nil {
		h.jsonError(w, "Failed to compute volatility: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"ticker":                ticker,
		"days":                  days,
		"annualized_volatility": vol.Round(2),
	})
}
