package handlers

import (
	"net/http"
	"time"

	"github.com/ravila/patrimonio/internal/models"
	"github.com/ravila/patrimonio/internal/services/risk"
)

// RiskResponse carries the risk metrics with display metadata and
// per-metric interpretation bands.
type RiskResponse struct {
	Metrics       models.RiskMetrics       `json:"metrics"`
	Style         models.RiskCategoryStyle `json:"style"`
	Volatility    string                   `json:"volatility_band"`
	Sharpe        string                   `json:"sharpe_band"`
	Beta          string                   `json:"beta_band"`
	Concentration string                   `json:"concentration_band"`
}

// APIRisk returns the portfolio risk metrics as JSON
func (h *Handler) APIRisk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	portfolio, err := h.loadPortfolio(r)
	if err != nil {
		h.jsonError(w, "Failed to load portfolio: "+err.Error(), http.StatusInternalServerError)
		return
	}

	metrics := h.computeRisk(portfolio)

	vol, _ := metrics.AnnualVolatilityPct.Float64()
	sharpe, _ := metrics.SharpeRatio.Float64()
	beta, _ := metrics.Beta.Float64()
	conc, _ := metrics.ConcentrationTop3Pct.Float64()

	h.jsonResponse(w, http.StatusOK, &RiskResponse{
		Metrics:       metrics,
		Style:         metrics.RiskCategory.Style(),
		Volatility:    risk.VolatilityBand(vol),
		Sharpe:        risk.SharpeBand(sharpe),
		Beta:          risk.BetaBand(beta),
		Concentration: risk.ConcentrationBand(conc),
	})
}

// APIPerformance returns YTD, daily and total returns as JSON
func (h *Handler) APIPerformance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	portfolio, err := h.loadPortfolio(r)
	if err != nil {
		h.jsonError(w, "Failed to load portfolio: "+err.Error(), http.StatusInternalServerError)
		return
	}

	current := models.NewSnapshot(portfolio, time.Now().UTC())
	metrics := h.perfSvc.Metrics(r.Context(), portfolio, current, time.Now().UTC())

	h.jsonResponse(w, http.StatusOK, metrics)
}
