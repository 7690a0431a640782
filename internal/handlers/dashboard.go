package handlers

import (
	"net/http"
	"time"

	"github.com/ravila/patrimonio/internal/models"
)

// DashboardResponse bundles everything the dashboard renders in one call
type DashboardResponse struct {
	Portfolio    *models.Portfolio         `json:"portfolio"`
	TotalValue   string                    `json:"total_value"`
	TotalPnL     string                    `json:"total_pnl"`
	TotalPnLPct  string                    `json:"total_pnl_pct"`
	Distribution models.Distribution       `json:"distribution"`
	Risk         models.RiskMetrics        `json:"risk"`
	RiskStyle    models.RiskCategoryStyle  `json:"risk_style"`
	Performance  models.PerformanceMetrics `json:"performance"`
	Rebalancing  bool                      `json:"needs_rebalancing"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}

// APIDashboard returns the full dashboard payload
func (h *Handler) APIDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	portfolio, err := h.loadPortfolio(r)
	if err != nil {
		h.jsonError(w, "Failed to load portfolio: "+err.Error(), http.StatusInternalServerError)
		return
	}

	riskMetrics := h.computeRisk(portfolio)
	current := models.NewSnapshot(portfolio, time.Now().UTC())
	perfMetrics := h.perfSvc.Metrics(r.Context(), portfolio, current, time.Now().UTC())

	h.jsonResponse(w, http.StatusOK, &DashboardResponse{
		Portfolio:    portfolio,
		TotalValue:   portfolio.TotalValue().StringFixed(2),
		TotalPnL:     portfolio.TotalPnL().StringFixed(2),
		TotalPnLPct:  portfolio.TotalPnLPercent().StringFixed(2),
		Distribution: portfolio.CalculateDistribution(),
		Risk:         riskMetrics,
		RiskStyle:    riskMetrics.RiskCategory.Style(),
		Performance:  perfMetrics,
		Rebalancing:  portfolio.NeedsRebalancing(h.cfg.RebalanceThresholdPct),
		GeneratedAt:  time.Now().UTC(),
	})
}

func (h *Handler) computeRisk(portfolio *models.Portfolio) models.RiskMetrics {
	realized, _ := portfolio.TotalPnLPercent().Float64()
	return h.riskSvc.CalculateRiskMetrics(
		portfolio.CalculateDistribution(),
		portfolio.PositionValues(),
		realized,
	)
}
