package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ravila/patrimonio/internal/services/advisor"
)

// AdvisorAsk answers a free-form question about the portfolio
func (h *Handler) AdvisorAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		h.jsonError(w, "Question is required", http.StatusBadRequest)
		return
	}

	portfolio, err := h.loadPortfolio(r)
	if err != nil {
		h.jsonError(w, "Failed to load portfolio: "+err.Error(), http.StatusInternalServerError)
		return
	}

	riskMetrics := h.computeRisk(portfolio)

	answer, err := h.advisorSvc.Ask(r.Context(), &advisor.Question{Text: req.Question}, portfolio, &riskMetrics)
	if err != nil {
		h.jsonError(w, "Advisor failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, http.StatusOK, answer)
}
