// Package handlers provides the JSON API handlers
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/ravila/patrimonio/internal/config"
	"github.com/ravila/patrimonio/internal/models"
	"github.com/ravila/patrimonio/internal/services/advisor"
	"github.com/ravila/patrimonio/internal/services/marketdata"
	"github.com/ravila/patrimonio/internal/services/performance"
	"github.com/ravila/patrimonio/internal/services/risk"
	"github.com/ravila/patrimonio/internal/storage"
)

// Handler contains all HTTP handlers and dependencies
type Handler struct {
	cfg        *config.Config
	positions  *storage.PositionRepository
	profiles   *storage.ProfileRepository
	snapshots  storage.SnapshotStore
	riskSvc    *risk.Service
	perfSvc    *performance.Service
	marketSvc  *marketdata.Service
	advisorSvc *advisor.Service

	// Last portfolio that valued successfully, served when a live
	// refresh fails so the dashboard degrades instead of erroring.
	mu            sync.RWMutex
	lastPortfolio *models.Portfolio
}

// New creates a new handler with all dependencies
func New(
	cfg *config.Config,
	positions *storage.PositionRepository,
	profiles *storage.ProfileRepository,
	snapshots storage.SnapshotStore,
	riskSvc *risk.Service,
	perfSvc *performance.Service,
	marketSvc *marketdata.Service,
	advisorSvc *advisor.Service,
) *Handler {
	return &Handler{
		cfg:        cfg,
		positions:  positions,
		profiles:   profiles,
		snapshots:  snapshots,
		riskSvc:    riskSvc,
		perfSvc:    perfSvc,
		marketSvc:  marketSvc,
		advisorSvc: advisorSvc,
	}
}

// Routes registers all API routes on the mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/api/dashboard", h.APIDashboard)
	mux.HandleFunc("/api/risk", h.APIRisk)
	mux.HandleFunc("/api/performance", h.APIPerformance)
	mux.HandleFunc("/api/positions", h.APIPositions)
	mux.HandleFunc("/api/positions/", h.APIPositionByID)
	mux.HandleFunc("/api/profile", h.APIProfile)
	mux.HandleFunc("/api/snapshots", h.APISnapshots)
	mux.HandleFunc("/api/snapshots/", h.APISnapshotByDate)
	mux.HandleFunc("/api/market/quote", h.APIQuote)
	mux.HandleFunc("/api/market/volatility", h.APIVolatility)
	mux.HandleFunc("/api/advisor/ask", h.AdvisorAsk)
}

// loadPortfolio assembles the portfolio from storage and, when
// possible, revalues it from live quotes. A failed refresh falls back
// to stored values, then to the last successful valuation.
func (h *Handler) loadPortfolio(r *http.Request) (*models.Portfolio, error) {
	positions, err := h.positions.List()
	if err != nil {
		h.mu.RLock()
		last := h.lastPortfolio
		h.mu.RUnlock()
		if last != nil {
			log.Printf("WARN: position load failed, serving last valuation: %v", err)
			return last, nil
		}
		return nil, err
	}

	profile, err := h.profiles.Get()
	if err != nil {
		return nil, err
	}

	portfolio := &models.Portfolio{
		ID:        "family",
		Name:      "Family Portfolio",
		Profile:   *profile,
		Positions: positions,
	}

	if err := h.marketSvc.RefreshPortfolio(r.Context(), portfolio); err != nil {
		log.Printf("WARN: price refresh failed, using stored values: %v", err)
	}

	h.mu.Lock()
	h.lastPortfolio = portfolio
	h.mu.Unlock()

	return portfolio, nil
}

// jsonResponse writes a JSON response with the given status
func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode response: %v", err)
	}
}

// jsonError writes a JSON error response
func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// Healthz reports service health
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if err := h.snapshots.Ping(r.Context()); err != nil {
		status["snapshots"] = "degraded"
	} else {
		status["snapshots"] = "ok"
	}
	h.jsonResponse(w, http.StatusOK, status)
}
