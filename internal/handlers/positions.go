package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ravila/patrimonio/internal/models"
)

// APIPositions handles the position collection
func (h *Handler) APIPositions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		positions, err := h.positions.List()
		if err != nil {
			h.jsonError(w, "Failed to load positions: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.jsonResponse(w, http.StatusOK, positions)

	case http.MethodPost:
		var position models.Position
		if err := json.NewDecoder(r.Body).Decode(&position); err != nil {
			h.jsonError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if position.Name == "" {
			h.jsonError(w, "Position name is required", http.StatusBadRequest)
			return
		}
		if position.Category == "" {
			h.jsonError(w, "Position category is required", http.StatusBadRequest)
			return
		}
		if err := h.positions.Create(&position); err != nil {
			h.jsonError(w, "Failed to create position: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.advisorSvc.InvalidateCache()
		h.jsonResponse(w, http.StatusCreated, position)

	default:
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// APIPositionByID handles a single position
func (h *Handler) APIPositionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/positions/")
	if id == "" {
		h.jsonError(w, "Position id is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		position, err := h.positions.GetByID(id)
		if err != nil {
			h.jsonError(w, "Failed to load position: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if position == nil {
			h.jsonError(w, "Position not found", http.StatusNotFound)
			return
		}
		h.jsonResponse(w, http.StatusOK, position)

	case http.MethodPut:
		var position models.Position
		if err := json.NewDecoder(r.Body).Decode(&position); err != nil {
			h.jsonError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		position.ID = id
		if err := h.positions.Update(&position); err != nil {
			h.jsonError(w, "Failed to update position: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.advisorSvc.InvalidateCache()
		h.jsonResponse(w, http.StatusOK, position)

	case http.MethodDelete:
		if err := h.positions.Delete(id); err != nil {
			h.jsonError(w, "Failed to delete position: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.advisorSvc.InvalidateCache()
		h.jsonResponse(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// APIProfile handles the investor profile
func (h *Handler) APIProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		profile, err := h.profiles.Get()
		if err != nil {
			h.jsonError(w, "Failed to load profile: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.jsonResponse(w, http.StatusOK, profile)

	case http.MethodPut:
		var profile models.InvestorProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			h.jsonError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if _, ok := models.RiskProfiles[profile.RiskTolerance]; !ok {
			h.jsonError(w, "Unknown risk tolerance: "+profile.RiskTolerance, http.StatusBadRequest)
			return
		}
		if err := h.profiles.Save(&profile); err != nil {
			h.jsonError(w, "Failed to save profile: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.advisorSvc.InvalidateCache()
		h.jsonResponse(w, http.StatusOK, profile)

	default:
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
