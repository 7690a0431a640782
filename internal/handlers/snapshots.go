package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ravila/patrimonio/internal/models"
)

// APISnapshots lists snapshot dates or captures a new snapshot
func (h *Handler) APISnapshots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		dates, err := h.snapshots.ListDates(r.Context())
		if err != nil {
			h.jsonError(w, "Failed to list snapshots: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.jsonResponse(w, http.StatusOK, map[string]interface{}{
			"dates": dates,
			"count": len(dates),
		})

	case http.MethodPost:
		portfolio, err := h.loadPortfolio(r)
		if err != nil {
			h.jsonError(w, "Failed to load portfolio: "+err.Error(), http.StatusInternalServerError)
			return
		}

		snapshot := models.NewSnapshot(portfolio, time.Now().UTC())
		if !snapshot.Valid() {
			h.jsonError(w, "Refusing to store an empty snapshot", http.StatusUnprocessableEntity)
			return
		}
		if err := h.snapshots.Put(r.Context(), snapshot); err != nil {
			h.jsonError(w, "Failed to store snapshot: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.jsonResponse(w, http.StatusCreated, snapshot)

	default:
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// APISnapshotByDate retrieves or deletes a snapshot by date
func (h *Handler) APISnapshotByDate(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimPrefix(r.URL.Path, "/api/snapshots/")
	if _, err := time.Parse(models.SnapshotDateLayout, date); err != nil {
		h.jsonError(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		snapshot, err := h.snapshots.Get(r.Context(), date)
		if err != nil {
			h.jsonError(w, "Failed to load snapshot: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if snapshot == nil {
			h.jsonError(w, "Snapshot not found", http.StatusNotFound)
			return
		}
		h.jsonResponse(w, http.StatusOK, snapshot)

	case http.MethodDelete:
		if err := h.snapshots.Delete(r.Context(), date); err != nil {
			h.jsonError(w, "Failed to delete snapshot: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.jsonResponse(w, http.StatusOK, map[string]string{"deleted": date})

	default:
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
