package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/motohubdev/motohub/internal/db"
	"github.com/motohubdev/motohub/internal/models"
)

// InventoryHandler exposes the parts inventory: lookup for the composer,
// management for admins.
type InventoryHandler struct {
	parts db.PartCollection
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(parts db.PartCollection) *InventoryHandler {
	return &InventoryHandler{parts: parts}
}

// List handles GET /api/parts.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	parts, err := h.parts.FindParts(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list parts")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(parts)
}

// Get handles GET /api/parts/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	part, err := h.parts.FindPartByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Part not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Invalid part ID", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(part)
}

// Create handles POST /api/parts.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var part models.Part
	if err := json.Unmarshal(body, &part); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if part.Name == "" {
		http.Error(w, "Part name is required", http.StatusBadRequest)
		return
	}
	if part.Price < 0 || part.Stock < 0 {
		http.Error(w, "Price and stock must be non-negative", http.StatusBadRequest)
		return
	}

	id, err := h.parts.InsertPart(r.Context(), part)
	if err != nil {
		log.WithError(err).Error("Failed to create part")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// AdjustStock handles POST /api/parts/{id}/stock with a signed delta.
func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.parts.AdjustStock(r.Context(), r.PathValue("id"), body.Delta); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Part not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to adjust stock")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LowStock handles GET /api/parts/low-stock. The threshold comparison is
// per part, so the filter runs client-side over the full fetch.
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	parts, err := h.parts.FindParts(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list parts")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	low := make([]models.Part, 0)
	for _, p := range parts {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(low)
}
