package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/motohubdev/motohub/internal/db"
	"github.com/motohubdev/motohub/internal/middleware"
	"github.com/motohubdev/motohub/internal/models"
	"github.com/motohubdev/motohub/internal/requests"
)

// RequestHandler exposes the parts-request lifecycle over HTTP: the
// composer for mechanics, the review surface for admins and the status
// surface for mechanics.
type RequestHandler struct {
	composer *requests.Composer
	service  *requests.Service
}

// NewRequestHandler creates a parts-request handler.
func NewRequestHandler(composer *requests.Composer, service *requests.Service) *RequestHandler {
	return &RequestHandler{composer: composer, service: service}
}

// Submit handles POST /api/requests. The mechanic identity always comes
// from the authenticated claims, never from the body.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var input requests.SubmitInput
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	input.MechanicID = claims.UserID
	if input.MechanicName == "" {
		input.MechanicName = claims.Username
	}

	result, err := h.composer.Submit(r.Context(), input)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Merged {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusCreated)
	}
	json.NewEncoder(w).Encode(result)
}

// List handles GET /api/requests, optionally filtered by ?status=.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	var (
		list []models.PartRequest
		err  error
	)
	if status == "" {
		list, err = h.service.ListByStatus(r.Context(), models.StatusPending)
	} else {
		list, err = h.service.ListByStatus(r.Context(), models.RequestStatus(status))
	}
	if err != nil {
		writeRequestError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Counts handles GET /api/requests/counts for the admin dashboard.
func (h *RequestHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Counts(r.Context())
	if err != nil {
		writeRequestError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}

// Mine handles GET /api/requests/mine: the mechanic status surface,
// requests plus per-status badge counts in one response.
func (h *RequestHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	list, err := h.service.ListForMechanic(r.Context(), claims.UserID)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	response := struct {
		Requests []models.PartRequest `json:"requests"`
		Counts   models.StatusCounts  `json:"counts"`
	}{
		Requests: list,
		Counts:   models.CountByStatus(list),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Approve handles POST /api/requests/{id}/approve.
func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, models.StatusApproved)
}

// Reject handles POST /api/requests/{id}/reject with an optional reason.
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, models.StatusRejected)
}

// Fulfill handles POST /api/requests/{id}/fulfill.
func (h *RequestHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, models.StatusFulfilled)
}

func (h *RequestHandler) adminTransition(w http.ResponseWriter, r *http.Request, to models.RequestStatus) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")

	var reason string
	if to == models.StatusRejected {
		var body struct {
			Reason string `json:"reason"`
		}
		if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
			if err := json.Unmarshal(data, &body); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
		}
		reason = body.Reason
	}

	var (
		updated *models.PartRequest
		err     error
	)
	switch to {
	case models.StatusApproved:
		updated, err = h.service.Approve(r.Context(), id, claims.UserID)
	case models.StatusRejected:
		updated, err = h.service.Reject(r.Context(), id, claims.UserID, reason)
	case models.StatusFulfilled:
		updated, err = h.service.MarkFulfilled(r.Context(), id, claims.UserID)
	}
	if err != nil {
		writeRequestError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// FollowUp handles POST /api/requests/{id}/follow-up. A repeat call is
// answered with 200 and an already-requested message, not an error.
func (h *RequestHandler) FollowUp(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")

	updated, err := h.service.RequestFollowUp(r.Context(), id, claims.UserID)
	if err != nil {
		if errors.Is(err, requests.ErrFollowUpAlreadyRequested) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"message": "Follow-up already requested",
			})
			return
		}
		writeRequestError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// writeRequestError maps domain errors onto HTTP status codes.
func writeRequestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, requests.ErrNoPartsSelected):
		http.Error(w, "No parts selected", http.StatusBadRequest)
	case errors.Is(err, requests.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, requests.ErrNotOwner):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Request not found", http.StatusNotFound)
	case errors.Is(err, db.ErrNotPending):
		http.Error(w, "Request is no longer pending", http.StatusConflict)
	default:
		log.WithError(err).Error("Parts request operation failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
