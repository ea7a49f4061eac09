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
	"github.com/motohubdev/motohub/internal/reports"
)

// ReportHandler exposes service reports, including the partsUsed bridge
// between reports and parts requests.
type ReportHandler struct {
	reports  db.ReportCollection
	requests db.RequestCollection
}

// NewReportHandler creates a service report handler.
func NewReportHandler(reportColl db.ReportCollection, requestColl db.RequestCollection) *ReportHandler {
	return &ReportHandler{reports: reportColl, requests: requestColl}
}

type createReportRequest struct {
	CustomerID         string   `json:"customer_id"`
	CarID              string   `json:"car_id"`
	AssistingMechanics []string `json:"assisting_mechanics"`
	Diagnosis          string   `json:"diagnosis"`
	WorkPerformed      string   `json:"work_performed"`
	RequestID          string   `json:"request_id"`
}

// Create handles POST /api/reports. When a request id is given, the
// report's partsUsed string and PartRefs are derived from that request's
// parts, so the legacy format and the structured link never disagree.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	var req createReportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.CustomerID == "" || req.CarID == "" {
		http.Error(w, "customer_id and car_id are required", http.StatusBadRequest)
		return
	}

	report := &models.ServiceReport{
		CustomerID:         req.CustomerID,
		CarID:              req.CarID,
		MechanicID:         claims.UserID,
		MechanicName:       claims.Username,
		AssistingMechanics: req.AssistingMechanics,
		Diagnosis:          req.Diagnosis,
		WorkPerformed:      req.WorkPerformed,
	}

	if req.RequestID != "" {
		partReq, err := h.requests.FindByID(r.Context(), req.RequestID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				http.Error(w, "Linked parts request not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Invalid request ID", http.StatusBadRequest)
			return
		}
		report.PartsUsed = reports.FormatPartsUsed(partReq.Parts)
		report.PartRefs = reports.BuildPartRefs(partReq)
	}

	id, err := h.reports.InsertReport(r.Context(), report)
	if err != nil {
		log.WithError(err).Error("Failed to create service report")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// ListByCar handles GET /api/reports?customer_id=&car_id=.
func (h *ReportHandler) ListByCar(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	carID := r.URL.Query().Get("car_id")
	if customerID == "" || carID == "" {
		http.Error(w, "customer_id and car_id are required", http.StatusBadRequest)
		return
	}

	list, err := h.reports.FindReportsByCar(r.Context(), customerID, carID)
	if err != nil {
		log.WithError(err).Error("Failed to list service reports")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Mine handles GET /api/reports/mine for the authoring mechanic.
func (h *ReportHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	list, err := h.reports.FindReportsByMechanic(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to list service reports")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}
