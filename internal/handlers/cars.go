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

// CarHandler exposes customer car registration and the per-car parts
// request history.
type CarHandler struct {
	cars    db.CarCollection
	service *requests.Service
}

// NewCarHandler creates a car handler.
func NewCarHandler(cars db.CarCollection, service *requests.Service) *CarHandler {
	return &CarHandler{cars: cars, service: service}
}

// Register handles POST /api/cars. The owning customer always comes
// from the authenticated claims.
func (h *CarHandler) Register(w http.ResponseWriter, r *http.Request) {
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
	var car models.Car
	if err := json.Unmarshal(body, &car); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if car.Make == "" || car.Model == "" || car.PlateNumber == "" {
		http.Error(w, "make, model and plate_number are required", http.StatusBadRequest)
		return
	}
	car.CustomerID = claims.UserID

	id, err := h.cars.InsertCar(r.Context(), &car)
	if err != nil {
		log.WithError(err).Error("Failed to register car")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// Mine handles GET /api/cars: the caller's registered cars.
func (h *CarHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	cars, err := h.cars.FindCarsByCustomer(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to list cars")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cars)
}

// Requests handles GET /api/cars/{id}/requests: the parts request
// history against one of the caller's cars, newest first.
func (h *CarHandler) Requests(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	car, err := h.cars.FindCarByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Car not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Invalid car ID", http.StatusBadRequest)
		return
	}
	if car.CustomerID != claims.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	list, err := h.service.ListForCustomerCar(r.Context(), claims.UserID, car.PlateNumber)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	response := struct {
		Car      models.CarDetails    `json:"car"`
		Requests []models.PartRequest `json:"requests"`
	}{
		Car:      car.Snapshot(),
		Requests: list,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
