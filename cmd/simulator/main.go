package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// The simulator drives the parts-request API end to end: simulated
// mechanics file and follow up requests, a simulated admin reviews them.
// It is a load/demo tool, not part of the service.

type carDetails struct {
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	PlateNumber string `json:"plate_number"`
}

type selection struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
}

type submitRequest struct {
	CustomerID   string      `json:"customer_id"`
	CustomerName string      `json:"customer_name"`
	CarDetails   carDetails  `json:"car_details"`
	Selections   []selection `json:"selections"`
	Urgent       bool        `json:"urgent"`
	Notes        string      `json:"notes"`
}

type partRecord struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type requestRecord struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

var carMakes = []string{"Toyota", "Honda", "Ford", "BMW", "Nissan"}
var carModels = []string{"Corolla", "Civic", "Focus", "320i", "Sentra"}

func randomCar() carDetails {
	return carDetails{
		Make:        carMakes[rand.Intn(len(carMakes))],
		Model:       carModels[rand.Intn(len(carModels))],
		Year:        2012 + rand.Intn(13),
		PlateNumber: fmt.Sprintf("MH-%04d", rand.Intn(10000)),
	}
}

func authorizedDo(method, url, token string, body *bytes.Buffer) (*http.Response, error) {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func fetchParts(apiURL, token string) ([]partRecord, error) {
	resp, err := authorizedDo(http.MethodGet, apiURL+"/parts", token, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parts fetch failed with status: %d", resp.StatusCode)
	}
	var parts []partRecord
	if err := json.NewDecoder(resp.Body).Decode(&parts); err != nil {
		return nil, fmt.Errorf("failed to decode parts: %w", err)
	}
	return parts, nil
}

type mechanicState struct {
	Token string
	Name  string
	Car   carDetails
}

func (m *mechanicState) submitRequest(apiURL string, parts []partRecord) {
	count := 1 + rand.Intn(3)
	selections := make([]selection, 0, count)
	for i := 0; i < count; i++ {
		part := parts[rand.Intn(len(parts))]
		selections = append(selections, selection{PartID: part.ID, Quantity: 1 + rand.Intn(4)})
	}

	// Resubmitting against the same plate exercises the pending-merge
	// path on the server.
	if rand.Float64() < 0.3 {
		m.Car = randomCar()
	}

	payload := submitRequest{
		CustomerID:   fmt.Sprintf("customer-%d", rand.Intn(20)),
		CustomerName: "Sim Customer",
		CarDetails:   m.Car,
		Selections:   selections,
		Urgent:       rand.Float64() < 0.2,
		Notes:        "simulated workload",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("Failed to marshal submission")
		return
	}

	resp, err := authorizedDo(http.MethodPost, apiURL+"/requests", m.Token, bytes.NewBuffer(data))
	if err != nil {
		log.WithError(err).Error("Failed to submit parts request")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{
		"mechanic": m.Name,
		"plate":    m.Car.PlateNumber,
		"parts":    len(selections),
		"status":   resp.Status,
	}).Info("Submitted parts request")
}

func simulateMechanic(apiURL string, m *mechanicState, parts []partRecord, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		m.submitRequest(apiURL, parts)
	}
}

func simulateAdmin(apiURL, token string, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		resp, err := authorizedDo(http.MethodGet, apiURL+"/requests?status=pending", token, nil)
		if err != nil {
			log.WithError(err).Error("Failed to list pending requests")
			continue
		}
		var pending []requestRecord
		err = json.NewDecoder(resp.Body).Decode(&pending)
		resp.Body.Close()
		if err != nil || len(pending) == 0 {
			continue
		}

		req := pending[rand.Intn(len(pending))]
		action := "approve"
		var body *bytes.Buffer
		if rand.Float64() < 0.25 {
			action = "reject"
			data, _ := json.Marshal(map[string]string{"reason": "not in stock"})
			body = bytes.NewBuffer(data)
		}
		url := fmt.Sprintf("%s/requests/%s/%s", apiURL, req.ID, action)
		actResp, err := authorizedDo(http.MethodPost, url, token, body)
		if err != nil {
			log.WithError(err).Error("Failed to transition request")
			continue
		}
		actResp.Body.Close()
		log.WithFields(log.Fields{
			"request_id": req.ID,
			"action":     action,
			"status":     actResp.Status,
		}).Info("Reviewed parts request")
	}
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	mechanicToken := os.Getenv("SIM_MECHANIC_TOKEN")
	adminToken := os.Getenv("SIM_ADMIN_TOKEN")

	mechanics := 3
	if v := os.Getenv("SIM_MECHANICS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			mechanics = n
		}
	}

	interval := 5 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	log.WithFields(log.Fields{
		"mechanics": mechanics,
		"api_url":   apiURL,
		"interval":  interval,
	}).Info("Starting shop simulation")

	parts, err := fetchParts(apiURL, mechanicToken)
	if err != nil || len(parts) == 0 {
		log.WithError(err).Error("No inventory available. Seed parts and set SIM_MECHANIC_TOKEN. Exiting.")
		return
	}

	for i := 0; i < mechanics; i++ {
		m := &mechanicState{
			Token: mechanicToken,
			Name:  fmt.Sprintf("mechanic-%d", i+1),
			Car:   randomCar(),
		}
		go simulateMechanic(apiURL, m, parts, interval)
	}
	go simulateAdmin(apiURL, adminToken, interval*2)

	log.Info("Shop simulation started")
	select {} // Block forever
}
