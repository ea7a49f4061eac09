package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus represents the lifecycle state of a parts request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusFulfilled RequestStatus = "fulfilled"
)

// IsValidStatus checks if a status is one of the known lifecycle states.
func IsValidStatus(status RequestStatus) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusFulfilled:
		return true
	default:
		return false
	}
}

// IsTerminalStatus reports whether a status has no outgoing transitions.
func IsTerminalStatus(status RequestStatus) bool {
	return status == StatusRejected || status == StatusFulfilled
}

// CarDetails is a denormalized snapshot of the vehicle a request is for,
// not a live reference to the customer's car record.
type CarDetails struct {
	Make        string `bson:"make" json:"make"`
	Model       string `bson:"model" json:"model"`
	Year        int    `bson:"year" json:"year"`
	PlateNumber string `bson:"plate_number" json:"plate_number"`
}

// RequestPart is one (part, quantity) line of a parts request. Name and
// price are snapshotted from inventory at submission time; later price
// changes do not retroactively affect the request.
type RequestPart struct {
	PartID        string  `bson:"part_id" json:"part_id"`
	Name          string  `bson:"name" json:"name"`
	Quantity      int     `bson:"quantity" json:"quantity"`
	Price         float64 `bson:"price" json:"price"` // shop local currency
	WorkPerformed string  `bson:"work_performed,omitempty" json:"work_performed,omitempty"`
}

// PartRequest represents a mechanic's request for parts against a
// customer's vehicle.
type PartRequest struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MechanicID          string             `bson:"mechanic_id" json:"mechanic_id"`
	MechanicName        string             `bson:"mechanic_name" json:"mechanic_name"`
	CustomerID          string             `bson:"customer_id" json:"customer_id"`
	CustomerName        string             `bson:"customer_name" json:"customer_name"`
	CarDetails          CarDetails         `bson:"car_details" json:"car_details"`
	Parts               []RequestPart      `bson:"parts" json:"parts"`
	Status              RequestStatus      `bson:"status" json:"status"`
	Urgent              bool               `bson:"urgent" json:"urgent"`
	Priority            string             `bson:"priority" json:"priority"` // "low", "medium", "high"
	FollowUpRequested   bool               `bson:"follow_up_requested" json:"follow_up_requested"`
	FollowUpRequestedAt *time.Time         `bson:"follow_up_requested_at,omitempty" json:"follow_up_requested_at,omitempty"`
	ModificationCount   int                `bson:"modification_count" json:"modification_count"`
	Notes               string             `bson:"notes" json:"notes"`
	AdminNotes          string             `bson:"admin_notes" json:"admin_notes"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
	ApprovedAt          *time.Time         `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	RejectedAt          *time.Time         `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
	FulfilledAt         *time.Time         `bson:"fulfilled_at,omitempty" json:"fulfilled_at,omitempty"`
}

// TotalCost sums quantity*price over the request's parts.
func (r *PartRequest) TotalCost() float64 {
	total := 0.0
	for _, p := range r.Parts {
		total += float64(p.Quantity) * p.Price
	}
	return total
}

// SortByCreatedAtDesc orders requests newest-first for display. The store
// gives no server-side ordering guarantee, so callers sort after fetch.
func SortByCreatedAtDesc(requests []PartRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
}

// StatusCounts holds aggregate request totals per lifecycle state.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Fulfilled int `json:"fulfilled"`
}

// Total returns the sum across all states.
func (c StatusCounts) Total() int {
	return c.Pending + c.Approved + c.Rejected + c.Fulfilled
}

// CountByStatus recomputes aggregate totals from a full request list.
// Recomputing rather than patching keeps the counts correct under
// duplicate or out-of-order listener deliveries.
func CountByStatus(requests []PartRequest) StatusCounts {
	var counts StatusCounts
	for _, r := range requests {
		switch r.Status {
		case StatusPending:
			counts.Pending++
		case StatusApproved:
			counts.Approved++
		case StatusRejected:
			counts.Rejected++
		case StatusFulfilled:
			counts.Fulfilled++
		}
	}
	return counts
}
