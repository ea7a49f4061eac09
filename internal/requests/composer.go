package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/motohubdev/motohub/internal/db"
	"github.com/motohubdev/motohub/internal/models"
)

// PendingMergeWindow bounds how old a pending request may be, relative to
// the triggering service report, and still absorb a resubmission. The
// 24-hour value is inherited shop policy without a stated rationale; it
// is a named knob rather than a buried literal for that reason.
const PendingMergeWindow = 24 * time.Hour

// Selection is one (part, quantity) pick from the composer.
type Selection struct {
	PartID        string `json:"part_id"`
	Quantity      int    `json:"quantity"`
	WorkPerformed string `json:"work_performed,omitempty"`
}

// SubmitInput is the context a parts request is composed against.
type SubmitInput struct {
	MechanicID      string             `json:"mechanic_id"`
	MechanicName    string             `json:"mechanic_name"`
	CustomerID      string             `json:"customer_id"`
	CustomerName    string             `json:"customer_name"`
	CarDetails      models.CarDetails  `json:"car_details"`
	ReportTimestamp time.Time          `json:"report_timestamp"`
	Selections      []Selection        `json:"selections"`
	Urgent          bool               `json:"urgent"`
	Priority        string             `json:"priority"`
	Notes           string             `json:"notes"`
}

// SubmitResult reports what the composer did with a submission.
type SubmitResult struct {
	RequestID string `json:"request_id"`
	Merged    bool   `json:"merged"`
}

// Composer builds parts requests: it snapshots inventory names and prices
// at submission time and merges resubmissions into the mechanic's still
// pending request for the same customer and plate instead of creating a
// duplicate.
type Composer struct {
	requests  db.RequestCollection
	inventory db.PartCollection
}

// NewComposer creates a request composer.
func NewComposer(requests db.RequestCollection, inventory db.PartCollection) *Composer {
	return &Composer{requests: requests, inventory: inventory}
}

// Submit creates or updates a parts request from the given selections.
// Zero selections fail with ErrNoPartsSelected before any store access.
func (c *Composer) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if len(input.Selections) == 0 {
		return nil, ErrNoPartsSelected
	}

	parts, err := c.resolveParts(ctx, input.Selections)
	if err != nil {
		return nil, err
	}

	existing, err := c.requests.FindPendingForContext(ctx, input.MechanicID, input.CustomerID, input.CarDetails.PlateNumber)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to search pending requests: %w", err)
	}

	if existing != nil && c.withinMergeWindow(existing, input.ReportTimestamp) {
		// Replace, not append: the new selection is the whole truth of
		// what the mechanic wants for this vehicle.
		if err := c.requests.ReplaceParts(ctx, existing.ID.Hex(), parts, input.Notes); err != nil {
			return nil, fmt.Errorf("failed to update pending request: %w", err)
		}
		log.WithFields(log.Fields{
			"request_id":  existing.ID.Hex(),
			"mechanic_id": input.MechanicID,
			"parts":       len(parts),
		}).Info("Merged parts selection into pending request")
		return &SubmitResult{RequestID: existing.ID.Hex(), Merged: true}, nil
	}

	req := &models.PartRequest{
		MechanicID:   input.MechanicID,
		MechanicName: input.MechanicName,
		CustomerID:   input.CustomerID,
		CustomerName: input.CustomerName,
		CarDetails:   input.CarDetails,
		Parts:        parts,
		Urgent:       input.Urgent,
		Priority:     input.Priority,
		Notes:        input.Notes,
	}
	id, err := c.requests.Insert(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create parts request: %w", err)
	}
	log.WithFields(log.Fields{
		"request_id":  id,
		"mechanic_id": input.MechanicID,
		"customer_id": input.CustomerID,
		"parts":       len(parts),
	}).Info("Created parts request")
	return &SubmitResult{RequestID: id, Merged: false}, nil
}

// resolveParts snapshots inventory name and price for each selection.
func (c *Composer) resolveParts(ctx context.Context, selections []Selection) ([]models.RequestPart, error) {
	parts := make([]models.RequestPart, 0, len(selections))
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity %d for part %s", sel.Quantity, sel.PartID)
		}
		part, err := c.inventory.FindPartByID(ctx, sel.PartID)
		if err != nil {
			return nil, fmt.Errorf("unknown part %s: %w", sel.PartID, err)
		}
		parts = append(parts, models.RequestPart{
			PartID:        sel.PartID,
			Name:          part.Name,
			Quantity:      sel.Quantity,
			Price:         part.Price,
			WorkPerformed: sel.WorkPerformed,
		})
	}
	return parts, nil
}

// withinMergeWindow applies the time-proximity heuristic: a pending
// request only absorbs a resubmission when it was created within
// PendingMergeWindow of the triggering report. A zero report timestamp
// means no report context, so identity match alone decides.
func (c *Composer) withinMergeWindow(existing *models.PartRequest, reportTimestamp time.Time) bool {
	if reportTimestamp.IsZero() {
		return true
	}
	delta := reportTimestamp.Sub(existing.CreatedAt)
	if delta < 0 {
		delta = -delta
	}
	return delta <= PendingMergeWindow
}
