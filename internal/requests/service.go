package requests

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/motohubdev/motohub/internal/db"
	"github.com/motohubdev/motohub/internal/models"
)

// Notifier delivers per-recipient notifications on lifecycle events.
// Implemented by notify.Fanout.
type Notifier interface {
	NotifyTransition(ctx context.Context, req *models.PartRequest, to models.RequestStatus, reason string) error
	NotifyFollowUp(ctx context.Context, req *models.PartRequest) error
}

// Service drives the parts-request lifecycle for the admin review and
// mechanic status surfaces.
type Service struct {
	requests db.RequestCollection
	notifier Notifier
}

// NewService creates a lifecycle service.
func NewService(requests db.RequestCollection, notifier Notifier) *Service {
	return &Service{requests: requests, notifier: notifier}
}

// Approve moves a pending request to approved and notifies the mechanic.
func (s *Service) Approve(ctx context.Context, id, actor string) (*models.PartRequest, error) {
	return s.transition(ctx, id, actor, models.StatusApproved, "")
}

// Reject moves a pending request to rejected; the reason is carried into
// the mechanic's notification and the request's admin notes.
func (s *Service) Reject(ctx context.Context, id, actor, reason string) (*models.PartRequest, error) {
	return s.transition(ctx, id, actor, models.StatusRejected, reason)
}

// MarkFulfilled moves an approved request to fulfilled.
func (s *Service) MarkFulfilled(ctx context.Context, id, actor string) (*models.PartRequest, error) {
	return s.transition(ctx, id, actor, models.StatusFulfilled, "")
}

// transition runs every status change through the single lifecycle guard
// and a conditional store write. A notification failure after a
// successful transition is logged and accepted; the transition stands.
func (s *Service) transition(ctx context.Context, id, actor string, to models.RequestStatus, reason string) (*models.PartRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(req.Status, to); err != nil {
		return nil, err
	}
	if err := s.requests.Transition(ctx, id, req.Status, to, reason); err != nil {
		if errors.Is(err, db.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: request was updated concurrently", ErrInvalidTransition)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"request_id": id,
		"from":       req.Status,
		"to":         to,
		"actor":      actor,
	}).Info("Parts request transitioned")

	if err := s.notifier.NotifyTransition(ctx, req, to, reason); err != nil {
		// No compensating rollback; the status update already stands.
		log.WithError(err).WithField("request_id", id).Error("Failed to deliver transition notification")
	}

	updated, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RequestFollowUp records a mechanic's nudge on their own pending
// request. The marker is set at most once per pending lifetime: a second
// call reports ErrFollowUpAlreadyRequested and writes nothing.
func (s *Service) RequestFollowUp(ctx context.Context, id, mechanicID string) (*models.PartRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.MechanicID != mechanicID {
		return nil, ErrNotOwner
	}
	if err := s.requests.SetFollowUp(ctx, id); err != nil {
		switch {
		case errors.Is(err, db.ErrAlreadyRequested):
			return nil, ErrFollowUpAlreadyRequested
		case errors.Is(err, db.ErrNotPending):
			return nil, fmt.Errorf("%w: follow-up only applies to pending requests", ErrInvalidTransition)
		default:
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"request_id":  id,
		"mechanic_id": mechanicID,
	}).Info("Follow-up requested")

	if err := s.notifier.NotifyFollowUp(ctx, req); err != nil {
		log.WithError(err).WithField("request_id", id).Error("Failed to deliver follow-up notification")
	}

	updated, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListByStatus returns requests in a lifecycle state, newest first.
func (s *Service) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.PartRequest, error) {
	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	requests, err := s.requests.FindByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	models.SortByCreatedAtDesc(requests)
	return requests, nil
}

// ListForMechanic returns a mechanic's own requests, newest first.
func (s *Service) ListForMechanic(ctx context.Context, mechanicID string) ([]models.PartRequest, error) {
	requests, err := s.requests.FindByMechanic(ctx, mechanicID)
	if err != nil {
		return nil, err
	}
	models.SortByCreatedAtDesc(requests)
	return requests, nil
}

// ListForCustomerCar returns requests against a customer vehicle, newest
// first.
func (s *Service) ListForCustomerCar(ctx context.Context, customerID, plateNumber string) ([]models.PartRequest, error) {
	requests, err := s.requests.FindByCustomerAndPlate(ctx, customerID, plateNumber)
	if err != nil {
		return nil, err
	}
	models.SortByCreatedAtDesc(requests)
	return requests, nil
}

// Counts recomputes aggregate totals over the full request list. The
// recompute is deliberately not incremental so repeated listener
// deliveries cannot skew it.
func (s *Service) Counts(ctx context.Context) (models.StatusCounts, error) {
	requests, err := s.requests.FindAll(ctx)
	if err != nil {
		return models.StatusCounts{}, err
	}
	return models.CountByStatus(requests), nil
}

// CountsForMechanic recomputes per-status totals of a mechanic's own
// requests for the status surface badges.
func (s *Service) CountsForMechanic(ctx context.Context, mechanicID string) (models.StatusCounts, error) {
	requests, err := s.requests.FindByMechanic(ctx, mechanicID)
	if err != nil {
		return models.StatusCounts{}, err
	}
	return models.CountByStatus(requests), nil
}
