package requests

import (
	"errors"
	"fmt"

	"github.com/motohubdev/motohub/internal/models"
)

var (
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrNoPartsSelected          = errors.New("no parts selected")
	ErrNotOwner                 = errors.New("request belongs to another mechanic")
	ErrFollowUpAlreadyRequested = errors.New("follow-up already requested")
)

// allowedTransitions is the complete forward-only edge set. Rejected and
// fulfilled have no outgoing edges.
var allowedTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.StatusPending:  {models.StatusApproved, models.StatusRejected},
	models.StatusApproved: {models.StatusFulfilled},
}

// CanTransition reports whether moving a request from one status to
// another is allowed.
func CanTransition(from, to models.RequestStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition validates a requested edge, returning an error that
// wraps ErrInvalidTransition when the edge is not in the allowed set.
// Every surface that moves a request goes through this one guard.
func CheckTransition(from, to models.RequestStatus) error {
	if !models.IsValidStatus(from) || !models.IsValidStatus(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
