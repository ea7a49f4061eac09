package requests

import (
	"errors"
	"testing"

	"github.com/motohubdev/motohub/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     models.RequestStatus
		to       models.RequestStatus
		expected bool
	}{
		{"pending to approved", models.StatusPending, models.StatusApproved, true},
		{"pending to rejected", models.StatusPending, models.StatusRejected, true},
		{"approved to fulfilled", models.StatusApproved, models.StatusFulfilled, true},
		{"pending to fulfilled", models.StatusPending, models.StatusFulfilled, false},
		{"pending to pending", models.StatusPending, models.StatusPending, false},
		{"approved to rejected", models.StatusApproved, models.StatusRejected, false},
		{"approved to pending", models.StatusApproved, models.StatusPending, false},
		{"rejected is terminal", models.StatusRejected, models.StatusApproved, false},
		{"rejected to fulfilled", models.StatusRejected, models.StatusFulfilled, false},
		{"fulfilled is terminal", models.StatusFulfilled, models.StatusRejected, false},
		{"fulfilled to pending", models.StatusFulfilled, models.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestCheckTransition(t *testing.T) {
	if err := CheckTransition(models.StatusPending, models.StatusApproved); err != nil {
		t.Errorf("expected pending->approved to be allowed, got %v", err)
	}

	err := CheckTransition(models.StatusPending, models.StatusFulfilled)
	if err == nil {
		t.Fatal("expected error for pending->fulfilled")
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCheckTransition_UnknownStatus(t *testing.T) {
	err := CheckTransition("archived", models.StatusApproved)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for unknown status, got %v", err)
	}
}
