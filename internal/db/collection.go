package db

import (
	"context"
	"errors"

	"github.com/motohubdev/motohub/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrStatusConflict   = errors.New("request status changed concurrently")
	ErrAlreadyRequested = errors.New("follow-up already requested")
	ErrNotPending       = errors.New("request is not pending")
)

// RequestCollection defines the interface for parts request operations.
type RequestCollection interface {
	Insert(ctx context.Context, req *models.PartRequest) (string, error)
	FindByID(ctx context.Context, id string) (*models.PartRequest, error)
	FindByMechanic(ctx context.Context, mechanicID string) ([]models.PartRequest, error)
	FindByCustomerAndPlate(ctx context.Context, customerID, plateNumber string) ([]models.PartRequest, error)
	FindByStatus(ctx context.Context, status models.RequestStatus) ([]models.PartRequest, error)
	FindAll(ctx context.Context) ([]models.PartRequest, error)
	FindPendingForContext(ctx context.Context, mechanicID, customerID, plateNumber string) (*models.PartRequest, error)
	ReplaceParts(ctx context.Context, id string, parts []models.RequestPart, notes string) error
	Transition(ctx context.Context, id string, from, to models.RequestStatus, adminNotes string) error
	SetFollowUp(ctx context.Context, id string) error
}

// NotificationCollection defines the interface for notification operations.
type NotificationCollection interface {
	Insert(ctx context.Context, n *models.Notification) (string, error)
	FindByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// PartCollection defines the interface for inventory operations.
type PartCollection interface {
	InsertPart(ctx context.Context, part models.Part) (string, error)
	FindPartByID(ctx context.Context, id string) (*models.Part, error)
	FindParts(ctx context.Context) ([]models.Part, error)
	UpdatePart(ctx context.Context, id string, part models.Part) error
	AdjustStock(ctx context.Context, id string, delta int) error
	DeletePart(ctx context.Context, id string) error
}

// ReportCollection defines the interface for service report operations.
type ReportCollection interface {
	InsertReport(ctx context.Context, report *models.ServiceReport) (string, error)
	FindReportByID(ctx context.Context, id string) (*models.ServiceReport, error)
	FindReportsByCar(ctx context.Context, customerID, carID string) ([]models.ServiceReport, error)
	FindReportsByMechanic(ctx context.Context, mechanicID string) ([]models.ServiceReport, error)
	UpdateReport(ctx context.Context, id string, report models.ServiceReport) error
}
