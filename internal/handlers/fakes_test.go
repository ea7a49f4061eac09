package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/motohubdev/motohub/internal/db"
	"github.com/motohubdev/motohub/internal/middleware"
	"github.com/motohubdev/motohub/internal/models"
)

// withClaims injects authenticated claims the way the middleware does.
func withClaims(r *http.Request, claims *models.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, claims)
	return r.WithContext(ctx)
}

func mechanicClaims(id string) *models.Claims {
	return &models.Claims{UserID: id, Username: "mech-" + id, Role: models.RoleMechanic}
}

func adminClaims(id string) *models.Claims {
	return &models.Claims{UserID: id, Username: "admin-" + id, Role: models.RoleAdmin}
}

// memRequestStore is an in-memory db.RequestCollection for handler tests.
type memRequestStore struct {
	requests map[string]*models.PartRequest
}

func newMemRequestStore() *memRequestStore {
	return &memRequestStore{requests: make(map[string]*models.PartRequest)}
}

func (s *memRequestStore) Insert(ctx context.Context, req *models.PartRequest) (string, error) {
	now := time.Now()
	req.ID = primitive.NewObjectID()
	req.Status = models.StatusPending
	req.ModificationCount = 0
	req.CreatedAt = now
	req.UpdatedAt = now
	copied := *req
	s.requests[req.ID.Hex()] = &copied
	return req.ID.Hex(), nil
}

func (s *memRequestStore) FindByID(ctx context.Context, id string) (*models.PartRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (s *memRequestStore) FindByMechanic(ctx context.Context, mechanicID string) ([]models.PartRequest, error) {
	return s.filter(func(r *models.PartRequest) bool { return r.MechanicID == mechanicID }), nil
}

func (s *memRequestStore) FindByCustomerAndPlate(ctx context.Context, customerID, plateNumber string) ([]models.PartRequest, error) {
	return s.filter(func(r *models.PartRequest) bool {
		return r.CustomerID == customerID && r.CarDetails.PlateNumber == plateNumber
	}), nil
}

func (s *memRequestStore) FindByStatus(ctx context.Context, status models.RequestStatus) ([]models.PartRequest, error) {
	return s.filter(func(r *models.PartRequest) bool { return r.Status == status }), nil
}

func (s *memRequestStore) FindAll(ctx context.Context) ([]models.PartRequest, error) {
	return s.filter(func(r *models.PartRequest) bool { return true }), nil
}

func (s *memRequestStore) FindPendingForContext(ctx context.Context, mechanicID, customerID, plateNumber string) (*models.PartRequest, error) {
	matches := s.filter(func(r *models.PartRequest) bool {
		return r.MechanicID == mechanicID && r.CustomerID == customerID &&
			r.CarDetails.PlateNumber == plateNumber && r.Status == models.StatusPending
	})
	if len(matches) == 0 {
		return nil, db.ErrNotFound
	}
	return &matches[0], nil
}

func (s *memRequestStore) ReplaceParts(ctx context.Context, id string, parts []models.RequestPart, notes string) error {
	req, ok := s.requests[id]
	if !ok {
		return db.ErrNotFound
	}
	if req.Status != models.StatusPending {
		return db.ErrNotPending
	}
	req.Parts = parts
	req.Notes = notes
	req.ModificationCount++
	req.UpdatedAt = time.Now()
	return nil
}

func (s *memRequestStore) Transition(ctx context.Context, id string, from, to models.RequestStatus, adminNotes string) error {
	req, ok := s.requests[id]
	if !ok {
		return db.ErrNotFound
	}
	if req.Status != from {
		return db.ErrStatusConflict
	}
	now := time.Now()
	req.Status = to
	req.UpdatedAt = now
	switch to {
	case models.StatusApproved:
		req.ApprovedAt = &now
	case models.StatusRejected:
		req.RejectedAt = &now
	case models.StatusFulfilled:
		req.FulfilledAt = &now
	}
	if adminNotes != "" {
		req.AdminNotes = adminNotes
	}
	return nil
}

func (s *memRequestStore) SetFollowUp(ctx context.Context, id string) error {
	req, ok := s.requests[id]
	if !ok {
		return db.ErrNotFound
	}
	if req.FollowUpRequested {
		return db.ErrAlreadyRequested
	}
	if req.Status != models.StatusPending {
		return db.ErrNotPending
	}
	now := time.Now()
	req.FollowUpRequested = true
	req.FollowUpRequestedAt = &now
	return nil
}

func (s *memRequestStore) filter(keep func(*models.PartRequest) bool) []models.PartRequest {
	var out []models.PartRequest
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, *r)
		}
	}
	return out
}

// memInventory is an in-memory db.PartCollection.
type memInventory struct {
	parts map[string]models.Part
}

func newMemInventory(parts ...models.Part) *memInventory {
	inv := &memInventory{parts: make(map[string]models.Part)}
	for _, p := range parts {
		inv.parts[p.ID.Hex()] = p
	}
	return inv
}

func (f *memInventory) InsertPart(ctx context.Context, part models.Part) (string, error) {
	if part.ID.IsZero() {
		part.ID = primitive.NewObjectID()
	}
	f.parts[part.ID.Hex()] = part
	return part.ID.Hex(), nil
}

func (f *memInventory) FindPartByID(ctx context.Context, id string) (*models.Part, error) {
	part, ok := f.parts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &part, nil
}

func (f *memInventory) FindParts(ctx context.Context) ([]models.Part, error) {
	out := make([]models.Part, 0, len(f.parts))
	for _, p := range f.parts {
		out = append(out, p)
	}
	return out, nil
}

func (f *memInventory) UpdatePart(ctx context.Context, id string, part models.Part) error {
	if _, ok := f.parts[id]; !ok {
		return db.ErrNotFound
	}
	f.parts[id] = part
	return nil
}

func (f *memInventory) AdjustStock(ctx context.Context, id string, delta int) error {
	part, ok := f.parts[id]
	if !ok {
		return db.ErrNotFound
	}
	part.Stock += delta
	f.parts[id] = part
	return nil
}

func (f *memInventory) DeletePart(ctx context.Context, id string) error {
	if _, ok := f.parts[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.parts, id)
	return nil
}

// memNotificationStore is an in-memory db.NotificationCollection.
type memNotificationStore struct {
	notifications map[string]*models.Notification
}

func newMemNotificationStore() *memNotificationStore {
	return &memNotificationStore{notifications: make(map[string]*models.Notification)}
}

func (f *memNotificationStore) Insert(ctx context.Context, n *models.Notification) (string, error) {
	n.ID = primitive.NewObjectID()
	n.Read = false
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	copied := *n
	f.notifications[n.ID.Hex()] = &copied
	return n.ID.Hex(), nil
}

func (f *memNotificationStore) FindByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	out := make([]models.Notification, 0)
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *memNotificationStore) MarkRead(ctx context.Context, id string) error {
	n, ok := f.notifications[id]
	if !ok {
		return db.ErrNotFound
	}
	n.Read = true
	return nil
}

func (f *memNotificationStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// memReportStore is an in-memory db.ReportCollection.
type memReportStore struct {
	reports map[string]*models.ServiceReport
}

func newMemReportStore() *memReportStore {
	return &memReportStore{reports: make(map[string]*models.ServiceReport)}
}

func (f *memReportStore) InsertReport(ctx context.Context, report *models.ServiceReport) (string, error) {
	report.ID = primitive.NewObjectID()
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	copied := *report
	f.reports[report.ID.Hex()] = &copied
	return report.ID.Hex(), nil
}

func (f *memReportStore) FindReportByID(ctx context.Context, id string) (*models.ServiceReport, error) {
	report, ok := f.reports[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *report
	return &copied, nil
}

func (f *memReportStore) FindReportsByCar(ctx context.Context, customerID, carID string) ([]models.ServiceReport, error) {
	out := make([]models.ServiceReport, 0)
	for _, r := range f.reports {
		if r.CustomerID == customerID && r.CarID == carID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *memReportStore) FindReportsByMechanic(ctx context.Context, mechanicID string) ([]models.ServiceReport, error) {
	out := make([]models.ServiceReport, 0)
	for _, r := range f.reports {
		if r.MechanicID == mechanicID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *memReportStore) UpdateReport(ctx context.Context, id string, report models.ServiceReport) error {
	if _, ok := f.reports[id]; !ok {
		return db.ErrNotFound
	}
	report.UpdatedAt = time.Now()
	stored := report
	f.reports[id] = &stored
	return nil
}

// memCarStore is an in-memory db.CarCollection.
type memCarStore struct {
	cars map[string]*models.Car
}

func newMemCarStore() *memCarStore {
	return &memCarStore{cars: make(map[string]*models.Car)}
}

func (f *memCarStore) InsertCar(ctx context.Context, car *models.Car) (string, error) {
	car.ID = primitive.NewObjectID()
	car.CreatedAt = time.Now()
	copied := *car
	f.cars[car.ID.Hex()] = &copied
	return car.ID.Hex(), nil
}

func (f *memCarStore) FindCarByID(ctx context.Context, id string) (*models.Car, error) {
	car, ok := f.cars[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *car
	return &copied, nil
}

func (f *memCarStore) FindCarsByCustomer(ctx context.Context, customerID string) ([]models.Car, error) {
	out := make([]models.Car, 0)
	for _, c := range f.cars {
		if c.CustomerID == customerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *memCarStore) DeleteCar(ctx context.Context, id string) error {
	if _, ok := f.cars[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.cars, id)
	return nil
}

// noopNotifier satisfies requests.Notifier without side effects.
type noopNotifier struct{}

func (noopNotifier) NotifyTransition(ctx context.Context, req *models.PartRequest, to models.RequestStatus, reason string) error {
	return nil
}

func (noopNotifier) NotifyFollowUp(ctx context.Context, req *models.PartRequest) error {
	return nil
}
