package requests

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/motohubdev/motohub/internal/db"
	"github.com/motohubdev/motohub/internal/models"
)

// fakeRequestStore is an in-memory db.RequestCollection mirroring the
// Mongo implementation's conditional-update semantics.
type fakeRequestStore struct {
	mu       sync.Mutex
	requests map[string]*models.PartRequest
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: make(map[string]*models.PartRequest)}
}

func (s *fakeRequestStore) Insert(ctx context.Context, req *models.PartRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *fakeRequestStore) FindByID(ctx context.Context, id string) (*models.PartRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (s *fakeRequestStore) FindByMechanic(ctx context.Context, mechanicID string) ([]models.PartRequest, error) {
	return s.filter(func(r *models.PartRequest) bool { return r.MechanicID == mechanicID }), nil
}

func (s *fakeRequestStore) FindByCustomerAndPlate(ctx context.Context, customerID, plateNumber string) ([]models.PartRequest, error) {
	return s.filter(func(r *models.PartRequest) bool {
		return r.CustomerID == customerID && r.CarDetails.PlateNumber == plateNumber
	}), nil
}

func (s *fakeRequestStore) FindByStatus(ctx context.Context, status models.RequestStatus) ([]models.PartRequest, error) {
	return s.filter(func(r *models.PartRequest) bool { return r.Status == status }), nil
}

func (s *fakeRequestStore) FindAll(ctx context.Context) ([]models.PartRequest, error) {
	return s.filter(func(r *models.PartRequest) bool { return true }), nil
}

func (s *fakeRequestStore) FindPendingForContext(ctx context.Context, mechanicID, customerID, plateNumber string) (*models.PartRequest, error) {
	matches := s.filter(func(r *models.PartRequest) bool {
		return r.MechanicID == mechanicID && r.CustomerID == customerID &&
			r.CarDetails.PlateNumber == plateNumber && r.Status == models.StatusPending
	})
	if len(matches) == 0 {
		return nil, db.ErrNotFound
	}
	models.SortByCreatedAtDesc(matches)
	return &matches[0], nil
}

func (s *fakeRequestStore) ReplaceParts(ctx context.Context, id string, parts []models.RequestPart, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *fakeRequestStore) Transition(ctx context.Context, id string, from, to models.RequestStatus, adminNotes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *fakeRequestStore) SetFollowUp(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
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
	req.UpdatedAt = now
	return nil
}

func (s *fakeRequestStore) filter(keep func(*models.PartRequest) bool) []models.PartRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PartRequest
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, *r)
		}
	}
	return out
}

// setCreatedAt backdates a stored request for merge-window tests.
func (s *fakeRequestStore) setCreatedAt(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req, ok := s.requests[id]; ok {
		req.CreatedAt = at
	}
}

// fakeInventory is an in-memory db.PartCollection.
type fakeInventory struct {
	parts map[string]models.Part
}

func newFakeInventory(parts ...models.Part) *fakeInventory {
	inv := &fakeInventory{parts: make(map[string]models.Part)}
	for _, p := range parts {
		inv.parts[p.ID.Hex()] = p
	}
	return inv
}

func (f *fakeInventory) InsertPart(ctx context.Context, part models.Part) (string, error) {
	if part.ID.IsZero() {
		part.ID = primitive.NewObjectID()
	}
	f.parts[part.ID.Hex()] = part
	return part.ID.Hex(), nil
}

func (f *fakeInventory) FindPartByID(ctx context.Context, id string) (*models.Part, error) {
	part, ok := f.parts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &part, nil
}

func (f *fakeInventory) FindParts(ctx context.Context) ([]models.Part, error) {
	out := make([]models.Part, 0, len(f.parts))
	for _, p := range f.parts {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeInventory) UpdatePart(ctx context.Context, id string, part models.Part) error {
	if _, ok := f.parts[id]; !ok {
		return db.ErrNotFound
	}
	f.parts[id] = part
	return nil
}

func (f *fakeInventory) AdjustStock(ctx context.Context, id string, delta int) error {
	part, ok := f.parts[id]
	if !ok {
		return db.ErrNotFound
	}
	part.Stock += delta
	f.parts[id] = part
	return nil
}

func (f *fakeInventory) DeletePart(ctx context.Context, id string) error {
	if _, ok := f.parts[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.parts, id)
	return nil
}

// recordingNotifier counts fan-out calls and can simulate failures.
type recordingNotifier struct {
	transitions []models.RequestStatus
	followUps   int
	failWith    error
}

func (n *recordingNotifier) NotifyTransition(ctx context.Context, req *models.PartRequest, to models.RequestStatus, reason string) error {
	if n.failWith != nil {
		return n.failWith
	}
	n.transitions = append(n.transitions, to)
	return nil
}

func (n *recordingNotifier) NotifyFollowUp(ctx context.Context, req *models.PartRequest) error {
	if n.failWith != nil {
		return n.failWith
	}
	n.followUps++
	return nil
}
