package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/motohubdev/motohub/internal/db"
	"github.com/motohubdev/motohub/internal/models"
)

type fakeNotificationStore struct {
	notifications map[string]*models.Notification
	markReadCalls int
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{notifications: make(map[string]*models.Notification)}
}

func (f *fakeNotificationStore) Insert(ctx context.Context, n *models.Notification) (string, error) {
	n.ID = primitive.NewObjectID()
	n.Read = false
	copied := *n
	f.notifications[n.ID.Hex()] = &copied
	return n.ID.Hex(), nil
}

func (f *fakeNotificationStore) FindByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id string) error {
	f.markReadCalls++
	n, ok := f.notifications[id]
	if !ok {
		return db.ErrNotFound
	}
	n.Read = true
	return nil
}

func (f *fakeNotificationStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

type fakeUserStore struct {
	users []models.User
}

func (f *fakeUserStore) InsertUser(ctx context.Context, user models.User) error {
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID.Hex() == id {
			return &f.users[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeUserStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, db.ErrNotFound
}

func (f *fakeUserStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, db.ErrNotFound
}

func (f *fakeUserStore) FindUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Role == role && u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) UpdateUser(ctx context.Context, id string, user models.User) error { return nil }
func (f *fakeUserStore) DeleteUser(ctx context.Context, id string) error                   { return nil }
func (f *fakeUserStore) UpdateLastLogin(ctx context.Context, id string) error              { return nil }

func sampleRequest(urgent bool) *models.PartRequest {
	return &models.PartRequest{
		ID:           primitive.NewObjectID(),
		MechanicID:   "mech-1",
		MechanicName: "Dana",
		CustomerID:   "cust-1",
		CarDetails:   models.CarDetails{Make: "Toyota", Model: "Corolla", Year: 2019, PlateNumber: "MH-1234"},
		Status:       models.StatusPending,
		Urgent:       urgent,
	}
}

func TestFanout_NotifyTransition_Approved(t *testing.T) {
	store := newFakeNotificationStore()
	fanout := NewFanout(store, &fakeUserStore{}, nil)
	req := sampleRequest(false)

	err := fanout.NotifyTransition(context.Background(), req, models.StatusApproved, "")
	assert.NoError(t, err)

	list, _ := store.FindByUser(context.Background(), "mech-1")
	assert.Len(t, list, 1)
	assert.Equal(t, models.NotifApproved, list[0].Type)
	assert.Equal(t, req.ID.Hex(), list[0].RequestID)
	assert.False(t, list[0].Read, "read must default to false explicitly")
	assert.Contains(t, list[0].Description, "MH-1234")
}

func TestFanout_NotifyTransition_RejectedCarriesReason(t *testing.T) {
	store := newFakeNotificationStore()
	fanout := NewFanout(store, &fakeUserStore{}, nil)

	err := fanout.NotifyTransition(context.Background(), sampleRequest(false), models.StatusRejected, "part discontinued")
	assert.NoError(t, err)

	list, _ := store.FindByUser(context.Background(), "mech-1")
	assert.Len(t, list, 1)
	assert.Equal(t, models.NotifRejected, list[0].Type)
	assert.Contains(t, list[0].Description, "part discontinued")
}

func TestFanout_NotifyTransition_UnknownStatus(t *testing.T) {
	fanout := NewFanout(newFakeNotificationStore(), &fakeUserStore{}, nil)
	err := fanout.NotifyTransition(context.Background(), sampleRequest(false), models.StatusPending, "")
	assert.Error(t, err)
}

func TestFanout_NotifyFollowUp_AllAdmins(t *testing.T) {
	store := newFakeNotificationStore()
	users := &fakeUserStore{users: []models.User{
		{ID: primitive.NewObjectID(), Role: models.RoleAdmin, IsActive: true},
		{ID: primitive.NewObjectID(), Role: models.RoleAdmin, IsActive: true},
		{ID: primitive.NewObjectID(), Role: models.RoleAdmin, IsActive: false},
		{ID: primitive.NewObjectID(), Role: models.RoleMechanic, IsActive: true},
	}}
	fanout := NewFanout(store, users, nil)

	err := fanout.NotifyFollowUp(context.Background(), sampleRequest(false))
	assert.NoError(t, err)
	assert.Len(t, store.notifications, 2, "one notification per active admin")
	for _, n := range store.notifications {
		assert.Equal(t, models.NotifFollowUp, n.Type)
		assert.False(t, n.Read)
	}
}

func TestFanout_NotifyFollowUp_UrgentType(t *testing.T) {
	store := newFakeNotificationStore()
	users := &fakeUserStore{users: []models.User{
		{ID: primitive.NewObjectID(), Role: models.RoleAdmin, IsActive: true},
	}}
	fanout := NewFanout(store, users, nil)

	err := fanout.NotifyFollowUp(context.Background(), sampleRequest(true))
	assert.NoError(t, err)
	for _, n := range store.notifications {
		assert.Equal(t, models.NotifUrgent, n.Type)
	}
}

func TestFanout_MarkRead_Idempotent(t *testing.T) {
	store := newFakeNotificationStore()
	fanout := NewFanout(store, &fakeUserStore{}, nil)

	_ = fanout.NotifyTransition(context.Background(), sampleRequest(false), models.StatusApproved, "")
	var id string
	for k := range store.notifications {
		id = k
	}

	assert.NoError(t, fanout.MarkRead(context.Background(), id))
	assert.True(t, store.notifications[id].Read)

	// Marking again is harmless.
	assert.NoError(t, fanout.MarkRead(context.Background(), id))
	assert.True(t, store.notifications[id].Read)
	assert.Len(t, store.notifications, 1)
}
