package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/motohubdev/motohub/internal/models"
)

// MongoRequestCollection implements RequestCollection for MongoDB.
type MongoRequestCollection struct {
	Collection *mongo.Collection
}

// Insert persists a new parts request and returns its assigned id.
func (c *MongoRequestCollection) Insert(ctx context.Context, req *models.PartRequest) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Status = models.StatusPending
	req.ModificationCount = 0

	result, err := c.Collection.InsertOne(ctx, req)
	if err != nil {
		return "", err
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	req.ID = id
	return id.Hex(), nil
}

// FindByID finds a parts request by its id.
func (c *MongoRequestCollection) FindByID(ctx context.Context, id string) (*models.PartRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid request ID: %w", err)
	}
	var req models.PartRequest
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindByMechanic returns all requests filed by a mechanic.
func (c *MongoRequestCollection) FindByMechanic(ctx context.Context, mechanicID string) ([]models.PartRequest, error) {
	return c.find(ctx, bson.M{"mechanic_id": mechanicID})
}

// FindByCustomerAndPlate returns all requests against a customer's vehicle.
func (c *MongoRequestCollection) FindByCustomerAndPlate(ctx context.Context, customerID, plateNumber string) ([]models.PartRequest, error) {
	return c.find(ctx, bson.M{"customer_id": customerID, "car_details.plate_number": plateNumber})
}

// FindByStatus returns all requests in the given lifecycle state.
func (c *MongoRequestCollection) FindByStatus(ctx context.Context, status models.RequestStatus) ([]models.PartRequest, error) {
	return c.find(ctx, bson.M{"status": status})
}

// FindAll returns every parts request.
func (c *MongoRequestCollection) FindAll(ctx context.Context) ([]models.PartRequest, error) {
	return c.find(ctx, bson.M{})
}

// FindPendingForContext finds the pending request for a (mechanic,
// customer, plate) tuple, if one exists. At most one is expected; when
// duplicates slipped in, the newest wins.
func (c *MongoRequestCollection) FindPendingForContext(ctx context.Context, mechanicID, customerID, plateNumber string) (*models.PartRequest, error) {
	requests, err := c.find(ctx, bson.M{
		"mechanic_id":              mechanicID,
		"customer_id":              customerID,
		"car_details.plate_number": plateNumber,
		"status":                   models.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, ErrNotFound
	}
	models.SortByCreatedAtDesc(requests)
	return &requests[0], nil
}

// ReplaceParts overwrites a pending request's parts array and increments
// its modification count. The status precondition keeps the write from
// touching a request an admin transitioned in the meantime.
func (c *MongoRequestCollection) ReplaceParts(ctx context.Context, id string, parts []models.RequestPart, notes string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid request ID: %w", err)
	}
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": models.StatusPending},
		bson.M{
			"$set": bson.M{"parts": parts, "notes": notes, "updated_at": time.Now()},
			"$inc": bson.M{"modification_count": 1},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return c.explainMiss(ctx, objectID)
	}
	return nil
}

// Transition moves a request from one status to another with an
// expected-status precondition. A concurrent transition that already
// moved the request off `from` surfaces as ErrStatusConflict rather
// than silently overwriting (no last-write-wins).
func (c *MongoRequestCollection) Transition(ctx context.Context, id string, from, to models.RequestStatus, adminNotes string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid request ID: %w", err)
	}
	now := time.Now()
	set := bson.M{"status": to, "updated_at": now}
	switch to {
	case models.StatusApproved:
		set["approved_at"] = now
	case models.StatusRejected:
		set["rejected_at"] = now
	case models.StatusFulfilled:
		set["fulfilled_at"] = now
	}
	if adminNotes != "" {
		set["admin_notes"] = adminNotes
	}
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, findErr := c.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return ErrStatusConflict
	}
	return nil
}

// SetFollowUp marks a pending request as having a follow-up nudge. The
// guard lives in the filter so a second call never double-writes even
// under concurrent delivery.
func (c *MongoRequestCollection) SetFollowUp(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid request ID: %w", err)
	}
	now := time.Now()
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{
			"_id":                 objectID,
			"status":              models.StatusPending,
			"follow_up_requested": bson.M{"$ne": true},
		},
		bson.M{"$set": bson.M{
			"follow_up_requested":    true,
			"follow_up_requested_at": now,
			"updated_at":             now,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return c.explainFollowUpMiss(ctx, objectID)
	}
	return nil
}

func (c *MongoRequestCollection) find(ctx context.Context, filter bson.M) ([]models.PartRequest, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var requests []models.PartRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// explainMiss distinguishes not-found from a failed pending precondition.
func (c *MongoRequestCollection) explainMiss(ctx context.Context, objectID primitive.ObjectID) error {
	var req models.PartRequest
	err := c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}
	return ErrNotPending
}

// explainFollowUpMiss distinguishes the three ways a follow-up write can
// fail to match: missing record, non-pending request, or the marker
// already being set.
func (c *MongoRequestCollection) explainFollowUpMiss(ctx context.Context, objectID primitive.ObjectID) error {
	var req models.PartRequest
	err := c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}
	if req.FollowUpRequested {
		return ErrAlreadyRequested
	}
	return ErrNotPending
}
