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

// MongoReportCollection implements ReportCollection for MongoDB.
type MongoReportCollection struct {
	Collection *mongo.Collection
}

// InsertReport persists a service report and returns its assigned id.
func (c *MongoReportCollection) InsertReport(ctx context.Context, report *models.ServiceReport) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	result, err := c.Collection.InsertOne(ctx, report)
	if err != nil {
		return "", err
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	report.ID = id
	return id.Hex(), nil
}

// FindReportByID finds a service report by its id.
func (c *MongoReportCollection) FindReportByID(ctx context.Context, id string) (*models.ServiceReport, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid report ID: %w", err)
	}
	var report models.ServiceReport
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// FindReportsByCar returns the service history of a customer's car.
func (c *MongoReportCollection) FindReportsByCar(ctx context.Context, customerID, carID string) ([]models.ServiceReport, error) {
	return c.find(ctx, bson.M{"customer_id": customerID, "car_id": carID})
}

// FindReportsByMechanic returns all reports authored by a mechanic.
func (c *MongoReportCollection) FindReportsByMechanic(ctx context.Context, mechanicID string) ([]models.ServiceReport, error) {
	return c.find(ctx, bson.M{"mechanic_id": mechanicID})
}

// UpdateReport updates a service report by its id.
func (c *MongoReportCollection) UpdateReport(ctx context.Context, id string, report models.ServiceReport) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid report ID: %w", err)
	}
	report.UpdatedAt = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": report})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoReportCollection) find(ctx context.Context, filter bson.M) ([]models.ServiceReport, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var reports []models.ServiceReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
