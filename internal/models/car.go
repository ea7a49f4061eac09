package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Car represents a customer-registered vehicle. PartRequest carries a
// CarDetails snapshot of these fields rather than a live reference.
type Car struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID  string             `bson:"customer_id" json:"customer_id"`
	Make        string             `bson:"make" json:"make"`
	Model       string             `bson:"model" json:"model"`
	Year        int                `bson:"year" json:"year"`
	PlateNumber string             `bson:"plate_number" json:"plate_number"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Snapshot copies the car's identifying fields into a CarDetails value.
func (c *Car) Snapshot() CarDetails {
	return CarDetails{
		Make:        c.Make,
		Model:       c.Model,
		Year:        c.Year,
		PlateNumber: c.PlateNumber,
	}
}
