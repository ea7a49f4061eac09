package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PartRef links a service report line to the request it was fulfilled
// from. It is the structured replacement for parsing part names back out
// of the PartsUsed string.
type PartRef struct {
	RequestID string `bson:"request_id" json:"request_id"`
	PartID    string `bson:"part_id" json:"part_id"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// ServiceReport is a mechanic's write-up of work done on a customer car.
// Diagnosis, WorkPerformed and PartsUsed are bullet-joined free text;
// PartsUsed additionally follows the "<name> (Qty: <n>)" convention that
// downstream consumers parse, so it is kept alongside PartRefs.
type ServiceReport struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID         string             `bson:"customer_id" json:"customer_id"`
	CarID              string             `bson:"car_id" json:"car_id"`
	MechanicID         string             `bson:"mechanic_id" json:"mechanic_id"`
	MechanicName       string             `bson:"mechanic_name" json:"mechanic_name"`
	AssistingMechanics []string           `bson:"assisting_mechanics,omitempty" json:"assisting_mechanics,omitempty"` // names only, no identity link
	Diagnosis          string             `bson:"diagnosis" json:"diagnosis"`
	WorkPerformed      string             `bson:"work_performed" json:"work_performed"`
	PartsUsed          string             `bson:"parts_used" json:"parts_used"`
	PartRefs           []PartRef          `bson:"part_refs,omitempty" json:"part_refs,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}
