package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType classifies what a notification is about.
type NotificationType string

const (
	NotifRequest  NotificationType = "request"
	NotifApproved NotificationType = "approved"
	NotifRejected NotificationType = "rejected"
	NotifFollowUp NotificationType = "follow_up"
	NotifInfo     NotificationType = "info"
	NotifUrgent   NotificationType = "urgent"
)

// Notification is a per-recipient message written by the fan-out on a
// request lifecycle event. Notifications are only ever mutated to flip
// Read to true; they are never deleted in normal flow.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Type        NotificationType   `bson:"type" json:"type"`
	Status      RequestStatus      `bson:"status,omitempty" json:"status,omitempty"`
	Read        bool               `bson:"read" json:"read"`
	RequestID   string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}
