package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/motohubdev/motohub/internal/db"
	"github.com/motohubdev/motohub/internal/models"
)

// Fanout writes per-recipient notification records on lifecycle events
// and, when a broker is configured, publishes each one to the
// recipient's MQTT topic so live views update without polling.
type Fanout struct {
	notifications db.NotificationCollection
	users         db.UserCollection
	mqttClient    mqtt.Client
}

// NewFanout creates a notification fan-out. mqttClient may be nil; the
// fan-out then only writes store records.
func NewFanout(notifications db.NotificationCollection, users db.UserCollection, mqttClient mqtt.Client) *Fanout {
	return &Fanout{
		notifications: notifications,
		users:         users,
		mqttClient:    mqttClient,
	}
}

// ConnectMQTT connects to the broker named by brokerURL for live pushes.
func ConnectMQTT(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s failed: %w", brokerURL, err)
	}
	return client, nil
}

// NotifyTransition writes one notification to the requesting mechanic
// reflecting the outcome of an approve/reject/fulfill transition.
func (f *Fanout) NotifyTransition(ctx context.Context, req *models.PartRequest, to models.RequestStatus, reason string) error {
	n := &models.Notification{
		UserID:    req.MechanicID,
		Status:    to,
		RequestID: req.ID.Hex(),
		Timestamp: time.Now(),
	}
	plate := req.CarDetails.PlateNumber
	switch to {
	case models.StatusApproved:
		n.Type = models.NotifApproved
		n.Title = "Parts request approved"
		n.Description = fmt.Sprintf("Your parts request for %s has been approved.", plate)
	case models.StatusRejected:
		n.Type = models.NotifRejected
		n.Title = "Parts request rejected"
		n.Description = fmt.Sprintf("Your parts request for %s has been rejected.", plate)
		if reason != "" {
			n.Description = fmt.Sprintf("%s Reason: %s", n.Description, reason)
		}
	case models.StatusFulfilled:
		n.Type = models.NotifInfo
		n.Title = "Parts delivered"
		n.Description = fmt.Sprintf("Approved parts for %s have been delivered.", plate)
	default:
		return fmt.Errorf("no notification defined for status %q", to)
	}

	if _, err := f.notifications.Insert(ctx, n); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	f.publish(n)
	return nil
}

// NotifyFollowUp writes one follow-up notification to every active
// admin. The caller is responsible for the at-most-once follow-up guard
// on the request itself.
func (f *Fanout) NotifyFollowUp(ctx context.Context, req *models.PartRequest) error {
	admins, err := f.users.FindUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to resolve admin recipients: %w", err)
	}
	title := "Follow-up on parts request"
	description := fmt.Sprintf("%s is waiting on a pending parts request for %s.",
		req.MechanicName, req.CarDetails.PlateNumber)
	notifType := models.NotifFollowUp
	if req.Urgent {
		notifType = models.NotifUrgent
	}
	for _, admin := range admins {
		n := &models.Notification{
			UserID:      admin.ID.Hex(),
			Title:       title,
			Description: description,
			Type:        notifType,
			Status:      req.Status,
			RequestID:   req.ID.Hex(),
			Timestamp:   time.Now(),
		}
		if _, err := f.notifications.Insert(ctx, n); err != nil {
			return fmt.Errorf("failed to write follow-up notification for %s: %w", admin.ID.Hex(), err)
		}
		f.publish(n)
	}
	return nil
}

// MarkRead flips a notification's read flag; repeat calls are no-ops.
func (f *Fanout) MarkRead(ctx context.Context, id string) error {
	return f.notifications.MarkRead(ctx, id)
}

// publish pushes a notification to the recipient's live topic. Publish
// failures are logged and ignored; the store record is the source of
// truth and the UI falls back to fetching it.
func (f *Fanout) publish(n *models.Notification) {
	if f.mqttClient == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		log.WithError(err).Error("Failed to marshal notification for publish")
		return
	}
	topic := fmt.Sprintf("motohub/users/%s/notifications", n.UserID)
	token := f.mqttClient.Publish(topic, 0, false, payload)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.WithError(token.Error()).WithField("topic", topic).Error("Failed to publish notification")
	}
}
