package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/motohubdev/motohub/internal/db"
	"github.com/motohubdev/motohub/internal/middleware"
	"github.com/motohubdev/motohub/internal/notify"
)

// NotificationHandler exposes a user's notification feed.
type NotificationHandler struct {
	notifications db.NotificationCollection
	fanout        *notify.Fanout
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(notifications db.NotificationCollection, fanout *notify.Fanout) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, fanout: fanout}
}

// List handles GET /api/notifications: the caller's feed, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	list, err := h.notifications.FindByUser(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to list notifications")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	count, err := h.notifications.CountUnread(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to count unread notifications")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"unread": count})
}

// MarkRead handles POST /api/notifications/{id}/read. Re-marking an
// already-read notification succeeds without a second write.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.fanout.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Notification not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to mark notification read")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
