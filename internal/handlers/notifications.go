package handlers

import (
	"fmt"
	"net/http"

	"crestmont/internal/services"
)

// NotificationHandler exposes the per-user notification feed
type NotificationHandler struct {
	emitter *services.EmitterService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(emitter *services.EmitterService) *NotificationHandler {
	return &NotificationHandler{emitter: emitter}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Not authenticated"})
		return
	}

	skip, limit := parsePagination(r)
	notifications, err := h.emitter.ListNotifications(user.ID, skip, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Notifications retrieved", Data: notifications})
}

// ReadAll handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) ReadAll(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Not authenticated"})
		return
	}

	updated, err := h.emitter.MarkAllRead(user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: fmt.Sprintf("%d notifications marked as read", updated),
	})
}
