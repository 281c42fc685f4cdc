package handlers

import (
	"net/http"

	"familycal/internal/service"
)

// NotificationHandler handles in-app notification requests
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the caller's most recent notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	notifications, err := h.notificationService.List(scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationViews(notifications))
}

// UnreadCount returns the caller's unread notification count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	count, err := h.notificationService.UnreadCount(scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// MarkRead marks one notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	if err := h.notificationService.MarkRead(scope, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// MarkAllRead marks every unread notification as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	if err := h.notificationService.MarkAllRead(scope); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
