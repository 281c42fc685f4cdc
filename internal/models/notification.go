package models

import "time"

// AppNotification is an in-app notification delivered to one user
type AppNotification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Body      string
	EventID   *string
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotifyEventInvite      NotificationType = "eventInvite"
	NotifyEventUpdate      NotificationType = "eventUpdate"
	NotifyEventReminder    NotificationType = "eventReminder"
	NotifyEventCancel      NotificationType = "eventCancel"
	NotifyResponseReceived NotificationType = "responseReceived"
)
