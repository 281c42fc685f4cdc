package repository

import (
	"database/sql"
	"fmt"
	"time"

	"familycal/internal/database"
	"familycal/internal/models"
)

// NotificationRepository handles database operations for in-app notifications
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create persists a new notification
func (r *NotificationRepository) Create(n *models.AppNotification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, body, event_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		n.ID, n.UserID, string(n.Type), n.Title, n.Body, n.EventID, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(userID string, limit int) ([]models.AppNotification, error) {
	query := `
		SELECT id, user_id, type, title, body, event_id, is_read, read_at, created_at
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.AppNotification
	for rows.Next() {
		var n models.AppNotification
		var ntype string
		var eventID sql.NullString
		var readAt sql.NullTime
		if err := rows.Scan(
			&n.ID, &n.UserID, &ntype, &n.Title, &n.Body, &eventID, &n.IsRead, &readAt, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Type = models.NotificationType(ntype)
		n.EventID = nullString(eventID)
		n.ReadAt = nullTime(readAt)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UnreadCount returns the number of unread notifications for a user
func (r *NotificationRepository) UnreadCount(userID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = " + r.db.Dialect.BoolValue(false)
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications read. The read_at stamp
// is written only on the unread-to-read transition.
func (r *NotificationRepository) MarkRead(notificationID, userID string, at time.Time) error {
	query := "UPDATE notifications SET is_read = " + r.db.Dialect.BoolValue(true) + `, read_at = ?
		WHERE id = ? AND user_id = ? AND is_read = ` + r.db.Dialect.BoolValue(false)
	if _, err := r.db.Exec(query, at, notificationID, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user read
func (r *NotificationRepository) MarkAllRead(userID string, at time.Time) error {
	query := "UPDATE notifications SET is_read = " + r.db.Dialect.BoolValue(true) +
		", read_at = ? WHERE user_id = ? AND is_read = " + r.db.Dialect.BoolValue(false)
	if _, err := r.db.Exec(query, at, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
