package repository

import (
	"database/sql"
	"fmt"
	"time"

	"familycal/internal/database"
	"familycal/internal/models"
)

// EventRepository handles database operations for events and participants
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, family_id, creator_id, title, description, location,
	start_date, end_date, category, repeat_kind, repeat_interval,
	reminder_time, is_deleted, created_at, updated_at`

// CreateEvent inserts a new event row
func (r *EventRepository) CreateEvent(ev *models.Event) error {
	query := `
		INSERT INTO events (id, family_id, creator_id, title, description, location,
			start_date, end_date, category, repeat_kind, repeat_interval,
			reminder_time, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		ev.ID, ev.FamilyID, ev.CreatorID, ev.Title, ev.Description, ev.Location,
		ev.StartDate, ev.EndDate, categoryValue(ev.Category),
		repeatKind(ev.Repeat), ev.Repeat.IntervalDays,
		ev.ReminderTime, ev.IsDeleted, ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetEventByID retrieves an event by id, or nil when absent.
// Soft-deleted events are still returned; callers decide visibility.
func (r *EventRepository) GetEventByID(eventID string) (*models.Event, error) {
	row := r.db.QueryRow("SELECT "+eventColumns+" FROM events WHERE id = ?", eventID)
	ev, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return ev, nil
}

// UpdateEvent rewrites the mutable fields and refreshes updated_at
func (r *EventRepository) UpdateEvent(ev *models.Event) error {
	query := `
		UPDATE events SET title = ?, description = ?, location = ?,
			start_date = ?, end_date = ?, category = ?,
			repeat_kind = ?, repeat_interval = ?, reminder_time = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		ev.Title, ev.Description, ev.Location,
		ev.StartDate, ev.EndDate, categoryValue(ev.Category),
		repeatKind(ev.Repeat), ev.Repeat.IntervalDays, ev.ReminderTime,
		ev.UpdatedAt, ev.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// SoftDeleteEvent marks an event deleted without removing the row
func (r *EventRepository) SoftDeleteEvent(eventID string, at time.Time) error {
	query := "UPDATE events SET is_deleted = " + r.db.Dialect.BoolValue(true) + ", updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, at, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// EventsInRange returns a family's non-deleted events whose start falls in
// [start, end), sorted ascending by start date.
func (r *EventRepository) EventsInRange(familyID string, start, end time.Time) ([]models.Event, error) {
	query := "SELECT " + eventColumns + ` FROM events
		WHERE family_id = ? AND is_deleted = ` + r.db.Dialect.BoolValue(false) + ` AND start_date >= ? AND start_date < ?
		ORDER BY start_date ASC
	`
	return r.queryEvents(query, familyID, start, end)
}

// RecurringEvents returns a family's non-deleted events carrying a repeat
// rule, regardless of their original start date.
func (r *EventRepository) RecurringEvents(familyID string) ([]models.Event, error) {
	query := "SELECT " + eventColumns + ` FROM events
		WHERE family_id = ? AND is_deleted = ` + r.db.Dialect.BoolValue(false) + ` AND repeat_kind != 'none'
		ORDER BY start_date ASC
	`
	return r.queryEvents(query, familyID)
}

// EventsWithReminderBetween returns non-deleted events whose reminder time
// falls in [from, to). Used by the reminder scheduler.
func (r *EventRepository) EventsWithReminderBetween(from, to time.Time) ([]models.Event, error) {
	query := "SELECT " + eventColumns + ` FROM events
		WHERE is_deleted = ` + r.db.Dialect.BoolValue(false) + ` AND reminder_time IS NOT NULL AND reminder_time >= ? AND reminder_time < ?
	`
	return r.queryEvents(query, from, to)
}

func (r *EventRepository) queryEvents(query string, args ...interface{}) ([]models.Event, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func scanEvent(scan func(...interface{}) error) (*models.Event, error) {
	ev := &models.Event{}
	var description, location, category sql.NullString
	var reminderTime sql.NullTime
	var kind string

	err := scan(
		&ev.ID, &ev.FamilyID, &ev.CreatorID, &ev.Title, &description, &location,
		&ev.StartDate, &ev.EndDate, &category, &kind, &ev.Repeat.IntervalDays,
		&reminderTime, &ev.IsDeleted, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ev.Description = nullString(description)
	ev.Location = nullString(location)
	if category.Valid {
		c := models.EventCategory(category.String)
		ev.Category = &c
	}
	ev.Repeat.Kind = models.RepeatKind(kind)
	ev.ReminderTime = nullTime(reminderTime)
	return ev, nil
}

func categoryValue(c *models.EventCategory) interface{} {
	if c == nil {
		return nil
	}
	return string(*c)
}

func repeatKind(r models.RepeatRule) string {
	if r.Kind == "" {
		return string(models.RepeatNone)
	}
	return string(r.Kind)
}

// Participants returns all participant rows for an event
func (r *EventRepository) Participants(eventID string) ([]models.EventParticipant, error) {
	query := `
		SELECT id, event_id, user_id, status, comment, responded_at, created_at
		FROM event_participants WHERE event_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []models.EventParticipant
	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

// GetParticipant retrieves one participant row, or nil when absent
func (r *EventRepository) GetParticipant(eventID, userID string) (*models.EventParticipant, error) {
	query := `
		SELECT id, event_id, user_id, status, comment, responded_at, created_at
		FROM event_participants WHERE event_id = ? AND user_id = ?
	`
	row := r.db.QueryRow(query, eventID, userID)
	p, err := scanParticipant(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// UpsertParticipant writes a participant row keyed by (event_id, user_id):
// insert when absent, otherwise update status, comment and responded_at.
// Calling it twice with the same response converges to one row.
func (r *EventRepository) UpsertParticipant(p *models.EventParticipant) error {
	existing, err := r.GetParticipant(p.EventID, p.UserID)
	if err != nil {
		return err
	}

	if existing == nil {
		query := `
			INSERT INTO event_participants (id, event_id, user_id, status, comment, responded_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.db.Exec(query,
			p.ID, p.EventID, p.UserID, string(p.Status), p.Comment, p.RespondedAt, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
		return nil
	}

	query := `
		UPDATE event_participants SET status = ?, comment = ?, responded_at = ?
		WHERE event_id = ? AND user_id = ?
	`
	if _, err := r.db.Exec(query, string(p.Status), p.Comment, p.RespondedAt, p.EventID, p.UserID); err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	p.ID = existing.ID
	return nil
}

func scanParticipant(scan func(...interface{}) error) (*models.EventParticipant, error) {
	p := &models.EventParticipant{}
	var status string
	var comment sql.NullString
	var respondedAt sql.NullTime

	err := scan(&p.ID, &p.EventID, &p.UserID, &status, &comment, &respondedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.Status = models.ResponseStatus(status)
	p.Comment = nullString(comment)
	p.RespondedAt = nullTime(respondedAt)
	return p, nil
}
