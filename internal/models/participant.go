package models

import "time"

// EventParticipant is a per-user response record attached to an event.
// At most one row exists per (EventID, UserID) pair.
type EventParticipant struct {
	ID          string
	EventID     string
	UserID      string
	Status      ResponseStatus
	Comment     *string
	RespondedAt *time.Time // set exactly when Status leaves pending
	CreatedAt   time.Time
}

// ResponseStatus is a participant's response to an event invitation
type ResponseStatus string

const (
	StatusPending   ResponseStatus = "pending"
	StatusAccepted  ResponseStatus = "accepted"
	StatusDeclined  ResponseStatus = "declined"
	StatusTentative ResponseStatus = "tentative"
)

// Valid reports whether the status is one of the known values
func (s ResponseStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusTentative:
		return true
	}
	return false
}

// ResponseTally holds per-status participant counts for one event
type ResponseTally struct {
	Pending   int
	Accepted  int
	Declined  int
	Tentative int
	Total     int
}

// TallyResponses counts participants by status. The per-status buckets
// always sum to Total: unknown statuses are counted as pending rather
// than dropped.
func TallyResponses(participants []EventParticipant) ResponseTally {
	var t ResponseTally
	for _, p := range participants {
		switch p.Status {
		case StatusAccepted:
			t.Accepted++
		case StatusDeclined:
			t.Declined++
		case StatusTentative:
			t.Tentative++
		default:
			t.Pending++
		}
		t.Total++
	}
	return t
}

// FindParticipant returns the participant row for userID, or nil
func FindParticipant(participants []EventParticipant, userID string) *EventParticipant {
	for i := range participants {
		if participants[i].UserID == userID {
			return &participants[i]
		}
	}
	return nil
}
