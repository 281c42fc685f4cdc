package service

import (
	"time"

	"familycal/internal/models"
)

// The store interfaces below are the persistence contract the services
// depend on. They are satisfied by the repository package; tests supply
// in-memory fakes.

// UserStore persists users and sessions
type UserStore interface {
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	GetUserByAppleID(appleID string) (*models.User, error)
	UpdateUser(user *models.User) error
	TouchLastLogin(userID string, at time.Time) error
	CreateSession(sessionID, userID string, expiresAt time.Time) (*models.Session, error)
	GetSession(sessionID string) (*models.Session, error)
	DeleteSession(sessionID string) error
	DeleteExpiredSessions() error
}

// FamilyStore persists families and their member rosters
type FamilyStore interface {
	CreateFamily(family *models.Family) error
	GetFamilyByID(familyID string) (*models.Family, error)
	GetFamilyByInviteCode(code string) (*models.Family, error)
	InviteCodeExists(code string) (bool, error)
	GetUserFamilies(userID string) ([]models.Family, error)
	AddMember(member *models.FamilyMember) error
	GetMember(familyID, userID string) (*models.FamilyMember, error)
	GetMembers(familyID string) ([]models.FamilyMember, error)
	IsMember(userID, familyID string) (bool, error)
	RemoveMember(familyID, userID string) error
	SetNotificationEnabled(familyID, userID string, enabled bool) error
}

// EventStore persists events and participant rows
type EventStore interface {
	CreateEvent(ev *models.Event) error
	GetEventByID(eventID string) (*models.Event, error)
	UpdateEvent(ev *models.Event) error
	SoftDeleteEvent(eventID string, at time.Time) error
	EventsInRange(familyID string, start, end time.Time) ([]models.Event, error)
	RecurringEvents(familyID string) ([]models.Event, error)
	EventsWithReminderBetween(from, to time.Time) ([]models.Event, error)
	Participants(eventID string) ([]models.EventParticipant, error)
	GetParticipant(eventID, userID string) (*models.EventParticipant, error)
	UpsertParticipant(p *models.EventParticipant) error
}

// NotificationStore persists in-app notifications
type NotificationStore interface {
	Create(n *models.AppNotification) error
	ListByUser(userID string, limit int) ([]models.AppNotification, error)
	UnreadCount(userID string) (int, error)
	MarkRead(notificationID, userID string, at time.Time) error
	MarkAllRead(userID string, at time.Time) error
}
