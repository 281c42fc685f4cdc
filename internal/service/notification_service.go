package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"familycal/internal/models"
)

// notificationPageSize caps a single list fetch
const notificationPageSize = 50

// NotificationService handles in-app notification reads and fan-out.
// Fan-out is best-effort: a failed write is logged and skipped, never
// surfaced to the operation that triggered it.
type NotificationService struct {
	store       NotificationStore
	familyStore FamilyStore
	userStore   UserStore
	now         func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(store NotificationStore, familyStore FamilyStore, userStore UserStore) *NotificationService {
	return &NotificationService{
		store:       store,
		familyStore: familyStore,
		userStore:   userStore,
		now:         time.Now,
	}
}

// List returns the user's most recent notifications, newest first
func (s *NotificationService) List(scope models.Scope) ([]models.AppNotification, error) {
	if scope.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.store.ListByUser(scope.UserID, notificationPageSize)
}

// UnreadCount returns the number of unread notifications for the user
func (s *NotificationService) UnreadCount(scope models.Scope) (int, error) {
	if scope.UserID == "" {
		return 0, ErrNotAuthenticated
	}
	return s.store.UnreadCount(scope.UserID)
}

// MarkRead marks one of the user's notifications as read. Marking an
// already-read notification is a no-op; readAt keeps its first value.
func (s *NotificationService) MarkRead(scope models.Scope, notificationID string) error {
	if scope.UserID == "" {
		return ErrNotAuthenticated
	}
	return s.store.MarkRead(notificationID, scope.UserID, s.now())
}

// MarkAllRead marks every unread notification for the user as read
func (s *NotificationService) MarkAllRead(scope models.Scope) error {
	if scope.UserID == "" {
		return ErrNotAuthenticated
	}
	return s.store.MarkAllRead(scope.UserID, s.now())
}

// NotifyEventInvite notifies invited users about a new event
func (s *NotificationService) NotifyEventInvite(ev *models.Event, userIDs []string) {
	title := "新日程邀请"
	body := fmt.Sprintf("你被邀请参加「%s」", ev.Title)
	for _, userID := range userIDs {
		if userID == ev.CreatorID {
			continue
		}
		s.deliver(userID, models.NotifyEventInvite, title, body, &ev.ID)
	}
}

// NotifyEventChange notifies the event's family about an update or a
// cancellation, skipping the actor and members who disabled notifications.
func (s *NotificationService) NotifyEventChange(ev *models.Event, actorID string, kind models.NotificationType) {
	var title, body string
	switch kind {
	case models.NotifyEventCancel:
		title = "日程已取消"
		body = fmt.Sprintf("「%s」已被取消", ev.Title)
	default:
		kind = models.NotifyEventUpdate
		title = "日程已更新"
		body = fmt.Sprintf("「%s」的安排有变化", ev.Title)
	}
	for _, userID := range s.recipients(ev.FamilyID, actorID) {
		s.deliver(userID, kind, title, body, &ev.ID)
	}
}

// NotifyResponse notifies the event creator that someone responded
func (s *NotificationService) NotifyResponse(ev *models.Event, responderID string, status models.ResponseStatus) {
	if responderID == ev.CreatorID {
		return
	}
	name := s.displayName(responderID)
	var body string
	switch status {
	case models.StatusAccepted:
		body = fmt.Sprintf("%s 接受了「%s」", name, ev.Title)
	case models.StatusDeclined:
		body = fmt.Sprintf("%s 拒绝了「%s」", name, ev.Title)
	case models.StatusTentative:
		body = fmt.Sprintf("%s 暂定参加「%s」", name, ev.Title)
	default:
		return
	}
	s.deliver(ev.CreatorID, models.NotifyResponseReceived, "收到回复", body, &ev.ID)
}

// NotifyReminder delivers a reminder for an upcoming event to the whole
// family roster, honoring the per-member notification switch.
func (s *NotificationService) NotifyReminder(ev *models.Event) {
	title := "日程提醒"
	body := fmt.Sprintf("「%s」即将开始", ev.Title)
	for _, userID := range s.recipients(ev.FamilyID, "") {
		s.deliver(userID, models.NotifyEventReminder, title, body, &ev.ID)
	}
}

// recipients returns roster user ids with notifications enabled,
// excluding actorID when non-empty.
func (s *NotificationService) recipients(familyID, actorID string) []string {
	members, err := s.familyStore.GetMembers(familyID)
	if err != nil {
		slog.Error("Failed to load roster for notification fan-out", "family_id", familyID, "error", err)
		return nil
	}
	var ids []string
	for _, m := range members {
		if m.UserID == actorID || !m.NotificationEnabled {
			continue
		}
		ids = append(ids, m.UserID)
	}
	return ids
}

func (s *NotificationService) deliver(userID string, kind models.NotificationType, title, body string, eventID *string) {
	n := &models.AppNotification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Body:      body,
		EventID:   eventID,
		CreatedAt: s.now(),
	}
	if err := s.store.Create(n); err != nil {
		slog.Error("Failed to deliver notification", "user_id", userID, "type", kind, "error", err)
	}
}

func (s *NotificationService) displayName(userID string) string {
	user, err := s.userStore.GetUserByID(userID)
	if err != nil || user == nil {
		return models.DefaultNickname
	}
	return user.DisplayName()
}
