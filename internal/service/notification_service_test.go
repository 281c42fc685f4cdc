package service

import (
	"testing"
	"time"

	"familycal/internal/models"
)

func TestNotifyEventChangeFanOut(t *testing.T) {
	f := newEventFixture(t)
	grandpaID := seedUser(f.userStore, "爷爷")
	family, _ := f.familyStore.GetFamilyByID(f.familyID)
	familySvc := NewFamilyService(f.familyStore, f.userStore)
	if _, err := familySvc.JoinFamily(grandpaID, family.InviteCode, ""); err != nil {
		t.Fatalf("JoinFamily() error = %v", err)
	}

	// Grandpa has muted family notifications.
	if err := f.familyStore.SetNotificationEnabled(f.familyID, grandpaID, false); err != nil {
		t.Fatalf("SetNotificationEnabled() error = %v", err)
	}

	ev, err := f.svc.CreateEvent(f.adminScope(), CreateEventInput{
		Title:     "家长会",
		StartDate: f.date(18, 15),
		EndDate:   f.date(18, 16),
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	baseline := len(f.notes.rows)

	if _, err := f.svc.UpdateEvent(f.adminScope(), ev.ID, UpdateEventInput{
		Title:     "家长会(改期)",
		StartDate: f.date(19, 15),
		EndDate:   f.date(19, 16),
	}); err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}

	delivered := f.notes.rows[baseline:]
	if len(delivered) != 1 {
		t.Fatalf("update notifications = %d, want 1 (actor and muted member skipped)", len(delivered))
	}
	if delivered[0].UserID != f.memberID {
		t.Errorf("notified user = %v, want %v", delivered[0].UserID, f.memberID)
	}
	if delivered[0].Type != models.NotifyEventUpdate {
		t.Errorf("notification type = %v, want %v", delivered[0].Type, models.NotifyEventUpdate)
	}
}

func TestNotifyResponseGoesToCreator(t *testing.T) {
	f := newEventFixture(t)
	ev, err := f.svc.CreateEvent(f.adminScope(), CreateEventInput{
		Title:        "周末爬山",
		StartDate:    f.date(22, 7),
		EndDate:      f.date(22, 12),
		Participants: []string{f.memberID},
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	if _, err := f.svc.Respond(f.memberScope(), ev.ID, models.StatusAccepted, nil); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	creatorNotes := f.notes.forUser(f.adminID)
	if len(creatorNotes) != 1 {
		t.Fatalf("creator notifications = %d, want 1", len(creatorNotes))
	}
	if creatorNotes[0].Type != models.NotifyResponseReceived {
		t.Errorf("type = %v, want %v", creatorNotes[0].Type, models.NotifyResponseReceived)
	}
	if creatorNotes[0].EventID == nil || *creatorNotes[0].EventID != ev.ID {
		t.Errorf("notification event id = %v, want %v", creatorNotes[0].EventID, ev.ID)
	}
}

func TestNotifyResponseSelfIsSilent(t *testing.T) {
	f := newEventFixture(t)
	ev, _ := f.svc.CreateEvent(f.adminScope(), CreateEventInput{
		Title:     "自己的安排",
		StartDate: f.date(25, 9),
		EndDate:   f.date(25, 10),
	})
	baseline := len(f.notes.rows)

	if _, err := f.svc.Respond(f.adminScope(), ev.ID, models.StatusAccepted, nil); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(f.notes.rows) != baseline {
		t.Error("creator responding to own event produced a notification")
	}
}

func TestMarkReadLifecycle(t *testing.T) {
	store := &fakeNotificationStore{}
	familyStore := newFakeFamilyStore()
	userStore := newFakeUserStore()
	svc := NewNotificationService(store, familyStore, userStore)
	scope := models.Scope{UserID: "u1"}

	store.rows = []models.AppNotification{
		{ID: "n1", UserID: "u1", Type: models.NotifyEventInvite, CreatedAt: time.Now()},
		{ID: "n2", UserID: "u1", Type: models.NotifyEventUpdate, CreatedAt: time.Now()},
		{ID: "n3", UserID: "u2", Type: models.NotifyEventInvite, CreatedAt: time.Now()},
	}

	count, err := svc.UnreadCount(scope)
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("UnreadCount() = %d, want 2", count)
	}

	if err := svc.MarkRead(scope, "n1"); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	firstReadAt := store.rows[0].ReadAt
	if firstReadAt == nil {
		t.Fatal("ReadAt not set by MarkRead")
	}

	// Marking again keeps the original readAt.
	if err := svc.MarkRead(scope, "n1"); err != nil {
		t.Fatalf("second MarkRead() error = %v", err)
	}
	if store.rows[0].ReadAt != firstReadAt {
		t.Error("ReadAt changed on repeated MarkRead")
	}

	// Another user's notification cannot be marked.
	if err := svc.MarkRead(scope, "n3"); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if store.rows[2].IsRead {
		t.Error("MarkRead crossed user boundary")
	}

	if err := svc.MarkAllRead(scope); err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}
	count, _ = svc.UnreadCount(scope)
	if count != 0 {
		t.Errorf("UnreadCount() after MarkAllRead = %d, want 0", count)
	}
}

func TestReminderScanWindow(t *testing.T) {
	f := newEventFixture(t)

	reminderAt := time.Now().Add(-30 * time.Second)
	if _, err := f.svc.CreateEvent(f.adminScope(), CreateEventInput{
		Title:        "吃药提醒",
		StartDate:    time.Now().Add(10 * time.Minute),
		EndDate:      time.Now().Add(20 * time.Minute),
		ReminderTime: &reminderAt,
	}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	baseline := len(f.notes.rows)

	notifier := NewNotificationService(f.notes, f.familyStore, f.userStore)
	reminders := NewReminderService(f.eventStore, notifier)
	reminders.lastScan = time.Now().Add(-time.Minute)

	reminders.Scan()
	delivered := len(f.notes.rows) - baseline
	if delivered != 2 {
		t.Fatalf("reminder notifications = %d, want one per roster member", delivered)
	}

	// The window advanced; a second scan delivers nothing.
	reminders.Scan()
	if len(f.notes.rows)-baseline != delivered {
		t.Error("second scan re-delivered reminders")
	}
}
