package service

import (
	"errors"
	"sort"
	"time"

	"familycal/internal/models"
)

// In-memory store fakes backing the service tests. Each fake keeps rows
// in maps and supports targeted failure injection via failNext.

type fakeUserStore struct {
	users    map[string]*models.User
	sessions map[string]*models.Session
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    make(map[string]*models.User),
		sessions: make(map[string]*models.Session),
	}
}

func (f *fakeUserStore) CreateUser(user *models.User) error {
	u := *user
	f.users[user.ID] = &u
	return nil
}

func (f *fakeUserStore) GetUserByID(id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserByPhone(phone string) (*models.User, error) {
	for _, u := range f.users {
		if u.Phone != nil && *u.Phone == phone {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserByAppleID(appleID string) (*models.User, error) {
	for _, u := range f.users {
		if u.AppleID != nil && *u.AppleID == appleID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) UpdateUser(user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	u := *user
	f.users[user.ID] = &u
	return nil
}

func (f *fakeUserStore) TouchLastLogin(userID string, at time.Time) error {
	if u, ok := f.users[userID]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (f *fakeUserStore) CreateSession(sessionID, userID string, expiresAt time.Time) (*models.Session, error) {
	s := &models.Session{ID: sessionID, UserID: userID, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	f.sessions[sessionID] = s
	copied := *s
	return &copied, nil
}

func (f *fakeUserStore) GetSession(sessionID string) (*models.Session, error) {
	if s, ok := f.sessions[sessionID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUserStore) DeleteSession(sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeUserStore) DeleteExpiredSessions() error {
	for id, s := range f.sessions {
		if s.IsExpired() {
			delete(f.sessions, id)
		}
	}
	return nil
}

type fakeFamilyStore struct {
	families      map[string]*models.Family
	members       map[string][]models.FamilyMember // keyed by family id
	failAddMember error
}

func newFakeFamilyStore() *fakeFamilyStore {
	return &fakeFamilyStore{
		families: make(map[string]*models.Family),
		members:  make(map[string][]models.FamilyMember),
	}
}

func (f *fakeFamilyStore) CreateFamily(family *models.Family) error {
	fam := *family
	f.families[family.ID] = &fam
	return nil
}

func (f *fakeFamilyStore) GetFamilyByID(familyID string) (*models.Family, error) {
	if fam, ok := f.families[familyID]; ok {
		copied := *fam
		copied.MemberCount = len(f.members[familyID])
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeFamilyStore) GetFamilyByInviteCode(code string) (*models.Family, error) {
	for id, fam := range f.families {
		if fam.InviteCode == code {
			copied := *fam
			copied.MemberCount = len(f.members[id])
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeFamilyStore) InviteCodeExists(code string) (bool, error) {
	for _, fam := range f.families {
		if fam.InviteCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFamilyStore) GetUserFamilies(userID string) ([]models.Family, error) {
	var out []models.Family
	for id, fam := range f.families {
		for _, m := range f.members[id] {
			if m.UserID == userID {
				copied := *fam
				copied.MemberCount = len(f.members[id])
				out = append(out, copied)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFamilyStore) AddMember(member *models.FamilyMember) error {
	if f.failAddMember != nil {
		err := f.failAddMember
		f.failAddMember = nil
		return err
	}
	f.members[member.FamilyID] = append(f.members[member.FamilyID], *member)
	return nil
}

func (f *fakeFamilyStore) GetMember(familyID, userID string) (*models.FamilyMember, error) {
	for _, m := range f.members[familyID] {
		if m.UserID == userID {
			copied := m
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeFamilyStore) GetMembers(familyID string) ([]models.FamilyMember, error) {
	return append([]models.FamilyMember(nil), f.members[familyID]...), nil
}

func (f *fakeFamilyStore) IsMember(userID, familyID string) (bool, error) {
	m, _ := f.GetMember(familyID, userID)
	return m != nil, nil
}

func (f *fakeFamilyStore) RemoveMember(familyID, userID string) error {
	roster := f.members[familyID]
	for i, m := range roster {
		if m.UserID == userID {
			f.members[familyID] = append(roster[:i], roster[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeFamilyStore) SetNotificationEnabled(familyID, userID string, enabled bool) error {
	roster := f.members[familyID]
	for i := range roster {
		if roster[i].UserID == userID {
			roster[i].NotificationEnabled = enabled
			return nil
		}
	}
	return nil
}

type fakeEventStore struct {
	events       map[string]*models.Event
	participants map[string][]models.EventParticipant // keyed by event id

	failUpsertFor map[string]error // keyed by user id
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		events:        make(map[string]*models.Event),
		participants:  make(map[string][]models.EventParticipant),
		failUpsertFor: make(map[string]error),
	}
}

func (f *fakeEventStore) CreateEvent(ev *models.Event) error {
	copied := *ev
	f.events[ev.ID] = &copied
	return nil
}

func (f *fakeEventStore) GetEventByID(eventID string) (*models.Event, error) {
	if ev, ok := f.events[eventID]; ok {
		copied := *ev
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeEventStore) UpdateEvent(ev *models.Event) error {
	if _, ok := f.events[ev.ID]; !ok {
		return errors.New("event not found")
	}
	copied := *ev
	f.events[ev.ID] = &copied
	return nil
}

func (f *fakeEventStore) SoftDeleteEvent(eventID string, at time.Time) error {
	if ev, ok := f.events[eventID]; ok {
		ev.IsDeleted = true
		ev.UpdatedAt = at
	}
	return nil
}

func (f *fakeEventStore) EventsInRange(familyID string, start, end time.Time) ([]models.Event, error) {
	var out []models.Event
	for _, ev := range f.events {
		if ev.FamilyID != familyID || ev.IsDeleted {
			continue
		}
		if !ev.StartDate.Before(start) && ev.StartDate.Before(end) {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f *fakeEventStore) RecurringEvents(familyID string) ([]models.Event, error) {
	var out []models.Event
	for _, ev := range f.events {
		if ev.FamilyID == familyID && !ev.IsDeleted && ev.Repeat.Repeats() {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeEventStore) EventsWithReminderBetween(from, to time.Time) ([]models.Event, error) {
	var out []models.Event
	for _, ev := range f.events {
		if ev.IsDeleted || ev.ReminderTime == nil {
			continue
		}
		if !ev.ReminderTime.Before(from) && ev.ReminderTime.Before(to) {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeEventStore) Participants(eventID string) ([]models.EventParticipant, error) {
	return append([]models.EventParticipant(nil), f.participants[eventID]...), nil
}

func (f *fakeEventStore) GetParticipant(eventID, userID string) (*models.EventParticipant, error) {
	for _, p := range f.participants[eventID] {
		if p.UserID == userID {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeEventStore) UpsertParticipant(p *models.EventParticipant) error {
	if err, ok := f.failUpsertFor[p.UserID]; ok {
		delete(f.failUpsertFor, p.UserID)
		return err
	}
	rows := f.participants[p.EventID]
	for i := range rows {
		if rows[i].UserID == p.UserID {
			keep := rows[i].ID
			rows[i] = *p
			rows[i].ID = keep
			return nil
		}
	}
	f.participants[p.EventID] = append(rows, *p)
	return nil
}

type fakeNotificationStore struct {
	rows       []models.AppNotification
	failCreate error
}

func (f *fakeNotificationStore) Create(n *models.AppNotification) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationStore) ListByUser(userID string, limit int) ([]models.AppNotification, error) {
	var out []models.AppNotification
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) UnreadCount(userID string) (int, error) {
	count := 0
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkRead(notificationID, userID string, at time.Time) error {
	for i := range f.rows {
		n := &f.rows[i]
		if n.ID == notificationID && n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
		}
	}
	return nil
}

func (f *fakeNotificationStore) MarkAllRead(userID string, at time.Time) error {
	for i := range f.rows {
		n := &f.rows[i]
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
		}
	}
	return nil
}

func (f *fakeNotificationStore) forUser(userID string) []models.AppNotification {
	var out []models.AppNotification
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}
