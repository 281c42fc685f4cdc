package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"familycal/internal/calendar"
	"familycal/internal/models"
	"familycal/internal/validation"
)

// EventService handles event and participant business logic
type EventService struct {
	eventStore  EventStore
	familyStore FamilyStore
	notifier    *NotificationService
	loc         *time.Location
	now         func() time.Time
}

// NewEventService creates a new event service. notifier may be nil, in
// which case no notifications are fanned out. loc sets the calendar-day
// boundaries for grid and all-day derivations.
func NewEventService(eventStore EventStore, familyStore FamilyStore, notifier *NotificationService, loc *time.Location) *EventService {
	if loc == nil {
		loc = time.Local
	}
	return &EventService{
		eventStore:  eventStore,
		familyStore: familyStore,
		notifier:    notifier,
		loc:         loc,
		now:         time.Now,
	}
}

// CreateEventInput carries the caller-supplied event fields
type CreateEventInput struct {
	Title        string
	Description  *string
	Location     *string
	StartDate    time.Time
	EndDate      time.Time
	Category     *models.EventCategory
	Repeat       models.RepeatRule
	ReminderTime *time.Time
	Participants []string // user ids to invite, all created pending
}

// PartialParticipantError reports a create-event flow where the event row
// was written but some participant writes failed. The event is live;
// recovery is AddMissingParticipants with the Missing ids, never
// re-creating the event.
type PartialParticipantError struct {
	EventID string
	Missing []string
	cause   error
}

func (e *PartialParticipantError) Error() string {
	return fmt.Sprintf("event %s created but %d participant writes failed: %v", e.EventID, len(e.Missing), e.cause)
}

func (e *PartialParticipantError) Unwrap() error { return e.cause }

// CreateEvent validates the input, writes the event, then writes one
// pending participant row per invited member, sequentially.
func (s *EventService) CreateEvent(scope models.Scope, input CreateEventInput) (*models.Event, error) {
	if scope.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	if !scope.HasFamily() {
		return nil, ErrNoFamilySelected
	}
	if err := validation.ValidateEvent(input.Title, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.Repeat.Kind == models.RepeatCustom && input.Repeat.IntervalDays <= 0 {
		return nil, models.ErrInvalidRepeatInterval
	}
	if err := s.verifyMembership(scope); err != nil {
		return nil, err
	}

	now := s.now()
	ev := &models.Event{
		ID:           uuid.New().String(),
		FamilyID:     scope.FamilyID,
		CreatorID:    scope.UserID,
		Title:        input.Title,
		Description:  input.Description,
		Location:     input.Location,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Category:     input.Category,
		Repeat:       normalizeRepeat(input.Repeat),
		ReminderTime: input.ReminderTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.eventStore.CreateEvent(ev); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	missing, cause := s.writeParticipants(ev.ID, input.Participants, now)
	if len(missing) > 0 {
		return ev, &PartialParticipantError{EventID: ev.ID, Missing: missing, cause: cause}
	}

	s.notify(func(n *NotificationService) {
		n.NotifyEventInvite(ev, input.Participants)
	})
	return ev, nil
}

// AddMissingParticipants re-issues participant writes that failed during
// event creation. User ids that already have a row are skipped, so a
// retry with the full original list never resets a recorded response.
func (s *EventService) AddMissingParticipants(scope models.Scope, eventID string, userIDs []string) error {
	ev, err := s.visibleEvent(scope, eventID)
	if err != nil {
		return err
	}
	missing, cause := s.writeParticipants(ev.ID, userIDs, s.now())
	if len(missing) > 0 {
		return &PartialParticipantError{EventID: ev.ID, Missing: missing, cause: cause}
	}
	return nil
}

func (s *EventService) writeParticipants(eventID string, userIDs []string, now time.Time) ([]string, error) {
	var missing []string
	var cause error
	for _, userID := range userIDs {
		existing, err := s.eventStore.GetParticipant(eventID, userID)
		if err != nil {
			missing = append(missing, userID)
			cause = err
			continue
		}
		if existing != nil {
			continue
		}
		p := &models.EventParticipant{
			ID:        uuid.New().String(),
			EventID:   eventID,
			UserID:    userID,
			Status:    models.StatusPending,
			CreatedAt: now,
		}
		if err := s.eventStore.UpsertParticipant(p); err != nil {
			missing = append(missing, userID)
			cause = err
		}
	}
	return missing, cause
}

func normalizeRepeat(r models.RepeatRule) models.RepeatRule {
	if r.Kind == "" {
		r.Kind = models.RepeatNone
	}
	if r.Kind != models.RepeatCustom {
		r.IntervalDays = 0
	}
	return r
}

// UpdateEventInput carries the fields an edit may change
type UpdateEventInput struct {
	Title        string
	Description  *string
	Location     *string
	StartDate    time.Time
	EndDate      time.Time
	Category     *models.EventCategory
	Repeat       models.RepeatRule
	ReminderTime *time.Time
}

// UpdateEvent rewrites an event's mutable fields. Only the creator may
// edit; updatedAt is refreshed on every mutation.
func (s *EventService) UpdateEvent(scope models.Scope, eventID string, input UpdateEventInput) (*models.Event, error) {
	ev, err := s.visibleEvent(scope, eventID)
	if err != nil {
		return nil, err
	}
	if !ev.CanEdit(scope.UserID) {
		return nil, ErrNotEventCreator
	}
	if err := validation.ValidateEvent(input.Title, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.Repeat.Kind == models.RepeatCustom && input.Repeat.IntervalDays <= 0 {
		return nil, models.ErrInvalidRepeatInterval
	}

	ev.Title = input.Title
	ev.Description = input.Description
	ev.Location = input.Location
	ev.StartDate = input.StartDate
	ev.EndDate = input.EndDate
	ev.Category = input.Category
	ev.Repeat = normalizeRepeat(input.Repeat)
	ev.ReminderTime = input.ReminderTime
	ev.UpdatedAt = s.now()

	if err := s.eventStore.UpdateEvent(ev); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.notify(func(n *NotificationService) {
		n.NotifyEventChange(ev, scope.UserID, models.NotifyEventUpdate)
	})
	return ev, nil
}

// DeleteEvent soft-deletes an event. The row survives in the store; it
// disappears from all queries. Only the creator may delete.
func (s *EventService) DeleteEvent(scope models.Scope, eventID string) error {
	ev, err := s.visibleEvent(scope, eventID)
	if err != nil {
		return err
	}
	if !ev.CanEdit(scope.UserID) {
		return ErrNotEventCreator
	}
	if err := s.eventStore.SoftDeleteEvent(ev.ID, s.now()); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.notify(func(n *NotificationService) {
		n.NotifyEventChange(ev, scope.UserID, models.NotifyEventCancel)
	})
	return nil
}

// GetEvent returns a visible (non-deleted) event in the scope's family
func (s *EventService) GetEvent(scope models.Scope, eventID string) (*models.Event, error) {
	return s.visibleEvent(scope, eventID)
}

func (s *EventService) visibleEvent(scope models.Scope, eventID string) (*models.Event, error) {
	if scope.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	ev, err := s.eventStore.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil || ev.IsDeleted || (scope.HasFamily() && ev.FamilyID != scope.FamilyID) {
		return nil, ErrEventNotFound
	}
	return ev, nil
}

// MonthEvents returns the family's events for the month containing ref,
// sorted ascending by start. Repeat rules are expanded into their
// occurrences within the month.
func (s *EventService) MonthEvents(scope models.Scope, ref time.Time) ([]models.Event, error) {
	if err := s.verifyScope(scope); err != nil {
		return nil, err
	}

	from, to := calendar.MonthRange(ref, s.loc)
	events, err := s.eventStore.EventsInRange(scope.FamilyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	recurring, err := s.eventStore.RecurringEvents(scope.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recurring events: %w", err)
	}

	seen := make(map[string]bool, len(events))
	var merged []models.Event
	for _, ev := range events {
		if !ev.Repeat.Repeats() {
			merged = append(merged, ev)
			continue
		}
		// Recurring bases are re-added through expansion below.
	}
	for _, occ := range calendar.ExpandAll(recurring, from, to, s.loc) {
		key := occ.ID + occ.StartDate.UTC().Format(time.RFC3339)
		if !seen[key] {
			seen[key] = true
			merged = append(merged, occ)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].StartDate.Before(merged[j].StartDate)
	})
	return merged, nil
}

// DayEvents returns the family's events starting on the given calendar day
func (s *EventService) DayEvents(scope models.Scope, date time.Time) ([]models.Event, error) {
	events, err := s.MonthEvents(scope, date)
	if err != nil {
		return nil, err
	}
	return calendar.EventsOnDay(events, date, s.loc), nil
}

// MonthGrid builds the display grid for the month containing ref
func (s *EventService) MonthGrid(scope models.Scope, ref time.Time) (calendar.MonthGrid, error) {
	events, err := s.MonthEvents(scope, ref)
	if err != nil {
		return calendar.MonthGrid{}, err
	}
	return calendar.BuildMonthGrid(ref, s.loc, events), nil
}

// Participants returns all participant rows for an event
func (s *EventService) Participants(scope models.Scope, eventID string) ([]models.EventParticipant, error) {
	if _, err := s.visibleEvent(scope, eventID); err != nil {
		return nil, err
	}
	return s.eventStore.Participants(eventID)
}

// Respond records the scope user's response to an event. This is an
// upsert keyed by (eventID, userID): the first response creates the row,
// later responses mutate it in place. RespondedAt is stamped whenever
// the recorded status is anything but pending.
func (s *EventService) Respond(scope models.Scope, eventID string, status models.ResponseStatus, comment *string) (*models.EventParticipant, error) {
	ev, err := s.visibleEvent(scope, eventID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, validation.ValidationError{Field: "status", Message: "unknown response status"}
	}

	now := s.now()
	existing, err := s.eventStore.GetParticipant(eventID, scope.UserID)
	if err != nil {
		return nil, err
	}

	var p *models.EventParticipant
	if existing == nil {
		p = &models.EventParticipant{
			ID:        uuid.New().String(),
			EventID:   eventID,
			UserID:    scope.UserID,
			Status:    status,
			Comment:   comment,
			CreatedAt: now,
		}
	} else {
		p = existing
		p.Status = status
		p.Comment = comment
	}
	if status != models.StatusPending {
		p.RespondedAt = &now
	}

	if err := s.eventStore.UpsertParticipant(p); err != nil {
		return nil, fmt.Errorf("failed to record response: %w", err)
	}

	s.notify(func(n *NotificationService) {
		n.NotifyResponse(ev, scope.UserID, status)
	})
	return p, nil
}

// Tally aggregates an event's participant responses by status
func (s *EventService) Tally(scope models.Scope, eventID string) (models.ResponseTally, error) {
	participants, err := s.Participants(scope, eventID)
	if err != nil {
		return models.ResponseTally{}, err
	}
	return models.TallyResponses(participants), nil
}

func (s *EventService) verifyScope(scope models.Scope) error {
	if scope.UserID == "" {
		return ErrNotAuthenticated
	}
	if !scope.HasFamily() {
		return ErrNoFamilySelected
	}
	return nil
}

func (s *EventService) verifyMembership(scope models.Scope) error {
	isMember, err := s.familyStore.IsMember(scope.UserID, scope.FamilyID)
	if err != nil {
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	if !isMember {
		return ErrNotFamilyMember
	}
	return nil
}

// notify runs a notification fan-out when a notifier is configured.
// Delivery is best-effort; the notifier logs and swallows its own errors.
func (s *EventService) notify(fn func(*NotificationService)) {
	if s.notifier != nil {
		fn(s.notifier)
	}
}
