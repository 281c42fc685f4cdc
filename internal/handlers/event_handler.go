package handlers

import (
	"net/http"
	"time"

	"familycal/internal/models"
	"familycal/internal/service"
)

// EventHandler handles event, participation and calendar-view requests
type EventHandler struct {
	eventService *service.EventService
	loc          *time.Location
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService, loc *time.Location) *EventHandler {
	if loc == nil {
		loc = time.Local
	}
	return &EventHandler{eventService: eventService, loc: loc}
}

type eventRequest struct {
	Title        string                `json:"title"`
	Description  *string               `json:"description"`
	Location     *string               `json:"location"`
	StartDate    time.Time             `json:"startDate"`
	EndDate      time.Time             `json:"endDate"`
	Category     *models.EventCategory `json:"category"`
	RepeatKind   models.RepeatKind     `json:"repeatKind"`
	RepeatDays   int                   `json:"repeatIntervalDays"`
	ReminderTime *time.Time            `json:"reminderTime"`
	Participants []string              `json:"participants"`
}

func (req *eventRequest) repeat() models.RepeatRule {
	return models.RepeatRule{Kind: req.RepeatKind, IntervalDays: req.RepeatDays}
}

// Create creates an event with pending participant rows
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())

	var req eventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ev, err := h.eventService.CreateEvent(scope, service.CreateEventInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Category:     req.Category,
		Repeat:       req.repeat(),
		ReminderTime: req.ReminderTime,
		Participants: req.Participants,
	})
	if err != nil {
		// A partial participant failure still created the event; the
		// error body carries the ids to retry.
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventView(ev, scope, h.loc))
}

// Get returns one event
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	ev, err := h.eventService.GetEvent(scope, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventView(ev, scope, h.loc))
}

// Update rewrites an event's mutable fields
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())

	var req eventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ev, err := h.eventService.UpdateEvent(scope, r.PathValue("id"), service.UpdateEventInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Category:     req.Category,
		Repeat:       req.repeat(),
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventView(ev, scope, h.loc))
}

// Delete soft-deletes an event
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	if err := h.eventService.DeleteEvent(scope, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// AddParticipants re-issues pending participant writes after a partial
// create failure.
func (h *EventHandler) AddParticipants(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())

	var req struct {
		UserIDs []string `json:"userIds"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.eventService.AddMissingParticipants(scope, r.PathValue("id"), req.UserIDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Month lists the scoped family's events for the month in ?date=
func (h *EventHandler) Month(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	ref, ok := h.queryDate(w, r)
	if !ok {
		return
	}

	events, err := h.eventService.MonthEvents(scope, ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventViews(events, scope, h.loc))
}

// Day lists the scoped family's events on one calendar day
func (h *EventHandler) Day(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	ref, ok := h.queryDate(w, r)
	if !ok {
		return
	}

	events, err := h.eventService.DayEvents(scope, ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventViews(events, scope, h.loc))
}

// Grid returns the month display grid for the month in ?date=
func (h *EventHandler) Grid(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	ref, ok := h.queryDate(w, r)
	if !ok {
		return
	}

	grid, err := h.eventService.MonthGrid(scope, ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthGridView(grid))
}

// Respond records the caller's response to an event
func (h *EventHandler) Respond(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())

	var req struct {
		Status  models.ResponseStatus `json:"status"`
		Comment *string               `json:"comment"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.eventService.Respond(scope, r.PathValue("id"), req.Status, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipantView(p))
}

// Participants returns an event's participant rows
func (h *EventHandler) Participants(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	participants, err := h.eventService.Participants(scope, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipantViews(participants))
}

// Tally returns an event's response counts by status
func (h *EventHandler) Tally(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	tally, err := h.eventService.Tally(scope, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tallyView{
		Pending:   tally.Pending,
		Accepted:  tally.Accepted,
		Declined:  tally.Declined,
		Tentative: tally.Tentative,
		Total:     tally.Total,
	})
}

// queryDate parses ?date=2006-01-02, defaulting to today
func (h *EventHandler) queryDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now().In(h.loc), true
	}
	ref, err := time.ParseInLocation("2006-01-02", raw, h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, want YYYY-MM-DD", Field: "date"})
		return time.Time{}, false
	}
	return ref, true
}
