package handlers

import (
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"

	"familycal/internal/service"
)

// ICSHandler exports the family calendar as an iCalendar feed for
// subscription from stock calendar apps.
type ICSHandler struct {
	eventService  *service.EventService
	familyService *service.FamilyService
	loc           *time.Location
}

// NewICSHandler creates a new ICS export handler
func NewICSHandler(eventService *service.EventService, familyService *service.FamilyService, loc *time.Location) *ICSHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ICSHandler{
		eventService:  eventService,
		familyService: familyService,
		loc:           loc,
	}
}

// ExportMonth serves the scoped family's month as text/calendar. The
// month comes from ?date=; recurrences are exported pre-expanded, one
// VEVENT per occurrence.
func (h *ICSHandler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())

	ref := time.Now().In(h.loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, want YYYY-MM-DD", Field: "date"})
			return
		}
		ref = parsed
	}

	family, err := h.familyService.GetFamily(scope.FamilyID)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.eventService.MonthEvents(scope, ref)
	if err != nil {
		writeError(w, err)
		return
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//familycal//calendar//CN")
	cal.SetName(family.Name)

	now := time.Now()
	for i := range events {
		ev := &events[i]
		// Expanded occurrences of one event share an id; the start
		// disambiguates the UID.
		uid := fmt.Sprintf("%s-%d@familycal", ev.ID, ev.StartDate.Unix())

		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(now)
		ve.SetSummary(ev.Title)
		ve.SetStartAt(ev.StartDate.In(h.loc))
		ve.SetEndAt(ev.EndDate.In(h.loc))
		if ev.Description != nil {
			ve.SetDescription(*ev.Description)
		}
		if ev.Location != nil {
			ve.SetLocation(*ev.Location)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "family-calendar.ics"))
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		// Client went away mid-write; nothing to recover.
		return
	}
}
