// Package calendar derives display views from fetched events: the month
// grid shown by calendar clients and the expansion of repeat rules into
// concrete occurrences.
package calendar

import (
	"time"

	"familycal/internal/models"
)

// DaySlot is one cell of the month grid. Padding slots before day 1 have
// a zero Day and Date.
type DaySlot struct {
	Day       int
	Date      time.Time
	HasEvents bool
}

// IsPadding reports whether the slot precedes day 1 of the month
func (s DaySlot) IsPadding() bool {
	return s.Day == 0
}

// MonthGrid is the ordered sequence of day slots for one displayed month:
// FirstWeekday padding slots followed by one slot per calendar day.
type MonthGrid struct {
	Year         int
	Month        time.Month
	FirstWeekday int // 0=Sunday .. 6=Saturday
	Slots        []DaySlot
}

// BuildMonthGrid maps the month containing ref onto an ordered grid of
// day slots. A day has events iff at least one non-deleted event's start
// falls within that calendar day in loc; day boundaries are local to loc,
// never UTC. A zero ref yields an empty grid rather than an error.
func BuildMonthGrid(ref time.Time, loc *time.Location, events []models.Event) MonthGrid {
	if ref.IsZero() {
		return MonthGrid{}
	}
	if loc == nil {
		loc = time.Local
	}

	ref = ref.In(loc)
	year, month := ref.Year(), ref.Month()
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()
	firstWeekday := int(monthStart.Weekday())

	// Days of this month that carry at least one event start.
	eventDays := make(map[int]bool)
	for _, ev := range events {
		if ev.IsDeleted {
			continue
		}
		start := ev.StartDate.In(loc)
		if start.Year() == year && start.Month() == month {
			eventDays[start.Day()] = true
		}
	}

	slots := make([]DaySlot, 0, firstWeekday+daysInMonth)
	for i := 0; i < firstWeekday; i++ {
		slots = append(slots, DaySlot{})
	}
	for day := 1; day <= daysInMonth; day++ {
		slots = append(slots, DaySlot{
			Day:       day,
			Date:      time.Date(year, month, day, 0, 0, 0, 0, loc),
			HasEvents: eventDays[day],
		})
	}

	return MonthGrid{
		Year:         year,
		Month:        month,
		FirstWeekday: firstWeekday,
		Slots:        slots,
	}
}

// MonthRange returns the half-open interval [start of month, start of
// next month) containing ref, in loc. Used to bound event range queries.
func MonthRange(ref time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	ref = ref.In(loc)
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// EventsOnDay filters events whose start falls on the same calendar day
// as date in loc, skipping soft-deleted rows.
func EventsOnDay(events []models.Event, date time.Time, loc *time.Location) []models.Event {
	var out []models.Event
	for _, ev := range events {
		if ev.IsDeleted {
			continue
		}
		if models.SameDay(ev.StartDate, date, loc) {
			out = append(out, ev)
		}
	}
	return out
}
