package calendar

import (
	"time"

	"github.com/teambition/rrule-go"

	"familycal/internal/models"
)

// maxOccurrencesPerEvent caps expansion so a pathological rule cannot
// produce an unbounded occurrence list.
const maxOccurrencesPerEvent = 366

// ExpandOccurrences materializes an event's repeat rule into concrete
// occurrences whose starts fall within [from, to]. Each occurrence keeps
// the original event's duration and identity. Non-repeating events are
// returned as-is when they fall in range; soft-deleted events expand to
// nothing.
func ExpandOccurrences(ev models.Event, from, to time.Time, loc *time.Location) []models.Event {
	if ev.IsDeleted {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	if !ev.Repeat.Repeats() {
		if !ev.StartDate.Before(from) && ev.StartDate.Before(to) {
			return []models.Event{ev}
		}
		return nil
	}

	opt := rrule.ROption{Dtstart: ev.StartDate.In(loc)}
	switch ev.Repeat.Kind {
	case models.RepeatDaily:
		opt.Freq = rrule.DAILY
	case models.RepeatWeekly:
		opt.Freq = rrule.WEEKLY
	case models.RepeatMonthly:
		opt.Freq = rrule.MONTHLY
	case models.RepeatCustom:
		opt.Freq = rrule.DAILY
		opt.Interval = ev.Repeat.IntervalDays
	default:
		return nil
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil
	}

	starts := rule.Between(from.In(loc), to.In(loc), true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
	}

	duration := ev.EndDate.Sub(ev.StartDate)
	out := make([]models.Event, 0, len(starts))
	for _, start := range starts {
		// Between is inclusive on both ends; keep the half-open contract.
		if !start.Before(to) {
			continue
		}
		occ := ev
		occ.StartDate = start
		occ.EndDate = start.Add(duration)
		out = append(out, occ)
	}
	return out
}

// ExpandAll expands every event in the slice over [from, to) and returns
// the merged occurrence list.
func ExpandAll(events []models.Event, from, to time.Time, loc *time.Location) []models.Event {
	var out []models.Event
	for _, ev := range events {
		out = append(out, ExpandOccurrences(ev, from, to, loc)...)
	}
	return out
}
