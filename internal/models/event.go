package models

import (
	"errors"
	"time"
)

// Event represents a scheduled occurrence owned by a family
type Event struct {
	ID           string
	FamilyID     string
	CreatorID    string
	Title        string
	Description  *string
	Location     *string
	StartDate    time.Time
	EndDate      time.Time
	Category     *EventCategory
	Repeat       RepeatRule
	ReminderTime *time.Time
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAllDay reports whether the event starts and ends on the same calendar
// day in the given location. This is a derived display property, not a
// stored flag.
func (e *Event) IsAllDay(loc *time.Location) bool {
	return SameDay(e.StartDate, e.EndDate, loc)
}

// CanEdit reports whether userID may modify the event. Only the original
// creator may edit; admins have no override.
func (e *Event) CanEdit(userID string) bool {
	return e.CreatorID == userID
}

// SameDay reports whether a and b fall on the same calendar day in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// EventCategory is a closed set of event classifications
type EventCategory string

const (
	CategoryDining     EventCategory = "dining"
	CategoryTravel     EventCategory = "travel"
	CategoryShopping   EventCategory = "shopping"
	CategoryPayment    EventCategory = "payment"
	CategoryHealthcare EventCategory = "healthcare"
	CategoryEducation  EventCategory = "education"
	CategoryOther      EventCategory = "other"
)

// Valid reports whether the category is one of the known values
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryDining, CategoryTravel, CategoryShopping, CategoryPayment,
		CategoryHealthcare, CategoryEducation, CategoryOther:
		return true
	}
	return false
}

// RepeatKind distinguishes the repeat-rule variants
type RepeatKind string

const (
	RepeatNone    RepeatKind = "none"
	RepeatDaily   RepeatKind = "daily"
	RepeatWeekly  RepeatKind = "weekly"
	RepeatMonthly RepeatKind = "monthly"
	RepeatCustom  RepeatKind = "custom" // every IntervalDays days
)

// RepeatRule is a tagged variant: IntervalDays is meaningful only when
// Kind is RepeatCustom.
type RepeatRule struct {
	Kind         RepeatKind
	IntervalDays int
}

// ErrInvalidRepeatInterval is returned for custom rules with a
// non-positive day interval.
var ErrInvalidRepeatInterval = errors.New("repeat interval must be positive")

// NewCustomRepeat builds a custom repeat rule, validating the interval
func NewCustomRepeat(intervalDays int) (RepeatRule, error) {
	if intervalDays <= 0 {
		return RepeatRule{}, ErrInvalidRepeatInterval
	}
	return RepeatRule{Kind: RepeatCustom, IntervalDays: intervalDays}, nil
}

// Repeats reports whether the rule produces more than one occurrence
func (r RepeatRule) Repeats() bool {
	return r.Kind != "" && r.Kind != RepeatNone
}
