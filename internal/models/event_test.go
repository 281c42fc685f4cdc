package models

import (
	"errors"
	"testing"
	"time"
)

func TestSameDay(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	tests := []struct {
		name string
		a, b time.Time
		loc  *time.Location
		want bool
	}{
		{
			name: "same local day",
			a:    time.Date(2025, 3, 8, 9, 0, 0, 0, shanghai),
			b:    time.Date(2025, 3, 8, 23, 59, 0, 0, shanghai),
			loc:  shanghai,
			want: true,
		},
		{
			name: "crosses local midnight",
			a:    time.Date(2025, 3, 8, 23, 0, 0, 0, shanghai),
			b:    time.Date(2025, 3, 9, 1, 0, 0, 0, shanghai),
			loc:  shanghai,
			want: false,
		},
		{
			name: "same UTC instant different local day",
			// 2025-03-08 18:00 UTC is 09 02:00 in Shanghai but 08 18:00 in UTC.
			a:    time.Date(2025, 3, 8, 18, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 8, 20, 0, 0, 0, time.UTC),
			loc:  shanghai,
			want: true,
		},
		{
			name: "UTC same day but local day differs",
			a:    time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC), // 18:00 local
			b:    time.Date(2025, 3, 8, 18, 0, 0, 0, time.UTC), // 02:00 next day local
			loc:  shanghai,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameDay(tt.a, tt.b, tt.loc); got != tt.want {
				t.Errorf("SameDay(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEventIsAllDay(t *testing.T) {
	loc := time.UTC
	ev := Event{
		StartDate: time.Date(2025, 3, 8, 0, 0, 0, 0, loc),
		EndDate:   time.Date(2025, 3, 8, 23, 0, 0, 0, loc),
	}
	if !ev.IsAllDay(loc) {
		t.Error("IsAllDay() = false for a same-day event")
	}

	ev.EndDate = time.Date(2025, 3, 9, 0, 30, 0, 0, loc)
	if ev.IsAllDay(loc) {
		t.Error("IsAllDay() = true for a multi-day event")
	}
}

func TestCanEdit(t *testing.T) {
	ev := Event{CreatorID: "u1"}
	if !ev.CanEdit("u1") {
		t.Error("creator cannot edit own event")
	}
	if ev.CanEdit("u2") {
		t.Error("non-creator can edit event")
	}
}

func TestNewCustomRepeat(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		wantErr  bool
	}{
		{name: "positive interval", interval: 3, wantErr: false},
		{name: "one day", interval: 1, wantErr: false},
		{name: "zero", interval: 0, wantErr: true},
		{name: "negative", interval: -2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := NewCustomRepeat(tt.interval)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRepeatInterval) {
					t.Errorf("NewCustomRepeat(%d) error = %v, want %v", tt.interval, err, ErrInvalidRepeatInterval)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCustomRepeat(%d) error = %v", tt.interval, err)
			}
			if rule.Kind != RepeatCustom || rule.IntervalDays != tt.interval {
				t.Errorf("NewCustomRepeat(%d) = %+v", tt.interval, rule)
			}
		})
	}
}

func TestRepeatRuleRepeats(t *testing.T) {
	tests := []struct {
		name string
		rule RepeatRule
		want bool
	}{
		{name: "zero value", rule: RepeatRule{}, want: false},
		{name: "explicit none", rule: RepeatRule{Kind: RepeatNone}, want: false},
		{name: "daily", rule: RepeatRule{Kind: RepeatDaily}, want: true},
		{name: "weekly", rule: RepeatRule{Kind: RepeatWeekly}, want: true},
		{name: "monthly", rule: RepeatRule{Kind: RepeatMonthly}, want: true},
		{name: "custom", rule: RepeatRule{Kind: RepeatCustom, IntervalDays: 5}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Repeats(); got != tt.want {
				t.Errorf("Repeats() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventCategoryValid(t *testing.T) {
	for _, c := range []EventCategory{CategoryDining, CategoryTravel, CategoryShopping, CategoryPayment, CategoryHealthcare, CategoryEducation, CategoryOther} {
		if !c.Valid() {
			t.Errorf("category %q reported invalid", c)
		}
	}
	if EventCategory("party").Valid() {
		t.Error("unknown category reported valid")
	}
}
