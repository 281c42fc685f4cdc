// Package validation holds field-level input checks that run synchronously
// before any repository I/O.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"familycal/internal/models"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidationError represents a user-correctable input error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEventTitle checks that a title is non-blank after trimming
func ValidateEventTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

// ValidateEventDates checks that the end is strictly after the start.
// ReminderTime intentionally has no ordering constraint against the start.
func ValidateEventDates(start, end time.Time) error {
	if !end.After(start) {
		return ValidationError{Field: "endDate", Message: "end must be after start"}
	}
	return nil
}

// ValidateEvent runs all event field checks in order
func ValidateEvent(title string, start, end time.Time) error {
	if err := ValidateEventTitle(title); err != nil {
		return err
	}
	return ValidateEventDates(start, end)
}

// ValidateInviteCode checks the invite-code shape: 6 chars of [A-Z0-9]
func ValidateInviteCode(code string) error {
	if !models.ValidInviteCode(code) {
		return ValidationError{Field: "inviteCode", Message: "invalid invite code"}
	}
	return nil
}

// ValidateFamilyName checks that a family name is non-blank
func ValidateFamilyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: "name", Message: "family name is required"}
	}
	return nil
}

// ValidatePhone checks the phone-number shape
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ValidationError{Field: "phone", Message: "phone is required"}
	}
	if !phoneRegex.MatchString(phone) {
		return ValidationError{Field: "phone", Message: "invalid phone format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}
