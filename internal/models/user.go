package models

import "time"

// DefaultNickname is used when the identity provider returns no name
const DefaultNickname = "家人"

// User represents an account in the system. Identity comes either from
// Sign in with Apple (AppleID holds the stable subject) or from a phone
// credential.
type User struct {
	ID           string
	Phone        *string
	AppleID      *string
	Nickname     string
	AvatarURL    *string
	PasswordHash string // empty for Apple-only accounts
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// DisplayName returns the nickname, falling back to the placeholder
func (u *User) DisplayName() string {
	if u.Nickname == "" {
		return DefaultNickname
	}
	return u.Nickname
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Scope identifies who is acting and which family they are acting in.
// It is built once per request from the session and the selected family
// and passed explicitly into every domain operation.
type Scope struct {
	UserID   string
	FamilyID string
}

// HasFamily reports whether a family has been selected. A scope without a
// family can only perform account-level and family-creation operations.
func (s Scope) HasFamily() bool {
	return s.FamilyID != ""
}
