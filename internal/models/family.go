package models

import (
	"crypto/rand"
	"math/big"
	"time"
)

// InviteCodeLength is the fixed length of family invite codes
const InviteCodeLength = 6

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Family represents a group of users sharing one calendar
type Family struct {
	ID          string
	Name        string
	AdminID     string
	InviteCode  string
	MemberCount int
	CreatedAt   time.Time
}

// FamilyMember represents the relationship between a user and a family
type FamilyMember struct {
	ID                  string
	FamilyID            string
	UserID              string
	Role                MemberRole
	Nickname            string // family-scoped display name
	JoinedAt            time.Time
	NotificationEnabled bool
}

// MemberRole is a family member's role
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Valid reports whether the role is one of the known values
func (r MemberRole) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// GenerateInviteCode produces a 6-character code drawn uniformly from
// [A-Z0-9]. Uniqueness across families is the caller's concern.
func GenerateInviteCode() (string, error) {
	code := make([]byte, InviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// ValidInviteCode reports whether code has the exact invite-code shape:
// 6 characters, each an uppercase letter or digit. Case-sensitive.
func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// FindMember returns the roster row for userID, or nil
func FindMember(members []FamilyMember, userID string) *FamilyMember {
	for i := range members {
		if members[i].UserID == userID {
			return &members[i]
		}
	}
	return nil
}

// IsAdmin reports whether userID holds the admin role in the given roster.
// The roster is authoritative; Family.AdminID is a denormalized cache of
// the same fact.
func IsAdmin(userID string, members []FamilyMember) bool {
	for _, m := range members {
		if m.UserID == userID && m.Role == RoleAdmin {
			return true
		}
	}
	return false
}
