package service

import "errors"

// Sentinel errors surfaced by the service layer. Repository failures are
// wrapped with %w instead; validation errors come from the validation
// package.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")

	ErrFamilyNotFound   = errors.New("family not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotFamilyMember  = errors.New("user is not a member of this family")
	ErrAlreadyMember    = errors.New("user is already a member of this family")
	ErrNoFamilySelected = errors.New("no family selected")
	ErrAdminCannotLeave = errors.New("the family admin cannot leave the family")
	ErrInviteCodeSpace  = errors.New("could not generate an unused invite code")

	ErrEventNotFound   = errors.New("event not found")
	ErrNotEventCreator = errors.New("only the event creator can modify the event")
)
