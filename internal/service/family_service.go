package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"familycal/internal/models"
	"familycal/internal/validation"
)

// inviteCodeMaxAttempts bounds the retry loop when a freshly generated
// invite code collides with an existing family.
const inviteCodeMaxAttempts = 10

// FamilyService handles family and membership business logic
type FamilyService struct {
	familyStore FamilyStore
	userStore   UserStore
}

// NewFamilyService creates a new family service
func NewFamilyService(familyStore FamilyStore, userStore UserStore) *FamilyService {
	return &FamilyService{
		familyStore: familyStore,
		userStore:   userStore,
	}
}

// CreateFamily creates a family with userID as admin. This is two
// sequenced writes: the family row, then the admin member row. If the
// member write fails the family row is kept and the error wraps the
// family id; EnsureAdminMember repairs it without re-creating the family.
func (s *FamilyService) CreateFamily(userID, name string) (*models.Family, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := validation.ValidateFamilyName(name); err != nil {
		return nil, err
	}

	code, err := s.uniqueInviteCode()
	if err != nil {
		return nil, err
	}

	family := &models.Family{
		ID:         uuid.New().String(),
		Name:       name,
		AdminID:    userID,
		InviteCode: code,
		CreatedAt:  time.Now(),
	}
	if err := s.familyStore.CreateFamily(family); err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	if err := s.EnsureAdminMember(family.ID, userID); err != nil {
		return family, fmt.Errorf("family %s created but admin member write failed: %w", family.ID, err)
	}

	family.MemberCount = 1
	return family, nil
}

// EnsureAdminMember writes the admin member row for a family if it is
// missing. Safe to call repeatedly; it is the recovery path for a
// create-family flow that failed between its two writes.
func (s *FamilyService) EnsureAdminMember(familyID, userID string) error {
	existing, err := s.familyStore.GetMember(familyID, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	nickname := ""
	if user, err := s.userStore.GetUserByID(userID); err == nil && user != nil {
		nickname = user.DisplayName()
	}

	return s.familyStore.AddMember(&models.FamilyMember{
		ID:                  uuid.New().String(),
		FamilyID:            familyID,
		UserID:              userID,
		Role:                models.RoleAdmin,
		Nickname:            nickname,
		JoinedAt:            time.Now(),
		NotificationEnabled: true,
	})
}

func (s *FamilyService) uniqueInviteCode() (string, error) {
	for i := 0; i < inviteCodeMaxAttempts; i++ {
		code, err := models.GenerateInviteCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		exists, err := s.familyStore.InviteCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrInviteCodeSpace
}

// JoinFamily looks up a family by invite code and adds userID as a
// regular member. The lookup is read-only, so the whole flow is safe to
// retry after a failed member write.
func (s *FamilyService) JoinFamily(userID, code, nickname string) (*models.Family, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := validation.ValidateInviteCode(code); err != nil {
		return nil, err
	}

	family, err := s.familyStore.GetFamilyByInviteCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}

	isMember, err := s.familyStore.IsMember(userID, family.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	if nickname == "" {
		if user, err := s.userStore.GetUserByID(userID); err == nil && user != nil {
			nickname = user.DisplayName()
		}
	}

	member := &models.FamilyMember{
		ID:                  uuid.New().String(),
		FamilyID:            family.ID,
		UserID:              userID,
		Role:                models.RoleMember,
		Nickname:            nickname,
		JoinedAt:            time.Now(),
		NotificationEnabled: true,
	}
	if err := s.familyStore.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to join family: %w", err)
	}

	family.MemberCount++
	return family, nil
}

// LeaveFamily removes userID from the family roster. The admin cannot
// leave; the family would be orphaned.
func (s *FamilyService) LeaveFamily(scope models.Scope) error {
	member, err := s.familyStore.GetMember(scope.FamilyID, scope.UserID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFamilyMember
	}
	if member.Role == models.RoleAdmin {
		return ErrAdminCannotLeave
	}
	return s.familyStore.RemoveMember(scope.FamilyID, scope.UserID)
}

// GetFamily retrieves a family by id
func (s *FamilyService) GetFamily(familyID string) (*models.Family, error) {
	family, err := s.familyStore.GetFamilyByID(familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	return family, nil
}

// GetUserFamilies retrieves all families a user belongs to
func (s *FamilyService) GetUserFamilies(userID string) ([]models.Family, error) {
	return s.familyStore.GetUserFamilies(userID)
}

// GetMembers retrieves the roster of a family, requiring the caller to
// be on it.
func (s *FamilyService) GetMembers(scope models.Scope) ([]models.FamilyMember, error) {
	members, err := s.familyStore.GetMembers(scope.FamilyID)
	if err != nil {
		return nil, err
	}
	if models.FindMember(members, scope.UserID) == nil {
		return nil, ErrNotFamilyMember
	}
	return members, nil
}

// VerifyMembership checks that the scope's user belongs to its family
func (s *FamilyService) VerifyMembership(scope models.Scope) error {
	if scope.UserID == "" {
		return ErrNotAuthenticated
	}
	if !scope.HasFamily() {
		return ErrNoFamilySelected
	}
	isMember, err := s.familyStore.IsMember(scope.UserID, scope.FamilyID)
	if err != nil {
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	if !isMember {
		return ErrNotFamilyMember
	}
	return nil
}

// IsAdmin derives admin status from the authoritative roster. When the
// roster and the denormalized Family.AdminID disagree, the roster wins
// and the divergence is logged as a data-repair case.
func (s *FamilyService) IsAdmin(userID, familyID string) (bool, error) {
	members, err := s.familyStore.GetMembers(familyID)
	if err != nil {
		return false, err
	}
	fromRoster := models.IsAdmin(userID, members)

	if family, err := s.familyStore.GetFamilyByID(familyID); err == nil && family != nil {
		fromCache := family.AdminID == userID
		if fromCache != fromRoster {
			slog.Warn("family admin roster and cached admin_id diverge",
				"family_id", familyID, "admin_id", family.AdminID, "user_id", userID)
		}
	}
	return fromRoster, nil
}

// SetNotificationEnabled toggles the scope user's notification preference
func (s *FamilyService) SetNotificationEnabled(scope models.Scope, enabled bool) error {
	if err := s.VerifyMembership(scope); err != nil {
		return err
	}
	return s.familyStore.SetNotificationEnabled(scope.FamilyID, scope.UserID, enabled)
}
