package repository

import (
	"database/sql"
	"fmt"

	"familycal/internal/database"
	"familycal/internal/models"
)

// FamilyRepository handles database operations for families and members
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily inserts the family row only. Writing the admin member row
// is a separate step; the service owns that sequencing and its recovery.
func (r *FamilyRepository) CreateFamily(family *models.Family) error {
	query := `
		INSERT INTO families (id, name, admin_id, invite_code, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		family.ID, family.Name, family.AdminID, family.InviteCode, family.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create family: %w", err)
	}
	return nil
}

// GetFamilyByID retrieves a family by id, or nil when absent
func (r *FamilyRepository) GetFamilyByID(familyID string) (*models.Family, error) {
	return r.getFamily("SELECT id, name, admin_id, invite_code, created_at FROM families WHERE id = ?", familyID)
}

// GetFamilyByInviteCode retrieves a family by invite code, or nil when absent
func (r *FamilyRepository) GetFamilyByInviteCode(code string) (*models.Family, error) {
	return r.getFamily("SELECT id, name, admin_id, invite_code, created_at FROM families WHERE invite_code = ?", code)
}

func (r *FamilyRepository) getFamily(query string, arg interface{}) (*models.Family, error) {
	family := &models.Family{}
	err := r.db.QueryRow(query, arg).Scan(
		&family.ID, &family.Name, &family.AdminID, &family.InviteCode, &family.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	count, err := r.MemberCount(family.ID)
	if err != nil {
		return nil, err
	}
	family.MemberCount = count
	return family, nil
}

// InviteCodeExists reports whether any family already uses the code
func (r *FamilyRepository) InviteCodeExists(code string) (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM families WHERE invite_code = ?", code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}
	return count > 0, nil
}

// GetUserFamilies retrieves all families a user belongs to
func (r *FamilyRepository) GetUserFamilies(userID string) ([]models.Family, error) {
	query := `
		SELECT f.id, f.name, f.admin_id, f.invite_code, f.created_at
		FROM families f
		INNER JOIN family_members fm ON f.id = fm.family_id
		WHERE fm.user_id = ?
		ORDER BY f.created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var family models.Family
		if err := rows.Scan(&family.ID, &family.Name, &family.AdminID, &family.InviteCode, &family.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}
	return families, rows.Err()
}

// AddMember inserts a family member row. The (family_id, user_id) unique
// constraint rejects duplicate membership.
func (r *FamilyRepository) AddMember(member *models.FamilyMember) error {
	query := `
		INSERT INTO family_members (id, family_id, user_id, role, nickname, joined_at, notification_enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		member.ID, member.FamilyID, member.UserID, string(member.Role),
		member.Nickname, member.JoinedAt, member.NotificationEnabled,
	)
	if err != nil {
		return fmt.Errorf("failed to add family member: %w", err)
	}
	return nil
}

// GetMember retrieves one membership row, or nil when absent
func (r *FamilyRepository) GetMember(familyID, userID string) (*models.FamilyMember, error) {
	query := `
		SELECT id, family_id, user_id, role, nickname, joined_at, notification_enabled
		FROM family_members WHERE family_id = ? AND user_id = ?
	`
	member := &models.FamilyMember{}
	var role string
	err := r.db.QueryRow(query, familyID, userID).Scan(
		&member.ID, &member.FamilyID, &member.UserID, &role,
		&member.Nickname, &member.JoinedAt, &member.NotificationEnabled,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family member: %w", err)
	}
	member.Role = models.MemberRole(role)
	return member, nil
}

// GetMembers retrieves the full roster of a family, oldest first
func (r *FamilyRepository) GetMembers(familyID string) ([]models.FamilyMember, error) {
	query := `
		SELECT id, family_id, user_id, role, nickname, joined_at, notification_enabled
		FROM family_members WHERE family_id = ?
		ORDER BY joined_at ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var members []models.FamilyMember
	for rows.Next() {
		var member models.FamilyMember
		var role string
		if err := rows.Scan(
			&member.ID, &member.FamilyID, &member.UserID, &role,
			&member.Nickname, &member.JoinedAt, &member.NotificationEnabled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		member.Role = models.MemberRole(role)
		members = append(members, member)
	}
	return members, rows.Err()
}

// IsMember checks if a user belongs to a family
func (r *FamilyRepository) IsMember(userID, familyID string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM family_members WHERE user_id = ? AND family_id = ?"
	if err := r.db.QueryRow(query, userID, familyID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check family membership: %w", err)
	}
	return count > 0, nil
}

// MemberCount returns the roster size of a family
func (r *FamilyRepository) MemberCount(familyID string) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM family_members WHERE family_id = ?", familyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count family members: %w", err)
	}
	return count, nil
}

// RemoveMember deletes a membership row
func (r *FamilyRepository) RemoveMember(familyID, userID string) error {
	query := "DELETE FROM family_members WHERE family_id = ? AND user_id = ?"
	if _, err := r.db.Exec(query, familyID, userID); err != nil {
		return fmt.Errorf("failed to remove family member: %w", err)
	}
	return nil
}

// SetNotificationEnabled toggles a member's notification preference
func (r *FamilyRepository) SetNotificationEnabled(familyID, userID string, enabled bool) error {
	query := "UPDATE family_members SET notification_enabled = ? WHERE family_id = ? AND user_id = ?"
	if _, err := r.db.Exec(query, enabled, familyID, userID); err != nil {
		return fmt.Errorf("failed to update notification preference: %w", err)
	}
	return nil
}
