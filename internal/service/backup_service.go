package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"familycal/internal/database"
)

// BackupData represents the complete database backup structure.
// Sessions are deliberately excluded; they are re-established on login.
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Users        []UserBackup        `json:"users"`
	Families     []FamilyBackup      `json:"families"`
	Members      []MemberBackup      `json:"members"`
	Events       []EventBackup       `json:"events"`
	Participants []ParticipantBackup `json:"participants"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID           string     `json:"id"`
	Phone        string     `json:"phone"`
	AppleID      string     `json:"apple_id"`
	Nickname     string     `json:"nickname"`
	AvatarURL    string     `json:"avatar_url"`
	PasswordHash string     `json:"password_hash"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// FamilyBackup represents a family record for backup
type FamilyBackup struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	AdminID    string    `json:"admin_id"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
}

// MemberBackup represents a family member record for backup
type MemberBackup struct {
	ID                  string    `json:"id"`
	FamilyID            string    `json:"family_id"`
	UserID              string    `json:"user_id"`
	Role                string    `json:"role"`
	Nickname            string    `json:"nickname"`
	JoinedAt            time.Time `json:"joined_at"`
	NotificationEnabled bool      `json:"notification_enabled"`
}

// EventBackup represents an event record for backup
type EventBackup struct {
	ID             string     `json:"id"`
	FamilyID       string     `json:"family_id"`
	CreatorID      string     `json:"creator_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Location       string     `json:"location"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Category       string     `json:"category"`
	RepeatKind     string     `json:"repeat_kind"`
	RepeatInterval int        `json:"repeat_interval"`
	ReminderTime   *time.Time `json:"reminder_time"`
	IsDeleted      bool       `json:"is_deleted"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ParticipantBackup represents an event participant record for backup
type ParticipantBackup struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	Comment     string     `json:"comment"`
	RespondedAt *time.Time `json:"responded_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}
	slog.Info("Database exported", "path", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportFamilies(backup); err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}
	if err := s.exportMembers(backup); err != nil {
		return fmt.Errorf("failed to export members: %w", err)
	}
	if err := s.exportEvents(backup); err != nil {
		return fmt.Errorf("failed to export events: %w", err)
	}
	if err := s.exportParticipants(backup); err != nil {
		return fmt.Errorf("failed to export participants: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	slog.Info("Export complete",
		"users", len(backup.Users),
		"families", len(backup.Families),
		"members", len(backup.Members),
		"events", len(backup.Events),
		"participants", len(backup.Participants),
	)
	return nil
}

// Import restores a database from a backup file. Rows are inserted in
// dependency order; existing rows with the same ids make it fail.
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	// All or nothing: a half-restored dataset is worse than none.
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.importUsers(tx, backup.Users); err != nil {
		return err
	}
	if err := s.importFamilies(tx, backup.Families); err != nil {
		return err
	}
	if err := s.importMembers(tx, backup.Members); err != nil {
		return err
	}
	if err := s.importEvents(tx, backup.Events); err != nil {
		return err
	}
	if err := s.importParticipants(tx, backup.Participants); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	slog.Info("Import complete",
		"users", len(backup.Users),
		"families", len(backup.Families),
		"events", len(backup.Events),
	)
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, COALESCE(phone, ''), COALESCE(apple_id, ''), nickname, COALESCE(avatar_url, ''), password_hash, created_at, last_login_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Phone, &u.AppleID, &u.Nickname, &u.AvatarURL, &u.PasswordHash, &u.CreatedAt, &u.LastLoginAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	query := "SELECT id, name, admin_id, invite_code, created_at FROM families ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Name, &f.AdminID, &f.InviteCode, &f.CreatedAt); err != nil {
			return err
		}
		backup.Families = append(backup.Families, f)
	}
	return rows.Err()
}

func (s *BackupService) exportMembers(backup *BackupData) error {
	query := "SELECT id, family_id, user_id, role, nickname, joined_at, notification_enabled FROM family_members ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MemberBackup
		if err := rows.Scan(&m.ID, &m.FamilyID, &m.UserID, &m.Role, &m.Nickname, &m.JoinedAt, &m.NotificationEnabled); err != nil {
			return err
		}
		backup.Members = append(backup.Members, m)
	}
	return rows.Err()
}

func (s *BackupService) exportEvents(backup *BackupData) error {
	query := "SELECT id, family_id, creator_id, title, COALESCE(description, ''), COALESCE(location, ''), start_date, end_date, COALESCE(category, ''), repeat_kind, repeat_interval, reminder_time, is_deleted, created_at, updated_at FROM events ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e EventBackup
		if err := rows.Scan(&e.ID, &e.FamilyID, &e.CreatorID, &e.Title, &e.Description, &e.Location, &e.StartDate, &e.EndDate, &e.Category, &e.RepeatKind, &e.RepeatInterval, &e.ReminderTime, &e.IsDeleted, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return err
		}
		backup.Events = append(backup.Events, e)
	}
	return rows.Err()
}

func (s *BackupService) exportParticipants(backup *BackupData) error {
	query := "SELECT id, event_id, user_id, status, COALESCE(comment, ''), responded_at, created_at FROM event_participants ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ParticipantBackup
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.Status, &p.Comment, &p.RespondedAt, &p.CreatedAt); err != nil {
			return err
		}
		backup.Participants = append(backup.Participants, p)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(tx *database.Tx, users []UserBackup) error {
	for _, u := range users {
		query := "INSERT INTO users (id, phone, apple_id, nickname, avatar_url, password_hash, created_at, last_login_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, u.ID, nullIfEmpty(u.Phone), nullIfEmpty(u.AppleID), u.Nickname, nullIfEmpty(u.AvatarURL), u.PasswordHash, u.CreatedAt, u.LastLoginAt); err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importFamilies(tx *database.Tx, families []FamilyBackup) error {
	for _, f := range families {
		query := "INSERT INTO families (id, name, admin_id, invite_code, created_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, f.ID, f.Name, f.AdminID, f.InviteCode, f.CreatedAt); err != nil {
			return fmt.Errorf("failed to import family %s: %w", f.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importMembers(tx *database.Tx, members []MemberBackup) error {
	for _, m := range members {
		query := "INSERT INTO family_members (id, family_id, user_id, role, nickname, joined_at, notification_enabled) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, m.ID, m.FamilyID, m.UserID, m.Role, m.Nickname, m.JoinedAt, m.NotificationEnabled); err != nil {
			return fmt.Errorf("failed to import member %s: %w", m.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importEvents(tx *database.Tx, events []EventBackup) error {
	for _, e := range events {
		query := "INSERT INTO events (id, family_id, creator_id, title, description, location, start_date, end_date, category, repeat_kind, repeat_interval, reminder_time, is_deleted, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, e.ID, e.FamilyID, e.CreatorID, e.Title, nullIfEmpty(e.Description), nullIfEmpty(e.Location), e.StartDate, e.EndDate, nullIfEmpty(e.Category), e.RepeatKind, e.RepeatInterval, e.ReminderTime, e.IsDeleted, e.CreatedAt, e.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import event %s: %w", e.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importParticipants(tx *database.Tx, participants []ParticipantBackup) error {
	for _, p := range participants {
		query := "INSERT INTO event_participants (id, event_id, user_id, status, comment, responded_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, p.ID, p.EventID, p.UserID, p.Status, nullIfEmpty(p.Comment), p.RespondedAt, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to import participant %s: %w", p.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
