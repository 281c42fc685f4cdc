package repository

import (
	"database/sql"
	"fmt"
	"time"

	"familycal/internal/database"
	"familycal/internal/models"
)

// UserRepository handles database operations for users and sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user. The caller assigns the ID.
func (r *UserRepository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (id, phone, apple_id, nickname, avatar_url, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		user.ID, user.Phone, user.AppleID, user.Nickname, user.AvatarURL,
		user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

const userColumns = "id, phone, apple_id, nickname, avatar_url, password_hash, created_at, last_login_at"

// GetUserByID retrieves a user by id, or nil when absent
func (r *UserRepository) GetUserByID(id string) (*models.User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetUserByPhone retrieves a user by phone number, or nil when absent
func (r *UserRepository) GetUserByPhone(phone string) (*models.User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE phone = ?", phone)
}

// GetUserByAppleID retrieves a user by Apple subject, or nil when absent
func (r *UserRepository) GetUserByAppleID(appleID string) (*models.User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE apple_id = ?", appleID)
}

func (r *UserRepository) getUser(query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	var phone, appleID, avatarURL sql.NullString
	var lastLoginAt sql.NullTime

	err := r.db.QueryRow(query, arg).Scan(
		&user.ID, &phone, &appleID, &user.Nickname, &avatarURL,
		&user.PasswordHash, &user.CreatedAt, &lastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Phone = nullString(phone)
	user.AppleID = nullString(appleID)
	user.AvatarURL = nullString(avatarURL)
	user.LastLoginAt = nullTime(lastLoginAt)
	return user, nil
}

// UpdateUser updates the mutable profile fields
func (r *UserRepository) UpdateUser(user *models.User) error {
	query := "UPDATE users SET nickname = ?, avatar_url = ? WHERE id = ?"
	if _, err := r.db.Exec(query, user.Nickname, user.AvatarURL, user.ID); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// TouchLastLogin records a successful sign-in
func (r *UserRepository) TouchLastLogin(userID string, at time.Time) error {
	if _, err := r.db.Exec("UPDATE users SET last_login_at = ? WHERE id = ?", at, userID); err != nil {
		return fmt.Errorf("failed to touch last login: %w", err)
	}
	return nil
}

// CreateSession persists a new session
func (r *UserRepository) CreateSession(sessionID, userID string, expiresAt time.Time) (*models.Session, error) {
	query := "INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, sessionID, userID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// GetSession retrieves a session by id, or nil when absent
func (r *UserRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?"
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID, &session.UserID, &session.ExpiresAt, &session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session
func (r *UserRepository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry
func (r *UserRepository) DeleteExpiredSessions() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
