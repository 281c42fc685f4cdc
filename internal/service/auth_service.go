package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"familycal/internal/models"
	"familycal/internal/security"
	"familycal/internal/validation"
)

// AuthService handles authentication business logic
type AuthService struct {
	userStore       UserStore
	apple           *security.AppleVerifier
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service. apple may be nil when Sign
// in with Apple is not configured.
func NewAuthService(userStore UserStore, apple *security.AppleVerifier, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userStore:       userStore,
		apple:           apple,
		sessionDuration: sessionDuration,
	}
}

// RegisterWithPhone creates a phone-credential account and signs it in
func (s *AuthService) RegisterWithPhone(phone, password, nickname string) (*models.Session, *models.User, error) {
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, nil, err
	}

	existing, err := s.userStore.GetUserByPhone(phone)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrPhoneTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if nickname == "" {
		nickname = models.DefaultNickname
	}
	user := &models.User{
		ID:           uuid.New().String(),
		Phone:        &phone,
		Nickname:     nickname,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	if err := s.userStore.CreateUser(user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.createSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// SignInWithPhone authenticates a phone credential and creates a session
func (s *AuthService) SignInWithPhone(phone, password string) (*models.Session, *models.User, error) {
	user, err := s.userStore.GetUserByPhone(phone)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// SignInWithApple verifies an Apple id_token and signs in the matching
// account, creating one on first sign-in. The account is keyed by the
// token's stable subject; nickname is only taken from the client on
// first sign-in because Apple omits the name on later logins.
func (s *AuthService) SignInWithApple(ctx context.Context, idToken, nonce, nickname string) (*models.Session, *models.User, error) {
	if s.apple == nil || !s.apple.Configured() {
		return nil, nil, fmt.Errorf("apple sign-in not configured")
	}

	identity, err := s.apple.VerifyIDToken(ctx, idToken, nonce)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userStore.GetUserByAppleID(identity.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup apple user: %w", err)
	}
	if user == nil {
		if nickname == "" {
			nickname = models.DefaultNickname
		}
		user = &models.User{
			ID:        uuid.New().String(),
			AppleID:   &identity.Subject,
			Nickname:  nickname,
			CreatedAt: time.Now(),
		}
		if err := s.userStore.CreateUser(user); err != nil {
			return nil, nil, fmt.Errorf("failed to create apple user: %w", err)
		}
	}

	session, err := s.createSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) createSession(user *models.User) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userStore.CreateSession(sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.userStore.TouchLastLogin(user.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	return session, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userStore.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		// Clean up expired session
		_ = s.userStore.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userStore.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// SignOut invalidates a session
func (s *AuthService) SignOut(sessionID string) error {
	if err := s.userStore.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// UpdateProfile changes the user's nickname and avatar
func (s *AuthService) UpdateProfile(userID, nickname string, avatarURL *string) (*models.User, error) {
	user, err := s.userStore.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if nickname != "" {
		user.Nickname = nickname
	}
	if avatarURL != nil {
		user.AvatarURL = avatarURL
	}
	if err := s.userStore.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.userStore.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}
