package service

import (
	"errors"
	"testing"
	"time"

	"familycal/internal/models"
	"familycal/internal/validation"
)

func TestRegisterWithPhone(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, nil, time.Hour)

	session, user, err := svc.RegisterWithPhone("+8613800138000", "password123", "妈妈")
	if err != nil {
		t.Fatalf("RegisterWithPhone() error = %v", err)
	}
	if user.Phone == nil || *user.Phone != "+8613800138000" {
		t.Errorf("user phone = %v", user.Phone)
	}
	if user.PasswordHash == "password123" {
		t.Error("password stored in plain text")
	}
	if session.UserID != user.ID {
		t.Errorf("session user = %v, want %v", session.UserID, user.ID)
	}

	// The phone number is now taken.
	_, _, err = svc.RegisterWithPhone("+8613800138000", "password456", "叔叔")
	if !errors.Is(err, ErrPhoneTaken) {
		t.Errorf("duplicate RegisterWithPhone() error = %v, want %v", err, ErrPhoneTaken)
	}
}

func TestRegisterWithPhoneValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), nil, time.Hour)

	tests := []struct {
		name     string
		phone    string
		password string
	}{
		{name: "empty phone", phone: "", password: "password123"},
		{name: "malformed phone", phone: "not-a-phone", password: "password123"},
		{name: "short password", phone: "+8613800138000", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.RegisterWithPhone(tt.phone, tt.password, "")
			var verr validation.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("RegisterWithPhone() error = %v, want validation error", err)
			}
		})
	}
}

func TestRegisterDefaultNickname(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), nil, time.Hour)

	_, user, err := svc.RegisterWithPhone("+8613800138001", "password123", "")
	if err != nil {
		t.Fatalf("RegisterWithPhone() error = %v", err)
	}
	if user.Nickname != models.DefaultNickname {
		t.Errorf("nickname = %q, want default %q", user.Nickname, models.DefaultNickname)
	}
}

func TestSignInWithPhone(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, nil, time.Hour)

	if _, _, err := svc.RegisterWithPhone("+8613800138000", "password123", "妈妈"); err != nil {
		t.Fatalf("RegisterWithPhone() error = %v", err)
	}

	tests := []struct {
		name     string
		phone    string
		password string
		wantErr  error
	}{
		{name: "correct credentials", phone: "+8613800138000", password: "password123", wantErr: nil},
		{name: "wrong password", phone: "+8613800138000", password: "wrong-password", wantErr: ErrInvalidCredentials},
		{name: "unknown phone", phone: "+8613800139999", password: "password123", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, user, err := svc.SignInWithPhone(tt.phone, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SignInWithPhone() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if session == nil || user == nil {
					t.Fatal("SignInWithPhone() returned nil session or user")
				}
				if user.LastLoginAt == nil {
					t.Error("LastLoginAt not recorded on sign-in")
				}
			}
		})
	}
}

func TestValidateSession(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, nil, time.Hour)

	session, user, err := svc.RegisterWithPhone("+8613800138000", "password123", "妈妈")
	if err != nil {
		t.Fatalf("RegisterWithPhone() error = %v", err)
	}

	got, err := svc.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ValidateSession() user = %v, want %v", got.ID, user.ID)
	}

	if _, err := svc.ValidateSession("no-such-session"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown session error = %v, want %v", err, ErrSessionNotFound)
	}
}

func TestValidateSessionExpired(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, nil, time.Hour)

	session, _, err := svc.RegisterWithPhone("+8613800138000", "password123", "妈妈")
	if err != nil {
		t.Fatalf("RegisterWithPhone() error = %v", err)
	}
	store.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Minute)

	if _, err := svc.ValidateSession(session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expired session error = %v, want %v", err, ErrSessionExpired)
	}

	// The expired session was removed; a retry reports not-found.
	if _, err := svc.ValidateSession(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("retry error = %v, want %v", err, ErrSessionNotFound)
	}
}

func TestSignOut(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, nil, time.Hour)

	session, _, err := svc.RegisterWithPhone("+8613800138000", "password123", "妈妈")
	if err != nil {
		t.Fatalf("RegisterWithPhone() error = %v", err)
	}
	if err := svc.SignOut(session.ID); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := svc.ValidateSession(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("session still valid after sign-out: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store, nil, time.Hour)

	_, user, err := svc.RegisterWithPhone("+8613800138000", "password123", "妈妈")
	if err != nil {
		t.Fatalf("RegisterWithPhone() error = %v", err)
	}

	avatar := "https://cdn.example.com/avatar.png"
	updated, err := svc.UpdateProfile(user.ID, "老妈", &avatar)
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Nickname != "老妈" {
		t.Errorf("nickname = %q after update", updated.Nickname)
	}
	if updated.AvatarURL == nil || *updated.AvatarURL != avatar {
		t.Errorf("avatar = %v after update", updated.AvatarURL)
	}

	if _, err := svc.UpdateProfile("no-such-user", "x", nil); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user error = %v, want %v", err, ErrUserNotFound)
	}
}
