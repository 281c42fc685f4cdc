package handlers

import (
	"net/http"

	"familycal/internal/security"
	"familycal/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a phone-credential account and returns its session
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	session, user, err := h.authService.RegisterWithPhone(req.Phone, req.Password, req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	writeJSON(w, http.StatusCreated, sessionView{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      toUserView(user),
	})
}

// Login authenticates a phone credential
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	session, user, err := h.authService.SignInWithPhone(req.Phone, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	writeJSON(w, http.StatusOK, sessionView{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      toUserView(user),
	})
}

// AppleLogin verifies a Sign in with Apple id_token and signs the
// matching account in, creating it on first use.
func (h *AuthHandler) AppleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken  string `json:"idToken"`
		Nonce    string `json:"nonce"`
		Nickname string `json:"nickname"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IDToken == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "idToken is required", Field: "idToken"})
		return
	}

	session, user, err := h.authService.SignInWithApple(r.Context(), req.IDToken, req.Nonce, req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	writeJSON(w, http.StatusOK, sessionView{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      toUserView(user),
	})
}

// Logout invalidates the caller's session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, service.ErrNotAuthenticated)
		return
	}
	if err := h.authService.SignOut(token); err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	writeJSON(w, http.StatusNoContent, nil)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, toUserView(user))
}

// UpdateMe changes the nickname and avatar of the authenticated user
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Nickname  string  `json:"nickname"`
		AvatarURL *string `json:"avatarUrl"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.authService.UpdateProfile(user.ID, req.Nickname, req.AvatarURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(updated))
}
