package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"familycal/internal/models"
	"familycal/internal/security"
	"familycal/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey  ContextKey = "user"
	ScopeContextKey ContextKey = "scope"
)

// SessionCookieName is the cookie carrying the session id. Mobile
// clients send the same id as a bearer token instead.
const SessionCookieName = "session_id"

// FamilyHeader selects which of the caller's families the request acts in
const FamilyHeader = "X-Family-ID"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService   *service.AuthService
	familyService *service.FamilyService
	limiter       *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, familyService *service.FamilyService) *Middleware {
	return &Middleware{
		authService:   authService,
		familyService: familyService,
		limiter:       security.NewRateLimiter(10, time.Minute),
	}
}

func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth is middleware that requires a valid session. The
// authenticated user and a family-less scope land in the context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, service.ErrNotAuthenticated)
			return
		}

		user, err := m.authService.ValidateSession(token)
		if err != nil {
			writeError(w, err)
			return
		}

		scope := models.Scope{UserID: user.ID}
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, ScopeContextKey, scope)
		next(w, r.WithContext(ctx))
	}
}

// RequireScope is RequireAuth plus family selection: the family comes
// from the X-Family-ID header and the caller must be on its roster.
func (m *Middleware) RequireScope(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		scope := models.Scope{UserID: user.ID, FamilyID: r.Header.Get(FamilyHeader)}

		if err := m.familyService.VerifyMembership(scope); err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ScopeContextKey, scope)
		next(w, r.WithContext(ctx))
	})
}

// RateLimit rejects clients exceeding the per-IP budget. Applied to the
// credential and invite-code endpoints.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetScopeFromContext retrieves the request scope from the context
func GetScopeFromContext(ctx context.Context) models.Scope {
	scope, _ := ctx.Value(ScopeContextKey).(models.Scope)
	return scope
}
