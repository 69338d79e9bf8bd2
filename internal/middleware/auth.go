package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"me-platform/internal/auth"
	"me-platform/internal/logger"
	"me-platform/internal/models"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	tokenKey     contextKey = "token"
)

// SessionChecker looks up and refreshes the session behind a token
type SessionChecker interface {
	GetByJTI(ctx context.Context, jti string) (*models.Session, error)
	Touch(ctx context.Context, jti string) error
}

// AuthMiddleware validates JWT tokens
type AuthMiddleware struct {
	authService *auth.Service
	sessions    SessionChecker
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *auth.Service, sessions SessionChecker) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		sessions:    sessions,
	}
}

// Authenticate validates the bearer token and its session, then stores the
// caller's principal in the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token has expired"
			}
			respondWithError(w, http.StatusUnauthorized, msg)
			return
		}

		// logout and deactivation delete the session
		if claims.ID == "" {
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if _, err := m.sessions.GetByJTI(r.Context(), claims.ID); err != nil {
			respondWithError(w, http.StatusUnauthorized, "Token has been invalidated")
			return
		}
		if err := m.sessions.Touch(r.Context(), claims.ID); err != nil {
			logger.FromContext(r.Context()).Warn("Failed to update session activity", "error", err)
		}

		ctx := WithPrincipal(r.Context(), claims.Principal())
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// WithPrincipal stores p in ctx
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal retrieves the authenticated caller from the request context
func GetPrincipal(r *http.Request) (models.Principal, bool) {
	p, ok := r.Context().Value(principalKey).(models.Principal)
	return p, ok
}

// GetToken retrieves the raw bearer token accepted by Authenticate
func GetToken(r *http.Request) (string, bool) {
	t, ok := r.Context().Value(tokenKey).(string)
	return t, ok
}

// respondWithError writes a JSON error body
func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": message}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
