package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"me-platform/internal/auth"
	"me-platform/internal/models"
	"me-platform/internal/repository"
)

// LoginResult is a freshly issued session
type LoginResult struct {
	User      *models.User
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// ClientInfo identifies where a request came from
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthService handles login, logout and session lifecycle
type AuthService struct {
	users    UserStore
	sessions SessionStore
	authSvc  *auth.Service
}

// NewAuthService creates a new authentication service
func NewAuthService(users UserStore, sessions SessionStore, authSvc *auth.Service) *AuthService {
	return &AuthService{users: users, sessions: sessions, authSvc: authSvc}
}

// Login checks credentials, issues a token and records its session
func (s *AuthService) Login(ctx context.Context, username, password string, client ClientInfo) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.authSvc.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, jti, err := s.authSvc.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	session := &models.Session{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		JTI:            jti,
		ExpiresAt:      now.Add(s.authSvc.Expiration()),
		LastActivityAt: now,
		CreatedAt:      now,
		IPAddress:      client.IPAddress,
		UserAgent:      client.UserAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("Failed to update last login", "user_id", user.ID, "error", err)
	}

	return &LoginResult{User: user, Token: token, JTI: jti, ExpiresAt: session.ExpiresAt}, nil
}

// Logout ends the session of token. Expired tokens are accepted.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	jti, err := s.authSvc.ExtractJTI(token)
	if err != nil || jti == "" {
		return fmt.Errorf("%w: malformed token", ErrUnauthorized)
	}
	return s.sessions.DeleteByJTI(ctx, jti)
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, p models.Principal) (*models.User, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

// SessionInfo is an active session as shown to its owner
type SessionInfo struct {
	models.Session
	Current bool `json:"current"`
}

// Sessions lists the active sessions of p. currentJTI marks the caller's own.
func (s *AuthService) Sessions(ctx context.Context, p models.Principal, currentJTI string) ([]SessionInfo, error) {
	sessions, err := s.sessions.ListByUserID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, SessionInfo{Session: sess, Current: sess.JTI == currentJTI})
	}
	return out, nil
}

// RevokeSession ends one of p's sessions
func (s *AuthService) RevokeSession(ctx context.Context, p models.Principal, sessionID string) error {
	if err := s.sessions.DeleteByID(ctx, sessionID, p.UserID); err != nil {
		return notFoundOr(err, fmt.Sprintf("session %s", sessionID))
	}
	return nil
}

// CurrentJTI returns the token id of token, or "" when it cannot be parsed
func (s *AuthService) CurrentJTI(token string) string {
	jti, err := s.authSvc.ExtractJTI(token)
	if err != nil {
		return ""
	}
	return jti
}

// CleanupSessions deletes expired sessions
func (s *AuthService) CleanupSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}
