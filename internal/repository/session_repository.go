package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"me-platform/internal/models"
)

// SessionRepository stores one row per issued token, keyed by the token's JTI
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, jti, expires_at, last_activity_at, created_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.JTI,
		session.ExpiresAt,
		session.LastActivityAt,
		session.CreatedAt,
		session.IPAddress,
		session.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", translate(err))
	}
	return nil
}

// GetByJTI retrieves an unexpired session by JTI
func (r *SessionRepository) GetByJTI(ctx context.Context, jti string) (*models.Session, error) {
	query := `
		SELECT id, user_id, jti, expires_at, last_activity_at, created_at, ip_address, user_agent
		FROM sessions
		WHERE jti = $1 AND expires_at > $2
	`

	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, jti, time.Now()).Scan(
		&s.ID,
		&s.UserID,
		&s.JTI,
		&s.ExpiresAt,
		&s.LastActivityAt,
		&s.CreatedAt,
		&s.IPAddress,
		&s.UserAgent,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", translate(err))
	}
	return s, nil
}

// ListByUserID returns the unexpired sessions of a user, most recently active first
func (r *SessionRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Session, error) {
	query := `
		SELECT id, user_id, jti, expires_at, last_activity_at, created_at, ip_address, user_agent
		FROM sessions
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY last_activity_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.JTI, &s.ExpiresAt, &s.LastActivityAt, &s.CreatedAt, &s.IPAddress, &s.UserAgent); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteByID ends one session of a user
func (r *SessionRepository) DeleteByID(ctx context.Context, id string, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id::text = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireAffected(res)
}

// Touch updates the last activity timestamp
func (r *SessionRepository) Touch(ctx context.Context, jti string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET last_activity_at = $1 WHERE jti = $2`, time.Now(), jti)
	if err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}
	return nil
}

// DeleteByJTI ends a single session
func (r *SessionRepository) DeleteByJTI(ctx context.Context, jti string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE jti = $1`, jti)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID ends every session of a user
func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and returns how many were removed
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
