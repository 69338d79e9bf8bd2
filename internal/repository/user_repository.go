package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"me-platform/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	u.id, u.full_name, u.username, u.email, u.password_hash, u.role_id, u.organisation_id,
	u.focus_area_id, u.is_active, u.last_login_at, u.created_at, u.updated_at`

func scanUser(row interface{ Scan(...any) error }, u *models.User, extra ...any) error {
	dest := []any{
		&u.ID, &u.FullName, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.OrganisationID,
		&u.FocusAreaID, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts a new user and fills in its id and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (full_name, username, email, password_hash, role_id, organisation_id,
		                   focus_area_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		user.FullName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.RoleID,
		user.OrganisationID,
		user.FocusAreaID,
		user.IsActive,
		now,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id), user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, translate(err))
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.username = $1`, username), user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", translate(err))
	}
	return user, nil
}

// List returns users with their role and organisation names
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.UserWithRole, error) {
	query := `
		SELECT ` + userColumns + `, ro.name, o.name
		FROM users u
		JOIN roles ro ON ro.id = u.role_id
		LEFT JOIN organisations o ON o.id = u.organisation_id
		ORDER BY u.id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.UserWithRole
	for rows.Next() {
		var u models.UserWithRole
		if err := scanUser(rows, &u.User, &u.Role, &u.OrganisationName); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListActiveByRole returns active users holding role
func (r *UserRepository) ListActiveByRole(ctx context.Context, role models.RoleID) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.role_id = $1 AND u.is_active ORDER BY u.id`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update saves the mutable profile fields. Role and organisation are fixed at creation.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET full_name = $1, email = $2, focus_area_id = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`

	user.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		user.FullName,
		user.Email,
		user.FocusAreaID,
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translate(err))
	}
	return requireAffected(res)
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(res)
}

// UpdateLastLogin stamps the user's last successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", translate(err))
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
