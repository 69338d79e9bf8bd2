package models

import (
	"time"
)

// RoleID identifies one of the fixed application roles
type RoleID int

const (
	RoleAdmin RoleID = 1
	RoleNPC   RoleID = 2
	RoleOMA   RoleID = 3
)

// Name returns the role's canonical name
func (r RoleID) Name() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleNPC:
		return "npc"
	case RoleOMA:
		return "oma"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the known roles
func (r RoleID) Valid() bool {
	return r == RoleAdmin || r == RoleNPC || r == RoleOMA
}

// IsGlobal reports whether the role sees data across all organisations
func (r RoleID) IsGlobal() bool {
	return r == RoleAdmin || r == RoleNPC
}

// User represents a user in the system
type User struct {
	ID             int64      `json:"id" db:"id"`
	FullName       string     `json:"full_name" db:"full_name"`
	Username       string     `json:"username" db:"username"`
	Email          *string    `json:"email,omitempty" db:"email"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	RoleID         RoleID     `json:"role_id" db:"role_id"`
	OrganisationID *int64     `json:"organisation_id,omitempty" db:"organisation_id"`
	FocusAreaID    *int64     `json:"focus_area_id,omitempty" db:"focus_area_id"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// UserWithRole extends User with the role name for API responses
type UserWithRole struct {
	User
	Role             string  `json:"role"`
	OrganisationName *string `json:"organisation_name,omitempty"`
}

// Role represents a user role
type Role struct {
	ID          RoleID    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID         int64
	Role           RoleID
	OrganisationID *int64
}

// InOrganisation reports whether the principal belongs to the given organisation
func (p Principal) InOrganisation(orgID int64) bool {
	return p.OrganisationID != nil && *p.OrganisationID == orgID
}

// Session represents a user session
type Session struct {
	ID             string    `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	JTI            string    `json:"-" db:"jti"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	IPAddress      string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent      string    `json:"user_agent,omitempty" db:"user_agent"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *int64    `json:"user_id,omitempty" db:"user_id"`
	Username  *string   `json:"username,omitempty" db:"username"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details,omitempty" db:"details"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
