package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"me-platform/internal/auth"
	"me-platform/internal/models"
	"me-platform/internal/repository"
	"me-platform/pkg/validator"
)

// CreateUserInput is the body of POST /api/admin/users
type CreateUserInput struct {
	FullName       string `json:"full_name" validate:"required,max=255"`
	Username       string `json:"username" validate:"required,min=3,max=100"`
	Email          string `json:"email" validate:"omitempty,email"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	RoleID         int    `json:"role_id" validate:"required,oneof=1 2 3"`
	OrganisationID *int64 `json:"organisation_id" validate:"min=1"`
	FocusAreaID    *int64 `json:"focus_area_id" validate:"min=1"`
}

// UpdateUserInput is the body of PUT /api/admin/users/{id}. Role and
// organisation cannot be changed after creation.
type UpdateUserInput struct {
	FullName    *string `json:"full_name" validate:"max=255"`
	Email       *string `json:"email" validate:"omitempty,email"`
	FocusAreaID *int64  `json:"focus_area_id" validate:"min=0"`
	IsActive    *bool   `json:"is_active"`
}

// SetPasswordInput is the body of PUT /api/admin/users/{id}/password
type SetPasswordInput struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserService implements admin user management
type UserService struct {
	users    UserStore
	sessions SessionStore
	authSvc  *auth.Service
}

// NewUserService creates a new user service
func NewUserService(users UserStore, sessions SessionStore, authSvc *auth.Service) *UserService {
	return &UserService{users: users, sessions: sessions, authSvc: authSvc}
}

// Create adds a user. OMA users must belong to an organisation.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	role := models.RoleID(in.RoleID)
	if !role.Valid() {
		return nil, validationError("unknown role %d", in.RoleID)
	}
	if role == models.RoleOMA && in.OrganisationID == nil {
		return nil, validationError("organisation_id is required for OMA users")
	}

	hash, err := s.authSvc.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:       validator.SanitizeString(in.FullName),
		Username:       validator.SanitizeString(in.Username),
		PasswordHash:   hash,
		RoleID:         role,
		OrganisationID: in.OrganisationID,
		FocusAreaID:    in.FocusAreaID,
		IsActive:       true,
	}
	if in.Email != "" {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		user.Email = &email
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username %q is already taken", ErrConflict, user.Username)
		}
		if errors.Is(err, repository.ErrReference) {
			return nil, validationError("organisation or focus area does not exist")
		}
		return nil, err
	}
	return user, nil
}

// List returns users page by page
func (s *UserService) List(ctx context.Context, page, limit int) ([]models.UserWithRole, error) {
	page, limit = normalisePage(page, limit)
	return s.users.List(ctx, limit, (page-1)*limit)
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("user %d", id))
	}
	return user, nil
}

// Update changes profile fields. Deactivating a user ends their sessions.
func (s *UserService) Update(ctx context.Context, actor models.Principal, id int64, in UpdateUserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FullName != nil {
		name := validator.SanitizeString(*in.FullName)
		if name == "" {
			return nil, validationError("full_name cannot be empty")
		}
		user.FullName = name
	}
	if in.Email != nil {
		if email := strings.ToLower(strings.TrimSpace(*in.Email)); email == "" {
			user.Email = nil
		} else {
			user.Email = &email
		}
	}
	if in.FocusAreaID != nil {
		if *in.FocusAreaID == 0 {
			user.FocusAreaID = nil
		} else {
			user.FocusAreaID = in.FocusAreaID
		}
	}
	if in.IsActive != nil {
		if !*in.IsActive && id == actor.UserID {
			return nil, validationError("you cannot deactivate your own account")
		}
		user.IsActive = *in.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, validationError("focus area does not exist")
		}
		return nil, notFoundOr(err, fmt.Sprintf("user %d", id))
	}
	if !user.IsActive {
		if err := s.sessions.DeleteByUserID(ctx, id); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// SetPassword replaces a user's password and ends their sessions
func (s *UserService) SetPassword(ctx context.Context, id int64, in SetPasswordInput) error {
	hash, err := s.authSvc.HashPassword(in.Password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return notFoundOr(err, fmt.Sprintf("user %d", id))
	}
	return s.sessions.DeleteByUserID(ctx, id)
}

// RevokeSessions ends every session of a user
func (s *UserService) RevokeSessions(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.sessions.DeleteByUserID(ctx, id)
}

// Delete removes a user. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor models.Principal, id int64) error {
	if id == actor.UserID {
		return validationError("you cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return fmt.Errorf("%w: user %d owns reports or projects; deactivate the account instead", ErrConflict, id)
		}
		return notFoundOr(err, fmt.Sprintf("user %d", id))
	}
	return nil
}

func normalisePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
