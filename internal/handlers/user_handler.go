package handlers

import (
	"fmt"
	"net/http"

	"me-platform/internal/middleware"
	"me-platform/internal/service"
)

// UserHandler handles admin user management
type UserHandler struct {
	users   *service.UserService
	auditMw *middleware.AuditMiddleware
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService, auditMw *middleware.AuditMiddleware) *UserHandler {
	return &UserHandler{users: users, auditMw: auditMw}
}

// ListUsers lists users
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {array} models.UserWithRole
// @Failure 403 {object} ErrorResponse "Admin only"
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := queryPage(r)
	users, err := h.users.List(r.Context(), page, limit)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, users)
}

// CreateUser creates a user
// @Summary Create user
// @Description Role and organisation are fixed at creation. OMA users require an organisation.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateUserInput true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 409 {object} ErrorResponse "Username taken"
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.users.Create(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.auditMw.LogAction(r, service.AuditUserCreate, "users",
		fmt.Sprintf("user_id=%d username=%s role=%s", user.ID, user.Username, user.RoleID.Name()))
	respondWithJSON(w, r, http.StatusCreated, user)
}

// GetUser returns a user
// @Summary Get user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, user)
}

// UpdateUser changes a user's profile or active flag
// @Summary Update user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body service.UpdateUserInput true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /admin/users/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.UpdateUserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.users.Update(r.Context(), p, id, in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.auditMw.LogAction(r, service.AuditUserUpdate, "users", fmt.Sprintf("user_id=%d active=%t", id, user.IsActive))
	respondWithJSON(w, r, http.StatusOK, user)
}

// SetPassword replaces a user's password
// @Summary Set user password
// @Description Ends all sessions of the user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body service.SetPasswordInput true "New password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /admin/users/{id}/password [put]
func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.SetPasswordInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.users.SetPassword(r.Context(), id, in); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.auditMw.LogAction(r, service.AuditUserPassword, "users", fmt.Sprintf("user_id=%d", id))
	respondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Password updated"})
}

// DeleteUser removes a user
// @Summary Delete user
// @Tags Admin
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 400 {object} ErrorResponse "Cannot delete own account"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 409 {object} ErrorResponse "User owns records"
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), p, id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.auditMw.LogAction(r, service.AuditUserDelete, "users", fmt.Sprintf("user_id=%d", id))
	w.WriteHeader(http.StatusNoContent)
}
