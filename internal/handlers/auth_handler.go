package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"me-platform/internal/middleware"
	"me-platform/internal/models"
	"me-platform/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *service.AuthService
	auditMw     *middleware.AuditMiddleware
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, auditMw *middleware.AuditMiddleware) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		auditMw:     auditMw,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginUser is the session returned by a successful login
type LoginUser struct {
	UserID         int64         `json:"user_id"`
	Token          string        `json:"token"`
	TokenType      string        `json:"token_type" example:"Bearer"`
	ExpiresIn      int64         `json:"expires_in" example:"86400"`
	Role           string        `json:"role" example:"oma"`
	RoleID         models.RoleID `json:"role_id" example:"3"`
	OrganisationID *int64        `json:"organisation_id"`
	FocusAreaID    *int64        `json:"focus_area_id"`
	FullName       string        `json:"full_name"`
	Username       string        `json:"username"`
}

// LoginResponse wraps LoginUser
type LoginResponse struct {
	User LoginUser `json:"user"`
}

// Login handles user login
// @Summary Login
// @Description Authenticate with username and password and receive a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid credentials or inactive account"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password, middleware.ClientInfo(r))
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			h.auditMw.LogAction(r, service.AuditLoginFailed, "auth", fmt.Sprintf("username=%s: %v", req.Username, err))
		}
		respondWithServiceError(w, r, err)
		return
	}

	user := result.User
	uid := user.ID
	r = r.WithContext(middleware.WithPrincipal(r.Context(), models.Principal{UserID: uid, Role: user.RoleID, OrganisationID: user.OrganisationID}))
	h.auditMw.LogAction(r, service.AuditLogin, "auth", "")

	respondWithJSON(w, r, http.StatusOK, LoginResponse{User: LoginUser{
		UserID:         user.ID,
		Token:          result.Token,
		TokenType:      "Bearer",
		ExpiresIn:      int64(time.Until(result.ExpiresAt).Round(time.Second).Seconds()),
		Role:           user.RoleID.Name(),
		RoleID:         user.RoleID,
		OrganisationID: user.OrganisationID,
		FocusAreaID:    user.FocusAreaID,
		FullName:       user.FullName,
		Username:       user.Username,
	}})
}

// Logout handles user logout
// @Summary Logout
// @Description Invalidate the current bearer token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetToken(r)
	if !ok {
		respondWithError(w, r, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}
	if err := h.authService.Logout(r.Context(), token); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Me returns the current user
// @Summary Current user
// @Description Profile of the authenticated user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	user, err := h.authService.Me(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, user)
}
