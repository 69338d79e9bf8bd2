package handlers

import (
	"fmt"
	"net/http"

	"me-platform/internal/middleware"
	"me-platform/internal/service"
)

// SessionHandler lets users see and end their sessions and lets admins end
// every session of a user
type SessionHandler struct {
	authService *service.AuthService
	users       *service.UserService
	auditMw     *middleware.AuditMiddleware
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(authService *service.AuthService, users *service.UserService, auditMw *middleware.AuditMiddleware) *SessionHandler {
	return &SessionHandler{authService: authService, users: users, auditMw: auditMw}
}

// GetMySessions lists the caller's active sessions
// @Summary My sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.SessionInfo
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/sessions [get]
func (h *SessionHandler) GetMySessions(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	token, _ := middleware.GetToken(r)

	sessions, err := h.authService.Sessions(r.Context(), p, h.authService.CurrentJTI(token))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, sessions)
}

// DeleteMySession ends one of the caller's sessions
// @Summary End session
// @Tags Sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /auth/sessions/{id} [delete]
func (h *SessionHandler) DeleteMySession(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := h.authService.RevokeSession(r.Context(), p, id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.auditMw.LogAction(r, service.AuditSessionRevoke, "sessions", "session_id="+id)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAllUserSessions ends every session of a user
// @Summary End all sessions of a user
// @Tags Admin
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /admin/users/{id}/sessions [delete]
func (h *SessionHandler) DeleteAllUserSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.users.RevokeSessions(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.auditMw.LogAction(r, service.AuditUserSessions, "sessions", fmt.Sprintf("user_id=%d", id))
	w.WriteHeader(http.StatusNoContent)
}
