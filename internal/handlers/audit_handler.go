package handlers

import (
	"net/http"

	"me-platform/internal/service"
)

// AuditHandler serves the audit log
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ListAuditLogs returns audit entries newest first
// @Summary List audit logs
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param user_id query int false "Only entries of this user"
// @Success 200 {object} service.AuditPage
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 403 {object} ErrorResponse "Admin only"
// @Router /admin/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	page, limit := queryPage(r)

	result, err := h.audit.List(r.Context(), userID, page, limit)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, result)
}
