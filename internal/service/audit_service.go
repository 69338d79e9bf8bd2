package service

import (
	"context"
	"log/slog"

	"me-platform/internal/models"
)

// Audit actions
const (
	AuditLogin         = "user.login"
	AuditLoginFailed   = "user.login.failed"
	AuditLogout        = "user.logout"
	AuditReportCreate  = "report.create"
	AuditReportUpdate  = "report.update"
	AuditReportReview  = "report.review"
	AuditProjectCreate = "project.create"
	AuditProjectDelete = "project.delete"
	AuditUserCreate    = "user.create"
	AuditUserUpdate    = "user.update"
	AuditUserPassword  = "user.password.set"
	AuditUserDelete    = "user.delete"
	AuditSessionRevoke = "session.revoke"
	AuditUserSessions  = "user.sessions.revoke"
	AuditSummarySent   = "reviewer_summary.sent"
)

// AuditPage is one page of audit log entries
type AuditPage struct {
	Logs  []models.AuditLog `json:"logs"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// AuditService handles audit logging
type AuditService struct {
	store AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// Log records an audit entry. Failures are logged and never fail the caller.
func (s *AuditService) Log(ctx context.Context, userID *int64, action, resource, details string, client ClientInfo) {
	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}
	if err := s.store.Create(ctx, entry); err != nil {
		slog.Error("Failed to write audit log", "action", action, "resource", resource, "error", err)
	}
}

// List returns audit entries newest first, optionally for one user
func (s *AuditService) List(ctx context.Context, userID *int64, page, limit int) (*AuditPage, error) {
	page, limit = normalisePage(page, limit)
	logs, total, err := s.store.List(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return &AuditPage{Logs: logs, Total: total, Page: page, Limit: limit}, nil
}
