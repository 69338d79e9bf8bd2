package service

import (
	"context"

	"me-platform/internal/models"
	"me-platform/internal/repository"
)

// Persistence contracts consumed by the services. The repository package
// provides the PostgreSQL implementations; testutil provides in-memory ones.

type ReportStore interface {
	Create(ctx context.Context, rep *models.Report) error
	GetByID(ctx context.Context, id int64) (*models.ReportWithDetails, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.ReportWithDetails, error)
	UpdateContent(ctx context.Context, id int64, upd models.ReportContentUpdate) (*models.Report, error)
	Review(ctx context.Context, id int64, decide repository.ReviewFunc) (*models.Report, error)
	StatusStageCounts(ctx context.Context, organisationID *int64) ([]models.StatusStageCount, error)
	Analytics(ctx context.Context, q models.AnalyticsQuery) ([]models.AnalyticsRow, error)
	ListPending(ctx context.Context) ([]models.PendingReview, error)
}

type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context, userID, organisationID *int64) ([]models.Project, error)
	Count(ctx context.Context, organisationID *int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

type TaxonomyStore interface {
	Snapshot(ctx context.Context) (*models.Taxonomy, error)
	GetFocusArea(ctx context.Context, id int64) (*models.FocusArea, error)
	GetProgramme(ctx context.Context, id int64) (*models.Programme, error)
	Upsert(ctx context.Context, t *models.Taxonomy) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.UserWithRole, error)
	ListActiveByRole(ctx context.Context, role models.RoleID) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id int64) error
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByJTI(ctx context.Context, jti string) (*models.Session, error)
	Touch(ctx context.Context, jti string) error
	ListByUserID(ctx context.Context, userID int64) ([]models.Session, error)
	DeleteByID(ctx context.Context, id string, userID int64) error
	DeleteByJTI(ctx context.Context, jti string) error
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, userID *int64, limit, offset int) ([]models.AuditLog, int, error)
}

type RoleStore interface {
	List(ctx context.Context) ([]models.Role, error)
}

// Notifier delivers review-related e-mails
type Notifier interface {
	SendReviewDecision(to, recipientName string, report *models.Report, comment models.ReviewComment) error
	SendReviewerSummary(to, recipientName string, pending []models.PendingReview) error
}

var (
	_ ReportStore   = (*repository.ReportRepository)(nil)
	_ ProjectStore  = (*repository.ProjectRepository)(nil)
	_ TaxonomyStore = (*repository.TaxonomyRepository)(nil)
	_ UserStore     = (*repository.UserRepository)(nil)
	_ SessionStore  = (*repository.SessionRepository)(nil)
	_ AuditStore    = (*repository.AuditRepository)(nil)
	_ RoleStore     = (*repository.RoleRepository)(nil)
)
