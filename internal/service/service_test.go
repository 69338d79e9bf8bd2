package service_test

import (
	"sync"
	"testing"
	"time"

	"me-platform/internal/auth"
	"me-platform/internal/models"
	"me-platform/internal/service"
	"me-platform/internal/testutil"
)

type decision struct {
	to      string
	report  models.Report
	comment models.ReviewComment
}

type recordingNotifier struct {
	mu        sync.Mutex
	decisions []decision
}

func (n *recordingNotifier) SendReviewDecision(to, _ string, report *models.Report, comment models.ReviewComment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, decision{to: to, report: *report, comment: comment})
	return nil
}

func (n *recordingNotifier) SendReviewerSummary(string, string, []models.PendingReview) error {
	return nil
}

type env struct {
	store    *testutil.MemStore
	fx       *testutil.Fixtures
	notifier *recordingNotifier
	authSvc  *auth.Service

	taxonomy  *service.TaxonomyService
	reports   *service.ReportService
	projects  *service.ProjectService
	analytics *service.AnalyticsService
	auth      *service.AuthService
	users     *service.UserService
	audit     *service.AuditService
}

func newEnv(t *testing.T, strict bool) *env {
	t.Helper()

	store := testutil.NewMemStore()
	e := &env{
		store:    store,
		fx:       testutil.SetupFixtures(t, store.Taxonomy(), store.Users()),
		notifier: &recordingNotifier{},
		authSvc:  auth.NewService(testutil.JWTConfig()),
	}
	e.taxonomy = service.NewTaxonomyService(store.Taxonomy(), store.Roles())
	e.reports = service.NewReportService(store.Reports(), e.taxonomy, store.Users(), e.notifier, strict)
	e.projects = service.NewProjectService(store.Projects(), e.taxonomy)
	e.analytics = service.NewAnalyticsService(store.Reports(), store.Projects())
	e.auth = service.NewAuthService(store.Users(), store.Sessions(), e.authSvc)
	e.users = service.NewUserService(store.Users(), store.Sessions(), e.authSvc)
	e.audit = service.NewAuditService(store.Audit())
	return e
}

func principal(u *models.User) models.Principal {
	return testutil.PrincipalOf(u)
}

func ptr[T any](v T) *T { return &v }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
