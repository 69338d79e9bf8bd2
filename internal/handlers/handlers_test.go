package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"me-platform/internal/auth"
	"me-platform/internal/config"
	"me-platform/internal/handlers"
	"me-platform/internal/middleware"
	"me-platform/internal/models"
	"me-platform/internal/service"
	"me-platform/internal/testutil"
)

// stores is the persistence a test server runs on
type stores struct {
	reports  service.ReportStore
	projects service.ProjectStore
	taxonomy service.TaxonomyStore
	users    service.UserStore
	sessions service.SessionStore
	audit    service.AuditStore
	roles    service.RoleStore
}

func memStores() (stores, *testutil.MemStore) {
	m := testutil.NewMemStore()
	return stores{
		reports:  m.Reports(),
		projects: m.Projects(),
		taxonomy: m.Taxonomy(),
		users:    m.Users(),
		sessions: m.Sessions(),
		audit:    m.Audit(),
		roles:    m.Roles(),
	}, m
}

type testServer struct {
	handler http.Handler
	auth    *testutil.AuthHelper
	fx      *testutil.Fixtures
	audit   *service.AuditService
}

func newServer(t *testing.T, st stores, strict bool, checks map[string]handlers.HealthChecker) *testServer {
	t.Helper()

	cfg := &config.Config{
		App:      config.AppConfig{Name: "M&E Platform", Version: "test", Env: "test"},
		Workflow: config.WorkflowConfig{StrictStage: strict},
	}
	authSvc := auth.NewService(testutil.JWTConfig())

	taxonomy := service.NewTaxonomyService(st.taxonomy, st.roles)
	reports := service.NewReportService(st.reports, taxonomy, st.users, nil, strict)
	analytics := service.NewAnalyticsService(st.reports, st.projects)
	projects := service.NewProjectService(st.projects, taxonomy)
	authService := service.NewAuthService(st.users, st.sessions, authSvc)
	users := service.NewUserService(st.users, st.sessions, authSvc)
	audit := service.NewAuditService(st.audit)

	authMw := middleware.NewAuthMiddleware(authSvc, st.sessions)
	auditMw := middleware.NewAuditMiddleware(audit)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.Handlers{
		Auth:     handlers.NewAuthHandler(authService, auditMw),
		Reports:  handlers.NewReportHandler(reports, analytics, auditMw),
		Projects: handlers.NewProjectHandler(projects, auditMw),
		Taxonomy: handlers.NewTaxonomyHandler(taxonomy),
		Users:    handlers.NewUserHandler(users, auditMw),
		Audit:    handlers.NewAuditHandler(audit),
		Sessions: handlers.NewSessionHandler(authService, users, auditMw),
		Config:   handlers.NewConfigHandler(cfg),
		Health:   handlers.NewHealthHandler("test", checks),
	}, authMw, auditMw)

	return &testServer{
		handler: middleware.RequestID(mux),
		auth:    testutil.NewAuthHelper(authSvc, st.sessions),
		fx:      testutil.SetupFixtures(t, st.taxonomy, st.users),
		audit:   audit,
	}
}

func newMemServer(t *testing.T) (*testServer, *testutil.MemStore) {
	t.Helper()
	st, m := memStores()
	return newServer(t, st, true, nil), m
}

// do sends a request as user (nil for anonymous)
func (s *testServer) do(t *testing.T, method, url string, user *models.User, body any) *testutil.TestResponse {
	t.Helper()
	resp := testutil.NewTestResponse()
	s.handler.ServeHTTP(resp, s.auth.NewRequest(t, method, url, user, body))
	return resp
}

func (s *testServer) send(req *http.Request) *testutil.TestResponse {
	resp := testutil.NewTestResponse()
	s.handler.ServeHTTP(resp, req)
	return resp
}

func financeReportBody() map[string]any {
	return map[string]any{
		"focus_area_id": testutil.FocusFinanceRevenue,
		"programme_id":  testutil.ProgrammeRevenue,
		"strategies":    []int64{testutil.StrategyTaxBase},
		"description":   "Roll out e-filing",
		"target":        "60% online",
		"period":        "2024-Q1",
	}
}

func TestHealthAndAppConfig(t *testing.T) {
	st, _ := memStores()
	srv := newServer(t, st, true, map[string]handlers.HealthChecker{
		"database": func(context.Context) error { return nil },
	})

	resp := srv.do(t, http.MethodGet, "/health", nil, nil)
	resp.AssertStatusOK(t)
	assert.NotEmpty(t, resp.Header().Get(middleware.RequestIDHeader))

	var cfg handlers.AppConfig
	resp = srv.do(t, http.MethodGet, "/api/config/app", nil, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &cfg)
	assert.True(t, cfg.StrictStageReview)
	assert.Equal(t, []models.Stage{models.StagePlanning, models.StageExecution, models.StageMonitoring, models.StageClosure}, cfg.ReviewStages)

	st, _ = memStores()
	down := newServer(t, st, true, map[string]handlers.HealthChecker{
		"database": func(context.Context) error { return errors.New("connection refused") },
	})
	var health handlers.HealthResponse
	resp = down.do(t, http.MethodGet, "/health", nil, nil)
	resp.AssertStatus(t, http.StatusServiceUnavailable)
	resp.Decode(t, &health)
	assert.Equal(t, "unhealthy", health.Checks["database"])
}

func TestLoginLogout(t *testing.T) {
	srv, m := newMemServer(t)

	resp := srv.do(t, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"username": "finance.officer",
		"password": testutil.Password,
	})
	resp.AssertStatusOK(t)

	var login handlers.LoginResponse
	resp.Decode(t, &login)
	assert.Equal(t, "Bearer", login.User.TokenType)
	assert.Equal(t, "oma", login.User.Role)
	assert.InDelta(t, 3600, login.User.ExpiresIn, 5)
	require.NotEmpty(t, login.User.Token)

	authed := func(method, url string) *http.Request {
		req := srv.auth.NewRequest(t, method, url, nil, nil)
		req.Header.Set("Authorization", "Bearer "+login.User.Token)
		return req
	}

	var me models.User
	resp = srv.send(authed(http.MethodGet, "/api/auth/me"))
	resp.AssertStatusOK(t)
	resp.Decode(t, &me)
	assert.Equal(t, "finance.officer", me.Username)
	assert.NotContains(t, resp.Body.String(), "password")

	srv.send(authed(http.MethodPost, "/api/auth/logout")).AssertStatusOK(t)
	srv.send(authed(http.MethodGet, "/api/auth/me")).AssertStatusUnauthorized(t)

	assert.Equal(t, []string{service.AuditLogin, service.AuditLogout}, m.Audit().Actions())
}

func TestLoginRejects(t *testing.T) {
	srv, m := newMemServer(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"wrong password", map[string]string{"username": "admin", "password": "nope"}, http.StatusUnauthorized},
		{"inactive account", map[string]string{"username": "inactive.officer", "password": testutil.Password}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": "admin"}, http.StatusBadRequest},
		{"unknown field", map[string]string{"username": "admin", "password": "x", "remember": "yes"}, http.StatusBadRequest},
		{"malformed json", `{"username": "admin",`, http.StatusBadRequest},
		{"two objects", `{"username":"a","password":"b"}{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv.do(t, http.MethodPost, "/api/auth/login", nil, tt.body).AssertStatus(t, tt.want)
		})
	}

	assert.Equal(t, []string{service.AuditLoginFailed, service.AuditLoginFailed}, m.Audit().Actions())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := newMemServer(t)

	routes := []struct{ method, url string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/reports"},
		{http.MethodPost, "/api/reports"},
		{http.MethodGet, "/api/reports/1"},
		{http.MethodPost, "/api/reports/1/review"},
		{http.MethodGet, "/api/projects"},
		{http.MethodGet, "/api/taxonomy"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodGet, "/api/admin/audit-logs"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.url, func(t *testing.T) {
			srv.do(t, rt.method, rt.url, nil, nil).AssertStatusUnauthorized(t)
		})
	}
}

func TestReportLifecycle(t *testing.T) {
	srv, m := newMemServer(t)
	fx := srv.fx

	resp := srv.do(t, http.MethodPost, "/api/reports", fx.FinanceOfficer, financeReportBody())
	resp.AssertStatusCreated(t)
	var report models.Report
	resp.Decode(t, &report)
	assert.Equal(t, models.StatusPendingPlanning, report.Status)
	assert.Equal(t, testutil.OrgFinance, report.OrganisationID)
	assert.Contains(t, resp.Body.String(), `"reviewer_comments":[]`)

	url := "/api/reports/" + itoa(report.ID)

	srv.do(t, http.MethodGet, url, fx.FinanceColleague, nil).AssertStatusOK(t)
	srv.do(t, http.MethodGet, url, fx.HealthOfficer, nil).AssertStatusForbidden(t)
	srv.do(t, http.MethodGet, "/api/reports/999", fx.Reviewer, nil).AssertStatusNotFound(t)
	srv.do(t, http.MethodGet, "/api/reports/abc", fx.Reviewer, nil).AssertStatusBadRequest(t)

	review := func(user *models.User, action, stage string) *testutil.TestResponse {
		return srv.do(t, http.MethodPost, url+"/review", user, map[string]string{"action": action, "stage": stage, "comment": "checked"})
	}

	review(fx.FinanceOfficer, "approve", "planning").AssertStatusForbidden(t)
	review(fx.Reviewer, "approve", "execution").AssertStatus(t, http.StatusConflict)
	review(fx.Reviewer, "promote", "planning").AssertStatusBadRequest(t)

	resp = review(fx.Reviewer, "approve", "planning")
	resp.AssertStatusOK(t)
	resp.Decode(t, &report)
	assert.Equal(t, models.StatusPlanningApproved, report.Status)
	assert.Equal(t, models.StageExecution, report.CurrentStage)

	var comments []models.ReviewComment
	resp = srv.do(t, http.MethodGet, url+"/comments", fx.FinanceOfficer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "checked", comments[0].Comment)
	assert.Equal(t, models.StagePlanning, comments[0].Stage)

	resp = srv.do(t, http.MethodPut, url, fx.FinanceOfficer, map[string]string{"target": "70% online"})
	resp.AssertStatusOK(t)
	srv.do(t, http.MethodPut, url, fx.FinanceOfficer, map[string]string{"period": "2024-Q2"}).AssertStatusForbidden(t)
	srv.do(t, http.MethodPut, url, fx.Reviewer, map[string]string{"comments": "x"}).AssertStatusForbidden(t)

	assert.Equal(t, []string{service.AuditReportCreate, service.AuditReportReview, service.AuditReportUpdate}, m.Audit().Actions())
}

func TestListReportsFilters(t *testing.T) {
	srv, _ := newMemServer(t)
	fx := srv.fx

	srv.do(t, http.MethodPost, "/api/reports", fx.FinanceOfficer, financeReportBody()).AssertStatusCreated(t)
	srv.do(t, http.MethodPost, "/api/reports", fx.HealthOfficer, map[string]any{
		"focus_area_id": testutil.FocusHealthCare,
		"programme_id":  testutil.ProgrammeHealth,
		"description":   "Rural clinics",
		"period":        "2024-Q1",
	}).AssertStatusCreated(t)

	var list []models.ReportWithDetails
	resp := srv.do(t, http.MethodGet, "/api/reports?organisation_id=2", fx.FinanceOfficer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, testutil.OrgFinance, list[0].OrganisationID)

	resp = srv.do(t, http.MethodGet, "/api/reports?organisation_id=2&stage=planning", fx.Reviewer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Ministry of Health", list[0].OrganisationName)

	srv.do(t, http.MethodGet, "/api/reports?status=bogus", fx.Reviewer, nil).AssertStatusBadRequest(t)
	srv.do(t, http.MethodGet, "/api/reports?focus_area_id=-1", fx.Reviewer, nil).AssertStatusBadRequest(t)

	resp = srv.do(t, http.MethodGet, "/api/reports/mine", fx.FinanceColleague, nil)
	resp.AssertStatusOK(t)
	assert.JSONEq(t, "[]", resp.Body.String())

	var d models.Dashboard
	resp = srv.do(t, http.MethodGet, "/api/dashboard", fx.HealthOfficer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &d)
	assert.Equal(t, 1, d.TotalReports)

	srv.do(t, http.MethodGet, "/api/reports/analytics?group_by=pillar&bucket=year", fx.Reviewer, nil).AssertStatusOK(t)
	srv.do(t, http.MethodGet, "/api/reports/analytics?bucket=fortnight", fx.Reviewer, nil).AssertStatusBadRequest(t)
}

func TestProjects(t *testing.T) {
	srv, _ := newMemServer(t)
	fx := srv.fx

	resp := srv.do(t, http.MethodPost, "/api/projects", fx.FinanceOfficer, map[string]any{
		"name":          "E-filing portal",
		"focus_area_id": testutil.FocusFinanceRevenue,
		"programme_id":  testutil.ProgrammeRevenue,
		"budget":        1000,
		"start_date":    "2024-01-01",
	})
	resp.AssertStatusCreated(t)
	var p models.Project
	resp.Decode(t, &p)

	srv.do(t, http.MethodPost, "/api/projects", fx.FinanceOfficer, map[string]any{
		"name": "Negative", "focus_area_id": 10, "programme_id": 1000, "budget": -5,
	}).AssertStatusBadRequest(t)

	resp = srv.do(t, http.MethodGet, "/api/projects", fx.HealthOfficer, nil)
	resp.AssertStatusOK(t)
	assert.JSONEq(t, "[]", resp.Body.String())

	url := "/api/projects/" + itoa(p.ID)
	srv.do(t, http.MethodGet, url, fx.HealthOfficer, nil).AssertStatusForbidden(t)
	srv.do(t, http.MethodDelete, url, fx.FinanceColleague, nil).AssertStatusForbidden(t)
	srv.do(t, http.MethodDelete, url, fx.FinanceOfficer, nil).AssertStatus(t, http.StatusNoContent)
	srv.do(t, http.MethodGet, url, fx.Admin, nil).AssertStatusNotFound(t)
}

func TestTaxonomyRoutes(t *testing.T) {
	srv, _ := newMemServer(t)

	var tx models.Taxonomy
	resp := srv.do(t, http.MethodGet, "/api/taxonomy", srv.fx.HealthOfficer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &tx)
	require.Len(t, tx.FocusAreas, 1)
	assert.Len(t, tx.Organisations, 2)

	var fas []models.FocusArea
	resp = srv.do(t, http.MethodGet, "/api/focus-areas", srv.fx.Reviewer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &fas)
	assert.Len(t, fas, 3)

	var roles []models.Role
	resp = srv.do(t, http.MethodGet, "/api/lookups/roles", srv.fx.HealthOfficer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &roles)
	assert.Len(t, roles, 3)

	srv.do(t, http.MethodGet, "/api/lookups/strategies", srv.fx.FinanceOfficer, nil).AssertStatusOK(t)
	srv.do(t, http.MethodGet, "/api/lookups/districts", srv.fx.FinanceOfficer, nil).AssertStatusNotFound(t)
}

func TestAdminUserManagement(t *testing.T) {
	srv, m := newMemServer(t)
	fx := srv.fx

	srv.do(t, http.MethodGet, "/api/admin/users", fx.Reviewer, nil).AssertStatusForbidden(t)
	srv.do(t, http.MethodGet, "/api/admin/users", fx.Admin, nil).AssertStatusOK(t)

	body := map[string]any{
		"full_name":       "New Officer",
		"username":        "new.officer",
		"password":        "long-enough-password",
		"role_id":         3,
		"organisation_id": testutil.OrgHealth,
	}
	resp := srv.do(t, http.MethodPost, "/api/admin/users", fx.Admin, body)
	resp.AssertStatusCreated(t)
	var created models.User
	resp.Decode(t, &created)

	srv.do(t, http.MethodPost, "/api/admin/users", fx.Admin, body).AssertStatus(t, http.StatusConflict)
	srv.do(t, http.MethodPost, "/api/admin/users", fx.Admin, map[string]any{
		"full_name": "Short", "username": "short.pw", "password": "short", "role_id": 2,
	}).AssertStatusBadRequest(t)

	url := "/api/admin/users/" + itoa(created.ID)
	resp = srv.do(t, http.MethodPut, url, fx.Admin, map[string]any{"full_name": "Renamed Officer"})
	resp.AssertStatusOK(t)
	assert.Contains(t, resp.Body.String(), "Renamed Officer")

	srv.do(t, http.MethodPut, url+"/password", fx.Admin, map[string]string{"password": "another-long-password"}).AssertStatusOK(t)
	srv.do(t, http.MethodDelete, url+"/sessions", fx.Admin, nil).AssertStatus(t, http.StatusNoContent)
	srv.do(t, http.MethodDelete, "/api/admin/users/"+itoa(fx.Admin.ID), fx.Admin, nil).AssertStatusBadRequest(t)
	srv.do(t, http.MethodDelete, url, fx.Admin, nil).AssertStatus(t, http.StatusNoContent)
	srv.do(t, http.MethodGet, url, fx.Admin, nil).AssertStatusNotFound(t)

	var logs service.AuditPage
	resp = srv.do(t, http.MethodGet, "/api/admin/audit-logs?limit=2", fx.Admin, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &logs)
	assert.Equal(t, 2, logs.Limit)
	assert.Len(t, logs.Logs, 2)
	assert.Equal(t, service.AuditUserDelete, logs.Logs[0].Action)

	srv.do(t, http.MethodGet, "/api/admin/audit-logs?user_id=x", fx.Admin, nil).AssertStatusBadRequest(t)
	assert.Contains(t, m.Audit().Actions(), service.AuditUserCreate)
}

func TestSessions(t *testing.T) {
	srv, _ := newMemServer(t)
	user := srv.fx.Reviewer

	other := srv.auth.Token(t, user)

	var sessions []service.SessionInfo
	resp := srv.do(t, http.MethodGet, "/api/auth/sessions", user, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &sessions)
	require.Len(t, sessions, 2)
	assert.NotContains(t, resp.Body.String(), `"jti"`)

	var target string
	for _, s := range sessions {
		if !s.Current {
			target = s.ID
		}
	}
	require.NotEmpty(t, target)

	srv.do(t, http.MethodDelete, "/api/auth/sessions/"+target, srv.fx.Admin, nil).AssertStatusNotFound(t)
	srv.do(t, http.MethodDelete, "/api/auth/sessions/"+target, user, nil).AssertStatus(t, http.StatusNoContent)

	req := srv.auth.NewRequest(t, http.MethodGet, "/api/auth/me", nil, nil)
	req.Header.Set("Authorization", "Bearer "+other)
	srv.send(req).AssertStatusUnauthorized(t)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
