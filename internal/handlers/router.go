package handlers

import (
	"net/http"

	"me-platform/internal/middleware"
	"me-platform/internal/models"
	"me-platform/internal/service"
)

// Handlers bundles every HTTP handler the API serves
type Handlers struct {
	Auth     *AuthHandler
	Reports  *ReportHandler
	Projects *ProjectHandler
	Taxonomy *TaxonomyHandler
	Users    *UserHandler
	Audit    *AuditHandler
	Sessions *SessionHandler
	Config   *ConfigHandler
	Health   *HealthHandler
}

// RegisterRoutes mounts the API on mux
func RegisterRoutes(mux *http.ServeMux, h Handlers, authMw *middleware.AuthMiddleware, auditMw *middleware.AuditMiddleware) {
	protected := func(fn http.HandlerFunc) http.Handler {
		return authMw.Authenticate(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return authMw.Authenticate(middleware.RequireRole(models.RoleAdmin)(fn))
	}
	reviewer := func(fn http.HandlerFunc) http.Handler {
		return authMw.Authenticate(middleware.RequireAnyRole(models.RoleAdmin, models.RoleNPC)(fn))
	}

	// Public
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /api/config/app", h.Config.GetAppConfig)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)

	// Auth
	mux.Handle("POST /api/auth/logout", authMw.Authenticate(auditMw.Log(service.AuditLogout, "auth")(http.HandlerFunc(h.Auth.Logout))))
	mux.Handle("GET /api/auth/me", protected(h.Auth.Me))
	mux.Handle("GET /api/auth/sessions", protected(h.Sessions.GetMySessions))
	mux.Handle("DELETE /api/auth/sessions/{id}", protected(h.Sessions.DeleteMySession))

	// Reports
	mux.Handle("POST /api/reports", protected(h.Reports.Create))
	mux.Handle("GET /api/reports", protected(h.Reports.List))
	mux.Handle("GET /api/reports/mine", protected(h.Reports.Mine))
	mux.Handle("GET /api/reports/analytics", protected(h.Reports.Analytics))
	mux.Handle("GET /api/reports/{id}", protected(h.Reports.Get))
	mux.Handle("PUT /api/reports/{id}", protected(h.Reports.Update))
	mux.Handle("GET /api/reports/{id}/comments", protected(h.Reports.Comments))
	mux.Handle("POST /api/reports/{id}/review", reviewer(h.Reports.Review))
	mux.Handle("GET /api/dashboard", protected(h.Reports.Dashboard))

	// Projects
	mux.Handle("POST /api/projects", protected(h.Projects.Create))
	mux.Handle("GET /api/projects", protected(h.Projects.List))
	mux.Handle("GET /api/projects/mine", protected(h.Projects.Mine))
	mux.Handle("GET /api/projects/{id}", protected(h.Projects.Get))
	mux.Handle("DELETE /api/projects/{id}", protected(h.Projects.Delete))

	// Taxonomy
	mux.Handle("GET /api/focus-areas", protected(h.Taxonomy.FocusAreas))
	mux.Handle("GET /api/lookups/{kind}", protected(h.Taxonomy.Lookup))
	mux.Handle("GET /api/taxonomy", protected(h.Taxonomy.Taxonomy))

	// Admin
	mux.Handle("GET /api/admin/users", admin(h.Users.ListUsers))
	mux.Handle("POST /api/admin/users", admin(h.Users.CreateUser))
	mux.Handle("GET /api/admin/users/{id}", admin(h.Users.GetUser))
	mux.Handle("PUT /api/admin/users/{id}", admin(h.Users.UpdateUser))
	mux.Handle("DELETE /api/admin/users/{id}", admin(h.Users.DeleteUser))
	mux.Handle("PUT /api/admin/users/{id}/password", admin(h.Users.SetPassword))
	mux.Handle("DELETE /api/admin/users/{id}/sessions", admin(h.Sessions.DeleteAllUserSessions))
	mux.Handle("GET /api/admin/audit-logs", admin(h.Audit.ListAuditLogs))
}
