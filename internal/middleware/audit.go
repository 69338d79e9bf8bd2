package middleware

import (
	"net/http"

	"me-platform/internal/service"
)

// AuditMiddleware logs security-related actions
type AuditMiddleware struct {
	audit *service.AuditService
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(audit *service.AuditService) *AuditMiddleware {
	return &AuditMiddleware{audit: audit}
}

// Log records action after next completes successfully
func (m *AuditMiddleware) Log(action, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			if wrapped.statusCode < http.StatusBadRequest {
				m.LogAction(r, action, resource, "")
			}
		})
	}
}

// LogAction records an action for the caller of r, if any
func (m *AuditMiddleware) LogAction(r *http.Request, action, resource, details string) {
	var userID *int64
	if p, ok := GetPrincipal(r); ok {
		id := p.UserID
		userID = &id
	}
	m.audit.Log(r.Context(), userID, action, resource, details, ClientInfo(r))
}

// ClientInfo extracts the caller's address and user agent
func ClientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{IPAddress: GetIP(r), UserAgent: r.UserAgent()}
}
