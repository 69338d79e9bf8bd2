package middleware

import (
	"net/http"

	"me-platform/internal/models"
)

// RequireRole allows only callers holding role
func RequireRole(role models.RoleID) func(http.Handler) http.Handler {
	return RequireAnyRole(role)
}

// RequireAnyRole allows callers holding any of roles. Roles come from the
// verified token, so no datastore lookup is needed.
func RequireAnyRole(roles ...models.RoleID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
