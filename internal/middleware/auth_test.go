package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"me-platform/internal/auth"
	"me-platform/internal/config"
	"me-platform/internal/models"
)

type fakeSessions struct {
	active  map[string]bool
	touched []string
}

func (f *fakeSessions) GetByJTI(_ context.Context, jti string) (*models.Session, error) {
	if !f.active[jti] {
		return nil, errors.New("not found")
	}
	return &models.Session{JTI: jti}, nil
}

func (f *fakeSessions) Touch(_ context.Context, jti string) error {
	f.touched = append(f.touched, jti)
	return nil
}

func newAuth(t *testing.T) (*auth.Service, *fakeSessions, string, string) {
	t.Helper()
	svc := auth.NewService(&config.JWTConfig{Secret: "middleware-test-secret", Expiration: time.Hour})
	org := int64(7)
	token, jti, err := svc.GenerateToken(&models.User{ID: 42, RoleID: models.RoleOMA, OrganisationID: &org})
	require.NoError(t, err)
	return svc, &fakeSessions{active: map[string]bool{jti: true}}, token, jti
}

func TestAuthenticate(t *testing.T) {
	svc, sessions, token, jti := newAuth(t)
	mw := NewAuthMiddleware(svc, sessions)

	var got models.Principal
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetPrincipal(r)
		raw, _ := GetToken(r)
		assert.Equal(t, token, raw)
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, models.RoleOMA, got.Role)
	require.NotNil(t, got.OrganisationID)
	assert.Equal(t, int64(7), *got.OrganisationID)
	assert.Equal(t, []string{jti}, sessions.touched)
}

func TestAuthenticateRejects(t *testing.T) {
	svc, sessions, token, jti := newAuth(t)
	mw := NewAuthMiddleware(svc, sessions)
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	}))

	tests := []struct {
		name   string
		header string
		setup  func()
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic " + token},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "session revoked", header: "Bearer " + token, setup: func() { delete(sessions.active, jti) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Contains(t, rr.Body.String(), `"message"`)
		})
	}
}

func TestRequireAnyRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name      string
		principal *models.Principal
		roles     []models.RoleID
		want      int
	}{
		{"no principal", nil, []models.RoleID{models.RoleAdmin}, http.StatusUnauthorized},
		{"admin allowed", &models.Principal{UserID: 1, Role: models.RoleAdmin}, []models.RoleID{models.RoleAdmin, models.RoleNPC}, http.StatusOK},
		{"npc allowed", &models.Principal{UserID: 2, Role: models.RoleNPC}, []models.RoleID{models.RoleAdmin, models.RoleNPC}, http.StatusOK},
		{"oma denied", &models.Principal{UserID: 3, Role: models.RoleOMA}, []models.RoleID{models.RoleAdmin, models.RoleNPC}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/reports/1/review", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tt.principal))
			}
			rr := httptest.NewRecorder()
			RequireAnyRole(tt.roles...)(ok).ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req = req.WithContext(WithPrincipal(req.Context(), models.Principal{UserID: 2, Role: models.RoleNPC}))
	rr := httptest.NewRecorder()
	RequireRole(models.RoleAdmin)(ok).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
