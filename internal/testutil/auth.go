package testutil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"me-platform/internal/auth"
	"me-platform/internal/config"
	"me-platform/internal/models"
	"me-platform/internal/service"
)

// JWTConfig returns the token settings used across tests
func JWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:     "test-secret-key-for-testing-only",
		Expiration: time.Hour,
	}
}

// AuthHelper issues tokens backed by real sessions
type AuthHelper struct {
	Auth     *auth.Service
	sessions service.SessionStore
}

// NewAuthHelper creates a new auth helper
func NewAuthHelper(authSvc *auth.Service, sessions service.SessionStore) *AuthHelper {
	return &AuthHelper{Auth: authSvc, sessions: sessions}
}

// Token signs a token for user and records its session
func (h *AuthHelper) Token(t *testing.T, user *models.User) string {
	t.Helper()

	token, jti, err := h.Auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	now := time.Now()
	err = h.sessions.Create(context.Background(), &models.Session{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		JTI:            jti,
		ExpiresAt:      now.Add(h.Auth.Expiration()),
		LastActivityAt: now,
		CreatedAt:      now,
	})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return token
}

// NewRequest builds a request authenticated as user. A nil user sends no token;
// a non-nil body is encoded as JSON unless it is already a string.
func (h *AuthHelper) NewRequest(t *testing.T, method, url string, user *models.User, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		reader = strings.NewReader(string(data))
	}

	req := httptest.NewRequest(method, url, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+h.Token(t, user))
	}
	return req
}

// TestResponse holds response data for assertions
type TestResponse struct {
	*httptest.ResponseRecorder
}

// NewTestResponse creates a new test response recorder
func NewTestResponse() *TestResponse {
	return &TestResponse{
		ResponseRecorder: httptest.NewRecorder(),
	}
}

// AssertStatus asserts the HTTP status code
func (r *TestResponse) AssertStatus(t *testing.T, expected int) {
	t.Helper()

	if r.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, r.Code, r.Body.String())
	}
}

// AssertStatusOK asserts 200 OK
func (r *TestResponse) AssertStatusOK(t *testing.T) {
	t.Helper()
	r.AssertStatus(t, http.StatusOK)
}

// AssertStatusCreated asserts 201 Created
func (r *TestResponse) AssertStatusCreated(t *testing.T) {
	t.Helper()
	r.AssertStatus(t, http.StatusCreated)
}

// AssertStatusUnauthorized asserts 401 Unauthorized
func (r *TestResponse) AssertStatusUnauthorized(t *testing.T) {
	t.Helper()
	r.AssertStatus(t, http.StatusUnauthorized)
}

// AssertStatusForbidden asserts 403 Forbidden
func (r *TestResponse) AssertStatusForbidden(t *testing.T) {
	t.Helper()
	r.AssertStatus(t, http.StatusForbidden)
}

// AssertStatusNotFound asserts 404 Not Found
func (r *TestResponse) AssertStatusNotFound(t *testing.T) {
	t.Helper()
	r.AssertStatus(t, http.StatusNotFound)
}

// AssertStatusBadRequest asserts 400 Bad Request
func (r *TestResponse) AssertStatusBadRequest(t *testing.T) {
	t.Helper()
	r.AssertStatus(t, http.StatusBadRequest)
}

// Decode unmarshals the response body into v
func (r *TestResponse) Decode(t *testing.T, v any) {
	t.Helper()

	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", r.Body.String(), err)
	}
}
