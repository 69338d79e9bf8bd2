package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"me-platform/internal/models"
	"me-platform/internal/service"
	"me-platform/internal/testutil"
)

func TestLogin(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	client := service.ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"}

	res, err := e.auth.Login(ctx, "finance.officer", testutil.Password, client)
	require.NoError(t, err)
	assert.Equal(t, e.fx.FinanceOfficer.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	claims, err := e.authSvc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.JTI, claims.ID)
	assert.Equal(t, models.RoleOMA, claims.RoleID)
	require.NotNil(t, claims.OrganisationID)
	assert.Equal(t, testutil.OrgFinance, *claims.OrganisationID)

	sess, err := e.store.Sessions().GetByJTI(ctx, res.JTI)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", sess.IPAddress)

	user, err := e.store.Users().GetByID(ctx, e.fx.FinanceOfficer.ID)
	require.NoError(t, err)
	assert.NotNil(t, user.LastLoginAt)
}

func TestLoginFailures(t *testing.T) {
	e := newEnv(t, true)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"wrong password", "finance.officer", "wrong-password", service.ErrInvalidCredentials},
		{"unknown user", "nobody", testutil.Password, service.ErrInvalidCredentials},
		{"inactive user", "inactive.officer", testutil.Password, service.ErrUserInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.auth.Login(context.Background(), tt.username, tt.password, service.ClientInfo{})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, service.ErrUnauthorized)
		})
	}
	assert.Zero(t, e.store.Sessions().Count())
}

func TestLogoutAndSessions(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	p := principal(e.fx.Reviewer)

	first, err := e.auth.Login(ctx, "reviewer", testutil.Password, service.ClientInfo{})
	require.NoError(t, err)
	second, err := e.auth.Login(ctx, "reviewer", testutil.Password, service.ClientInfo{})
	require.NoError(t, err)

	sessions, err := e.auth.Sessions(ctx, p, e.auth.CurrentJTI(second.Token))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	current := 0
	for _, s := range sessions {
		if s.Current {
			current++
			assert.Equal(t, second.JTI, s.JTI)
		}
	}
	assert.Equal(t, 1, current)

	var firstID string
	for _, s := range sessions {
		if s.JTI == first.JTI {
			firstID = s.ID
		}
	}
	err = e.auth.RevokeSession(ctx, principal(e.fx.Admin), firstID)
	assert.ErrorIs(t, err, service.ErrNotFound, "sessions of other users are invisible")
	require.NoError(t, e.auth.RevokeSession(ctx, p, firstID))

	require.NoError(t, e.auth.Logout(ctx, second.Token))
	_, err = e.store.Sessions().GetByJTI(ctx, second.JTI)
	assert.Error(t, err)

	err = e.auth.Logout(ctx, "not-a-token")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestCleanupSessions(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	c := &clock{now: time.Now()}
	e.store.Now = c.Now

	_, err := e.auth.Login(ctx, "admin", testutil.Password, service.ClientInfo{})
	require.NoError(t, err)

	c.Set(time.Now().Add(2 * time.Hour))
	n, err := e.auth.CleanupSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Zero(t, e.store.Sessions().Count())
}

func TestMe(t *testing.T) {
	e := newEnv(t, true)

	user, err := e.auth.Me(context.Background(), principal(e.fx.HealthOfficer))
	require.NoError(t, err)
	assert.Equal(t, "health.officer", user.Username)

	_, err = e.auth.Me(context.Background(), models.Principal{UserID: 404})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
