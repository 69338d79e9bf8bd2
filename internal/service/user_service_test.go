package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"me-platform/internal/models"
	"me-platform/internal/service"
	"me-platform/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	finance := testutil.OrgFinance

	user, err := e.users.Create(ctx, service.CreateUserInput{
		FullName:       "  New Officer ",
		Username:       "new.officer",
		Email:          "New.Officer@Example.org",
		Password:       "a-long-password",
		RoleID:         int(models.RoleOMA),
		OrganisationID: &finance,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Officer", user.FullName)
	require.NotNil(t, user.Email)
	assert.Equal(t, "new.officer@example.org", *user.Email)
	assert.True(t, user.IsActive)

	_, err = e.auth.Login(ctx, "new.officer", "a-long-password", service.ClientInfo{})
	assert.NoError(t, err)

	missing := int64(77)
	tests := []struct {
		name    string
		in      service.CreateUserInput
		wantErr error
	}{
		{"oma without organisation", service.CreateUserInput{FullName: "X", Username: "x.user", Password: "a-long-password", RoleID: int(models.RoleOMA)}, service.ErrValidation},
		{"unknown role", service.CreateUserInput{FullName: "X", Username: "x.user", Password: "a-long-password", RoleID: 9}, service.ErrValidation},
		{"duplicate username", service.CreateUserInput{FullName: "X", Username: "reviewer", Password: "a-long-password", RoleID: int(models.RoleNPC)}, service.ErrConflict},
		{"unknown organisation", service.CreateUserInput{FullName: "X", Username: "x.user", Password: "a-long-password", RoleID: int(models.RoleOMA), OrganisationID: &missing}, service.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.users.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateUserDeactivationEndsSessions(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	admin := principal(e.fx.Admin)

	_, err := e.auth.Login(ctx, "health.officer", testutil.Password, service.ClientInfo{})
	require.NoError(t, err)
	require.Equal(t, 1, e.store.Sessions().Count())

	user, err := e.users.Update(ctx, admin, e.fx.HealthOfficer.ID, service.UpdateUserInput{
		IsActive:    ptr(false),
		Email:       ptr(""),
		FocusAreaID: ptr(testutil.FocusHealthCare),
	})
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Nil(t, user.Email)
	require.NotNil(t, user.FocusAreaID)
	assert.Zero(t, e.store.Sessions().Count())

	_, err = e.users.Update(ctx, admin, e.fx.Admin.ID, service.UpdateUserInput{IsActive: ptr(false)})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = e.users.Update(ctx, admin, e.fx.Reviewer.ID, service.UpdateUserInput{FullName: ptr("  ")})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = e.users.Update(ctx, admin, e.fx.Reviewer.ID, service.UpdateUserInput{FocusAreaID: ptr(int64(999))})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = e.users.Update(ctx, admin, 999, service.UpdateUserInput{FullName: ptr("Ghost")})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSetPassword(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	_, err := e.auth.Login(ctx, "reviewer", testutil.Password, service.ClientInfo{})
	require.NoError(t, err)

	require.NoError(t, e.users.SetPassword(ctx, e.fx.Reviewer.ID, service.SetPasswordInput{Password: "a-brand-new-secret"}))
	assert.Zero(t, e.store.Sessions().Count())

	_, err = e.auth.Login(ctx, "reviewer", testutil.Password, service.ClientInfo{})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = e.auth.Login(ctx, "reviewer", "a-brand-new-secret", service.ClientInfo{})
	assert.NoError(t, err)

	err = e.users.SetPassword(ctx, 999, service.SetPasswordInput{Password: "a-brand-new-secret"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	admin := principal(e.fx.Admin)
	seedReports(t, e)

	assert.ErrorIs(t, e.users.Delete(ctx, admin, e.fx.Admin.ID), service.ErrValidation)
	assert.ErrorIs(t, e.users.Delete(ctx, admin, e.fx.FinanceOfficer.ID), service.ErrConflict)
	assert.ErrorIs(t, e.users.Delete(ctx, admin, 999), service.ErrNotFound)

	require.NoError(t, e.users.Delete(ctx, admin, e.fx.FinanceColleague.ID))
	_, err := e.users.Get(ctx, e.fx.FinanceColleague.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListUsersPaging(t *testing.T) {
	e := newEnv(t, true)

	page, err := e.users.List(context.Background(), 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, e.fx.HealthOfficer.ID, page[0].ID)
	assert.Equal(t, "oma", page[0].Role)
}

func TestRevokeUserSessions(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	_, err := e.auth.Login(ctx, "finance.officer", testutil.Password, service.ClientInfo{})
	require.NoError(t, err)
	_, err = e.auth.Login(ctx, "admin", testutil.Password, service.ClientInfo{})
	require.NoError(t, err)

	require.NoError(t, e.users.RevokeSessions(ctx, e.fx.FinanceOfficer.ID))
	assert.Equal(t, 1, e.store.Sessions().Count())

	assert.ErrorIs(t, e.users.RevokeSessions(ctx, 999), service.ErrNotFound)
}

func TestAuditList(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	adminID := e.fx.Admin.ID

	for i := 0; i < 3; i++ {
		e.audit.Log(ctx, &adminID, service.AuditUserUpdate, "users", "", service.ClientInfo{})
	}
	e.audit.Log(ctx, nil, service.AuditSummarySent, "reports", "", service.ClientInfo{UserAgent: "scheduler"})

	all, err := e.audit.List(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, 20, all.Limit)
	assert.Equal(t, service.AuditSummarySent, all.Logs[0].Action, "newest first")

	mine, err := e.audit.List(ctx, &adminID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, mine.Total)
	assert.Len(t, mine.Logs, 1)

	none, err := e.audit.List(ctx, ptr(int64(999)), 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, none.Logs)
	assert.Empty(t, none.Logs)
}
