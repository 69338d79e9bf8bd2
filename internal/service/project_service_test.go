package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"me-platform/internal/service"
	"me-platform/internal/testutil"
)

func revenueProject() service.CreateProjectInput {
	return service.CreateProjectInput{
		Name:        "E-filing portal",
		Description: "Online filing for SMEs",
		FocusAreaID: testutil.FocusFinanceRevenue,
		ProgrammeID: testutil.ProgrammeRevenue,
		StrategyIDs: []int64{testutil.StrategyTaxBase},
		Budget:      250000,
		StartDate:   "2024-01-01",
		EndDate:     "2024-12-31",
	}
}

func TestCreateProject(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	p, err := e.projects.Create(ctx, principal(e.fx.FinanceOfficer), revenueProject())
	require.NoError(t, err)
	assert.Equal(t, testutil.OrgFinance, p.OrganisationID)
	require.NotNil(t, p.StartDate)
	assert.Equal(t, "2024-01-01", p.StartDate.Format("2006-01-02"))

	_, err = e.projects.Create(ctx, principal(e.fx.Reviewer), revenueProject())
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = e.projects.Create(ctx, principal(e.fx.HealthOfficer), revenueProject())
	assert.ErrorIs(t, err, service.ErrForbidden)

	bad := revenueProject()
	bad.EndDate = "2023-12-31"
	_, err = e.projects.Create(ctx, principal(e.fx.FinanceOfficer), bad)
	assert.ErrorIs(t, err, service.ErrValidation)

	bad = revenueProject()
	bad.StartDate = "next monday"
	_, err = e.projects.Create(ctx, principal(e.fx.FinanceOfficer), bad)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestProjectVisibilityAndDelete(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	p, err := e.projects.Create(ctx, principal(e.fx.FinanceOfficer), revenueProject())
	require.NoError(t, err)

	list, err := e.projects.List(ctx, principal(e.fx.FinanceColleague))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = e.projects.List(ctx, principal(e.fx.HealthOfficer))
	require.NoError(t, err)
	assert.Empty(t, list)

	mine, err := e.projects.ListMine(ctx, principal(e.fx.FinanceOfficer))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = e.projects.Get(ctx, principal(e.fx.HealthOfficer), p.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	err = e.projects.Delete(ctx, principal(e.fx.FinanceColleague), p.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	require.NoError(t, e.projects.Delete(ctx, principal(e.fx.FinanceOfficer), p.ID))

	err = e.projects.Delete(ctx, principal(e.fx.Admin), p.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
