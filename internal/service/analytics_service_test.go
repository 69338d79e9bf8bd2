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

func TestDashboardScope(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	finance, _ := seedReports(t, e)

	_, err := e.reports.Review(ctx, principal(e.fx.Reviewer), finance.ID, service.ReviewInput{Action: "approve", Stage: "planning"})
	require.NoError(t, err)
	_, err = e.projects.Create(ctx, principal(e.fx.FinanceOfficer), service.CreateProjectInput{
		Name:        "E-filing portal",
		FocusAreaID: testutil.FocusFinanceRevenue,
		ProgrammeID: testutil.ProgrammeRevenue,
	})
	require.NoError(t, err)

	all, err := e.analytics.Dashboard(ctx, principal(e.fx.Admin))
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalReports)
	assert.Equal(t, 1, all.TotalProjects)
	assert.Equal(t, 2, all.PendingReviews)
	assert.Equal(t, 1, all.ByStatus[models.StatusPlanningApproved])
	assert.Equal(t, 1, all.ByStage[models.StageExecution])

	health, err := e.analytics.Dashboard(ctx, principal(e.fx.HealthOfficer))
	require.NoError(t, err)
	assert.Equal(t, 1, health.TotalReports)
	assert.Equal(t, 0, health.TotalProjects)
	assert.Equal(t, 1, health.ByStatus[models.StatusPendingPlanning])
}

func TestDashboardWithoutOrganisation(t *testing.T) {
	e := newEnv(t, true)
	seedReports(t, e)

	d, err := e.analytics.Dashboard(context.Background(), models.Principal{UserID: 99, Role: models.RoleOMA})
	require.NoError(t, err)
	assert.Zero(t, d.TotalReports)
	assert.NotNil(t, d.ByStatus)
}

func TestReportAnalytics(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	c := &clock{now: time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)}
	e.store.Now = c.Now

	finance, _ := seedReports(t, e)
	_, err := e.reports.Review(ctx, principal(e.fx.Reviewer), finance.ID, service.ReviewInput{Action: "reject", Stage: "planning"})
	require.NoError(t, err)

	c.Set(time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC))
	_, err = e.reports.Create(ctx, principal(e.fx.FinanceOfficer), financeReport())
	require.NoError(t, err)

	rows, err := e.analytics.ReportAnalytics(ctx, principal(e.fx.Reviewer), service.AnalyticsInput{Bucket: "quarter"})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	q1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, q1, rows[0].Bucket)
	assert.Equal(t, "Ministry of Finance", rows[0].GroupName)
	assert.Equal(t, 1, rows[0].Rejected)
	assert.Equal(t, q1, rows[1].Bucket)
	assert.Equal(t, "Ministry of Health", rows[1].GroupName)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), rows[2].Bucket)

	scoped, err := e.analytics.ReportAnalytics(ctx, principal(e.fx.FinanceOfficer), service.AnalyticsInput{GroupBy: "pillar", Bucket: "year"})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Economic Transformation", scoped[0].GroupName)
	assert.Equal(t, 2, scoped[0].Total)

	ranged, err := e.analytics.ReportAnalytics(ctx, principal(e.fx.Admin), service.AnalyticsInput{From: "2024-05-01", To: "2024-05-03"})
	require.NoError(t, err)
	require.Len(t, ranged, 1, "to covers the whole day")
	assert.Equal(t, 1, ranged[0].Total)
}

func TestReportAnalyticsValidation(t *testing.T) {
	e := newEnv(t, true)
	p := principal(e.fx.Admin)

	tests := []struct {
		name string
		in   service.AnalyticsInput
	}{
		{"unknown grouping", service.AnalyticsInput{GroupBy: "theme"}},
		{"unknown bucket", service.AnalyticsInput{Bucket: "week"}},
		{"bad date", service.AnalyticsInput{From: "01/02/2024"}},
		{"from after to", service.AnalyticsInput{From: "2024-06-01", To: "2024-05-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.analytics.ReportAnalytics(context.Background(), p, tt.in)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}
