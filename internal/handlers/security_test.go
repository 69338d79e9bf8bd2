package handlers_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"me-platform/internal/models"
	"me-platform/internal/repository"
	"me-platform/internal/testutil"
)

func postgresStores(t *testing.T) stores {
	t.Helper()
	containers := testutil.SetupTestContainers(t)
	db := containers.DB
	return stores{
		reports:  repository.NewReportRepository(db),
		projects: repository.NewProjectRepository(db),
		taxonomy: repository.NewTaxonomyRepository(db),
		users:    repository.NewUserRepository(db),
		sessions: repository.NewSessionRepository(db),
		audit:    repository.NewAuditRepository(db),
		roles:    repository.NewRoleRepository(db),
	}
}

// TestOrganisationIsolation verifies OMA users never see another organisation's data
func TestOrganisationIsolation(t *testing.T) {
	srv := newServer(t, postgresStores(t), true, nil)
	fx := srv.fx

	resp := srv.do(t, http.MethodPost, "/api/reports", fx.FinanceOfficer, financeReportBody())
	resp.AssertStatusCreated(t)
	var report models.Report
	resp.Decode(t, &report)

	// filing against another organisation's focus area
	srv.do(t, http.MethodPost, "/api/reports", fx.HealthOfficer, financeReportBody()).AssertStatusForbidden(t)

	url := "/api/reports/" + itoa(report.ID)
	srv.do(t, http.MethodGet, url, fx.HealthOfficer, nil).AssertStatusForbidden(t)
	srv.do(t, http.MethodGet, url+"/comments", fx.HealthOfficer, nil).AssertStatusForbidden(t)
	srv.do(t, http.MethodPut, url, fx.HealthOfficer, map[string]string{"comments": "x"}).AssertStatusForbidden(t)

	var list []models.ReportWithDetails
	resp = srv.do(t, http.MethodGet, "/api/reports?organisation_id=1", fx.HealthOfficer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &list)
	assert.Empty(t, list)

	resp = srv.do(t, http.MethodGet, "/api/reports", fx.Reviewer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Fiona Finance", list[0].AuthorName)
	assert.Equal(t, []int64{testutil.StrategyTaxBase}, list[0].StrategyIDs)

	var tx models.Taxonomy
	resp = srv.do(t, http.MethodGet, "/api/taxonomy", fx.HealthOfficer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &tx)
	for _, fa := range tx.FocusAreas {
		assert.Equal(t, testutil.OrgHealth, fa.OrganisationID)
	}
	for _, s := range tx.Strategies {
		assert.Equal(t, testutil.StrategyClinics, s.ID)
	}
}

// TestConcurrentReviewsAreSerialised checks two reviewers approving the same
// stage at once produce exactly one transition
func TestConcurrentReviewsAreSerialised(t *testing.T) {
	srv := newServer(t, postgresStores(t), true, nil)
	fx := srv.fx

	resp := srv.do(t, http.MethodPost, "/api/reports", fx.FinanceOfficer, financeReportBody())
	resp.AssertStatusCreated(t)
	var report models.Report
	resp.Decode(t, &report)

	url := "/api/reports/" + itoa(report.ID) + "/review"
	body := map[string]string{"action": "approve", "stage": "planning"}
	reqs := []*http.Request{
		srv.auth.NewRequest(t, http.MethodPost, url, fx.Reviewer, body),
		srv.auth.NewRequest(t, http.MethodPost, url, fx.Admin, body),
	}

	codes := make([]int, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = srv.send(req).Code
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusConflict}, codes)

	var comments []models.ReviewComment
	resp = srv.do(t, http.MethodGet, "/api/reports/"+itoa(report.ID)+"/comments", fx.Reviewer, nil)
	resp.AssertStatusOK(t)
	resp.Decode(t, &comments)
	assert.Len(t, comments, 1)
}
