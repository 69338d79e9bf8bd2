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

func ids[T any](items []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func TestFilterTaxonomy(t *testing.T) {
	full := testutil.SampleTaxonomy()
	finance := testutil.OrgFinance

	oma := service.FilterTaxonomy(full, models.Principal{UserID: 1, Role: models.RoleOMA, OrganisationID: &finance})
	assert.Len(t, oma.Organisations, 2)
	assert.Len(t, oma.Pillars, 2)
	assert.Equal(t, []int64{testutil.FocusFinanceRevenue, testutil.FocusFinanceSpending},
		ids(oma.FocusAreas, func(f models.FocusArea) int64 { return f.ID }))
	assert.Equal(t, []int64{testutil.ProgrammeRevenue, testutil.ProgrammeSpending},
		ids(oma.Programmes, func(p models.Programme) int64 { return p.ID }))
	assert.Equal(t, []int64{testutil.StrategyTaxBase, testutil.StrategyCompliance},
		ids(oma.Strategies, func(s models.Strategy) int64 { return s.ID }))

	npc := service.FilterTaxonomy(full, models.Principal{UserID: 2, Role: models.RoleNPC})
	assert.Len(t, npc.FocusAreas, 3)
	assert.Len(t, npc.Programmes, 3)
	assert.Len(t, npc.Strategies, 3)

	orphan := service.FilterTaxonomy(full, models.Principal{UserID: 3, Role: models.RoleOMA})
	assert.Empty(t, orphan.FocusAreas)
	assert.Empty(t, orphan.Programmes)
	assert.Empty(t, orphan.Strategies)
}

func TestLookup(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	p := principal(e.fx.HealthOfficer)

	roles, err := e.taxonomy.Lookup(ctx, p, service.LookupRoles)
	require.NoError(t, err)
	assert.Len(t, roles, 3)

	fas, err := e.taxonomy.Lookup(ctx, p, service.LookupFocusAreas)
	require.NoError(t, err)
	require.Len(t, fas, 1)
	assert.Equal(t, testutil.FocusHealthCare, fas.([]models.FocusArea)[0].ID)

	_, err = e.taxonomy.Lookup(ctx, p, "districts")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestValidateTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*models.Taxonomy)
		ok     bool
	}{
		{"sample is valid", func(*models.Taxonomy) {}, true},
		{"duplicate organisation", func(tx *models.Taxonomy) {
			tx.Organisations = append(tx.Organisations, models.Organisation{ID: testutil.OrgFinance, Name: "Again"})
		}, false},
		{"non positive id", func(tx *models.Taxonomy) { tx.Pillars[0].ID = 0 }, false},
		{"theme with unknown pillar", func(tx *models.Taxonomy) { tx.Themes[0].PillarID = 42 }, false},
		{"focus area with unknown organisation", func(tx *models.Taxonomy) { tx.FocusAreas[0].OrganisationID = 42 }, false},
		{"programme with unknown focus area", func(tx *models.Taxonomy) { tx.Programmes[0].FocusAreaID = 42 }, false},
		{"strategy with unknown programme", func(tx *models.Taxonomy) { tx.Strategies[0].ProgrammeID = 42 }, false},
		{"focus area with unknown strategy", func(tx *models.Taxonomy) {
			tx.FocusAreas[2].StrategyIDs = append(tx.FocusAreas[2].StrategyIDs, 42)
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := testutil.SampleTaxonomy()
			tt.modify(tx)
			err := service.ValidateTaxonomy(tx)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, service.ErrValidation)
			}
		})
	}
}

func TestSeedRejectsInvalidTaxonomy(t *testing.T) {
	e := newEnv(t, true)
	bad := testutil.SampleTaxonomy()
	bad.Themes[0].PillarID = 42

	err := e.taxonomy.Seed(context.Background(), bad)
	assert.ErrorIs(t, err, service.ErrValidation)

	snapshot, err := e.store.Taxonomy().Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshot.Themes[0].PillarID, "stored taxonomy is untouched")
}
