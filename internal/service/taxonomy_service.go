package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"me-platform/internal/models"
	"me-platform/internal/repository"
)

// Lookup kinds served by TaxonomyService.Lookup
const (
	LookupPillars       = "pillars"
	LookupThemes        = "themes"
	LookupFocusAreas    = "focus-areas"
	LookupProgrammes    = "programmes"
	LookupStrategies    = "strategies"
	LookupOrganisations = "organisations"
	LookupRoles         = "roles"
)

// TaxonomyService exposes the classification tables scoped to the caller
type TaxonomyService struct {
	store TaxonomyStore
	roles RoleStore
}

// NewTaxonomyService creates a new taxonomy service
func NewTaxonomyService(store TaxonomyStore, roles RoleStore) *TaxonomyService {
	return &TaxonomyService{store: store, roles: roles}
}

// FilterTaxonomy narrows t to what p may see. Pillars, themes and
// organisations are global. Global roles see every focus area; everyone else
// sees the focus areas of their own organisation. Programmes follow the
// visible focus areas, and strategies are limited to the ids those focus
// areas reference.
func FilterTaxonomy(t *models.Taxonomy, p models.Principal) *models.Taxonomy {
	out := &models.Taxonomy{
		Organisations: t.Organisations,
		Pillars:       t.Pillars,
		Themes:        t.Themes,
	}

	if p.Role.IsGlobal() {
		out.FocusAreas = t.FocusAreas
	} else {
		for _, fa := range t.FocusAreas {
			if p.InOrganisation(fa.OrganisationID) {
				out.FocusAreas = append(out.FocusAreas, fa)
			}
		}
	}

	focusIDs := make(map[int64]bool, len(out.FocusAreas))
	strategyIDs := make(map[int64]bool)
	for _, fa := range out.FocusAreas {
		focusIDs[fa.ID] = true
		for _, id := range fa.StrategyIDs {
			strategyIDs[id] = true
		}
	}

	for _, pg := range t.Programmes {
		if focusIDs[pg.FocusAreaID] {
			out.Programmes = append(out.Programmes, pg)
		}
	}
	for _, s := range t.Strategies {
		if strategyIDs[s.ID] {
			out.Strategies = append(out.Strategies, s)
		}
	}

	return out
}

// Visible returns the taxonomy filtered for p
func (s *TaxonomyService) Visible(ctx context.Context, p models.Principal) (*models.Taxonomy, error) {
	t, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTaxonomy(t, p), nil
}

// FocusAreas returns the focus areas visible to p
func (s *TaxonomyService) FocusAreas(ctx context.Context, p models.Principal) ([]models.FocusArea, error) {
	t, err := s.Visible(ctx, p)
	if err != nil {
		return nil, err
	}
	return t.FocusAreas, nil
}

// Lookup returns one taxonomy level by kind, scoped to p
func (s *TaxonomyService) Lookup(ctx context.Context, p models.Principal, kind string) (any, error) {
	if kind == LookupRoles {
		return s.roles.List(ctx)
	}

	t, err := s.Visible(ctx, p)
	if err != nil {
		return nil, err
	}
	switch kind {
	case LookupPillars:
		return t.Pillars, nil
	case LookupThemes:
		return t.Themes, nil
	case LookupFocusAreas:
		return t.FocusAreas, nil
	case LookupProgrammes:
		return t.Programmes, nil
	case LookupStrategies:
		return t.Strategies, nil
	case LookupOrganisations:
		return t.Organisations, nil
	default:
		return nil, fmt.Errorf("%w: unknown lookup %q", ErrNotFound, kind)
	}
}

// Seed validates the references inside t and upserts it
func (s *TaxonomyService) Seed(ctx context.Context, t *models.Taxonomy) error {
	if err := ValidateTaxonomy(t); err != nil {
		return err
	}
	return s.store.Upsert(ctx, t)
}

// ValidateTaxonomy checks ids are positive and unique per level and every
// parent reference resolves within t
func ValidateTaxonomy(t *models.Taxonomy) error {
	orgs := map[int64]bool{}
	for _, o := range t.Organisations {
		if err := addID(orgs, "organisation", o.ID); err != nil {
			return err
		}
	}
	pillars := map[int64]bool{}
	for _, p := range t.Pillars {
		if err := addID(pillars, "pillar", p.ID); err != nil {
			return err
		}
	}
	themes := map[int64]bool{}
	for _, th := range t.Themes {
		if err := addID(themes, "theme", th.ID); err != nil {
			return err
		}
		if !pillars[th.PillarID] {
			return validationError("theme %d references unknown pillar %d", th.ID, th.PillarID)
		}
	}
	focus := map[int64]bool{}
	for _, fa := range t.FocusAreas {
		if err := addID(focus, "focus area", fa.ID); err != nil {
			return err
		}
		if !themes[fa.ThemeID] {
			return validationError("focus area %d references unknown theme %d", fa.ID, fa.ThemeID)
		}
		if !orgs[fa.OrganisationID] {
			return validationError("focus area %d references unknown organisation %d", fa.ID, fa.OrganisationID)
		}
	}
	programmes := map[int64]bool{}
	for _, pg := range t.Programmes {
		if err := addID(programmes, "programme", pg.ID); err != nil {
			return err
		}
		if !focus[pg.FocusAreaID] {
			return validationError("programme %d references unknown focus area %d", pg.ID, pg.FocusAreaID)
		}
	}
	strategies := map[int64]bool{}
	for _, st := range t.Strategies {
		if err := addID(strategies, "strategy", st.ID); err != nil {
			return err
		}
		if !programmes[st.ProgrammeID] {
			return validationError("strategy %d references unknown programme %d", st.ID, st.ProgrammeID)
		}
	}
	for _, fa := range t.FocusAreas {
		for _, id := range fa.StrategyIDs {
			if !strategies[id] {
				return validationError("focus area %d references unknown strategy %d", fa.ID, id)
			}
		}
	}
	return nil
}

func addID(seen map[int64]bool, what string, id int64) error {
	if id <= 0 {
		return validationError("%s id must be positive, got %d", what, id)
	}
	if seen[id] {
		return validationError("duplicate %s id %d", what, id)
	}
	seen[id] = true
	return nil
}

// resolveScope loads the focus area and programme for a report or project and
// checks p may file against them. Strategies must be a subset of the focus
// area's strategies.
func (s *TaxonomyService) resolveScope(ctx context.Context, p models.Principal, focusAreaID, programmeID int64, strategyIDs []int64) (*models.FocusArea, error) {
	fa, err := s.store.GetFocusArea(ctx, focusAreaID)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("focus area %d", focusAreaID))
	}
	if !p.Role.IsGlobal() && !p.InOrganisation(fa.OrganisationID) {
		return nil, forbidden("focus area %d belongs to another organisation", focusAreaID)
	}

	pg, err := s.store.GetProgramme(ctx, programmeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, validationError("programme %d does not exist", programmeID)
	}
	if err != nil {
		return nil, err
	}
	if pg.FocusAreaID != fa.ID {
		return nil, validationError("programme %d does not belong to focus area %d", programmeID, focusAreaID)
	}

	allowed := make(map[int64]bool, len(fa.StrategyIDs))
	for _, id := range fa.StrategyIDs {
		allowed[id] = true
	}
	for _, id := range strategyIDs {
		if !allowed[id] {
			return nil, validationError("strategy %d is not part of focus area %d", id, focusAreaID)
		}
	}
	return fa, nil
}

// dedupeIDs returns ids sorted with duplicates removed
func dedupeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{}
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
