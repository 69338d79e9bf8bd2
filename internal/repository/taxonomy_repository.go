package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"me-platform/internal/models"
)

// TaxonomyRepository reads and seeds the classification tables
type TaxonomyRepository struct {
	db *sql.DB
}

// NewTaxonomyRepository creates a new taxonomy repository
func NewTaxonomyRepository(db *sql.DB) *TaxonomyRepository {
	return &TaxonomyRepository{db: db}
}

// Snapshot loads every taxonomy level
func (r *TaxonomyRepository) Snapshot(ctx context.Context) (*models.Taxonomy, error) {
	t := &models.Taxonomy{}
	var err error
	if t.Organisations, err = r.ListOrganisations(ctx); err != nil {
		return nil, err
	}
	if t.Pillars, err = r.ListPillars(ctx); err != nil {
		return nil, err
	}
	if t.Themes, err = r.ListThemes(ctx); err != nil {
		return nil, err
	}
	if t.FocusAreas, err = r.ListFocusAreas(ctx); err != nil {
		return nil, err
	}
	if t.Programmes, err = r.ListProgrammes(ctx); err != nil {
		return nil, err
	}
	if t.Strategies, err = r.ListStrategies(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// ListOrganisations returns all organisations
func (r *TaxonomyRepository) ListOrganisations(ctx context.Context) ([]models.Organisation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, code FROM organisations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organisations: %w", err)
	}
	defer rows.Close()

	var out []models.Organisation
	for rows.Next() {
		var o models.Organisation
		if err := rows.Scan(&o.ID, &o.Name, &o.Code); err != nil {
			return nil, fmt.Errorf("failed to scan organisation: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListPillars returns all pillars
func (r *TaxonomyRepository) ListPillars(ctx context.Context) ([]models.Pillar, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM pillars ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pillars: %w", err)
	}
	defer rows.Close()

	var out []models.Pillar
	for rows.Next() {
		var p models.Pillar
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan pillar: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListThemes returns all themes
func (r *TaxonomyRepository) ListThemes(ctx context.Context) ([]models.Theme, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, pillar_id, name FROM themes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	defer rows.Close()

	var out []models.Theme
	for rows.Next() {
		var t models.Theme
		if err := rows.Scan(&t.ID, &t.PillarID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListFocusAreas returns all focus areas
func (r *TaxonomyRepository) ListFocusAreas(ctx context.Context) ([]models.FocusArea, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, theme_id, organisation_id, name, strategy_ids FROM focus_areas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list focus areas: %w", err)
	}
	defer rows.Close()

	var out []models.FocusArea
	for rows.Next() {
		var fa models.FocusArea
		if err := rows.Scan(&fa.ID, &fa.ThemeID, &fa.OrganisationID, &fa.Name, (*pq.Int64Array)(&fa.StrategyIDs)); err != nil {
			return nil, fmt.Errorf("failed to scan focus area: %w", err)
		}
		out = append(out, fa)
	}
	return out, rows.Err()
}

// ListProgrammes returns all programmes
func (r *TaxonomyRepository) ListProgrammes(ctx context.Context) ([]models.Programme, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, focus_area_id, name FROM programmes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list programmes: %w", err)
	}
	defer rows.Close()

	var out []models.Programme
	for rows.Next() {
		var p models.Programme
		if err := rows.Scan(&p.ID, &p.FocusAreaID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan programme: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListStrategies returns all strategies
func (r *TaxonomyRepository) ListStrategies(ctx context.Context) ([]models.Strategy, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, programme_id, name FROM strategies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	defer rows.Close()

	var out []models.Strategy
	for rows.Next() {
		var s models.Strategy
		if err := rows.Scan(&s.ID, &s.ProgrammeID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetFocusArea retrieves a focus area by ID
func (r *TaxonomyRepository) GetFocusArea(ctx context.Context, id int64) (*models.FocusArea, error) {
	fa := &models.FocusArea{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, theme_id, organisation_id, name, strategy_ids FROM focus_areas WHERE id = $1`, id,
	).Scan(&fa.ID, &fa.ThemeID, &fa.OrganisationID, &fa.Name, (*pq.Int64Array)(&fa.StrategyIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get focus area %d: %w", id, translate(err))
	}
	return fa, nil
}

// GetProgramme retrieves a programme by ID
func (r *TaxonomyRepository) GetProgramme(ctx context.Context, id int64) (*models.Programme, error) {
	p := &models.Programme{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, focus_area_id, name FROM programmes WHERE id = $1`, id,
	).Scan(&p.ID, &p.FocusAreaID, &p.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get programme %d: %w", id, translate(err))
	}
	return p, nil
}

// Upsert writes a taxonomy snapshot with explicit ids in one transaction and
// advances the id sequences past the highest seeded id.
func (r *TaxonomyRepository) Upsert(ctx context.Context, t *models.Taxonomy) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, o := range t.Organisations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO organisations (id, name, code) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, code = EXCLUDED.code`,
			o.ID, o.Name, o.Code); err != nil {
			return fmt.Errorf("failed to upsert organisation %d: %w", o.ID, translate(err))
		}
	}
	for _, p := range t.Pillars {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pillars (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			p.ID, p.Name); err != nil {
			return fmt.Errorf("failed to upsert pillar %d: %w", p.ID, translate(err))
		}
	}
	for _, th := range t.Themes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO themes (id, pillar_id, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET pillar_id = EXCLUDED.pillar_id, name = EXCLUDED.name`,
			th.ID, th.PillarID, th.Name); err != nil {
			return fmt.Errorf("failed to upsert theme %d: %w", th.ID, translate(err))
		}
	}
	for _, fa := range t.FocusAreas {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO focus_areas (id, theme_id, organisation_id, name, strategy_ids) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET theme_id = EXCLUDED.theme_id, organisation_id = EXCLUDED.organisation_id,
				name = EXCLUDED.name, strategy_ids = EXCLUDED.strategy_ids`,
			fa.ID, fa.ThemeID, fa.OrganisationID, fa.Name, int64Array(fa.StrategyIDs)); err != nil {
			return fmt.Errorf("failed to upsert focus area %d: %w", fa.ID, translate(err))
		}
	}
	for _, p := range t.Programmes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO programmes (id, focus_area_id, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET focus_area_id = EXCLUDED.focus_area_id, name = EXCLUDED.name`,
			p.ID, p.FocusAreaID, p.Name); err != nil {
			return fmt.Errorf("failed to upsert programme %d: %w", p.ID, translate(err))
		}
	}
	for _, s := range t.Strategies {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO strategies (id, programme_id, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET programme_id = EXCLUDED.programme_id, name = EXCLUDED.name`,
			s.ID, s.ProgrammeID, s.Name); err != nil {
			return fmt.Errorf("failed to upsert strategy %d: %w", s.ID, translate(err))
		}
	}

	for _, table := range []string{"organisations", "pillars", "themes", "focus_areas", "programmes", "strategies"} {
		q := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`, table)
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}

	return tx.Commit()
}

// int64Array never encodes nil, so NOT NULL array columns get '{}'
func int64Array(ids []int64) pq.Int64Array {
	if ids == nil {
		return pq.Int64Array{}
	}
	return pq.Int64Array(ids)
}
