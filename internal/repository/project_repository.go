package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"me-platform/internal/models"
)

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
	id, user_id, organisation_id, focus_area_id, programme_id, strategy_ids,
	name, description, budget, start_date, end_date, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }, p *models.Project) error {
	return row.Scan(
		&p.ID, &p.UserID, &p.OrganisationID, &p.FocusAreaID, &p.ProgrammeID,
		(*pq.Int64Array)(&p.StrategyIDs),
		&p.Name, &p.Description, &p.Budget, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt,
	)
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (user_id, organisation_id, focus_area_id, programme_id, strategy_ids,
		                      name, description, budget, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		p.UserID,
		p.OrganisationID,
		p.FocusAreaID,
		p.ProgrammeID,
		int64Array(p.StrategyIDs),
		p.Name,
		p.Description,
		p.Budget,
		p.StartDate,
		p.EndDate,
		now,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", translate(err))
	}

	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	p := &models.Project{}
	if err := scanProject(r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id), p); err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", id, translate(err))
	}
	return p, nil
}

// List returns projects, optionally restricted to an owner and/or organisation
func (r *ProjectRepository) List(ctx context.Context, userID, organisationID *int64) ([]models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE ($1::BIGINT IS NULL OR user_id = $1)
		  AND ($2::BIGINT IS NULL OR organisation_id = $2)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, organisationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Count returns the number of projects, optionally within one organisation
func (r *ProjectRepository) Count(ctx context.Context, organisationID *int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE ($1::BIGINT IS NULL OR organisation_id = $1)`, organisationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireAffected(res)
}
