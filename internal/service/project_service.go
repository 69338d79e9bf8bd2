package service

import (
	"context"
	"fmt"
	"time"

	"me-platform/internal/models"
)

// CreateProjectInput is the body of POST /api/projects
type CreateProjectInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=5000"`
	FocusAreaID int64   `json:"focus_area_id" validate:"required,min=1"`
	ProgrammeID int64   `json:"programme_id" validate:"required,min=1"`
	StrategyIDs []int64 `json:"strategies" validate:"max=50"`
	Budget      float64 `json:"budget" validate:"min=0"`
	StartDate   string  `json:"start_date" validate:"omitempty,max=10"`
	EndDate     string  `json:"end_date" validate:"omitempty,max=10"`
}

// ProjectService manages organisation-scoped projects
type ProjectService struct {
	projects ProjectStore
	taxonomy *TaxonomyService
}

// NewProjectService creates a new project service
func NewProjectService(projects ProjectStore, taxonomy *TaxonomyService) *ProjectService {
	return &ProjectService{projects: projects, taxonomy: taxonomy}
}

// Create records a project. Reviewers do not own projects.
func (s *ProjectService) Create(ctx context.Context, p models.Principal, in CreateProjectInput) (*models.Project, error) {
	if p.Role == models.RoleNPC {
		return nil, forbidden("reviewers cannot create projects")
	}

	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", in.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, validationError("end_date must not be before start_date")
	}

	strategies := dedupeIDs(in.StrategyIDs)
	fa, err := s.taxonomy.resolveScope(ctx, p, in.FocusAreaID, in.ProgrammeID, strategies)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		UserID:         p.UserID,
		OrganisationID: fa.OrganisationID,
		FocusAreaID:    fa.ID,
		ProgrammeID:    in.ProgrammeID,
		StrategyIDs:    strategies,
		Name:           in.Name,
		Description:    in.Description,
		Budget:         in.Budget,
		StartDate:      start,
		EndDate:        end,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListMine returns the projects created by p
func (s *ProjectService) ListMine(ctx context.Context, p models.Principal) ([]models.Project, error) {
	return s.projects.List(ctx, &p.UserID, nil)
}

// List returns every project visible to p
func (s *ProjectService) List(ctx context.Context, p models.Principal) ([]models.Project, error) {
	if p.Role.IsGlobal() {
		return s.projects.List(ctx, nil, nil)
	}
	if p.OrganisationID == nil {
		return []models.Project{}, nil
	}
	return s.projects.List(ctx, nil, p.OrganisationID)
}

// Get returns one project if p may see it
func (s *ProjectService) Get(ctx context.Context, p models.Principal, id int64) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("project %d", id))
	}
	if !p.Role.IsGlobal() && !p.InOrganisation(project.OrganisationID) {
		return nil, forbidden("project %d belongs to another organisation", id)
	}
	return project, nil
}

// Delete removes a project. Only its creator or an Admin may do so.
func (s *ProjectService) Delete(ctx context.Context, p models.Principal, id int64) error {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, fmt.Sprintf("project %d", id))
	}
	if p.Role != models.RoleAdmin && project.UserID != p.UserID {
		return forbidden("only the creator or an admin can delete project %d", id)
	}
	return notFoundOr(s.projects.Delete(ctx, id), fmt.Sprintf("project %d", id))
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, validationError("%s must be a date in YYYY-MM-DD format", field)
	}
	return &t, nil
}
