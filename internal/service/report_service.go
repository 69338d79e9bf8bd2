package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"me-platform/internal/models"
	"me-platform/internal/workflow"
)

// CreateReportInput is the body of POST /api/reports
type CreateReportInput struct {
	FocusAreaID int64   `json:"focus_area_id" validate:"required,min=1"`
	ProgrammeID int64   `json:"programme_id" validate:"required,min=1"`
	StrategyIDs []int64 `json:"strategies" validate:"max=50"`
	Description string  `json:"description" validate:"required,max=5000"`
	Target      string  `json:"target" validate:"max=2000"`
	Period      string  `json:"period" validate:"required,max=50"`
	Comments    string  `json:"comments" validate:"max=5000"`
}

// UpdateReportInput is the body of PUT /api/reports/{id}. Omitted fields are left unchanged.
type UpdateReportInput struct {
	FocusAreaID *int64   `json:"focus_area_id" validate:"min=1"`
	ProgrammeID *int64   `json:"programme_id" validate:"min=1"`
	StrategyIDs *[]int64 `json:"strategies" validate:"max=50"`
	Description *string  `json:"description" validate:"max=5000"`
	Target      *string  `json:"target" validate:"max=2000"`
	Period      *string  `json:"period" validate:"max=50"`
	Comments    *string  `json:"comments" validate:"max=5000"`
}

// ReviewInput is the body of POST /api/reports/{id}/review
type ReviewInput struct {
	Action  string `json:"action" validate:"required,oneof=approve reject"`
	Stage   string `json:"stage" validate:"required,oneof=planning execution monitoring closure"`
	Comment string `json:"comment" validate:"max=5000"`
}

// ReportService implements report submission, visibility and review
type ReportService struct {
	reports  ReportStore
	taxonomy *TaxonomyService
	users    UserStore
	notifier Notifier
	strict   bool
	now      func() time.Time
}

// NewReportService creates a new report service. strictStage enables the
// current-stage check on reviews. notifier may be nil.
func NewReportService(reports ReportStore, taxonomy *TaxonomyService, users UserStore, notifier Notifier, strictStage bool) *ReportService {
	return &ReportService{
		reports:  reports,
		taxonomy: taxonomy,
		users:    users,
		notifier: notifier,
		strict:   strictStage,
		now:      time.Now,
	}
}

// Create submits a new report at the planning stage
func (s *ReportService) Create(ctx context.Context, p models.Principal, in CreateReportInput) (*models.Report, error) {
	strategies := dedupeIDs(in.StrategyIDs)
	fa, err := s.taxonomy.resolveScope(ctx, p, in.FocusAreaID, in.ProgrammeID, strategies)
	if err != nil {
		return nil, err
	}

	// organisation scoped callers file under their own organisation, which
	// resolveScope has already matched against the focus area
	report := &models.Report{
		UserID:           p.UserID,
		OrganisationID:   fa.OrganisationID,
		FocusAreaID:      fa.ID,
		ProgrammeID:      in.ProgrammeID,
		StrategyIDs:      strategies,
		Description:      in.Description,
		Target:           in.Target,
		Period:           in.Period,
		Comments:         in.Comments,
		Status:           models.StatusPendingPlanning,
		CurrentStage:     models.StagePlanning,
		ReviewerComments: models.ReviewComments{},
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListMine returns the reports authored by p
func (s *ReportService) ListMine(ctx context.Context, p models.Principal) ([]models.ReportWithDetails, error) {
	return s.reports.List(ctx, models.ReportFilter{UserID: &p.UserID})
}

// List returns reports visible to p. Organisation scoped callers only ever see
// their own organisation, whatever the filter asks for.
func (s *ReportService) List(ctx context.Context, p models.Principal, filter models.ReportFilter) ([]models.ReportWithDetails, error) {
	if !p.Role.IsGlobal() {
		if p.OrganisationID == nil {
			return []models.ReportWithDetails{}, nil
		}
		filter.OrganisationID = p.OrganisationID
	}
	return s.reports.List(ctx, filter)
}

// Get returns one report if p may see it
func (s *ReportService) Get(ctx context.Context, p models.Principal, id int64) (*models.ReportWithDetails, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("report %d", id))
	}
	if !canView(p, &report.Report) {
		return nil, forbidden("report %d belongs to another organisation", id)
	}
	return report, nil
}

// Comments returns the review history of a report in chronological order
func (s *ReportService) Comments(ctx context.Context, p models.Principal, id int64) (models.ReviewComments, error) {
	report, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if report.ReviewerComments == nil {
		return models.ReviewComments{}, nil
	}
	return report.ReviewerComments, nil
}

// Review records a reviewer decision and moves the report through the workflow
func (s *ReportService) Review(ctx context.Context, p models.Principal, id int64, in ReviewInput) (*models.Report, error) {
	if !workflow.CanReview(p.Role) {
		return nil, forbidden("only reviewers can review reports")
	}
	action, err := workflow.ParseAction(in.Action)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	stage, err := workflow.ParseReviewStage(in.Stage)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var recorded models.ReviewComment
	updated, err := s.reports.Review(ctx, id, func(current *models.Report) (models.ReviewOutcome, error) {
		d, err := workflow.Review(current.CurrentStage, stage, action, s.strict)
		if err != nil {
			if errors.Is(err, workflow.ErrStageMismatch) || errors.Is(err, workflow.ErrReportClosed) {
				return models.ReviewOutcome{}, fmt.Errorf("%w: %w", ErrConflict, err)
			}
			return models.ReviewOutcome{}, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		recorded = models.ReviewComment{
			ReviewerID:   p.UserID,
			ReviewerRole: p.Role.Name(),
			Action:       action,
			Stage:        d.ReviewedStage,
			Comment:      in.Comment,
			CreatedAt:    s.now().UTC(),
		}
		return models.ReviewOutcome{Status: d.Status, Stage: d.Stage, Comment: recorded}, nil
	})
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("report %d", id))
	}

	s.notifyOwner(ctx, updated, recorded)
	return updated, nil
}

func (s *ReportService) notifyOwner(ctx context.Context, report *models.Report, comment models.ReviewComment) {
	if s.notifier == nil {
		return
	}
	owner, err := s.users.GetByID(ctx, report.UserID)
	if err != nil {
		slog.Warn("Failed to load report owner for notification", "report_id", report.ID, "error", err)
		return
	}
	if owner.Email == nil || *owner.Email == "" {
		return
	}
	if err := s.notifier.SendReviewDecision(*owner.Email, owner.FullName, report, comment); err != nil {
		slog.Error("Failed to send review notification", "report_id", report.ID, "error", err)
	}
}

// UpdateContent edits report fields subject to role permissions: Admin may
// change every content field, OMA authors only description, target and
// comments of their own reports, reviewers nothing.
func (s *ReportService) UpdateContent(ctx context.Context, p models.Principal, id int64, in UpdateReportInput) (*models.Report, error) {
	editable := workflow.EditableFields(p.Role)
	if len(editable) == 0 {
		return nil, forbidden("role %s cannot edit reports", p.Role.Name())
	}

	existing, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("report %d", id))
	}
	if p.Role == models.RoleOMA && existing.UserID != p.UserID {
		return nil, forbidden("only the author can edit report %d", id)
	}

	requested := in.fields()
	if len(requested) == 0 {
		return nil, validationError("no fields to update")
	}
	for _, f := range requested {
		if !workflow.CanEditField(p.Role, f) {
			return nil, forbidden("role %s cannot edit %s", p.Role.Name(), f)
		}
	}

	upd := models.ReportContentUpdate{
		FocusAreaID: in.FocusAreaID,
		ProgrammeID: in.ProgrammeID,
		Description: in.Description,
		Target:      in.Target,
		Period:      in.Period,
		Comments:    in.Comments,
	}

	if in.FocusAreaID != nil || in.ProgrammeID != nil || in.StrategyIDs != nil {
		focusAreaID, programmeID, strategies := existing.FocusAreaID, existing.ProgrammeID, existing.StrategyIDs
		if in.FocusAreaID != nil {
			focusAreaID = *in.FocusAreaID
		}
		if in.ProgrammeID != nil {
			programmeID = *in.ProgrammeID
		}
		if in.StrategyIDs != nil {
			strategies = dedupeIDs(*in.StrategyIDs)
			upd.StrategyIDs = &strategies
		}
		fa, err := s.taxonomy.resolveScope(ctx, p, focusAreaID, programmeID, strategies)
		if err != nil {
			return nil, err
		}
		if fa.OrganisationID != existing.OrganisationID {
			return nil, validationError("focus area %d belongs to a different organisation than report %d", fa.ID, id)
		}
	}

	updated, err := s.reports.UpdateContent(ctx, id, upd)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("report %d", id))
	}
	return updated, nil
}

func (in UpdateReportInput) fields() []string {
	var out []string
	if in.FocusAreaID != nil {
		out = append(out, workflow.FieldFocusArea)
	}
	if in.ProgrammeID != nil {
		out = append(out, workflow.FieldProgramme)
	}
	if in.StrategyIDs != nil {
		out = append(out, workflow.FieldStrategies)
	}
	if in.Description != nil {
		out = append(out, workflow.FieldDescription)
	}
	if in.Target != nil {
		out = append(out, workflow.FieldTarget)
	}
	if in.Period != nil {
		out = append(out, workflow.FieldPeriod)
	}
	if in.Comments != nil {
		out = append(out, workflow.FieldComments)
	}
	return out
}

func canView(p models.Principal, r *models.Report) bool {
	return p.Role.IsGlobal() || p.InOrganisation(r.OrganisationID)
}
