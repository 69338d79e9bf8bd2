package service

import (
	"context"
	"time"

	"me-platform/internal/models"
	"me-platform/internal/workflow"
)

// AnalyticsInput carries the raw query parameters of GET /api/reports/analytics
type AnalyticsInput struct {
	GroupBy string
	Bucket  string
	From    string
	To      string
}

// AnalyticsService aggregates reports and projects for dashboards
type AnalyticsService struct {
	reports  ReportStore
	projects ProjectStore
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(reports ReportStore, projects ProjectStore) *AnalyticsService {
	return &AnalyticsService{reports: reports, projects: projects}
}

// scope returns the organisation filter for p; ok is false when p can see nothing
func scope(p models.Principal) (org *int64, ok bool) {
	if p.Role.IsGlobal() {
		return nil, true
	}
	return p.OrganisationID, p.OrganisationID != nil
}

// Dashboard summarises report counts by status and stage plus project totals
func (s *AnalyticsService) Dashboard(ctx context.Context, p models.Principal) (*models.Dashboard, error) {
	d := &models.Dashboard{
		ByStatus: map[models.Status]int{},
		ByStage:  map[models.Stage]int{},
	}
	org, ok := scope(p)
	if !ok {
		return d, nil
	}

	counts, err := s.reports.StatusStageCounts(ctx, org)
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		d.TotalReports += c.Count
		d.ByStatus[c.Status] += c.Count
		d.ByStage[c.Stage] += c.Count
		if workflow.IsPending(c.Status, c.Stage) {
			d.PendingReviews += c.Count
		}
	}

	if d.TotalProjects, err = s.projects.Count(ctx, org); err != nil {
		return nil, err
	}
	return d, nil
}

// ReportAnalytics groups reports by pillar, programme or organisation and
// buckets them by month, quarter or year of creation. Defaults are
// organisation and month. to is inclusive of the whole day.
func (s *AnalyticsService) ReportAnalytics(ctx context.Context, p models.Principal, in AnalyticsInput) ([]models.AnalyticsRow, error) {
	q := models.AnalyticsQuery{GroupBy: in.GroupBy, Bucket: in.Bucket}
	if q.GroupBy == "" {
		q.GroupBy = "organisation"
	}
	if q.Bucket == "" {
		q.Bucket = "month"
	}
	switch q.GroupBy {
	case "pillar", "programme", "organisation":
	default:
		return nil, validationError("group_by must be one of pillar, programme, organisation")
	}
	switch q.Bucket {
	case "month", "quarter", "year":
	default:
		return nil, validationError("bucket must be one of month, quarter, year")
	}

	from, err := parseDate("from", in.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("to", in.To)
	if err != nil {
		return nil, err
	}
	if to != nil {
		next := to.Add(24 * time.Hour)
		to = &next
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, validationError("from must not be after to")
	}
	q.From, q.To = from, to

	org, ok := scope(p)
	if !ok {
		return []models.AnalyticsRow{}, nil
	}
	q.OrganisationID = org

	return s.reports.Analytics(ctx, q)
}
