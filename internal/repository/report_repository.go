package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"me-platform/internal/models"
)

// ReportRepository handles report database operations
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `
	r.id, r.user_id, r.organisation_id, r.focus_area_id, r.programme_id, r.strategy_ids,
	r.description, r.target, r.period, r.comments, r.status, r.current_stage,
	r.reviewer_comments, r.created_at, r.updated_at`

const reportDetailJoins = `
	FROM reports r
	JOIN users u ON u.id = r.user_id
	JOIN organisations o ON o.id = r.organisation_id
	JOIN focus_areas fa ON fa.id = r.focus_area_id
	JOIN programmes pg ON pg.id = r.programme_id`

func scanReport(row interface{ Scan(...any) error }, rep *models.Report, extra ...any) error {
	dest := []any{
		&rep.ID, &rep.UserID, &rep.OrganisationID, &rep.FocusAreaID, &rep.ProgrammeID,
		(*pq.Int64Array)(&rep.StrategyIDs),
		&rep.Description, &rep.Target, &rep.Period, &rep.Comments, &rep.Status, &rep.CurrentStage,
		&rep.ReviewerComments, &rep.CreatedAt, &rep.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func scanReportDetails(row interface{ Scan(...any) error }, d *models.ReportWithDetails) error {
	return scanReport(row, &d.Report, &d.AuthorName, &d.OrganisationName, &d.FocusAreaName, &d.ProgrammeName)
}

// Create inserts a report. Status, stage and an empty comment history are
// taken from rep as set by the caller.
func (r *ReportRepository) Create(ctx context.Context, rep *models.Report) error {
	query := `
		INSERT INTO reports (user_id, organisation_id, focus_area_id, programme_id, strategy_ids,
		                     description, target, period, comments, status, current_stage,
		                     reviewer_comments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING id
	`

	if rep.ReviewerComments == nil {
		rep.ReviewerComments = models.ReviewComments{}
	}
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		rep.UserID,
		rep.OrganisationID,
		rep.FocusAreaID,
		rep.ProgrammeID,
		int64Array(rep.StrategyIDs),
		rep.Description,
		rep.Target,
		rep.Period,
		rep.Comments,
		rep.Status,
		rep.CurrentStage,
		rep.ReviewerComments,
		now,
	).Scan(&rep.ID)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", translate(err))
	}

	rep.CreatedAt = now
	rep.UpdatedAt = now
	return nil
}

// GetByID retrieves a report with its display names
func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*models.ReportWithDetails, error) {
	query := `SELECT ` + reportColumns + `, u.full_name, o.name, fa.name, pg.name ` + reportDetailJoins + ` WHERE r.id = $1`

	d := &models.ReportWithDetails{}
	if err := scanReportDetails(r.db.QueryRowContext(ctx, query, id), d); err != nil {
		return nil, fmt.Errorf("failed to get report %d: %w", id, translate(err))
	}
	return d, nil
}

// List returns reports matching filter, newest first
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.ReportWithDetails, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserID != nil {
		add("r.user_id = $%d", *filter.UserID)
	}
	if filter.OrganisationID != nil {
		add("r.organisation_id = $%d", *filter.OrganisationID)
	}
	if filter.FocusAreaID != nil {
		add("r.focus_area_id = $%d", *filter.FocusAreaID)
	}
	if filter.Status != nil {
		add("r.status = $%d", *filter.Status)
	}
	if filter.Stage != nil {
		add("r.current_stage = $%d", *filter.Stage)
	}

	query := `SELECT ` + reportColumns + `, u.full_name, o.name, fa.name, pg.name ` + reportDetailJoins
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []models.ReportWithDetails
	for rows.Next() {
		var d models.ReportWithDetails
		if err := scanReportDetails(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, d)
	}
	return reports, rows.Err()
}

// UpdateContent applies the non-nil fields of upd and returns the updated report
func (r *ReportRepository) UpdateContent(ctx context.Context, id int64, upd models.ReportContentUpdate) (*models.Report, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.FocusAreaID != nil {
		set("focus_area_id", *upd.FocusAreaID)
	}
	if upd.ProgrammeID != nil {
		set("programme_id", *upd.ProgrammeID)
	}
	if upd.StrategyIDs != nil {
		set("strategy_ids", int64Array(*upd.StrategyIDs))
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Target != nil {
		set("target", *upd.Target)
	}
	if upd.Period != nil {
		set("period", *upd.Period)
	}
	if upd.Comments != nil {
		set("comments", *upd.Comments)
	}
	set("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE reports r SET %s WHERE r.id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), reportColumns)

	rep := &models.Report{}
	if err := scanReport(r.db.QueryRowContext(ctx, query, args...), rep); err != nil {
		return nil, fmt.Errorf("failed to update report %d: %w", id, translate(err))
	}
	return rep, nil
}

// ReviewFunc inspects the locked report and returns the outcome to persist
type ReviewFunc func(current *models.Report) (models.ReviewOutcome, error)

// Review locks the report row, lets decide compute the outcome against the
// locked state, then appends the comment and sets status and stage in a single
// UPDATE. Concurrent reviews of one report serialise on the row lock.
// An error from decide aborts the transaction and is returned unchanged.
func (r *ReportRepository) Review(ctx context.Context, id int64, decide ReviewFunc) (*models.Report, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin review: %w", err)
	}
	defer tx.Rollback()

	current := &models.Report{}
	lockQuery := `SELECT ` + reportColumns + ` FROM reports r WHERE r.id = $1 FOR UPDATE`
	if err := scanReport(tx.QueryRowContext(ctx, lockQuery, id), current); err != nil {
		return nil, fmt.Errorf("failed to lock report %d: %w", id, translate(err))
	}

	outcome, err := decide(current)
	if err != nil {
		return nil, err
	}

	comment, err := json.Marshal(models.ReviewComments{outcome.Comment})
	if err != nil {
		return nil, fmt.Errorf("failed to encode review comment: %w", err)
	}

	updateQuery := `
		UPDATE reports r
		SET status = $1, current_stage = $2,
		    reviewer_comments = r.reviewer_comments || $3::jsonb,
		    updated_at = $4
		WHERE r.id = $5
		RETURNING ` + reportColumns

	updated := &models.Report{}
	if err := scanReport(tx.QueryRowContext(ctx, updateQuery,
		outcome.Status, outcome.Stage, string(comment), time.Now(), id,
	), updated); err != nil {
		return nil, fmt.Errorf("failed to apply review to report %d: %w", id, translate(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}
	return updated, nil
}

// StatusStageCounts counts reports per (status, stage), optionally within one organisation
func (r *ReportRepository) StatusStageCounts(ctx context.Context, organisationID *int64) ([]models.StatusStageCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, current_stage, COUNT(*)
		FROM reports
		WHERE ($1::BIGINT IS NULL OR organisation_id = $1)
		GROUP BY status, current_stage`, organisationID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}
	defer rows.Close()

	var out []models.StatusStageCount
	for rows.Next() {
		var c models.StatusStageCount
		if err := rows.Scan(&c.Status, &c.Stage, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan report count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var analyticsGroups = map[string]struct{ cols, joins string }{
	"pillar": {
		cols: "p.id, p.name",
		joins: `JOIN focus_areas fa ON fa.id = r.focus_area_id
			JOIN themes t ON t.id = fa.theme_id
			JOIN pillars p ON p.id = t.pillar_id`,
	},
	"programme": {
		cols:  "pg.id, pg.name",
		joins: `JOIN programmes pg ON pg.id = r.programme_id`,
	},
	"organisation": {
		cols:  "o.id, o.name",
		joins: `JOIN organisations o ON o.id = r.organisation_id`,
	},
}

var analyticsBuckets = map[string]bool{"month": true, "quarter": true, "year": true}

// Analytics aggregates reports by group and created_at bucket.
// GroupBy and Bucket must already be validated by the caller.
func (r *ReportRepository) Analytics(ctx context.Context, q models.AnalyticsQuery) ([]models.AnalyticsRow, error) {
	group, ok := analyticsGroups[q.GroupBy]
	if !ok || !analyticsBuckets[q.Bucket] {
		return nil, fmt.Errorf("unsupported analytics grouping %q/%q", q.GroupBy, q.Bucket)
	}

	query := fmt.Sprintf(`
		SELECT %s, date_trunc($1, r.created_at) AS bucket,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE r.status IN ('planning_approved', 'execution_approved', 'monitoring_approved')),
		       COUNT(*) FILTER (WHERE r.status = 'rejected'),
		       COUNT(*) FILTER (WHERE r.status = 'closed')
		FROM reports r
		%s
		WHERE ($2::TIMESTAMP IS NULL OR r.created_at >= $2)
		  AND ($3::TIMESTAMP IS NULL OR r.created_at < $3)
		  AND ($4::BIGINT IS NULL OR r.organisation_id = $4)
		GROUP BY 1, 2, 3
		ORDER BY 3, 2`, group.cols, group.joins)

	rows, err := r.db.QueryContext(ctx, query, q.Bucket, q.From, q.To, q.OrganisationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report analytics: %w", err)
	}
	defer rows.Close()

	var out []models.AnalyticsRow
	for rows.Next() {
		var a models.AnalyticsRow
		if err := rows.Scan(&a.GroupID, &a.GroupName, &a.Bucket, &a.Total, &a.Approved, &a.Rejected, &a.Closed); err != nil {
			return nil, fmt.Errorf("failed to scan analytics row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListPending returns reports that are not closed, oldest activity first
func (r *ReportRepository) ListPending(ctx context.Context) ([]models.PendingReview, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, o.name, fa.name, r.period, r.current_stage, r.status, r.updated_at
		FROM reports r
		JOIN organisations o ON o.id = r.organisation_id
		JOIN focus_areas fa ON fa.id = r.focus_area_id
		WHERE r.current_stage <> 'closed'
		ORDER BY r.updated_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reports: %w", err)
	}
	defer rows.Close()

	var out []models.PendingReview
	for rows.Next() {
		var p models.PendingReview
		if err := rows.Scan(&p.ReportID, &p.OrganisationName, &p.FocusAreaName, &p.Period, &p.Stage, &p.Status, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending report: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
