package handlers

import (
	"fmt"
	"net/http"

	"me-platform/internal/middleware"
	"me-platform/internal/models"
	"me-platform/internal/service"
	"me-platform/internal/workflow"
)

// ReportHandler serves report submission, review and analytics
type ReportHandler struct {
	reports   *service.ReportService
	analytics *service.AnalyticsService
	auditMw   *middleware.AuditMiddleware
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *service.ReportService, analytics *service.AnalyticsService, auditMw *middleware.AuditMiddleware) *ReportHandler {
	return &ReportHandler{reports: reports, analytics: analytics, auditMw: auditMw}
}

// Create submits a report
// @Summary Submit report
// @Description Creates a report at the planning stage. OMA users may only file against focus areas of their organisation.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateReportInput true "Report"
// @Success 201 {object} models.Report
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 403 {object} ErrorResponse "Focus area belongs to another organisation"
// @Failure 404 {object} ErrorResponse "Focus area not found"
// @Router /reports [post]
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var in service.CreateReportInput
	if !decodeJSON(w, r, &in) {
		return
	}

	report, err := h.reports.Create(r.Context(), p, in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.auditMw.LogAction(r, service.AuditReportCreate, "reports", fmt.Sprintf("report_id=%d", report.ID))
	respondWithJSON(w, r, http.StatusCreated, report)
}

// List returns reports visible to the caller
// @Summary List reports
// @Description NPC and Admin see all reports; OMA users see their organisation's
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param stage query string false "Stage filter"
// @Param organisation_id query int false "Organisation filter"
// @Param focus_area_id query int false "Focus area filter"
// @Success 200 {array} models.ReportWithDetails
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Router /reports [get]
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	filter, err := parseReportFilter(r)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reports, err := h.reports.List(r.Context(), p, filter)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, reports)
}

func parseReportFilter(r *http.Request) (models.ReportFilter, error) {
	var f models.ReportFilter
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status := models.Status(s)
		if !validStatus(status) {
			return f, fmt.Errorf("unknown status %q", s)
		}
		f.Status = &status
	}
	if s := q.Get("stage"); s != "" {
		stage := models.Stage(s)
		if !validStage(stage) {
			return f, fmt.Errorf("unknown stage %q", s)
		}
		f.Stage = &stage
	}

	var err error
	if f.OrganisationID, err = queryInt64(r, "organisation_id"); err != nil {
		return f, err
	}
	if f.FocusAreaID, err = queryInt64(r, "focus_area_id"); err != nil {
		return f, err
	}
	return f, nil
}

func validStatus(s models.Status) bool {
	switch s {
	case models.StatusPendingPlanning, models.StatusPlanningApproved, models.StatusExecutionApproved,
		models.StatusMonitoringApproved, models.StatusClosed, models.StatusRejected:
		return true
	}
	return false
}

func validStage(s models.Stage) bool {
	if s == models.StageClosed {
		return true
	}
	_, err := workflow.ParseReviewStage(string(s))
	return err == nil
}

// Mine returns the caller's own reports
// @Summary My reports
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ReportWithDetails
// @Router /reports/mine [get]
func (h *ReportHandler) Mine(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	reports, err := h.reports.ListMine(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, reports)
}

// Get returns one report
// @Summary Get report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} models.ReportWithDetails
// @Failure 403 {object} ErrorResponse "Report belongs to another organisation"
// @Failure 404 {object} ErrorResponse "Report not found"
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	report, err := h.reports.Get(r.Context(), p, id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, report)
}

// Update edits report content
// @Summary Update report
// @Description Admin may edit every content field. OMA authors may edit description, target and comments of their own reports. Reviewers cannot edit.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body service.UpdateReportInput true "Fields to change"
// @Success 200 {object} models.Report
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 403 {object} ErrorResponse "Field not editable by role"
// @Failure 404 {object} ErrorResponse "Report not found"
// @Router /reports/{id} [put]
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.UpdateReportInput
	if !decodeJSON(w, r, &in) {
		return
	}

	report, err := h.reports.UpdateContent(r.Context(), p, id, in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.auditMw.LogAction(r, service.AuditReportUpdate, "reports", fmt.Sprintf("report_id=%d", id))
	respondWithJSON(w, r, http.StatusOK, report)
}

// Comments returns the review history of a report
// @Summary Review history
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {array} models.ReviewComment
// @Failure 403 {object} ErrorResponse "Report belongs to another organisation"
// @Failure 404 {object} ErrorResponse "Report not found"
// @Router /reports/{id}/comments [get]
func (h *ReportHandler) Comments(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	comments, err := h.reports.Comments(r.Context(), p, id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, comments)
}

// Review records a reviewer decision
// @Summary Review report
// @Description Approve or reject the report at a stage. With strict stage checking the stage must equal the report's current stage.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body service.ReviewInput true "Decision"
// @Success 200 {object} models.Report
// @Failure 400 {object} ErrorResponse "Invalid action or stage"
// @Failure 403 {object} ErrorResponse "Caller is not a reviewer"
// @Failure 404 {object} ErrorResponse "Report not found"
// @Failure 409 {object} ErrorResponse "Stage mismatch or report closed"
// @Router /reports/{id}/review [post]
func (h *ReportHandler) Review(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.ReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}

	report, err := h.reports.Review(r.Context(), p, id, in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.auditMw.LogAction(r, service.AuditReportReview, "reports",
		fmt.Sprintf("report_id=%d action=%s stage=%s status=%s", id, in.Action, in.Stage, report.Status))
	respondWithJSON(w, r, http.StatusOK, report)
}

// Analytics aggregates reports over time
// @Summary Report analytics
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param group_by query string false "pillar, programme or organisation" default(organisation)
// @Param bucket query string false "month, quarter or year" default(month)
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date inclusive (YYYY-MM-DD)"
// @Success 200 {array} models.AnalyticsRow
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Router /reports/analytics [get]
func (h *ReportHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	rows, err := h.analytics.ReportAnalytics(r.Context(), p, service.AnalyticsInput{
		GroupBy: q.Get("group_by"),
		Bucket:  q.Get("bucket"),
		From:    q.Get("from"),
		To:      q.Get("to"),
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, rows)
}

// Dashboard summarises reports and projects
// @Summary Dashboard
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Dashboard
// @Router /dashboard [get]
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	d, err := h.analytics.Dashboard(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, d)
}
