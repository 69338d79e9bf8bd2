package models

import "time"

// Dashboard summarises report and project activity for a caller's scope
type Dashboard struct {
	TotalReports   int            `json:"total_reports"`
	TotalProjects  int            `json:"total_projects"`
	PendingReviews int            `json:"pending_reviews"`
	ByStatus       map[Status]int `json:"by_status"`
	ByStage        map[Stage]int  `json:"by_stage"`
}

// AnalyticsQuery selects the grouping and time bucketing of report analytics
type AnalyticsQuery struct {
	GroupBy        string
	Bucket         string
	From           *time.Time
	To             *time.Time
	OrganisationID *int64
}

// AnalyticsRow is one (group, bucket) aggregate of reports
type AnalyticsRow struct {
	GroupID   int64     `json:"group_id"`
	GroupName string    `json:"group_name"`
	Bucket    time.Time `json:"bucket"`
	Total     int       `json:"total"`
	Approved  int       `json:"approved"`
	Rejected  int       `json:"rejected"`
	Closed    int       `json:"closed"`
}

// PendingReview is a report waiting for a reviewer decision
type PendingReview struct {
	ReportID         int64     `json:"report_id"`
	OrganisationName string    `json:"organisation_name"`
	FocusAreaName    string    `json:"focus_area_name"`
	Period           string    `json:"period"`
	Stage            Stage     `json:"stage"`
	Status           Status    `json:"status"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StatusStageCount is the number of reports in one (status, stage) combination
type StatusStageCount struct {
	Status Status
	Stage  Stage
	Count  int
}
