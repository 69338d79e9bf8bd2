package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Stage is a position in the report review workflow
type Stage string

const (
	StagePlanning   Stage = "planning"
	StageExecution  Stage = "execution"
	StageMonitoring Stage = "monitoring"
	StageClosure    Stage = "closure"
	StageClosed     Stage = "closed"
)

// Status is the outcome of the most recent review transition
type Status string

const (
	StatusPendingPlanning    Status = "pending_planning"
	StatusPlanningApproved   Status = "planning_approved"
	StatusExecutionApproved  Status = "execution_approved"
	StatusMonitoringApproved Status = "monitoring_approved"
	StatusClosed             Status = "closed"
	StatusRejected           Status = "rejected"
)

// ReviewAction is a reviewer's decision on a report
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// Report is a quarterly report submitted against the programme taxonomy
type Report struct {
	ID               int64          `json:"id" db:"id"`
	UserID           int64          `json:"user_id" db:"user_id"`
	OrganisationID   int64          `json:"organisation_id" db:"organisation_id"`
	FocusAreaID      int64          `json:"focus_area_id" db:"focus_area_id"`
	ProgrammeID      int64          `json:"programme_id" db:"programme_id"`
	StrategyIDs      []int64        `json:"strategies" db:"strategy_ids"`
	Description      string         `json:"description" db:"description"`
	Target           string         `json:"target" db:"target"`
	Period           string         `json:"period" db:"period"`
	Comments         string         `json:"comments" db:"comments"`
	Status           Status         `json:"status" db:"status"`
	CurrentStage     Stage          `json:"current_stage" db:"current_stage"`
	ReviewerComments ReviewComments `json:"reviewer_comments" db:"reviewer_comments"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// ReportWithDetails extends Report with display names from joined tables
type ReportWithDetails struct {
	Report
	AuthorName       string `json:"author_name"`
	OrganisationName string `json:"organisation_name"`
	FocusAreaName    string `json:"focus_area_name"`
	ProgrammeName    string `json:"programme_name"`
}

// ReviewComment is one reviewer decision recorded on a report
type ReviewComment struct {
	ReviewerID   int64        `json:"reviewer_id"`
	ReviewerRole string       `json:"reviewer_role"`
	Action       ReviewAction `json:"action"`
	Stage        Stage        `json:"stage"`
	Comment      string       `json:"comment"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ReviewComments is the JSONB-backed, append-only list of review decisions
type ReviewComments []ReviewComment

// Value implements driver.Valuer. JSON is sent as text so lib/pq does not encode it as bytea.
func (c ReviewComments) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (c *ReviewComments) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = ReviewComments{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for review comments: %T", src)
	}
	var out ReviewComments
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode review comments: %w", err)
	}
	if out == nil {
		out = ReviewComments{}
	}
	*c = out
	return nil
}

// ReportFilter narrows report listings
type ReportFilter struct {
	UserID         *int64
	OrganisationID *int64
	FocusAreaID    *int64
	Status         *Status
	Stage          *Stage
}

// ReportContentUpdate holds the content fields a caller may change after creation.
// Nil fields are left untouched.
type ReportContentUpdate struct {
	FocusAreaID *int64
	ProgrammeID *int64
	StrategyIDs *[]int64
	Description *string
	Target      *string
	Period      *string
	Comments    *string
}

// ReviewOutcome is the result of a review decision applied to a report
type ReviewOutcome struct {
	Status  Status
	Stage   Stage
	Comment ReviewComment
}
