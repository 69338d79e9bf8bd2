// Package workflow holds the report review state machine.
//
// Reviews move a report through planning, execution, monitoring and closure.
// An approval advances the stage; a rejection keeps the report at the reviewed
// stage with status rejected. Approving at closure closes the report.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"me-platform/internal/models"
)

type (
	Stage  = models.Stage
	Status = models.Status
	Action = models.ReviewAction
)

var (
	ErrInvalidAction = errors.New("invalid review action")
	ErrInvalidStage  = errors.New("invalid review stage")
	ErrStageMismatch = errors.New("review stage does not match the report's current stage")
	ErrReportClosed  = errors.New("report is closed")
)

// Decision is the computed result of applying a review action
type Decision struct {
	Status Status
	Stage  Stage
	// ReviewedStage is the stage the action was evaluated against and is the
	// stage recorded on the review comment.
	ReviewedStage Stage
}

type row struct {
	approveStatus Status
	approveStage  Stage
}

var table = map[Stage]row{
	models.StagePlanning:   {models.StatusPlanningApproved, models.StageExecution},
	models.StageExecution:  {models.StatusExecutionApproved, models.StageMonitoring},
	models.StageMonitoring: {models.StatusMonitoringApproved, models.StageClosure},
	models.StageClosure:    {models.StatusClosed, models.StageClosed},
}

// ReviewStages lists the stages a reviewer can act on, in workflow order
var ReviewStages = []Stage{
	models.StagePlanning,
	models.StageExecution,
	models.StageMonitoring,
	models.StageClosure,
}

// ParseAction normalises and validates a review action
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case models.ActionApprove, models.ActionReject:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// ParseReviewStage validates a stage that can be reviewed. closed is not one of them.
func ParseReviewStage(s string) (Stage, error) {
	st := Stage(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := table[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
	}
	return st, nil
}

// Transition returns the status and next stage for an action taken at stage
func Transition(stage Stage, action Action) (Status, Stage, error) {
	r, ok := table[stage]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}
	switch action {
	case models.ActionApprove:
		return r.approveStatus, r.approveStage, nil
	case models.ActionReject:
		return models.StatusRejected, stage, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
}

// Review decides the outcome of a review on a report currently at current.
//
// In strict mode the supplied stage must match current and closed reports
// cannot be reviewed again. Otherwise the supplied stage selects the
// transition row regardless of current.
func Review(current, supplied Stage, action Action, strict bool) (Decision, error) {
	if strict {
		if current == models.StageClosed {
			return Decision{}, ErrReportClosed
		}
		if supplied != current {
			return Decision{}, fmt.Errorf("%w: report is at %q, review submitted for %q", ErrStageMismatch, current, supplied)
		}
	}
	status, next, err := Transition(supplied, action)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Status: status, Stage: next, ReviewedStage: supplied}, nil
}

// CanReview reports whether role may submit review decisions
func CanReview(role models.RoleID) bool {
	return role == models.RoleAdmin || role == models.RoleNPC
}

// Report content fields that can be edited after creation
const (
	FieldFocusArea   = "focus_area_id"
	FieldProgramme   = "programme_id"
	FieldStrategies  = "strategies"
	FieldDescription = "description"
	FieldTarget      = "target"
	FieldPeriod      = "period"
	FieldComments    = "comments"
)

var allFields = []string{
	FieldFocusArea, FieldProgramme, FieldStrategies,
	FieldDescription, FieldTarget, FieldPeriod, FieldComments,
}

var omaFields = []string{FieldDescription, FieldTarget, FieldComments}

// EditableFields returns the report fields role may change. NPC reviewers get none.
func EditableFields(role models.RoleID) []string {
	switch role {
	case models.RoleAdmin:
		return append([]string(nil), allFields...)
	case models.RoleOMA:
		return append([]string(nil), omaFields...)
	default:
		return nil
	}
}

// CanEditField reports whether role may change field
func CanEditField(role models.RoleID, field string) bool {
	for _, f := range EditableFields(role) {
		if f == field {
			return true
		}
	}
	return false
}

// IsPending reports whether a report in this state is waiting on a reviewer
func IsPending(status Status, stage Stage) bool {
	return stage != models.StageClosed && status != models.StatusClosed
}
