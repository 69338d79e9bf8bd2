package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"me-platform/internal/config"
	"me-platform/internal/models"
	"me-platform/internal/service"
)

const taskTimeout = 5 * time.Minute

// PendingSource lists reports that still wait for a review decision
type PendingSource interface {
	ListPending(ctx context.Context) ([]models.PendingReview, error)
}

// ReviewerSource lists active users holding a role
type ReviewerSource interface {
	ListActiveByRole(ctx context.Context, role models.RoleID) ([]models.User, error)
}

// SessionCleaner removes expired sessions
type SessionCleaner interface {
	CleanupSessions(ctx context.Context) (int64, error)
}

// Scheduler handles periodic tasks
type Scheduler struct {
	reports  PendingSource
	users    ReviewerSource
	sessions SessionCleaner
	notifier service.Notifier
	audit    *service.AuditService
	config   *config.SchedulerConfig
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler(
	reports PendingSource,
	users ReviewerSource,
	sessions SessionCleaner,
	notifier service.Notifier,
	audit *service.AuditService,
	cfg *config.SchedulerConfig,
) *Scheduler {
	return &Scheduler{
		reports:  reports,
		users:    users,
		sessions: sessions,
		notifier: notifier,
		audit:    audit,
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler",
		"reviewer_summary_enabled", s.config.EnableReviewerSummary,
		"reviewer_summary_cron", s.config.ReviewerSummaryCron,
		"session_cleanup_cron", s.config.SessionCleanupCron)

	if s.config.EnableReviewerSummary {
		if err := s.startCronTask(s.config.ReviewerSummaryCron, "reviewer_summaries", s.SendReviewerSummaries); err != nil {
			slog.Error("Failed to start reviewer summaries", "error", err)
		}
	}

	if s.config.SessionCleanupCron != "" {
		if err := s.startCronTask(s.config.SessionCleanupCron, "session_cleanup", s.CleanupSessions); err != nil {
			slog.Error("Failed to start session cleanup", "error", err)
		}
	}

	slog.Info("Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	close(s.stopChan)
}

type scheduleKind int

const (
	everyMinutes scheduleKind = iota
	everyHours
	daily
	weekly
)

// schedule is a parsed cron expression
type schedule struct {
	kind     scheduleKind
	interval int
	minute   int
	hour     int
	weekday  time.Weekday
}

// parseCron parses the supported subset of "minute hour day month weekday":
// "*/n * * * *", "m */n * * *", "m h * * *" and "m h * * d" (0=Sunday).
func parseCron(expr string) (schedule, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return schedule{}, fmt.Errorf("invalid cron expression: %s (expected 5 fields)", expr)
	}

	if strings.HasPrefix(parts[0], "*/") {
		interval, err := strconv.Atoi(parts[0][2:])
		if err != nil || interval < 1 || interval > 59 {
			return schedule{}, fmt.Errorf("invalid minute interval in cron: %s", parts[0])
		}
		return schedule{kind: everyMinutes, interval: interval}, nil
	}

	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return schedule{}, fmt.Errorf("invalid minute in cron: %s", parts[0])
	}

	if strings.HasPrefix(parts[1], "*/") {
		interval, err := strconv.Atoi(parts[1][2:])
		if err != nil || interval < 1 || interval > 23 {
			return schedule{}, fmt.Errorf("invalid hour interval in cron: %s", parts[1])
		}
		return schedule{kind: everyHours, interval: interval, minute: minute}, nil
	}

	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return schedule{}, fmt.Errorf("invalid hour in cron: %s", parts[1])
	}

	if parts[4] == "*" {
		return schedule{kind: daily, minute: minute, hour: hour}, nil
	}
	weekday, err := strconv.Atoi(parts[4])
	if err != nil || weekday < 0 || weekday > 6 {
		return schedule{}, fmt.Errorf("invalid weekday in cron: %s (0-6, 0=Sunday)", parts[4])
	}
	return schedule{kind: weekly, minute: minute, hour: hour, weekday: time.Weekday(weekday)}, nil
}

// next returns the first run strictly after from
func (sc schedule) next(from time.Time) time.Time {
	switch sc.kind {
	case everyMinutes:
		return from.Add(time.Duration(sc.interval) * time.Minute)
	case everyHours:
		return nextHourlyInterval(from, sc.interval, sc.minute)
	case weekly:
		return nextWeekday(from, sc.weekday, sc.hour, sc.minute)
	default:
		return nextDailyRun(from, sc.hour, sc.minute)
	}
}

// startCronTask parses a cron expression and starts the task
func (s *Scheduler) startCronTask(cronExpr, taskName string, task func(context.Context)) error {
	sc, err := parseCron(cronExpr)
	if err != nil {
		return err
	}
	go s.run(sc, taskName, task)
	return nil
}

func (s *Scheduler) run(sc schedule, taskName string, task func(context.Context)) {
	if sc.kind == everyMinutes {
		// interval tasks run once on start
		s.runOnce(taskName, task)
	}

	for {
		now := time.Now()
		next := sc.next(now)

		slog.Info("Next task run scheduled", "task", taskName, "next_run", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			s.runOnce(taskName, task)
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) runOnce(taskName string, task func(context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()
	slog.Info("Running scheduled task", "task", taskName)
	task(ctx)
}

// nextHourlyInterval calculates the next run time for hourly intervals
func nextHourlyInterval(from time.Time, hourInterval, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), from.Hour(), minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.Add(time.Hour)
	}
	for next.Hour()%hourInterval != 0 {
		next = next.Add(time.Hour)
	}
	return next
}

// nextWeekday calculates the next occurrence of a specific weekday and time
func nextWeekday(from time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	daysUntil := int(weekday - from.Weekday())
	if daysUntil < 0 {
		daysUntil += 7
	}
	next = next.AddDate(0, 0, daysUntil)

	// already passed today
	if !next.After(from) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// nextDailyRun calculates the next daily run time
func nextDailyRun(from time.Time, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// SendReviewerSummaries e-mails every active reviewer the reports awaiting
// review. Nothing is sent when no report is pending.
func (s *Scheduler) SendReviewerSummaries(ctx context.Context) {
	slog.Info("Sending reviewer summaries")

	pending, err := s.reports.ListPending(ctx)
	if err != nil {
		slog.Error("Failed to list pending reports", "error", err)
		return
	}
	if len(pending) == 0 {
		slog.Info("No reports awaiting review")
		return
	}

	reviewers, err := s.users.ListActiveByRole(ctx, models.RoleNPC)
	if err != nil {
		slog.Error("Failed to get reviewers", "error", err)
		return
	}

	summariesSent := 0
	for _, reviewer := range reviewers {
		if reviewer.Email == nil || *reviewer.Email == "" {
			continue
		}
		if err := s.notifier.SendReviewerSummary(*reviewer.Email, reviewer.FullName, pending); err != nil {
			slog.Error("Failed to send reviewer summary", "reviewer_id", reviewer.ID, "error", err)
			continue
		}
		summariesSent++
	}

	slog.Info("Reviewer summaries completed", "summaries_sent", summariesSent, "total_items", len(pending))

	if s.audit != nil && summariesSent > 0 {
		s.audit.Log(ctx, nil, service.AuditSummarySent, "reports",
			fmt.Sprintf("sent %d summaries covering %d reports", summariesSent, len(pending)),
			service.ClientInfo{UserAgent: "scheduler"})
	}
}

// CleanupSessions deletes expired sessions
func (s *Scheduler) CleanupSessions(ctx context.Context) {
	n, err := s.sessions.CleanupSessions(ctx)
	if err != nil {
		slog.Error("Failed to clean up sessions", "error", err)
		return
	}
	slog.Info("Expired sessions removed", "count", n)
}
