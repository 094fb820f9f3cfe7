// Package sweep implements the periodic batch pass that catches up entity
// statuses missed by per-request reconciliation. It applies the same state
// transitions as the reconcilers but as bulk updates, and it never emits
// notifications.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/collab-api/internal/config"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/store"
)

// Summary reports what a sweep run did, or in dry-run mode, what it would
// have done. Counts are per rule; Candidates carries one identifying line
// per matched row and is populated only in dry-run mode.
type Summary struct {
	RanAt  time.Time `json:"ran_at"`
	DryRun bool      `json:"dry_run"`

	TasksMarkedOverdue       int64 `json:"tasks_marked_overdue"`
	AssignmentsMarkedOverdue int64 `json:"assignments_marked_overdue"`
	AssignmentsCompleted     int64 `json:"assignments_completed"`
	EventsStarted            int64 `json:"events_started"`
	EventsEnded              int64 `json:"events_ended"`

	Candidates []string `json:"candidates,omitempty"`
}

// Total returns the number of rows touched (or matched, in dry-run) across
// all rules.
func (s *Summary) Total() int64 {
	return s.TasksMarkedOverdue +
		s.AssignmentsMarkedOverdue +
		s.AssignmentsCompleted +
		s.EventsStarted +
		s.EventsEnded
}

// Sweeper runs the batch status rules. Each rule is independent: a store
// failure in one rule is logged and the remaining rules still run.
type Sweeper struct {
	tasks       store.TaskStore
	assignments store.AssignmentStore
	events      store.EventStore
	cutoffHour  int
	logger      *slog.Logger
}

// NewSweeper creates a Sweeper. cfg.OverdueCutoffHour is the hour of day
// before which tasks due today are left alone.
func NewSweeper(
	tasks store.TaskStore,
	assignments store.AssignmentStore,
	events store.EventStore,
	cfg config.SweepConfig,
	logger *slog.Logger,
) (*Sweeper, error) {
	if tasks == nil {
		return nil, fmt.Errorf("tasks cannot be nil")
	}
	if assignments == nil {
		return nil, fmt.Errorf("assignments cannot be nil")
	}
	if events == nil {
		return nil, fmt.Errorf("events cannot be nil")
	}
	if cfg.OverdueCutoffHour < 0 || cfg.OverdueCutoffHour > 23 {
		return nil, fmt.Errorf("overdue cutoff hour must be between 0 and 23, got %d", cfg.OverdueCutoffHour)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		tasks:       tasks,
		assignments: assignments,
		events:      events,
		cutoffHour:  cfg.OverdueCutoffHour,
		logger:      logger.With("component", "sweeper"),
	}, nil
}

// Run executes every sweep rule against the given instant. In dry-run mode
// no writes happen; the summary instead reports the rows each rule matched.
// If any rule fails, Run finishes the remaining rules and returns the first
// error alongside the partial summary.
func (s *Sweeper) Run(ctx context.Context, now time.Time, dryRun bool) (*Summary, error) {
	// Date and hour arithmetic both happen in UTC, matching the
	// midnight-UTC precision of stored due dates. Callers may pass
	// server-local time.
	now = now.UTC()
	summary := &Summary{RanAt: now, DryRun: dryRun}

	day := domain.DateOf(now)
	includeToday := now.Hour() >= s.cutoffHour

	var firstErr error
	record := func(rule string, err error) {
		s.logger.Error("sweep rule failed", "rule", rule, "error", err)
		if firstErr == nil {
			firstErr = fmt.Errorf("sweep rule %s: %w", rule, err)
		}
	}

	if err := s.sweepOverdueTasks(ctx, summary, day, includeToday, dryRun); err != nil {
		record("overdue_tasks", err)
	}
	if err := s.sweepOverdueAssignments(ctx, summary, day, dryRun); err != nil {
		record("overdue_assignments", err)
	}
	if err := s.sweepCompletedAssignments(ctx, summary, now, dryRun); err != nil {
		record("complete_assignments", err)
	}
	if err := s.sweepStartedEvents(ctx, summary, now, dryRun); err != nil {
		record("start_events", err)
	}
	if err := s.sweepEndedEvents(ctx, summary, now, dryRun); err != nil {
		record("end_events", err)
	}

	s.logger.Info("sweep finished",
		"dry_run", dryRun,
		"total", summary.Total(),
		"tasks_overdue", summary.TasksMarkedOverdue,
		"assignments_overdue", summary.AssignmentsMarkedOverdue,
		"assignments_completed", summary.AssignmentsCompleted,
		"events_started", summary.EventsStarted,
		"events_ended", summary.EventsEnded)

	return summary, firstErr
}

func (s *Sweeper) sweepOverdueTasks(
	ctx context.Context,
	summary *Summary,
	day time.Time,
	includeToday, dryRun bool,
) error {
	if dryRun {
		tasks, err := s.tasks.FindSweepOverdueCandidates(ctx, day, includeToday)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			summary.Candidates = append(summary.Candidates,
				fmt.Sprintf("task %s %q due %s would become overdue",
					task.ID, task.Title, task.DueDate.Format("2006-01-02")))
		}
		summary.TasksMarkedOverdue = int64(len(tasks))
		return nil
	}

	count, err := s.tasks.MarkOverdueWhereDue(ctx, day, includeToday)
	if err != nil {
		return err
	}
	summary.TasksMarkedOverdue = count
	return nil
}

func (s *Sweeper) sweepOverdueAssignments(
	ctx context.Context,
	summary *Summary,
	day time.Time,
	dryRun bool,
) error {
	if dryRun {
		assignments, err := s.assignments.FindSweepOverdueCandidates(ctx, day)
		if err != nil {
			return err
		}
		for _, assignment := range assignments {
			summary.Candidates = append(summary.Candidates,
				fmt.Sprintf("assignment %s (task %s, user %s) would become overdue",
					assignment.ID, assignment.TaskID, assignment.UserID))
		}
		summary.AssignmentsMarkedOverdue = int64(len(assignments))
		return nil
	}

	count, err := s.assignments.MarkOverdueForLapsedTasks(ctx, day)
	if err != nil {
		return err
	}
	summary.AssignmentsMarkedOverdue = count
	return nil
}

func (s *Sweeper) sweepCompletedAssignments(
	ctx context.Context,
	summary *Summary,
	now time.Time,
	dryRun bool,
) error {
	if dryRun {
		assignments, err := s.assignments.FindSweepCompletionCandidates(ctx)
		if err != nil {
			return err
		}
		for _, assignment := range assignments {
			summary.Candidates = append(summary.Candidates,
				fmt.Sprintf("assignment %s (task %s, user %s) would become completed",
					assignment.ID, assignment.TaskID, assignment.UserID))
		}
		summary.AssignmentsCompleted = int64(len(assignments))
		return nil
	}

	count, err := s.assignments.CompleteForCompletedTasks(ctx, now.UTC())
	if err != nil {
		return err
	}
	summary.AssignmentsCompleted = count
	return nil
}

func (s *Sweeper) sweepStartedEvents(
	ctx context.Context,
	summary *Summary,
	now time.Time,
	dryRun bool,
) error {
	if dryRun {
		events, err := s.events.FindSweepStartCandidates(ctx, now)
		if err != nil {
			return err
		}
		for _, event := range events {
			summary.Candidates = append(summary.Candidates,
				fmt.Sprintf("event %s %q would become ongoing", event.ID, event.Title))
		}
		summary.EventsStarted = int64(len(events))
		return nil
	}

	count, err := s.events.MarkOngoingWhereStarted(ctx, now)
	if err != nil {
		return err
	}
	summary.EventsStarted = count
	return nil
}

func (s *Sweeper) sweepEndedEvents(
	ctx context.Context,
	summary *Summary,
	now time.Time,
	dryRun bool,
) error {
	if dryRun {
		events, err := s.events.FindSweepEndCandidates(ctx, now)
		if err != nil {
			return err
		}
		for _, event := range events {
			summary.Candidates = append(summary.Candidates,
				fmt.Sprintf("event %s %q would become ended", event.ID, event.Title))
		}
		summary.EventsEnded = int64(len(events))
		return nil
	}

	count, err := s.events.MarkEndedWherePast(ctx, now)
	if err != nil {
		return err
	}
	summary.EventsEnded = count
	return nil
}
