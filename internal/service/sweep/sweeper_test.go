package sweep

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/collab-api/internal/config"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/store"
)

// --- in-memory stores ---
//
// The fakes apply the same filters the SQL stores express so the rules can
// be exercised without a database. CRUD methods outside the sweep surface
// are stubbed minimally.

type memTaskStore struct {
	tasks   map[uuid.UUID]*domain.Task
	findErr error
	markErr error
}

var _ store.TaskStore = (*memTaskStore)(nil)

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *memTaskStore) Create(_ context.Context, task *domain.Task) error {
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *memTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *memTaskStore) ListByOwner(_ context.Context, _ uuid.UUID) ([]*domain.Task, error) {
	return nil, nil
}

func (s *memTaskStore) Update(_ context.Context, task *domain.Task) error {
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *memTaskStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TaskStatus) error {
	task, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) overdueMatch(task *domain.Task, day time.Time, includeToday bool) bool {
	if task.Status != domain.TaskStatusPending || task.DueDate == nil {
		return false
	}
	due := domain.DateOf(*task.DueDate)
	if includeToday {
		return !due.After(domain.DateOf(day))
	}
	return due.Before(domain.DateOf(day))
}

func (s *memTaskStore) FindSweepOverdueCandidates(
	_ context.Context,
	day time.Time,
	includeToday bool,
) ([]*domain.Task, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []*domain.Task
	for _, task := range s.tasks {
		if s.overdueMatch(task, day, includeToday) {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memTaskStore) MarkOverdueWhereDue(
	_ context.Context,
	day time.Time,
	includeToday bool,
) (int64, error) {
	if s.markErr != nil {
		return 0, s.markErr
	}
	var count int64
	for _, task := range s.tasks {
		if s.overdueMatch(task, day, includeToday) {
			task.Status = domain.TaskStatusOverdue
			count++
		}
	}
	return count, nil
}

func (s *memTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return s }

type memAssignmentStore struct {
	parent      *memTaskStore
	assignments map[uuid.UUID]*domain.Assignment
}

var _ store.AssignmentStore = (*memAssignmentStore)(nil)

func newMemAssignmentStore(parent *memTaskStore) *memAssignmentStore {
	return &memAssignmentStore{
		parent:      parent,
		assignments: make(map[uuid.UUID]*domain.Assignment),
	}
}

func (s *memAssignmentStore) Create(_ context.Context, assignment *domain.Assignment) error {
	copied := *assignment
	s.assignments[assignment.ID] = &copied
	return nil
}

func (s *memAssignmentStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Assignment, error) {
	assignment, ok := s.assignments[id]
	if !ok {
		return nil, store.ErrAssignmentNotFound
	}
	copied := *assignment
	return &copied, nil
}

func (s *memAssignmentStore) ListByTask(_ context.Context, _ uuid.UUID) ([]*domain.Assignment, error) {
	return nil, nil
}

func (s *memAssignmentStore) ListByUser(_ context.Context, _ uuid.UUID) ([]*domain.Assignment, error) {
	return nil, nil
}

func (s *memAssignmentStore) Update(_ context.Context, assignment *domain.Assignment) error {
	copied := *assignment
	s.assignments[assignment.ID] = &copied
	return nil
}

func (s *memAssignmentStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.assignments, id)
	return nil
}

func (s *memAssignmentStore) lapsedMatch(assignment *domain.Assignment, day time.Time) bool {
	if assignment.Status != domain.AssignmentStatusPending {
		return false
	}
	task, ok := s.parent.tasks[assignment.TaskID]
	if !ok || task.Status == domain.TaskStatusComplete {
		return false
	}
	return task.IsDueBefore(day)
}

func (s *memAssignmentStore) FindSweepOverdueCandidates(
	_ context.Context,
	day time.Time,
) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, assignment := range s.assignments {
		if s.lapsedMatch(assignment, day) {
			copied := *assignment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memAssignmentStore) MarkOverdueForLapsedTasks(
	_ context.Context,
	day time.Time,
) (int64, error) {
	var count int64
	for _, assignment := range s.assignments {
		if s.lapsedMatch(assignment, day) {
			assignment.Status = domain.AssignmentStatusOverdue
			count++
		}
	}
	return count, nil
}

func (s *memAssignmentStore) completionMatch(assignment *domain.Assignment) bool {
	if assignment.Status != domain.AssignmentStatusPending {
		return false
	}
	task, ok := s.parent.tasks[assignment.TaskID]
	return ok && task.Status == domain.TaskStatusComplete
}

func (s *memAssignmentStore) FindSweepCompletionCandidates(
	_ context.Context,
) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, assignment := range s.assignments {
		if s.completionMatch(assignment) {
			copied := *assignment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memAssignmentStore) CompleteForCompletedTasks(
	_ context.Context,
	completedAt time.Time,
) (int64, error) {
	var count int64
	for _, assignment := range s.assignments {
		if s.completionMatch(assignment) {
			assignment.Status = domain.AssignmentStatusCompleted
			stamped := completedAt
			assignment.CompletedAt = &stamped
			count++
		}
	}
	return count, nil
}

func (s *memAssignmentStore) WithTx(_ *sql.Tx) store.AssignmentStore { return s }

type memEventStore struct {
	events map[uuid.UUID]*domain.Event
}

var _ store.EventStore = (*memEventStore)(nil)

func newMemEventStore() *memEventStore {
	return &memEventStore{events: make(map[uuid.UUID]*domain.Event)}
}

func (s *memEventStore) Create(_ context.Context, event *domain.Event) error {
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *memEventStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, store.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (s *memEventStore) ListByHost(_ context.Context, _ uuid.UUID) ([]*domain.Event, error) {
	return nil, nil
}

func (s *memEventStore) Update(_ context.Context, event *domain.Event) error {
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *memEventStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.EventStatus) error {
	event, ok := s.events[id]
	if !ok {
		return store.ErrEventNotFound
	}
	event.Status = status
	return nil
}

func (s *memEventStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.events, id)
	return nil
}

func (s *memEventStore) startMatch(event *domain.Event, now time.Time) bool {
	return event.Status == domain.EventStatusUpcoming &&
		!event.StartTime.After(now) && event.EndTime.After(now)
}

func (s *memEventStore) FindSweepStartCandidates(
	_ context.Context,
	now time.Time,
) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, event := range s.events {
		if s.startMatch(event, now) {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memEventStore) MarkOngoingWhereStarted(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, event := range s.events {
		if s.startMatch(event, now) {
			event.Status = domain.EventStatusOngoing
			count++
		}
	}
	return count, nil
}

func (s *memEventStore) endMatch(event *domain.Event, now time.Time) bool {
	if event.Status != domain.EventStatusUpcoming && event.Status != domain.EventStatusOngoing {
		return false
	}
	return event.EndTime.Before(now)
}

func (s *memEventStore) FindSweepEndCandidates(
	_ context.Context,
	now time.Time,
) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, event := range s.events {
		if s.endMatch(event, now) {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memEventStore) MarkEndedWherePast(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, event := range s.events {
		if s.endMatch(event, now) {
			event.Status = domain.EventStatusEnded
			count++
		}
	}
	return count, nil
}

func (s *memEventStore) WithTx(_ *sql.Tx) store.EventStore { return s }

// --- fixtures ---

type sweepFixture struct {
	tasks       *memTaskStore
	assignments *memAssignmentStore
	events      *memEventStore
	sweeper     *Sweeper
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	tasks := newMemTaskStore()
	assignments := newMemAssignmentStore(tasks)
	events := newMemEventStore()

	sweeper, err := NewSweeper(tasks, assignments, events, config.SweepConfig{
		IntervalSeconds:   60,
		RunTimeoutSeconds: 30,
		OverdueCutoffHour: 23,
	}, nil)
	require.NoError(t, err)

	return &sweepFixture{
		tasks:       tasks,
		assignments: assignments,
		events:      events,
		sweeper:     sweeper,
	}
}

func (f *sweepFixture) seedTask(t *testing.T, due time.Time, status domain.TaskStatus) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(nil, "quarterly report", "", &due)
	require.NoError(t, err)
	task.Status = status
	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task
}

func (f *sweepFixture) seedAssignment(
	t *testing.T,
	taskID uuid.UUID,
	status domain.AssignmentStatus,
) *domain.Assignment {
	t.Helper()
	assignment, err := domain.NewAssignment(taskID, uuid.New(), nil)
	require.NoError(t, err)
	assignment.Status = status
	require.NoError(t, f.assignments.Create(context.Background(), assignment))
	return assignment
}

func (f *sweepFixture) seedEvent(
	t *testing.T,
	start, end time.Time,
	status domain.EventStatus,
) *domain.Event {
	t.Helper()
	host := uuid.New()
	event, err := domain.NewEvent(&host, "standup", "", start, end)
	require.NoError(t, err)
	event.Status = status
	require.NoError(t, f.events.Create(context.Background(), event))
	return event
}

// --- tests ---

func TestSweep_TaskDueTodayRespectsCutoffHour(t *testing.T) {
	t.Parallel()

	f := newSweepFixture(t)
	today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	task := f.seedTask(t, today, domain.TaskStatusPending)

	// Mid-morning the task due today still has the rest of the day.
	morning := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	summary, err := f.sweeper.Run(context.Background(), morning, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TasksMarkedOverdue)

	got, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, got.Status)

	// At the cutoff hour the grace window closes.
	lateEvening := time.Date(2024, 5, 20, 23, 5, 0, 0, time.UTC)
	summary, err = f.sweeper.Run(context.Background(), lateEvening, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TasksMarkedOverdue)

	got, err = f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusOverdue, got.Status)
}

func TestSweep_CutoffHourEvaluatedInUTCForLocalTime(t *testing.T) {
	t.Parallel()

	f := newSweepFixture(t)
	today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	task := f.seedTask(t, today, domain.TaskStatusPending)

	// 06:30 on May 21 in UTC+7 is 23:30 UTC on May 20: past the cutoff for
	// the due date, even though the local clock reads early morning of the
	// next day.
	bangkok := time.FixedZone("UTC+7", 7*60*60)
	localMorning := time.Date(2024, 5, 21, 6, 30, 0, 0, bangkok)

	summary, err := f.sweeper.Run(context.Background(), localMorning, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TasksMarkedOverdue)

	got, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusOverdue, got.Status)
}

func TestSweep_TaskDueYesterdayIsOverdueRegardlessOfHour(t *testing.T) {
	t.Parallel()

	f := newSweepFixture(t)
	yesterday := time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC)
	task := f.seedTask(t, yesterday, domain.TaskStatusPending)

	earlyMorning := time.Date(2024, 5, 20, 1, 0, 0, 0, time.UTC)
	summary, err := f.sweeper.Run(context.Background(), earlyMorning, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TasksMarkedOverdue)

	got, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusOverdue, got.Status)
}

func TestSweep_AssignmentsFollowParentTask(t *testing.T) {
	t.Parallel()

	f := newSweepFixture(t)
	yesterday := time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC)

	lapsedTask := f.seedTask(t, yesterday, domain.TaskStatusPending)
	lapsed := f.seedAssignment(t, lapsedTask.ID, domain.AssignmentStatusPending)
	rejected := f.seedAssignment(t, lapsedTask.ID, domain.AssignmentStatusRejected)

	doneTask := f.seedTask(t, yesterday, domain.TaskStatusComplete)
	straggler := f.seedAssignment(t, doneTask.ID, domain.AssignmentStatusPending)

	now := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	summary, err := f.sweeper.Run(context.Background(), now, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.AssignmentsMarkedOverdue)
	assert.Equal(t, int64(1), summary.AssignmentsCompleted)

	got, err := f.assignments.GetByID(context.Background(), lapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusOverdue, got.Status)

	got, err = f.assignments.GetByID(context.Background(), rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusRejected, got.Status)

	got, err = f.assignments.GetByID(context.Background(), straggler.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(now))
}

func TestSweep_EventsTransitionByWindow(t *testing.T) {
	t.Parallel()

	f := newSweepFixture(t)
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	inWindow := f.seedEvent(t, now.Add(-time.Hour), now.Add(time.Hour), domain.EventStatusUpcoming)
	past := f.seedEvent(t, now.Add(-3*time.Hour), now.Add(-time.Hour), domain.EventStatusOngoing)
	future := f.seedEvent(t, now.Add(time.Hour), now.Add(2*time.Hour), domain.EventStatusUpcoming)

	summary, err := f.sweeper.Run(context.Background(), now, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.EventsStarted)
	assert.Equal(t, int64(1), summary.EventsEnded)

	got, err := f.events.GetByID(context.Background(), inWindow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusOngoing, got.Status)

	got, err = f.events.GetByID(context.Background(), past.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusEnded, got.Status)

	got, err = f.events.GetByID(context.Background(), future.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusUpcoming, got.Status)
}

func TestSweep_DryRunReportsWithoutWriting(t *testing.T) {
	t.Parallel()

	f := newSweepFixture(t)
	yesterday := time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC)
	task := f.seedTask(t, yesterday, domain.TaskStatusPending)
	f.seedAssignment(t, task.ID, domain.AssignmentStatusPending)

	now := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	summary, err := f.sweeper.Run(context.Background(), now, true)
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, int64(1), summary.TasksMarkedOverdue)
	assert.Equal(t, int64(1), summary.AssignmentsMarkedOverdue)
	assert.Len(t, summary.Candidates, 2)
	assert.Contains(t, summary.Candidates[0], task.ID.String())

	// Nothing actually changed.
	got, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, got.Status)
}

func TestSweep_RuleFailureDoesNotStopRemainingRules(t *testing.T) {
	t.Parallel()

	f := newSweepFixture(t)
	f.tasks.markErr = errors.New("connection reset")

	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	f.seedEvent(t, now.Add(-time.Hour), now.Add(time.Hour), domain.EventStatusUpcoming)

	summary, err := f.sweeper.Run(context.Background(), now, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overdue_tasks")

	// Later rules still ran against the partial summary.
	require.NotNil(t, summary)
	assert.Equal(t, int64(1), summary.EventsStarted)
}
