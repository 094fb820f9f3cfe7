package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/collab-api/internal/domain"
)

// assignmentServiceFixture wires an AssignmentService on top of the task
// service fixture so the completion cascade can be observed end to end.
type assignmentServiceFixture struct {
	*taskServiceFixture
	service AssignmentService
}

func newAssignmentServiceFixture(t *testing.T) *assignmentServiceFixture {
	t.Helper()

	base := newTaskServiceFixture(t)

	svc, err := NewAssignmentService(base.assignments, base.tasks, base.service, base.notifier, nil)
	require.NoError(t, err)

	return &assignmentServiceFixture{
		taskServiceFixture: base,
		service:            svc,
	}
}

func TestComplete_NonAssigneeForbidden(t *testing.T) {
	t.Parallel()

	f := newAssignmentServiceFixture(t)
	owner := f.seedUser(t, "owner")
	assignee := f.seedUser(t, "assignee")
	stranger := f.seedUser(t, "stranger")
	task := f.seedTask(t, owner.ID, nil)
	assignment := f.seedAssignment(t, task.ID, assignee.ID, domain.AssignmentStatusPending)

	_, err := f.service.Complete(context.Background(), assignment.ID, stranger.ID, time.Now())
	assert.ErrorIs(t, err, ErrForbidden)

	// No mutation attempted.
	stored, getErr := f.assignments.GetByID(context.Background(), assignment.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.AssignmentStatusPending, stored.Status)
	assert.Empty(t, f.notifier.sent)
}

func TestComplete_CascadesIntoTaskCompletion(t *testing.T) {
	t.Parallel()

	f := newAssignmentServiceFixture(t)
	owner := f.seedUser(t, "owner")
	assignee := f.seedUser(t, "assignee")
	task := f.seedTask(t, owner.ID, nil)
	assignment := f.seedAssignment(t, task.ID, assignee.ID, domain.AssignmentStatusPending)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	completed, err := f.service.Complete(context.Background(), assignment.ID, assignee.ID, now)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, now, *completed.CompletedAt)

	// Step one of the cascade: the assignee is told about their own work.
	done := f.notifier.ofType(domain.NotificationAssignmentCompleted)
	require.Len(t, done, 1)
	assert.Equal(t, assignee.ID, done[0].UserID)
	assert.Equal(t,
		fmt.Sprintf("You have completed your assignment on task %s.", task.Title),
		done[0].Message)

	// Step two: the reconciler ran and flipped the parent to complete.
	parent, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusComplete, parent.Status)

	finished := f.notifier.ofType(domain.NotificationTaskCompleted)
	require.Len(t, finished, 1)
	assert.Equal(t, owner.ID, finished[0].UserID)
}

func TestComplete_AlreadyCompletedIsNoOp(t *testing.T) {
	t.Parallel()

	f := newAssignmentServiceFixture(t)
	owner := f.seedUser(t, "owner")
	assignee := f.seedUser(t, "assignee")
	task := f.seedTask(t, owner.ID, nil)
	assignment := f.seedAssignment(t, task.ID, assignee.ID, domain.AssignmentStatusCompleted)

	_, err := f.service.Complete(context.Background(), assignment.ID, assignee.ID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)
}

func TestComplete_PartialProgressLeavesTaskPending(t *testing.T) {
	t.Parallel()

	f := newAssignmentServiceFixture(t)
	owner := f.seedUser(t, "owner")
	a := f.seedUser(t, "a")
	b := f.seedUser(t, "b")
	task := f.seedTask(t, owner.ID, nil)
	first := f.seedAssignment(t, task.ID, a.ID, domain.AssignmentStatusPending)
	f.seedAssignment(t, task.ID, b.ID, domain.AssignmentStatusPending)

	_, err := f.service.Complete(context.Background(), first.ID, a.ID, time.Now())
	require.NoError(t, err)

	parent, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, parent.Status)
	assert.Empty(t, f.notifier.ofType(domain.NotificationTaskCompleted))

	// The reconciler still reminded the remaining assignee.
	reminders := f.notifier.ofType(domain.NotificationTaskDue)
	require.Len(t, reminders, 1)
	assert.Equal(t, b.ID, reminders[0].UserID)
}

func TestAssignmentCreate_DuplicateRejected(t *testing.T) {
	t.Parallel()

	f := newAssignmentServiceFixture(t)
	owner := f.seedUser(t, "owner")
	assignee := f.seedUser(t, "assignee")
	task := f.seedTask(t, owner.ID, nil)

	_, err := f.service.Create(context.Background(), task.ID, assignee.ID, owner.ID)
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), task.ID, assignee.ID, owner.ID)
	assert.ErrorIs(t, err, ErrDuplicateAssignment)
}

func TestAssignmentCreate_UnknownTask(t *testing.T) {
	t.Parallel()

	f := newAssignmentServiceFixture(t)
	assignee := f.seedUser(t, "assignee")

	_, err := f.service.Create(context.Background(), uuid.New(), assignee.ID, assignee.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
