package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/store"
)

// dueDateLayout renders task due dates in notification messages.
const dueDateLayout = "2006-01-02"

// CreateTaskInput carries the fields for creating a task along with the
// users to assign to it.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	AssigneeIDs []uuid.UUID
}

// UpdateTaskInput carries the patchable task fields. Nil fields are left
// unchanged. Status is absent on purpose: it is derived by RefreshStatus
// and the sweeper, never written directly.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
}

// TaskService provides task operations, including the status reconciler
// that re-derives a task's status from its assignments.
type TaskService interface {
	// Create creates a task owned by ownerID and an assignment for each
	// listed assignee, atomically.
	Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error)

	// Get retrieves a task by ID.
	Get(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// ListOwned retrieves the tasks owned by the given user, newest first.
	ListOwned(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// Update patches a task. Only the owner may update it.
	Update(ctx context.Context, taskID, actorID uuid.UUID, input UpdateTaskInput) (*domain.Task, error)

	// Delete removes a task and its assignments. Only the owner may delete it.
	Delete(ctx context.Context, taskID, actorID uuid.UUID) error

	// RefreshStatus re-derives the task's status from its assignments and
	// emits the notifications the derivation calls for. Reminder and
	// overdue notifications are re-emitted on every call; the completion
	// notification fires only on the transition to complete.
	RefreshStatus(ctx context.Context, taskID uuid.UUID, now time.Time) (*domain.Task, error)

	// SendCreatedNotifications notifies every current assignee that the
	// task was created, returning the number of notifications sent.
	SendCreatedNotifications(ctx context.Context, taskID uuid.UUID) (int, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	db          *sql.DB
	tasks       store.TaskStore
	assignments store.AssignmentStore
	users       store.UserStore
	notifier    Notifier
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	assignments store.AssignmentStore,
	users store.UserStore,
	notifier Notifier,
	logger *slog.Logger,
) (TaskService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "tasks cannot be nil"}
	}
	if assignments == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "assignments cannot be nil"}
	}
	if users == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "users cannot be nil"}
	}
	if notifier == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "notifier cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		db:          db,
		tasks:       tasks,
		assignments: assignments,
		users:       users,
		notifier:    notifier,
		logger:      logger.With("component", "task_service"),
	}, nil
}

// Create creates a task and its assignments in a single transaction.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	task, err := domain.NewTask(&ownerID, input.Title, input.Description, input.DueDate)
	if err != nil {
		s.logger.Warn("invalid task input",
			"error", err,
			"owner_id", ownerID)
		return nil, NewServiceError("create_task", "invalid task", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txAssignments := s.assignments.WithTx(tx)

		if err := txTasks.Create(ctx, task); err != nil {
			return NewServiceError("create_task", "failed to save task", err)
		}

		for _, assigneeID := range input.AssigneeIDs {
			assignment, err := domain.NewAssignment(task.ID, assigneeID, &ownerID)
			if err != nil {
				return NewServiceError("create_task", "invalid assignment", err)
			}
			if err := txAssignments.Create(ctx, assignment); err != nil {
				return NewServiceError("create_task", "failed to save assignment", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"owner_id", ownerID,
		"assignee_count", len(input.AssigneeIDs))
	return task, nil
}

// Get retrieves a task by ID.
func (s *taskServiceImpl) Get(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// ListOwned retrieves the tasks owned by the given user.
func (s *taskServiceImpl) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, NewServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// Update patches a task after verifying ownership.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	taskID, actorID uuid.UUID,
	input UpdateTaskInput,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("update_task", "failed to retrieve task", err)
	}

	if task.OwnerID == nil || *task.OwnerID != actorID {
		return nil, ErrForbidden
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		due := domain.DateOf(*input.DueDate)
		task.DueDate = &due
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, NewServiceError("update_task", "failed to save task", err)
	}

	return task, nil
}

// Delete removes a task after verifying ownership.
func (s *taskServiceImpl) Delete(ctx context.Context, taskID, actorID uuid.UUID) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return NewServiceError("delete_task", "failed to retrieve task", err)
	}

	if task.OwnerID == nil || *task.OwnerID != actorID {
		return ErrForbidden
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return NewServiceError("delete_task", "failed to delete task", err)
	}

	s.logger.Info("task deleted", "task_id", taskID, "actor_id", actorID)
	return nil
}

// RefreshStatus re-derives the task's status from its assignments.
//
// Remaining work is every assignment not completed, rejected, or removed.
// With no remaining work and at least one completed assignment the task
// becomes complete, notifying the owner on the transition only. With
// remaining work past the due date the task becomes overdue and every
// remaining assignee is notified; otherwise every remaining assignee gets a
// reminder. Overdue and reminder notifications repeat on every invocation.
func (s *taskServiceImpl) RefreshStatus(
	ctx context.Context,
	taskID uuid.UUID,
	now time.Time,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("refresh_status", "failed to retrieve task", err)
	}

	assignments, err := s.assignments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("refresh_status", "failed to list assignments", err)
	}

	remaining := make([]*domain.Assignment, 0, len(assignments))
	completed := 0
	for _, assignment := range assignments {
		if assignment.IsOutstanding() {
			remaining = append(remaining, assignment)
		} else if assignment.Status == domain.AssignmentStatusCompleted {
			completed++
		}
	}

	if len(remaining) == 0 {
		// A task with no assignments at all stays as it is: completion
		// requires at least one assignee to have actually finished.
		if completed > 0 && task.Status != domain.TaskStatusComplete {
			if err := s.tasks.UpdateStatus(ctx, taskID, domain.TaskStatusComplete); err != nil {
				return nil, NewServiceError("refresh_status", "failed to mark task complete", err)
			}
			task.Status = domain.TaskStatusComplete

			if task.OwnerID != nil {
				s.notifier.Notify(ctx, *task.OwnerID, domain.NotificationTaskCompleted,
					fmt.Sprintf("All assignees have completed the task %s.", task.Title),
					&task.ID, nil)
			}

			s.logger.Info("task reconciled to complete", "task_id", taskID)
		}
		return task, nil
	}

	if task.IsDueBefore(now) {
		if task.Status != domain.TaskStatusOverdue {
			if err := s.tasks.UpdateStatus(ctx, taskID, domain.TaskStatusOverdue); err != nil {
				return nil, NewServiceError("refresh_status", "failed to mark task overdue", err)
			}
			task.Status = domain.TaskStatusOverdue
			s.logger.Info("task reconciled to overdue", "task_id", taskID)
		}

		for _, assignment := range remaining {
			s.notifier.Notify(ctx, assignment.UserID, domain.NotificationTaskOverdue,
				fmt.Sprintf("The task %s is overdue. Please complete it.", task.Title),
				&task.ID, nil)
		}
		return task, nil
	}

	for _, assignment := range remaining {
		message := fmt.Sprintf("Reminder: Task %s.", task.Title)
		if task.DueDate != nil {
			message = fmt.Sprintf("Reminder: Task %s is due on %s.",
				task.Title, task.DueDate.Format(dueDateLayout))
		}
		s.notifier.Notify(ctx, assignment.UserID, domain.NotificationTaskDue,
			message, &task.ID, nil)
	}
	return task, nil
}

// SendCreatedNotifications notifies every current assignee about the task.
func (s *taskServiceImpl) SendCreatedNotifications(ctx context.Context, taskID uuid.UUID) (int, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return 0, NewServiceError("send_created", "failed to retrieve task", err)
	}

	assignments, err := s.assignments.ListByTask(ctx, taskID)
	if err != nil {
		return 0, NewServiceError("send_created", "failed to list assignments", err)
	}

	ownerName := "someone"
	if task.OwnerID != nil {
		owner, err := s.users.GetByID(ctx, *task.OwnerID)
		if err != nil {
			return 0, NewServiceError("send_created", "failed to retrieve owner", err)
		}
		ownerName = owner.DisplayName
	}

	message := fmt.Sprintf("The task %s is created by %s.", task.Title, ownerName)
	if task.DueDate != nil {
		message = fmt.Sprintf("The task %s is created by %s and due date is %s.",
			task.Title, ownerName, task.DueDate.Format(dueDateLayout))
	}

	count := 0
	for _, assignment := range assignments {
		s.notifier.Notify(ctx, assignment.UserID, domain.NotificationTaskCreated,
			message, &task.ID, nil)
		count++
	}

	s.logger.Info("task creation notifications sent",
		"task_id", taskID,
		"count", count)
	return count, nil
}
