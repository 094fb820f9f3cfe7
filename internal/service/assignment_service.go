package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/store"
)

// AssignmentService provides assignment operations, including the completion
// cascade that re-reconciles the parent task.
type AssignmentService interface {
	// Create assigns a user to a task. Returns ErrDuplicateAssignment if
	// the user is already assigned.
	Create(ctx context.Context, taskID, userID, assignedByID uuid.UUID) (*domain.Assignment, error)

	// Get retrieves an assignment by ID.
	Get(ctx context.Context, assignmentID uuid.UUID) (*domain.Assignment, error)

	// ListOwn retrieves the assignments where the given user is the
	// assignee, newest first.
	ListOwn(ctx context.Context, userID uuid.UUID) ([]*domain.Assignment, error)

	// Complete marks the assignment completed and then re-reconciles the
	// parent task's status. Only the assignee may complete it. Completing
	// an already-completed assignment is a no-op.
	Complete(ctx context.Context, assignmentID, actorID uuid.UUID, now time.Time) (*domain.Assignment, error)

	// Delete removes an assignment.
	Delete(ctx context.Context, assignmentID uuid.UUID) error
}

// assignmentServiceImpl implements the AssignmentService interface
type assignmentServiceImpl struct {
	assignments store.AssignmentStore
	tasks       store.TaskStore
	taskService TaskService
	notifier    Notifier
	logger      *slog.Logger
}

// NewAssignmentService creates a new AssignmentService.
// It returns an error if any of the required dependencies are nil.
func NewAssignmentService(
	assignments store.AssignmentStore,
	tasks store.TaskStore,
	taskService TaskService,
	notifier Notifier,
	logger *slog.Logger,
) (AssignmentService, error) {
	if assignments == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "assignments cannot be nil"}
	}
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "tasks cannot be nil"}
	}
	if taskService == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "taskService cannot be nil"}
	}
	if notifier == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "notifier cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &assignmentServiceImpl{
		assignments: assignments,
		tasks:       tasks,
		taskService: taskService,
		notifier:    notifier,
		logger:      logger.With("component", "assignment_service"),
	}, nil
}

// Create assigns a user to a task.
func (s *assignmentServiceImpl) Create(
	ctx context.Context,
	taskID, userID, assignedByID uuid.UUID,
) (*domain.Assignment, error) {
	// Verify the parent exists so a bad task ID surfaces as not-found
	// rather than a foreign key violation.
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, NewServiceError("create_assignment", "failed to retrieve task", err)
	}

	assignment, err := domain.NewAssignment(taskID, userID, &assignedByID)
	if err != nil {
		return nil, NewServiceError("create_assignment", "invalid assignment", err)
	}

	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, NewServiceError("create_assignment", "failed to save assignment", err)
	}

	s.logger.Info("assignment created",
		"assignment_id", assignment.ID,
		"task_id", taskID,
		"user_id", userID)
	return assignment, nil
}

// Get retrieves an assignment by ID.
func (s *assignmentServiceImpl) Get(ctx context.Context, assignmentID uuid.UUID) (*domain.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, NewServiceError("get_assignment", "failed to retrieve assignment", err)
	}
	return assignment, nil
}

// ListOwn retrieves the caller's assignments.
func (s *assignmentServiceImpl) ListOwn(ctx context.Context, userID uuid.UUID) ([]*domain.Assignment, error) {
	assignments, err := s.assignments.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_assignments", "failed to list assignments", err)
	}
	return assignments, nil
}

// Complete marks the assignment completed, notifies the assignee, and then
// invokes the task reconciler on the parent. The assignment write commits
// before the reconciler runs so the cascade always observes it.
func (s *assignmentServiceImpl) Complete(
	ctx context.Context,
	assignmentID, actorID uuid.UUID,
	now time.Time,
) (*domain.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, NewServiceError("complete_assignment", "failed to retrieve assignment", err)
	}

	if assignment.UserID != actorID {
		return nil, ErrForbidden
	}

	if assignment.Status == domain.AssignmentStatusCompleted {
		return assignment, nil
	}

	completedAt := now.UTC()
	assignment.Status = domain.AssignmentStatusCompleted
	assignment.CompletedAt = &completedAt

	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, NewServiceError("complete_assignment", "failed to save assignment", err)
	}

	task, err := s.tasks.GetByID(ctx, assignment.TaskID)
	if err != nil {
		return nil, NewServiceError("complete_assignment", "failed to retrieve task", err)
	}

	s.notifier.Notify(ctx, assignment.UserID, domain.NotificationAssignmentCompleted,
		fmt.Sprintf("You have completed your assignment on task %s.", task.Title),
		&task.ID, nil)

	// Step two of the cascade: re-derive the parent's status now that one
	// more assignee is done.
	if _, err := s.taskService.RefreshStatus(ctx, assignment.TaskID, now); err != nil {
		return nil, err
	}

	s.logger.Info("assignment completed",
		"assignment_id", assignmentID,
		"task_id", assignment.TaskID,
		"user_id", actorID)
	return assignment, nil
}

// Delete removes an assignment.
func (s *assignmentServiceImpl) Delete(ctx context.Context, assignmentID uuid.UUID) error {
	if err := s.assignments.Delete(ctx, assignmentID); err != nil {
		return NewServiceError("delete_assignment", "failed to delete assignment", err)
	}

	s.logger.Info("assignment deleted", "assignment_id", assignmentID)
	return nil
}
