package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
)

// AssignmentStore defines the interface for assignment data persistence.
type AssignmentStore interface {
	// Create saves a new assignment to the store.
	// Returns ErrDuplicateAssignment if an assignment already exists for the
	// same (task, user) pair.
	Create(ctx context.Context, assignment *domain.Assignment) error

	// GetByID retrieves an assignment by its unique ID.
	// Returns ErrAssignmentNotFound if the assignment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error)

	// ListByTask retrieves all assignments for the given task.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Assignment, error)

	// ListByUser retrieves all assignments where the given user is the
	// assignee, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Assignment, error)

	// Update saves changes to an existing assignment.
	// Returns ErrAssignmentNotFound if the assignment does not exist.
	Update(ctx context.Context, assignment *domain.Assignment) error

	// Delete removes an assignment.
	// Returns ErrAssignmentNotFound if the assignment does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindSweepOverdueCandidates returns pending assignments whose parent
	// task has a due date strictly before the given day and is not yet
	// complete.
	FindSweepOverdueCandidates(ctx context.Context, day time.Time) ([]*domain.Assignment, error)

	// MarkOverdueForLapsedTasks applies the same filter as
	// FindSweepOverdueCandidates as a single bulk update to overdue status.
	// Returns the number of rows updated.
	MarkOverdueForLapsedTasks(ctx context.Context, day time.Time) (int64, error)

	// FindSweepCompletionCandidates returns pending assignments whose parent
	// task is already complete.
	FindSweepCompletionCandidates(ctx context.Context) ([]*domain.Assignment, error)

	// CompleteForCompletedTasks marks every pending assignment of a complete
	// task as completed, stamping the given completion time. Returns the
	// number of rows updated.
	CompleteForCompletedTasks(ctx context.Context, completedAt time.Time) (int64, error)

	// WithTx returns a new AssignmentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AssignmentStore
}
