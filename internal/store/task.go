package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByOwner retrieves all tasks owned by the given user,
	// newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// UpdateStatus updates only the status of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error

	// Delete removes a task and, via cascade, its assignments.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindSweepOverdueCandidates returns pending tasks whose due date is on
	// or before the given day. When includeToday is false, tasks due exactly
	// on that day are excluded (the sweep's end-of-day grace window).
	FindSweepOverdueCandidates(ctx context.Context, day time.Time, includeToday bool) ([]*domain.Task, error)

	// MarkOverdueWhereDue applies the same filter as
	// FindSweepOverdueCandidates as a single bulk update to overdue status.
	// Returns the number of rows updated.
	MarkOverdueWhereDue(ctx context.Context, day time.Time, includeToday bool) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
