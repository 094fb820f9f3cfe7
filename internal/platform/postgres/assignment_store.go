package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/platform/logger"
	"github.com/phrazzld/collab-api/internal/store"
)

// PostgresAssignmentStore implements the store.AssignmentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAssignmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAssignmentStore creates a new PostgreSQL implementation of the
// AssignmentStore interface. If logger is nil, a default logger will be used.
func NewPostgresAssignmentStore(db store.DBTX, logger *slog.Logger) *PostgresAssignmentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAssignmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "assignment_store")),
	}
}

// Ensure PostgresAssignmentStore implements store.AssignmentStore interface
var _ store.AssignmentStore = (*PostgresAssignmentStore)(nil)

// WithTx implements store.AssignmentStore.WithTx
func (s *PostgresAssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore {
	return &PostgresAssignmentStore{db: tx, logger: s.logger}
}

const assignmentColumns = `id, task_id, user_id, assigned_by_id, status, assigned_at, accepted_at, completed_at`

func scanAssignment(row interface{ Scan(dest ...any) error }) (*domain.Assignment, error) {
	var (
		assignment   domain.Assignment
		assignedByID uuid.NullUUID
		acceptedAt   sql.NullTime
		completedAt  sql.NullTime
	)
	err := row.Scan(
		&assignment.ID,
		&assignment.TaskID,
		&assignment.UserID,
		&assignedByID,
		&assignment.Status,
		&assignment.AssignedAt,
		&acceptedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	assignment.AssignedByID = uuidPtr(assignedByID)
	assignment.AcceptedAt = timePtr(acceptedAt)
	assignment.CompletedAt = timePtr(completedAt)
	return &assignment, nil
}

// Create implements store.AssignmentStore.Create
// Returns store.ErrDuplicateAssignment if the (task, user) pair already
// has an assignment.
func (s *PostgresAssignmentStore) Create(ctx context.Context, assignment *domain.Assignment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := assignment.Validate(); err != nil {
		log.Warn("assignment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("assignment_id", assignment.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		assignment.ID,
		assignment.TaskID,
		assignment.UserID,
		nullUUID(assignment.AssignedByID),
		assignment.Status,
		assignment.AssignedAt,
		nullTime(assignment.AcceptedAt),
		nullTime(assignment.CompletedAt),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate assignment for task and user",
				slog.String("task_id", assignment.TaskID.String()),
				slog.String("user_id", assignment.UserID.String()))
			return store.ErrDuplicateAssignment
		}
		log.Error("failed to create assignment",
			slog.String("error", err.Error()),
			slog.String("assignment_id", assignment.ID.String()))
		return MapError(err)
	}

	log.Debug("assignment created",
		slog.String("assignment_id", assignment.ID.String()),
		slog.String("task_id", assignment.TaskID.String()))
	return nil
}

// GetByID implements store.AssignmentStore.GetByID
func (s *PostgresAssignmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`

	assignment, err := scanAssignment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("assignment not found", slog.String("assignment_id", id.String()))
			return nil, store.ErrAssignmentNotFound
		}
		log.Error("failed to get assignment by ID",
			slog.String("error", err.Error()),
			slog.String("assignment_id", id.String()))
		return nil, MapError(err)
	}

	return assignment, nil
}

// ListByTask implements store.AssignmentStore.ListByTask
func (s *PostgresAssignmentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE task_id = $1
		ORDER BY assigned_at ASC
	`
	return s.queryAssignments(ctx, query, taskID)
}

// ListByUser implements store.AssignmentStore.ListByUser
func (s *PostgresAssignmentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE user_id = $1
		ORDER BY assigned_at DESC
	`
	return s.queryAssignments(ctx, query, userID)
}

// Update implements store.AssignmentStore.Update
func (s *PostgresAssignmentStore) Update(ctx context.Context, assignment *domain.Assignment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := assignment.Validate(); err != nil {
		log.Warn("assignment validation failed during update",
			slog.String("error", err.Error()),
			slog.String("assignment_id", assignment.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE assignments
		SET status = $2,
		    accepted_at = $3,
		    completed_at = $4
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		assignment.ID,
		assignment.Status,
		nullTime(assignment.AcceptedAt),
		nullTime(assignment.CompletedAt),
	)
	if err != nil {
		log.Error("failed to update assignment",
			slog.String("error", err.Error()),
			slog.String("assignment_id", assignment.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrAssignmentNotFound)
}

// Delete implements store.AssignmentStore.Delete
func (s *PostgresAssignmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM assignments WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete assignment",
			slog.String("error", err.Error()),
			slog.String("assignment_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrAssignmentNotFound); err != nil {
		return err
	}

	log.Info("assignment deleted", slog.String("assignment_id", id.String()))
	return nil
}

// Pending assignments on tasks whose due date has fully lapsed. Tasks due on
// the reference day are left alone, matching the task sweep's grace window.
const assignmentOverdueFilter = `
	status = 'pending'
	AND task_id IN (
		SELECT id FROM tasks
		WHERE due_date IS NOT NULL AND due_date < $1 AND status <> 'complete'
	)
`

// FindSweepOverdueCandidates implements store.AssignmentStore.FindSweepOverdueCandidates
func (s *PostgresAssignmentStore) FindSweepOverdueCandidates(
	ctx context.Context,
	day time.Time,
) ([]*domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE ` + assignmentOverdueFilter + `
		ORDER BY assigned_at ASC
	`
	return s.queryAssignments(ctx, query, day)
}

// MarkOverdueForLapsedTasks implements store.AssignmentStore.MarkOverdueForLapsedTasks
func (s *PostgresAssignmentStore) MarkOverdueForLapsedTasks(ctx context.Context, day time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE assignments
		SET status = 'overdue'
		WHERE ` + assignmentOverdueFilter
	result, err := s.db.ExecContext(ctx, query, day)
	if err != nil {
		log.Error("failed to mark assignments overdue", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows > 0 {
		log.Info("assignments marked overdue", slog.Int64("count", rows))
	}
	return rows, nil
}

const assignmentCompletionFilter = `
	status = 'pending'
	AND task_id IN (SELECT id FROM tasks WHERE status = 'complete')
`

// FindSweepCompletionCandidates implements store.AssignmentStore.FindSweepCompletionCandidates
func (s *PostgresAssignmentStore) FindSweepCompletionCandidates(ctx context.Context) ([]*domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE ` + assignmentCompletionFilter + `
		ORDER BY assigned_at ASC
	`
	return s.queryAssignments(ctx, query)
}

// CompleteForCompletedTasks implements store.AssignmentStore.CompleteForCompletedTasks
func (s *PostgresAssignmentStore) CompleteForCompletedTasks(
	ctx context.Context,
	completedAt time.Time,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE assignments
		SET status = 'completed', completed_at = $1
		WHERE ` + assignmentCompletionFilter
	result, err := s.db.ExecContext(ctx, query, completedAt)
	if err != nil {
		log.Error("failed to complete assignments of finished tasks",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows > 0 {
		log.Info("assignments completed to match finished tasks", slog.Int64("count", rows))
	}
	return rows, nil
}

func (s *PostgresAssignmentStore) queryAssignments(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Assignment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query assignments", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	assignments := []*domain.Assignment{}
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			log.Error("failed to scan assignment row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return assignments, nil
}
