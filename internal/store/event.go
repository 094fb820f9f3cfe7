package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
)

// EventStore defines the interface for event data persistence.
type EventStore interface {
	// Create saves a new event to the store.
	Create(ctx context.Context, event *domain.Event) error

	// GetByID retrieves an event by its unique ID.
	// Returns ErrEventNotFound if the event does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)

	// ListByHost retrieves all events hosted by the given user, ordered by
	// start time.
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]*domain.Event, error)

	// Update saves changes to an existing event.
	// Returns ErrEventNotFound if the event does not exist.
	Update(ctx context.Context, event *domain.Event) error

	// UpdateStatus updates only the status of an existing event.
	// Returns ErrEventNotFound if the event does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EventStatus) error

	// Delete removes an event and, via cascade, its invitations.
	// Returns ErrEventNotFound if the event does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindSweepStartCandidates returns upcoming events whose window contains
	// the given instant (start <= now < end).
	FindSweepStartCandidates(ctx context.Context, now time.Time) ([]*domain.Event, error)

	// MarkOngoingWhereStarted applies the same filter as
	// FindSweepStartCandidates as a single bulk update to ongoing status.
	// Returns the number of rows updated.
	MarkOngoingWhereStarted(ctx context.Context, now time.Time) (int64, error)

	// FindSweepEndCandidates returns upcoming or ongoing events whose end
	// time is strictly before the given instant.
	FindSweepEndCandidates(ctx context.Context, now time.Time) ([]*domain.Event, error)

	// MarkEndedWherePast applies the same filter as FindSweepEndCandidates
	// as a single bulk update to ended status. Returns the number of rows
	// updated.
	MarkEndedWherePast(ctx context.Context, now time.Time) (int64, error)

	// WithTx returns a new EventStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) EventStore
}
