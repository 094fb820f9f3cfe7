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

// PostgresEventStore implements the store.EventStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEventStore creates a new PostgreSQL implementation of the
// EventStore interface. If logger is nil, a default logger will be used.
func NewPostgresEventStore(db store.DBTX, logger *slog.Logger) *PostgresEventStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

// Ensure PostgresEventStore implements store.EventStore interface
var _ store.EventStore = (*PostgresEventStore)(nil)

// WithTx implements store.EventStore.WithTx
func (s *PostgresEventStore) WithTx(tx *sql.Tx) store.EventStore {
	return &PostgresEventStore{db: tx, logger: s.logger}
}

const eventColumns = `id, host_id, title, description, start_time, end_time, status, created_at, updated_at`

func scanEvent(row interface{ Scan(dest ...any) error }) (*domain.Event, error) {
	var (
		event  domain.Event
		hostID uuid.NullUUID
	)
	err := row.Scan(
		&event.ID,
		&hostID,
		&event.Title,
		&event.Description,
		&event.StartTime,
		&event.EndTime,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.HostID = uuidPtr(hostID)
	return &event, nil
}

// Create implements store.EventStore.Create
func (s *PostgresEventStore) Create(ctx context.Context, event *domain.Event) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		log.Warn("event validation failed during create",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		event.ID,
		nullUUID(event.HostID),
		event.Title,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return MapError(err)
	}

	log.Debug("event created",
		slog.String("event_id", event.ID.String()),
		slog.String("status", string(event.Status)))
	return nil
}

// GetByID implements store.EventStore.GetByID
func (s *PostgresEventStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("event not found", slog.String("event_id", id.String()))
			return nil, store.ErrEventNotFound
		}
		log.Error("failed to get event by ID",
			slog.String("error", err.Error()),
			slog.String("event_id", id.String()))
		return nil, MapError(err)
	}

	return event, nil
}

// ListByHost implements store.EventStore.ListByHost
func (s *PostgresEventStore) ListByHost(ctx context.Context, hostID uuid.UUID) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE host_id = $1
		ORDER BY start_time ASC
	`
	return s.queryEvents(ctx, query, hostID)
}

// Update implements store.EventStore.Update
func (s *PostgresEventStore) Update(ctx context.Context, event *domain.Event) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		log.Warn("event validation failed during update",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE events
		SET host_id = $2,
		    title = $3,
		    description = $4,
		    start_time = $5,
		    end_time = $6,
		    status = $7,
		    updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		event.ID,
		nullUUID(event.HostID),
		event.Title,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.Status,
		event.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrEventNotFound)
}

// UpdateStatus implements store.EventStore.UpdateStatus
func (s *PostgresEventStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EventStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidEventStatus(status) {
		return fmt.Errorf("%w: invalid event status %q", store.ErrInvalidEntity, status)
	}

	query := `UPDATE events SET status = $2, updated_at = now() WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id, status)
	if err != nil {
		log.Error("failed to update event status",
			slog.String("error", err.Error()),
			slog.String("event_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrEventNotFound); err != nil {
		return err
	}

	log.Debug("event status updated",
		slog.String("event_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// Delete implements store.EventStore.Delete
func (s *PostgresEventStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM events WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete event",
			slog.String("error", err.Error()),
			slog.String("event_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrEventNotFound); err != nil {
		return err
	}

	log.Info("event deleted", slog.String("event_id", id.String()))
	return nil
}

const eventStartFilter = `status = 'upcoming' AND start_time <= $1 AND end_time > $1`

// FindSweepStartCandidates implements store.EventStore.FindSweepStartCandidates
func (s *PostgresEventStore) FindSweepStartCandidates(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE ` + eventStartFilter + `
		ORDER BY start_time ASC
	`
	return s.queryEvents(ctx, query, now)
}

// MarkOngoingWhereStarted implements store.EventStore.MarkOngoingWhereStarted
func (s *PostgresEventStore) MarkOngoingWhereStarted(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE events
		SET status = 'ongoing', updated_at = now()
		WHERE ` + eventStartFilter
	result, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		log.Error("failed to mark events ongoing", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows > 0 {
		log.Info("events marked ongoing", slog.Int64("count", rows))
	}
	return rows, nil
}

const eventEndFilter = `status IN ('upcoming', 'ongoing') AND end_time < $1`

// FindSweepEndCandidates implements store.EventStore.FindSweepEndCandidates
func (s *PostgresEventStore) FindSweepEndCandidates(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE ` + eventEndFilter + `
		ORDER BY end_time ASC
	`
	return s.queryEvents(ctx, query, now)
}

// MarkEndedWherePast implements store.EventStore.MarkEndedWherePast
func (s *PostgresEventStore) MarkEndedWherePast(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE events
		SET status = 'ended', updated_at = now()
		WHERE ` + eventEndFilter
	result, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		log.Error("failed to mark events ended", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows > 0 {
		log.Info("events marked ended", slog.Int64("count", rows))
	}
	return rows, nil
}

func (s *PostgresEventStore) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query events", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	events := []*domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			log.Error("failed to scan event row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return events, nil
}
