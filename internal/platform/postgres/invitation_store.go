package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/platform/logger"
	"github.com/phrazzld/collab-api/internal/store"
)

// PostgresInvitationStore implements the store.InvitationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresInvitationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInvitationStore creates a new PostgreSQL implementation of the
// InvitationStore interface. If logger is nil, a default logger will be used.
func NewPostgresInvitationStore(db store.DBTX, logger *slog.Logger) *PostgresInvitationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInvitationStore{
		db:     db,
		logger: logger.With(slog.String("component", "invitation_store")),
	}
}

// Ensure PostgresInvitationStore implements store.InvitationStore interface
var _ store.InvitationStore = (*PostgresInvitationStore)(nil)

// WithTx implements store.InvitationStore.WithTx
func (s *PostgresInvitationStore) WithTx(tx *sql.Tx) store.InvitationStore {
	return &PostgresInvitationStore{db: tx, logger: s.logger}
}

const invitationColumns = `id, event_id, guest_id, status, invited_at, responded_at`

func scanInvitation(row interface{ Scan(dest ...any) error }) (*domain.Invitation, error) {
	var (
		invitation  domain.Invitation
		respondedAt sql.NullTime
	)
	err := row.Scan(
		&invitation.ID,
		&invitation.EventID,
		&invitation.GuestID,
		&invitation.Status,
		&invitation.InvitedAt,
		&respondedAt,
	)
	if err != nil {
		return nil, err
	}
	invitation.RespondedAt = timePtr(respondedAt)
	return &invitation, nil
}

// Create implements store.InvitationStore.Create
// Returns store.ErrDuplicateInvitation if the (event, guest) pair already
// has an invitation.
func (s *PostgresInvitationStore) Create(ctx context.Context, invitation *domain.Invitation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := invitation.Validate(); err != nil {
		log.Warn("invitation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		invitation.ID,
		invitation.EventID,
		invitation.GuestID,
		invitation.Status,
		invitation.InvitedAt,
		nullTime(invitation.RespondedAt),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate invitation for event and guest",
				slog.String("event_id", invitation.EventID.String()),
				slog.String("guest_id", invitation.GuestID.String()))
			return store.ErrDuplicateInvitation
		}
		log.Error("failed to create invitation",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return MapError(err)
	}

	log.Debug("invitation created",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("event_id", invitation.EventID.String()))
	return nil
}

// GetOrCreate implements store.InvitationStore.GetOrCreate
//
// ON CONFLICT DO NOTHING plus a follow-up select keeps the operation safe
// under concurrent invites for the same pair: exactly one caller sees
// created=true, the rest read the winner's row.
func (s *PostgresInvitationStore) GetOrCreate(
	ctx context.Context,
	eventID, guestID uuid.UUID,
) (*domain.Invitation, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fresh, err := domain.NewInvitation(eventID, guestID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	insert := `
		INSERT INTO invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, guest_id) DO NOTHING
	`
	result, err := s.db.ExecContext(
		ctx,
		insert,
		fresh.ID,
		fresh.EventID,
		fresh.GuestID,
		fresh.Status,
		fresh.InvitedAt,
		nullTime(fresh.RespondedAt),
	)
	if err != nil {
		log.Error("failed to upsert invitation",
			slog.String("error", err.Error()),
			slog.String("event_id", eventID.String()),
			slog.String("guest_id", guestID.String()))
		return nil, false, MapError(err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if inserted > 0 {
		log.Debug("invitation created for guest",
			slog.String("event_id", eventID.String()),
			slog.String("guest_id", guestID.String()))
		return fresh, true, nil
	}

	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE event_id = $1 AND guest_id = $2
	`
	invitation, err := scanInvitation(s.db.QueryRowContext(ctx, query, eventID, guestID))
	if err != nil {
		log.Error("failed to load existing invitation",
			slog.String("error", err.Error()),
			slog.String("event_id", eventID.String()),
			slog.String("guest_id", guestID.String()))
		return nil, false, MapError(err)
	}

	return invitation, false, nil
}

// GetByID implements store.InvitationStore.GetByID
func (s *PostgresInvitationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`

	invitation, err := scanInvitation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("invitation not found", slog.String("invitation_id", id.String()))
			return nil, store.ErrInvitationNotFound
		}
		log.Error("failed to get invitation by ID",
			slog.String("error", err.Error()),
			slog.String("invitation_id", id.String()))
		return nil, MapError(err)
	}

	return invitation, nil
}

// ListByEvent implements store.InvitationStore.ListByEvent
func (s *PostgresInvitationStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE event_id = $1
		ORDER BY invited_at ASC
	`
	return s.queryInvitations(ctx, query, eventID)
}

// ListByEventAndStatus implements store.InvitationStore.ListByEventAndStatus
func (s *PostgresInvitationStore) ListByEventAndStatus(
	ctx context.Context,
	eventID uuid.UUID,
	status domain.InvitationStatus,
) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE event_id = $1 AND status = $2
		ORDER BY invited_at ASC
	`
	return s.queryInvitations(ctx, query, eventID, status)
}

// ListByGuest implements store.InvitationStore.ListByGuest
func (s *PostgresInvitationStore) ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE guest_id = $1
		ORDER BY invited_at DESC
	`
	return s.queryInvitations(ctx, query, guestID)
}

// CountByEventAndStatus implements store.InvitationStore.CountByEventAndStatus
func (s *PostgresInvitationStore) CountByEventAndStatus(
	ctx context.Context,
	eventID uuid.UUID,
	status domain.InvitationStatus,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT count(*) FROM invitations WHERE event_id = $1 AND status = $2`

	var count int
	if err := s.db.QueryRowContext(ctx, query, eventID, status).Scan(&count); err != nil {
		log.Error("failed to count invitations",
			slog.String("error", err.Error()),
			slog.String("event_id", eventID.String()))
		return 0, MapError(err)
	}

	return count, nil
}

// Update implements store.InvitationStore.Update
func (s *PostgresInvitationStore) Update(ctx context.Context, invitation *domain.Invitation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := invitation.Validate(); err != nil {
		log.Warn("invitation validation failed during update",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE invitations
		SET status = $2, responded_at = $3
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		invitation.ID,
		invitation.Status,
		nullTime(invitation.RespondedAt),
	)
	if err != nil {
		log.Error("failed to update invitation",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrInvitationNotFound)
}

func (s *PostgresInvitationStore) queryInvitations(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Invitation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query invitations", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	invitations := []*domain.Invitation{}
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			log.Error("failed to scan invitation row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		invitations = append(invitations, invitation)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return invitations, nil
}
