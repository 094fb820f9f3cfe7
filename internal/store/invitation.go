package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
)

// InvitationStore defines the interface for invitation data persistence.
type InvitationStore interface {
	// Create saves a new invitation to the store.
	// Returns ErrDuplicateInvitation if an invitation already exists for the
	// same (event, guest) pair.
	Create(ctx context.Context, invitation *domain.Invitation) error

	// GetOrCreate returns the existing invitation for the (event, guest)
	// pair, or creates a new pending one if none exists. The boolean result
	// reports whether a new invitation was created. An existing invitation
	// is never overwritten.
	GetOrCreate(ctx context.Context, eventID, guestID uuid.UUID) (*domain.Invitation, bool, error)

	// GetByID retrieves an invitation by its unique ID.
	// Returns ErrInvitationNotFound if the invitation does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)

	// ListByEvent retrieves all invitations for the given event.
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Invitation, error)

	// ListByEventAndStatus retrieves the event's invitations carrying the
	// given status.
	ListByEventAndStatus(
		ctx context.Context,
		eventID uuid.UUID,
		status domain.InvitationStatus,
	) ([]*domain.Invitation, error)

	// ListByGuest retrieves all invitations addressed to the given guest,
	// newest first.
	ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*domain.Invitation, error)

	// CountByEventAndStatus counts the event's invitations carrying the
	// given status.
	CountByEventAndStatus(
		ctx context.Context,
		eventID uuid.UUID,
		status domain.InvitationStatus,
	) (int, error)

	// Update saves changes to an existing invitation.
	// Returns ErrInvitationNotFound if the invitation does not exist.
	Update(ctx context.Context, invitation *domain.Invitation) error

	// WithTx returns a new InvitationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) InvitationStore
}
