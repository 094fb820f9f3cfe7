package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents the response state of an invitation.
type InvitationStatus string

// Possible invitation status values
const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRejected InvitationStatus = "rejected"
)

// Common validation errors for Invitation
var (
	ErrEmptyInvitationID       = errors.New("invitation ID cannot be empty")
	ErrEmptyInvitationEventID  = errors.New("invitation event ID cannot be empty")
	ErrEmptyInvitationGuestID  = errors.New("invitation guest ID cannot be empty")
	ErrInvalidInvitationStatus = errors.New("invalid invitation status")
)

// Invitation links one event to one guest. At most one invitation may exist
// per (event, guest) pair; the store enforces this with a unique constraint.
type Invitation struct {
	ID          uuid.UUID        `json:"id"`
	EventID     uuid.UUID        `json:"event_id"`
	GuestID     uuid.UUID        `json:"guest_id"`
	Status      InvitationStatus `json:"status"`
	InvitedAt   time.Time        `json:"invited_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// NewInvitation creates a new pending Invitation linking the given event and
// guest. Returns an error if validation fails.
func NewInvitation(eventID, guestID uuid.UUID) (*Invitation, error) {
	invitation := &Invitation{
		ID:        uuid.New(),
		EventID:   eventID,
		GuestID:   guestID,
		Status:    InvitationStatusPending,
		InvitedAt: time.Now().UTC(),
	}

	if err := invitation.Validate(); err != nil {
		return nil, err
	}

	return invitation, nil
}

// Validate checks if the Invitation has valid data.
// Returns an error if any field fails validation.
func (i *Invitation) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyInvitationID
	}

	if i.EventID == uuid.Nil {
		return ErrEmptyInvitationEventID
	}

	if i.GuestID == uuid.Nil {
		return ErrEmptyInvitationGuestID
	}

	if !IsValidInvitationStatus(i.Status) {
		return ErrInvalidInvitationStatus
	}

	return nil
}

// Respond records the guest's response and stamps the response time.
// Calling Respond on an already-responded invitation overwrites the previous
// response and re-stamps the time; callers that want one-shot semantics must
// check Status first.
func (i *Invitation) Respond(status InvitationStatus, now time.Time) error {
	if status != InvitationStatusAccepted && status != InvitationStatusRejected {
		return ErrInvalidInvitationStatus
	}
	i.Status = status
	respondedAt := now.UTC()
	i.RespondedAt = &respondedAt
	return nil
}

// IsValidInvitationStatus checks if the given status is a valid InvitationStatus.
func IsValidInvitationStatus(status InvitationStatus) bool {
	switch status {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusRejected:
		return true
	default:
		return false
	}
}
