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

// InvitationService provides invitation responses and lookups.
type InvitationService interface {
	// Get retrieves an invitation by ID.
	Get(ctx context.Context, invitationID uuid.UUID) (*domain.Invitation, error)

	// ListOwn retrieves the invitations addressed to the given guest,
	// newest first.
	ListOwn(ctx context.Context, guestID uuid.UUID) ([]*domain.Invitation, error)

	// Accept records the guest's acceptance and notifies both guest and
	// host. Only the invited guest may respond. Responding again re-stamps
	// the response time and re-sends both notifications.
	Accept(ctx context.Context, invitationID, actorID uuid.UUID, now time.Time) (*domain.Invitation, error)

	// Decline records the guest's rejection, with the same rules as Accept.
	Decline(ctx context.Context, invitationID, actorID uuid.UUID, now time.Time) (*domain.Invitation, error)
}

// invitationServiceImpl implements the InvitationService interface
type invitationServiceImpl struct {
	invitations store.InvitationStore
	events      store.EventStore
	users       store.UserStore
	notifier    Notifier
	logger      *slog.Logger
}

// NewInvitationService creates a new InvitationService.
// It returns an error if any of the required dependencies are nil.
func NewInvitationService(
	invitations store.InvitationStore,
	events store.EventStore,
	users store.UserStore,
	notifier Notifier,
	logger *slog.Logger,
) (InvitationService, error) {
	if invitations == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "invitations cannot be nil"}
	}
	if events == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "events cannot be nil"}
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

	return &invitationServiceImpl{
		invitations: invitations,
		events:      events,
		users:       users,
		notifier:    notifier,
		logger:      logger.With("component", "invitation_service"),
	}, nil
}

// Get retrieves an invitation by ID.
func (s *invitationServiceImpl) Get(ctx context.Context, invitationID uuid.UUID) (*domain.Invitation, error) {
	invitation, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, NewServiceError("get_invitation", "failed to retrieve invitation", err)
	}
	return invitation, nil
}

// ListOwn retrieves the guest's invitations.
func (s *invitationServiceImpl) ListOwn(ctx context.Context, guestID uuid.UUID) ([]*domain.Invitation, error) {
	invitations, err := s.invitations.ListByGuest(ctx, guestID)
	if err != nil {
		return nil, NewServiceError("list_invitations", "failed to list invitations", err)
	}
	return invitations, nil
}

// Accept implements InvitationService.Accept
func (s *invitationServiceImpl) Accept(
	ctx context.Context,
	invitationID, actorID uuid.UUID,
	now time.Time,
) (*domain.Invitation, error) {
	return s.respond(ctx, invitationID, actorID, domain.InvitationStatusAccepted, now)
}

// Decline implements InvitationService.Decline
func (s *invitationServiceImpl) Decline(
	ctx context.Context,
	invitationID, actorID uuid.UUID,
	now time.Time,
) (*domain.Invitation, error) {
	return s.respond(ctx, invitationID, actorID, domain.InvitationStatusRejected, now)
}

// respond records the guest's response and notifies both parties. A repeat
// response overwrites the previous one and re-notifies; the original system
// behaved this way and clients rely on the fresh response timestamp.
func (s *invitationServiceImpl) respond(
	ctx context.Context,
	invitationID, actorID uuid.UUID,
	status domain.InvitationStatus,
	now time.Time,
) (*domain.Invitation, error) {
	invitation, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, NewServiceError("respond_invitation", "failed to retrieve invitation", err)
	}

	if invitation.GuestID != actorID {
		return nil, ErrForbidden
	}

	event, err := s.events.GetByID(ctx, invitation.EventID)
	if err != nil {
		return nil, NewServiceError("respond_invitation", "failed to retrieve event", err)
	}

	if err := invitation.Respond(status, now); err != nil {
		return nil, NewServiceError("respond_invitation", "invalid response", err)
	}

	if err := s.invitations.Update(ctx, invitation); err != nil {
		return nil, NewServiceError("respond_invitation", "failed to save invitation", err)
	}

	verb := "accepted"
	guestType := domain.NotificationInvitationAccepted
	hostType := domain.NotificationInvitationAcceptedBy
	if status == domain.InvitationStatusRejected {
		verb = "rejected"
		guestType = domain.NotificationInvitationRejected
		hostType = domain.NotificationInvitationRejectedBy
	}

	s.notifier.Notify(ctx, invitation.GuestID, guestType,
		fmt.Sprintf("You have %s the invitation to %s.", verb, event.Title),
		nil, &event.ID)

	if event.HostID != nil {
		guestName := "A guest"
		if guest, err := s.users.GetByID(ctx, invitation.GuestID); err == nil {
			guestName = guest.DisplayName
		}
		s.notifier.Notify(ctx, *event.HostID, hostType,
			fmt.Sprintf("%s has %s the invitation to %s.", guestName, verb, event.Title),
			nil, &event.ID)
	}

	s.logger.Info("invitation response recorded",
		"invitation_id", invitationID,
		"event_id", event.ID,
		"status", string(status))
	return invitation, nil
}
