package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/store"
)

// eventTimeLayout renders event start and end times in notification messages.
const eventTimeLayout = "2006-01-02 15:04:05"

// CreateEventInput carries the fields for creating an event along with the
// guests to invite.
type CreateEventInput struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	GuestIDs    []uuid.UUID
}

// UpdateEventInput carries the patchable event fields. Nil fields are left
// unchanged. Status is absent on purpose: it is derived by UpdateStatus and
// the sweeper, never written directly.
type UpdateEventInput struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// EventService provides event operations, including the status reconciler
// that re-derives an event's status from its time window.
type EventService interface {
	// Create creates an event hosted by hostID and a pending invitation for
	// each listed guest, atomically.
	Create(ctx context.Context, hostID uuid.UUID, input CreateEventInput) (*domain.Event, error)

	// Get retrieves an event by ID.
	Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)

	// ListHosted retrieves the events hosted by the given user, ordered by
	// start time.
	ListHosted(ctx context.Context, hostID uuid.UUID) ([]*domain.Event, error)

	// Update patches an event. Only the host may update it.
	Update(ctx context.Context, eventID, actorID uuid.UUID, input UpdateEventInput) (*domain.Event, error)

	// Delete removes an event and its invitations. Only the host may
	// delete it. Deletion is the cancellation path.
	Delete(ctx context.Context, eventID, actorID uuid.UUID) error

	// UpdateStatus re-derives the event's status from its time window at
	// the given instant. Entering or remaining in the ongoing or ended
	// state notifies the host and every accepted guest on every call; the
	// upcoming state is silent.
	UpdateStatus(ctx context.Context, eventID uuid.UUID, now time.Time) (*domain.Event, error)

	// Invite ensures an invitation exists for every guest of the event plus
	// every newly listed guest ID, notifying each guest and summarizing to
	// the host. Existing responses are never overwritten. Only the host may
	// invite. Returns the number of guests notified.
	Invite(ctx context.Context, eventID, actorID uuid.UUID, guestIDs []uuid.UUID) (int, error)

	// CountGuests counts the event's accepted invitations.
	CountGuests(ctx context.Context, eventID uuid.UUID) (int, error)

	// SendReminder notifies the host and every accepted guest about the
	// event. Only the host may send reminders. No status change.
	SendReminder(ctx context.Context, eventID, actorID uuid.UUID) error
}

// eventServiceImpl implements the EventService interface
type eventServiceImpl struct {
	db          *sql.DB
	events      store.EventStore
	invitations store.InvitationStore
	notifier    Notifier
	logger      *slog.Logger
}

// NewEventService creates a new EventService.
// It returns an error if any of the required dependencies are nil.
func NewEventService(
	db *sql.DB,
	events store.EventStore,
	invitations store.InvitationStore,
	notifier Notifier,
	logger *slog.Logger,
) (EventService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if events == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "events cannot be nil"}
	}
	if invitations == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "invitations cannot be nil"}
	}
	if notifier == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "notifier cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &eventServiceImpl{
		db:          db,
		events:      events,
		invitations: invitations,
		notifier:    notifier,
		logger:      logger.With("component", "event_service"),
	}, nil
}

// Create creates an event and its invitations in a single transaction.
func (s *eventServiceImpl) Create(
	ctx context.Context,
	hostID uuid.UUID,
	input CreateEventInput,
) (*domain.Event, error) {
	event, err := domain.NewEvent(&hostID, input.Title, input.Description, input.StartTime, input.EndTime)
	if err != nil {
		s.logger.Warn("invalid event input",
			"error", err,
			"host_id", hostID)
		return nil, NewServiceError("create_event", "invalid event", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txEvents := s.events.WithTx(tx)
		txInvitations := s.invitations.WithTx(tx)

		if err := txEvents.Create(ctx, event); err != nil {
			return NewServiceError("create_event", "failed to save event", err)
		}

		for _, guestID := range input.GuestIDs {
			if _, _, err := txInvitations.GetOrCreate(ctx, event.ID, guestID); err != nil {
				return NewServiceError("create_event", "failed to save invitation", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("event created",
		"event_id", event.ID,
		"host_id", hostID,
		"guest_count", len(input.GuestIDs))
	return event, nil
}

// Get retrieves an event by ID.
func (s *eventServiceImpl) Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, NewServiceError("get_event", "failed to retrieve event", err)
	}
	return event, nil
}

// ListHosted retrieves the events hosted by the given user.
func (s *eventServiceImpl) ListHosted(ctx context.Context, hostID uuid.UUID) ([]*domain.Event, error) {
	events, err := s.events.ListByHost(ctx, hostID)
	if err != nil {
		return nil, NewServiceError("list_events", "failed to list events", err)
	}
	return events, nil
}

// Update patches an event after verifying the actor hosts it.
func (s *eventServiceImpl) Update(
	ctx context.Context,
	eventID, actorID uuid.UUID,
	input UpdateEventInput,
) (*domain.Event, error) {
	event, err := s.getHostedEvent(ctx, "update_event", eventID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		event.Title = *input.Title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.StartTime != nil {
		event.StartTime = input.StartTime.UTC()
	}
	if input.EndTime != nil {
		event.EndTime = input.EndTime.UTC()
	}
	if !event.EndTime.After(event.StartTime) {
		return nil, NewServiceError("update_event", "invalid event window", domain.ErrEventTimesInvalid)
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.events.Update(ctx, event); err != nil {
		return nil, NewServiceError("update_event", "failed to save event", err)
	}

	return event, nil
}

// Delete removes an event after verifying the actor hosts it.
func (s *eventServiceImpl) Delete(ctx context.Context, eventID, actorID uuid.UUID) error {
	if _, err := s.getHostedEvent(ctx, "delete_event", eventID, actorID); err != nil {
		return err
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		return NewServiceError("delete_event", "failed to delete event", err)
	}

	s.logger.Info("event deleted", "event_id", eventID, "actor_id", actorID)
	return nil
}

// UpdateStatus re-derives the event's status from its time window.
//
// An event inside its window is ongoing and one past its window is ended;
// both states notify the host and every accepted guest each time the
// reconciler lands there. Before the window the event is upcoming and no
// notification is sent.
func (s *eventServiceImpl) UpdateStatus(
	ctx context.Context,
	eventID uuid.UUID,
	now time.Time,
) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, NewServiceError("update_status", "failed to retrieve event", err)
	}

	status := event.StatusAt(now)
	if err := s.events.UpdateStatus(ctx, eventID, status); err != nil {
		return nil, NewServiceError("update_status", "failed to save event status", err)
	}
	event.Status = status

	switch status {
	case domain.EventStatusOngoing:
		if err := s.notifyHostAndAcceptedGuests(ctx, event,
			domain.NotificationEventStarted,
			fmt.Sprintf("Your event %s has started.", event.Title),
			fmt.Sprintf("The event %s has started.", event.Title),
		); err != nil {
			return nil, err
		}
	case domain.EventStatusEnded:
		if err := s.notifyHostAndAcceptedGuests(ctx, event,
			domain.NotificationEventEnded,
			fmt.Sprintf("Your event %s has ended.", event.Title),
			fmt.Sprintf("The event %s has ended.", event.Title),
		); err != nil {
			return nil, err
		}
	}

	s.logger.Info("event status reconciled",
		"event_id", eventID,
		"status", string(status))
	return event, nil
}

// Invite fans invitations out to the union of the event's current guests and
// the newly listed ones. Pre-existing invitations are kept as they are, but
// every guest in the union is re-notified, and the host gets one summary.
func (s *eventServiceImpl) Invite(
	ctx context.Context,
	eventID, actorID uuid.UUID,
	guestIDs []uuid.UUID,
) (int, error) {
	event, err := s.getHostedEvent(ctx, "invite", eventID, actorID)
	if err != nil {
		return 0, err
	}

	existing, err := s.invitations.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, NewServiceError("invite", "failed to list invitations", err)
	}

	guests := make([]uuid.UUID, 0, len(existing)+len(guestIDs))
	seen := make(map[uuid.UUID]bool, len(existing)+len(guestIDs))
	for _, invitation := range existing {
		if !seen[invitation.GuestID] {
			seen[invitation.GuestID] = true
			guests = append(guests, invitation.GuestID)
		}
	}
	for _, guestID := range guestIDs {
		if !seen[guestID] {
			seen[guestID] = true
			guests = append(guests, guestID)
		}
	}

	window := fmt.Sprintf("%s - %s",
		event.StartTime.Format(eventTimeLayout),
		event.EndTime.Format(eventTimeLayout))

	for _, guestID := range guests {
		if _, _, err := s.invitations.GetOrCreate(ctx, eventID, guestID); err != nil {
			return 0, NewServiceError("invite", "failed to save invitation", err)
		}
		s.notifier.Notify(ctx, guestID, domain.NotificationEventInvited,
			fmt.Sprintf("You have been invited to %s on %s.", event.Title, window),
			nil, &event.ID)
	}

	if event.HostID != nil {
		s.notifier.Notify(ctx, *event.HostID, domain.NotificationEventInvitedHost,
			fmt.Sprintf("You have invited %d guests to %s.", len(guests), event.Title),
			nil, &event.ID)
	}

	s.logger.Info("event invitations sent",
		"event_id", eventID,
		"guest_count", len(guests))
	return len(guests), nil
}

// CountGuests counts accepted invitations. Pure query.
func (s *eventServiceImpl) CountGuests(ctx context.Context, eventID uuid.UUID) (int, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return 0, NewServiceError("count_guests", "failed to retrieve event", err)
	}

	count, err := s.invitations.CountByEventAndStatus(ctx, eventID, domain.InvitationStatusAccepted)
	if err != nil {
		return 0, NewServiceError("count_guests", "failed to count invitations", err)
	}
	return count, nil
}

// SendReminder notifies the host and every accepted guest about the event.
func (s *eventServiceImpl) SendReminder(ctx context.Context, eventID, actorID uuid.UUID) error {
	event, err := s.getHostedEvent(ctx, "send_reminder", eventID, actorID)
	if err != nil {
		return err
	}

	window := fmt.Sprintf("%s - %s",
		event.StartTime.Format(eventTimeLayout),
		event.EndTime.Format(eventTimeLayout))

	return s.notifyHostAndAcceptedGuests(ctx, event,
		domain.NotificationEventReminder,
		fmt.Sprintf("Reminder: You host the event %s on %s.", event.Title, window),
		fmt.Sprintf("Reminder: You have an event %s on %s.", event.Title, window),
	)
}

// getHostedEvent loads the event and verifies the actor hosts it.
func (s *eventServiceImpl) getHostedEvent(
	ctx context.Context,
	operation string,
	eventID, actorID uuid.UUID,
) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, NewServiceError(operation, "failed to retrieve event", err)
	}

	if event.HostID == nil || *event.HostID != actorID {
		return nil, ErrForbidden
	}
	return event, nil
}

// notifyHostAndAcceptedGuests sends one notification to the host and one to
// every guest with an accepted invitation.
func (s *eventServiceImpl) notifyHostAndAcceptedGuests(
	ctx context.Context,
	event *domain.Event,
	notificationType domain.NotificationType,
	hostMessage, guestMessage string,
) error {
	if event.HostID != nil {
		s.notifier.Notify(ctx, *event.HostID, notificationType, hostMessage, nil, &event.ID)
	}

	accepted, err := s.invitations.ListByEventAndStatus(ctx, event.ID, domain.InvitationStatusAccepted)
	if err != nil {
		return NewServiceError("notify_event", "failed to list accepted invitations", err)
	}

	for _, invitation := range accepted {
		s.notifier.Notify(ctx, invitation.GuestID, notificationType, guestMessage, nil, &event.ID)
	}
	return nil
}
