package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/service"
)

// Stub services with injectable behavior. Handlers under test only touch
// the funcs the test sets; anything else panics loudly.

type stubUserService struct {
	registerFn     func(ctx context.Context, email, displayName, password string) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	getFn          func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	listFn         func(ctx context.Context, excludeID uuid.UUID) ([]*domain.User, error)
}

var _ service.UserService = (*stubUserService)(nil)

func (s *stubUserService) Register(
	ctx context.Context,
	email, displayName, password string,
) (*domain.User, error) {
	return s.registerFn(ctx, email, displayName, password)
}

func (s *stubUserService) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubUserService) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.getFn(ctx, userID)
}

func (s *stubUserService) List(ctx context.Context, excludeID uuid.UUID) ([]*domain.User, error) {
	return s.listFn(ctx, excludeID)
}

type stubTaskService struct {
	createFn        func(ctx context.Context, ownerID uuid.UUID, input service.CreateTaskInput) (*domain.Task, error)
	getFn           func(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
	listOwnedFn     func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)
	updateFn        func(ctx context.Context, taskID, actorID uuid.UUID, input service.UpdateTaskInput) (*domain.Task, error)
	deleteFn        func(ctx context.Context, taskID, actorID uuid.UUID) error
	refreshStatusFn func(ctx context.Context, taskID uuid.UUID, now time.Time) (*domain.Task, error)
	sendCreatedFn   func(ctx context.Context, taskID uuid.UUID) (int, error)
}

var _ service.TaskService = (*stubTaskService)(nil)

func (s *stubTaskService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	return s.createFn(ctx, ownerID, input)
}

func (s *stubTaskService) Get(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	return s.getFn(ctx, taskID)
}

func (s *stubTaskService) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	return s.listOwnedFn(ctx, ownerID)
}

func (s *stubTaskService) Update(
	ctx context.Context,
	taskID, actorID uuid.UUID,
	input service.UpdateTaskInput,
) (*domain.Task, error) {
	return s.updateFn(ctx, taskID, actorID, input)
}

func (s *stubTaskService) Delete(ctx context.Context, taskID, actorID uuid.UUID) error {
	return s.deleteFn(ctx, taskID, actorID)
}

func (s *stubTaskService) RefreshStatus(
	ctx context.Context,
	taskID uuid.UUID,
	now time.Time,
) (*domain.Task, error) {
	return s.refreshStatusFn(ctx, taskID, now)
}

func (s *stubTaskService) SendCreatedNotifications(
	ctx context.Context,
	taskID uuid.UUID,
) (int, error) {
	return s.sendCreatedFn(ctx, taskID)
}

type stubEventService struct {
	createFn       func(ctx context.Context, hostID uuid.UUID, input service.CreateEventInput) (*domain.Event, error)
	getFn          func(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	listHostedFn   func(ctx context.Context, hostID uuid.UUID) ([]*domain.Event, error)
	updateFn       func(ctx context.Context, eventID, actorID uuid.UUID, input service.UpdateEventInput) (*domain.Event, error)
	deleteFn       func(ctx context.Context, eventID, actorID uuid.UUID) error
	updateStatusFn func(ctx context.Context, eventID uuid.UUID, now time.Time) (*domain.Event, error)
	inviteFn       func(ctx context.Context, eventID, actorID uuid.UUID, guestIDs []uuid.UUID) (int, error)
	countGuestsFn  func(ctx context.Context, eventID uuid.UUID) (int, error)
	sendReminderFn func(ctx context.Context, eventID, actorID uuid.UUID) error
}

var _ service.EventService = (*stubEventService)(nil)

func (s *stubEventService) Create(
	ctx context.Context,
	hostID uuid.UUID,
	input service.CreateEventInput,
) (*domain.Event, error) {
	return s.createFn(ctx, hostID, input)
}

func (s *stubEventService) Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return s.getFn(ctx, eventID)
}

func (s *stubEventService) ListHosted(
	ctx context.Context,
	hostID uuid.UUID,
) ([]*domain.Event, error) {
	return s.listHostedFn(ctx, hostID)
}

func (s *stubEventService) Update(
	ctx context.Context,
	eventID, actorID uuid.UUID,
	input service.UpdateEventInput,
) (*domain.Event, error) {
	return s.updateFn(ctx, eventID, actorID, input)
}

func (s *stubEventService) Delete(ctx context.Context, eventID, actorID uuid.UUID) error {
	return s.deleteFn(ctx, eventID, actorID)
}

func (s *stubEventService) UpdateStatus(
	ctx context.Context,
	eventID uuid.UUID,
	now time.Time,
) (*domain.Event, error) {
	return s.updateStatusFn(ctx, eventID, now)
}

func (s *stubEventService) Invite(
	ctx context.Context,
	eventID, actorID uuid.UUID,
	guestIDs []uuid.UUID,
) (int, error) {
	return s.inviteFn(ctx, eventID, actorID, guestIDs)
}

func (s *stubEventService) CountGuests(ctx context.Context, eventID uuid.UUID) (int, error) {
	return s.countGuestsFn(ctx, eventID)
}

func (s *stubEventService) SendReminder(ctx context.Context, eventID, actorID uuid.UUID) error {
	return s.sendReminderFn(ctx, eventID, actorID)
}
