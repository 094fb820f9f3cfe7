package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/store"
)

// sentNotification records one Notify call for assertions.
type sentNotification struct {
	UserID  uuid.UUID
	Type    domain.NotificationType
	Message string
	TaskID  *uuid.UUID
	EventID *uuid.UUID
}

// recordingNotifier captures notifications instead of persisting them.
type recordingNotifier struct {
	sent []sentNotification
}

func (n *recordingNotifier) Notify(
	_ context.Context,
	userID uuid.UUID,
	notificationType domain.NotificationType,
	message string,
	taskID, eventID *uuid.UUID,
) {
	n.sent = append(n.sent, sentNotification{
		UserID:  userID,
		Type:    notificationType,
		Message: message,
		TaskID:  taskID,
		EventID: eventID,
	})
}

// ofType returns the captured notifications of the given type.
func (n *recordingNotifier) ofType(t domain.NotificationType) []sentNotification {
	var out []sentNotification
	for _, s := range n.sent {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

// --- fakeTaskStore ---

type fakeTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *fakeTaskStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.OwnerID != nil && *task.OwnerID == ownerID {
			copied := *task
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *fakeTaskStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TaskStatus) error {
	task, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	return nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeTaskStore) FindSweepOverdueCandidates(
	_ context.Context,
	day time.Time,
	includeToday bool,
) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range s.tasks {
		if taskSweepDue(task, day, includeToday) {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) MarkOverdueWhereDue(
	_ context.Context,
	day time.Time,
	includeToday bool,
) (int64, error) {
	var count int64
	for _, task := range s.tasks {
		if taskSweepDue(task, day, includeToday) {
			task.Status = domain.TaskStatusOverdue
			count++
		}
	}
	return count, nil
}

func taskSweepDue(task *domain.Task, day time.Time, includeToday bool) bool {
	if task.Status != domain.TaskStatusPending || task.DueDate == nil {
		return false
	}
	due := domain.DateOf(*task.DueDate)
	ref := domain.DateOf(day)
	if includeToday {
		return !due.After(ref)
	}
	return due.Before(ref)
}

func (s *fakeTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return s }

// --- fakeAssignmentStore ---

type fakeAssignmentStore struct {
	assignments map[uuid.UUID]*domain.Assignment
	tasks       *fakeTaskStore
}

var _ store.AssignmentStore = (*fakeAssignmentStore)(nil)

func newFakeAssignmentStore(tasks *fakeTaskStore) *fakeAssignmentStore {
	return &fakeAssignmentStore{
		assignments: make(map[uuid.UUID]*domain.Assignment),
		tasks:       tasks,
	}
}

func (s *fakeAssignmentStore) Create(_ context.Context, assignment *domain.Assignment) error {
	for _, existing := range s.assignments {
		if existing.TaskID == assignment.TaskID && existing.UserID == assignment.UserID {
			return store.ErrDuplicateAssignment
		}
	}
	copied := *assignment
	s.assignments[assignment.ID] = &copied
	return nil
}

func (s *fakeAssignmentStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Assignment, error) {
	assignment, ok := s.assignments[id]
	if !ok {
		return nil, store.ErrAssignmentNotFound
	}
	copied := *assignment
	return &copied, nil
}

func (s *fakeAssignmentStore) ListByTask(_ context.Context, taskID uuid.UUID) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, assignment := range s.assignments {
		if assignment.TaskID == taskID {
			copied := *assignment
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.Before(out[j].AssignedAt) })
	return out, nil
}

func (s *fakeAssignmentStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, assignment := range s.assignments {
		if assignment.UserID == userID {
			copied := *assignment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeAssignmentStore) Update(_ context.Context, assignment *domain.Assignment) error {
	if _, ok := s.assignments[assignment.ID]; !ok {
		return store.ErrAssignmentNotFound
	}
	copied := *assignment
	s.assignments[assignment.ID] = &copied
	return nil
}

func (s *fakeAssignmentStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.assignments[id]; !ok {
		return store.ErrAssignmentNotFound
	}
	delete(s.assignments, id)
	return nil
}

func (s *fakeAssignmentStore) FindSweepOverdueCandidates(
	_ context.Context,
	day time.Time,
) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, assignment := range s.assignments {
		if s.sweepOverdue(assignment, day) {
			copied := *assignment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeAssignmentStore) MarkOverdueForLapsedTasks(_ context.Context, day time.Time) (int64, error) {
	var count int64
	for _, assignment := range s.assignments {
		if s.sweepOverdue(assignment, day) {
			assignment.Status = domain.AssignmentStatusOverdue
			count++
		}
	}
	return count, nil
}

func (s *fakeAssignmentStore) sweepOverdue(assignment *domain.Assignment, day time.Time) bool {
	if assignment.Status != domain.AssignmentStatusPending {
		return false
	}
	task, ok := s.tasks.tasks[assignment.TaskID]
	if !ok || task.DueDate == nil || task.Status == domain.TaskStatusComplete {
		return false
	}
	return domain.DateOf(*task.DueDate).Before(domain.DateOf(day))
}

func (s *fakeAssignmentStore) FindSweepCompletionCandidates(_ context.Context) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, assignment := range s.assignments {
		if s.sweepComplete(assignment) {
			copied := *assignment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeAssignmentStore) CompleteForCompletedTasks(
	_ context.Context,
	completedAt time.Time,
) (int64, error) {
	var count int64
	for _, assignment := range s.assignments {
		if s.sweepComplete(assignment) {
			assignment.Status = domain.AssignmentStatusCompleted
			stamped := completedAt
			assignment.CompletedAt = &stamped
			count++
		}
	}
	return count, nil
}

func (s *fakeAssignmentStore) sweepComplete(assignment *domain.Assignment) bool {
	if assignment.Status != domain.AssignmentStatusPending {
		return false
	}
	task, ok := s.tasks.tasks[assignment.TaskID]
	return ok && task.Status == domain.TaskStatusComplete
}

func (s *fakeAssignmentStore) WithTx(_ *sql.Tx) store.AssignmentStore { return s }

// --- fakeEventStore ---

type fakeEventStore struct {
	events map[uuid.UUID]*domain.Event
}

var _ store.EventStore = (*fakeEventStore)(nil)

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[uuid.UUID]*domain.Event)}
}

func (s *fakeEventStore) Create(_ context.Context, event *domain.Event) error {
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *fakeEventStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, store.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (s *fakeEventStore) ListByHost(_ context.Context, hostID uuid.UUID) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, event := range s.events {
		if event.HostID != nil && *event.HostID == hostID {
			copied := *event
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *fakeEventStore) Update(_ context.Context, event *domain.Event) error {
	if _, ok := s.events[event.ID]; !ok {
		return store.ErrEventNotFound
	}
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *fakeEventStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.EventStatus) error {
	event, ok := s.events[id]
	if !ok {
		return store.ErrEventNotFound
	}
	event.Status = status
	return nil
}

func (s *fakeEventStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.events[id]; !ok {
		return store.ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *fakeEventStore) FindSweepStartCandidates(_ context.Context, now time.Time) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, event := range s.events {
		if eventSweepStart(event, now) {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeEventStore) MarkOngoingWhereStarted(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, event := range s.events {
		if eventSweepStart(event, now) {
			event.Status = domain.EventStatusOngoing
			count++
		}
	}
	return count, nil
}

func eventSweepStart(event *domain.Event, now time.Time) bool {
	return event.Status == domain.EventStatusUpcoming &&
		!event.StartTime.After(now) && event.EndTime.After(now)
}

func (s *fakeEventStore) FindSweepEndCandidates(_ context.Context, now time.Time) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, event := range s.events {
		if eventSweepEnd(event, now) {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeEventStore) MarkEndedWherePast(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, event := range s.events {
		if eventSweepEnd(event, now) {
			event.Status = domain.EventStatusEnded
			count++
		}
	}
	return count, nil
}

func eventSweepEnd(event *domain.Event, now time.Time) bool {
	return event.Status != domain.EventStatusEnded && event.EndTime.Before(now)
}

func (s *fakeEventStore) WithTx(_ *sql.Tx) store.EventStore { return s }

// --- fakeInvitationStore ---

type fakeInvitationStore struct {
	invitations map[uuid.UUID]*domain.Invitation
}

var _ store.InvitationStore = (*fakeInvitationStore)(nil)

func newFakeInvitationStore() *fakeInvitationStore {
	return &fakeInvitationStore{invitations: make(map[uuid.UUID]*domain.Invitation)}
}

func (s *fakeInvitationStore) Create(_ context.Context, invitation *domain.Invitation) error {
	for _, existing := range s.invitations {
		if existing.EventID == invitation.EventID && existing.GuestID == invitation.GuestID {
			return store.ErrDuplicateInvitation
		}
	}
	copied := *invitation
	s.invitations[invitation.ID] = &copied
	return nil
}

func (s *fakeInvitationStore) GetOrCreate(
	ctx context.Context,
	eventID, guestID uuid.UUID,
) (*domain.Invitation, bool, error) {
	for _, existing := range s.invitations {
		if existing.EventID == eventID && existing.GuestID == guestID {
			copied := *existing
			return &copied, false, nil
		}
	}
	invitation, err := domain.NewInvitation(eventID, guestID)
	if err != nil {
		return nil, false, err
	}
	if err := s.Create(ctx, invitation); err != nil {
		return nil, false, err
	}
	return invitation, true, nil
}

func (s *fakeInvitationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Invitation, error) {
	invitation, ok := s.invitations[id]
	if !ok {
		return nil, store.ErrInvitationNotFound
	}
	copied := *invitation
	return &copied, nil
}

func (s *fakeInvitationStore) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*domain.Invitation, error) {
	var out []*domain.Invitation
	for _, invitation := range s.invitations {
		if invitation.EventID == eventID {
			copied := *invitation
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvitedAt.Before(out[j].InvitedAt) })
	return out, nil
}

func (s *fakeInvitationStore) ListByEventAndStatus(
	ctx context.Context,
	eventID uuid.UUID,
	status domain.InvitationStatus,
) ([]*domain.Invitation, error) {
	all, _ := s.ListByEvent(ctx, eventID)
	var out []*domain.Invitation
	for _, invitation := range all {
		if invitation.Status == status {
			out = append(out, invitation)
		}
	}
	return out, nil
}

func (s *fakeInvitationStore) ListByGuest(_ context.Context, guestID uuid.UUID) ([]*domain.Invitation, error) {
	var out []*domain.Invitation
	for _, invitation := range s.invitations {
		if invitation.GuestID == guestID {
			copied := *invitation
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeInvitationStore) CountByEventAndStatus(
	ctx context.Context,
	eventID uuid.UUID,
	status domain.InvitationStatus,
) (int, error) {
	matching, _ := s.ListByEventAndStatus(ctx, eventID, status)
	return len(matching), nil
}

func (s *fakeInvitationStore) Update(_ context.Context, invitation *domain.Invitation) error {
	if _, ok := s.invitations[invitation.ID]; !ok {
		return store.ErrInvitationNotFound
	}
	copied := *invitation
	s.invitations[invitation.ID] = &copied
	return nil
}

func (s *fakeInvitationStore) WithTx(_ *sql.Tx) store.InvitationStore { return s }

// --- fakeUserStore ---

type fakeUserStore struct {
	users map[uuid.UUID]*domain.User
}

var _ store.UserStore = (*fakeUserStore)(nil)

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) List(_ context.Context, excludeID uuid.UUID) ([]*domain.User, error) {
	var out []*domain.User
	for _, user := range s.users {
		if user.ID != excludeID {
			copied := *user
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (s *fakeUserStore) WithTx(_ *sql.Tx) store.UserStore { return s }

// --- fakeNotificationStore ---

type fakeNotificationStore struct {
	notifications map[uuid.UUID]*domain.Notification
}

var _ store.NotificationStore = (*fakeNotificationStore)(nil)

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{notifications: make(map[uuid.UUID]*domain.Notification)}
}

func (s *fakeNotificationStore) Create(_ context.Context, notification *domain.Notification) error {
	copied := *notification
	s.notifications[notification.ID] = &copied
	return nil
}

func (s *fakeNotificationStore) ListByUser(
	_ context.Context,
	userID uuid.UUID,
) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, notification := range s.notifications {
		if notification.UserID == userID {
			copied := *notification
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeNotificationStore) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	notification, ok := s.notifications[id]
	if !ok || notification.UserID != userID {
		return store.ErrNotificationNotFound
	}
	notification.IsRead = true
	return nil
}

func (s *fakeNotificationStore) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, notification := range s.notifications {
		if notification.UserID == userID && !notification.IsRead {
			notification.IsRead = true
			count++
		}
	}
	return count, nil
}

func (s *fakeNotificationStore) WithTx(_ *sql.Tx) store.NotificationStore { return s }

// --- fakeNoteStore ---

type fakeNoteStore struct {
	notes map[uuid.UUID]*domain.Note
}

var _ store.NoteStore = (*fakeNoteStore)(nil)

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{notes: make(map[uuid.UUID]*domain.Note)}
}

func (s *fakeNoteStore) Create(_ context.Context, note *domain.Note) error {
	copied := *note
	s.notes[note.ID] = &copied
	return nil
}

func (s *fakeNoteStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Note, error) {
	note, ok := s.notes[id]
	if !ok {
		return nil, store.ErrNoteNotFound
	}
	copied := *note
	return &copied, nil
}

func (s *fakeNoteStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Note, error) {
	var out []*domain.Note
	for _, note := range s.notes {
		if note.OwnerID != nil && *note.OwnerID == ownerID {
			copied := *note
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeNoteStore) Update(_ context.Context, note *domain.Note) error {
	if _, ok := s.notes[note.ID]; !ok {
		return store.ErrNoteNotFound
	}
	copied := *note
	s.notes[note.ID] = &copied
	return nil
}

func (s *fakeNoteStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.notes[id]; !ok {
		return store.ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *fakeNoteStore) WithTx(_ *sql.Tx) store.NoteStore { return s }
