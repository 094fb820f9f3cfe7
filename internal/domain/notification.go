package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what kind of state change a notification
// reports. The set is closed: IsValidNotificationType rejects anything not
// listed here, so adding a new kind means adding a constant and extending
// the switch.
type NotificationType string

// Possible notification type values
const (
	NotificationTaskCreated          NotificationType = "task_created"
	NotificationTaskCompleted        NotificationType = "task_completed"
	NotificationTaskOverdue          NotificationType = "task_overdue"
	NotificationTaskDue              NotificationType = "task_due"
	NotificationAssignmentCompleted  NotificationType = "assignment_completed"
	NotificationEventInvited         NotificationType = "event_invited"
	NotificationEventInvitedHost     NotificationType = "event_invited_host"
	NotificationEventReminder        NotificationType = "event_reminder"
	NotificationEventStarted         NotificationType = "event_started"
	NotificationEventEnded           NotificationType = "event_ended"
	NotificationInvitationAccepted   NotificationType = "invitation_accepted"
	NotificationInvitationAcceptedBy NotificationType = "invitation_accepted_host"
	NotificationInvitationRejected   NotificationType = "invitation_rejected"
	NotificationInvitationRejectedBy NotificationType = "invitation_rejected_host"
)

// Common validation errors for Notification
var (
	ErrEmptyNotificationID      = errors.New("notification ID cannot be empty")
	ErrEmptyNotificationUserID  = errors.New("notification user ID cannot be empty")
	ErrEmptyNotificationMessage = errors.New("notification message cannot be empty")
	ErrInvalidNotificationType  = errors.New("invalid notification type")
)

// Notification is a message addressed to exactly one user, with optional
// weak references to the task and/or event it concerns. Notifications are
// write-once except for the read flag, and are listed newest-first.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	TaskID    *uuid.UUID       `json:"task_id,omitempty"`
	EventID   *uuid.UUID       `json:"event_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewNotification creates a new unread Notification addressed to the given
// user. taskID and eventID are optional references to the entities the
// notification concerns. Returns an error if validation fails.
func NewNotification(
	userID uuid.UUID,
	notificationType NotificationType,
	message string,
	taskID, eventID *uuid.UUID,
) (*Notification, error) {
	notification := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notificationType,
		Message:   message,
		TaskID:    taskID,
		EventID:   eventID,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}

	if err := notification.Validate(); err != nil {
		return nil, err
	}

	return notification, nil
}

// Validate checks if the Notification has valid data.
// Returns an error if any field fails validation.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}

	if n.UserID == uuid.Nil {
		return ErrEmptyNotificationUserID
	}

	if n.Message == "" {
		return ErrEmptyNotificationMessage
	}

	if !IsValidNotificationType(n.Type) {
		return ErrInvalidNotificationType
	}

	return nil
}

// IsValidNotificationType checks if the given type is a valid NotificationType.
func IsValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationTaskCreated, NotificationTaskCompleted, NotificationTaskOverdue,
		NotificationTaskDue, NotificationAssignmentCompleted,
		NotificationEventInvited, NotificationEventInvitedHost,
		NotificationEventReminder, NotificationEventStarted, NotificationEventEnded,
		NotificationInvitationAccepted, NotificationInvitationAcceptedBy,
		NotificationInvitationRejected, NotificationInvitationRejectedBy:
		return true
	default:
		return false
	}
}
