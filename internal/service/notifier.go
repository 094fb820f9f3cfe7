package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/store"
)

// Notifier delivers in-app notifications to users. Delivery is
// fire-and-forget: reconcilers never fail because a notification could
// not be written.
type Notifier interface {
	// Notify records a notification of the given type for the user. taskID
	// and eventID optionally link the notification to the entity it
	// concerns.
	Notify(
		ctx context.Context,
		userID uuid.UUID,
		notificationType domain.NotificationType,
		message string,
		taskID, eventID *uuid.UUID,
	)
}

// storeNotifier persists notifications through a NotificationStore. Failures
// are logged and swallowed.
type storeNotifier struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewStoreNotifier creates a Notifier backed by the given notification store.
// If logger is nil, a default logger will be used.
func NewStoreNotifier(notifications store.NotificationStore, logger *slog.Logger) Notifier {
	if notifications == nil {
		panic("notifications cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &storeNotifier{
		notifications: notifications,
		logger:        logger.With("component", "notifier"),
	}
}

// Notify implements Notifier.Notify
func (n *storeNotifier) Notify(
	ctx context.Context,
	userID uuid.UUID,
	notificationType domain.NotificationType,
	message string,
	taskID, eventID *uuid.UUID,
) {
	notification, err := domain.NewNotification(userID, notificationType, message, taskID, eventID)
	if err != nil {
		n.logger.Error("failed to build notification",
			"error", err,
			"user_id", userID,
			"type", notificationType)
		return
	}

	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("failed to deliver notification",
			"error", err,
			"user_id", userID,
			"type", notificationType)
	}
}
