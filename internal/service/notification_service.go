package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/store"
)

// NotificationService provides read access to a user's notification feed.
type NotificationService interface {
	// ListOwn retrieves the user's notifications, newest first.
	ListOwn(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// MarkRead flags a single notification as read. Only the addressee may
	// mark it; anyone else sees not-found.
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error

	// MarkAllRead flags every unread notification for the user, returning
	// the number updated.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// notificationServiceImpl implements the NotificationService interface
type notificationServiceImpl struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewNotificationService creates a new NotificationService.
// It returns an error if any of the required dependencies are nil.
func NewNotificationService(
	notifications store.NotificationStore,
	logger *slog.Logger,
) (NotificationService, error) {
	if notifications == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "notifications cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &notificationServiceImpl{
		notifications: notifications,
		logger:        logger.With("component", "notification_service"),
	}, nil
}

// ListOwn retrieves the user's notifications.
func (s *notificationServiceImpl) ListOwn(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_notifications", "failed to list notifications", err)
	}
	return notifications, nil
}

// MarkRead flags a single notification as read.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, notificationID, userID); err != nil {
		return NewServiceError("mark_read", "failed to mark notification read", err)
	}
	return nil
}

// MarkAllRead flags every unread notification for the user.
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, NewServiceError("mark_all_read", "failed to mark notifications read", err)
	}

	s.logger.Debug("notifications marked read",
		"user_id", userID,
		"count", count)
	return count, nil
}
