package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
)

// NotificationStore defines the interface for notification data persistence.
// Notifications are write-once except for the read flag.
type NotificationStore interface {
	// Create saves a new notification to the store.
	Create(ctx context.Context, notification *domain.Notification) error

	// ListByUser retrieves all notifications addressed to the given user,
	// newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// MarkRead sets the read flag on a single notification owned by the
	// given user. Returns ErrNotificationNotFound if no such notification
	// exists for that user.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error

	// MarkAllRead sets the read flag on every unread notification addressed
	// to the given user. Returns the number of rows updated.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)

	// WithTx returns a new NotificationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) NotificationStore
}
