package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/collab-api/internal/api/shared"
	"github.com/phrazzld/collab-api/internal/service"
)

// NotificationHandler handles notification feed API requests.
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler with the given
// dependencies.
func NewNotificationHandler(
	notificationService service.NotificationService,
	logger *slog.Logger,
) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger.With("component", "notification_handler"),
	}
}

// List handles GET /notifications, returning the caller's notifications
// newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	notifications, err := h.notificationService.ListOwn(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notifications")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notifications)
}

// MarkRead handles POST /notifications/{id}/read. Notifications addressed
// to other users are reported as not found.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, notificationID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), notificationID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to mark notification read")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// MarkAllRead handles POST /notifications/read-all, returning how many
// notifications were updated.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	count, err := h.notificationService.MarkAllRead(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to mark notifications read")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MarkAllReadResponse{Updated: count})
}
