package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/collab-api/internal/api/shared"
	"github.com/phrazzld/collab-api/internal/service"
)

// InvitationHandler handles invitation-related API requests.
type InvitationHandler struct {
	invitationService service.InvitationService
	logger            *slog.Logger
	timeFunc          func() time.Time
}

// NewInvitationHandler creates a new InvitationHandler with the given
// dependencies.
func NewInvitationHandler(
	invitationService service.InvitationService,
	logger *slog.Logger,
) *InvitationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvitationHandler{
		invitationService: invitationService,
		logger:            logger.With("component", "invitation_handler"),
		timeFunc:          time.Now,
	}
}

// List handles GET /invitations, returning invitations where the caller is
// the guest.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	invitations, err := h.invitationService.ListOwn(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list invitations")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, invitations)
}

// Accept handles POST /invitations/{id}/accept. Re-accepting an already
// answered invitation re-stamps the response time and re-notifies both
// parties.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, invitationID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	invitation, err := h.invitationService.Accept(r.Context(), invitationID, userID, h.timeFunc())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to accept invitation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, invitation)
}

// Decline handles POST /invitations/{id}/decline.
func (h *InvitationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	userID, invitationID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	invitation, err := h.invitationService.Decline(r.Context(), invitationID, userID, h.timeFunc())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to decline invitation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, invitation)
}
