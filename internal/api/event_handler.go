package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/collab-api/internal/api/shared"
	"github.com/phrazzld/collab-api/internal/service"
)

// EventHandler handles event-related API requests, including the invite
// fan-out and the status check endpoint that re-derives an event's status
// from its time window.
type EventHandler struct {
	eventService service.EventService
	logger       *slog.Logger
	timeFunc     func() time.Time
}

// NewEventHandler creates a new EventHandler with the given dependencies.
func NewEventHandler(eventService service.EventService, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{
		eventService: eventService,
		logger:       logger.With("component", "event_handler"),
		timeFunc:     time.Now,
	}
}

// Create handles POST /events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	var req CreateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event, err := h.eventService.Create(r.Context(), userID, service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		GuestIDs:    req.GuestIDs,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create event")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, event)
}

// List handles GET /events, returning events hosted by the caller.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	events, err := h.eventService.ListHosted(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list events")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, events)
}

// Get handles GET /events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, eventID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	event, err := h.eventService.Get(r.Context(), eventID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve event")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, event)
}

// Update handles PATCH /events/{id}. Status fields in the payload are
// ignored: event status is derived, never written directly.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event, err := h.eventService.Update(r.Context(), eventID, userID, service.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update event")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, event)
}

// Delete handles DELETE /events/{id}.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.eventService.Delete(r.Context(), eventID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete event")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// Invite handles POST /events/{id}/invite, inviting guests to the event.
// Duplicate invitations are absorbed; the response reports the total guest
// count after the fan-out.
func (h *EventHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req InviteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	count, err := h.eventService.Invite(r.Context(), eventID, userID, req.GuestIDs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to invite guests")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: count})
}

// CountGuests handles GET /events/{id}/guests/count, reporting how many
// guests have accepted.
func (h *EventHandler) CountGuests(w http.ResponseWriter, r *http.Request) {
	_, eventID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	count, err := h.eventService.CountGuests(r.Context(), eventID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to count guests")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: count})
}

// Remind handles POST /events/{id}/remind, sending a reminder to the host
// and every accepted guest.
func (h *EventHandler) Remind(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.eventService.SendReminder(r.Context(), eventID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to send reminder")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// Check handles POST /events/{id}/check, re-deriving the event's status from
// its time window and notifying participants on a transition into ongoing or
// ended.
func (h *EventHandler) Check(w http.ResponseWriter, r *http.Request) {
	_, eventID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	event, err := h.eventService.UpdateStatus(r.Context(), eventID, h.timeFunc())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check event status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, event)
}
