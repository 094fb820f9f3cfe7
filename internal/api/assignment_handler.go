package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/collab-api/internal/api/shared"
	"github.com/phrazzld/collab-api/internal/service"
)

// AssignmentHandler handles assignment-related API requests.
type AssignmentHandler struct {
	assignmentService service.AssignmentService
	logger            *slog.Logger
	timeFunc          func() time.Time
}

// NewAssignmentHandler creates a new AssignmentHandler with the given
// dependencies.
func NewAssignmentHandler(
	assignmentService service.AssignmentService,
	logger *slog.Logger,
) *AssignmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentHandler{
		assignmentService: assignmentService,
		logger:            logger.With("component", "assignment_handler"),
		timeFunc:          time.Now,
	}
}

// Create handles POST /assignments, assigning a user to a task.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	var req CreateAssignmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	assignment, err := h.assignmentService.Create(r.Context(), req.TaskID, req.UserID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create assignment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, assignment)
}

// List handles GET /assignments, returning assignments where the caller is
// the assignee.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	assignments, err := h.assignmentService.ListOwn(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list assignments")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, assignments)
}

// Get handles GET /assignments/{id}.
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, assignmentID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Get(r.Context(), assignmentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve assignment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, assignment)
}

// Complete handles POST /assignments/{id}/complete. Only the assignee may
// complete their own assignment; completion cascades into a task status
// check.
func (h *AssignmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, assignmentID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Complete(r.Context(), assignmentID, userID, h.timeFunc())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete assignment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, assignment)
}

// Delete handles DELETE /assignments/{id}.
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, assignmentID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.assignmentService.Delete(r.Context(), assignmentID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete assignment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}
