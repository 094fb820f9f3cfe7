package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/collab-api/internal/api/shared"
	"github.com/phrazzld/collab-api/internal/service"
)

// NoteHandler handles personal note API requests. Notes are private to
// their owner.
type NoteHandler struct {
	noteService service.NoteService
	logger      *slog.Logger
}

// NewNoteHandler creates a new NoteHandler with the given dependencies.
func NewNoteHandler(noteService service.NoteService, logger *slog.Logger) *NoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteHandler{
		noteService: noteService,
		logger:      logger.With("component", "note_handler"),
	}
}

// Create handles POST /notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	var req CreateNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	note, err := h.noteService.Create(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create note")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, note)
}

// List handles GET /notes.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	notes, err := h.noteService.ListOwn(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notes")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notes)
}

// Get handles GET /notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	note, err := h.noteService.Get(r.Context(), noteID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve note")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, note)
}

// Update handles PATCH /notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	note, err := h.noteService.Update(r.Context(), noteID, userID, service.UpdateNoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update note")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, note)
}

// Delete handles DELETE /notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.noteService.Delete(r.Context(), noteID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete note")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}
