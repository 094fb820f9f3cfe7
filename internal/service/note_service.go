package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/store"
)

// UpdateNoteInput carries the patchable note fields. Nil fields are left
// unchanged.
type UpdateNoteInput struct {
	Title   *string
	Content *string
}

// NoteService provides personal note operations. Notes are private to their
// owner and never emit notifications.
type NoteService interface {
	// Create creates a note owned by ownerID.
	Create(ctx context.Context, ownerID uuid.UUID, title, content string) (*domain.Note, error)

	// Get retrieves a note by ID. Only the owner may see it.
	Get(ctx context.Context, noteID, actorID uuid.UUID) (*domain.Note, error)

	// ListOwn retrieves the notes owned by the given user, newest first.
	ListOwn(ctx context.Context, ownerID uuid.UUID) ([]*domain.Note, error)

	// Update patches a note. Only the owner may update it.
	Update(ctx context.Context, noteID, actorID uuid.UUID, input UpdateNoteInput) (*domain.Note, error)

	// Delete removes a note. Only the owner may delete it.
	Delete(ctx context.Context, noteID, actorID uuid.UUID) error
}

// noteServiceImpl implements the NoteService interface
type noteServiceImpl struct {
	notes  store.NoteStore
	logger *slog.Logger
}

// NewNoteService creates a new NoteService.
// It returns an error if any of the required dependencies are nil.
func NewNoteService(notes store.NoteStore, logger *slog.Logger) (NoteService, error) {
	if notes == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "notes cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &noteServiceImpl{
		notes:  notes,
		logger: logger.With("component", "note_service"),
	}, nil
}

// Create creates a note.
func (s *noteServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	title, content string,
) (*domain.Note, error) {
	note, err := domain.NewNote(&ownerID, title, content)
	if err != nil {
		return nil, NewServiceError("create_note", "invalid note", err)
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, NewServiceError("create_note", "failed to save note", err)
	}

	s.logger.Info("note created", "note_id", note.ID, "owner_id", ownerID)
	return note, nil
}

// Get retrieves a note after verifying ownership.
func (s *noteServiceImpl) Get(ctx context.Context, noteID, actorID uuid.UUID) (*domain.Note, error) {
	return s.getOwnedNote(ctx, "get_note", noteID, actorID)
}

// ListOwn retrieves the caller's notes.
func (s *noteServiceImpl) ListOwn(ctx context.Context, ownerID uuid.UUID) ([]*domain.Note, error) {
	notes, err := s.notes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, NewServiceError("list_notes", "failed to list notes", err)
	}
	return notes, nil
}

// Update patches a note after verifying ownership.
func (s *noteServiceImpl) Update(
	ctx context.Context,
	noteID, actorID uuid.UUID,
	input UpdateNoteInput,
) (*domain.Note, error) {
	note, err := s.getOwnedNote(ctx, "update_note", noteID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		note.Title = *input.Title
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	note.UpdatedAt = time.Now().UTC()

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, NewServiceError("update_note", "failed to save note", err)
	}

	return note, nil
}

// Delete removes a note after verifying ownership.
func (s *noteServiceImpl) Delete(ctx context.Context, noteID, actorID uuid.UUID) error {
	if _, err := s.getOwnedNote(ctx, "delete_note", noteID, actorID); err != nil {
		return err
	}

	if err := s.notes.Delete(ctx, noteID); err != nil {
		return NewServiceError("delete_note", "failed to delete note", err)
	}

	s.logger.Info("note deleted", "note_id", noteID, "actor_id", actorID)
	return nil
}

// getOwnedNote loads the note and verifies the actor owns it.
func (s *noteServiceImpl) getOwnedNote(
	ctx context.Context,
	operation string,
	noteID, actorID uuid.UUID,
) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, NewServiceError(operation, "failed to retrieve note", err)
	}

	if note.OwnerID == nil || *note.OwnerID != actorID {
		return nil, ErrForbidden
	}
	return note, nil
}
