package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Note
var (
	ErrEmptyNoteID      = errors.New("note ID cannot be empty")
	ErrEmptyNoteTitle   = errors.New("note title cannot be empty")
	ErrNoteTitleTooLong = errors.New("note title must be at most 100 characters long")
)

// Note is a free-form text entry owned by a user. Notes take no part in the
// reconciliation lifecycle; they are plain CRUD records.
type Note struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewNote creates a new Note with the given owner, title, and content.
// Returns an error if validation fails.
func NewNote(ownerID *uuid.UUID, title, content string) (*Note, error) {
	note := &Note{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	return note, nil
}

// Validate checks if the Note has valid data.
func (n *Note) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNoteID
	}

	if n.Title == "" {
		return ErrEmptyNoteTitle
	}

	if len(n.Title) > 100 {
		return ErrNoteTitleTooLong
	}

	return nil
}
