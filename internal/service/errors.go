package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/collab-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in the ServiceError type
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrForbidden indicates a resource is owned by a different user than the
	// one making the request. API layer should map this to HTTP 403 Forbidden.
	ErrForbidden = errors.New("resource is owned by another user")

	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrTaskNotFound indicates that the task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAssignmentNotFound indicates that the assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrEventNotFound indicates that the event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrInvitationNotFound indicates that the invitation does not exist.
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrNotificationNotFound indicates that the notification does not exist
	// or belongs to another user.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrNoteNotFound indicates that the note does not exist.
	ErrNoteNotFound = errors.New("note not found")

	// ErrEmailExists indicates the email address is already registered.
	ErrEmailExists = errors.New("email address is already registered")

	// ErrDuplicateAssignment indicates the user is already assigned to the task.
	ErrDuplicateAssignment = errors.New("user is already assigned to this task")
)

// ServiceError wraps errors from the service layer with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "refresh_status", "invite")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// sentinelPairs maps store-level not-found and duplicate errors to their
// service-level counterparts.
var sentinelPairs = []struct {
	storeErr   error
	serviceErr error
}{
	{store.ErrUserNotFound, ErrUserNotFound},
	{store.ErrTaskNotFound, ErrTaskNotFound},
	{store.ErrAssignmentNotFound, ErrAssignmentNotFound},
	{store.ErrEventNotFound, ErrEventNotFound},
	{store.ErrInvitationNotFound, ErrInvitationNotFound},
	{store.ErrNotificationNotFound, ErrNotificationNotFound},
	{store.ErrNoteNotFound, ErrNoteNotFound},
	{store.ErrEmailExists, ErrEmailExists},
	{store.ErrDuplicateAssignment, ErrDuplicateAssignment},
}

// NewServiceError creates a new ServiceError. Known sentinel errors, and
// store errors with a service-level counterpart, are returned directly
// without wrapping so callers can keep using errors.Is.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrForbidden) {
		return ErrForbidden
	}

	for _, pair := range sentinelPairs {
		if errors.Is(err, pair.serviceErr) {
			return pair.serviceErr
		}
		if errors.Is(err, pair.storeErr) {
			return pair.serviceErr
		}
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
