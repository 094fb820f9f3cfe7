package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus represents the lifecycle state of an assignment.
type AssignmentStatus string

// Possible assignment status values
const (
	AssignmentStatusPending   AssignmentStatus = "pending"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusOverdue   AssignmentStatus = "overdue"
)

// Legacy assignment status values. No longer written, but old rows may still
// carry them, so the reconciliation layer excludes them when counting
// outstanding assignments.
const (
	AssignmentStatusRejected AssignmentStatus = "rejected"
	AssignmentStatusRemoved  AssignmentStatus = "removed"
)

// Common validation errors for Assignment
var (
	ErrEmptyAssignmentID       = errors.New("assignment ID cannot be empty")
	ErrEmptyAssignmentTaskID   = errors.New("assignment task ID cannot be empty")
	ErrEmptyAssignmentUserID   = errors.New("assignment user ID cannot be empty")
	ErrInvalidAssignmentStatus = errors.New("invalid assignment status")
)

// Assignment links one task to one assignee. At most one assignment may
// exist per (task, user) pair; the store enforces this with a unique
// constraint. Assignments are never deleted automatically.
type Assignment struct {
	ID           uuid.UUID        `json:"id"`
	TaskID       uuid.UUID        `json:"task_id"`
	UserID       uuid.UUID        `json:"user_id"`
	AssignedByID *uuid.UUID       `json:"assigned_by_id,omitempty"`
	Status       AssignmentStatus `json:"status"`
	AssignedAt   time.Time        `json:"assigned_at"`
	AcceptedAt   *time.Time       `json:"accepted_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// NewAssignment creates a new pending Assignment linking the given task and
// assignee. Returns an error if validation fails.
func NewAssignment(taskID, userID uuid.UUID, assignedByID *uuid.UUID) (*Assignment, error) {
	assignment := &Assignment{
		ID:           uuid.New(),
		TaskID:       taskID,
		UserID:       userID,
		AssignedByID: assignedByID,
		Status:       AssignmentStatusPending,
		AssignedAt:   time.Now().UTC(),
	}

	if err := assignment.Validate(); err != nil {
		return nil, err
	}

	return assignment, nil
}

// Validate checks if the Assignment has valid data.
// Returns an error if any field fails validation.
func (a *Assignment) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAssignmentID
	}

	if a.TaskID == uuid.Nil {
		return ErrEmptyAssignmentTaskID
	}

	if a.UserID == uuid.Nil {
		return ErrEmptyAssignmentUserID
	}

	if !IsValidAssignmentStatus(a.Status) {
		return ErrInvalidAssignmentStatus
	}

	return nil
}

// IsOutstanding reports whether the assignment still counts toward the
// parent task's remaining work. Completed assignments and rows carrying
// legacy rejected/removed statuses do not.
func (a *Assignment) IsOutstanding() bool {
	switch a.Status {
	case AssignmentStatusCompleted, AssignmentStatusRejected, AssignmentStatusRemoved:
		return false
	default:
		return true
	}
}

// IsValidAssignmentStatus checks if the given status is a valid AssignmentStatus,
// including the legacy values that may persist on old rows.
func IsValidAssignmentStatus(status AssignmentStatus) bool {
	switch status {
	case AssignmentStatusPending, AssignmentStatusCompleted, AssignmentStatusOverdue,
		AssignmentStatusRejected, AssignmentStatusRemoved:
		return true
	default:
		return false
	}
}
