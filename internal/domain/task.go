package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
//
// Once a task has assignments, its status is derived from assignment state
// and the current date by the reconciliation layer; it is never set directly
// by API callers.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending  TaskStatus = "pending"
	TaskStatusComplete TaskStatus = "complete"
	TaskStatusOverdue  TaskStatus = "overdue"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong  = errors.New("task title must be at most 100 characters long")
	ErrInvalidTaskStatus = errors.New("invalid task status")
)

// Task represents a unit of work created by an owner and carried out by
// assignees. The owner is optional; ownerless tasks are permitted and simply
// produce no owner-facing notifications.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"` // date precision, midnight UTC
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task in pending status with the given owner, title,
// description, and optional due date. Returns an error if validation fails.
func NewTask(ownerID *uuid.UUID, title, description string, dueDate *time.Time) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Status:      TaskStatusPending,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len(t.Title) > 100 {
		return ErrTaskTitleTooLong
	}

	if !IsValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// IsDueBefore reports whether the task has a due date strictly before the
// given day. The comparison is at date precision.
func (t *Task) IsDueBefore(day time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	due := DateOf(*t.DueDate)
	return due.Before(DateOf(day))
}

// IsValidTaskStatus checks if the given status is a valid TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusComplete, TaskStatusOverdue:
		return true
	default:
		return false
	}
}

// DateOf truncates a time to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
