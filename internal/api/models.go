package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/collab-api/internal/domain"
)

// dueDateLayout is the wire format for task due dates, which carry date
// precision only.
const dueDateLayout = "2006-01-02"

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	Password    string `json:"password"     validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateTaskRequest defines the payload for task creation. DueDate is a
// date-precision string (YYYY-MM-DD). AssigneeIDs may be empty.
type CreateTaskRequest struct {
	Title       string      `json:"title"        validate:"required,min=1,max=100"`
	Description string      `json:"description"  validate:"max=2000"`
	DueDate     string      `json:"due_date"     validate:"omitempty,datetime=2006-01-02"`
	AssigneeIDs []uuid.UUID `json:"assignee_ids" validate:"omitempty,dive,required"`
}

// UpdateTaskRequest defines the payload for task updates. Absent fields are
// left unchanged. A status field, if sent, is ignored: task status is derived.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	DueDate     *string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
}

// CreateAssignmentRequest defines the payload for assignment creation.
type CreateAssignmentRequest struct {
	TaskID uuid.UUID `json:"task_id" validate:"required"`
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// CreateEventRequest defines the payload for event creation. GuestIDs may be
// empty.
type CreateEventRequest struct {
	Title       string      `json:"title"       validate:"required,min=1,max=100"`
	Description string      `json:"description" validate:"max=2000"`
	StartTime   time.Time   `json:"start_time"  validate:"required"`
	EndTime     time.Time   `json:"end_time"    validate:"required"`
	GuestIDs    []uuid.UUID `json:"guest_ids"   validate:"omitempty,dive,required"`
}

// UpdateEventRequest defines the payload for event updates. Absent fields are
// left unchanged. A status field, if sent, is ignored: event status is derived.
type UpdateEventRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

// InviteRequest defines the payload for the event invite fan-out endpoint.
type InviteRequest struct {
	GuestIDs []uuid.UUID `json:"guest_ids" validate:"required,min=1,dive,required"`
}

// CreateNoteRequest defines the payload for note creation.
type CreateNoteRequest struct {
	Title   string `json:"title"   validate:"required,min=1,max=100"`
	Content string `json:"content" validate:"max=10000"`
}

// UpdateNoteRequest defines the payload for note updates. Absent fields are
// left unchanged.
type UpdateNoteRequest struct {
	Title   *string `json:"title"   validate:"omitempty,min=1,max=100"`
	Content *string `json:"content" validate:"omitempty,max=10000"`
}

// UserResponse is the public view of a user: identifier and display name
// only, never the email or password hash.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

// NewUserResponse converts a domain user to its public view.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		DisplayName: user.DisplayName,
	}
}

// CountResponse reports a single count, used by the guest count and
// notification fan-out endpoints.
type CountResponse struct {
	Count int `json:"count"`
}

// MarkAllReadResponse reports how many notifications were marked read.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// parseDueDate parses the wire due date into a UTC midnight time.
// An empty string yields nil.
func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dueDateLayout, value, time.UTC)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
