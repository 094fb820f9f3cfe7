package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the time-derived lifecycle state of an event.
//
// Status is computed purely from the current time against the event's
// [start, end] window; it is never set directly by API callers. Deletion is
// the only terminal operation reachable before an event's end time. There is
// no cancelled status: cancelled events were migrated to deletion.
type EventStatus string

// Possible event status values
const (
	EventStatusUpcoming EventStatus = "upcoming"
	EventStatusOngoing  EventStatus = "ongoing"
	EventStatusEnded    EventStatus = "ended"
)

// Common validation errors for Event
var (
	ErrEmptyEventID       = errors.New("event ID cannot be empty")
	ErrEmptyEventTitle    = errors.New("event title cannot be empty")
	ErrEventTitleTooLong  = errors.New("event title must be at most 100 characters long")
	ErrInvalidEventStatus = errors.New("invalid event status")
	ErrEventTimesInvalid  = errors.New("event end time must not be before start time")
)

// Event represents a scheduled gathering hosted by a user, with guests
// attached through invitations.
type Event struct {
	ID          uuid.UUID   `json:"id"`
	HostID      *uuid.UUID  `json:"host_id,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewEvent creates a new upcoming Event with the given host, title,
// description, and time window. Returns an error if validation fails.
func NewEvent(hostID *uuid.UUID, title, description string, start, end time.Time) (*Event, error) {
	event := &Event{
		ID:          uuid.New(),
		HostID:      hostID,
		Title:       title,
		Description: description,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		Status:      EventStatusUpcoming,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the Event has valid data.
// Returns an error if any field fails validation.
func (e *Event) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEventID
	}

	if e.Title == "" {
		return ErrEmptyEventTitle
	}

	if len(e.Title) > 100 {
		return ErrEventTitleTooLong
	}

	if e.EndTime.Before(e.StartTime) {
		return ErrEventTimesInvalid
	}

	if !IsValidEventStatus(e.Status) {
		return ErrInvalidEventStatus
	}

	return nil
}

// StatusAt derives the event's status from the given instant:
// before the start it is upcoming, within [start, end] it is ongoing,
// and after the end it is ended.
func (e *Event) StatusAt(now time.Time) EventStatus {
	if now.Before(e.StartTime) {
		return EventStatusUpcoming
	}
	if !now.After(e.EndTime) {
		return EventStatusOngoing
	}
	return EventStatusEnded
}

// IsValidEventStatus checks if the given status is a valid EventStatus.
func IsValidEventStatus(status EventStatus) bool {
	switch status {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusEnded:
		return true
	default:
		return false
	}
}
