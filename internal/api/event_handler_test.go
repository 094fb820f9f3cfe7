package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/collab-api/internal/api/shared"
	"github.com/phrazzld/collab-api/internal/domain"
	"github.com/phrazzld/collab-api/internal/service"
)

func TestEventHandlerCreate_RejectsInvertedWindow(t *testing.T) {
	userID := uuid.New()

	stub := &stubEventService{
		createFn: func(ctx context.Context, hostID uuid.UUID, input service.CreateEventInput) (*domain.Event, error) {
			return nil, domain.ErrEventTimesInvalid
		},
	}
	handler := NewEventHandler(stub, discardLogger())

	body := []byte(`{"title":"Backwards","start_time":"2026-09-02T12:00:00Z","end_time":"2026-09-02T10:00:00Z"}`)
	req := newTaskRequest(http.MethodPost, "/events", body, userID, "")
	rr := httptest.NewRecorder()

	handler.Create(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var errResp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
	assert.Contains(t, errResp.Error, "end time")
}

func TestEventHandlerInvite(t *testing.T) {
	userID := uuid.New()
	eventID := uuid.New()
	guestA := uuid.New()
	guestB := uuid.New()

	t.Run("host invites guests", func(t *testing.T) {
		stub := &stubEventService{
			inviteFn: func(ctx context.Context, id, actorID uuid.UUID, guestIDs []uuid.UUID) (int, error) {
				assert.Equal(t, eventID, id)
				assert.Equal(t, userID, actorID)
				assert.Equal(t, []uuid.UUID{guestA, guestB}, guestIDs)
				return 2, nil
			},
		}
		handler := NewEventHandler(stub, discardLogger())

		body := []byte(`{"guest_ids":["` + guestA.String() + `","` + guestB.String() + `"]}`)
		req := newTaskRequest(
			http.MethodPost, "/events/"+eventID.String()+"/invite", body, userID, eventID.String())
		rr := httptest.NewRecorder()

		handler.Invite(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp CountResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("empty guest list is rejected", func(t *testing.T) {
		handler := NewEventHandler(&stubEventService{}, discardLogger())

		body := []byte(`{"guest_ids":[]}`)
		req := newTaskRequest(
			http.MethodPost, "/events/"+eventID.String()+"/invite", body, userID, eventID.String())
		rr := httptest.NewRecorder()

		handler.Invite(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-host is forbidden", func(t *testing.T) {
		stub := &stubEventService{
			inviteFn: func(ctx context.Context, id, actorID uuid.UUID, guestIDs []uuid.UUID) (int, error) {
				return 0, service.ErrForbidden
			},
		}
		handler := NewEventHandler(stub, discardLogger())

		body := []byte(`{"guest_ids":["` + guestA.String() + `"]}`)
		req := newTaskRequest(
			http.MethodPost, "/events/"+eventID.String()+"/invite", body, userID, eventID.String())
		rr := httptest.NewRecorder()

		handler.Invite(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestEventHandlerCheck_UsesInjectedClock(t *testing.T) {
	userID := uuid.New()
	eventID := uuid.New()
	frozen := time.Date(2026, 9, 2, 11, 0, 0, 0, time.UTC)

	stub := &stubEventService{
		updateStatusFn: func(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Event, error) {
			assert.Equal(t, eventID, id)
			assert.Equal(t, frozen, now)
			return &domain.Event{ID: eventID, Title: "Standup", Status: domain.EventStatusOngoing}, nil
		},
	}
	handler := NewEventHandler(stub, discardLogger())
	handler.timeFunc = func() time.Time { return frozen }

	req := newTaskRequest(
		http.MethodPost, "/events/"+eventID.String()+"/check", nil, userID, eventID.String())
	rr := httptest.NewRecorder()

	handler.Check(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var event domain.Event
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&event))
	assert.Equal(t, domain.EventStatusOngoing, event.Status)
}

func TestEventHandlerCountGuests(t *testing.T) {
	userID := uuid.New()
	eventID := uuid.New()

	stub := &stubEventService{
		countGuestsFn: func(ctx context.Context, id uuid.UUID) (int, error) {
			return 4, nil
		},
	}
	handler := NewEventHandler(stub, discardLogger())

	req := newTaskRequest(
		http.MethodGet, "/events/"+eventID.String()+"/guests/count", nil, userID, eventID.String())
	rr := httptest.NewRecorder()

	handler.CountGuests(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp CountResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 4, resp.Count)
}

func TestEventHandlerRemind(t *testing.T) {
	userID := uuid.New()
	eventID := uuid.New()

	var reminded bool
	stub := &stubEventService{
		sendReminderFn: func(ctx context.Context, id, actorID uuid.UUID) error {
			assert.Equal(t, userID, actorID)
			reminded = true
			return nil
		},
	}
	handler := NewEventHandler(stub, discardLogger())

	req := newTaskRequest(
		http.MethodPost, "/events/"+eventID.String()+"/remind", nil, userID, eventID.String())
	rr := httptest.NewRecorder()

	handler.Remind(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, reminded)
}
