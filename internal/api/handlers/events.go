// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/famtime/backend/internal/api/middleware"
	"github.com/famtime/backend/internal/calendar"
	"github.com/famtime/backend/internal/projection"
	"github.com/famtime/backend/internal/storage/models"
	"github.com/famtime/backend/internal/websocket"
)

// EventsResponse is the event listing returned to UI clients.
type EventsResponse struct {
	Events   []models.Event `json:"events"`
	Loading  bool           `json:"loading"`
	Degraded bool           `json:"degraded"`
}

// CreateEventResponse reports the outcome of an event creation.
type CreateEventResponse struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// DeleteEventResponse reports the outcome of an event deletion.
type DeleteEventResponse struct {
	Removed bool   `json:"removed"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// ListEvents returns the projected event set.
func ListEvents(proj *projection.Projection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events := proj.Events()
		if events == nil {
			events = []models.Event{}
		}

		response := EventsResponse{
			Events:   events,
			Loading:  proj.Loading(),
			Degraded: proj.Degraded(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// CreateEvent creates an event from the canonical wire shape. The body also
// accepts the legacy date+time pair. Creation itself never fails; only the
// request validation can reject.
func CreateEvent(service *calendar.Service, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev models.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if ev.Title == "" || !ev.Valid() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Title and a valid start date are required")
			return
		}

		result := service.CreateEvent(r.Context(), calendar.EventInput{
			Title:    ev.Title,
			Start:    ev.Start,
			End:      ev.End,
			Location: ev.Location,
			Notes:    ev.Notes,
		})

		broadcaster.BroadcastEventCreated(result.ID, ev.Title, result.Outcome == calendar.OutcomeDegraded, result.Reason)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateEventResponse{
			ID:      result.ID,
			Outcome: string(result.Outcome),
			Reason:  result.Reason,
		})
	}
}

// DeleteEvent removes an event by id. A missing id is reported through the
// removed flag, not as an error status. When the durable delete found no
// match the projection is still cleaned up as a fallback.
func DeleteEvent(service *calendar.Service, proj *projection.Projection, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		result := service.DeleteEvent(r.Context(), id)
		if !result.Removed {
			proj.RemoveEventDirectly(id)
		}

		broadcaster.BroadcastEventDeleted(id, result.Removed)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DeleteEventResponse{
			Removed: result.Removed,
			Outcome: string(result.Outcome),
			Reason:  result.Reason,
		})
	}
}
