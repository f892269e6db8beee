package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/famtime/backend/internal/api/middleware"
	"github.com/famtime/backend/internal/calendar"
	"github.com/famtime/backend/internal/planner"
	"github.com/famtime/backend/internal/projection"
	"github.com/famtime/backend/internal/storage/models"
	"github.com/famtime/backend/internal/websocket"
)

// SuggestionsResponse bundles the planner's suggested dates and times.
type SuggestionsResponse struct {
	Dates []planner.DateOption `json:"dates"`
	Times []planner.TimeOption `json:"times"`
}

// PlannerTemplates returns the built-in activity templates.
func PlannerTemplates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(planner.Templates())
	}
}

// PlannerSuggestions returns suggested dates and times relative to now in the
// configured timezone.
func PlannerSuggestions(loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := SuggestionsResponse{
			Dates: planner.DateOptions(time.Now().In(loc)),
			Times: planner.TimeOptions(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// CreatePlannedEvent runs the planner form flow: validate, create through the
// service, then optimistically insert the new event into the projection so
// the UI sees it before the reload round trip completes.
func CreatePlannedEvent(service *calendar.Service, proj *projection.Projection, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form planner.Form
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		input, err := planner.BuildEvent(form)
		if err != nil {
			if errors.Is(err, planner.ErrMissingFields) {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
				return
			}
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, err.Error())
			return
		}

		result := service.CreateEvent(r.Context(), input)

		proj.AddEventDirectly(models.Event{
			ID:    result.ID,
			Title: input.Title,
			Start: input.Start,
			End:   input.End,
			Notes: input.Notes,
		})

		broadcaster.BroadcastEventCreated(result.ID, input.Title, result.Outcome == calendar.OutcomeDegraded, result.Reason)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateEventResponse{
			ID:      result.ID,
			Outcome: string(result.Outcome),
			Reason:  result.Reason,
		})
	}
}
