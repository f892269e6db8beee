package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/famtime/backend/internal/api/middleware"
	"github.com/famtime/backend/internal/family"
	"github.com/famtime/backend/internal/projection"
)

// FamilyOverview returns each configured member's live status.
func FamilyOverview(members []family.Member, proj *projection.Projection, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview := family.Overview(members, proj.Events(), time.Now().In(loc))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(overview)
	}
}

// FreeSlots returns free-time candidates for a day. Query parameters:
// date (YYYY-MM-DD, default today), min_duration_min, include_weekends,
// only_free_for_all, time_of_day.
func FreeSlots(members []family.Member, proj *projection.Projection, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		day := time.Now().In(loc)
		if v := q.Get("date"); v != "" {
			parsed, err := time.ParseInLocation("2006-01-02", v, loc)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "date must be YYYY-MM-DD")
				return
			}
			day = parsed
		}

		filters := family.Filters{
			MinDurationMin:  60,
			IncludeWeekends: true,
			TimeOfDay:       q.Get("time_of_day"),
		}
		if v := q.Get("min_duration_min"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filters.MinDurationMin = n
			}
		}
		if v := q.Get("include_weekends"); v != "" {
			filters.IncludeWeekends = v == "true" || v == "1"
		}
		if v := q.Get("only_free_for_all"); v != "" {
			filters.OnlyFreeForAll = v == "true" || v == "1"
		}

		slots := family.FreeSlots(members, proj.Events(), day, filters)
		if slots == nil {
			slots = []family.Slot{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(slots)
	}
}
