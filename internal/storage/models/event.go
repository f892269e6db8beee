// Package models contains the domain models for the application.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LocalIDPrefix marks event records that originated inside this application,
// as opposed to records sourced from an external calendar.
const LocalIDPrefix = "mock-"

// Event represents a single schedulable family activity.
//
// Start is the canonical resolved start time. The legacy date+time shape used
// by older planner flows exists only in the serialization adapter below; core
// logic never sees it.
type Event struct {
	ID       string
	Title    string
	Start    time.Time
	End      *time.Time
	Location string
	Notes    string
}

// storedEvent is the wire and persistence shape of an event. startDate/endDate
// are RFC 3339 timestamps; date (YYYY-MM-DD) + time (HH:MM) is the legacy
// planner shape, accepted on read and never written back.
type storedEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Location    string `json:"location,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
}

const wireTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// NewLocalID mints an identifier for a locally-originated event. Millisecond
// timestamps keep ids unique and monotonic under single-flow creation.
func NewLocalID(now time.Time) string {
	return LocalIDPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// NormalizeID trims surrounding whitespace. All id comparisons in the store,
// service and projection go through this.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// IsLocalID reports whether the id carries the local-record marker.
func IsLocalID(id string) bool {
	return strings.HasPrefix(NormalizeID(id), LocalIDPrefix)
}

// IsLocal reports whether the event originated inside this application.
func (e Event) IsLocal() bool {
	return IsLocalID(e.ID)
}

// Valid reports whether the event carries a resolvable start time. Records
// failing this predicate are dropped on load, never repaired.
func (e Event) Valid() bool {
	return !e.Start.IsZero()
}

// MarshalJSON writes the canonical wire shape. Notes populates both the notes
// and description fields; older consumers read either.
func (e Event) MarshalJSON() ([]byte, error) {
	s := storedEvent{
		ID:          e.ID,
		Title:       e.Title,
		Location:    e.Location,
		Notes:       e.Notes,
		Description: e.Notes,
	}
	if !e.Start.IsZero() {
		s.StartDate = e.Start.UTC().Format(wireTimeFormat)
	}
	if e.End != nil && !e.End.IsZero() {
		s.EndDate = e.End.UTC().Format(wireTimeFormat)
	}
	return json.Marshal(s)
}

// UnmarshalJSON accepts both the canonical shape and the legacy date+time
// shape, normalizing to a single start timestamp. An unresolvable start leaves
// Start zero; the caller decides whether to drop the record.
func (e *Event) UnmarshalJSON(data []byte) error {
	var s storedEvent
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	e.ID = NormalizeID(s.ID)
	e.Title = s.Title
	e.Location = s.Location
	e.Notes = s.Notes
	if e.Notes == "" {
		e.Notes = s.Description
	}

	e.Start = resolveStart(s)
	e.End = nil
	if s.EndDate != "" {
		if end, err := parseWireTime(s.EndDate); err == nil {
			e.End = &end
		}
	}

	return nil
}

// resolveStart resolves the start instant from either representation.
// startDate wins; the legacy date+time pair is the fallback.
func resolveStart(s storedEvent) time.Time {
	if s.StartDate != "" {
		if t, err := parseWireTime(s.StartDate); err == nil {
			return t
		}
		return time.Time{}
	}
	if s.Date != "" && s.Time != "" {
		if t, err := time.Parse("2006-01-02T15:04", s.Date+"T"+s.Time); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseWireTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", v, err)
	}
	return t, nil
}
