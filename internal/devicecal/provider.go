// Package devicecal defines the external calendar collaborator contract and
// its implementations. The core only depends on this shape; any calendar
// integration satisfying it is interchangeable.
package devicecal

import (
	"context"
	"errors"
	"time"

	"github.com/famtime/backend/internal/storage/models"
)

// Calendar describes one calendar exposed by the collaborator.
type Calendar struct {
	ID       string
	Title    string
	Writable bool
}

// ErrReadOnlyCalendar is returned by providers that cannot accept writes.
var ErrReadOnlyCalendar = errors.New("calendar is read-only")

// Provider is the external calendar collaborator.
type Provider interface {
	// RequestPermission reports whether the collaborator may be used at all.
	// A false result is an expected outcome, not an error.
	RequestPermission(ctx context.Context) (bool, error)

	// Calendars lists the calendars available to this provider.
	Calendars(ctx context.Context) ([]Calendar, error)

	// Events enumerates events from the given calendars within [start, end).
	Events(ctx context.Context, calendarIDs []string, start, end time.Time) ([]models.Event, error)

	// Create writes an event into the given calendar and returns its id.
	Create(ctx context.Context, calendarID string, ev models.Event) (string, error)

	// Delete removes an event by id.
	Delete(ctx context.Context, id string) error
}

// Unavailable is the provider used when no external calendar is configured.
// Permission is always denied, which routes every operation to the local
// fallback path.
type Unavailable struct{}

func (Unavailable) RequestPermission(ctx context.Context) (bool, error) { return false, nil }

func (Unavailable) Calendars(ctx context.Context) ([]Calendar, error) { return nil, nil }

func (Unavailable) Events(ctx context.Context, calendarIDs []string, start, end time.Time) ([]models.Event, error) {
	return nil, nil
}

func (Unavailable) Create(ctx context.Context, calendarID string, ev models.Event) (string, error) {
	return "", ErrReadOnlyCalendar
}

func (Unavailable) Delete(ctx context.Context, id string) error { return ErrReadOnlyCalendar }
