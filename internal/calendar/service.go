// Package calendar provides the event CRUD contract layered over the durable
// event store and the external calendar collaborator.
package calendar

import (
	"context"
	"log"
	"time"

	"github.com/famtime/backend/internal/devicecal"
	"github.com/famtime/backend/internal/notify"
	"github.com/famtime/backend/internal/storage"
	"github.com/famtime/backend/internal/storage/models"
)

// Outcome classifies how an operation completed. Mutations never return an
// error to callers; degradation is reported here instead so callers decide
// whether to surface it.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeDegraded Outcome = "degraded"
)

// DefaultLookaheadDays is the external enumeration window.
const DefaultLookaheadDays = 30

// EventInput is the caller-supplied data for a new event. Notes and
// description are one value; it populates both fields on the wire.
type EventInput struct {
	Title    string
	Start    time.Time
	End      *time.Time
	Location string
	Notes    string
}

// Listing is the result of GetEvents. Degraded is set when the external
// collaborator was skipped or failed and only local events are included.
type Listing struct {
	Events   []models.Event
	Degraded bool
	Reason   string
}

// CreateResult reports the identifier of the created event. ID is non-empty
// in every outcome.
type CreateResult struct {
	ID      string
	Outcome Outcome
	Reason  string
}

// DeleteResult reports whether a local record was actually removed. A missing
// id is a valid nothing-to-do outcome, not an error.
type DeleteResult struct {
	Removed bool
	Outcome Outcome
	Reason  string
}

// Service implements the calendar CRUD contract. Every external-dependent
// operation degrades to the local store; nothing is fatal.
type Service struct {
	store     *storage.EventStore
	provider  devicecal.Provider
	notifier  *notify.Notifier
	lookahead time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a calendar service. lookaheadDays bounds the external
// enumeration window; zero or negative selects the default.
func NewService(store *storage.EventStore, provider devicecal.Provider, notifier *notify.Notifier, lookaheadDays int) *Service {
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultLookaheadDays
	}
	return &Service{
		store:     store,
		provider:  provider,
		notifier:  notifier,
		lookahead: time.Duration(lookaheadDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// GetEvents reloads the local store, persists the cleaned set back, and then
// attempts to merge events from the external collaborator within the
// lookahead window. On permission denial or any collaborator failure the
// local set is returned alone, flagged as degraded. External and local events
// are concatenated without de-duplication; no ordering holds between the two
// groups.
func (s *Service) GetEvents(ctx context.Context) Listing {
	local := s.store.Load(ctx)
	s.store.Save(ctx, local)

	granted, err := s.provider.RequestPermission(ctx)
	if err != nil {
		log.Printf("Calendar permission check failed, using local events: %v", err)
		return Listing{Events: local, Degraded: true, Reason: "permission check failed"}
	}
	if !granted {
		// Expected outcome when no external calendar is configured.
		return Listing{Events: local, Degraded: true, Reason: "calendar permission not granted"}
	}

	calendars, err := s.provider.Calendars(ctx)
	if err != nil {
		log.Printf("Listing external calendars failed, using local events: %v", err)
		return Listing{Events: local, Degraded: true, Reason: "listing calendars failed"}
	}

	ids := make([]string, 0, len(calendars))
	for _, cal := range calendars {
		ids = append(ids, cal.ID)
	}

	start := s.now()
	external, err := s.provider.Events(ctx, ids, start, start.Add(s.lookahead))
	if err != nil {
		log.Printf("Listing external events failed, using local events: %v", err)
		return Listing{Events: local, Degraded: true, Reason: "listing events failed"}
	}

	return Listing{Events: append(external, local...)}
}

// CreateEvent writes through the external collaborator when possible and
// falls back to a local record otherwise. It always returns a non-empty id;
// from the caller's perspective creation never fails.
func (s *Service) CreateEvent(ctx context.Context, in EventInput) CreateResult {
	ev := models.Event{
		Title:    in.Title,
		Start:    in.Start,
		End:      in.End,
		Location: in.Location,
		Notes:    in.Notes,
	}

	if id, ok := s.createExternal(ctx, ev); ok {
		s.notifier.Notify()
		return CreateResult{ID: id, Outcome: OutcomeOK}
	}

	ev.ID = models.NewLocalID(s.now())
	events := append(s.store.Load(ctx), ev)
	s.store.Save(ctx, events)
	s.notifier.Notify()

	return CreateResult{ID: ev.ID, Outcome: OutcomeDegraded, Reason: "stored locally"}
}

// createExternal attempts the external write path: permission, a writable
// calendar, then the create call. Any failure routes to the local fallback.
func (s *Service) createExternal(ctx context.Context, ev models.Event) (string, bool) {
	granted, err := s.provider.RequestPermission(ctx)
	if err != nil || !granted {
		return "", false
	}

	calendars, err := s.provider.Calendars(ctx)
	if err != nil {
		log.Printf("Listing external calendars failed, storing event locally: %v", err)
		return "", false
	}

	var target *devicecal.Calendar
	for i := range calendars {
		if calendars[i].Writable {
			target = &calendars[i]
			break
		}
	}
	if target == nil {
		return "", false
	}

	id, err := s.provider.Create(ctx, target.ID, ev)
	if err != nil {
		log.Printf("External event create failed, storing event locally: %v", err)
		return "", false
	}

	return id, true
}

// DeleteEvent removes the record with the given id. Ids without the local
// marker get a best-effort external delete first; its failure is swallowed.
// The local store is always filtered, and listeners are notified only when a
// record was actually removed.
func (s *Service) DeleteEvent(ctx context.Context, id string) DeleteResult {
	id = models.NormalizeID(id)
	result := DeleteResult{Outcome: OutcomeOK}

	if !models.IsLocalID(id) {
		if granted, err := s.provider.RequestPermission(ctx); err == nil && granted {
			if err := s.provider.Delete(ctx, id); err != nil {
				log.Printf("Could not delete from external calendar, continuing with local delete: %v", err)
				result.Outcome = OutcomeDegraded
				result.Reason = "external delete failed"
			}
		}
	}

	events := s.store.Load(ctx)
	remaining := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if models.NormalizeID(ev.ID) == id {
			continue
		}
		remaining = append(remaining, ev)
	}

	if len(remaining) < len(events) {
		s.store.Save(ctx, remaining)
		s.notifier.Notify()
		result.Removed = true
	}

	return result
}

// ClearAllEvents wipes the local store and notifies listeners.
func (s *Service) ClearAllEvents(ctx context.Context) {
	s.store.Save(ctx, nil)
	s.notifier.Notify()
}
