// Package projection maintains the in-memory, UI-facing view of event state,
// rebuilt from the calendar service on demand.
package projection

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/famtime/backend/internal/calendar"
	"github.com/famtime/backend/internal/notify"
	"github.com/famtime/backend/internal/storage/models"
)

// Projection exposes a live, subscribable view of all known events plus a
// busy flag. It is a disposable cache: the store remains the sole durable
// owner and the projection can always be rebuilt from it.
//
// Optimistic writes go through a pending overlay keyed by a correlation id.
// An overlay entry lives until a reload confirms the event in the durable
// state, which keeps the projection from silently diverging from the store.
type Projection struct {
	service  *calendar.Service
	notifier *notify.Notifier

	mu       sync.Mutex
	base     []models.Event
	pending  map[string]models.Event
	loading  bool
	degraded bool
	gen      uint64

	unsubscribe func()
}

// New creates a projection over the given service and notifier.
func New(service *calendar.Service, notifier *notify.Notifier) *Projection {
	return &Projection{
		service:  service,
		notifier: notifier,
		pending:  make(map[string]models.Event),
	}
}

// Start performs the initial load and subscribes to change notifications so
// any mutation elsewhere triggers a reload. Call Stop to deregister.
func (p *Projection) Start(ctx context.Context) {
	p.unsubscribe = p.notifier.Subscribe(func() {
		// Notification delivery is synchronous from the mutating flow;
		// reload in the background so a subscriber cannot block it.
		go p.Reload(ctx)
	})
	p.Reload(ctx)
}

// Stop deregisters the notifier subscription.
func (p *Projection) Stop() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

// Reload fetches the full event set and replaces the base snapshot. A reload
// that finishes after a newer one has started is discarded rather than
// applied. There is no error state: the service never fails a listing, and a
// degraded listing still replaces the snapshot.
func (p *Projection) Reload(ctx context.Context) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.loading = true
	p.mu.Unlock()

	listing := p.service.GetEvents(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen < p.gen {
		// A newer reload superseded this one while it was in flight.
		return
	}

	p.loading = false
	p.degraded = listing.Degraded
	p.base = listing.Events
	p.reconcileLocked()
}

// Events returns a snapshot of the projected events: the base set plus any
// pending optimistic entries not yet confirmed by a reload.
func (p *Projection) Events() []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.Event, 0, len(p.base)+len(p.pending))
	out = append(out, p.base...)
	for _, ev := range p.pending {
		out = append(out, ev)
	}
	return out
}

// Loading reports whether a fetch is in flight.
func (p *Projection) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Degraded reports whether the last listing came from the local store alone.
func (p *Projection) Degraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degraded
}

// AddEventDirectly inserts an event into the pending overlay without touching
// the store. It is an optimistic shortcut for flows that already persisted
// through the service and do not want to wait for the reload round trip.
func (p *Projection) AddEventDirectly(ev models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[uuid.NewString()] = ev
}

// RemoveEventDirectly drops any projected event with the given id. It exists
// as a fallback for when the durable delete could not locate a match.
func (p *Projection) RemoveEventDirectly(id string) {
	id = models.NormalizeID(id)

	p.mu.Lock()
	defer p.mu.Unlock()

	remaining := make([]models.Event, 0, len(p.base))
	for _, ev := range p.base {
		if models.NormalizeID(ev.ID) == id {
			continue
		}
		remaining = append(remaining, ev)
	}
	p.base = remaining

	for cid, ev := range p.pending {
		if models.NormalizeID(ev.ID) == id {
			delete(p.pending, cid)
		}
	}
}

// reconcileLocked drops overlay entries whose event id now appears in the
// base snapshot. Caller holds p.mu.
func (p *Projection) reconcileLocked() {
	if len(p.pending) == 0 {
		return
	}

	present := make(map[string]bool, len(p.base))
	for _, ev := range p.base {
		present[models.NormalizeID(ev.ID)] = true
	}

	for cid, ev := range p.pending {
		if present[models.NormalizeID(ev.ID)] {
			delete(p.pending, cid)
		}
	}
}
