package storage

import (
	"context"
	"encoding/json"
	"log"

	"github.com/famtime/backend/internal/storage/models"
)

// EventSlot is the slot holding the persisted event sequence.
const EventSlot = "famtime-events"

// EventStore is the durable owner of locally-created events. The whole event
// sequence lives in a single slot; every save rewrites it completely.
//
// Persistence is at-most-effort: load fails open (a corrupt slot is cleared
// and treated as empty) and save errors are logged, never surfaced. Callers
// can always proceed with the in-memory sequence they already hold.
type EventStore struct {
	slots *SlotRepository
}

// NewEventStore creates an event store over the given slot repository.
func NewEventStore(slots *SlotRepository) *EventStore {
	return &EventStore{slots: slots}
}

// Load reads the persisted event sequence, dropping records that do not
// resolve to a valid start time. A slot that cannot be parsed is cleared and
// an empty sequence is returned.
func (s *EventStore) Load(ctx context.Context) []models.Event {
	raw, ok, err := s.slots.Get(ctx, EventSlot)
	if err != nil {
		log.Printf("Could not load events from storage: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	var parsed []models.Event
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("Corrupt event slot, clearing: %v", err)
		if clearErr := s.slots.Clear(ctx, EventSlot); clearErr != nil {
			log.Printf("Could not clear corrupt event slot: %v", clearErr)
		}
		return nil
	}

	return s.Validate(parsed)
}

// Save serializes the full event sequence back to the slot. Errors are logged
// and swallowed; persistence here is best effort by design of the contract.
func (s *EventStore) Save(ctx context.Context, events []models.Event) {
	if events == nil {
		events = []models.Event{}
	}

	data, err := json.Marshal(events)
	if err != nil {
		log.Printf("Could not serialize events: %v", err)
		return
	}

	if err := s.slots.Put(ctx, EventSlot, string(data)); err != nil {
		log.Printf("Could not save events to storage: %v", err)
	}
}

// Validate filters the sequence down to structurally valid records. Invalid
// records are dropped silently rather than rejected with an error.
func (s *EventStore) Validate(events []models.Event) []models.Event {
	valid := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if !ev.Valid() {
			log.Printf("Dropping event without a resolvable start: id=%q title=%q", ev.ID, ev.Title)
			continue
		}
		valid = append(valid, ev)
	}
	return valid
}
