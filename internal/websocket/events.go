package websocket

import (
	"log"

	"github.com/famtime/backend/internal/notify"
)

// EventBroadcaster translates service-side change notifications into
// WebSocket messages for connected UI clients.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// Bind subscribes the broadcaster to the notifier so every service mutation
// reaches connected clients as an events.changed message. It returns the
// unsubscribe function.
func (b *EventBroadcaster) Bind(notifier *notify.Notifier) func() {
	return notifier.Subscribe(func() {
		b.BroadcastEventsChanged("")
	})
}

// BroadcastEventsChanged signals clients to reload their event view.
func (b *EventBroadcaster) BroadcastEventsChanged(reason string) {
	b.broadcast(NewMessage(TypeEventsChanged, EventsChangedPayload{Reason: reason}))
}

// BroadcastEventCreated announces a created event.
func (b *EventBroadcaster) BroadcastEventCreated(id, title string, degraded bool, reason string) {
	b.broadcast(NewMessage(TypeEventCreated, EventMutationPayload{
		ID:       id,
		Title:    title,
		Degraded: degraded,
		Reason:   reason,
	}))
}

// BroadcastEventDeleted announces a deleted event.
func (b *EventBroadcaster) BroadcastEventDeleted(id string, removed bool) {
	b.broadcast(NewMessage(TypeEventDeleted, EventMutationPayload{ID: id, Degraded: !removed}))
}

// BroadcastNotification sends a user-facing notification to all clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
