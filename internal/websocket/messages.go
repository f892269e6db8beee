package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeEventsChanged MessageType = "events.changed"
	TypeEventCreated  MessageType = "event.created"
	TypeEventDeleted  MessageType = "event.deleted"
	TypeNotification  MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload,omitempty"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventsChangedPayload is the payload for events.changed messages. It carries
// no event data; clients reload through the REST API.
type EventsChangedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// EventMutationPayload is the payload for event.created and event.deleted.
type EventMutationPayload struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

// NotificationPayload is the payload for notification messages.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}
