// Package realtime delivers booking and notification events to connected
// clients over named topics.
//
// Delivery is at-most-once. Publishing never blocks the caller: events go
// through a bounded Dispatcher queue into a Broker (Redis or in-process),
// which fans them into the local Hub that WebSocket sessions subscribe to.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Event names
const (
	EventBookingCreated        = "booking-created"
	EventBookingUpdated        = "booking-updated"
	EventBookingDeleted        = "booking-deleted"
	EventNewNotification       = "new-notification"
	EventEditPermissionGranted = "edit-permission-granted"
)

// TopicAllBookings is the global booking feed
const TopicAllBookings = "bookings"

func UserTopic(userID string) string { return "user:" + userID }

func BookingTopic(bookingID uuid.UUID) string { return "booking:" + bookingID.String() }

// Message is one event on one topic, and also the wire frame sent to
// WebSocket clients.
type Message struct {
	Event   string          `json:"event"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage encodes payload into a Message
func NewMessage(topic, event string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Event: event, Topic: topic, Payload: raw}, nil
}

// Broker moves messages to every process that may hold subscribers
type Broker interface {
	Publish(ctx context.Context, msg Message) error
	Ping(ctx context.Context) error
}

// PermissionGranted is the payload of EventEditPermissionGranted. The
// notification is kept opaque so clients decode it into their own type.
type PermissionGranted struct {
	Notification any       `json:"notification"`
	BookingID    uuid.UUID `json:"bookingId"`
}

// BookingDeleted is the payload of EventBookingDeleted
type BookingDeleted struct {
	ID uuid.UUID `json:"id"`
}
