// Package services implements the booking workflows on top of the store
// and the realtime publisher.
package services

// Pusher publishes a realtime event. Implementations must not block and
// must not report delivery failures to the caller.
type Pusher interface {
	Publish(topic, event string, payload any)
}

// Caller is the authenticated user performing an operation
type Caller struct {
	ID   string
	Name string
}

// DisplayName falls back to the user id when the identity carries no name
func (c Caller) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

type noopPusher struct{}

func (noopPusher) Publish(string, string, any) {}
