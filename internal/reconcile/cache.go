// Package reconcile keeps a client-side view of bookings and notifications
// consistent with the server.
//
// Realtime delivery is lossy, so the cache has two inputs: event payloads
// applied as they arrive, and a coalescing "bookings changed" signal that
// triggers a full re-fetch. Local mutations and reconnects raise the signal.
package reconcile

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/realtime"
)

// NotificationPageSize matches the server's list cap
const NotificationPageSize = 50

// Cache is safe for concurrent use
type Cache struct {
	userID string

	mu            sync.RWMutex
	bookings      map[uuid.UUID]models.Booking
	notifications []models.Notification
	syncedAt      time.Time

	changed chan struct{}
}

func NewCache(userID string) *Cache {
	return &Cache{
		userID:   userID,
		bookings: make(map[uuid.UUID]models.Booking),
		changed:  make(chan struct{}, 1),
	}
}

func (c *Cache) UserID() string { return c.userID }

// SignalChanged asks for a full re-fetch. Signals raised while one is
// already pending collapse into it.
func (c *Cache) SignalChanged() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// Changed fires once per pending signal
func (c *Cache) Changed() <-chan struct{} { return c.changed }

// Apply folds one realtime event into the cache. Unknown events are ignored.
func (c *Cache) Apply(msg realtime.Message) error {
	switch msg.Event {
	case realtime.EventBookingCreated, realtime.EventBookingUpdated:
		var b models.Booking
		if err := json.Unmarshal(msg.Payload, &b); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Event, err)
		}
		c.putBooking(b)

	case realtime.EventBookingDeleted:
		var p realtime.BookingDeleted
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Event, err)
		}
		c.mu.Lock()
		delete(c.bookings, p.ID)
		c.mu.Unlock()

	case realtime.EventNewNotification:
		var n models.Notification
		if err := json.Unmarshal(msg.Payload, &n); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Event, err)
		}
		c.addNotification(n)

	case realtime.EventEditPermissionGranted:
		var p struct {
			Notification models.Notification `json:"notification"`
			BookingID    uuid.UUID           `json:"bookingId"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Event, err)
		}
		if p.Notification.ID != uuid.Nil {
			c.addNotification(p.Notification)
		}
		c.grant(p.BookingID)
	}
	return nil
}

// putBooking ignores documents older than the cached copy
func (c *Cache) putBooking(b models.Booking) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.bookings[b.ID]; ok && b.UpdatedAt.Before(cur.UpdatedAt) {
		return
	}
	c.bookings[b.ID] = b
}

func (c *Cache) grant(bookingID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bookings[bookingID]
	if !ok || b.CanEdit(c.userID) {
		return
	}
	b.ApprovedEditors = append(slices.Clone(b.ApprovedEditors), c.userID)
	c.bookings[bookingID] = b
}

func (c *Cache) addNotification(n models.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n.UserID != "" && n.UserID != c.userID {
		return
	}
	for _, cur := range c.notifications {
		if cur.ID == n.ID {
			return
		}
	}
	c.notifications = append([]models.Notification{n}, c.notifications...)
	if len(c.notifications) > NotificationPageSize {
		c.notifications = c.notifications[:NotificationPageSize]
	}
}

// ReplaceBookings swaps in an authoritative snapshot
func (c *Cache) ReplaceBookings(items []models.Booking) {
	next := make(map[uuid.UUID]models.Booking, len(items))
	for _, b := range items {
		next[b.ID] = b
	}
	c.mu.Lock()
	c.bookings = next
	c.syncedAt = time.Now()
	c.mu.Unlock()
}

// ReplaceNotifications swaps in an authoritative snapshot
func (c *Cache) ReplaceNotifications(items []models.Notification) {
	next := slices.Clone(items)
	if len(next) > NotificationPageSize {
		next = next[:NotificationPageSize]
	}
	c.mu.Lock()
	c.notifications = next
	c.mu.Unlock()
}

// Bookings returns the cached bookings, newest first
func (c *Cache) Bookings() []models.Booking {
	c.mu.RLock()
	out := make([]models.Booking, 0, len(c.bookings))
	for _, b := range c.bookings {
		out = append(out, b)
	}
	c.mu.RUnlock()
	slices.SortFunc(out, func(a, b models.Booking) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (c *Cache) Booking(id uuid.UUID) (models.Booking, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bookings[id]
	return b, ok
}

func (c *Cache) Notifications() []models.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.notifications)
}

func (c *Cache) Unread() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, item := range c.notifications {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// CanEdit is the advisory form of the server's access check. It decides
// whether to offer an edit form or a request-access action; the server
// still has the final word.
func (c *Cache) CanEdit(bookingID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bookings[bookingID]
	return ok && b.CanEdit(c.userID)
}

// SyncedAt is the time of the last successful bookings re-fetch
func (c *Cache) SyncedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.syncedAt
}
