package reconcile

import (
	"context"
	"fmt"
	"log"
)

// Refresh replaces the cache contents with fresh snapshots
func (c *Cache) Refresh(ctx context.Context, f Fetcher) error {
	bookings, err := f.Bookings(ctx)
	if err != nil {
		return fmt.Errorf("fetch bookings: %w", err)
	}
	notifications, err := f.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}
	c.ReplaceBookings(bookings)
	c.ReplaceNotifications(notifications)
	return nil
}

// Run re-fetches every time the changed signal fires, until ctx is done.
// A failed re-fetch is logged and not retried; the next signal tries again.
// onRefresh, if not nil, is called after each successful re-fetch.
func (c *Cache) Run(ctx context.Context, f Fetcher, onRefresh func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.changed:
			if err := c.Refresh(ctx, f); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("Re-fetch failed: %v", err)
				continue
			}
			if onRefresh != nil {
				onRefresh()
			}
		}
	}
}
