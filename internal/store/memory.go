package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"traveldesk-backend/internal/models"
)

// Memory is an in-process Store. It backs tests and STORE_DRIVER=memory.
type Memory struct {
	mu            sync.RWMutex
	bookings      map[uuid.UUID]*models.Booking
	requests      map[uuid.UUID]*models.EditRequest
	notifications []*models.Notification
	activities    []*models.BookingActivity
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		bookings: make(map[uuid.UUID]*models.Booking),
		requests: make(map[uuid.UUID]*models.EditRequest),
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}

func (m *Memory) CreateBooking(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; ok {
		return ErrConflict
	}
	m.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (m *Memory) GetBooking(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBooking(b), nil
}

func (m *Memory) ListBookings(_ context.Context, f BookingFilter) ([]models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		if f.Type != "" && b.Type != f.Type {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, *cloneBooking(b))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateBooking(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	next := cloneBooking(b)
	next.UserID = cur.UserID
	next.ApprovedEditors = slices.Clone(cur.ApprovedEditors)
	next.CreatedAt = cur.CreatedAt
	m.bookings[b.ID] = next
	return nil
}

func (m *Memory) DeleteBooking(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *Memory) AddApprovedEditor(_ context.Context, bookingID uuid.UUID, userID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	if !slices.Contains(b.ApprovedEditors, userID) {
		b.ApprovedEditors = append(b.ApprovedEditors, userID)
		b.UpdatedAt = time.Now().UTC()
	}
	return cloneBooking(b), nil
}

func (m *Memory) CreateEditRequest(_ context.Context, r *models.EditRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Status == models.EditRequestPending {
		for _, existing := range m.requests {
			if existing.BookingID == r.BookingID && existing.RequesterID == r.RequesterID &&
				existing.Status == models.EditRequestPending {
				return ErrConflict
			}
		}
	}
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *Memory) GetEditRequest(_ context.Context, id uuid.UUID) (*models.EditRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) FindPendingEditRequest(_ context.Context, bookingID uuid.UUID, requesterID string) (*models.EditRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.BookingID == bookingID && r.RequesterID == requesterID && r.Status == models.EditRequestPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ResolveEditRequest(_ context.Context, id uuid.UUID, status models.EditRequestStatus) (*models.EditRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.Status != models.EditRequestPending {
		return nil, ErrConflict
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	cp := *r
	return &cp, nil
}

func (m *Memory) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, userID string, limit int) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Notification, 0)
	// insertion order is creation order; walk backwards for newest first
	for i := len(m.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if n := m.notifications[i]; n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *Memory) MarkNotificationsRead(_ context.Context, userID string, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead && slices.Contains(ids, n.ID) {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (m *Memory) MarkAllNotificationsRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (m *Memory) AppendActivity(_ context.Context, a *models.BookingActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.activities = append(m.activities, &cp)
	return nil
}

func (m *Memory) ListActivities(_ context.Context, bookingID uuid.UUID) ([]models.BookingActivity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.BookingActivity, 0)
	for i := len(m.activities) - 1; i >= 0; i-- {
		if a := m.activities[i]; a.BookingID == bookingID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func cloneBooking(b *models.Booking) *models.Booking {
	cp := *b
	cp.ApprovedEditors = slices.Clone(b.ApprovedEditors)
	cp.Destinations = slices.Clone(b.Destinations)
	cp.Activities = slices.Clone(b.Activities)
	cp.Documents = slices.Clone(b.Documents)
	cp.Guests.ChildrenAges = slices.Clone(b.Guests.ChildrenAges)
	if cp.ApprovedEditors == nil {
		cp.ApprovedEditors = []string{}
	}
	return &cp
}
