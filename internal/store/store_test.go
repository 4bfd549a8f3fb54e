package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"traveldesk-backend/internal/models"
)

// storeCases run against every Store implementation
var storeCases = []struct {
	name string
	run  func(t *testing.T, s Store)
}{
	{"AddApprovedEditorIsIdempotent", testAddApprovedEditorIsIdempotent},
	{"UpdateBookingKeepsOwnerAndEditors", testUpdateBookingKeepsOwnerAndEditors},
	{"ListBookingsFiltersAndOrders", testListBookingsFiltersAndOrders},
	{"DeleteBooking", testDeleteBooking},
	{"PendingRequestUniqueness", testPendingRequestUniqueness},
	{"ResolveIsCompareAndSwap", testResolveIsCompareAndSwap},
	{"MarkReadOnlyTouchesOwnNotifications", testMarkReadOnlyTouchesOwnNotifications},
	{"ListNotificationsNewestFirstCapped", testListNotificationsNewestFirstCapped},
	{"ActivitiesKeepDetailsType", testActivitiesKeepDetailsType},
}

func runStoreCases(t *testing.T, newStore func(t *testing.T) Store) {
	for _, tc := range storeCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.run(t, newStore(t))
		})
	}
}

func TestMemoryStore(t *testing.T) {
	runStoreCases(t, func(*testing.T) Store { return NewMemory() })
}

func newBooking(owner string, created time.Time) *models.Booking {
	b := &models.Booking{
		ID:           uuid.New(),
		UserID:       owner,
		CustomerName: "Ada",
		Type:         models.BookingTypeHotel,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	b.ApplyDefaults()
	return b
}

func testAddApprovedEditorIsIdempotent(t *testing.T, s Store) {
	ctx := context.Background()
	b := newBooking("owner", time.Now())
	if err := s.CreateBooking(ctx, b); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		got, err := s.AddApprovedEditor(ctx, b.ID, "alice")
		if err != nil {
			t.Fatalf("add editor: %v", err)
		}
		if len(got.ApprovedEditors) != 1 || got.ApprovedEditors[0] != "alice" {
			t.Fatalf("editors after %d adds: %v", i+1, got.ApprovedEditors)
		}
	}
	got, _ := s.AddApprovedEditor(ctx, b.ID, "bob")
	if len(got.ApprovedEditors) != 2 {
		t.Fatalf("second editor not added: %v", got.ApprovedEditors)
	}

	if _, err := s.AddApprovedEditor(ctx, uuid.New(), "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown booking, got %v", err)
	}
}

func testUpdateBookingKeepsOwnerAndEditors(t *testing.T, s Store) {
	ctx := context.Background()
	b := newBooking("owner", time.Now())
	if err := s.CreateBooking(ctx, b); err != nil {
		t.Fatal(err)
	}
	_, _ = s.AddApprovedEditor(ctx, b.ID, "alice")

	changed := *b
	changed.UserID = "mallory"
	changed.ApprovedEditors = []string{"mallory"}
	changed.Notes = "late checkout"
	if err := s.UpdateBooking(ctx, &changed); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != "owner" {
		t.Errorf("owner changed to %q", got.UserID)
	}
	if len(got.ApprovedEditors) != 1 || got.ApprovedEditors[0] != "alice" {
		t.Errorf("editors changed to %v", got.ApprovedEditors)
	}
	if got.Notes != "late checkout" {
		t.Errorf("notes not updated: %q", got.Notes)
	}

	missing := newBooking("owner", time.Now())
	if err := s.UpdateBooking(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testListBookingsFiltersAndOrders(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Now()
	older := newBooking("u1", base.Add(-time.Hour))
	newer := newBooking("u1", base)
	flight := newBooking("u2", base.Add(-2*time.Hour))
	flight.Type = models.BookingTypeFlight
	for _, b := range []*models.Booking{older, newer, flight} {
		if err := s.CreateBooking(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	all, _ := s.ListBookings(ctx, BookingFilter{})
	if len(all) != 3 || all[0].ID != newer.ID || all[2].ID != flight.ID {
		t.Fatalf("unexpected order: %v", all)
	}

	hotels, _ := s.ListBookings(ctx, BookingFilter{Type: models.BookingTypeHotel})
	if len(hotels) != 2 {
		t.Fatalf("expected 2 hotels, got %d", len(hotels))
	}
}

func testDeleteBooking(t *testing.T, s Store) {
	ctx := context.Background()
	b := newBooking("owner", time.Now())
	_ = s.CreateBooking(ctx, b)

	if err := s.DeleteBooking(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetBooking(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	if err := s.DeleteBooking(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func testPendingRequestUniqueness(t *testing.T, s Store) {
	ctx := context.Background()
	bookingID := uuid.New()
	now := time.Now()
	first := &models.EditRequest{ID: uuid.New(), BookingID: bookingID, RequesterID: "alice", OwnerID: "owner",
		Status: models.EditRequestPending, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateEditRequest(ctx, first); err != nil {
		t.Fatal(err)
	}
	dup := *first
	dup.ID = uuid.New()
	if err := s.CreateEditRequest(ctx, &dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// once resolved, a new pending request is allowed
	if _, err := s.ResolveEditRequest(ctx, first.ID, models.EditRequestRejected); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateEditRequest(ctx, &dup); err != nil {
		t.Fatalf("new request after resolution: %v", err)
	}
	got, err := s.FindPendingEditRequest(ctx, bookingID, "alice")
	if err != nil || got.ID != dup.ID {
		t.Fatalf("pending lookup = %v, %v", got, err)
	}
	if _, err := s.FindPendingEditRequest(ctx, bookingID, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another requester, got %v", err)
	}
}

func testResolveIsCompareAndSwap(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Now()
	req := &models.EditRequest{ID: uuid.New(), BookingID: uuid.New(), RequesterID: "alice", OwnerID: "owner",
		Status: models.EditRequestPending, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateEditRequest(ctx, req); err != nil {
		t.Fatal(err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(approve bool) {
			defer wg.Done()
			status := models.EditRequestRejected
			if approve {
				status = models.EditRequestApproved
			}
			_, err := s.ResolveEditRequest(ctx, req.ID, status)
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			} else if !errors.Is(err, ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i%2 == 0)
	}
	wg.Wait()
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}

	got, err := s.GetEditRequest(ctx, req.ID)
	if err != nil || !got.Status.Terminal() {
		t.Fatalf("request after resolution = %+v, %v", got, err)
	}
	if _, err := s.ResolveEditRequest(ctx, uuid.New(), models.EditRequestApproved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testMarkReadOnlyTouchesOwnNotifications(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Now()
	mine := &models.Notification{ID: uuid.New(), UserID: "alice", Type: models.NotificationEditRequest, CreatedAt: now}
	other := &models.Notification{ID: uuid.New(), UserID: "alice", Type: models.NotificationEditRequest, CreatedAt: now.Add(time.Millisecond)}
	theirs := &models.Notification{ID: uuid.New(), UserID: "bob", Type: models.NotificationEditRequest, CreatedAt: now}
	for _, n := range []*models.Notification{mine, other, theirs} {
		if err := s.CreateNotification(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.MarkNotificationsRead(ctx, "alice", []uuid.UUID{mine.ID, theirs.ID})
	if err != nil || n != 1 {
		t.Fatalf("mark read = %d, %v", n, err)
	}
	alices, _ := s.ListNotifications(ctx, "alice", NotificationPageSize)
	for _, item := range alices {
		if item.IsRead != (item.ID == mine.ID) {
			t.Fatalf("wrong read state for %s: %v", item.ID, item.IsRead)
		}
	}
	bobs, _ := s.ListNotifications(ctx, "bob", NotificationPageSize)
	if len(bobs) != 1 || bobs[0].IsRead {
		t.Fatalf("bob's notification was touched: %+v", bobs)
	}

	if n, err := s.MarkNotificationsRead(ctx, "alice", []uuid.UUID{mine.ID}); err != nil || n != 0 {
		t.Fatalf("marking an already read notification = %d, %v", n, err)
	}
	if n, err := s.MarkNotificationsRead(ctx, "alice", nil); err != nil || n != 0 {
		t.Fatalf("empty id list = %d, %v", n, err)
	}
}

func testListNotificationsNewestFirstCapped(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Now()
	var last uuid.UUID
	for i := 0; i < NotificationPageSize+5; i++ {
		n := &models.Notification{ID: uuid.New(), UserID: "alice", Type: models.NotificationEditRequest,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond)}
		if err := s.CreateNotification(ctx, n); err != nil {
			t.Fatal(err)
		}
		last = n.ID
	}
	got, _ := s.ListNotifications(ctx, "alice", NotificationPageSize)
	if len(got) != NotificationPageSize {
		t.Fatalf("expected %d, got %d", NotificationPageSize, len(got))
	}
	if got[0].ID != last {
		t.Fatal("newest notification should come first")
	}

	updated, _ := s.MarkAllNotificationsRead(ctx, "alice")
	if updated != int64(NotificationPageSize+5) {
		t.Fatalf("mark all updated %d", updated)
	}
}

func testActivitiesKeepDetailsType(t *testing.T, s Store) {
	ctx := context.Background()
	bookingID := uuid.New()
	base := time.Now()
	first := &models.BookingActivity{ID: uuid.New(), BookingID: bookingID, UserID: "owner", Action: models.ActivityCreate,
		Details: models.CreateDetails{CustomerName: "Ada", Type: models.BookingTypeHotel, TotalAmount: 500}, CreatedAt: base}
	second := &models.BookingActivity{ID: uuid.New(), BookingID: bookingID, UserID: "alice", Action: models.ActivityUpdate,
		Details: models.UpdateDetails{Fields: []string{"notes"}}, CreatedAt: base.Add(time.Second)}
	for _, a := range []*models.BookingActivity{first, second} {
		if err := s.AppendActivity(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListActivities(ctx, bookingID)
	if err != nil || len(got) != 2 {
		t.Fatalf("activities = %v, %v", got, err)
	}
	if got[0].ID != second.ID {
		t.Fatal("newest activity should come first")
	}
	details, ok := got[0].Details.(models.UpdateDetails)
	if !ok || len(details.Fields) != 1 || details.Fields[0] != "notes" {
		t.Fatalf("details = %#v", got[0].Details)
	}
}
