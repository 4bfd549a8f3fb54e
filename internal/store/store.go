// Package store persists bookings, edit requests, notifications and the
// booking activity trail.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"traveldesk-backend/internal/models"
)

var (
	// ErrNotFound is returned when the addressed document does not exist
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a write loses against the current state
	// (a duplicate pending request, or resolving a request that is no
	// longer pending).
	ErrConflict = errors.New("store: conflict")
)

// NotificationPageSize caps every notification listing
const NotificationPageSize = 50

// BookingFilter narrows ListBookings; empty fields match everything
type BookingFilter struct {
	Type   models.BookingType
	Status models.BookingStatus
}

type Bookings interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error)
	// UpdateBooking replaces the document. The owner and the editor set are
	// not writable through it.
	UpdateBooking(ctx context.Context, b *models.Booking) error
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	// AddApprovedEditor inserts userID into the editor set if absent and
	// returns the booking as stored afterwards.
	AddApprovedEditor(ctx context.Context, bookingID uuid.UUID, userID string) (*models.Booking, error)
}

type EditRequests interface {
	// CreateEditRequest fails with ErrConflict when a pending request for
	// the same booking and requester already exists.
	CreateEditRequest(ctx context.Context, r *models.EditRequest) error
	GetEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error)
	FindPendingEditRequest(ctx context.Context, bookingID uuid.UUID, requesterID string) (*models.EditRequest, error)
	// ResolveEditRequest moves a pending request to status. It fails with
	// ErrConflict if the request is already terminal.
	ResolveEditRequest(ctx context.Context, id uuid.UUID, status models.EditRequestStatus) (*models.EditRequest, error)
}

type Notifications interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	// ListNotifications returns newest first, at most limit entries
	ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string, ids []uuid.UUID) (int64, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
}

type Activities interface {
	AppendActivity(ctx context.Context, a *models.BookingActivity) error
	ListActivities(ctx context.Context, bookingID uuid.UUID) ([]models.BookingActivity, error)
}

// Store is the full persistence service
type Store interface {
	Bookings
	EditRequests
	Notifications
	Activities
	Ping(ctx context.Context) error
	Close()
}
