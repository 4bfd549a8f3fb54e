package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"traveldesk-backend/internal/apperror"
	"traveldesk-backend/internal/dto"
	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/realtime"
	"traveldesk-backend/internal/store"
	"traveldesk-backend/internal/utils"
)

type BookingService struct {
	store  store.Store
	pusher Pusher
}

func NewBookingService(s store.Store, pusher Pusher) *BookingService {
	if pusher == nil {
		pusher = noopPusher{}
	}
	return &BookingService{store: s, pusher: pusher}
}

// List returns every booking matching f, newest first. All authenticated
// users see all bookings.
func (s *BookingService) List(ctx context.Context, f store.BookingFilter) ([]models.Booking, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, apperror.InvalidRequest("type must be one of hotel, flight, package")
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperror.InvalidRequest("status must be one of pending, confirmed, cancelled, completed")
	}
	items, err := s.store.ListBookings(ctx, f)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch bookings", err)
	}
	return items, nil
}

// Get loads a booking and reports whether caller may edit it
func (s *BookingService) Get(ctx context.Context, id uuid.UUID, caller Caller) (*models.Booking, bool, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return b, b.CanEdit(caller.ID), nil
}

func (s *BookingService) Create(ctx context.Context, caller Caller, req *dto.CreateBookingRequest) (*models.Booking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.InvalidRequest(err.Error())
	}

	now := time.Now().UTC()
	b := req.ToBooking()
	b.ID = uuid.New()
	b.UserID = caller.ID
	b.CreatorName = caller.DisplayName()
	b.ApprovedEditors = []string{}
	b.CreatedAt = now
	b.UpdatedAt = now
	b.ApplyDefaults()

	if err := s.store.CreateBooking(ctx, b); err != nil {
		log.Printf("Error creating booking: %v (user_id=%s)", err, caller.ID)
		return nil, apperror.Internal("Failed to create booking", err)
	}
	s.record(ctx, b.ID, caller.ID, models.CreateDetails{
		CustomerName: b.CustomerName,
		Type:         b.Type,
		TotalAmount:  b.TotalAmount,
	})

	s.pusher.Publish(realtime.TopicAllBookings, realtime.EventBookingCreated, b)
	log.Printf("Booking created (booking_id=%s, user_id=%s)", b.ID, caller.ID)
	return b, nil
}

// Update applies a partial update. Only the owner and approved editors
// pass; everyone else gets a Forbidden error flagged NeedsApproval, even
// when the body is invalid.
func (s *BookingService) Update(ctx context.Context, id uuid.UUID, caller Caller, req *dto.UpdateBookingRequest) (*models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.CanEdit(caller.ID) {
		return nil, apperror.NeedsApproval("You do not have permission to edit this booking")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.InvalidRequest(err.Error())
	}

	fields := req.Apply(b)
	b.Balance = b.TotalAmount - b.AmountPaid
	b.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBooking(ctx, b); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("Booking not found")
		}
		log.Printf("Error updating booking: %v (booking_id=%s, user_id=%s)", err, id, caller.ID)
		return nil, apperror.Internal("Failed to update booking", err)
	}
	s.record(ctx, b.ID, caller.ID, models.UpdateDetails{Fields: fields})

	s.pusher.Publish(realtime.TopicAllBookings, realtime.EventBookingUpdated, b)
	s.pusher.Publish(realtime.BookingTopic(b.ID), realtime.EventBookingUpdated, b)
	return b, nil
}

// Delete removes a booking. Approved editors may edit but not delete.
func (s *BookingService) Delete(ctx context.Context, id uuid.UUID, caller Caller) error {
	b, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !b.IsOwner(caller.ID) {
		return apperror.Forbidden("Only the booking owner can delete this booking")
	}
	if err := s.store.DeleteBooking(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NotFound("Booking not found")
		}
		return apperror.Internal("Failed to delete booking", err)
	}
	s.record(ctx, id, caller.ID, models.DeleteDetails{CustomerName: b.CustomerName})

	payload := realtime.BookingDeleted{ID: id}
	s.pusher.Publish(realtime.TopicAllBookings, realtime.EventBookingDeleted, payload)
	s.pusher.Publish(realtime.BookingTopic(id), realtime.EventBookingDeleted, payload)
	log.Printf("Booking deleted (booking_id=%s, user_id=%s)", id, caller.ID)
	return nil
}

// Activities returns the audit trail of a booking, newest first
func (s *BookingService) Activities(ctx context.Context, id uuid.UUID) ([]models.BookingActivity, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	items, err := s.store.ListActivities(ctx, id)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch activities", err)
	}
	return items, nil
}

func (s *BookingService) load(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("Booking not found")
		}
		return nil, apperror.Internal("Failed to fetch booking", err)
	}
	return b, nil
}

// record appends an audit entry. The booking write has already happened,
// so a failure here is logged and not returned.
func (s *BookingService) record(ctx context.Context, bookingID uuid.UUID, userID string, details models.ActivityDetails) {
	a := models.NewActivity(bookingID, userID, details)
	if err := s.store.AppendActivity(ctx, a); err != nil {
		log.Printf("Error recording activity: %v (booking_id=%s, action=%s)", err, bookingID, a.Action)
	}
}
