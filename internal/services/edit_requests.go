package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"traveldesk-backend/internal/apperror"
	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/realtime"
	"traveldesk-backend/internal/store"
)

// EditRequestService runs the edit-permission handshake: a non-owner asks
// for edit rights and the owner approves or rejects.
//
// Each workflow is a sequence of independent writes. A failure part way
// through returns an error without undoing the earlier steps.
type EditRequestService struct {
	store         store.Store
	notifications *NotificationService
	pusher        Pusher
}

func NewEditRequestService(s store.Store, notifications *NotificationService, pusher Pusher) *EditRequestService {
	if pusher == nil {
		pusher = noopPusher{}
	}
	return &EditRequestService{store: s, notifications: notifications, pusher: pusher}
}

// Request creates a pending edit request for caller on bookingID, or
// returns the one already pending. created reports which happened.
func (s *EditRequestService) Request(ctx context.Context, bookingID uuid.UUID, caller Caller, reason string) (req *models.EditRequest, created bool, err error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, apperror.NotFound("Booking not found")
		}
		return nil, false, apperror.Internal("Failed to load booking", err)
	}
	if booking.IsOwner(caller.ID) {
		return nil, false, apperror.InvalidRequest("You already own this booking")
	}

	existing, err := s.store.FindPendingEditRequest(ctx, bookingID, caller.ID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, apperror.Internal("Failed to load edit requests", err)
	}

	now := time.Now().UTC()
	req = &models.EditRequest{
		ID:          uuid.New(),
		BookingID:   bookingID,
		RequesterID: caller.ID,
		OwnerID:     booking.UserID,
		Status:      models.EditRequestPending,
		Reason:      reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateEditRequest(ctx, req); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// a concurrent click won the insert; hand back its request
			if existing, findErr := s.store.FindPendingEditRequest(ctx, bookingID, caller.ID); findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, apperror.Internal("Failed to create edit request", err)
	}

	metadata := map[string]any{}
	if reason != "" {
		metadata["reason"] = reason
	}
	if _, err := s.notifications.Notify(ctx, NotifyParams{
		UserID:        booking.UserID,
		Type:          models.NotificationEditRequest,
		Title:         "Edit Request",
		Message:       fmt.Sprintf("%s requested to edit booking %s", caller.DisplayName(), bookingID),
		BookingID:     bookingID,
		EditRequestID: &req.ID,
		RequesterID:   caller.ID,
		RequesterName: caller.DisplayName(),
		Metadata:      metadata,
	}); err != nil {
		return nil, false, err
	}

	activity := models.NewActivity(bookingID, caller.ID, models.RequestEditDetails{RequestID: req.ID, Reason: reason})
	if err := s.store.AppendActivity(ctx, activity); err != nil {
		log.Printf("Error recording activity: %v (booking_id=%s, action=%s)", err, bookingID, activity.Action)
		return nil, false, apperror.Internal("Failed to record activity", err)
	}

	log.Printf("Edit request created (request_id=%s, booking_id=%s, requester_id=%s)", req.ID, bookingID, caller.ID)
	return req, true, nil
}

// Resolve moves a pending request to approved or rejected. Only the owner
// recorded on the request may do this, and only once.
func (s *EditRequestService) Resolve(ctx context.Context, requestID uuid.UUID, caller Caller, action models.EditRequestStatus) (*models.EditRequest, error) {
	if !action.Terminal() {
		return nil, apperror.InvalidRequest("action must be approved or rejected")
	}

	req, err := s.store.GetEditRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("Request not found")
		}
		return nil, apperror.Internal("Failed to load edit request", err)
	}
	if req.OwnerID != caller.ID {
		return nil, apperror.Forbidden("Only the booking owner can resolve this request")
	}
	if req.Status.Terminal() {
		return nil, apperror.Conflict("Request has already been " + string(req.Status))
	}

	approved := action == models.EditRequestApproved
	if approved {
		if _, err := s.store.GetBooking(ctx, req.BookingID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperror.NotFound("Booking not found")
			}
			return nil, apperror.Internal("Failed to load booking", err)
		}
	}

	resolved, err := s.store.ResolveEditRequest(ctx, requestID, action)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return nil, apperror.Conflict("Request has already been resolved")
		case errors.Is(err, store.ErrNotFound):
			return nil, apperror.NotFound("Request not found")
		}
		return nil, apperror.Internal("Failed to resolve edit request", err)
	}

	var booking *models.Booking
	if approved {
		booking, err = s.store.AddApprovedEditor(ctx, resolved.BookingID, resolved.RequesterID)
		if err != nil {
			log.Printf("Error granting edit access: %v (request_id=%s, booking_id=%s)", err, resolved.ID, resolved.BookingID)
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperror.NotFound("Booking not found")
			}
			return nil, apperror.Internal("Failed to grant edit access", err)
		}
	}

	ntype, title := models.NotificationEditRejected, "Edit Request Rejected"
	if approved {
		ntype, title = models.NotificationEditApproved, "Edit Request Approved"
	}
	notification, err := s.notifications.Notify(ctx, NotifyParams{
		UserID:        resolved.RequesterID,
		Type:          ntype,
		Title:         title,
		Message:       fmt.Sprintf("%s %s your edit request for booking %s", caller.DisplayName(), action, resolved.BookingID),
		BookingID:     resolved.BookingID,
		EditRequestID: &resolved.ID,
		RequesterID:   caller.ID,
		RequesterName: caller.DisplayName(),
	})
	if err != nil {
		return nil, err
	}

	activity := models.NewActivity(resolved.BookingID, caller.ID, models.ResolveEditDetails{
		RequestID:   resolved.ID,
		RequesterID: resolved.RequesterID,
		Approved:    approved,
	})
	if err := s.store.AppendActivity(ctx, activity); err != nil {
		log.Printf("Error recording activity: %v (booking_id=%s, action=%s)", err, resolved.BookingID, activity.Action)
		return nil, apperror.Internal("Failed to record activity", err)
	}

	if approved {
		s.pusher.Publish(realtime.UserTopic(resolved.RequesterID), realtime.EventEditPermissionGranted,
			realtime.PermissionGranted{Notification: notification, BookingID: resolved.BookingID})
		s.pusher.Publish(realtime.UserTopic(resolved.RequesterID), realtime.EventBookingUpdated, booking)
		s.pusher.Publish(realtime.BookingTopic(resolved.BookingID), realtime.EventBookingUpdated, booking)
		s.pusher.Publish(realtime.TopicAllBookings, realtime.EventBookingUpdated, booking)
	}

	log.Printf("Edit request %s (request_id=%s, booking_id=%s, requester_id=%s)",
		action, resolved.ID, resolved.BookingID, resolved.RequesterID)
	return resolved, nil
}
