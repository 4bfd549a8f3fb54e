package models

import (
	"time"

	"github.com/google/uuid"
)

// EditRequestStatus is the state of an edit-permission negotiation
type EditRequestStatus string

const (
	EditRequestPending  EditRequestStatus = "pending"
	EditRequestApproved EditRequestStatus = "approved"
	EditRequestRejected EditRequestStatus = "rejected"
)

// Terminal reports whether the status can no longer change
func (s EditRequestStatus) Terminal() bool {
	return s == EditRequestApproved || s == EditRequestRejected
}

// EditRequest is a non-owner's request for edit rights on a booking.
// OwnerID is copied from the booking when the request is made.
type EditRequest struct {
	ID          uuid.UUID         `json:"id"`
	BookingID   uuid.UUID         `json:"bookingId"`
	RequesterID string            `json:"requesterId"`
	OwnerID     string            `json:"ownerId"`
	Status      EditRequestStatus `json:"status"`
	Reason      string            `json:"reason,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
