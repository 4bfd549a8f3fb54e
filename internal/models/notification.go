package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationEditRequest  NotificationType = "edit_request"
	NotificationEditApproved NotificationType = "edit_approved"
	NotificationEditRejected NotificationType = "edit_rejected"
)

// Notification is an alert addressed to one user
type Notification struct {
	ID                   uuid.UUID        `json:"id"`
	UserID               string           `json:"userId"`
	Type                 NotificationType `json:"type"`
	Title                string           `json:"title"`
	Message              string           `json:"message"`
	BookingID            uuid.UUID        `json:"bookingId"`
	BookingEditRequestID *uuid.UUID       `json:"bookingEditRequestId,omitempty"`
	RequesterID          string           `json:"requesterId,omitempty"`
	RequesterName        string           `json:"requesterName,omitempty"`
	IsRead               bool             `json:"isRead"`
	Metadata             map[string]any   `json:"metadata"`
	CreatedAt            time.Time        `json:"createdAt"`
}
