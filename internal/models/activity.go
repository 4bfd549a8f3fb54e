package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ActivityAction string

const (
	ActivityCreate      ActivityAction = "create"
	ActivityUpdate      ActivityAction = "update"
	ActivityDelete      ActivityAction = "delete"
	ActivityRequestEdit ActivityAction = "request_edit"
	ActivityApproveEdit ActivityAction = "approve_edit"
	ActivityRejectEdit  ActivityAction = "reject_edit"
)

// ActivityDetails is the action-specific payload of a BookingActivity.
// Each action has exactly one concrete details type.
type ActivityDetails interface {
	Action() ActivityAction
}

// CreateDetails snapshots the identifying fields of a new booking
type CreateDetails struct {
	CustomerName string      `json:"customerName"`
	Type         BookingType `json:"type"`
	TotalAmount  float64     `json:"totalAmount"`
}

func (CreateDetails) Action() ActivityAction { return ActivityCreate }

// UpdateDetails lists the fields an update touched
type UpdateDetails struct {
	Fields []string `json:"fields"`
}

func (UpdateDetails) Action() ActivityAction { return ActivityUpdate }

type DeleteDetails struct {
	CustomerName string `json:"customerName"`
}

func (DeleteDetails) Action() ActivityAction { return ActivityDelete }

type RequestEditDetails struct {
	RequestID uuid.UUID `json:"requestId"`
	Reason    string    `json:"reason,omitempty"`
}

func (RequestEditDetails) Action() ActivityAction { return ActivityRequestEdit }

// ResolveEditDetails is shared by approve_edit and reject_edit
type ResolveEditDetails struct {
	RequestID   uuid.UUID `json:"requestId"`
	RequesterID string    `json:"requesterId"`
	Approved    bool      `json:"-"`
}

func (d ResolveEditDetails) Action() ActivityAction {
	if d.Approved {
		return ActivityApproveEdit
	}
	return ActivityRejectEdit
}

// BookingActivity is an append-only audit record
type BookingActivity struct {
	ID        uuid.UUID       `json:"id"`
	BookingID uuid.UUID       `json:"bookingId"`
	UserID    string          `json:"userId"`
	Action    ActivityAction  `json:"action"`
	Details   ActivityDetails `json:"details"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewActivity builds an activity whose action is taken from its details
func NewActivity(bookingID uuid.UUID, userID string, details ActivityDetails) *BookingActivity {
	return &BookingActivity{
		ID:        uuid.New(),
		BookingID: bookingID,
		UserID:    userID,
		Action:    details.Action(),
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
}

// UnmarshalJSON decodes Details into the concrete type selected by Action
func (a *BookingActivity) UnmarshalJSON(data []byte) error {
	type plain BookingActivity
	var raw struct {
		plain
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	details, err := DecodeActivityDetails(raw.Action, raw.Details)
	if err != nil {
		return err
	}
	*a = BookingActivity(raw.plain)
	a.Details = details
	return nil
}

// DecodeActivityDetails turns a stored details document back into its
// concrete type.
func DecodeActivityDetails(action ActivityAction, raw []byte) (ActivityDetails, error) {
	var details ActivityDetails
	switch action {
	case ActivityCreate:
		details = &CreateDetails{}
	case ActivityUpdate:
		details = &UpdateDetails{}
	case ActivityDelete:
		details = &DeleteDetails{}
	case ActivityRequestEdit:
		details = &RequestEditDetails{}
	case ActivityApproveEdit:
		details = &ResolveEditDetails{Approved: true}
	case ActivityRejectEdit:
		details = &ResolveEditDetails{}
	default:
		return nil, fmt.Errorf("unknown activity action %q", action)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return deref(details), nil
	}
	if err := json.Unmarshal(raw, details); err != nil {
		return nil, fmt.Errorf("decode %s details: %w", action, err)
	}
	return deref(details), nil
}

func deref(d ActivityDetails) ActivityDetails {
	switch v := d.(type) {
	case *CreateDetails:
		return *v
	case *UpdateDetails:
		return *v
	case *DeleteDetails:
		return *v
	case *RequestEditDetails:
		return *v
	case *ResolveEditDetails:
		return *v
	}
	return d
}
