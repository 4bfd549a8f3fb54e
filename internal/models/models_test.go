package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestBookingCanEdit(t *testing.T) {
	b := &Booking{UserID: "owner", ApprovedEditors: []string{"editor-1", "editor-2"}}

	tests := []struct {
		name   string
		caller string
		want   bool
	}{
		{"owner", "owner", true},
		{"approved editor", "editor-2", true},
		{"stranger", "someone", false},
		{"empty caller", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.CanEdit(tt.caller); got != tt.want {
				t.Fatalf("CanEdit(%q) = %v, want %v", tt.caller, got, tt.want)
			}
		})
	}

	var nilBooking *Booking
	if nilBooking.CanEdit("owner") {
		t.Fatal("nil booking must not be editable")
	}
}

func TestBookingApplyDefaults(t *testing.T) {
	b := &Booking{TotalAmount: 500, AmountPaid: 120}
	b.ApplyDefaults()

	if b.Status != BookingStatusPending || b.PaymentStatus != PaymentStatusPending {
		t.Fatalf("unexpected default statuses %q/%q", b.Status, b.PaymentStatus)
	}
	if b.Balance != 380 {
		t.Fatalf("expected balance 380, got %v", b.Balance)
	}
	if b.ApprovedEditors == nil || len(b.ApprovedEditors) != 0 {
		t.Fatalf("expected empty editor set, got %v", b.ApprovedEditors)
	}
	if b.Guests.Adults != 1 {
		t.Fatalf("expected one adult by default, got %d", b.Guests.Adults)
	}
}

func TestBookingActivityRoundTripKeepsDetailsType(t *testing.T) {
	bookingID := uuid.New()
	requestID := uuid.New()

	cases := []ActivityDetails{
		CreateDetails{CustomerName: "Ada", Type: BookingTypeHotel, TotalAmount: 500},
		UpdateDetails{Fields: []string{"notes"}},
		RequestEditDetails{RequestID: requestID, Reason: "need to fix dates"},
		ResolveEditDetails{RequestID: requestID, RequesterID: "c", Approved: true},
		ResolveEditDetails{RequestID: requestID, RequesterID: "d"},
	}

	for _, details := range cases {
		a := NewActivity(bookingID, "user", details)
		raw, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("marshal %s: %v", a.Action, err)
		}
		var back BookingActivity
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", a.Action, err)
		}
		if back.Action != a.Action {
			t.Fatalf("action changed: %s -> %s", a.Action, back.Action)
		}
		if back.Details.Action() != a.Action {
			t.Fatalf("details decoded as %s, want %s", back.Details.Action(), a.Action)
		}
	}
}

func TestDecodeActivityDetailsUnknownAction(t *testing.T) {
	if _, err := DecodeActivityDetails("archive", []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown action")
	}
}
