package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// BookingType discriminates the type-specific booking fields
type BookingType string

const (
	BookingTypeHotel   BookingType = "hotel"
	BookingTypeFlight  BookingType = "flight"
	BookingTypePackage BookingType = "package"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// PaymentStatus tracks settlement of a booking
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// Guests is the party composition of a booking
type Guests struct {
	Adults       int   `json:"adults"`
	Children     int   `json:"children"`
	ChildrenAges []int `json:"childrenAges"`
}

// Document is a file attached to a booking
type Document struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Booking represents a hotel, flight or package reservation.
// UserID is the owner; ApprovedEditors are users granted edit rights
// through an approved edit request.
type Booking struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"userId"`
	ApprovedEditors []string  `json:"approvedEditors"`
	CreatorName     string    `json:"creatorName,omitempty"`

	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`

	Type         BookingType `json:"type"`
	HotelName    string      `json:"hotelName,omitempty"`
	FlightNumber string      `json:"flightNumber,omitempty"`
	PackageName  string      `json:"packageName,omitempty"`

	// Travel details
	TravelDate      *time.Time `json:"travelDate,omitempty"`
	Destinations    []string   `json:"destinations,omitempty"`
	HotelOrResort   string     `json:"hotelOrResort,omitempty"`
	NumberOfClients int        `json:"numberOfClients,omitempty"`
	CheckIn         *time.Time `json:"checkIn,omitempty"`
	CheckOut        *time.Time `json:"checkOut,omitempty"`
	FlightDate      *time.Time `json:"flightDate,omitempty"`
	Guests          Guests     `json:"guests"`
	Rooms           int        `json:"rooms,omitempty"`
	Activities      []string   `json:"activities"`
	OtherServices   string     `json:"otherServices,omitempty"`

	// Payments
	Costs          float64       `json:"costs,omitempty"`
	TotalAmount    float64       `json:"totalAmount"`
	AmountPaid     float64       `json:"amountPaid"`
	DatePaid       *time.Time    `json:"datePaid,omitempty"`
	PaymentMethod  string        `json:"paymentMethod,omitempty"`
	Balance        float64       `json:"balance"`
	PaymentDueDate *time.Time    `json:"paymentDueDate,omitempty"`
	Status         BookingStatus `json:"status"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`

	Documents []Document `json:"documents"`
	Notes     string     `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CanEdit reports whether userID may mutate the booking: the owner or
// any approved editor.
func (b *Booking) CanEdit(userID string) bool {
	if b == nil || userID == "" {
		return false
	}
	if b.UserID == userID {
		return true
	}
	return slices.Contains(b.ApprovedEditors, userID)
}

// IsOwner reports whether userID created the booking
func (b *Booking) IsOwner(userID string) bool {
	return b != nil && userID != "" && b.UserID == userID
}

// ApplyDefaults fills zero-valued enums and collections the way a freshly
// created booking document carries them.
func (b *Booking) ApplyDefaults() {
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = PaymentStatusPending
	}
	if b.Guests.Adults == 0 {
		b.Guests.Adults = 1
	}
	if b.Guests.ChildrenAges == nil {
		b.Guests.ChildrenAges = []int{}
	}
	if b.ApprovedEditors == nil {
		b.ApprovedEditors = []string{}
	}
	if b.Activities == nil {
		b.Activities = []string{}
	}
	if b.Documents == nil {
		b.Documents = []Document{}
	}
	b.Balance = b.TotalAmount - b.AmountPaid
}

// Valid reports whether t is a known booking type
func (t BookingType) Valid() bool {
	switch t {
	case BookingTypeHotel, BookingTypeFlight, BookingTypePackage:
		return true
	}
	return false
}

// Valid reports whether s is a known booking status
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}
