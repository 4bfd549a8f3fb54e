package dto

import (
	"time"

	"traveldesk-backend/internal/models"
)

// CreateBookingRequest represents the payload to create a booking
type CreateBookingRequest struct {
	CustomerName  string `json:"customerName" validate:"required"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CustomerPhone string `json:"customerPhone" validate:"required"`

	Type         models.BookingType `json:"type" validate:"required,oneof=hotel flight package"`
	HotelName    string             `json:"hotelName"`
	FlightNumber string             `json:"flightNumber"`
	PackageName  string             `json:"packageName"`

	TravelDate      *time.Time     `json:"travelDate"`
	Destinations    []string       `json:"destinations"`
	HotelOrResort   string         `json:"hotelOrResort"`
	NumberOfClients int            `json:"numberOfClients" validate:"gte=0"`
	CheckIn         *time.Time     `json:"checkIn"`
	CheckOut        *time.Time     `json:"checkOut"`
	FlightDate      *time.Time     `json:"flightDate"`
	Guests          *models.Guests `json:"guests"`
	Rooms           int            `json:"rooms" validate:"gte=0"`
	Activities      []string       `json:"activities"`
	OtherServices   string         `json:"otherServices"`

	Costs          float64              `json:"costs" validate:"gte=0"`
	TotalAmount    *float64             `json:"totalAmount" validate:"required,gte=0"`
	AmountPaid     float64              `json:"amountPaid" validate:"gte=0"`
	DatePaid       *time.Time           `json:"datePaid"`
	PaymentMethod  string               `json:"paymentMethod"`
	PaymentDueDate *time.Time           `json:"paymentDueDate"`
	Status         models.BookingStatus `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus  models.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=pending paid refunded failed"`

	Documents []models.Document `json:"documents" validate:"dive"`
	Notes     string            `json:"notes"`
}

// ToBooking builds the booking document. Ownership and timestamps are set
// by the caller.
func (r *CreateBookingRequest) ToBooking() *models.Booking {
	b := &models.Booking{
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		Type:            r.Type,
		HotelName:       r.HotelName,
		FlightNumber:    r.FlightNumber,
		PackageName:     r.PackageName,
		TravelDate:      r.TravelDate,
		Destinations:    r.Destinations,
		HotelOrResort:   r.HotelOrResort,
		NumberOfClients: r.NumberOfClients,
		CheckIn:         r.CheckIn,
		CheckOut:        r.CheckOut,
		FlightDate:      r.FlightDate,
		Rooms:           r.Rooms,
		Activities:      r.Activities,
		OtherServices:   r.OtherServices,
		Costs:           r.Costs,
		AmountPaid:      r.AmountPaid,
		DatePaid:        r.DatePaid,
		PaymentMethod:   r.PaymentMethod,
		PaymentDueDate:  r.PaymentDueDate,
		Status:          r.Status,
		PaymentStatus:   r.PaymentStatus,
		Documents:       r.Documents,
		Notes:           r.Notes,
	}
	if r.TotalAmount != nil {
		b.TotalAmount = *r.TotalAmount
	}
	if r.Guests != nil {
		b.Guests = *r.Guests
	}
	return b
}

// UpdateBookingRequest represents fields allowed to update a booking.
// All fields are optional; only provided ones will be updated.
type UpdateBookingRequest struct {
	CustomerName  *string `json:"customerName" validate:"omitempty,min=1"`
	CustomerEmail *string `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone *string `json:"customerPhone" validate:"omitempty,min=1"`

	Type         *models.BookingType `json:"type" validate:"omitempty,oneof=hotel flight package"`
	HotelName    *string             `json:"hotelName"`
	FlightNumber *string             `json:"flightNumber"`
	PackageName  *string             `json:"packageName"`

	TravelDate      *time.Time     `json:"travelDate"`
	Destinations    *[]string      `json:"destinations"`
	HotelOrResort   *string        `json:"hotelOrResort"`
	NumberOfClients *int           `json:"numberOfClients" validate:"omitempty,gte=0"`
	CheckIn         *time.Time     `json:"checkIn"`
	CheckOut        *time.Time     `json:"checkOut"`
	FlightDate      *time.Time     `json:"flightDate"`
	Guests          *models.Guests `json:"guests"`
	Rooms           *int           `json:"rooms" validate:"omitempty,gte=0"`
	Activities      *[]string      `json:"activities"`
	OtherServices   *string        `json:"otherServices"`

	Costs          *float64              `json:"costs" validate:"omitempty,gte=0"`
	TotalAmount    *float64              `json:"totalAmount" validate:"omitempty,gte=0"`
	AmountPaid     *float64              `json:"amountPaid" validate:"omitempty,gte=0"`
	DatePaid       *time.Time            `json:"datePaid"`
	PaymentMethod  *string               `json:"paymentMethod"`
	PaymentDueDate *time.Time            `json:"paymentDueDate"`
	Status         *models.BookingStatus `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus  *models.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=pending paid refunded failed"`

	Documents *[]models.Document `json:"documents"`
	Notes     *string            `json:"notes"`
}

// Apply copies the provided fields onto b and returns the JSON names of
// the fields it touched.
func (r *UpdateBookingRequest) Apply(b *models.Booking) []string {
	var fields []string
	set := func(name string, apply func()) {
		apply()
		fields = append(fields, name)
	}

	if r.CustomerName != nil {
		set("customerName", func() { b.CustomerName = *r.CustomerName })
	}
	if r.CustomerEmail != nil {
		set("customerEmail", func() { b.CustomerEmail = *r.CustomerEmail })
	}
	if r.CustomerPhone != nil {
		set("customerPhone", func() { b.CustomerPhone = *r.CustomerPhone })
	}
	if r.Type != nil {
		set("type", func() { b.Type = *r.Type })
	}
	if r.HotelName != nil {
		set("hotelName", func() { b.HotelName = *r.HotelName })
	}
	if r.FlightNumber != nil {
		set("flightNumber", func() { b.FlightNumber = *r.FlightNumber })
	}
	if r.PackageName != nil {
		set("packageName", func() { b.PackageName = *r.PackageName })
	}
	if r.TravelDate != nil {
		set("travelDate", func() { b.TravelDate = r.TravelDate })
	}
	if r.Destinations != nil {
		set("destinations", func() { b.Destinations = *r.Destinations })
	}
	if r.HotelOrResort != nil {
		set("hotelOrResort", func() { b.HotelOrResort = *r.HotelOrResort })
	}
	if r.NumberOfClients != nil {
		set("numberOfClients", func() { b.NumberOfClients = *r.NumberOfClients })
	}
	if r.CheckIn != nil {
		set("checkIn", func() { b.CheckIn = r.CheckIn })
	}
	if r.CheckOut != nil {
		set("checkOut", func() { b.CheckOut = r.CheckOut })
	}
	if r.FlightDate != nil {
		set("flightDate", func() { b.FlightDate = r.FlightDate })
	}
	if r.Guests != nil {
		set("guests", func() { b.Guests = *r.Guests })
	}
	if r.Rooms != nil {
		set("rooms", func() { b.Rooms = *r.Rooms })
	}
	if r.Activities != nil {
		set("activities", func() { b.Activities = *r.Activities })
	}
	if r.OtherServices != nil {
		set("otherServices", func() { b.OtherServices = *r.OtherServices })
	}
	if r.Costs != nil {
		set("costs", func() { b.Costs = *r.Costs })
	}
	if r.TotalAmount != nil {
		set("totalAmount", func() { b.TotalAmount = *r.TotalAmount })
	}
	if r.AmountPaid != nil {
		set("amountPaid", func() { b.AmountPaid = *r.AmountPaid })
	}
	if r.DatePaid != nil {
		set("datePaid", func() { b.DatePaid = r.DatePaid })
	}
	if r.PaymentMethod != nil {
		set("paymentMethod", func() { b.PaymentMethod = *r.PaymentMethod })
	}
	if r.PaymentDueDate != nil {
		set("paymentDueDate", func() { b.PaymentDueDate = r.PaymentDueDate })
	}
	if r.Status != nil {
		set("status", func() { b.Status = *r.Status })
	}
	if r.PaymentStatus != nil {
		set("paymentStatus", func() { b.PaymentStatus = *r.PaymentStatus })
	}
	if r.Documents != nil {
		set("documents", func() { b.Documents = *r.Documents })
	}
	if r.Notes != nil {
		set("notes", func() { b.Notes = *r.Notes })
	}
	return fields
}

// BookingDetailResponse is a booking plus the caller's edit permission
type BookingDetailResponse struct {
	*models.Booking
	CanEdit bool `json:"canEdit"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
