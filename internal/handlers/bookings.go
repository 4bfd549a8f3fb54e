package handlers

import (
	"net/http"

	"traveldesk-backend/internal/dto"
	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/services"
	"traveldesk-backend/internal/store"
	"traveldesk-backend/internal/utils"
)

// BookingsHandler serves booking CRUD and the activity trail
type BookingsHandler struct {
	svc *services.BookingService
}

func NewBookingsHandler(svc *services.BookingService) *BookingsHandler {
	return &BookingsHandler{svc: svc}
}

// ListBookings returns all bookings
// @Summary List bookings
// @Description List every booking, newest first, optionally filtered by type and status.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param type query string false "hotel|flight|package"
// @Param status query string false "pending|confirmed|cancelled|completed"
// @Success 200 {array} models.Booking
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/bookings [get]
func (h *BookingsHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerFrom(w, r); !ok {
		return
	}
	q := r.URL.Query()
	items, err := h.svc.List(r.Context(), store.BookingFilter{
		Type:   models.BookingType(q.Get("type")),
		Status: models.BookingStatus(q.Get("status")),
	})
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, items)
}

// CreateBooking creates a booking owned by the caller
// @Summary Create booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateBookingRequest true "Booking"
// @Success 201 {object} models.Booking
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/bookings [post]
func (h *BookingsHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if err := utils.DecodeJSONRequest(r, &req, false); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	b, err := h.svc.Create(r.Context(), caller, &req)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, b)
}

// GetBooking returns one booking with the caller's edit permission
// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingDetailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/bookings/{id} [get]
func (h *BookingsHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	b, canEdit, err := h.svc.Get(r.Context(), id, caller)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.BookingDetailResponse{Booking: b, CanEdit: canEdit})
}

// UpdateBooking applies a partial update
// @Summary Update booking
// @Description Owner or approved editors only. Others get 403 with needsApproval=true.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param body body dto.UpdateBookingRequest true "Fields to change"
// @Success 200 {object} models.Booking
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/bookings/{id} [put]
func (h *BookingsHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookingRequest
	if err := utils.DecodeJSONRequest(r, &req, false); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	b, err := h.svc.Update(r.Context(), id, caller, &req)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, b)
}

// DeleteBooking removes a booking
// @Summary Delete booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/bookings/{id} [delete]
func (h *BookingsHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, caller); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Booking deleted successfully"})
}

// ListActivities returns the audit trail of a booking
// @Summary List booking activities
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {array} models.BookingActivity
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/bookings/{id}/activities [get]
func (h *BookingsHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerFrom(w, r); !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	items, err := h.svc.Activities(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, items)
}
