package handlers

import (
	"net/http"

	"traveldesk-backend/internal/dto"
	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/services"
	"traveldesk-backend/internal/utils"
)

type EditRequestsHandler struct {
	svc *services.EditRequestService
}

func NewEditRequestsHandler(svc *services.EditRequestService) *EditRequestsHandler {
	return &EditRequestsHandler{svc: svc}
}

// CreateEditRequest asks the booking owner for edit access
// @Summary Request edit access
// @Description Creates a pending edit request, or returns the caller's existing pending one.
// @Tags edit-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param body body dto.CreateEditRequestBody false "Optional reason"
// @Success 200 {object} models.EditRequest "Existing pending request"
// @Success 201 {object} models.EditRequest "Created"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/bookings/{id}/edit-requests [post]
func (h *EditRequestsHandler) CreateEditRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	// the body is optional
	var body dto.CreateEditRequestBody
	if err := utils.DecodeJSONRequest(r, &body, true); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := utils.ValidateStruct(&body); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	req, created, err := h.svc.Request(r.Context(), bookingID, caller, body.Reason)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.WriteJSONResponse(w, status, req)
}

// ResolveEditRequest approves or rejects a pending request
// @Summary Resolve edit request
// @Tags edit-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param requestId path string true "Edit request ID"
// @Param body body dto.ResolveEditRequestBody true "approved or rejected"
// @Success 200 {object} models.EditRequest
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already resolved"
// @Router /api/bookings/edit-requests/{requestId} [put]
func (h *EditRequestsHandler) ResolveEditRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "requestId")
	if !ok {
		return
	}

	var body dto.ResolveEditRequestBody
	if err := utils.DecodeJSONRequest(r, &body, false); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := utils.ValidateStruct(&body); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	req, err := h.svc.Resolve(r.Context(), requestID, caller, models.EditRequestStatus(body.Action))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, req)
}
