package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"traveldesk-backend/internal/dto"
	"traveldesk-backend/internal/services"
	"traveldesk-backend/internal/utils"
)

// NotificationsHandler: HTTP endpoints (list / mark read / mark all read)
type NotificationsHandler struct {
	svc *services.NotificationService
}

func NewNotificationsHandler(svc *services.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{svc: svc}
}

// ListNotifications returns the caller's newest notifications
// @Summary List notifications
// @Description Newest first, at most 50.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/notifications [get]
func (h *NotificationsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	items, err := h.svc.List(r.Context(), caller.ID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, items)
}

// MarkNotifications flips the read flag
// @Summary Mark notifications as read
// @Description Marks the listed notifications, or all of them with markAll. IDs that are malformed or belong to other users are ignored.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MarkNotificationsRequest true "IDs or markAll"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/notifications [put]
func (h *NotificationsHandler) MarkNotifications(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req dto.MarkNotificationsRequest
	if err := utils.DecodeJSONRequest(r, &req, true); err != nil {
		log.Printf("Warning: ignoring undecodable mark-read body: %v (user_id=%s)", err, caller.ID)
	}

	var err error
	if req.MarkAll {
		_, err = h.svc.MarkAllRead(r.Context(), caller.ID)
	} else if ids := parseIDs(req.NotificationIDs); len(ids) > 0 {
		_, err = h.svc.MarkRead(r.Context(), caller.ID, ids)
	}
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

func parseIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
