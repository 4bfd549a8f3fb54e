package handlers

import (
	"net/http"

	"traveldesk-backend/internal/dto"
	"traveldesk-backend/internal/utils"
)

// AuthHandler exposes the identity carried by the caller's token
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler { return &AuthHandler{} }

// Me returns the authenticated caller
// @Summary Current user
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MeResponse{
		UserID: caller.ID,
		Name:   caller.DisplayName(),
		Email:  utils.GetEmailFromContext(r.Context()),
	})
}
