package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"traveldesk-backend/internal/services"
	"traveldesk-backend/internal/utils"
)

// callerFrom reads the identity set by the auth middleware. It writes the
// 401 itself when there is none.
func callerFrom(w http.ResponseWriter, r *http.Request) (services.Caller, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return services.Caller{}, false
	}
	return services.Caller{ID: userID, Name: utils.GetUserNameFromContext(r.Context())}, true
}

// pathUUID parses a UUID path parameter. It writes the 400 itself when
// the value is malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid id", name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
