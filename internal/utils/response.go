package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"traveldesk-backend/internal/apperror"
	"traveldesk-backend/internal/dto"
)

const maxBodyBytes = 1 << 20

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v (status=%d)", err, status)
	}
}

// WriteErrorResponse writes an {error, message} body
func WriteErrorResponse(w http.ResponseWriter, status int, errTitle, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: errTitle, Message: message})
}

// WriteAppError maps a service error onto its status and body. Internal
// errors are logged and their cause is not exposed.
func WriteAppError(w http.ResponseWriter, err error) {
	appErr := apperror.As(err)
	if appErr.Kind == apperror.KindInternal {
		log.Printf("Internal error: %v", err)
	}
	WriteJSONResponse(w, appErr.Status(), dto.ErrorResponse{
		Error:         appErr.Title(),
		Message:       appErr.Message,
		NeedsApproval: appErr.NeedsApproval,
	})
}

// DecodeJSONRequest decodes the request body into v. An empty body leaves
// v untouched when allowEmpty is set.
func DecodeJSONRequest(r *http.Request, v interface{}, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
