package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"TASKTRACKER_BACK-END/internal/apperrors"
	"TASKTRACKER_BACK-END/internal/dto"
)

const maxRequestBodyBytes = 1 << 20

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// WriteErrorResponse writes an error envelope with the given status
func WriteErrorResponse(w http.ResponseWriter, status int, errTitle, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: errTitle, Message: message})
}

// WriteAppError maps a service error to its HTTP status. Store and unknown
// errors are logged and answered with a generic message.
func WriteAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		log.Printf("Unhandled error: %v", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "Something went wrong")
		return
	}

	switch appErr.Kind {
	case apperrors.KindValidation:
		WriteErrorResponse(w, http.StatusBadRequest, "Validation error", appErr.Message)
	case apperrors.KindAuth:
		WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", appErr.Message)
	case apperrors.KindAuthz:
		WriteErrorResponse(w, http.StatusForbidden, "Forbidden", appErr.Message)
	case apperrors.KindNotFound:
		WriteErrorResponse(w, http.StatusNotFound, "Not Found", appErr.Message)
	default:
		log.Printf("Store error: %v", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "Something went wrong")
	}
}

// DecodeJSONRequest decodes the request body into dst. On failure it writes
// a 400 response and returns the error; callers just return.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return err
	}
	return nil
}
