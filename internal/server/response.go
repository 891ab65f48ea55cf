package server

import (
	"encoding/json"
	"net/http"
	"time"

	"task-tracker/internal/errors"
	"task-tracker/internal/validation"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Timestamp   string                  `json:"timestamp"`
	Status      int                     `json:"status"`
	Error       string                  `json:"error"`
	Message     string                  `json:"message"`
	Path        string                  `json:"path"`
	FieldErrors []validation.FieldError `json:"fieldErrors,omitempty"`
}

const genericMessage = "An unexpected error occurred. Please try again."

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	}
	body.Status, body.Message, body.FieldErrors = classify(err)
	body.Error = http.StatusText(body.Status)
	writeJSON(w, body.Status, body)
}

// classify maps an error to its HTTP status and client message. Storage and
// unexpected failures never expose their cause.
func classify(err error) (int, string, []validation.FieldError) {
	if ve, ok := validation.AsValidationError(err); ok {
		return http.StatusBadRequest, ve.GetUserFriendlyMessage(), ve.Errors
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError, genericMessage, nil
	}
	switch appErr.Type {
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound, appErr.Message, nil
	case errors.ErrorTypeAlreadyExists:
		return http.StatusConflict, appErr.Message, nil
	case errors.ErrorTypeValidation, errors.ErrorTypeInvalidInput:
		return http.StatusBadRequest, appErr.Message, nil
	case errors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout, errors.GetUserMessage(err), nil
	default:
		return http.StatusInternalServerError, genericMessage, nil
	}
}
