package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ms-seating/internal/booking/lock"
	"ms-seating/internal/database"
	"ms-seating/internal/logger"
	"ms-seating/internal/scheduling"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Field     string      `json:"field,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, SuccessResponse(message, data))
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, scheduling.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, scheduling.ErrConflict), errors.Is(err, lock.ErrSeatBusy):
		return http.StatusConflict
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err with its mapped status. Conflicts carry the
// conflicting bookings as data; internal errors are logged and not echoed.
func WriteError(w http.ResponseWriter, log *logger.Logger, message string, err error) {
	status := StatusFor(err)
	resp := ErrorResponse(message, err.Error())

	var vErr *scheduling.ValidationError
	if errors.As(err, &vErr) {
		resp.Field = vErr.Field
	}
	var cErr *scheduling.ConflictError
	if errors.As(err, &cErr) {
		resp.Data = cErr.Conflicts
	}

	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("API", fmt.Sprintf("%s: %v", message, err))
		}
		resp.Error = "internal error"
	}
	WriteJSON(w, status, resp)
}

// DecodeJSON reads a JSON body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return scheduling.Invalid("body", "invalid JSON: %v", err)
	}
	return nil
}
