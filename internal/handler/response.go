package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/pkg/pagination"
)

// apiResponse is the uniform envelope every endpoint returns.
type apiResponse struct {
	Status  string              `json:"status"` // "success" or "error"
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Meta    *pagination.Meta    `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func sendSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, apiResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func sendPaginated(w http.ResponseWriter, message string, data interface{}, meta pagination.Meta) {
	writeJSON(w, http.StatusOK, apiResponse{
		Status:  "success",
		Message: message,
		Data:    data,
		Meta:    &meta,
	})
}

func sendError(w http.ResponseWriter, statusCode int, message string, fieldErrors map[string][]string) {
	writeJSON(w, statusCode, apiResponse{
		Status:  "error",
		Message: message,
		Errors:  fieldErrors,
	})
}

// sendServiceError maps a service failure to a status code by error
// category. Unmatched errors become an opaque 500; the detail is only
// logged, never sent to the client.
func sendServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		sendError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		sendError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthenticated):
		sendError(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		sendError(w, http.StatusForbidden, err.Error(), nil)
	default:
		log.Error("unexpected service error", slog.String("error", err.Error()))
		sendError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// decodeBody parses a JSON request body, rejecting unknown fields.
func decodeBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// fieldErrors accumulates per-field validation messages.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe fieldErrors) empty() bool {
	return len(fe) == 0
}
