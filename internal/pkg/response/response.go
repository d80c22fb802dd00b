// Package response provides JSON response helpers for API handlers.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apierrors "github.com/vikasavnish/movein/internal/pkg/errors"
)

// ErrorBody is the envelope of every JSON error.
type ErrorBody struct {
	Error *apierrors.APIError `json:"error"`
}

// JSON writes data as the JSON body with the given status code. Payloads are
// not wrapped; the map script consumes them as-is.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// OK writes a 200 OK response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error writes an error response. Errors that are not APIErrors are logged
// and reported as internal errors.
func Error(w http.ResponseWriter, err error) {
	apiErr := apierrors.AsAPIError(err)
	if apiErr == apierrors.ErrInternal && err != apierrors.ErrInternal {
		log.Error().Err(err).Msg("unhandled error")
	}
	JSON(w, apiErr.StatusCode, ErrorBody{Error: apiErr})
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, apierrors.ErrBadRequest.WithMessage(message))
}

// Unauthorized writes a 401 Unauthorized error response.
func Unauthorized(w http.ResponseWriter) {
	Error(w, apierrors.ErrUnauthorized)
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, apierrors.NewNotFoundError(resource))
}

// ValidationErrors writes a 400 validation error response with multiple field errors.
func ValidationErrors(w http.ResponseWriter, fields map[string]string) {
	Error(w, apierrors.NewValidationErrors(fields))
}

// Decode reads a JSON request body into dst, writing a 400 and returning
// false when it cannot.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "Invalid request payload")
		return false
	}
	return true
}
