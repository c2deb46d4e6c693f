package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrorResponse is the JSON body returned for failed API calls.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Display       string         `json:"display_message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

var statusBySentinel = []struct {
	sentinel error
	status   int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrAlreadyExists, http.StatusConflict},
	{ErrVersionConflict, http.StatusConflict},
	{ErrValidation, http.StatusBadRequest},
	{ErrInvalidOperation, http.StatusBadRequest},
	{ErrPermissionDenied, http.StatusForbidden},
	{ErrTooManyRequests, http.StatusTooManyRequests},
	{ErrHTTPClient, http.StatusBadGateway},
	{ErrDatabase, http.StatusInternalServerError},
	{ErrSystem, http.StatusInternalServerError},
	{ErrInternal, http.StatusInternalServerError},
}

// HTTPStatusFromErr maps a marked error to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.sentinel) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// ToResponse builds the API error body. Internal messages are only exposed
// for client errors.
func ToResponse(err error) (int, ErrorResponse) {
	status := HTTPStatusFromErr(err)
	display := HintOf(err)
	if display == "" {
		display = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error: ErrorDetail{
			Display: display,
			Details: DetailsOf(err),
		},
	}
	if status < http.StatusInternalServerError {
		resp.Error.InternalError = err.Error()
	}
	return status, resp
}
