package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is returned when the platform rejected the access token and no refresh was possible
// The session has been cleared by the time the caller sees it
var ErrSessionExpired = errors.New("session expired")

// GenericMessage is shown when the platform gave no usable message
const GenericMessage = "Something went wrong. Please try again."

const serverErrorMessage = "server error"

// TransportError wraps a failure to reach the platform at all
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx answer of the platform
// Client errors carry the server message verbatim, server errors a generic one
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform returned %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 answer
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// StatusOf returns the HTTP status of an APIError, or 0 for any other error
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// UserMessage converts an error into the text shown to the user
func UserMessage(err error) string {
	if errors.Is(err, ErrSessionExpired) {
		return "Your session has expired. Please log in again."
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError && apiErr.Message != "" {
		return apiErr.Message
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return "The learning platform is unreachable. Please try again later."
	}

	return GenericMessage
}
