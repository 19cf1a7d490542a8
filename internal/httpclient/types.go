package httpclient

import (
	"errors"
	"fmt"
)

// ErrResponseTooLarge is returned when a response exceeds the client's size limit
var ErrResponseTooLarge = errors.New("response too large")

// HTTPError represents a non-200 response
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

// Error returns the error message
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// Temporary reports whether retrying the request may succeed.
// Server errors and 429 are temporary, other statuses are not.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, url, message string) error {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Message:    message,
	}
}
