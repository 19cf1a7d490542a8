package fetch

import (
	"errors"
	"fmt"
)

// ErrFetch matches every error returned by Fetcher.Fetch
var ErrFetch = errors.New("fetch failed")

// FetchError wraps a failed remote fetch
type FetchError struct {
	URL string
	Err error
}

// Error implements error
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFetch
func (*FetchError) Is(target error) bool {
	return target == ErrFetch
}
