package repo

import (
	"errors"
	"fmt"
)

var (
	// ErrInsecureBaseURL is returned by New for a non-HTTPS base URL.
	ErrInsecureBaseURL = errors.New("repository base URL must use https")

	// ErrUnknownInstance is returned when the configured instance does not
	// appear in the repository manifest.
	ErrUnknownInstance = errors.New("instance is not managed by this repository")
)

// TransportError reports a failed HTTP exchange with the repository:
// a network-level failure, a TLS failure, or a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int // 0 when the request never produced a response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
