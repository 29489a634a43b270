package runner

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions marks a batch-level configuration error. It is the only
// error Run returns; it is always surfaced before any request is issued.
var ErrInvalidOptions = errors.New("invalid runner options")

// HTTPError represents a response that carried an HTTP error status. The
// request completed at the transport level, so the status code is real.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
