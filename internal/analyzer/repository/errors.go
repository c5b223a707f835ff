package repository

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is returned when a response decodes but lacks required content.
var ErrSchemaMismatch = errors.New("response schema mismatch")

// StatusError is a non-2xx response from a remote API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, body)
}
