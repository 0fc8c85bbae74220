// Path: internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a successful upstream response that says the entity does
// not exist. Callers clear their result instead of showing an error.
var ErrNotFound = errors.New("not found")

// TransportError is a non-success HTTP status or a network failure on an
// upstream call. It is never retried.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status code: %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
