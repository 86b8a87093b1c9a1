package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth means the platform rejected the bearer credential. Recoverable
	// exactly once per run via refresh, and only for the destination platform.
	ErrAuth = errors.New("credential rejected")

	// ErrNotFound means the referenced playlist or collection does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimit means the platform is throttling the caller.
	ErrRateLimit = errors.New("rate limited")
)

// UpstreamError wraps any non-2xx platform response that is not an auth,
// not-found or rate-limit failure.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}
