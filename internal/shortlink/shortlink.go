package shortlink

import (
	"errors"
	"time"
)

// Code is the short identifier appended to the base URL.
type Code string

// OwnerID is the opaque identity supplied by the authentication collaborator.
// The core never inspects it beyond equality.
type OwnerID string

// ShortLink is the durable mapping from a code to its target URL.
// Only ClickCount ever changes after creation.
type ShortLink struct {
	Code       Code
	TargetURL  string
	OwnerID    OwnerID
	CreatedAt  time.Time
	ClickCount int64
}

var (
	// ErrNotFound is the normal outcome of looking up a code that was never issued.
	ErrNotFound = errors.New("short link not found")

	// ErrCodeExists reports a losing insert-if-absent race. Internal to allocation,
	// handled by retrying with a fresh code.
	ErrCodeExists = errors.New("code already exists")

	// ErrAllocationExhausted reports that the allocation retry budget ran out
	// without committing a free code.
	ErrAllocationExhausted = errors.New("code allocation exhausted")
)

// ValidationError reports a rejected target URL. It is surfaced to the caller
// as-is and never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid target url: " + e.Reason
}
