package reservations

import "errors"

var (
	// ErrNotFound: unknown space, resource, or reservation for the tenant.
	// Surfaced to the caller as 404, never retried.
	ErrNotFound = errors.New("not found")

	// ErrConflict: duplicate submission, overlapping interval, or invalid
	// time range. Surfaced as 409, never retried automatically.
	ErrConflict = errors.New("conflict")

	// ErrTimeout: the booking transaction exceeded its acquire or execution
	// budget. Surfaced as 503 with the retryable marker set.
	ErrTimeout = errors.New("timeout")
)
