package errors

import "errors"

var (
	ErrNotFound = errors.New("property not found")

	ErrInvalidID = errors.New("invalid property ID format")

	// ErrNotAvailable is returned when a compare-and-swap on the active booking misses.
	ErrNotAvailable = errors.New("property is not available")
)
