package feed

import "errors"

var (
	// ErrBadPageLength is returned when page length is not positive.
	ErrBadPageLength = errors.New("page length must be positive")
	// ErrDuplicateItem is returned when two items share the same identifier.
	ErrDuplicateItem = errors.New("duplicate item identifier")
)

// ErrNoClock is returned when controller is created without a clock.
var ErrNoClock = errors.New("clock is required")
