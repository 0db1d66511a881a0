package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is matched by every *RangeError.
	ErrOutOfRange = errors.New("value out of range")
	// ErrClockUnavailable occurs when SyncTime cannot read the current time.
	ErrClockUnavailable = errors.New("clock unavailable")
	// ErrMalformedFrame occurs when raw bytes do not form a 9-byte frame with
	// the expected start and end markers.
	ErrMalformedFrame = errors.New("malformed frame")
)

// RangeError describes a parameter that fell outside its documented bounds.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// Is reports whether target is ErrOutOfRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
