package protocol

import "time"

// Clock returns the current local time. An error means the time is not
// known.
type Clock func() (time.Time, error)

// SystemClock reads the host's local wall clock.
func SystemClock() (time.Time, error) {
	return time.Now(), nil
}

// FixedClock always reports t. Useful for tests and replaying schedules.
func FixedClock(t time.Time) Clock {
	return func() (time.Time, error) { return t, nil }
}

// dayIndex maps t's weekday onto Sunday = 0 ... Saturday = 6.
func dayIndex(t time.Time) byte {
	return byte(t.Weekday())
}
