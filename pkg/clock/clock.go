// Package clock abstracts time access so that time-dependent logic can be
// tested deterministically. Production code uses the real clock returned by
// Real; tests use a Mock that is advanced explicitly instead of sleeping.
package clock

import "time"

// Clock supplies the current time. Values returned by Now carry Go's
// monotonic clock reading, so differences between them are immune to
// wall-clock adjustments.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration
}

// realClock reads the system clock.
type realClock struct{}

// Real returns a Clock backed by the system clock.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
