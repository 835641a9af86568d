// Package clock provides a tiny time abstraction. Code that needs the
// current time depends on Clocker so tests can pin it to a fixed instant.
package clock

import "time"

// Clocker abstracts the wall clock.
type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the real system clock.
type TimeClocker struct{}

// New returns the production clock.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Static is a Clocker that always returns the same instant. Test helper.
type Static time.Time

// Now returns the pinned instant.
func (s Static) Now() time.Time {
	return time.Time(s)
}
