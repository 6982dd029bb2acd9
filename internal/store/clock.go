package store

import "time"

// Clock abstracts wall time for save timestamps, so tests can pin exact
// instants instead of sleeping around time.Now.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current wall time.
func (SystemClock) Now() time.Time { return time.Now() }
