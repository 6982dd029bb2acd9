package testutil

import (
	"sync"
	"time"
)

// FixedClock is a thread-safe wall clock pinned to a known instant.
//
// Unlike store.SystemClock, FixedClock never moves on its own. Tests pin
// save timestamps with it so archive listings and history rows can be
// asserted exactly.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu sync.Mutex
	at time.Time
}

// NewFixedClock creates a clock pinned to at.
func NewFixedClock(at time.Time) *FixedClock {
	return &FixedClock{at: at}
}

// Now returns the pinned instant.
//
// Implements the store.Clock interface.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

// Set moves the clock to a new instant.
//
// Used between saves so successive archive entries carry distinct, known
// timestamps.
func (c *FixedClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = at
}

// Advance moves the clock forward by d. Negative d moves it backward.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}
