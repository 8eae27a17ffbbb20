// Package timing provides the monotonic timers coordinators use to gate
// time-boxed behaviors such as debouncing and oscillation.
package timing

import (
	"sync"
	"time"
)

// Clock reports monotonic time as an offset from an arbitrary origin.
type Clock interface {
	Now() time.Duration
}

// MonotonicClock reads the process monotonic clock.
type MonotonicClock struct {
	origin time.Time
}

// NewMonotonicClock creates a clock whose origin is the moment of creation.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{origin: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *MonotonicClock) Now() time.Duration {
	return time.Since(c.origin)
}

// ManualClock only moves when told to. Simulations and tests step it once per
// control cycle.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Duration
}

// NewManualClock creates a manual clock starting at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}
