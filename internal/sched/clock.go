package sched

import (
	"sync/atomic"
	"time"
)

// Clock returns simulated time since session start.
type Clock interface {
	Now() time.Duration
}

// ManualClock is advanced explicitly by the tick driver.
type ManualClock struct {
	now atomic.Int64
}

// NewManualClock creates a clock at t=0.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns current simulated time.
func (c *ManualClock) Now() time.Duration {
	return time.Duration(c.now.Load())
}

// Advance moves the clock forward by dt and returns the new time.
// Negative dt is ignored: simulated time never goes backwards.
func (c *ManualClock) Advance(dt time.Duration) time.Duration {
	if dt < 0 {
		dt = 0
	}
	return time.Duration(c.now.Add(int64(dt)))
}

// Set jumps to an absolute time (tests only; must not go backwards in a live session).
func (c *ManualClock) Set(t time.Duration) {
	c.now.Store(int64(t))
}
