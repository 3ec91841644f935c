package core

import (
	"sync"
	"time"
)

// Clock supplies monotonic "now" readings.
type Clock interface {
	Now() Time
}

// SystemClock reads the process monotonic clock. Readings are relative to
// the moment the clock was created.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock anchored at the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *SystemClock) Now() Time {
	return FromDuration(time.Since(c.start))
}

// ManualClock is a Clock that only moves when told to.
// Used by tests and by deterministic replays.
type ManualClock struct {
	mu  sync.Mutex
	now Time
}

// NewManualClock creates a manual clock reading start.
func NewManualClock(start Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current reading.
func (c *ManualClock) Now() Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t. Moving backwards is allowed so that callers can
// simulate a misbehaving clock source.
func (c *ManualClock) Set(t Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d Time) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
