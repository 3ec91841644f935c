// Package pace caps how often a renderer presents frames. The engine loop
// has no sleep of its own; presentation is where it blocks.
package pace

import (
	"time"
)

// DefaultFPS is the frame cap used until configuration says otherwise.
const DefaultFPS = 60

// Limiter sleeps out the rest of a frame period. A nil Limiter or a zero
// period never sleeps.
type Limiter struct {
	period time.Duration
	last   time.Time

	// Now and Sleep default to the time package; tests replace them.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// New creates a limiter presenting at most fps frames per second.
func New(fps uint64) *Limiter {
	l := &Limiter{Now: time.Now, Sleep: time.Sleep}
	l.SetFrameRate(fps)
	return l
}

// SetFrameRate changes the cap. Zero disables it.
func (l *Limiter) SetFrameRate(fps uint64) {
	if fps == 0 {
		l.period = 0
		return
	}
	if fps > uint64(time.Second) {
		fps = uint64(time.Second)
	}
	l.period = time.Second / time.Duration(fps)
}

// Period returns the target frame period, zero when uncapped.
func (l *Limiter) Period() time.Duration {
	if l == nil {
		return 0
	}
	return l.period
}

// Wait blocks until a full period has passed since the previous Wait
// returned. The first call returns immediately.
func (l *Limiter) Wait() {
	if l == nil || l.period <= 0 {
		return
	}
	now := l.Now()
	if !l.last.IsZero() {
		if elapsed := now.Sub(l.last); elapsed < l.period {
			l.Sleep(l.period - elapsed)
			now = l.Now()
		}
	}
	l.last = now
}
