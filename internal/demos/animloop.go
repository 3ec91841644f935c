package demos

import "github.com/vovakirdan/calendon/internal/core"

// AnimLoop is a cyclic sequence of states, each shown for its own duration.
type AnimLoop struct {
	Durations []core.Time
}

// AnimCursor is a position within an AnimLoop.
type AnimCursor struct {
	Current int
	Elapsed core.Time // time spent in Current
}

// Tick advances c by dt, wrapping around the loop. Several states are
// skipped when dt spans more than one of them.
func (l AnimLoop) Tick(c *AnimCursor, dt core.Time) {
	if len(l.Durations) == 0 {
		return
	}
	c.Elapsed = c.Elapsed.Add(dt)
	for {
		d := l.Durations[c.Current]
		if c.Elapsed.Less(d) || d.IsZero() {
			return
		}
		c.Elapsed = c.Elapsed.Sub(d)
		c.Current = (c.Current + 1) % len(l.Durations)
	}
}
