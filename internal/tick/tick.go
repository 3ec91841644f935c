// Package tick turns wall-clock progress into bounded delta times for the
// payload's update step.
package tick

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/calendon/internal/core"
)

// Engine defaults for the tick window.
var (
	DefaultMin = core.Milli(8)
	DefaultMax = core.Milli(5000)
)

// Generator decides, once per loop iteration, whether a tick happens and
// how long it is.
//
// Deltas below Min are withheld without moving the last-tick instant, so
// they accumulate into a later tick. Deltas above Max (a paused debugger,
// a suspended laptop) move the last-tick instant but are dropped, so the
// payload never observes the jump.
type Generator struct {
	clock   core.Clock
	logger  *log.Logger
	last    core.Time
	min     core.Time
	max     core.Time
	dropped uint64
}

// New creates a generator with the given window, starting now.
func New(clock core.Clock, minTick, maxTick core.Time, logger *log.Logger) *Generator {
	g := &Generator{
		clock:  clock,
		logger: logger,
		min:    minTick,
		max:    maxTick,
	}
	g.Reset()
	return g
}

// Reset restarts timing from the current instant.
func (g *Generator) Reset() {
	g.last = g.clock.Now()
}

// Last returns the instant of the last accepted tick.
func (g *Generator) Last() core.Time {
	return g.last
}

// Dropped returns how many oversized ticks were discarded.
func (g *Generator) Dropped() uint64 {
	return g.dropped
}

// Bounds returns the minimum and maximum tick sizes.
func (g *Generator) Bounds() (core.Time, core.Time) {
	return g.min, g.max
}

// Generate reports whether a tick should run now and its delta time.
func (g *Generator) Generate() (core.Time, bool) {
	// A clock reading earlier than the last tick is treated as no progress.
	current := core.MaxTime(g.last, g.clock.Now())

	dt := current.Sub(g.last)
	if dt.Less(g.min) {
		return core.Time{}, false
	}

	// Advance even when the tick gets dropped below, so delay never compounds.
	g.last = current

	if g.max.Less(dt) {
		g.dropped++
		if g.logger != nil {
			g.logger.Debug("skipping large tick", "ms", dt.Milli())
		}
		return core.Time{}, false
	}
	return dt, true
}
