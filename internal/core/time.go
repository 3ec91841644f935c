package core

import (
	"time"
)

// Time is an opaque engine time value with nanosecond resolution.
// It is used both for instants read from a Clock and for the durations
// between them. Subtraction never underflows.
type Time struct {
	native uint64
}

// MsToNs converts milliseconds to the engine's native unit.
func MsToNs(ms uint64) uint64 {
	return ms * 1000 * 1000
}

// NsToMs converts native units to whole milliseconds.
func NsToMs(ns uint64) uint64 {
	return ns / (1000 * 1000)
}

// SecToNs converts seconds to the engine's native unit.
func SecToNs(sec uint64) uint64 {
	return MsToNs(sec * 1000)
}

// Zero returns the zero time.
func Zero() Time {
	return Time{}
}

// Nanos makes a Time from a native nanosecond count.
func Nanos(ns uint64) Time {
	return Time{native: ns}
}

// Milli makes a Time from a millisecond count.
func Milli(ms uint64) Time {
	return Time{native: MsToNs(ms)}
}

// Seconds makes a Time from a second count.
func Seconds(sec uint64) Time {
	return Time{native: SecToNs(sec)}
}

// FromDuration converts a time.Duration, clamping negative values to zero.
func FromDuration(d time.Duration) Time {
	if d < 0 {
		return Time{}
	}
	return Time{native: uint64(d)}
}

// Nanos returns the value in nanoseconds.
func (t Time) Nanos() uint64 {
	return t.native
}

// Milli returns the value in whole milliseconds.
func (t Time) Milli() uint64 {
	return NsToMs(t.native)
}

// Duration returns the value as a time.Duration.
func (t Time) Duration() time.Duration {
	return time.Duration(t.native)
}

// IsZero reports whether t is the zero time.
func (t Time) IsZero() bool {
	return t.native == 0
}

// Add returns t+other.
func (t Time) Add(other Time) Time {
	return Time{native: t.native + other.native}
}

// Sub returns t-other, or zero if other is later than t.
func (t Time) Sub(other Time) Time {
	return Time{native: SubtractMonotonic(t.native, other.native)}
}

// Less reports whether t is strictly before other.
func (t Time) Less(other Time) bool {
	return t.native < other.native
}

// Lerp returns how far t is through total, clamped to [0, 1].
// A zero total is considered already complete.
func (t Time) Lerp(total Time) float64 {
	if total.IsZero() {
		return 1
	}
	return ClampF(float64(t.native)/float64(total.native), 0, 1)
}

// String formats the value as a duration.
func (t Time) String() string {
	return t.Duration().String()
}

// MaxTime returns the later of two times.
func MaxTime(a, b Time) Time {
	if a.Less(b) {
		return b
	}
	return a
}

// SubtractMonotonic returns left-right, saturating at zero.
func SubtractMonotonic(left, right uint64) uint64 {
	if left < right {
		return 0
	}
	return left - right
}
