// Package timing is the Time subsystem. It owns the tick window handed to
// the frame tick generator.
package timing

import (
	"fmt"
	"math"

	"github.com/vovakirdan/calendon/internal/cmdline"
	"github.com/vovakirdan/calendon/internal/core"
	"github.com/vovakirdan/calendon/internal/platform/pace"
	"github.com/vovakirdan/calendon/internal/tick"
)

// MaxMs is the largest millisecond value that still fits core.Time.
const MaxMs = math.MaxUint64 / 1_000_000

// Config bounds the deltas forwarded to the payload, in milliseconds, and
// caps how often frames are presented.
type Config struct {
	MinTickMs uint64 `yaml:"min_tick_ms"`
	MaxTickMs uint64 `yaml:"max_tick_ms"`
	FPS       uint64 `yaml:"fps"` // 0 presents as fast as possible
}

// System is the Time subsystem.
type System struct {
	cfg Config
}

// New creates the Time subsystem.
func New() *System {
	return &System{}
}

func (s *System) Name() string { return "Time" }

func (s *System) Config() any { return &s.cfg }

func (s *System) Options() []cmdline.Option {
	return []cmdline.Option{
		{
			Long:    "--min-tick",
			Arg:     "MS",
			Help:    "Smallest delta time forwarded to the payload",
			Handler: cmdline.Value(msSetter(func(c *Config) *uint64 { return &c.MinTickMs })),
		},
		{
			Long:    "--max-tick",
			Arg:     "MS",
			Help:    "Largest delta time forwarded; longer gaps are dropped",
			Handler: cmdline.Value(msSetter(func(c *Config) *uint64 { return &c.MaxTickMs })),
		},
		{
			Long: "--fps",
			Arg:  "N",
			Help: "Cap presented frames per second (0 disables)",
			Handler: cmdline.Value(func(config any, v string) error {
				n, err := cmdline.ParseUint(v)
				if err != nil {
					return err
				}
				config.(*Config).FPS = n
				return nil
			}),
		},
	}
}

func msSetter(field func(*Config) *uint64) func(config any, v string) error {
	return func(config any, v string) error {
		n, err := cmdline.ParseUint(v)
		if err != nil {
			return err
		}
		if n > MaxMs {
			return fmt.Errorf("%q: %w (at most %d ms)", v, cmdline.ErrOutOfRange, uint64(MaxMs))
		}
		*field(config.(*Config)) = n
		return nil
	}
}

// SetDefaultConfig resets the tick window to 8ms..5000ms at 60 frames per
// second.
func (s *System) SetDefaultConfig(config any) {
	*config.(*Config) = Config{
		MinTickMs: tick.DefaultMin.Milli(),
		MaxTickMs: tick.DefaultMax.Milli(),
		FPS:       pace.DefaultFPS,
	}
}

// Init rejects an empty, inverted or unrepresentable window. Values from
// the config file reach here without passing the option handlers.
func (s *System) Init() error {
	if s.cfg.MinTickMs == 0 {
		return fmt.Errorf("minimum tick must be at least 1ms")
	}
	for _, ms := range []uint64{s.cfg.MinTickMs, s.cfg.MaxTickMs} {
		if ms > MaxMs {
			return fmt.Errorf("tick of %dms: %w (at most %d ms)", ms, cmdline.ErrOutOfRange, uint64(MaxMs))
		}
	}
	if lo, hi := s.Bounds(); hi.Less(lo) {
		return fmt.Errorf("minimum tick %v exceeds maximum tick %v", lo, hi)
	}
	return nil
}

// FrameRate returns the presentation cap, zero when uncapped.
func (s *System) FrameRate() uint64 {
	return s.cfg.FPS
}

// Bounds returns the configured tick window.
func (s *System) Bounds() (core.Time, core.Time) {
	return core.Milli(s.cfg.MinTickMs), core.Milli(s.cfg.MaxTickMs)
}
