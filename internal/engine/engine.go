// Package engine is the runtime core. An Engine builds the subsystem
// registry, turns the command line into per-subsystem configuration, hosts
// the payload and drives the frame loop until quit or the tick limit.
//
// The engine is single-threaded: only Stop may be called from another
// goroutine.
package engine

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/calendon/internal/config"
	"github.com/vovakirdan/calendon/internal/core"
	"github.com/vovakirdan/calendon/internal/platform"
	"github.com/vovakirdan/calendon/internal/plugin"
	"github.com/vovakirdan/calendon/internal/registry"
	"github.com/vovakirdan/calendon/internal/storage"
	"github.com/vovakirdan/calendon/internal/systems/assets"
	"github.com/vovakirdan/calendon/internal/systems/crash"
	"github.com/vovakirdan/calendon/internal/systems/logging"
	"github.com/vovakirdan/calendon/internal/systems/memory"
	"github.com/vovakirdan/calendon/internal/systems/stats"
	"github.com/vovakirdan/calendon/internal/systems/timing"
	"github.com/vovakirdan/calendon/internal/tick"
)

// Options replace the engine's collaborators. Zero values select the
// defaults.
type Options struct {
	Clock  core.Clock  // default: system monotonic clock
	Logger *log.Logger // default: NewLogger(os.Stderr)
	Output io.Writer   // usage and parse diagnostics; default os.Stderr

	// Config is applied between defaults and the command line.
	// Nil searches the usual locations.
	Config *config.File

	UI       platform.UI       // default: chosen by --ui
	Renderer platform.Renderer // default: chosen by --ui
	Loader   plugin.Loader     // default: chosen by --abi
}

// Engine is the process-wide context: registry, payload host, tick state
// and loop counters.
type Engine struct {
	opts   Options
	logger *log.Logger
	clock  core.Clock
	out    io.Writer

	registry *registry.Registry
	time     *timing.System
	logs     *logging.System
	crash    *crash.System
	memory   *memory.System
	assets   *assets.System
	main     *mainSystem
	stats    *stats.System

	freestanding *plugin.Plugin
	host         *plugin.Host
	payloadName  string
	ticker       *tick.Generator
	ui           platform.UI
	renderer     platform.Renderer
	input        core.InputFrame

	running     atomic.Bool
	initialized bool
	shutDown    bool
	ticks       uint64
	frames      uint64
	started     time.Time
	lastWatch   core.Time
	watched     bool
	exitCode    int
}

// NewLogger creates the logger used before the Log subsystem is configured.
func NewLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "calendon",
	})
}

// New creates an engine. Nothing is registered or initialized yet.
func New(opts Options) *Engine {
	e := &Engine{
		opts:     opts,
		logger:   opts.Logger,
		clock:    opts.Clock,
		out:      opts.Output,
		registry: registry.New(),
		input:    core.NewInputFrame(),
	}
	if e.logger == nil {
		e.logger = NewLogger(os.Stderr)
	}
	if e.clock == nil {
		e.clock = core.NewSystemClock()
	}
	if e.out == nil {
		e.out = os.Stderr
	}
	return e
}

// Freestanding makes the engine run p instead of a demo or module. It must
// be called before Startup.
func (e *Engine) Freestanding(p plugin.Plugin) {
	e.freestanding = &p
}

// BuildSubsystems registers the built-in subsystems in their fixed order
// and seals the registry. Later calls do nothing.
func (e *Engine) BuildSubsystems() error {
	if e.registry.Len() > 0 {
		return nil
	}

	e.time = timing.New()
	e.logs = logging.New(e.logger)
	e.crash = crash.New(e.logger)
	e.memory = memory.New(e.logger)
	e.assets = assets.New(e.logger)
	e.main = &mainSystem{}
	e.stats = stats.New(e.logger)

	for _, s := range []registry.Subsystem{
		e.time,
		e.logs,
		e.crash,
		e.memory,
		e.assets,
		e.main,
		e.stats,
	} {
		if err := e.registry.Register(s); err != nil {
			return err
		}
	}
	e.registry.Seal()
	return nil
}

// Registry returns the subsystem registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Logger returns the shared logger.
func (e *Engine) Logger() *log.Logger {
	return e.logger
}

// MainConfig returns the Main subsystem's configuration.
func (e *Engine) MainConfig() MainConfig {
	if e.main == nil {
		return MainConfig{}
	}
	return e.main.cfg
}

// Host returns the payload host, nil before a payload was loaded.
func (e *Engine) Host() *plugin.Host {
	return e.host
}

// Input returns a copy of the actions pumped during the current loop
// iteration.
func (e *Engine) Input() core.InputFrame {
	return e.input.Clone()
}

// Ticks returns the number of ticks forwarded to the payload.
func (e *Engine) Ticks() uint64 {
	return e.ticks
}

// Frames returns the number of completed loop iterations.
func (e *Engine) Frames() uint64 {
	return e.frames
}

// Running reports whether the loop will run another iteration.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Stop asks the loop to finish after the current iteration. Safe to call
// from any goroutine.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Summary describes the run so far.
func (e *Engine) Summary() storage.Run {
	run := storage.Run{
		Payload:  e.payloadName,
		Ticks:    e.ticks,
		Frames:   e.frames,
		ExitCode: e.exitCode,
	}
	if e.ticker != nil {
		run.Dropped = e.ticker.Dropped()
	}
	if e.host != nil {
		run.Reloads = e.host.Reloads()
	}
	if !e.started.IsZero() {
		run.Duration = time.Since(e.started)
	}
	return run
}
