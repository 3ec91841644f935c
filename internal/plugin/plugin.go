// Package plugin hosts the payload: the game or demo logic driven by the
// main loop. A payload is either freestanding (functions supplied by the
// embedding program) or resolved from a module loaded at runtime, and can be
// replaced while the engine runs.
package plugin

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/calendon/internal/core"
)

// Lifecycle function types of a payload.
type (
	InitFunc     func() bool
	TickFunc     func(dt core.Time)
	DrawFunc     func(dst *core.Screen)
	ShutdownFunc func()
)

// Symbol names looked up in Go plugin modules.
const (
	GoInitSymbol     = "Init"
	GoTickSymbol     = "Tick"
	GoDrawSymbol     = "Draw"
	GoShutdownSymbol = "Shutdown"
)

// Symbol names looked up in C shared libraries.
const (
	CInitSymbol     = "CnPlugin_Init"
	CTickSymbol     = "CnPlugin_Tick"
	CDrawSymbol     = "CnPlugin_Draw"
	CShutdownSymbol = "CnPlugin_Shutdown"
)

// ErrUnsupported is returned by loaders not available on this platform.
var ErrUnsupported = errors.New("plugin: loader not supported on this platform")

// ErrAlreadyLoaded is returned when a Go module's plugin path matches a
// module opened earlier in this process.
var ErrAlreadyLoaded = errors.New("plugin path already loaded")

// Plugin is a payload's lifecycle contract.
type Plugin struct {
	Init     InitFunc
	Tick     TickFunc
	Draw     DrawFunc
	Shutdown ShutdownFunc

	// Module is the loaded module the functions came from, or nil when the
	// payload is statically linked.
	Module Module
}

// Freestanding builds a statically linked payload.
func Freestanding(init InitFunc, tick TickFunc, draw DrawFunc, shutdown ShutdownFunc) Plugin {
	return Plugin{Init: init, Tick: tick, Draw: draw, Shutdown: shutdown}
}

// IsComplete reports whether all four lifecycle functions are present.
func (p Plugin) IsComplete() bool {
	return p.Init != nil && p.Tick != nil && p.Draw != nil && p.Shutdown != nil
}

// IsFreestanding reports whether the payload is statically linked.
func (p Plugin) IsFreestanding() bool {
	return p.Module == nil
}

// Module is a live handle to a dynamically loaded payload module.
type Module interface {
	// Path is the file the module was loaded from.
	Path() string

	// Resolve looks up every lifecycle symbol. Any missing required symbol
	// fails the whole resolution; the returned error joins all of them.
	Resolve() (Plugin, error)

	// Release unloads the module. Functions resolved from it must not be
	// called afterwards.
	Release() error
}

// Loader opens payload modules.
type Loader interface {
	Load(path string) (Module, error)
}

// MissingSymbolError reports a lifecycle symbol that could not be resolved.
type MissingSymbolError struct {
	Symbol string
	Err    error
}

func (e *MissingSymbolError) Error() string {
	return fmt.Sprintf("plugin: symbol %s: %v", e.Symbol, e.Err)
}

func (e *MissingSymbolError) Unwrap() error {
	return e.Err
}

// Validate checks a payload before first use and after every reload.
// A missing init, draw or tick function is fatal; a missing shutdown is
// only logged.
func Validate(p Plugin, logger *log.Logger) error {
	if p.Init == nil {
		return core.Fatalf("plugin: init function missing in payload")
	}
	if p.Draw == nil {
		return core.Fatalf("plugin: draw function missing in payload")
	}
	if p.Tick == nil {
		return core.Fatalf("plugin: tick function missing in payload")
	}
	if p.Shutdown == nil && logger != nil {
		logger.Warn("shutdown function missing in payload")
	}
	return nil
}

// LoaderFor returns the loader for an ABI name: "go" for Go plugins built
// with -buildmode=plugin, "c" for C shared libraries.
func LoaderFor(abi string) (Loader, error) {
	switch abi {
	case "", "go":
		return GoLoader{}, nil
	case "c":
		return CLoader{}, nil
	default:
		return nil, fmt.Errorf("plugin: unknown abi %q", abi)
	}
}
