// Package demos provides the freestanding payloads built into the engine.
// Demos register themselves in init() functions and are selected with -d.
package demos

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/calendon/internal/core"
	"github.com/vovakirdan/calendon/internal/plugin"
)

// Demo is a statically linked payload.
type Demo interface {
	// ID returns the name used with -d (e.g., "sample").
	ID() string

	// Title returns a human-readable name for listings.
	Title() string

	// Init prepares the demo. Returning false aborts startup.
	Init(env Env) bool

	// Tick advances the simulation by dt.
	Tick(dt core.Time)

	// Draw renders the current state. The screen is pre-cleared.
	Draw(dst *core.Screen)

	// Shutdown releases everything Init acquired.
	Shutdown()
}

// AssetResolver maps an asset name to a path under the asset root.
type AssetResolver interface {
	PathFor(name string) string
}

// Allocator hands out tracked buffers.
type Allocator interface {
	Allocate(size int, tag string) []byte
	Free(buf []byte) bool
}

// Env is what the engine hands a demo at Init. Any field may be nil.
type Env struct {
	Logger *log.Logger
	Assets AssetResolver
	Memory Allocator
	// Input returns the actions pumped during the current loop iteration.
	Input func() core.InputFrame
}

func (e Env) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

func (e Env) input() core.InputFrame {
	if e.Input == nil {
		return core.InputFrame{}
	}
	return e.Input()
}

// Payload adapts a demo to the plugin lifecycle.
func Payload(d Demo, env Env) plugin.Plugin {
	return plugin.Freestanding(
		func() bool { return d.Init(env) },
		d.Tick,
		d.Draw,
		d.Shutdown,
	)
}

// Info contains metadata about a registered demo.
type Info struct {
	ID    string
	Title string
}

// Factory creates a new instance of a demo.
type Factory func() Demo

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a demo factory. Panics if the ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("demos: demo %q already registered", id))
	}
	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered demos, sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(factories))
	for id := range factories {
		result = append(result, Info{ID: id, Title: titles[id]})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a demo by its ID.
func Create(id string) (Demo, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("demos: unknown demo %q", id)
	}
	return f(), nil
}

// Exists checks if a demo with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
