// Package registry holds the engine's ordered list of subsystems.
// Registration order is the priority order for command-line option
// resolution and the init order; shutdown runs in reverse.
package registry

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/calendon/internal/cmdline"
	"github.com/vovakirdan/calendon/internal/core"
)

// MaxSubsystems bounds the number of subsystems an engine can register.
const MaxSubsystems = 16

// Subsystem is a self-contained engine component with its own
// command-line options and configuration block.
type Subsystem interface {
	// Name is the human-readable name shown in usage and used as the
	// subsystem's section key in configuration files.
	Name() string

	// Options returns the command-line options this subsystem owns.
	Options() []cmdline.Option

	// Config returns a pointer to the subsystem's mutable configuration
	// block. Option handlers receive this pointer.
	Config() any
}

// Defaulter resets a configuration block to its documented defaults.
// Every registered subsystem must implement it.
type Defaulter interface {
	SetDefaultConfig(config any)
}

// Initializer is implemented by subsystems with startup work.
type Initializer interface {
	Init() error
}

// Shutdowner is implemented by subsystems with teardown work.
type Shutdowner interface {
	Shutdown()
}

// Registry is a fixed-capacity, ordered collection of subsystems.
// It is filled once at startup and sealed before command-line parsing.
type Registry struct {
	subsystems  []Subsystem
	sealed      bool
	initialized int // length of the prefix that completed Init
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{subsystems: make([]Subsystem, 0, MaxSubsystems)}
}

// Register appends a subsystem. Registering past capacity, after Seal, or a
// subsystem without default configuration is fatal. Duplicates are not
// detected.
func (r *Registry) Register(s Subsystem) error {
	if r.sealed {
		return core.Fatalf("registry: cannot register %s after startup", s.Name())
	}
	if len(r.subsystems) >= MaxSubsystems {
		return core.Fatalf("registry: too many core systems added (max %d), rejected %s", MaxSubsystems, s.Name())
	}
	if _, ok := s.(Defaulter); !ok {
		return core.Fatalf("registry: %s is missing a default config", s.Name())
	}
	r.subsystems = append(r.subsystems, s)
	return nil
}

// Seal prevents further registration.
func (r *Registry) Seal() {
	r.sealed = true
}

// Len returns the number of registered subsystems.
func (r *Registry) Len() int {
	return len(r.subsystems)
}

// Subsystems returns the subsystems in registration order.
func (r *Registry) Subsystems() []Subsystem {
	out := make([]Subsystem, len(r.subsystems))
	copy(out, r.subsystems)
	return out
}

// Lookup finds a subsystem by case-insensitive name.
func (r *Registry) Lookup(name string) (Subsystem, bool) {
	for _, s := range r.subsystems {
		if strings.EqualFold(s.Name(), name) {
			return s, true
		}
	}
	return nil, false
}

// ApplyDefaults resets every configuration block, in registration order.
func (r *Registry) ApplyDefaults() error {
	for _, s := range r.subsystems {
		d, ok := s.(Defaulter)
		if !ok {
			return core.Fatalf("registry: %s is missing a default config", s.Name())
		}
		d.SetDefaultConfig(s.Config())
	}
	return nil
}

// InitAll initializes subsystems in registration order. The first failure
// is fatal and stops the sequence; the failing subsystem and those after it
// count as not initialized.
func (r *Registry) InitAll(logger *log.Logger) error {
	r.initialized = 0
	for i, s := range r.subsystems {
		if initializer, ok := s.(Initializer); ok {
			if err := initializer.Init(); err != nil {
				return core.Fatalf("unable to initialize core system %d (%s): %w", i, s.Name(), err)
			}
			logger.Debug("subsystem initialized", "subsystem", s.Name())
		}
		r.initialized = i + 1
	}
	return nil
}

// Initialized returns how many subsystems, counted from the first, have
// been initialized and not yet shut down.
func (r *Registry) Initialized() int {
	return r.initialized
}

// ShutdownAll shuts the initialized subsystems down in reverse
// registration order. Subsystems without a shutdown step are logged and
// skipped.
func (r *Registry) ShutdownAll(logger *log.Logger) {
	n := r.initialized
	r.initialized = 0
	for i := n - 1; i >= 0; i-- {
		s := r.subsystems[i]
		sd, ok := s.(Shutdowner)
		if !ok {
			logger.Info("no shutdown function", "subsystem", s.Name())
			continue
		}
		sd.Shutdown()
	}
}
