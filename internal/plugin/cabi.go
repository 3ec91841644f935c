//go:build linux || darwin

package plugin

import (
	"errors"
	"fmt"

	"github.com/ebitengine/purego"

	"github.com/vovakirdan/calendon/internal/core"
)

// CLoader loads payloads from C shared libraries exporting the
// CnPlugin_* functions. The tick function receives the delta time as a
// nanosecond count.
type CLoader struct{}

// Load opens the shared library with all symbols bound immediately.
func (CLoader) Load(path string) (Module, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("plugin: cannot open %s: %w", path, err)
	}
	return &cModule{path: path, handle: handle}, nil
}

type cModule struct {
	path   string
	handle uintptr
}

func (m *cModule) Path() string {
	return m.path
}

func (m *cModule) Resolve() (Plugin, error) {
	if m.handle == 0 {
		return Plugin{}, fmt.Errorf("plugin: %s already released", m.path)
	}

	var errs []error
	sym := func(name string) uintptr {
		addr, err := purego.Dlsym(m.handle, name)
		if err != nil {
			errs = append(errs, &MissingSymbolError{Symbol: name, Err: err})
			return 0
		}
		return addr
	}
	initAddr := sym(CInitSymbol)
	tickAddr := sym(CTickSymbol)
	drawAddr := sym(CDrawSymbol)
	if err := errors.Join(errs...); err != nil {
		return Plugin{}, err
	}

	var (
		cInit func() bool
		cTick func(uint64)
		cDraw func()
	)
	purego.RegisterFunc(&cInit, initAddr)
	purego.RegisterFunc(&cTick, tickAddr)
	purego.RegisterFunc(&cDraw, drawAddr)

	out := Plugin{
		Init:   cInit,
		Tick:   func(dt core.Time) { cTick(dt.Nanos()) },
		Draw:   func(*core.Screen) { cDraw() },
		Module: m,
	}

	// Shutdown is optional; Validate reports its absence.
	if addr, err := purego.Dlsym(m.handle, CShutdownSymbol); err == nil {
		var cShutdown func()
		purego.RegisterFunc(&cShutdown, addr)
		out.Shutdown = cShutdown
	}
	return out, nil
}

func (m *cModule) Release() error {
	if m.handle == 0 {
		return nil
	}
	err := purego.Dlclose(m.handle)
	m.handle = 0
	return err
}
