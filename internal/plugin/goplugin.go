//go:build (linux || darwin || freebsd) && cgo

package plugin

import (
	"errors"
	"fmt"
	"io"
	"os"
	goplugin "plugin"
	"strings"

	"github.com/vovakirdan/calendon/internal/core"
)

// GoLoader loads payloads built with "go build -buildmode=plugin".
//
// The Go runtime never unloads a plugin. It remembers opened files by name
// and refuses a second plugin carrying an already loaded plugin path, the
// package identity the linker stamps into the module. Every load therefore
// opens a private copy of the file, and a rebuilt module only loads when it
// was linked with a fresh plugin path:
//
//	go build -buildmode=plugin -ldflags "-pluginpath=calendon-$(date +%s%N)" -o game.so ./game
type GoLoader struct{}

// Load copies the module to a temporary file and opens the copy.
func (GoLoader) Load(path string) (Module, error) {
	shadow, err := shadowCopy(path)
	if err != nil {
		return nil, err
	}
	p, err := goplugin.Open(shadow)
	if err != nil {
		os.Remove(shadow)
		if strings.Contains(err.Error(), "plugin already loaded") {
			return nil, fmt.Errorf("plugin: cannot open %s: %w; rebuild it with a unique -ldflags \"-pluginpath=...\"", path, ErrAlreadyLoaded)
		}
		return nil, fmt.Errorf("plugin: cannot open %s: %w", path, err)
	}
	return &goModule{path: path, shadow: shadow, plug: p}, nil
}

func shadowCopy(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("plugin: cannot read %s: %w", path, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "calendon-payload-*.so")
	if err != nil {
		return "", fmt.Errorf("plugin: cannot create module copy: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("plugin: cannot copy %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("plugin: cannot copy %s: %w", path, err)
	}
	return dst.Name(), nil
}

type goModule struct {
	path   string
	shadow string
	plug   *goplugin.Plugin
}

func (m *goModule) Path() string {
	return m.path
}

func (m *goModule) Resolve() (Plugin, error) {
	var errs []error
	out := Plugin{Module: m}

	if fn, err := lookup[func() bool](m.plug, GoInitSymbol); err != nil {
		errs = append(errs, err)
	} else {
		out.Init = fn
	}
	if fn, err := lookup[func(core.Time)](m.plug, GoTickSymbol); err != nil {
		errs = append(errs, err)
	} else {
		out.Tick = fn
	}
	if fn, err := lookup[func(*core.Screen)](m.plug, GoDrawSymbol); err != nil {
		errs = append(errs, err)
	} else {
		out.Draw = fn
	}
	// Shutdown is optional; Validate reports its absence.
	if fn, err := lookup[func()](m.plug, GoShutdownSymbol); err == nil {
		out.Shutdown = fn
	}

	if err := errors.Join(errs...); err != nil {
		return Plugin{}, err
	}
	return out, nil
}

// Release drops the private copy. The code itself stays mapped for the life
// of the process.
func (m *goModule) Release() error {
	if m.shadow == "" {
		return nil
	}
	err := os.Remove(m.shadow)
	m.shadow = ""
	return err
}

func lookup[T any](p *goplugin.Plugin, name string) (T, error) {
	var zero T
	sym, err := p.Lookup(name)
	if err != nil {
		return zero, &MissingSymbolError{Symbol: name, Err: err}
	}
	fn, ok := sym.(T)
	if !ok {
		return zero, &MissingSymbolError{Symbol: name, Err: fmt.Errorf("unexpected type %T", sym)}
	}
	return fn, nil
}
