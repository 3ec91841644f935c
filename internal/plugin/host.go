package plugin

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/calendon/internal/core"
)

// ModTimeFunc reports the last modification time of a file.
type ModTimeFunc func(path string) (time.Time, error)

// FileModTime is a ModTimeFunc backed by os.Stat.
func FileModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Host owns the single current payload.
//
// Outside of a Load or Reload the host holds either a validated payload or
// nothing at all; a failed load leaves it empty.
type Host struct {
	loader  Loader
	modTime ModTimeFunc
	logger  *log.Logger

	current Plugin
	path    string
	loaded  time.Time
	reloads int
}

// NewHost creates an empty host. modTime may be nil to use FileModTime.
func NewHost(loader Loader, modTime ModTimeFunc, logger *log.Logger) *Host {
	if modTime == nil {
		modTime = FileModTime
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Host{loader: loader, modTime: modTime, logger: logger}
}

// Current returns the current payload. The zero Plugin means none.
func (h *Host) Current() Plugin {
	return h.current
}

// Path returns the file the current payload was loaded from, or "" for a
// freestanding payload.
func (h *Host) Path() string {
	return h.path
}

// Reloads returns how many times a file-backed payload was replaced.
func (h *Host) Reloads() int {
	return h.reloads
}

// Adopt installs a statically linked payload after validating it.
func (h *Host) Adopt(p Plugin) error {
	if err := Validate(p, h.logger); err != nil {
		return err
	}
	h.current = p
	h.path = ""
	h.loaded = time.Time{}
	return nil
}

// Load installs the payload found in the module at path. Loading over an
// existing payload behaves like Reload.
func (h *Host) Load(path string) error {
	return h.Reload(path)
}

// Reload replaces the current payload with the one found at path.
//
// The old payload's shutdown runs and its module is released before the new
// module is opened. The caller runs the new payload's Init.
func (h *Host) Reload(path string) error {
	if h.loader == nil {
		return core.Fatalf("plugin: no loader configured for %s", path)
	}

	modified, err := h.modTime(path)
	if err != nil {
		return core.Fatalf("unable to determine last modified time of %s: %w", path, err)
	}
	h.logger.Debug("payload last modified", "path", path, "modified", modified.Format(time.ANSIC))

	replacing := h.current.Module != nil
	h.release()

	mod, err := h.loader.Load(path)
	if err != nil {
		return core.Fatalf("unable to load payload module %s: %w", path, err)
	}
	p, err := mod.Resolve()
	if err != nil {
		h.releaseModule(mod)
		return core.Fatalf("unable to resolve payload symbols in %s: %w", path, err)
	}
	if err := Validate(p, h.logger); err != nil {
		h.releaseModule(mod)
		return err
	}

	h.current = p
	h.path = path
	h.loaded = modified
	if replacing {
		h.reloads++
	}
	h.logger.Info("payload loaded", "path", path, "reloads", h.reloads)
	return nil
}

// Modified reports whether the file behind the current payload changed since
// it was loaded. Freestanding payloads never change.
func (h *Host) Modified() (bool, error) {
	if h.path == "" {
		return false, nil
	}
	modified, err := h.modTime(h.path)
	if err != nil {
		return false, fmt.Errorf("plugin: stat %s: %w", h.path, err)
	}
	return !modified.Equal(h.loaded), nil
}

// Shutdown runs the payload's shutdown, if any, and releases its module.
func (h *Host) Shutdown() {
	h.release()
	h.path = ""
	h.loaded = time.Time{}
}

func (h *Host) release() {
	if h.current.Shutdown != nil {
		h.current.Shutdown()
	}
	if h.current.Module != nil {
		h.releaseModule(h.current.Module)
	}
	h.current = Plugin{}
}

func (h *Host) releaseModule(mod Module) {
	if err := mod.Release(); err != nil {
		h.logger.Warn("unable to release payload module", "path", mod.Path(), "error", err)
	}
}
