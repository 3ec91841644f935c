//go:build !((linux || darwin || freebsd) && cgo)

package plugin

import "fmt"

// GoLoader needs cgo on linux, darwin or freebsd.
type GoLoader struct{}

// Load always fails on this platform.
func (GoLoader) Load(path string) (Module, error) {
	return nil, fmt.Errorf("%w: go plugin %s", ErrUnsupported, path)
}
