//go:build !(linux || darwin)

package plugin

import "fmt"

// CLoader needs dlopen, available on linux and darwin.
type CLoader struct{}

// Load always fails on this platform.
func (CLoader) Load(path string) (Module, error) {
	return nil, fmt.Errorf("%w: shared library %s", ErrUnsupported, path)
}
