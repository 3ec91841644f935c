// Package config reads the engine configuration file.
//
// The file is YAML with one top-level section per subsystem, keyed by the
// subsystem's lower-cased name. Each section is decoded over the subsystem's
// configuration block after defaults are applied and before the command line
// is parsed, so flags always win:
//
//	time:
//	  min_tick_ms: 8
//	log:
//	  level: debug
//	main:
//	  demo: bounce
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding an explicit config path.
const EnvPath = "CALENDON_CONFIG"

// File is a parsed configuration file.
type File struct {
	// Path is where the file was read from; empty when no file was found.
	Path     string
	sections map[string]yaml.Node
}

// Load finds and parses the configuration file.
// Search order: $CALENDON_CONFIG -> ~/.calendon/config.yaml -> ./calendon.yaml.
// An explicitly named file must exist; the other locations are optional.
// Finding no file at all yields an empty File.
func Load() (*File, error) {
	if custom := os.Getenv(EnvPath); custom != "" {
		return LoadFile(custom)
	}

	candidates := []string{"calendon.yaml"}
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		candidates = append([]string{userCfgPath}, candidates...)
	}
	for _, path := range candidates {
		f, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return f, err
	}
	return &File{}, nil
}

// LoadFile reads and parses the file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes configuration file contents.
func Parse(data []byte) (*File, error) {
	f := &File{sections: make(map[string]yaml.Node)}
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}

	var root map[string]yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	for name, node := range root {
		f.sections[strings.ToLower(name)] = node
	}
	return f, nil
}

// Sections returns the section names present in the file, sorted.
func (f *File) Sections() []string {
	names := make([]string, 0, len(f.sections))
	for name := range f.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply decodes the section for name over dst. Fields absent from the
// section keep their current values. It reports whether the section exists.
func (f *File) Apply(name string, dst any) (bool, error) {
	node, ok := f.sections[strings.ToLower(name)]
	if !ok {
		return false, nil
	}
	if err := node.Decode(dst); err != nil {
		return true, fmt.Errorf("config section %q: %w", name, err)
	}
	return true, nil
}

// Section is one named block of an encoded configuration file.
type Section struct {
	Name   string
	Config any
}

// Encode renders sections as a configuration file, in the given order.
func Encode(sections []Section) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range sections {
		var value yaml.Node
		if err := value.Encode(s.Config); err != nil {
			return nil, fmt.Errorf("config section %q: %w", s.Name, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: strings.ToLower(s.Name)},
			&value,
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".calendon", filename)
}
