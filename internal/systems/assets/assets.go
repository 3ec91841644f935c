// Package assets is the Assets subsystem: asset root resolution and the
// small file helpers the engine and payloads share.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/calendon/internal/cmdline"
)

// EnvHome names the engine home directory variable.
const EnvHome = "CALENDON_HOME"

// Config holds the asset root. When empty the root is resolved from
// $CALENDON_HOME or the working directory.
type Config struct {
	Root string `yaml:"root"`
}

// System is the Assets subsystem.
type System struct {
	cfg    Config
	logger *log.Logger
	root   string
}

// New creates the Assets subsystem.
func New(logger *log.Logger) *System {
	return &System{logger: logger}
}

func (s *System) Name() string { return "Assets" }

func (s *System) Config() any { return &s.cfg }

func (s *System) Options() []cmdline.Option {
	return []cmdline.Option{
		{
			Short: "-a",
			Long:  "--assets",
			Arg:   "DIR",
			Help:  "Directory to load assets from",
			Handler: cmdline.Value(func(config any, v string) error {
				config.(*Config).Root = v
				return nil
			}),
		},
	}
}

func (s *System) SetDefaultConfig(config any) {
	*config.(*Config) = Config{}
}

// Init resolves the asset root and checks it is a directory.
func (s *System) Init() error {
	root, err := resolveRoot(s.cfg.Root)
	if err != nil {
		return err
	}
	if !IsDir(root) {
		return fmt.Errorf("asset directory %s does not exist", root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("asset directory %s: %w", root, err)
	}
	s.root = abs
	s.logger.Debug("asset root", "path", s.root)
	return nil
}

func resolveRoot(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if home := os.Getenv(EnvHome); home != "" {
		if candidate := filepath.Join(home, "assets"); IsDir(candidate) {
			return candidate, nil
		}
		return home, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("cannot determine working directory: %w", err)
	}
	return wd, nil
}

// Root returns the resolved asset directory. Empty before Init.
func (s *System) Root() string {
	return s.root
}

// PathFor returns the path of an asset relative to the root.
func (s *System) PathFor(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// IsFile reports whether path names an existing regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// LastModified returns the modification time of path.
func LastModified(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
