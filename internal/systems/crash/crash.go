// Package crash is the Crash subsystem: it writes a report file for fatal
// errors and recovered panics.
package crash

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/calendon/internal/cmdline"
)

// Config selects where reports are written. An empty Dir disables them.
type Config struct {
	Dir string `yaml:"dir"`
}

// System is the Crash subsystem.
type System struct {
	cfg    Config
	logger *log.Logger
	now    func() time.Time
	ready  bool
}

// New creates the Crash subsystem.
func New(logger *log.Logger) *System {
	return &System{logger: logger, now: time.Now}
}

func (s *System) Name() string { return "Crash" }

func (s *System) Config() any { return &s.cfg }

func (s *System) Options() []cmdline.Option {
	return []cmdline.Option{
		{
			Long: "--crash-dir",
			Arg:  "DIR",
			Help: "Write crash reports into DIR",
			Handler: cmdline.Value(func(config any, v string) error {
				config.(*Config).Dir = v
				return nil
			}),
		},
	}
}

func (s *System) SetDefaultConfig(config any) {
	*config.(*Config) = Config{}
}

// Init creates the report directory.
func (s *System) Init() error {
	if s.cfg.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("cannot create crash directory %s: %w", s.cfg.Dir, err)
	}
	s.ready = true
	return nil
}

// Shutdown stops accepting reports.
func (s *System) Shutdown() {
	s.ready = false
}

// Report writes cause and stack into a new report file and returns its
// path. It returns "" when reporting is disabled or not yet initialized.
// A nil stack captures the calling goroutine's.
func (s *System) Report(cause error, stack []byte) (string, error) {
	if !s.ready {
		return "", nil
	}
	if stack == nil {
		stack = captureStack()
	}

	now := s.now()
	name := fmt.Sprintf("crash-%s-%09d.txt", now.Format("20060102-150405"), now.Nanosecond())
	path := filepath.Join(s.cfg.Dir, name)

	var sb strings.Builder
	fmt.Fprintf(&sb, "time: %s\n", now.Format(time.RFC3339Nano))
	fmt.Fprintf(&sb, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&sb, "error: %v\n\n", cause)
	sb.Write(stack)

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("crash: cannot write report: %w", err)
	}
	s.logger.Error("crash report written", "path", path)
	return path, nil
}

func captureStack() []byte {
	buf := make([]byte, 64<<10)
	return buf[:runtime.Stack(buf, false)]
}
