// Package logging is the Log subsystem. It reconfigures the engine's shared
// logger once the command line is known.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/calendon/internal/cmdline"
)

var formats = []string{"text", "json", "logfmt"}

var levels = []string{"debug", "info", "warn", "error"}

// Config selects where and how the engine logs.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// System is the Log subsystem.
type System struct {
	cfg    Config
	logger *log.Logger
	stderr io.Writer
	file   *os.File
}

// New creates the Log subsystem managing logger.
func New(logger *log.Logger) *System {
	return &System{logger: logger, stderr: os.Stderr}
}

func (s *System) Name() string { return "Log" }

func (s *System) Config() any { return &s.cfg }

func (s *System) Options() []cmdline.Option {
	return []cmdline.Option{
		{
			Short: "-v",
			Long:  "--verbose",
			Help:  "Log at debug level",
			Handler: cmdline.Switch(func(config any) {
				config.(*Config).Level = "debug"
			}),
		},
		{
			Long: "--log-level",
			Arg:  "LEVEL",
			Help: "Minimum level: debug, info, warn or error",
			Handler: cmdline.Value(func(config any, v string) error {
				if err := cmdline.OneOf(v, levels...); err != nil {
					return err
				}
				config.(*Config).Level = v
				return nil
			}),
		},
		{
			Long: "--log-format",
			Arg:  "FMT",
			Help: "Output format: text, json or logfmt",
			Handler: cmdline.Value(func(config any, v string) error {
				if err := cmdline.OneOf(v, formats...); err != nil {
					return err
				}
				config.(*Config).Format = v
				return nil
			}),
		},
		{
			Long: "--log-file",
			Arg:  "PATH",
			Help: "Append log output to a file instead of stderr",
			Handler: cmdline.Value(func(config any, v string) error {
				config.(*Config).File = v
				return nil
			}),
		},
	}
}

func (s *System) SetDefaultConfig(config any) {
	*config.(*Config) = Config{Level: "info", Format: "text"}
}

// Init applies level, format and destination to the shared logger.
func (s *System) Init() error {
	level, err := log.ParseLevel(s.cfg.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	formatter, err := parseFormat(s.cfg.Format)
	if err != nil {
		return err
	}

	if s.cfg.File != "" {
		f, err := os.OpenFile(s.cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
		s.file = f
		s.logger.SetOutput(f)
	}
	s.logger.SetLevel(level)
	s.logger.SetFormatter(formatter)
	s.logger.SetReportCaller(level == log.DebugLevel)
	return nil
}

// Shutdown closes the log file and points the logger back at stderr.
func (s *System) Shutdown() {
	if s.file == nil {
		return
	}
	s.logger.SetOutput(s.stderr)
	if err := s.file.Close(); err != nil {
		s.logger.Warn("could not close log file", "error", err)
	}
	s.file = nil
}

func parseFormat(name string) (log.Formatter, error) {
	switch name {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("unknown log format %q", name)
	}
}
