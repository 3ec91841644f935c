// Package stats is the Stats subsystem: it stores one summary record per
// run in the SQLite run database.
package stats

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/calendon/internal/cmdline"
	"github.com/vovakirdan/calendon/internal/storage"
)

// DefaultDB is the database path suggested in help and used by
// "calendon runs".
const DefaultDB = "~/.calendon/runs.db"

// Config holds the database path. Empty disables recording.
type Config struct {
	DB string `yaml:"db"`
}

// System is the Stats subsystem.
type System struct {
	cfg     Config
	logger  *log.Logger
	store   *storage.Store
	pending *storage.Run
	lastID  string
}

// New creates the Stats subsystem.
func New(logger *log.Logger) *System {
	return &System{logger: logger}
}

func (s *System) Name() string { return "Stats" }

func (s *System) Config() any { return &s.cfg }

func (s *System) Options() []cmdline.Option {
	return []cmdline.Option{
		{
			Long: "--stats-db",
			Arg:  "PATH",
			Help: "Record run statistics in a SQLite database (e.g. " + DefaultDB + ")",
			Handler: cmdline.Value(func(config any, v string) error {
				config.(*Config).DB = v
				return nil
			}),
		},
	}
}

func (s *System) SetDefaultConfig(config any) {
	*config.(*Config) = Config{}
}

// Init opens the run database when one is configured.
func (s *System) Init() error {
	if s.cfg.DB == "" {
		return nil
	}
	store, err := storage.Open(s.cfg.DB)
	if err != nil {
		return err
	}
	s.store = store
	return nil
}

// Enabled reports whether runs are being recorded.
func (s *System) Enabled() bool {
	return s.store != nil
}

// Record stages the summary saved at shutdown. A later call replaces it.
func (s *System) Record(run storage.Run) {
	s.pending = &run
}

// LastID returns the id of the run saved by Shutdown.
func (s *System) LastID() string {
	return s.lastID
}

// Shutdown saves the staged run and closes the database.
func (s *System) Shutdown() {
	if s.store == nil {
		return
	}
	if s.pending != nil {
		id, err := s.store.SaveRun(*s.pending)
		if err != nil {
			s.logger.Warn("could not save run statistics", "error", err)
		} else {
			s.lastID = id
			s.logger.Debug("run recorded", "id", id, "payload", s.pending.Payload)
		}
		s.pending = nil
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("could not close run database", "error", err)
	}
	s.store = nil
}
