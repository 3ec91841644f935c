// Package memory is the Memory subsystem: a tracking allocator for payload
// buffers that reports leaks at shutdown.
package memory

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/calendon/internal/cmdline"
)

// Config enables the allocation summary at shutdown.
type Config struct {
	Report bool `yaml:"report"`
}

// Stats summarizes tracked allocations.
type Stats struct {
	Live        int    // allocations not yet freed
	LiveBytes   uint64 // bytes not yet freed
	PeakBytes   uint64
	TotalBytes  uint64 // bytes ever allocated
	Allocations int
}

type allocation struct {
	size uint64
	tag  string
}

// System is the Memory subsystem. It is not safe for concurrent use; the
// engine is single-threaded.
type System struct {
	cfg    Config
	logger *log.Logger
	live   map[*byte]allocation
	stats  Stats
}

// New creates the Memory subsystem.
func New(logger *log.Logger) *System {
	return &System{logger: logger, live: make(map[*byte]allocation)}
}

func (s *System) Name() string { return "Memory" }

func (s *System) Config() any { return &s.cfg }

func (s *System) Options() []cmdline.Option {
	return []cmdline.Option{
		{
			Long: "--mem-report",
			Help: "Print an allocation summary at shutdown",
			Handler: cmdline.Switch(func(config any) {
				config.(*Config).Report = true
			}),
		},
	}
}

func (s *System) SetDefaultConfig(config any) {
	*config.(*Config) = Config{}
}

// Allocate returns a zeroed buffer of size bytes that stays tracked until
// Free. A non-positive size returns nil.
func (s *System) Allocate(size int, tag string) []byte {
	if size <= 0 {
		return nil
	}
	buf := make([]byte, size)
	s.live[&buf[0]] = allocation{size: uint64(size), tag: tag}

	s.stats.Live++
	s.stats.Allocations++
	s.stats.LiveBytes += uint64(size)
	s.stats.TotalBytes += uint64(size)
	s.stats.PeakBytes = max(s.stats.PeakBytes, s.stats.LiveBytes)
	return buf
}

// Free stops tracking buf. It reports false for buffers it does not track,
// including ones already freed.
func (s *System) Free(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	a, ok := s.live[&buf[0]]
	if !ok {
		s.logger.Warn("free of untracked buffer", "size", len(buf))
		return false
	}
	delete(s.live, &buf[0])
	s.stats.Live--
	s.stats.LiveBytes -= a.size
	return true
}

// Stats returns the current counters.
func (s *System) Stats() Stats {
	return s.stats
}

// Shutdown logs every leaked allocation and, when enabled, the summary.
func (s *System) Shutdown() {
	if len(s.live) > 0 {
		leaks := make([]allocation, 0, len(s.live))
		for _, a := range s.live {
			leaks = append(leaks, a)
		}
		sort.Slice(leaks, func(i, j int) bool {
			if leaks[i].size != leaks[j].size {
				return leaks[i].size > leaks[j].size
			}
			return leaks[i].tag < leaks[j].tag
		})
		for _, a := range leaks {
			s.logger.Warn("memory leak", "tag", a.tag, "size", humanize.IBytes(a.size))
		}
		s.logger.Warn("leaked allocations", "count", len(leaks), "total", humanize.IBytes(s.stats.LiveBytes))
	}

	if s.cfg.Report {
		s.logger.Info("memory report",
			"allocations", humanize.Comma(int64(s.stats.Allocations)),
			"total", humanize.IBytes(s.stats.TotalBytes),
			"peak", humanize.IBytes(s.stats.PeakBytes),
			"live", humanize.IBytes(s.stats.LiveBytes),
		)
	}
}
