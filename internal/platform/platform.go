// Package platform defines the windowing and rendering collaborators the
// engine drives, and picks a backend for the current process.
package platform

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/calendon/internal/core"
	"github.com/vovakirdan/calendon/internal/platform/headless"
	"github.com/vovakirdan/calendon/internal/platform/terminal"
)

// UI is the windowing layer: it owns the input device and pumps events.
type UI interface {
	Init(res core.Resolution) error
	// PumpEvents replaces frame's contents with the actions received since
	// the previous call. It never blocks.
	PumpEvents(frame *core.InputFrame)
	Shutdown()
}

// Renderer presents frames.
type Renderer interface {
	Init(res core.Resolution) error
	// BeginFrame returns the cleared buffer the payload draws into.
	BeginFrame() *core.Screen
	EndFrame() error
	Shutdown()
}

// FrameLimiter is implemented by renderers that cap their frame rate.
// EndFrame blocks for the rest of the frame period, which is what paces the
// engine loop.
type FrameLimiter interface {
	SetFrameRate(fps uint64)
}

var (
	_ FrameLimiter = (*terminal.Renderer)(nil)
	_ FrameLimiter = (*headless.Renderer)(nil)
)

// Backend names accepted by New.
const (
	Auto     = "auto"
	Terminal = "terminal"
	Headless = "headless"
)

// Kinds lists the accepted backend names.
var Kinds = []string{Auto, Terminal, Headless}

// New returns the UI and renderer for kind. Auto picks the terminal when
// both stdin and stdout are terminals.
func New(kind string, logger *log.Logger) (UI, Renderer, error) {
	if kind == Auto || kind == "" {
		kind = Headless
		if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
			kind = Terminal
		}
	}

	switch kind {
	case Terminal:
		ui := terminal.NewUI(os.Stdin, logger)
		return ui, terminal.NewRenderer(os.Stdout), nil
	case Headless:
		return headless.NewUI(), headless.NewRenderer(), nil
	default:
		return nil, nil, fmt.Errorf("unknown ui %q", kind)
	}
}
