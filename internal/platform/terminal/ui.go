// Package terminal runs the engine in a terminal: raw-mode keyboard input
// and a character frame buffer redrawn with ANSI colours.
package terminal

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/calendon/internal/core"
)

const eventBuffer = 64

// UI reads the keyboard in raw mode.
//
// A goroutine blocks on stdin and feeds a buffered channel that PumpEvents
// drains without blocking. Keys arriving while the buffer is full are
// dropped.
type UI struct {
	in     *os.File
	logger *log.Logger
	state  *term.State
	events chan core.Action
}

// NewUI creates a terminal UI reading from in.
func NewUI(in *os.File, logger *log.Logger) *UI {
	return &UI{in: in, logger: logger}
}

// Init switches the terminal to raw mode and starts the reader.
func (u *UI) Init(core.Resolution) error {
	fd := int(u.in.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("terminal: input is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("terminal: cannot enter raw mode: %w", err)
	}
	u.state = state
	u.events = make(chan core.Action, eventBuffer)
	go u.read(u.events)
	return nil
}

func (u *UI) read(events chan<- core.Action) {
	defer close(events)
	buf := make([]byte, 64)
	for {
		n, err := u.in.Read(buf)
		for _, a := range MapBytes(buf[:n]) {
			select {
			case events <- a:
			default:
			}
		}
		if err != nil {
			return
		}
	}
}

// PumpEvents drains pending keys into frame. End of input becomes a quit.
func (u *UI) PumpEvents(frame *core.InputFrame) {
	frame.Clear()
	if u.events == nil {
		return
	}
	for {
		select {
		case a, ok := <-u.events:
			if !ok {
				u.logger.Debug("terminal input closed")
				u.events = nil
				frame.Set(core.ActionQuit)
				return
			}
			frame.Set(a)
		default:
			return
		}
	}
}

// Shutdown restores the terminal mode. The reader goroutine stays blocked on
// stdin until the process exits.
func (u *UI) Shutdown() {
	if u.state == nil {
		return
	}
	if err := term.Restore(int(u.in.Fd()), u.state); err != nil {
		u.logger.Warn("could not restore terminal", "error", err)
	}
	u.state = nil
}
