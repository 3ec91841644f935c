// Package headless provides a UI and renderer without any device: input is
// scripted and frames are kept in memory. Used when no terminal is attached
// and by tests.
package headless

import (
	"github.com/vovakirdan/calendon/internal/core"
	"github.com/vovakirdan/calendon/internal/platform/pace"
)

// CellWidth and CellHeight convert a pixel resolution to screen cells.
const (
	CellWidth  = 8
	CellHeight = 16
)

// UI replays queued actions.
type UI struct {
	pending []core.Action
	pumps   int
}

// NewUI creates a headless UI with no queued input.
func NewUI() *UI {
	return &UI{}
}

func (u *UI) Init(core.Resolution) error { return nil }

// Push queues actions for the next pump.
func (u *UI) Push(actions ...core.Action) {
	u.pending = append(u.pending, actions...)
}

func (u *UI) PumpEvents(frame *core.InputFrame) {
	frame.Clear()
	for _, a := range u.pending {
		frame.Set(a)
	}
	u.pending = u.pending[:0]
	u.pumps++
}

// Pumps returns how many times events were pumped.
func (u *UI) Pumps() int {
	return u.pumps
}

func (u *UI) Shutdown() {}

// Renderer draws into an off-screen buffer, presenting at most
// pace.DefaultFPS frames per second unless told otherwise.
type Renderer struct {
	screen  *core.Screen
	frames  int
	last    string
	limiter *pace.Limiter
}

// NewRenderer creates a headless renderer.
func NewRenderer() *Renderer {
	return &Renderer{limiter: pace.New(pace.DefaultFPS)}
}

// SetFrameRate caps presented frames per second; zero removes the cap.
func (r *Renderer) SetFrameRate(fps uint64) {
	r.limiter.SetFrameRate(fps)
}

// Limiter exposes the frame limiter so callers can swap its clock.
func (r *Renderer) Limiter() *pace.Limiter {
	return r.limiter
}

func (r *Renderer) Init(res core.Resolution) error {
	r.screen = core.NewScreen(int(res.Width)/CellWidth, int(res.Height)/CellHeight)
	return nil
}

func (r *Renderer) BeginFrame() *core.Screen {
	r.screen.Clear()
	return r.screen
}

func (r *Renderer) EndFrame() error {
	r.frames++
	r.last = r.screen.String()
	r.limiter.Wait()
	return nil
}

// Frames returns the number of completed frames.
func (r *Renderer) Frames() int {
	return r.frames
}

// LastFrame returns the text of the most recently completed frame.
func (r *Renderer) LastFrame() string {
	return r.last
}

func (r *Renderer) Shutdown() {}
