package demos

import (
	"fmt"

	"github.com/vovakirdan/calendon/internal/core"
)

func init() {
	Register("bounce", func() Demo { return &Bounce{} })
}

const (
	bounceW       = 6
	bounceH       = 3
	bounceSpeed   = 20.0 // cells per second
	bounceNudge   = 5.0  // velocity change per key press
	bounceTrailSz = 64   // remembered positions, two bytes each
)

// Bounce moves a box at a constant velocity and reflects it off the screen
// edges. Arrow keys nudge the velocity; pause freezes it.
type Bounce struct {
	env    Env
	x, y   float64
	vx, vy float64
	w, h   int // last drawn screen size
	paused bool
	trail  []byte
	head   int
	ticks  int
}

func (b *Bounce) ID() string    { return "bounce" }
func (b *Bounce) Title() string { return "Bouncing Box" }

func (b *Bounce) Init(env Env) bool {
	b.env = env
	b.x, b.y = 1, 1
	b.vx, b.vy = bounceSpeed, bounceSpeed/2
	b.w, b.h = 80, 24
	b.paused = false
	b.head = 0
	b.ticks = 0
	if env.Memory != nil {
		b.trail = env.Memory.Allocate(bounceTrailSz*2, "bounce.trail")
	} else {
		b.trail = make([]byte, bounceTrailSz*2)
	}
	return true
}

func (b *Bounce) Tick(dt core.Time) {
	in := b.env.input()
	if in.Has(core.ActionPause) {
		b.paused = !b.paused
	}
	if in.Has(core.ActionLeft) {
		b.vx -= bounceNudge
	}
	if in.Has(core.ActionRight) {
		b.vx += bounceNudge
	}
	if in.Has(core.ActionUp) {
		b.vy -= bounceNudge
	}
	if in.Has(core.ActionDown) {
		b.vy += bounceNudge
	}
	if b.paused {
		return
	}

	secs := dt.Duration().Seconds()
	b.x += b.vx * secs
	b.y += b.vy * secs
	b.x, b.vx = reflect(b.x, b.vx, float64(b.w-bounceW))
	b.y, b.vy = reflect(b.y, b.vy, float64(b.h-bounceH))
	b.ticks++

	if len(b.trail) > 0 {
		b.trail[b.head*2] = byte(core.Clamp(int(b.x), 0, 255))
		b.trail[b.head*2+1] = byte(core.Clamp(int(b.y), 0, 255))
		b.head = (b.head + 1) % (len(b.trail) / 2)
	}
}

// reflect bounces pos off [0, hi], flipping v when an edge is crossed.
func reflect(pos, v, hi float64) (float64, float64) {
	if hi <= 0 {
		return 0, v
	}
	if pos < 0 {
		return core.ClampF(-pos, 0, hi), -v
	}
	if pos > hi {
		return core.ClampF(2*hi-pos, 0, hi), -v
	}
	return pos, v
}

func (b *Bounce) Draw(dst *core.Screen) {
	b.w, b.h = dst.Width(), dst.Height()

	for i := 0; i < len(b.trail)/2 && i < b.ticks; i++ {
		dst.SetColor(int(b.trail[i*2]), int(b.trail[i*2+1]), '·', core.ColorGray)
	}

	box := core.NewRect(int(b.x), int(b.y), bounceW, bounceH)
	dst.DrawBox(box)
	cx, cy := box.Center()
	dst.SetColor(cx, cy, '●', core.ColorCyan)

	status := fmt.Sprintf("ticks %d  v=(%.0f,%.0f)", b.ticks, b.vx, b.vy)
	if b.paused {
		status += "  [paused]"
	}
	dst.DrawText(1, 0, status)
}

func (b *Bounce) Shutdown() {
	if b.env.Memory != nil && b.trail != nil {
		b.env.Memory.Free(b.trail)
	}
	b.trail = nil
}

// Position returns the box's top-left corner.
func (b *Bounce) Position() (float64, float64) {
	return b.x, b.y
}
