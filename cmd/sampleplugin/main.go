// sampleplugin is a minimal payload built as a Go plugin.
//
// Build and run it with:
//
//	go build -buildmode=plugin -ldflags "-pluginpath=calendon-$(date +%s%N)" -o sample.so ./cmd/sampleplugin
//	calendon -g ./sample.so --watch
//
// Rebuild while the engine runs and the new code is picked up on the next
// poll, or press r to reload by hand. Each build needs its own plugin path;
// the Go runtime refuses to open a second plugin under a path it has seen.
package main

import (
	"fmt"
	"time"

	"github.com/vovakirdan/calendon/internal/core"
)

var spinner = []rune{'|', '/', '-', '\\'}

var (
	elapsed core.Time
	ticks   int
	frame   int
)

// Init is called once after every load.
func Init() bool {
	elapsed = core.Zero()
	ticks = 0
	frame = 0
	return true
}

// Tick advances the spinner four steps per second.
func Tick(dt core.Time) {
	elapsed = elapsed.Add(dt)
	ticks++
	frame = int(elapsed.Milli()/250) % len(spinner)
}

func Draw(s *core.Screen) {
	y := s.Height() / 2
	s.DrawTextCentered(y-1, "hello from a plugin")
	s.SetColor(s.Width()/2, y+1, spinner[frame], core.ColorCyan)
	s.DrawTextCentered(y+3, fmt.Sprintf("%d ticks, %s", ticks, elapsed.Duration().Truncate(time.Millisecond)))
}

func Shutdown() {}

func main() {}
