package demos

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/calendon/internal/core"
)

func TestRegistryListsBuiltins(t *testing.T) {
	list := List()
	if len(list) < 3 {
		t.Fatalf("expected at least 3 demos, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Errorf("List() not sorted: %q before %q", list[i-1].ID, list[i].ID)
		}
	}
	for _, id := range []string{"bounce", "sample", "snake"} {
		if !Exists(id) {
			t.Errorf("demo %q not registered", id)
		}
		d, err := Create(id)
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", id, err)
		}
		if d.ID() != id {
			t.Errorf("Create(%q).ID() = %q", id, d.ID())
		}
	}
	if _, err := Create("missing"); err == nil {
		t.Error("Create() should fail for unknown demo")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register() should panic")
		}
	}()
	Register("sample", func() Demo { return &Sample{} })
}

func TestAnimLoop(t *testing.T) {
	loop := AnimLoop{Durations: []core.Time{core.Milli(150), core.Milli(150), core.Milli(150)}}
	var c AnimCursor

	loop.Tick(&c, core.Milli(100))
	if c.Current != 0 {
		t.Errorf("after 100ms: state %d, expected 0", c.Current)
	}
	loop.Tick(&c, core.Milli(60))
	if c.Current != 1 || c.Elapsed != core.Milli(10) {
		t.Errorf("after 160ms: state %d elapsed %v, expected 1, 10ms", c.Current, c.Elapsed)
	}
	loop.Tick(&c, core.Milli(300))
	if c.Current != 0 || c.Elapsed != core.Milli(10) {
		t.Errorf("after 460ms: state %d elapsed %v, expected wrap to 0, 10ms", c.Current, c.Elapsed)
	}

	// Empty loops and zero durations never spin.
	AnimLoop{}.Tick(&c, core.Milli(10))
	zero := AnimLoop{Durations: []core.Time{core.Zero()}}
	zero.Tick(&c, core.Milli(10))
}

func TestPayloadAdapter(t *testing.T) {
	p := Payload(&Sample{}, Env{})
	if !p.IsComplete() || !p.IsFreestanding() {
		t.Fatalf("payload complete=%v freestanding=%v", p.IsComplete(), p.IsFreestanding())
	}
	if !p.Init() {
		t.Fatal("sample Init() returned false")
	}
	screen := core.NewScreen(60, 20)
	for i := 0; i < 10; i++ {
		p.Tick(core.Milli(16))
		screen.Clear()
		p.Draw(screen)
	}
	if !strings.Contains(screen.String(), "FPS: 62.5") {
		t.Errorf("expected FPS readout after 10 frames:\n%s", screen)
	}
	p.Shutdown()
}

func TestSampleLoadsFramesFromAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sprites"), 0o755); err != nil {
		t.Fatal(err)
	}
	for i, name := range stickFiles {
		art := strings.Repeat(string(rune('A'+i)), 3) + "\n"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(art), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := &Sample{}
	s.Init(Env{Assets: dirAssets(dir)})
	screen := core.NewScreen(60, 20)
	s.Draw(screen)
	if got := string([]rune(screen.Row(3))[4:7]); got != "AAA" {
		t.Errorf("frame 0 = %q, expected AAA", got)
	}

	s.Tick(core.Milli(150))
	screen.Clear()
	s.Draw(screen)
	if got := string([]rune(screen.Row(3))[4:7]); got != "BBB" {
		t.Errorf("frame 1 = %q, expected BBB", got)
	}
}

type dirAssets string

func (d dirAssets) PathFor(name string) string {
	return filepath.Join(string(d), filepath.FromSlash(name))
}

type countingAllocator struct {
	live int
}

func (a *countingAllocator) Allocate(size int, _ string) []byte {
	a.live++
	return make([]byte, size)
}

func (a *countingAllocator) Free([]byte) bool {
	a.live--
	return true
}

func TestBounceStaysOnScreen(t *testing.T) {
	alloc := &countingAllocator{}
	b := &Bounce{}
	if !b.Init(Env{Memory: alloc}) {
		t.Fatal("Init() returned false")
	}
	if alloc.live != 1 {
		t.Fatalf("expected one tracked allocation, got %d", alloc.live)
	}

	screen := core.NewScreen(40, 12)
	for i := 0; i < 500; i++ {
		screen.Clear()
		b.Draw(screen)
		b.Tick(core.Milli(33))
		x, y := b.Position()
		if x < 0 || x > float64(40-bounceW) || y < 0 || y > float64(12-bounceH) {
			t.Fatalf("tick %d: box escaped to (%.1f, %.1f)", i, x, y)
		}
	}

	// A multi-second tick must still land inside.
	b.Tick(core.Milli(5000))
	if x, y := b.Position(); x < 0 || x > float64(40-bounceW) || y < 0 || y > float64(12-bounceH) {
		t.Errorf("large tick escaped to (%.1f, %.1f)", x, y)
	}

	b.Shutdown()
	if alloc.live != 0 {
		t.Errorf("trail buffer leaked: %d live", alloc.live)
	}
}

func TestBouncePause(t *testing.T) {
	frame := core.NewInputFrame()
	b := &Bounce{}
	b.Init(Env{Input: func() core.InputFrame { return frame }})

	frame.Set(core.ActionPause)
	b.Tick(core.Milli(16))
	frame.Clear()
	x0, y0 := b.Position()
	b.Tick(core.Milli(100))
	if x, y := b.Position(); x != x0 || y != y0 {
		t.Errorf("box moved while paused: (%.1f,%.1f) -> (%.1f,%.1f)", x0, y0, x, y)
	}

	screen := core.NewScreen(80, 24)
	b.Draw(screen)
	if !strings.Contains(screen.Row(0), "[paused]") {
		t.Errorf("status row missing pause marker: %q", screen.Row(0))
	}
}
