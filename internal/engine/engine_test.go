package engine

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/calendon/internal/cmdline"
	"github.com/vovakirdan/calendon/internal/config"
	"github.com/vovakirdan/calendon/internal/core"
	"github.com/vovakirdan/calendon/internal/platform/headless"
	"github.com/vovakirdan/calendon/internal/plugin"
	"github.com/vovakirdan/calendon/internal/storage"
	"github.com/vovakirdan/calendon/internal/systems/assets"
)

// trace collects lifecycle events from payloads and collaborators.
type trace struct {
	events []string
}

func (tr *trace) add(format string, args ...any) {
	tr.events = append(tr.events, fmt.Sprintf(format, args...))
}

func (tr *trace) index(event string) int {
	return slices.Index(tr.events, event)
}

func (tr *trace) count(event string) int {
	n := 0
	for _, e := range tr.events {
		if e == event {
			n++
		}
	}
	return n
}

// steppingUI advances the clock on every pump, standing in for the time a
// frame takes.
type steppingUI struct {
	*headless.UI
	clock *core.ManualClock
	step  core.Time
	tr    *trace
}

func (u *steppingUI) PumpEvents(frame *core.InputFrame) {
	u.clock.Advance(u.step)
	u.UI.PumpEvents(frame)
}

func (u *steppingUI) Shutdown() { u.tr.add("ui shutdown") }

type traceRenderer struct {
	*headless.Renderer
	tr *trace
}

func (r *traceRenderer) Shutdown() { r.tr.add("renderer shutdown") }

type testModule struct {
	path string
	gen  int
	tr   *trace
}

func (m *testModule) Path() string { return m.path }

func (m *testModule) Resolve() (plugin.Plugin, error) {
	return plugin.Plugin{
		Init:     func() bool { m.tr.add("init %d", m.gen); return true },
		Tick:     func(core.Time) { m.tr.add("tick %d", m.gen) },
		Draw:     func(*core.Screen) { m.tr.add("draw %d", m.gen) },
		Shutdown: func() { m.tr.add("shutdown %d", m.gen) },
		Module:   m,
	}, nil
}

func (m *testModule) Release() error { return nil }

type testLoader struct {
	tr    *trace
	loads int
}

func (l *testLoader) Load(path string) (plugin.Module, error) {
	l.loads++
	return &testModule{path: path, gen: l.loads, tr: l.tr}, nil
}

type harness struct {
	e      *Engine
	clock  *core.ManualClock
	ui     *steppingUI
	loader *testLoader
	tr     *trace
	logs   *bytes.Buffer
	out    *bytes.Buffer
	slept  []time.Duration
}

func newHarness(t *testing.T, step core.Time, cfg *config.File) *harness {
	t.Helper()
	t.Setenv(assets.EnvHome, "")
	if cfg == nil {
		cfg = &config.File{}
	}

	h := &harness{
		clock: core.NewManualClock(core.Seconds(100)),
		tr:    &trace{},
		logs:  &bytes.Buffer{},
		out:   &bytes.Buffer{},
	}
	h.ui = &steppingUI{UI: headless.NewUI(), clock: h.clock, step: step, tr: h.tr}
	h.loader = &testLoader{tr: h.tr}
	renderer := headless.NewRenderer()
	renderer.Limiter().Sleep = func(d time.Duration) { h.slept = append(h.slept, d) }
	h.e = New(Options{
		Clock:    h.clock,
		Logger:   log.New(h.logs),
		Output:   h.out,
		Config:   cfg,
		UI:       h.ui,
		Renderer: &traceRenderer{Renderer: renderer, tr: h.tr},
		Loader:   h.loader,
	})
	return h
}

// counter is a freestanding payload counting its calls.
type counter struct {
	inits, ticks, draws, shutdowns int
	initOK                         bool
	tr                             *trace
}

func (c *counter) payload() plugin.Plugin {
	return plugin.Freestanding(
		func() bool { c.inits++; return c.initOK },
		func(core.Time) { c.ticks++ },
		func(*core.Screen) { c.draws++ },
		func() {
			c.shutdowns++
			if c.tr != nil {
				c.tr.add("payload shutdown")
			}
		},
	)
}

func writeModule(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.so")
	require.NoError(t, os.WriteFile(path, []byte("module"), 0o644))
	stamp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
	return path
}

func TestTickLimitExact(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	c := &counter{initOK: true}
	h.e.Freestanding(c.payload())

	require.NoError(t, h.e.Startup([]string{"calendon", "-t", "5"}))
	require.NoError(t, h.e.Loop())

	assert.Equal(t, uint64(5), h.e.Ticks())
	assert.Equal(t, 5, c.ticks)
	assert.Equal(t, 5, c.draws)
	assert.Equal(t, 1, c.inits)

	// Further iterations are refused once the limit is reached.
	require.NoError(t, h.e.Loop())
	assert.Equal(t, 5, c.ticks)
}

func TestDrawEveryIteration(t *testing.T) {
	// 3ms frames: a tick only every third iteration, a draw every time.
	h := newHarness(t, core.Milli(3), nil)
	c := &counter{initOK: true}
	h.e.Freestanding(c.payload())

	require.NoError(t, h.e.Startup([]string{"calendon", "--tick-limit", "2"}))
	require.NoError(t, h.e.Loop())

	assert.Equal(t, 2, c.ticks)
	assert.Equal(t, 6, c.draws)
	assert.Equal(t, uint64(6), h.e.Frames())
	assert.Equal(t, 6, h.ui.Pumps())
}

func TestFramesPacedByRenderer(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	h.e.Freestanding((&counter{initOK: true}).payload())
	require.NoError(t, h.e.Startup([]string{"calendon", "--fps", "50", "-t", "5"}))
	require.NoError(t, h.e.Loop())

	require.NotEmpty(t, h.slept, "presentation waits out the frame period")
	assert.LessOrEqual(t, len(h.slept), 4, "the first frame never waits")
	for _, d := range h.slept {
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 20*time.Millisecond)
	}
}

func TestUncappedFrameRate(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	h.e.Freestanding((&counter{initOK: true}).payload())
	require.NoError(t, h.e.Startup([]string{"calendon", "--fps", "0", "-t", "5"}))
	require.NoError(t, h.e.Loop())
	assert.Empty(t, h.slept)
}

func TestOverflowingTickWindowRejected(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	h.e.Freestanding((&counter{initOK: true}).payload())

	err := h.e.Startup([]string{"calendon", "--max-tick", "18446744073710"})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Index)
	assert.ErrorIs(t, err, cmdline.ErrOutOfRange)
}

func TestQuitActionStopsLoop(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	c := &counter{initOK: true}
	h.e.Freestanding(c.payload())
	require.NoError(t, h.e.Startup([]string{"calendon"}))

	h.ui.Push(core.ActionQuit)
	require.NoError(t, h.e.Loop())
	assert.Equal(t, uint64(1), h.e.Frames(), "the iteration that saw quit still completes")
	assert.False(t, h.e.Running())
}

func TestStopBeforeLoop(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	c := &counter{initOK: true}
	h.e.Freestanding(c.payload())
	require.NoError(t, h.e.Startup([]string{"calendon"}))

	h.e.Stop()
	require.NoError(t, h.e.Loop())
	assert.Zero(t, h.e.Frames())
}

func TestMissingGameOnCommandLine(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	err := h.e.Startup([]string{"calendon", "-g", "missing/path/to/lib"})

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "missing/path/to/lib")
	assert.Zero(t, h.loader.loads, "no module is loaded")
}

func TestMissingGameFromConfigFile(t *testing.T) {
	cfg, err := config.Parse([]byte("main:\n  game: missing/path/to/lib\n"))
	require.NoError(t, err)
	h := newHarness(t, core.Milli(16), cfg)

	err = h.e.Startup([]string{"calendon"})
	require.Error(t, err)
	assert.True(t, core.IsFatal(err))
	assert.Contains(t, err.Error(), "missing/path/to/lib")
	assert.Zero(t, h.loader.loads, "no module is loaded")
}

func TestNoPayloadSelected(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	err := h.e.Startup([]string{"calendon"})
	require.Error(t, err)
	assert.True(t, core.IsFatal(err))
	assert.Contains(t, err.Error(), "bounce")
}

func TestConfigFileBeforeCommandLine(t *testing.T) {
	cfg, err := config.Parse([]byte("main:\n  tick_limit: 9\ntime:\n  max_tick_ms: 100\nbogus:\n  x: 1\n"))
	require.NoError(t, err)
	h := newHarness(t, core.Milli(16), cfg)
	h.e.Freestanding((&counter{initOK: true}).payload())

	require.NoError(t, h.e.Startup([]string{"calendon", "-t", "3"}))
	assert.Equal(t, uint64(3), h.e.MainConfig().TickLimit, "flags override the file")
	_, hi := h.e.time.Bounds()
	assert.Equal(t, core.Milli(100), hi)
	assert.Contains(t, h.logs.String(), "unknown config section")
}

func TestSubsystemInitFailureIsFatal(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	h.e.Freestanding((&counter{initOK: true}).payload())

	err := h.e.Startup([]string{"calendon", "--min-tick", "10", "--max-tick", "5"})
	require.Error(t, err)
	assert.True(t, core.IsFatal(err))
	assert.Contains(t, err.Error(), "unable to initialize core system 0 (Time)")

	// Nothing initialized, so nothing is shut down.
	h.e.Shutdown()
	assert.NotContains(t, h.logs.String(), "no shutdown function")
	assert.Zero(t, h.e.Registry().Initialized())
}

func TestPartialInitShutsDownPrefix(t *testing.T) {
	// Main rejects a missing demo after Time..Assets came up.
	cfg, err := config.Parse([]byte("main:\n  demo: nope\n"))
	require.NoError(t, err)
	h := newHarness(t, core.Milli(16), cfg)
	h.e.Freestanding((&counter{initOK: true}).payload())

	err = h.e.Startup([]string{"calendon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(Main)")
	assert.Equal(t, 5, h.e.Registry().Initialized())

	h.e.Shutdown()
	logs := h.logs.String()
	assert.Contains(t, logs, "subsystem=Time")
	assert.NotContains(t, logs, "subsystem=Main")
}

func TestPayloadInitFailureIsFatal(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	h.e.Freestanding((&counter{initOK: false}).payload())

	err := h.e.Startup([]string{"calendon"})
	require.Error(t, err)
	assert.True(t, core.IsFatal(err))
	assert.Contains(t, err.Error(), "failed to initialize")
}

func TestIncompleteFreestandingPayload(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	p := (&counter{initOK: true}).payload()
	p.Draw = nil
	h.e.Freestanding(p)

	err := h.e.Startup([]string{"calendon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draw function missing")
}

func TestReloadOnKey(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	game := writeModule(t)

	require.NoError(t, h.e.Startup([]string{"calendon", "-g", game}))
	require.NoError(t, h.e.Step())

	h.ui.Push(core.ActionReload)
	require.NoError(t, h.e.Step())

	tr := h.tr
	assert.Equal(t, 1, tr.count("shutdown 1"))
	assert.Equal(t, 1, tr.count("init 2"))
	assert.Less(t, tr.index("shutdown 1"), tr.index("init 2"))
	assert.Less(t, tr.index("init 2"), tr.index("tick 2"), "new payload is initialized before its first tick")
	assert.Less(t, tr.index("init 2"), tr.index("draw 2"))
	assert.NotContains(t, tr.events[tr.index("init 2"):], "tick 1", "old payload is never ticked after the reload")
	assert.Equal(t, 1, h.e.Host().Reloads())
}

func TestWatchReloadsChangedModule(t *testing.T) {
	h := newHarness(t, core.Milli(100), nil)
	game := writeModule(t)

	require.NoError(t, h.e.Startup([]string{"calendon", "-g", game, "-w"}))
	require.NoError(t, h.e.Step())
	assert.Equal(t, 1, h.loader.loads)

	later := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(game, later, later))

	// Polling is throttled: 100ms per step, 500ms between polls.
	for i := 0; i < 4; i++ {
		require.NoError(t, h.e.Step())
	}
	assert.Equal(t, 1, h.loader.loads)

	require.NoError(t, h.e.Step())
	assert.Equal(t, 2, h.loader.loads)
	assert.Less(t, h.tr.index("shutdown 1"), h.tr.index("init 2"))

	// Unchanged since the reload.
	for i := 0; i < 10; i++ {
		require.NoError(t, h.e.Step())
	}
	assert.Equal(t, 2, h.loader.loads)
}

func TestReloadKeyIgnoredForFreestanding(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	c := &counter{initOK: true}
	h.e.Freestanding(c.payload())
	require.NoError(t, h.e.Startup([]string{"calendon"}))

	h.ui.Push(core.ActionReload)
	require.NoError(t, h.e.Step())
	assert.Equal(t, 1, c.inits)
	assert.Zero(t, c.shutdowns)
}

func TestInputReturnsCopy(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	h.e.Freestanding((&counter{initOK: true}).payload())
	require.NoError(t, h.e.Startup([]string{"calendon"}))

	h.ui.Push(core.ActionReload)
	require.NoError(t, h.e.Step())

	in := h.e.Input()
	require.True(t, in.Has(core.ActionReload))
	in.Clear()
	in.Set(core.ActionQuit)
	assert.True(t, h.e.Input().Has(core.ActionReload))
	assert.False(t, h.e.Input().Has(core.ActionQuit))
}

func TestShutdownOrder(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	c := &counter{initOK: true, tr: h.tr}
	h.e.Freestanding(c.payload())
	require.NoError(t, h.e.Startup([]string{"calendon", "-t", "1"}))
	require.NoError(t, h.e.Loop())

	h.e.Shutdown()
	h.e.Shutdown()

	assert.Equal(t, []string{"payload shutdown", "renderer shutdown", "ui shutdown"}, h.tr.events)
	logs := h.logs.String()
	assert.Contains(t, logs, "no shutdown function")
	assert.Contains(t, logs, "subsystem=Main")
	assert.Equal(t, 1, c.shutdowns)
}

func TestShutdownAfterParseFailure(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	require.Error(t, h.e.Startup([]string{"calendon", "--nope"}))
	h.e.Shutdown()
	assert.Empty(t, h.tr.events, "nothing was started")
	assert.NotContains(t, h.logs.String(), "no shutdown function")
}

func TestHelpPrintsUsage(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	h.e.Freestanding((&counter{initOK: true}).payload())

	err := h.e.Run([]string{"calendon", "-d", "bounce", "-h"})
	require.ErrorIs(t, err, ErrHelp)
	assert.Equal(t, ExitOK, ExitCode(err))
	assert.Contains(t, h.out.String(), "  -h,--help                  Print this help and exit\n")
	assert.Contains(t, h.out.String(), "--fps N")
	assert.NotContains(t, h.out.String(), "Unable to parse")
	assert.Equal(t, 0, h.e.Registry().Initialized())
	assert.Empty(t, h.tr.events, "nothing was started")
}

func TestRunDemoRecordsStats(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	h := newHarness(t, core.Milli(16), nil)

	err := h.e.Run([]string{"calendon", "-d", "bounce", "-t", "3", "--stats-db", db})
	require.NoError(t, err)

	store, err := storage.Open(db)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.RecentRuns("", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "bounce", runs[0].Payload)
	assert.Equal(t, uint64(3), runs[0].Ticks)
	assert.Equal(t, uint64(3), runs[0].Frames)
	assert.Equal(t, ExitOK, runs[0].ExitCode)
	assert.NotContains(t, h.logs.String(), "memory leak", "demo frees its buffers")
}

func TestRunWritesCrashReport(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, core.Milli(16), nil)
	h.e.Freestanding((&counter{initOK: false}).payload())

	err := h.e.Run([]string{"calendon", "--crash-dir", dir})
	require.Error(t, err)
	assert.Equal(t, ExitFatal, ExitCode(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "failed to initialize")
}

func TestRunRecoversPanic(t *testing.T) {
	h := newHarness(t, core.Milli(16), nil)
	p := plugin.Freestanding(
		func() bool { return true },
		func(core.Time) { panic("payload exploded") },
		func(*core.Screen) {},
		nil,
	)
	h.e.Freestanding(p)

	err := h.e.Run([]string{"calendon"})
	require.Error(t, err)
	assert.True(t, core.IsFatal(err))
	assert.Contains(t, err.Error(), "payload exploded")
	assert.Contains(t, h.tr.events, "ui shutdown", "display is restored after a panic")
}

func TestExitCodeAndDiagnostic(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitOK, ExitCode(ErrHelp))
	assert.Equal(t, ExitFatal, ExitCode(core.Fatalf("boom")))
	perr := &ParseError{Arg: "--x", Index: 1}
	assert.Equal(t, ExitBadParams, ExitCode(fmt.Errorf("wrapped: %w", perr)))
	assert.Equal(t, "Unable to parse command line.", Diagnostic(perr))
	assert.Equal(t, "fatal: boom", Diagnostic(core.Fatalf("boom")))
}
