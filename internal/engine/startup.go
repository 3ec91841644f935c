package engine

import (
	"strings"
	"time"

	"github.com/vovakirdan/calendon/internal/config"
	"github.com/vovakirdan/calendon/internal/core"
	"github.com/vovakirdan/calendon/internal/demos"
	"github.com/vovakirdan/calendon/internal/platform"
	"github.com/vovakirdan/calendon/internal/plugin"
	"github.com/vovakirdan/calendon/internal/systems/assets"
	"github.com/vovakirdan/calendon/internal/tick"
)

// Startup brings the engine up to the point where Loop can run: defaults,
// config file, command line, subsystem init, display, then the payload and
// its Init.
//
// A *ParseError means the command line was rejected and ErrHelp means usage
// was printed on request; anything else is fatal.
// Shutdown is safe to call after any failure.
func (e *Engine) Startup(args []string) error {
	if err := e.BuildSubsystems(); err != nil {
		return err
	}
	if err := e.registry.ApplyDefaults(); err != nil {
		return err
	}
	if err := e.applyConfigFile(); err != nil {
		return err
	}
	if err := e.ParseCommandLine(args); err != nil {
		return err
	}
	if e.main.cfg.Help {
		WriteUsage(e.out, e.registry.Subsystems())
		return ErrHelp
	}

	e.initialized = true
	if err := e.registry.InitAll(e.logger); err != nil {
		return err
	}

	minTick, maxTick := e.time.Bounds()
	e.ticker = tick.New(e.clock, minTick, maxTick, e.logger)

	if err := e.initPlatform(); err != nil {
		return err
	}
	if err := e.loadPayload(); err != nil {
		return err
	}
	if !e.host.Current().Init() {
		return core.Fatalf("payload %s failed to initialize", e.payloadName)
	}

	e.ticker.Reset()
	e.started = time.Now()
	e.running.Store(true)
	e.logger.Debug("systems initialized", "payload", e.payloadName)
	return nil
}

func (e *Engine) applyConfigFile() error {
	f := e.opts.Config
	if f == nil {
		loaded, err := config.Load()
		if err != nil {
			return core.Fatalf("unable to read config file: %w", err)
		}
		f = loaded
	}

	for _, s := range e.registry.Subsystems() {
		if _, err := f.Apply(s.Name(), s.Config()); err != nil {
			return core.Fatalf("unable to apply config file %s: %w", f.Path, err)
		}
	}
	for _, name := range f.Sections() {
		if _, ok := e.registry.Lookup(name); !ok {
			e.logger.Warn("unknown config section", "section", name, "path", f.Path)
		}
	}
	if f.Path != "" {
		e.logger.Debug("config file applied", "path", f.Path)
	}
	return nil
}

func (e *Engine) initPlatform() error {
	ui, renderer := e.opts.UI, e.opts.Renderer
	if ui == nil || renderer == nil {
		u, r, err := platform.New(e.main.cfg.UI, e.logger)
		if err != nil {
			return core.AsFatal(err)
		}
		if ui == nil {
			ui = u
		}
		if renderer == nil {
			renderer = r
		}
	}

	// Resolution is fixed until it can be configured.
	res := core.DefaultResolution
	if err := ui.Init(res); err != nil {
		return core.Fatalf("unable to initialize ui: %w", err)
	}
	e.ui = ui
	if err := renderer.Init(res); err != nil {
		return core.Fatalf("unable to initialize renderer: %w", err)
	}
	e.renderer = renderer
	if limiter, ok := renderer.(platform.FrameLimiter); ok {
		limiter.SetFrameRate(e.time.FrameRate())
	}
	return nil
}

func (e *Engine) loadPayload() error {
	cfg := e.main.cfg

	switch {
	case e.freestanding != nil:
		e.host = plugin.NewHost(nil, assets.LastModified, e.logger)
		e.payloadName = "freestanding"
		return e.host.Adopt(*e.freestanding)

	case cfg.Demo != "":
		d, err := demos.Create(cfg.Demo)
		if err != nil {
			return core.AsFatal(err)
		}
		e.host = plugin.NewHost(nil, assets.LastModified, e.logger)
		e.payloadName = cfg.Demo
		return e.host.Adopt(demos.Payload(d, e.demoEnv()))
	}

	if cfg.Game == "" {
		names := make([]string, 0)
		for _, d := range demos.List() {
			names = append(names, d.ID)
		}
		return core.Fatalf("no payload selected: use -g PATH or -d NAME (demos: %s)", strings.Join(names, ", "))
	}
	if !assets.IsFile(cfg.Game) {
		return core.Fatalf("cannot load game: %s is not a game library", cfg.Game)
	}

	loader := e.opts.Loader
	if loader == nil {
		l, err := plugin.LoaderFor(cfg.ABI)
		if err != nil {
			return core.AsFatal(err)
		}
		loader = l
	}
	e.host = plugin.NewHost(loader, assets.LastModified, e.logger)
	e.payloadName = cfg.Game
	return e.host.Load(cfg.Game)
}

func (e *Engine) demoEnv() demos.Env {
	return demos.Env{
		Logger: e.logger,
		Assets: e.assets,
		Memory: e.memory,
		Input:  e.Input,
	}
}
