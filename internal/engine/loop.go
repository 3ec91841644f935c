package engine

import (
	"github.com/vovakirdan/calendon/internal/core"
)

// watchInterval throttles module modification polling in watch mode.
var watchInterval = core.Milli(500)

// Loop runs iterations until Stop, a quit action or the tick limit.
func (e *Engine) Loop() error {
	for e.running.Load() && !e.tickLimitReached() {
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) tickLimitReached() bool {
	limit := e.main.cfg.TickLimit
	return limit != 0 && e.ticks >= limit
}

// Step runs one loop iteration: pump events, maybe reload, maybe tick,
// always draw.
func (e *Engine) Step() error {
	e.ui.PumpEvents(&e.input)
	if e.input.Has(core.ActionQuit) {
		e.Stop()
	}

	reload := e.input.Has(core.ActionReload) && !e.host.Current().IsFreestanding()
	if !reload && e.main.cfg.Watch {
		reload = e.moduleChanged()
	}
	if reload {
		if err := e.reload(); err != nil {
			return err
		}
	}

	payload := e.host.Current()
	if dt, ok := e.ticker.Generate(); ok {
		payload.Tick(dt)
		e.ticks++
	}

	screen := e.renderer.BeginFrame()
	payload.Draw(screen)
	if err := e.renderer.EndFrame(); err != nil {
		return core.Fatalf("unable to present frame: %w", err)
	}
	e.frames++
	return nil
}

func (e *Engine) moduleChanged() bool {
	now := e.clock.Now()
	if e.watched && now.Sub(e.lastWatch).Less(watchInterval) {
		return false
	}
	e.watched = true
	e.lastWatch = now

	changed, err := e.host.Modified()
	if err != nil {
		// The module may be mid-rebuild; poll again later.
		e.logger.Warn("cannot check payload module", "error", err)
		return false
	}
	return changed
}

func (e *Engine) reload() error {
	path := e.host.Path()
	e.logger.Info("reloading payload", "path", path)
	if err := e.host.Reload(path); err != nil {
		return err
	}
	if !e.host.Current().Init() {
		return core.Fatalf("payload %s failed to initialize after reload", path)
	}
	return nil
}
