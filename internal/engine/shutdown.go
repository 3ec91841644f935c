package engine

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/vovakirdan/calendon/internal/core"
)

// Shutdown tears the engine down: payload first, then renderer and UI, then
// subsystems in reverse registration order. Only the first call has an
// effect.
func (e *Engine) Shutdown() {
	if e.shutDown {
		return
	}
	e.shutDown = true
	e.running.Store(false)

	if e.host != nil {
		e.host.Shutdown()
	}
	if e.renderer != nil {
		e.renderer.Shutdown()
	}
	if e.ui != nil {
		e.ui.Shutdown()
	}

	if !e.initialized {
		return
	}
	if e.stats != nil && e.payloadName != "" {
		e.stats.Record(e.Summary())
	}
	e.registry.ShutdownAll(e.logger)
}

// Run starts the engine, loops and shuts down. Fatal errors and panics are
// written to a crash report before subsystems shut down.
func (e *Engine) Run(args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.Fatalf("panic: %v", r)
			e.report(err, debug.Stack())
		} else if core.IsFatal(err) {
			e.report(err, nil)
		}
		e.exitCode = ExitCode(err)
		e.Shutdown()
	}()

	if err := e.Startup(args); err != nil {
		return err
	}
	return e.Loop()
}

func (e *Engine) report(err error, stack []byte) {
	if e.crash == nil {
		return
	}
	if _, rerr := e.crash.Report(err, stack); rerr != nil {
		e.logger.Warn("could not write crash report", "error", rerr)
	}
}

// ErrHelp is returned by Startup after -h printed the usage.
var ErrHelp = errors.New("help requested")

// Exit codes returned by ExitCode.
const (
	ExitOK        = 0
	ExitFatal     = 1
	ExitBadParams = 2
)

// ExitCode maps an engine error to a process exit code.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrHelp) {
		return ExitOK
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		return ExitBadParams
	}
	return ExitFatal
}

// Diagnostic formats err for the top-level error print.
func Diagnostic(err error) string {
	var perr *ParseError
	if errors.As(err, &perr) {
		return "Unable to parse command line."
	}
	return fmt.Sprintf("fatal: %v", err)
}
