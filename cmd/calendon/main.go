// calendon hosts a payload module and drives it with a fixed-order core
// loop: pump input, maybe reload, tick, draw.
//
// Usage:
//
//	calendon [engine flags]    - Run a payload (see "calendon -h" for flags)
//	calendon systems           - List core systems and their options
//	calendon demos             - List built-in demos
//	calendon runs              - Show recorded runs
//
// Examples:
//
//	calendon -g ./game.so -t 600
//	calendon -d bounce -v
//	calendon -g ./libgame.so --abi c --watch
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/calendon/internal/engine"
)

// exitError carries an engine exit code out of cobra.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "calendon [flags]",
	Short: "Calendon - a minimal engine host for hot-reloadable payloads",
	Long: `Calendon loads a payload (a Go plugin, a C-ABI shared library or a
built-in demo) and runs it: input, optional reload, tick, draw.

Engine flags are owned by core systems and parsed by the engine itself;
run "calendon -h" or "calendon systems" to list them.

Examples:
  calendon -d bounce
  calendon -g ./game.so -t 600
  calendon -g ./libgame.so --abi c --watch
  calendon runs --payload bounce`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE:               runEngine,
}

func init() {
	rootCmd.AddCommand(systemsCmd)
	rootCmd.AddCommand(demosCmd)
	rootCmd.AddCommand(runsCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	e := engine.New(engine.Options{})

	// SIGINT reaches us as ^C only when the terminal is not in raw mode.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	defer func() {
		signal.Stop(sig)
		close(done)
	}()
	go func() {
		select {
		case <-sig:
			e.Stop()
		case <-done:
		}
	}()

	argv := append([]string{"calendon"}, args...)
	if err := e.Run(argv); err != nil {
		if errors.Is(err, engine.ErrHelp) {
			return nil
		}
		fmt.Fprintln(os.Stderr, engine.Diagnostic(err))
		return &exitError{code: engine.ExitCode(err)}
	}
	return nil
}
