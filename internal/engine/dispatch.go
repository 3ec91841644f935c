package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/vovakirdan/calendon/internal/cmdline"
	"github.com/vovakirdan/calendon/internal/registry"
)

// ParseError reports a command-line token no subsystem accepted.
type ParseError struct {
	Arg   string
	Index int   // argv index, program name at 0
	Err   error // handler error, nil when nothing matched
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("unable to parse argument %q at index %d", e.Arg, e.Index)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseCommandLine applies args (program name first) to the registered
// subsystems' configuration blocks.
func (e *Engine) ParseCommandLine(args []string) error {
	return Dispatch(e.registry.Subsystems(), args, e.out)
}

// Dispatch resolves every token in args against subsystems.
//
// For each token the subsystems are scanned in order and, within one, its
// options in declaration order. The first option whose short or long flag
// equals the token gets the cursor and its owner's configuration. A handler
// declining the token passes it on to the next subsystem. After a match the
// cursor advances by the consumed count and scanning restarts from the first
// subsystem.
//
// On failure the offending token, the handler's error, the usage of every
// subsystem and the received arguments are written to out.
func Dispatch(subsystems []registry.Subsystem, args []string, out io.Writer) error {
	c := cmdline.NewCursor(args)
	for c.Remaining() {
		consumed, err := dispatchOne(c, subsystems)
		if err == nil && consumed > 0 {
			c.Advance(consumed)
			continue
		}

		tok, index := c.Current(), c.Index()
		fmt.Fprintf(out, "Unable to parse argument: \"%s\" at index %d\n", tok, index)
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
		}
		WriteUsage(out, subsystems)
		WriteArguments(out, args)
		return &ParseError{Arg: tok, Index: index, Err: err}
	}
	return nil
}

func dispatchOne(c *cmdline.Cursor, subsystems []registry.Subsystem) (int, error) {
	tok := c.Current()
	for _, s := range subsystems {
		for _, opt := range s.Options() {
			if !opt.Matches(tok) {
				continue
			}
			n, err := opt.Handler(c, s.Config())
			if err != nil {
				return 0, err
			}
			if n > 0 && !c.HasPeek(n-1) {
				return 0, fmt.Errorf("%s consumed %d arguments but fewer remain", tok, n)
			}
			if n > 0 {
				return n, nil
			}
			// Declined: the next subsystem gets a chance.
			break
		}
	}
	return 0, nil
}

// WriteUsage lists each subsystem that has options, followed by their help
// lines.
func WriteUsage(w io.Writer, subsystems []registry.Subsystem) {
	for _, s := range subsystems {
		opts := s.Options()
		if len(opts) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\n", s.Name())
		for _, opt := range opts {
			fmt.Fprintf(w, "%s\n", opt.Usage())
		}
	}
}

// WriteArguments echoes an argument vector, one indexed line per token.
func WriteArguments(w io.Writer, args []string) {
	fmt.Fprintf(w, "Arguments provided:\n")
	for i, arg := range args {
		fmt.Fprintf(w, "%4d: \"%s\"\n", i, arg)
	}
}

// Usage returns the option listing of the built-in subsystems.
func (e *Engine) Usage() (string, error) {
	if err := e.BuildSubsystems(); err != nil {
		return "", err
	}
	var sb strings.Builder
	WriteUsage(&sb, e.registry.Subsystems())
	return sb.String(), nil
}
