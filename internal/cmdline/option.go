// Package cmdline holds the command-line grammar shared by every subsystem:
// option descriptors and a cursor over the argument vector.
//
// Matching is exact: no prefixes, no "--flag=value" and no clustered short
// flags. Resolving a token against the registered subsystems is the
// dispatcher's job, not this package's.
package cmdline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors returned by option handlers. The dispatcher prints them next to the
// offending token.
var (
	ErrMissingValue = errors.New("missing value")
	ErrNegative     = errors.New("value must not be negative")
	ErrNotANumber   = errors.New("value is not a number")
	ErrInvalidValue = errors.New("invalid value")
	ErrOutOfRange   = errors.New("value out of range")
)

// Handler applies an option to its owning subsystem's configuration block.
// It returns the number of tokens consumed (the flag itself plus any value),
// zero to decline the token, or an error.
type Handler func(c *Cursor, config any) (int, error)

// Option describes one command-line option of a subsystem.
type Option struct {
	Short   string // e.g. "-g"; may be empty
	Long    string // e.g. "--game"; may be empty
	Arg     string // metavar shown in usage, empty for switches
	Help    string
	Handler Handler
}

// Matches reports whether token is exactly this option's short or long flag.
func (o Option) Matches(token string) bool {
	return (o.Short != "" && token == o.Short) || (o.Long != "" && token == o.Long)
}

// Flags returns the "-s,--long ARG" part of the usage line.
func (o Option) Flags() string {
	var names []string
	if o.Short != "" {
		names = append(names, o.Short)
	}
	if o.Long != "" {
		names = append(names, o.Long)
	}
	flags := strings.Join(names, ",")
	if o.Arg != "" {
		flags += " " + o.Arg
	}
	return flags
}

// Usage returns the aligned help line for this option.
func (o Option) Usage() string {
	return fmt.Sprintf("  %-26s %s", o.Flags(), o.Help)
}

// ParseUint parses a non-negative base-10 integer. Negative input and
// unparseable input are reported with different errors.
func ParseUint(s string) (uint64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%q: %w", s, ErrNegative)
		}
		return uint64(n), nil
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}
	if rest, ok := strings.CutPrefix(s, "-"); ok && rest != "" && strings.Trim(rest, "0123456789") == "" {
		return 0, fmt.Errorf("%q: %w", s, ErrNegative)
	}
	return 0, fmt.Errorf("%q: %w", s, ErrNotANumber)
}

// OneOf checks s against a fixed set of accepted values.
func OneOf(s string, accepted ...string) error {
	for _, a := range accepted {
		if s == a {
			return nil
		}
	}
	return fmt.Errorf("%q: %w (expected one of %s)", s, ErrInvalidValue, strings.Join(accepted, ", "))
}

// Value builds a handler for an option followed by one argument. apply
// receives the owning configuration block and the raw argument.
func Value(apply func(config any, value string) error) Handler {
	return func(c *Cursor, config any) (int, error) {
		v, err := c.Value()
		if err != nil {
			return 0, err
		}
		if err := apply(config, v); err != nil {
			return 0, err
		}
		return 2, nil
	}
}

// Switch builds a handler for an option without an argument.
func Switch(apply func(config any)) Handler {
	return func(_ *Cursor, config any) (int, error) {
		apply(config)
		return 1, nil
	}
}
