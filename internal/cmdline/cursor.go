package cmdline

import "fmt"

// Cursor walks an argument vector. Index 0 holds the program name, so
// parsing starts at index 1. Advance is the only mutator.
type Cursor struct {
	args  []string
	index int
}

// NewCursor creates a cursor positioned at the first argument after the
// program name.
func NewCursor(args []string) *Cursor {
	c := &Cursor{args: args}
	if len(args) > 0 {
		c.index = 1
	}
	return c
}

// Args returns the full argument vector, program name included.
func (c *Cursor) Args() []string {
	return c.args
}

// Index returns the argv index of the current token.
func (c *Cursor) Index() int {
	return c.index
}

// Remaining reports whether unconsumed tokens are left.
func (c *Cursor) Remaining() bool {
	return c.index < len(c.args)
}

// HasPeek reports whether a token exists offset positions past the current
// one. HasPeek(0) is the same as Remaining.
func (c *Cursor) HasPeek(offset int) bool {
	return offset >= 0 && c.index+offset < len(c.args)
}

// Peek returns the token offset positions past the current one without
// moving the cursor.
func (c *Cursor) Peek(offset int) (string, bool) {
	if !c.HasPeek(offset) {
		return "", false
	}
	return c.args[c.index+offset], true
}

// Current returns the current token, or "" when exhausted.
func (c *Cursor) Current() string {
	tok, _ := c.Peek(0)
	return tok
}

// Value returns the token following the current flag, or ErrMissingValue
// when the vector ends first.
func (c *Cursor) Value() (string, error) {
	v, ok := c.Peek(1)
	if !ok {
		return "", fmt.Errorf("%s: %w", c.Current(), ErrMissingValue)
	}
	return v, nil
}

// Advance consumes n tokens. It panics if n is not positive or would move
// past the end, since only a successful handler's count may be applied.
func (c *Cursor) Advance(n int) {
	if n <= 0 || c.index+n > len(c.args) {
		panic(fmt.Sprintf("cmdline: cannot advance %d from index %d of %d", n, c.index, len(c.args)))
	}
	c.index += n
}
