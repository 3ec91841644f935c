package terminal

import (
	"github.com/vovakirdan/calendon/internal/core"
)

// MapBytes translates a chunk read from a raw-mode terminal into actions.
// Arrow keys arrive as ESC [ X (or ESC O X); a lone ESC quits.
func MapBytes(b []byte) []core.Action {
	var actions []core.Action
	for i := 0; i < len(b); {
		if b[i] == 0x1b {
			if i+2 < len(b) && (b[i+1] == '[' || b[i+1] == 'O') {
				if a := mapArrow(b[i+2]); a != core.ActionNone {
					actions = append(actions, a)
				}
				i += 3
				continue
			}
			actions = append(actions, core.ActionQuit)
			i++
			continue
		}
		if a := MapKey(b[i]); a != core.ActionNone {
			actions = append(actions, a)
		}
		i++
	}
	return actions
}

// MapKey translates a single key byte.
func MapKey(c byte) core.Action {
	switch c {
	case 'q', 'Q', 0x03: // ctrl+c arrives as a byte in raw mode
		return core.ActionQuit
	case 'w', 'k':
		return core.ActionUp
	case 's', 'j':
		return core.ActionDown
	case 'a', 'h':
		return core.ActionLeft
	case 'd', 'l':
		return core.ActionRight
	case '\r', '\n', ' ':
		return core.ActionConfirm
	case 'p':
		return core.ActionPause
	case 'r':
		return core.ActionReload
	}
	return core.ActionNone
}

func mapArrow(c byte) core.Action {
	switch c {
	case 'A':
		return core.ActionUp
	case 'B':
		return core.ActionDown
	case 'C':
		return core.ActionRight
	case 'D':
		return core.ActionLeft
	}
	return core.ActionNone
}
