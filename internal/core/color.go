package core

// Color is the foreground colour of a screen cell.
// Values map to ANSI colours in the terminal renderer and are ignored by the
// headless one.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorOrange
	ColorGray
)
