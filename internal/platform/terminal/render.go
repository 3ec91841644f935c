package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vovakirdan/calendon/internal/core"
	"github.com/vovakirdan/calendon/internal/platform/pace"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault: lipgloss.NewStyle(),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorOrange:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

var statusStyle = lipgloss.NewStyle().Reverse(true)

// Escape sequences for the alternate screen and cursor.
const (
	enterAltScreen = "\x1b[?1049h\x1b[?25l"
	leaveAltScreen = "\x1b[?25h\x1b[?1049l"
	cursorHome     = "\x1b[H"
	rowSeparator   = "\r\n" // raw mode does not translate \n
)

// RenderScreen converts a Screen buffer to a styled string, rows joined by
// sep. Adjacent cells with the same colour share one escape sequence.
func RenderScreen(s *core.Screen, sep string) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height()*len(sep))

	for y := range s.Height() {
		if y > 0 {
			sb.WriteString(sep)
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// StatusLine renders the bottom bar for a terminal width.
func StatusLine(width int, fps float64) string {
	left := fmt.Sprintf(" calendon  %5.1f fps", fps)
	right := "q quit  r reload "
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return statusStyle.Render(truncate(left, width))
	}
	return statusStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width < 0 {
		width = 0
	}
	if len(r) > width {
		r = r[:width]
	}
	return string(r)
}

// Renderer redraws the whole terminal every frame, reserving the last row
// for a status bar.
type Renderer struct {
	out    io.Writer
	size   func() (int, int, error)
	screen *core.Screen
	frame  strings.Builder

	fps        float64
	fpsFrames  int
	fpsStarted time.Time

	limiter *pace.Limiter
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out *os.File) *Renderer {
	fd := int(out.Fd())
	return &Renderer{
		out:     out,
		size:    func() (int, int, error) { return term.GetSize(fd) },
		limiter: pace.New(pace.DefaultFPS),
	}
}

// SetFrameRate caps redraws per second; zero removes the cap.
func (r *Renderer) SetFrameRate(fps uint64) {
	if r.limiter == nil {
		r.limiter = pace.New(fps)
		return
	}
	r.limiter.SetFrameRate(fps)
}

// Init enters the alternate screen and sizes the buffer to the terminal,
// falling back to res in character cells.
func (r *Renderer) Init(res core.Resolution) error {
	w, h, err := r.size()
	if err != nil || w <= 0 || h <= 1 {
		w, h = int(res.Width)/8, int(res.Height)/16
	}
	r.screen = core.NewScreen(w, h-1)
	r.fpsStarted = time.Now()
	if _, err := io.WriteString(r.out, enterAltScreen); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	return nil
}

// BeginFrame follows terminal resizes and clears the buffer.
func (r *Renderer) BeginFrame() *core.Screen {
	if w, h, err := r.size(); err == nil && w > 0 && h > 1 {
		r.screen.Resize(w, h-1)
	}
	r.screen.Clear()
	return r.screen
}

// EndFrame writes the buffer and status bar in one write, then waits out
// the rest of the frame period.
func (r *Renderer) EndFrame() error {
	r.tickFPS()

	r.frame.Reset()
	r.frame.WriteString(cursorHome)
	r.frame.WriteString(RenderScreen(r.screen, rowSeparator))
	r.frame.WriteString(rowSeparator)
	r.frame.WriteString(StatusLine(r.screen.Width(), r.fps))
	if _, err := io.WriteString(r.out, r.frame.String()); err != nil {
		return err
	}
	r.limiter.Wait()
	return nil
}

func (r *Renderer) tickFPS() {
	r.fpsFrames++
	elapsed := time.Since(r.fpsStarted)
	if elapsed >= time.Second {
		r.fps = float64(r.fpsFrames) / elapsed.Seconds()
		r.fpsFrames = 0
		r.fpsStarted = time.Now()
	}
}

// Shutdown leaves the alternate screen and shows the cursor again.
func (r *Renderer) Shutdown() {
	io.WriteString(r.out, leaveAltScreen)
}
