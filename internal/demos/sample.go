package demos

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/vovakirdan/calendon/internal/core"
)

func init() {
	Register("sample", func() Demo { return &Sample{} })
}

const (
	sampleFrameTime   = 150 // ms per animation frame
	sampleSpokes      = 19
	sampleRadius      = 6
	sampleFPSInterval = 10 // frames between FPS readouts
)

// Built-in stick figure, used when no sprite files are found in the asset
// directory.
var stickFrames = [][]string{
	{" o ", "/|\\", "/ \\"},
	{"\\o/", " | ", "/ \\"},
	{" o ", "/|\\", " |\\"},
}

var stickFiles = []string{
	"sprites/stick_person.txt",
	"sprites/stick_person2.txt",
	"sprites/stick_person3.txt",
}

// Sample cycles a three-frame animation and sweeps a spoke around a circle.
type Sample struct {
	env    Env
	frames [][]string
	loop   AnimLoop
	cursor AnimCursor
	spoke  int
	lastDt core.Time
	fps    string
	draws  int
}

func (s *Sample) ID() string    { return "sample" }
func (s *Sample) Title() string { return "Animation Sample" }

func (s *Sample) Init(env Env) bool {
	s.env = env
	s.frames = loadFrames(env)
	s.loop = AnimLoop{Durations: []core.Time{
		core.Milli(sampleFrameTime),
		core.Milli(sampleFrameTime),
		core.Milli(sampleFrameTime),
	}}
	s.cursor = AnimCursor{}
	s.fps = ""
	env.logger().Debug("sample loaded", "frames", len(s.frames))
	return true
}

func loadFrames(env Env) [][]string {
	if env.Assets == nil {
		return stickFrames
	}
	frames := make([][]string, 0, len(stickFiles))
	for _, name := range stickFiles {
		data, err := os.ReadFile(env.Assets.PathFor(name))
		if err != nil {
			return stickFrames
		}
		frames = append(frames, strings.Split(strings.TrimRight(string(data), "\n"), "\n"))
	}
	return frames
}

func (s *Sample) Tick(dt core.Time) {
	s.loop.Tick(&s.cursor, dt)
	s.lastDt = dt
}

func (s *Sample) Draw(dst *core.Screen) {
	dst.DrawBox(dst.Bounds())

	for i, line := range s.frames[s.cursor.Current%len(s.frames)] {
		dst.DrawTextColor(4, 3+i, line, core.ColorYellow)
	}

	// Circle outline and a spoke stepping backwards each frame.
	cx, cy := dst.Width()/2, dst.Height()/2
	for i := 0; i < sampleSpokes; i++ {
		x, y := circlePoint(cx, cy, i)
		dst.SetColor(x, y, '*', core.ColorRed)
	}
	s.spoke--
	if s.spoke < 0 {
		s.spoke = sampleSpokes - 1
	}
	sx, sy := circlePoint(cx, cy, s.spoke)
	drawLine(dst, cx, cy, sx, sy, '.', core.ColorGreen)

	s.draws++
	if s.draws%sampleFPSInterval == 0 {
		ms := core.MaxTime(core.Milli(1), s.lastDt).Milli()
		s.fps = fmt.Sprintf("FPS: %.1f", 1000/float64(ms))
	}
	dst.DrawText(2, dst.Height()-2, s.fps)
}

func (s *Sample) Shutdown() {}

// circlePoint returns spoke i of the circle around (cx, cy). Cells are about
// twice as tall as wide, so x is stretched.
func circlePoint(cx, cy, i int) (int, int) {
	angle := 2 * math.Pi * float64(i) / sampleSpokes
	x := cx + int(math.Round(2*sampleRadius*math.Cos(angle)))
	y := cy + int(math.Round(sampleRadius*math.Sin(angle)))
	return x, y
}

func drawLine(dst *core.Screen, x0, y0, x1, y1 int, r rune, c core.Color) {
	steps := core.Max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		dst.SetColor(x0, y0, r, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(math.Round(t*float64(x1-x0)))
		y := y0 + int(math.Round(t*float64(y1-y0)))
		dst.SetColor(x, y, r, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
