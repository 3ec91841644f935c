package demos

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/calendon/internal/core"
)

func init() {
	Register("snake", func() Demo { return &Snake{Seed: 1} })
}

const (
	snakeArenaW   = 40
	snakeArenaH   = 16
	snakeHUD      = 2
	snakeMaxSteps = 4 // moves replayed after a long frame
)

var snakeStep = core.Milli(120)

// Direction is where the snake's head moves next.
type Direction int

const (
	DirRight Direction = iota
	DirDown
	DirLeft
	DirUp
)

func (d Direction) opposite(o Direction) bool {
	return (d+2)%4 == o
}

// Point is a cell inside the arena, origin at its top-left inner corner.
type Point struct {
	X, Y int
}

// Snake is a time-driven snake in a walled arena. It moves one cell every
// snakeStep regardless of frame rate. Confirm restarts after game over.
type Snake struct {
	Seed int64

	env       Env
	rng       *rand.Rand
	body      []Point // head first
	direction Direction
	nextDir   Direction
	food      Point
	score     int
	pending   core.Time
	gameOver  bool
	paused    bool
}

func (s *Snake) ID() string    { return "snake" }
func (s *Snake) Title() string { return "Snake" }

func (s *Snake) Init(env Env) bool {
	s.env = env
	s.reset(s.Seed)
	return true
}

func (s *Snake) reset(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
	y := snakeArenaH / 2
	s.body = []Point{{X: 4, Y: y}, {X: 3, Y: y}, {X: 2, Y: y}}
	s.direction = DirRight
	s.nextDir = DirRight
	s.score = 0
	s.pending = core.Zero()
	s.gameOver = false
	s.paused = false
	s.spawnFood()
}

func (s *Snake) Tick(dt core.Time) {
	in := s.env.input()
	if s.gameOver {
		if in.Has(core.ActionConfirm) {
			s.reset(s.rng.Int63())
		}
		return
	}
	if in.Has(core.ActionPause) {
		s.paused = !s.paused
	}
	if s.paused {
		return
	}
	s.steer(in)

	s.pending = s.pending.Add(dt)
	for n := 0; !s.pending.Less(snakeStep) && !s.gameOver; n++ {
		if n == snakeMaxSteps {
			s.pending = core.Zero()
			break
		}
		s.pending = s.pending.Sub(snakeStep)
		s.move()
	}
}

func (s *Snake) steer(in core.InputFrame) {
	dir := s.nextDir
	switch {
	case in.Has(core.ActionUp):
		dir = DirUp
	case in.Has(core.ActionDown):
		dir = DirDown
	case in.Has(core.ActionLeft):
		dir = DirLeft
	case in.Has(core.ActionRight):
		dir = DirRight
	}
	if !dir.opposite(s.direction) {
		s.nextDir = dir
	}
}

func (s *Snake) move() {
	s.direction = s.nextDir
	head := s.body[0]
	switch s.direction {
	case DirUp:
		head.Y--
	case DirDown:
		head.Y++
	case DirLeft:
		head.X--
	case DirRight:
		head.X++
	}

	if head.X < 0 || head.X >= snakeArenaW || head.Y < 0 || head.Y >= snakeArenaH {
		s.gameOver = true
		return
	}
	growing := head == s.food
	// The tail moves out of the way unless the snake grows.
	check := s.body
	if !growing {
		check = check[:len(check)-1]
	}
	for _, p := range check {
		if p == head {
			s.gameOver = true
			return
		}
	}

	s.body = append([]Point{head}, s.body...)
	if growing {
		s.score++
		s.spawnFood()
		return
	}
	s.body = s.body[:len(s.body)-1]
}

func (s *Snake) spawnFood() {
	var free []Point
	for y := 0; y < snakeArenaH; y++ {
		for x := 0; x < snakeArenaW; x++ {
			p := Point{X: x, Y: y}
			if !s.occupies(p) {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		s.food = Point{X: -1, Y: -1}
		return
	}
	s.food = free[s.rng.Intn(len(free))]
}

func (s *Snake) occupies(p Point) bool {
	for _, b := range s.body {
		if b == p {
			return true
		}
	}
	return false
}

func (s *Snake) Draw(dst *core.Screen) {
	dst.DrawText(1, 0, fmt.Sprintf("Snake  score %d  length %d", s.score, len(s.body)))
	dst.DrawHLine(0, 1, dst.Width(), '─')

	ox := (dst.Width() - snakeArenaW - 2) / 2
	oy := snakeHUD
	dst.DrawBox(core.NewRect(ox, oy, snakeArenaW+2, snakeArenaH+2))
	ox, oy = ox+1, oy+1

	if s.food.X >= 0 {
		dst.SetColor(ox+s.food.X, oy+s.food.Y, '*', core.ColorRed)
	}
	for i, p := range s.body {
		r := 'o'
		if i == 0 {
			r = 'O'
		}
		dst.SetColor(ox+p.X, oy+p.Y, r, core.ColorGreen)
	}

	switch {
	case s.gameOver:
		dst.DrawTextCentered(oy+snakeArenaH/2, " Game Over - Enter to restart ")
	case s.paused:
		dst.DrawTextCentered(oy+snakeArenaH/2, " Paused ")
	}
}

func (s *Snake) Shutdown() {
	s.body = nil
}

// Head returns the position of the snake's head.
func (s *Snake) Head() Point {
	return s.body[0]
}

// Score returns the amount of food eaten since the last restart.
func (s *Snake) Score() int {
	return s.score
}

// GameOver reports whether the snake crashed.
func (s *Snake) GameOver() bool {
	return s.gameOver
}
