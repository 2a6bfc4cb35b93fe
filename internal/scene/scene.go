// Package scene aggregates the mutable state of one animation: the physics
// world, the light pool, the fixed board set and per-board glow.
package scene

import (
	"errors"
	"fmt"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/beatfall/internal/config"
	"github.com/coreman2200/beatfall/internal/effects"
	"github.com/coreman2200/beatfall/internal/layout"
	"github.com/coreman2200/beatfall/internal/physics"
)

// Snapshot is a read-only view of the scene handed to the renderer.
type Snapshot struct {
	Frame      int
	Width      int
	Height     int
	Background colorful.Color
	BallColor  colorful.Color
	LineWidth  float64
	GlowMax    float64
	Boards     []Board
	Glow       []float64 // per board, 0..1
	Balls      []physics.BallState
	Lights     []effects.Light
}

type Scene struct {
	World  physics.World
	Lights *effects.Pool

	width, height int
	background    colorful.Color
	ballColor     colorful.Color
	lineWidth     float64
	glowMax       float64

	boards  []Board
	glowing []bool
	glow    []*glow

	frame          int
	ballsSpawned   int
	effectsSpawned int
}

// New places the configured boards into world and draws each board colour
// from the palette with rng.
func New(c *config.Config, world physics.World, rng *rand.Rand) (*Scene, error) {
	if world == nil {
		return nil, errors.New("nil world")
	}
	bg, err := colorful.Hex(c.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	ballColor, err := colorful.Hex(c.Ball.Color)
	if err != nil {
		return nil, fmt.Errorf("ball color: %w", err)
	}
	palette := make([]colorful.Color, 0, len(c.Palette))
	for _, s := range c.Palette {
		col, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		palette = append(palette, col)
	}
	if len(palette) == 0 {
		return nil, errors.New("palette is empty")
	}
	fn, err := Easing(c.Glow.Ease)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		World: world,
		Lights: effects.NewPool(effects.Params{
			MaxRadius: c.Light.MaxRadius,
			Growth:    c.Light.Growth,
			Fade:      c.Light.Fade,
		}),
		width:      c.Width,
		height:     c.Height,
		background: bg,
		ballColor:  ballColor,
		lineWidth:  c.Board.LineWidth,
		glowMax:    c.Glow.Max,
	}

	l := layout.Layout{Dim: layout.Dim{W: c.Width, H: c.Height}}
	for _, p := range c.Boards {
		l.Placements = append(l.Placements, layout.Placement{X: p.X, Y: p.Y, Angle: p.Angle})
	}
	for i := 0; i < l.Count(); i++ {
		x, y, a := l.Position(i)
		b := Board{
			Position:      physics.Vec{X: x, Y: y},
			Angle:         a,
			HalfLength:    c.Board.HalfLength,
			HalfThickness: c.Board.HalfThickness,
			Restitution:   c.Board.Restitution,
			Friction:      c.Board.Friction,
			Color:         palette[rng.Intn(len(palette))],
		}
		b.Handle = world.AddBoard(b.spec())
		s.boards = append(s.boards, b)
		s.glowing = append(s.glowing, false)
		s.glow = append(s.glow, newGlow(c.Glow.Duration, fn))
	}
	return s, nil
}

// Boards returns a copy of the board set.
func (s *Scene) Boards() []Board {
	out := make([]Board, len(s.boards))
	copy(out, s.boards)
	return out
}

// Glowing reports whether board i was touched in the current frame.
func (s *Scene) Glowing(i int) bool { return s.glowing[i] }

// GlowLevel returns the eased highlight of board i in [0,1].
func (s *Scene) GlowLevel(i int) float64 { return s.glow[i].level }

func (s *Scene) BallsSpawned() int   { return s.ballsSpawned }
func (s *Scene) EffectsSpawned() int { return s.effectsSpawned }

// SetFrame records the index of the frame being built.
func (s *Scene) SetFrame(f int) { s.frame = f }

// SpawnBall drops a ball at the top edge of the frame.
func (s *Scene) SpawnBall(x float64) physics.BallHandle {
	s.ballsSpawned++
	return s.World.AddBall(physics.Vec{X: x, Y: 0})
}

func (s *Scene) Step(dt float64) error {
	return s.World.Step(dt)
}

// Contact resets the glow flags, then lights up every board touched in the
// last step and spawns one light per contact at the ball in the board's
// colour. It returns the number of lights spawned.
func (s *Scene) Contact() int {
	for i := range s.glowing {
		s.glowing[i] = false
	}
	n := 0
	for _, c := range s.World.Contacts() {
		i := int(c.Board)
		if i < 0 || i >= len(s.boards) {
			continue
		}
		ball, ok := s.World.Ball(c.Ball)
		if !ok {
			continue
		}
		s.glowing[i] = true
		s.glow[i].hit()
		s.Lights.Spawn(effects.Point{X: ball.Position.X, Y: ball.Position.Y}, s.boards[i].Color)
		n++
	}
	s.effectsSpawned += n
	return n
}

// Cleanup removes every ball below the bottom edge. The doomed set is
// collected before any removal so the world is not mutated mid-iteration.
func (s *Scene) Cleanup() int {
	var doomed []physics.BallHandle
	for _, b := range s.World.Balls() {
		if b.Position.Y > float64(s.height) {
			doomed = append(doomed, b.Handle)
		}
	}
	for _, h := range doomed {
		s.World.RemoveBall(h)
	}
	return len(doomed)
}

// Advance ages lights by one frame and glow by dt seconds.
func (s *Scene) Advance(dt float64) {
	s.Lights.AdvanceAll()
	for _, g := range s.glow {
		g.update(dt)
	}
}

func (s *Scene) Snapshot() Snapshot {
	levels := make([]float64, len(s.glow))
	for i, g := range s.glow {
		levels[i] = g.level
	}
	return Snapshot{
		Frame:      s.frame,
		Width:      s.width,
		Height:     s.height,
		Background: s.background,
		BallColor:  s.ballColor,
		LineWidth:  s.lineWidth,
		GlowMax:    s.glowMax,
		Boards:     s.Boards(),
		Glow:       levels,
		Balls:      s.World.Balls(),
		Lights:     s.Lights.Effects(),
	}
}
