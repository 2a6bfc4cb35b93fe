package render

import (
	"errors"
	"image"
	"time"

	"github.com/coreman2200/beatfall/internal/scene"
)

// Engine draws scene snapshots onto a Surface. Drawing never touches the
// simulation; the same snapshot always yields the same pixels.
type Engine struct {
	Surf Surface

	// metrics (last durations in ms)
	Last struct {
		RenderMS float64
	}
}

// NewEngine wires a gg canvas of the given size.
func NewEngine(w, h int) (*Engine, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New("invalid dimensions")
	}
	return &Engine{Surf: NewCanvas(w, h)}, nil
}

// RenderOnce draws snap and returns the surface buffer. The buffer is reused
// by the next call; callers that keep frames must copy them.
func (e *Engine) RenderOnce(snap scene.Snapshot) *image.RGBA {
	start := time.Now()
	s := e.Surf

	s.Clear(withAlpha(snap.Background, 1))

	for _, l := range snap.Lights {
		s.FillCircle(l.Origin.X, l.Origin.Y, l.Radius, withAlpha(l.Color, l.Alpha()))
	}

	for i, b := range snap.Boards {
		level := 0.0
		if i < len(snap.Glow) {
			level = snap.Glow[i]
		}
		p1, p2 := b.Endpoints()
		col := Brighten(b.Color, level, snap.GlowMax)
		s.StrokeLine(p1.X, p1.Y, p2.X, p2.Y, snap.LineWidth, withAlpha(col, 1))
	}

	ball := withAlpha(snap.BallColor, 1)
	for _, b := range snap.Balls {
		s.FillCircle(b.Position.X, b.Position.Y, b.Radius, ball)
	}

	e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0
	return s.Image()
}
