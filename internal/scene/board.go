package scene

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/beatfall/internal/physics"
)

// Board is a static ramp. Values are fixed once the scene is built.
type Board struct {
	Handle        physics.BoardHandle
	Position      physics.Vec
	Angle         float64
	HalfLength    float64
	HalfThickness float64
	Restitution   float64
	Friction      float64
	Color         colorful.Color
}

// Endpoints returns the two ends of the board's centre line.
func (b Board) Endpoints() (physics.Vec, physics.Vec) {
	dx := math.Cos(b.Angle) * b.HalfLength
	dy := math.Sin(b.Angle) * b.HalfLength
	return physics.Vec{X: b.Position.X - dx, Y: b.Position.Y - dy},
		physics.Vec{X: b.Position.X + dx, Y: b.Position.Y + dy}
}

func (b Board) spec() physics.BoardSpec {
	return physics.BoardSpec{
		Position:      b.Position,
		Angle:         b.Angle,
		HalfLength:    b.HalfLength,
		HalfThickness: b.HalfThickness,
		Restitution:   b.Restitution,
		Friction:      b.Friction,
	}
}
