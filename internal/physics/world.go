// Package physics owns the rigid-body simulation: immovable boards, falling
// balls, a fixed-step integrator and per-step contact reports.
package physics

type Vec struct{ X, Y float64 }

// BoardSpec describes a static capsule: a segment of length 2*HalfLength,
// rotated by Angle around Position, inflated by HalfThickness.
type BoardSpec struct {
	Position      Vec
	Angle         float64
	HalfLength    float64
	HalfThickness float64
	Restitution   float64
	Friction      float64
}

// BallSpec is shared by every ball a world creates.
type BallSpec struct {
	Radius      float64
	Mass        float64
	Restitution float64
	Friction    float64
}

type (
	BallHandle  int
	BoardHandle int
)

// Contact is a ball overlapping a board after the most recent step.
type Contact struct {
	Ball  BallHandle
	Board BoardHandle
}

type BallState struct {
	Handle   BallHandle
	Position Vec
	Velocity Vec
	Radius   float64
	Created  float64 // simulation time in seconds
}

// World is the capability the animation loop needs from a physics engine.
// Step must be called once per frame, in order; it is not reentrant.
type World interface {
	AddBoard(spec BoardSpec) BoardHandle
	AddBall(pos Vec) BallHandle
	Step(dt float64) error
	Contacts() []Contact
	RemoveBall(h BallHandle)
	Balls() []BallState
	Ball(h BallHandle) (BallState, bool)
}
