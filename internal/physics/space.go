package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

type ball struct {
	handle  BallHandle
	body    *cp.Body
	shape   *cp.Shape
	created float64
}

// Space is a World backed by Chipmunk2D.
type Space struct {
	space    *cp.Space
	spec     BallSpec
	boards   []*cp.Shape
	balls    []*ball
	next     BallHandle
	now      float64
	contacts []Contact
}

// NewSpace creates an empty world with downward gravity (y grows downward).
func NewSpace(gravity float64, spec BallSpec) *Space {
	s := cp.NewSpace()
	s.SetGravity(cp.Vector{X: 0, Y: gravity})
	return &Space{space: s, spec: spec}
}

func (s *Space) AddBoard(spec BoardSpec) BoardHandle {
	body := cp.NewStaticBody()
	body.SetPosition(cp.Vector{X: spec.Position.X, Y: spec.Position.Y})
	body.SetAngle(spec.Angle)
	shape := cp.NewSegment(body,
		cp.Vector{X: -spec.HalfLength, Y: 0},
		cp.Vector{X: spec.HalfLength, Y: 0},
		spec.HalfThickness)
	shape.SetElasticity(spec.Restitution)
	shape.SetFriction(spec.Friction)
	s.space.AddBody(body)
	s.space.AddShape(shape)
	s.boards = append(s.boards, shape)
	return BoardHandle(len(s.boards) - 1)
}

func (s *Space) AddBall(pos Vec) BallHandle {
	moment := cp.MomentForCircle(s.spec.Mass, 0, s.spec.Radius, cp.Vector{})
	body := cp.NewBody(s.spec.Mass, moment)
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	shape := cp.NewCircle(body, s.spec.Radius, cp.Vector{})
	shape.SetElasticity(s.spec.Restitution)
	shape.SetFriction(s.spec.Friction)
	s.space.AddBody(body)
	s.space.AddShape(shape)

	h := s.next
	s.next++
	s.balls = append(s.balls, &ball{handle: h, body: body, shape: shape, created: s.now})
	return h
}

// Step advances the simulation by dt and recomputes the contact set.
// Chipmunk reports internal faults by panicking; those come back as errors.
func (s *Space) Step(dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("physics step at t=%.3f: %v", s.now, r)
		}
	}()
	s.space.Step(dt)
	s.now += dt

	s.contacts = s.contacts[:0]
	for _, b := range s.balls {
		for i, board := range s.boards {
			if cp.ShapesCollide(b.shape, board).Count > 0 {
				s.contacts = append(s.contacts, Contact{Ball: b.handle, Board: BoardHandle(i)})
			}
		}
	}
	return nil
}

func (s *Space) Contacts() []Contact {
	out := make([]Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

func (s *Space) RemoveBall(h BallHandle) {
	for i, b := range s.balls {
		if b.handle != h {
			continue
		}
		s.space.RemoveShape(b.shape)
		s.space.RemoveBody(b.body)
		s.balls = append(s.balls[:i], s.balls[i+1:]...)
		return
	}
}

func (s *Space) Balls() []BallState {
	out := make([]BallState, 0, len(s.balls))
	for _, b := range s.balls {
		out = append(out, s.state(b))
	}
	return out
}

func (s *Space) Ball(h BallHandle) (BallState, bool) {
	for _, b := range s.balls {
		if b.handle == h {
			return s.state(b), true
		}
	}
	return BallState{}, false
}

// Now returns the simulated time in seconds.
func (s *Space) Now() float64 { return s.now }

func (s *Space) state(b *ball) BallState {
	p := b.body.Position()
	v := b.body.Velocity()
	return BallState{
		Handle:   b.handle,
		Position: Vec{X: p.X, Y: p.Y},
		Velocity: Vec{X: v.X, Y: v.Y},
		Radius:   s.spec.Radius,
		Created:  b.created,
	}
}
