package layout

type Dim struct{ W, H int }

// Placement positions a board relative to the frame: X and Y are fractions of
// the frame width and height, Angle is in radians.
type Placement struct {
	X, Y  float64
	Angle float64
}

type Layout struct {
	Dim        Dim
	Placements []Placement
}

// Position maps placement i to frame coordinates.
func (l Layout) Position(i int) (x, y, angle float64) {
	p := l.Placements[i]
	return p.X * float64(l.Dim.W), p.Y * float64(l.Dim.H), p.Angle
}

func (l Layout) Count() int {
	return len(l.Placements)
}
