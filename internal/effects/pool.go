// Package effects holds the short-lived light flashes spawned by impacts.
package effects

import colorful "github.com/lucasb-eyer/go-colorful"

// MaxOpacity is the opacity of a freshly spawned light.
const MaxOpacity = 255

type Point struct{ X, Y float64 }

// Light is a radial flash that grows and fades every advance.
type Light struct {
	Origin    Point
	Color     colorful.Color
	Radius    float64
	MaxRadius float64
	Opacity   int // 0..255
}

// Alpha returns the opacity as a fraction in [0,1].
func (l Light) Alpha() float64 { return float64(l.Opacity) / MaxOpacity }

type Params struct {
	MaxRadius float64
	Growth    float64 // radius added per advance
	Fade      int     // opacity removed per advance
}

// Pool is an unbounded, spawn-ordered set of lights. It is not safe for
// concurrent use; the frame loop owns it.
type Pool struct {
	p      Params
	lights []Light
}

func NewPool(p Params) *Pool {
	return &Pool{p: p}
}

func (p *Pool) Spawn(origin Point, c colorful.Color) {
	p.lights = append(p.lights, Light{
		Origin:    origin,
		Color:     c,
		MaxRadius: p.p.MaxRadius,
		Opacity:   MaxOpacity,
	})
}

// AdvanceAll grows and fades every light, dropping the ones that reached
// zero opacity. Survivors keep their spawn order.
func (p *Pool) AdvanceAll() {
	alive := p.lights[:0]
	for _, l := range p.lights {
		l.Radius += p.p.Growth
		if l.Radius > l.MaxRadius {
			l.Radius = l.MaxRadius
		}
		l.Opacity -= p.p.Fade
		if l.Opacity <= 0 {
			continue
		}
		alive = append(alive, l)
	}
	// release dropped tail entries
	for i := len(alive); i < len(p.lights); i++ {
		p.lights[i] = Light{}
	}
	p.lights = alive
}

func (p *Pool) Len() int { return len(p.lights) }

// Effects returns a copy of the live lights in spawn order.
func (p *Pool) Effects() []Light {
	out := make([]Light, len(p.lights))
	copy(out, p.lights)
	return out
}
