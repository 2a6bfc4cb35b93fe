package render

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var white = colorful.Color{R: 1, G: 1, B: 1}

// Brighten blends c toward white by level*max, level clamped to [0,1].
func Brighten(c colorful.Color, level, max float64) colorful.Color {
	if level <= 0 || max <= 0 {
		return c
	}
	if level > 1 {
		level = 1
	}
	return c.BlendRgb(white, level*max).Clamped()
}

// withAlpha converts c to a non-premultiplied colour at alpha in [0,1].
func withAlpha(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}
