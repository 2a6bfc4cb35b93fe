package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Canvas is a Surface backed by a gg context over a single RGBA buffer.
type Canvas struct {
	img *image.RGBA
	dc  *gg.Context
}

func NewCanvas(w, h int) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(img)
	dc.SetLineCapButt()
	return &Canvas{img: img, dc: dc}
}

func (c *Canvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

func (c *Canvas) FillCircle(x, y, r float64, col color.Color) {
	if r <= 0 {
		return
	}
	c.dc.SetColor(col)
	c.dc.DrawCircle(x, y, r)
	c.dc.Fill()
}

func (c *Canvas) StrokeLine(x1, y1, x2, y2, width float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(x1, y1, x2, y2)
	c.dc.Stroke()
}

// Image returns the backing buffer; it is overwritten by the next frame.
func (c *Canvas) Image() *image.RGBA { return c.img }
