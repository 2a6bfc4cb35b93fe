package render

import (
	"image"
	"image/color"
)

// Surface is the drawing capability the engine needs from a raster backend.
type Surface interface {
	Clear(c color.Color)
	FillCircle(x, y, r float64, c color.Color)
	StrokeLine(x1, y1, x2, y2, width float64, c color.Color)
	Image() *image.RGBA
}
