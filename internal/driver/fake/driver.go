package fake

import (
	"context"
	"errors"
	"image"
	"image/draw"

	"github.com/rs/zerolog"

	"github.com/coreman2200/beatfall/internal/video"
)

// Writer stands in for the encoder on dry runs and in tests. It logs a
// compact summary of each frame (first pixel & avg) at debug level and can
// keep a copy of one chosen frame.
type Writer struct {
	Count  int
	Closed bool

	// Capture is the index of the frame to keep; negative keeps none.
	Capture  int
	Captured *image.RGBA

	// FailAt makes Append fail on that frame index; negative never fails.
	FailAt int

	Log zerolog.Logger
}

var ErrInjected = errors.New("injected write failure")

func New(l zerolog.Logger) *Writer {
	return &Writer{Capture: -1, FailAt: -1, Log: l}
}

// Opener returns a video.Opener that hands out w.
func (w *Writer) Opener() video.Opener {
	return func(ctx context.Context, path string, width, height int, fps float64) (video.Writer, error) {
		w.Log.Debug().Str("path", path).Int("w", width).Int("h", height).Float64("fps", fps).Msg("dry-run writer")
		return w, nil
	}
}

func (w *Writer) Append(img image.Image) error {
	if w.Closed {
		return errors.New("append after close")
	}
	if w.FailAt >= 0 && w.Count == w.FailAt {
		return ErrInjected
	}
	if w.Count == w.Capture {
		b := img.Bounds()
		w.Captured = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(w.Captured, w.Captured.Rect, img, b.Min, draw.Src)
	}
	if e := w.Log.Debug(); e.Enabled() {
		r, g, b := average(img)
		fr, fg, fb, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
		e.Int("frame", w.Count).
			Floats64("avg", []float64{r, g, b}).
			Uints32("first", []uint32{fr >> 8, fg >> 8, fb >> 8}).
			Msg("frame")
	}
	w.Count++
	return nil
}

func (w *Writer) Close() error {
	w.Closed = true
	w.Log.Debug().Int("frames", w.Count).Msg("dry-run writer closed")
	return nil
}

func average(img image.Image) (float64, float64, float64) {
	bounds := img.Bounds()
	var r, g, b float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += float64(cr >> 8)
			g += float64(cg >> 8)
			b += float64(cb >> 8)
		}
	}
	n := float64(bounds.Dx() * bounds.Dy())
	if n == 0 {
		n = 1
	}
	return r / n, g / n, b / n
}

// Muxer records the mux request instead of running ffmpeg.
type Muxer struct {
	Calls []string
	Err   error
}

func (m *Muxer) Mux(ctx context.Context, videoPath, audioPath string) (string, error) {
	m.Calls = append(m.Calls, videoPath+"+"+audioPath)
	if m.Err != nil {
		return "", m.Err
	}
	return video.OutputPath(videoPath), nil
}
