// Package video turns rendered frames into a video file and attaches the
// soundtrack, through ffmpeg subprocesses.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/coreman2200/beatfall/internal/config"
)

// Writer consumes frames in order.
type Writer interface {
	Append(img image.Image) error
	Close() error
}

// Opener creates a Writer for an output file of the given geometry.
type Opener func(ctx context.Context, path string, w, h int, fps float64) (Writer, error)

// FFmpeg names the converter executables and codecs explicitly; nothing is
// looked up from the environment beyond the PATH resolution of exec.
type FFmpeg struct {
	Path        string
	ProbePath   string
	Codec       string
	AudioCodec  string
	PixelFormat string
	Log         zerolog.Logger
}

func FromConfig(v config.Video, l zerolog.Logger) FFmpeg {
	return FFmpeg{
		Path:        v.FFmpeg,
		ProbePath:   v.FFprobe,
		Codec:       v.Codec,
		AudioCodec:  v.AudioCodec,
		PixelFormat: v.PixelFormat,
		Log:         l,
	}
}

// FFmpegWriter pipes raw RGBA frames into an ffmpeg encoder.
type FFmpegWriter struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	path   string
	rect   image.Rectangle
	buf    *image.RGBA
	frames int
	closed bool
	log    zerolog.Logger
}

// Open starts the encoder. Cancelling ctx kills it; the next Append or
// Close then fails.
func (f FFmpeg) Open(ctx context.Context, path string, w, h int, fps float64) (Writer, error) {
	if w <= 0 || h <= 0 || fps <= 0 {
		return nil, fmt.Errorf("invalid geometry %dx%d@%v", w, h, fps)
	}
	cmd := exec.CommandContext(ctx, f.Path,
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
		"-c:v", f.Codec,
		"-pix_fmt", f.PixelFormat,
		"-loglevel", "error",
		path,
	)
	fw := &FFmpegWriter{
		cmd:  cmd,
		path: path,
		rect: image.Rect(0, 0, w, h),
		log:  f.Log,
	}
	cmd.Stderr = &fw.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	fw.stdin = stdin
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start: %w", err)
	}
	f.Log.Debug().Str("path", path).Int("w", w).Int("h", h).Float64("fps", fps).Msg("encoder started")
	return fw, nil
}

func (w *FFmpegWriter) Append(img image.Image) error {
	if w.closed {
		return errors.New("append after close")
	}
	pix, err := w.rgba(img)
	if err != nil {
		return err
	}
	if _, err := w.stdin.Write(pix); err != nil {
		return fmt.Errorf("frame %d: %w%s", w.frames, err, w.tail())
	}
	w.frames++
	return nil
}

// Close flushes the pipe and waits for the encoder to finish the file.
func (w *FFmpegWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.stdin.Close(); err != nil {
		return fmt.Errorf("close ffmpeg stdin: %w", err)
	}
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encode %s: %w%s", w.path, err, w.tail())
	}
	w.log.Debug().Str("path", w.path).Int("frames", w.frames).Msg("encoder finished")
	return nil
}

// Frames returns the number of frames written so far.
func (w *FFmpegWriter) Frames() int { return w.frames }

func (w *FFmpegWriter) rgba(img image.Image) ([]byte, error) {
	if img.Bounds().Size() != w.rect.Size() {
		return nil, fmt.Errorf("frame size %v, encoder expects %v", img.Bounds().Size(), w.rect.Size())
	}
	if m, ok := img.(*image.RGBA); ok && m.Rect == w.rect && m.Stride == 4*w.rect.Dx() {
		return m.Pix, nil
	}
	if w.buf == nil {
		w.buf = image.NewRGBA(w.rect)
	}
	draw.Draw(w.buf, w.rect, img, img.Bounds().Min, draw.Src)
	return w.buf.Pix, nil
}

func (w *FFmpegWriter) tail() string {
	s := strings.TrimSpace(w.stderr.String())
	if s == "" {
		return ""
	}
	return ": " + s
}
