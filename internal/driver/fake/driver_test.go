package fake

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterCountsAndCaptures(t *testing.T) {
	w := New(zerolog.Nop())
	w.Capture = 1
	open := w.Opener()
	vw, err := open(context.Background(), "out.mp4", 4, 4, 60)
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, vw.Append(img))
	img.Set(0, 0, color.White)
	require.NoError(t, vw.Append(img))
	img.Set(0, 0, color.Black)
	require.NoError(t, vw.Append(img))
	require.NoError(t, vw.Close())

	assert.Equal(t, 3, w.Count)
	require.NotNil(t, w.Captured)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, w.Captured.RGBAAt(0, 0))
	assert.Error(t, vw.Append(img))
}

func TestWriterFailAt(t *testing.T) {
	w := New(zerolog.Nop())
	w.FailAt = 2
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	require.NoError(t, w.Append(img))
	require.NoError(t, w.Append(img))
	assert.ErrorIs(t, w.Append(img), ErrInjected)
}

func TestWriterFailAtFirstFrame(t *testing.T) {
	w := New(zerolog.Nop())
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	w.FailAt = 0
	assert.ErrorIs(t, w.Append(img), ErrInjected)
	assert.Equal(t, 0, w.Count)
}

func TestWriterNeverFailsByDefault(t *testing.T) {
	w := New(zerolog.Nop())
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Append(img))
	}
}

func TestMuxerNaming(t *testing.T) {
	m := &Muxer{}
	out, err := m.Mux(context.Background(), "/tmp/v.mp4", "song.mp3")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/v_with_audio.mp4", out)
	assert.Len(t, m.Calls, 1)
}
