package video

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/beatfall/internal/config"
)

func TestOutputPath(t *testing.T) {
	cases := map[string]string{
		"video.mp4":          "video_with_audio.mp4",
		"/tmp/out/clip.mkv":  "/tmp/out/clip_with_audio.mkv",
		"noext":              "noext_with_audio",
		"dir.v1/render.webm": "dir.v1/render_with_audio.webm",
	}
	for in, want := range cases {
		assert.Equal(t, want, OutputPath(in), in)
	}
}

func TestMuxErrorCarriesDurations(t *testing.T) {
	cause := errors.New("exit status 1")
	var err error = &MuxError{VideoPath: "v.mp4", AudioPath: "a.mp3", VideoDuration: 2, AudioDuration: 3.5, Err: cause}

	assert.ErrorIs(t, err, cause)
	var me *MuxError
	require.ErrorAs(t, err, &me)
	d := me.Diagnostic()
	assert.Equal(t, "MUX.FAILED", d.Code)
	assert.Equal(t, 2.0, d.Evidence["video_duration"])
	assert.Equal(t, 3.5, d.Evidence["audio_duration"])
	assert.Contains(t, err.Error(), "video 2.000s")
}

func TestOpenRejectsGeometry(t *testing.T) {
	f := FromConfig(config.Default().Video, zerolog.Nop())
	_, err := f.Open(context.Background(), "x.mp4", 0, 10, 30)
	assert.Error(t, err)
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not on PATH", bin)
		}
	}
}

func writeTone(t *testing.T, path string, seconds float64) {
	t.Helper()
	const rate = 22050
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	n := int(seconds * rate)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, n),
		SourceBitDepth: 16,
	}
	for i := range buf.Data {
		if i%200 < 100 {
			buf.Data[i] = 8000
		} else {
			buf.Data[i] = -8000
		}
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestEncodeAndMux(t *testing.T) {
	requireFFmpeg(t)
	dir := t.TempDir()
	ctx := context.Background()
	f := FromConfig(config.Default().Video, zerolog.Nop())
	f.Codec = "mpeg4" // always built in, unlike libx264

	videoPath := filepath.Join(dir, "render.mp4")
	w, err := f.Open(ctx, videoPath, 64, 48, 10)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 64, 48))
		img.Set(i, i, color.White)
		require.NoError(t, w.Append(img))
	}
	// a non-RGBA frame goes through the conversion path
	require.NoError(t, w.Append(image.NewGray(image.Rect(0, 0, 64, 48))))
	require.Error(t, w.Append(image.NewRGBA(image.Rect(0, 0, 32, 32))))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Error(t, w.Append(image.NewRGBA(image.Rect(0, 0, 64, 48))))

	vd, err := f.Probe(ctx, videoPath)
	require.NoError(t, err)
	assert.InDelta(t, 1.1, vd, 0.15)

	audioPath := filepath.Join(dir, "tone.wav")
	writeTone(t, audioPath, 2)

	out, err := f.Mux(ctx, videoPath, audioPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "render_with_audio.mp4"), out)
	d, err := f.Probe(ctx, out)
	require.NoError(t, err)
	assert.Less(t, d, 1.5)
}

func TestMuxMissingAudio(t *testing.T) {
	requireFFmpeg(t)
	f := FromConfig(config.Default().Video, zerolog.Nop())
	_, err := f.Mux(context.Background(), filepath.Join(t.TempDir(), "none.mp4"), "nope.wav")
	var me *MuxError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, -1.0, me.VideoDuration)
}
