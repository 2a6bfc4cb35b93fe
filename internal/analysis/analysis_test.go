package analysis

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/beatfall/internal/config"
)

// Clicks every 21 hops at 22.05 kHz: 60*22050/(512*21) BPM.
const (
	clickSpacing = 21 * 512
	clickCount   = 20
	clickBPM     = 60 * 22050.0 / clickSpacing
)

func clickTrack(rate, spacing int) []float64 {
	y := make([]float64, spacing*(clickCount+1))
	burst := rate / 50 // 20ms
	for k := 1; k <= clickCount; k++ {
		at := k * spacing
		for i := 0; i < burst; i++ {
			tt := float64(i) / float64(rate)
			y[at+i] = 0.8 * math.Exp(-tt/0.005) * math.Sin(2*math.Pi*1000*tt)
		}
	}
	return y
}

func writeWAV(t *testing.T, path string, y []float64, rate int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, len(y)),
		SourceBitDepth: 16,
	}
	for i, v := range y {
		buf.Data[i] = int(v * 32767)
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func newAnalyzer() *Analyzer {
	return NewAnalyzer(config.Default().Analysis, "ffmpeg", zerolog.Nop())
}

func assertFindsPulse(t *testing.T, f *Features) {
	t.Helper()
	assert.InEpsilon(t, clickBPM, f.Tempo, 0.03)
	require.GreaterOrEqual(t, len(f.BeatTimes), clickCount-4, "beats: %v", f.BeatTimes)

	tol := 3 * 512 / 22050.0
	for _, b := range f.BeatTimes {
		k := math.Round(b * 22050 / clickSpacing)
		click := k * clickSpacing / 22050
		assert.InDelta(t, click, b, tol, "beat %.3f far from click %.3f", b, click)
	}
	require.NoError(t, f.Validate())
}

func TestAnalyzeSamplesFindsPulse(t *testing.T) {
	a := newAnalyzer()
	y := clickTrack(22050, clickSpacing)
	f, err := a.AnalyzeSamples(y)
	require.NoError(t, err)

	assert.InDelta(t, float64(len(y))/22050, f.Duration, 1e-9)
	assertFindsPulse(t, f)
	assert.GreaterOrEqual(t, len(f.OnsetTimes), clickCount-2)

	frames := 1 + len(y)/512
	assert.Len(t, f.OnsetStrength, frames)
	require.Len(t, f.Spectrogram, 1025)
	assert.Len(t, f.Spectrogram[0], frames)
	assert.Len(t, f.Chroma, 12)
	assert.Len(t, f.Pitches, 1025)
}

func TestAnalyzeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clicks.wav")
	writeWAV(t, path, clickTrack(22050, clickSpacing), 22050)

	f, err := newAnalyzer().Analyze(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, f.AudioPath)
	assertFindsPulse(t, f)
}

func TestAnalyzeResamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clicks44.wav")
	writeWAV(t, path, clickTrack(44100, 2*clickSpacing), 44100)

	f, err := newAnalyzer().Analyze(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 22050.0, f.SampleRate)
	assert.InDelta(t, float64(2*clickSpacing*(clickCount+1))/44100, f.Duration, 0.01)
	assert.InEpsilon(t, clickBPM, f.Tempo, 0.03)
}

func TestAnalyzeErrors(t *testing.T) {
	a := newAnalyzer()
	_, err := a.AnalyzeSamples(nil)
	assert.ErrorIs(t, err, ErrNoAudio)

	_, err = a.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)

	bogus := filepath.Join(t.TempDir(), "song.xyz")
	require.NoError(t, os.WriteFile(bogus, []byte("not audio"), 0644))
	a.FFmpeg = filepath.Join(t.TempDir(), "no-such-ffmpeg")
	_, err = a.Analyze(context.Background(), bogus)
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "broken.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("RIFFjunk"), 0644))
	_, err = a.Analyze(context.Background(), garbage)
	assert.Error(t, err)
}

func TestPitchAndChromaOfSine(t *testing.T) {
	const sr = 22050
	y := make([]float64, sr)
	for i := range y {
		y[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/sr)
	}
	S := stft(y, 2048, 512)
	p, _ := pitches(S, sr, 2048)

	mid := len(S[0]) / 2
	var found float64
	for k := range p {
		if p[k][mid] > 0 {
			found = p[k][mid]
			break
		}
	}
	assert.InDelta(t, 440, found, 3)

	c := chroma(S, sr, 2048)
	assert.Equal(t, 1.0, c[9][mid], "A should dominate")
	assert.Less(t, c[0][mid], 0.5)
}

func TestPadReflect(t *testing.T) {
	assert.Equal(t, []float64{3, 2, 1, 2, 3, 4, 3, 2}, padReflect([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{0, 0, 1, 0, 0}, padReflect([]float64{1}, 2))
}
