package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/beatfall/internal/config"
)

// Analyzer computes Features from decoded PCM.
type Analyzer struct {
	SampleRate int
	NFFT       int
	HopLength  int
	StartBPM   float64
	Tightness  float64
	FFmpeg     string // used for containers beep cannot read
	Log        zerolog.Logger
}

func NewAnalyzer(a config.Analysis, ffmpeg string, l zerolog.Logger) *Analyzer {
	return &Analyzer{
		SampleRate: int(a.SampleRate.Hz()),
		NFFT:       a.NFFT,
		HopLength:  a.HopLength,
		StartBPM:   a.StartBPM,
		Tightness:  a.Tightness,
		FFmpeg:     ffmpeg,
		Log:        l,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, audioPath string) (*Features, error) {
	start := time.Now()
	y, err := Decode(ctx, audioPath, a.SampleRate, a.FFmpeg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := a.AnalyzeSamples(y)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", audioPath, err)
	}
	f.AudioPath = audioPath
	a.Log.Info().
		Str("path", audioPath).
		Float64("duration_s", f.Duration).
		Float64("tempo", f.Tempo).
		Int("beats", len(f.BeatTimes)).
		Int("onsets", len(f.OnsetTimes)).
		Dur("took", time.Since(start)).
		Msg("analysis done")
	return f, nil
}

// AnalyzeSamples runs the feature pipeline on mono samples at a.SampleRate.
func (a *Analyzer) AnalyzeSamples(y []float64) (*Features, error) {
	if len(y) == 0 {
		return nil, ErrNoAudio
	}
	if a.SampleRate <= 0 || a.NFFT <= 0 || a.HopLength <= 0 {
		return nil, fmt.Errorf("invalid analysis settings sr=%d n_fft=%d hop=%d", a.SampleRate, a.NFFT, a.HopLength)
	}
	sr := float64(a.SampleRate)

	S := stft(y, a.NFFT, a.HopLength)
	env := onsetStrength(S)
	tempo := estimateTempo(env, sr, a.HopLength, a.StartBPM)
	beats := trackBeats(env, tempo, sr, a.HopLength, a.Tightness)
	pitch, mag := pitches(S, sr, a.NFFT)

	f := &Features{
		Tempo:         tempo,
		BeatTimes:     frameTimes(beats, a.HopLength, sr),
		OnsetTimes:    frameTimes(detectOnsets(env), a.HopLength, sr),
		OnsetStrength: env,
		Spectrogram:   S,
		Pitches:       pitch,
		Magnitudes:    mag,
		Chroma:        chroma(S, sr, a.NFFT),
		Duration:      float64(len(y)) / sr,
		SampleRate:    sr,
		HopLength:     a.HopLength,
	}
	f.Normalize()
	return f, nil
}
