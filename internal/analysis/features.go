// Package analysis extracts the musical timeline that drives a render:
// tempo, beat and onset times, spectral data and total duration.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// Features is the read-only result of analysing one audio file. Spectral
// matrices are indexed [bin][frame]; times are in seconds.
type Features struct {
	Tempo         float64     `yaml:"tempo" json:"tempo"`
	BeatTimes     []float64   `yaml:"beat_times" json:"beat_times"`
	OnsetTimes    []float64   `yaml:"onset_times" json:"onset_times"`
	OnsetStrength []float64   `yaml:"onset_strength,omitempty" json:"onset_strength,omitempty"`
	Spectrogram   [][]float64 `yaml:"spectrogram,omitempty" json:"spectrogram,omitempty"`
	Pitches       [][]float64 `yaml:"pitches,omitempty" json:"pitches,omitempty"`
	Magnitudes    [][]float64 `yaml:"magnitudes,omitempty" json:"magnitudes,omitempty"`
	Chroma        [][]float64 `yaml:"chroma,omitempty" json:"chroma,omitempty"`
	Duration      float64     `yaml:"duration" json:"duration"`
	AudioPath     string      `yaml:"audio_path,omitempty" json:"audio_path,omitempty"`
	SampleRate    float64     `yaml:"sample_rate,omitempty" json:"sample_rate,omitempty"`
	HopLength     int         `yaml:"hop_length,omitempty" json:"hop_length,omitempty"`
}

// Provider produces Features for an audio file.
type Provider interface {
	Analyze(ctx context.Context, audioPath string) (*Features, error)
}

var ErrNoAudio = errors.New("audio contains no samples")

// Validate checks that timestamps are finite, non-negative, non-decreasing
// and within the duration.
func (f *Features) Validate() error {
	if !(f.Duration > 0) || math.IsInf(f.Duration, 0) {
		return fmt.Errorf("invalid duration %v", f.Duration)
	}
	if err := checkTimes("beat", f.BeatTimes, f.Duration); err != nil {
		return err
	}
	return checkTimes("onset", f.OnsetTimes, f.Duration)
}

func checkTimes(kind string, ts []float64, d float64) error {
	prev := 0.0
	for i, t := range ts {
		switch {
		case math.IsNaN(t) || t < 0 || t > d:
			return fmt.Errorf("%s %d at %v outside [0, %v]", kind, i, t, d)
		case t < prev:
			return fmt.Errorf("%s %d at %v before previous %v", kind, i, t, prev)
		}
		prev = t
	}
	return nil
}

// Normalize drops NaN timestamps, clamps the rest into [0, Duration] and
// sorts them.
func (f *Features) Normalize() {
	f.BeatTimes = normalizeTimes(f.BeatTimes, f.Duration)
	f.OnsetTimes = normalizeTimes(f.OnsetTimes, f.Duration)
}

// Truncate shortens the features to d seconds. Timestamps past d are dropped
// rather than clamped, so they cannot pile up on the last frame.
func (f *Features) Truncate(d float64) {
	if d >= f.Duration {
		return
	}
	f.Duration = d
	f.BeatTimes = dropAfter(f.BeatTimes, d)
	f.OnsetTimes = dropAfter(f.OnsetTimes, d)
	f.Normalize()
}

func dropAfter(ts []float64, d float64) []float64 {
	out := ts[:0]
	for _, t := range ts {
		if t <= d {
			out = append(out, t)
		}
	}
	return out
}

func normalizeTimes(ts []float64, d float64) []float64 {
	out := ts[:0]
	for _, t := range ts {
		if math.IsNaN(t) {
			continue
		}
		out = append(out, math.Min(math.Max(t, 0), d))
	}
	sort.Float64s(out)
	return out
}
