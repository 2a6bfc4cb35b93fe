package analysis

import "math"

// chroma folds STFT power into 12 pitch classes starting at C, each frame
// scaled so its strongest class is 1.
func chroma(S [][]float64, sr float64, nfft int) [][]float64 {
	out := make([][]float64, 12)
	if len(S) == 0 {
		return out
	}
	frames := len(S[0])
	for i := range out {
		out[i] = make([]float64, frames)
	}
	for k := 1; k < len(S); k++ {
		f := float64(k) * sr / float64(nfft)
		if f < 20 {
			continue
		}
		midi := 69 + 12*math.Log2(f/440)
		pc := int(math.Round(midi)) % 12
		if pc < 0 {
			pc += 12
		}
		for t, m := range S[k] {
			out[pc][t] += m * m
		}
	}
	for t := 0; t < frames; t++ {
		var peak float64
		for pc := range out {
			peak = math.Max(peak, out[pc][t])
		}
		if peak == 0 {
			continue
		}
		for pc := range out {
			out[pc][t] /= peak
		}
	}
	return out
}

const (
	pitchFMin      = 150
	pitchFMax      = 4000
	pitchThreshold = 0.1
)

// pitches finds spectral peaks per frame inside [pitchFMin, pitchFMax] and
// refines them by parabolic interpolation. Cells without a peak stay 0.
func pitches(S [][]float64, sr float64, nfft int) (pitch, mag [][]float64) {
	bins := len(S)
	pitch = make([][]float64, bins)
	mag = make([][]float64, bins)
	if bins == 0 {
		return pitch, mag
	}
	frames := len(S[0])
	for k := range pitch {
		pitch[k] = make([]float64, frames)
		mag[k] = make([]float64, frames)
	}
	binHz := sr / float64(nfft)
	lo := int(math.Max(1, math.Floor(pitchFMin/binHz)))
	hi := int(math.Min(float64(bins-2), math.Ceil(pitchFMax/binHz)))
	for t := 0; t < frames; t++ {
		var peak float64
		for k := 0; k < bins; k++ {
			peak = math.Max(peak, S[k][t])
		}
		thresh := pitchThreshold * peak
		for k := lo; k <= hi; k++ {
			a, b, c := S[k-1][t], S[k][t], S[k+1][t]
			if b <= a || b < c || b <= thresh {
				continue
			}
			shift := 0.0
			if den := a - 2*b + c; den != 0 {
				shift = 0.5 * (a - c) / den
			}
			pitch[k][t] = (float64(k) + shift) * binHz
			mag[k][t] = b - 0.25*(a-c)*shift
		}
	}
	return pitch, mag
}
