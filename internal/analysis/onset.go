package analysis

import "math"

const topDB = 80

// onsetStrength is the mean positive first difference of the log-power
// spectrogram over frequency, one value per frame.
func onsetStrength(S [][]float64) []float64 {
	if len(S) == 0 {
		return nil
	}
	frames := len(S[0])
	db := make([][]float64, len(S))
	peak := math.Inf(-1)
	for k, row := range S {
		db[k] = make([]float64, frames)
		for t, m := range row {
			v := 10 * math.Log10(math.Max(m*m, 1e-10))
			db[k][t] = v
			peak = math.Max(peak, v)
		}
	}
	floor := peak - topDB
	env := make([]float64, frames)
	for t := 1; t < frames; t++ {
		var sum float64
		for k := range db {
			d := math.Max(db[k][t], floor) - math.Max(db[k][t-1], floor)
			if d > 0 {
				sum += d
			}
		}
		env[t] = sum / float64(len(db))
	}
	return env
}

// Peak picking windows, in frames.
const (
	peakMax   = 3
	peakAvg   = 3
	peakDelta = 0.07
	peakWait  = 1
)

// detectOnsets picks peaks of the envelope rescaled to [0,1]: local maxima
// over ±peakMax frames that clear the local mean by peakDelta.
func detectOnsets(env []float64) []int {
	if len(env) == 0 {
		return nil
	}
	lo, hi := env[0], env[0]
	for _, v := range env {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo <= 0 {
		return nil
	}
	x := make([]float64, len(env))
	for i, v := range env {
		x[i] = (v - lo) / (hi - lo)
	}

	var peaks []int
	last := -peakWait - 1
	for i := range x {
		a, b := clampRange(i-peakMax, i+peakMax+1, len(x))
		isMax := true
		for j := a; j < b; j++ {
			if x[j] > x[i] {
				isMax = false
				break
			}
		}
		if !isMax {
			continue
		}
		a, b = clampRange(i-peakAvg, i+peakAvg+1, len(x))
		var mean float64
		for j := a; j < b; j++ {
			mean += x[j]
		}
		mean /= float64(b - a)
		if x[i] < mean+peakDelta || i-last <= peakWait {
			continue
		}
		peaks = append(peaks, i)
		last = i
	}
	return peaks
}

func clampRange(a, b, n int) (int, int) {
	if a < 0 {
		a = 0
	}
	if b > n {
		b = n
	}
	return a, b
}
