package analysis

import (
	"math"
	"sort"
)

// trackBeats runs dynamic-programming beat tracking over the onset envelope
// and returns beat frame indices.
func trackBeats(env []float64, bpm, sr float64, hop int, tightness float64) []int {
	if len(env) == 0 || bpm <= 0 {
		return nil
	}
	period := 60 * sr / float64(hop) / bpm
	if period < 1 {
		return nil
	}

	local := localScore(env, period)
	n := len(local)
	cum := make([]float64, n)
	back := make([]int, n)

	lo := int(math.Round(2 * period))
	hi := int(math.Round(period / 2))
	if hi < 1 {
		hi = 1
	}
	for t := 0; t < n; t++ {
		back[t] = -1
		best := math.Inf(-1)
		for tau := t - lo; tau <= t-hi; tau++ {
			if tau < 0 {
				continue
			}
			l := math.Log(float64(t-tau) / period)
			if s := cum[tau] - tightness*l*l; s > best {
				best, back[t] = s, tau
			}
		}
		cum[t] = local[t]
		if back[t] >= 0 {
			cum[t] += best
		}
	}

	last := lastBeat(cum)
	if last < 0 {
		return nil
	}
	var beats []int
	for t := last; t >= 0; t = back[t] {
		beats = append(beats, t)
	}
	for i, j := 0, len(beats)-1; i < j; i, j = i+1, j-1 {
		beats[i], beats[j] = beats[j], beats[i]
	}
	return trimBeats(beats, local)
}

// localScore smooths the standardised envelope with a Gaussian of width
// period/32.
func localScore(env []float64, period float64) []float64 {
	std := stddev(env)
	if std == 0 {
		std = 1
	}
	half := int(math.Round(period))
	win := make([]float64, 2*half+1)
	for i := range win {
		k := float64(i - half)
		win[i] = math.Exp(-0.5 * math.Pow(k*32/period, 2))
	}
	out := make([]float64, len(env))
	for t := range env {
		var sum float64
		for i, w := range win {
			j := t + i - half
			if j >= 0 && j < len(env) {
				sum += env[j] / std * w
			}
		}
		out[t] = sum
	}
	return out
}

// lastBeat is the last local maximum of the cumulative score that exceeds
// half the median of all local maxima.
func lastBeat(cum []float64) int {
	var maxima []float64
	isMax := func(t int) bool {
		if t == 0 || t == len(cum)-1 {
			return false
		}
		return cum[t] > cum[t-1] && cum[t] >= cum[t+1]
	}
	for t := range cum {
		if isMax(t) {
			maxima = append(maxima, cum[t])
		}
	}
	if len(maxima) == 0 {
		return len(cum) - 1
	}
	sort.Float64s(maxima)
	thresh := 0.5 * maxima[len(maxima)/2]
	for t := len(cum) - 1; t >= 0; t-- {
		if isMax(t) && cum[t] >= thresh {
			return t
		}
	}
	return -1
}

// trimBeats drops weak leading and trailing beats: those whose local score
// is at most half the RMS of the score.
func trimBeats(beats []int, local []float64) []int {
	var sq float64
	for _, v := range local {
		sq += v * v
	}
	thresh := 0.5 * math.Sqrt(sq/float64(len(local)))
	for len(beats) > 0 && local[beats[0]] <= thresh {
		beats = beats[1:]
	}
	for len(beats) > 0 && local[beats[len(beats)-1]] <= thresh {
		beats = beats[:len(beats)-1]
	}
	return beats
}

func stddev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	var ss float64
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(x)-1))
}
