package analysis

import "math"

const (
	minBPM = 30
	maxBPM = 300
)

// estimateTempo autocorrelates the onset envelope and weights each lag by a
// log-normal prior around startBPM (one octave deviation). The winning lag
// is refined by parabolic interpolation.
func estimateTempo(env []float64, sr float64, hop int, startBPM float64) float64 {
	fps := sr / float64(hop)
	minLag := int(math.Floor(60 * fps / maxBPM))
	maxLag := int(math.Ceil(60 * fps / minBPM))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(env)-1 {
		maxLag = len(env) - 2
	}
	if maxLag <= minLag {
		return startBPM
	}

	ac := make([]float64, maxLag+2)
	for lag := minLag - 1; lag <= maxLag+1; lag++ {
		if lag < 0 {
			continue
		}
		var sum float64
		for t := 0; t+lag < len(env); t++ {
			sum += env[t] * env[t+lag]
		}
		ac[lag] = sum
	}

	best, bestScore := -1, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		bpm := 60 * fps / float64(lag)
		w := math.Exp(-0.5 * math.Pow(math.Log2(bpm/startBPM), 2))
		if s := ac[lag] * w; s > bestScore {
			best, bestScore = lag, s
		}
	}
	if best < 0 {
		return startBPM
	}

	lag := float64(best)
	if best > 0 {
		a, b, c := ac[best-1], ac[best], ac[best+1]
		if den := a - 2*b + c; den < 0 {
			lag += 0.5 * (a - c) / den
		}
	}
	return 60 * fps / lag
}
