package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// hann returns a periodic Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// stft returns the magnitude spectrogram of y, shape [1+nfft/2][frames].
// Frames are centred: frame t covers y[t*hop-nfft/2 : t*hop+nfft/2].
func stft(y []float64, nfft, hop int) [][]float64 {
	pad := nfft / 2
	padded := padReflect(y, pad)
	frames := 1 + (len(padded)-nfft)/hop
	bins := 1 + nfft/2

	S := make([][]float64, bins)
	for k := range S {
		S[k] = make([]float64, frames)
	}
	fft := fourier.NewFFT(nfft)
	win := hann(nfft)
	seg := make([]float64, nfft)
	coeff := make([]complex128, bins)
	for t := 0; t < frames; t++ {
		start := t * hop
		for i := range seg {
			seg[i] = padded[start+i] * win[i]
		}
		coeff = fft.Coefficients(coeff, seg)
		for k := 0; k < bins; k++ {
			S[k][t] = cmplx.Abs(coeff[k])
		}
	}
	return S
}

// padReflect mirrors pad samples onto each end of y, falling back to zeros
// when y is too short to reflect.
func padReflect(y []float64, pad int) []float64 {
	out := make([]float64, len(y)+2*pad)
	copy(out[pad:], y)
	if len(y) <= pad {
		return out
	}
	for i := 0; i < pad; i++ {
		out[pad-1-i] = y[i+1]
		out[pad+len(y)+i] = y[len(y)-2-i]
	}
	return out
}

func frameTimes(frames []int, hop int, sr float64) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = float64(f*hop) / sr
	}
	return out
}
