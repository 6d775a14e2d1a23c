package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooFewSamples = errors.New("analysis: need at least two collisions and four bins")

// peakTolerance is how close to the strongest bin a lower frequency must be to
// count as the fundamental. An impulse train puts equal power in every
// harmonic.
const peakTolerance = 0.01

// Bin counts event times into n equal slices of [0, duration].
func Bin(times []float64, duration float64, n int) []float64 {
	out := make([]float64, n)
	if n == 0 || duration <= 0 {
		return out
	}
	w := duration / float64(n)
	for _, t := range times {
		i := int(t / w)
		if i >= n {
			i = n - 1
		}
		if i >= 0 {
			out[i]++
		}
	}
	return out
}

// PowerSpectrum returns the magnitude of each non-negative frequency of the
// mean-removed series. Index k corresponds to k cycles per series length.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return []float64{}
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	freq := fft.FFTReal(centered)
	ps := make([]float64, len(freq)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(freq[i])
	}
	return ps
}

// Periodicity returns the dominant period of the collision times and the
// spectrum it was read from.
func Periodicity(times []float64, duration float64, bins int) (float64, []float64, error) {
	if len(times) < 2 || bins < 4 || duration <= 0 {
		return 0, nil, ErrTooFewSamples
	}
	ps := PowerSpectrum(Bin(times, duration, bins))

	peak := 0.0
	for _, v := range ps[1:] {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		return math.Inf(1), ps, nil
	}
	for k := 1; k < len(ps); k++ {
		if ps[k] >= peak*(1-peakTolerance) {
			return duration / float64(k), ps, nil
		}
	}
	return math.Inf(1), ps, nil
}
