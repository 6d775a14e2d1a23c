package analysis

import (
	"math"

	"github.com/san-kum/particlesim/internal/particle"
)

type Histogram struct {
	Min, Max float64
	Counts   []float64
}

func (h Histogram) BinWidth() float64 {
	if len(h.Counts) == 0 {
		return 0
	}
	return (h.Max - h.Min) / float64(len(h.Counts))
}

// SpeedHistogram counts particle speeds into bins spanning [0, max speed].
func SpeedHistogram(states []particle.State, bins int) Histogram {
	if bins < 1 {
		bins = 1
	}
	h := Histogram{Counts: make([]float64, bins)}
	for _, s := range states {
		h.Max = math.Max(h.Max, math.Hypot(s.VX, s.VY))
	}
	if h.Max == 0 {
		h.Counts[0] = float64(len(states))
		return h
	}
	w := h.BinWidth()
	for _, s := range states {
		i := int(math.Hypot(s.VX, s.VY) / w)
		if i >= bins {
			i = bins - 1
		}
		h.Counts[i]++
	}
	return h
}

func MeanSpeed(states []particle.State) float64 {
	if len(states) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range states {
		sum += math.Hypot(s.VX, s.VY)
	}
	return sum / float64(len(states))
}

// Equipartition is sum(vx^2) / sum(vy^2). It is NaN when nothing moves
// vertically.
func Equipartition(states []particle.State) float64 {
	var ex, ey float64
	for _, s := range states {
		ex += s.VX * s.VX
		ey += s.VY * s.VY
	}
	if ey == 0 {
		return math.NaN()
	}
	return ex / ey
}
