package metrics

import (
	"math"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/sim"
)

// EnergyDrift tracks the largest relative deviation of total kinetic energy
// from its initial value. Elastic collisions keep it at rounding level.
type EnergyDrift struct {
	name     string
	initial  float64
	current  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(initial float64) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", initial: initial, current: initial}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f sim.Frame) {
	e.current = particle.TotalKineticEnergy(f.Particles)
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(e.current-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Current() float64 { return e.current }

func (e *EnergyDrift) Reset() {
	e.current = e.initial
	e.maxDrift = 0
	e.samples = 0
}
