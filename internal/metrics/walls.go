package metrics

import (
	"math"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/sim"
)

// Pressure is the 2D wall pressure: momentum delivered to the walls per unit
// length of wall per unit time, with unit mass per particle.
type Pressure struct {
	width   float64
	impulse float64
	end     float64
}

func NewPressure(width float64) *Pressure { return &Pressure{width: width} }

func (p *Pressure) Name() string { return "pressure" }

func (p *Pressure) Observe(f sim.Frame) {
	p.end = f.Time
	if f.Event.Kind != sim.KindWall {
		return
	}
	s := f.Particles[f.Event.A]
	// the response flips the normal component, so its magnitude is unchanged
	normal := s.VX
	if f.Event.Wall == particle.Top || f.Event.Wall == particle.Bottom {
		normal = s.VY
	}
	p.impulse += 2 * math.Abs(normal)
}

func (p *Pressure) Finish(t float64) { p.end = t }

func (p *Pressure) Value() float64 {
	if p.end == 0 || p.width == 0 {
		return math.NaN()
	}
	return p.impulse / (4 * p.width * p.end)
}

func (p *Pressure) Reset() {
	p.impulse = 0
	p.end = 0
}

// Containment is the fraction of frames in which every particle lies inside
// the box, allowing for rounding.
type Containment struct {
	width      float64
	violations int
	samples    int
}

const containmentSlack = 1e-6

func NewContainment(width float64) *Containment { return &Containment{width: width} }

func (c *Containment) Name() string { return "containment" }

func (c *Containment) Observe(f sim.Frame) {
	c.samples++
	for _, s := range f.Particles {
		lo, hi := s.Radius-containmentSlack, c.width-s.Radius+containmentSlack
		if s.X < lo || s.X > hi || s.Y < lo || s.Y > hi {
			c.violations++
			return
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
