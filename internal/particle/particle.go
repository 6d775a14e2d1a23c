package particle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Epsilon is the smallest pair collision time accepted as a future event.
// Roots at or below it belong to a contact that has already been resolved.
const Epsilon = 1e-6

var ErrInvalidParticle = errors.New("particle: invalid particle")

// Stamped is anything carrying the simulation time it was created at.
type Stamped interface {
	Created() float64
}

// Particle is a disc moving at constant velocity. Mass is implicitly 1.
type Particle struct {
	Name   string
	X, Y   float64
	VX, VY float64
	Radius float64

	lastUpdate float64
}

// State is a value copy of a particle's public fields.
type State struct {
	Name   string  `json:"name" yaml:"name"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	VX     float64 `json:"vx" yaml:"vx"`
	VY     float64 `json:"vy" yaml:"vy"`
	Radius float64 `json:"radius" yaml:"radius"`
}

func New(name string, x, y, vx, vy, radius float64) (*Particle, error) {
	p := &Particle{Name: name, X: x, Y: y, VX: vx, VY: vy, Radius: radius}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// FromState builds a particle with a zero last-update time.
func FromState(s State) (*Particle, error) {
	return New(s.Name, s.X, s.Y, s.VX, s.VY, s.Radius)
}

func (p *Particle) Validate() error {
	for _, v := range []float64{p.X, p.Y, p.VX, p.VY, p.Radius} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %q has non-finite field", ErrInvalidParticle, p.Name)
		}
	}
	if p.Radius <= 0 {
		return fmt.Errorf("%w: %q radius must be positive, got %g", ErrInvalidParticle, p.Name, p.Radius)
	}
	return nil
}

// LastUpdate is the simulation time of the most recent velocity change.
func (p *Particle) LastUpdate() float64 { return p.lastUpdate }

// IsValidFor reports whether a prediction made at e.Created() still describes
// this particle, i.e. nothing changed its velocity since.
func (p *Particle) IsValidFor(e Stamped) bool {
	return e.Created() >= p.lastUpdate
}

// Advance moves the particle along its velocity for delta time units.
func (p *Particle) Advance(delta float64) {
	p.X += delta * p.VX
	p.Y += delta * p.VY
}

// CollisionTimeWith returns the time from now until p and other touch, or
// +Inf if they never do on their current trajectories.
func (p *Particle) CollisionTimeWith(other *Particle) float64 {
	dvx, dvy := p.VX-other.VX, p.VY-other.VY
	dpx, dpy := p.X-other.X, p.Y-other.Y
	sumR := p.Radius + other.Radius

	a := dvx*dvx + dvy*dvy
	b := 2 * (dvx*dpx + dvy*dpy)
	c := dpx*dpx + dpy*dpy - sumR*sumR

	if a == 0 {
		return math.Inf(1)
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return math.Inf(1)
	}
	sq := math.Sqrt(disc)

	// Evaluate the root that does not subtract nearly equal quantities, then
	// recover the other one from t1*t2 = c/a.
	var t1, t2 float64
	if b >= 0 {
		q := -b - sq
		t1 = q / (2 * a)
		t2 = 2 * c / q
	} else {
		q := -b + sq
		t1 = 2 * c / q
		t2 = q / (2 * a)
	}

	return earliest(t1, t2)
}

func earliest(t1, t2 float64) float64 {
	ok1, ok2 := t1 > Epsilon, t2 > Epsilon
	switch {
	case ok1 && ok2:
		return math.Min(t1, t2)
	case ok1:
		return t1
	case ok2:
		return t2
	}
	return math.Inf(1)
}

// Closing reports whether p and other are in contact, within Epsilon of travel
// time, and moving toward each other. CollisionTimeWith ignores such a pair.
func (p *Particle) Closing(other *Particle) bool {
	dvx, dvy := p.VX-other.VX, p.VY-other.VY
	dpx, dpy := p.X-other.X, p.Y-other.Y
	if dvx*dpx+dvy*dpy >= 0 {
		return false
	}
	gap := math.Hypot(dpx, dpy) - p.Radius - other.Radius
	return gap <= Epsilon*math.Hypot(dvx, dvy)
}

// WallCollisionTime returns the time until the particle's edge reaches wall in
// a square box of side width, or +Inf if it is moving away from it. A particle
// already touching or past the wall while moving into it gets 0.
func (p *Particle) WallCollisionTime(w Wall, width float64) float64 {
	t := math.Inf(1)
	switch {
	case w == Left && p.VX < 0:
		t = -(p.X - p.Radius) / p.VX
	case w == Right && p.VX > 0:
		t = (width - p.X - p.Radius) / p.VX
	case w == Top && p.VY < 0:
		t = -(p.Y - p.Radius) / p.VY
	case w == Bottom && p.VY > 0:
		t = (width - p.Y - p.Radius) / p.VY
	}
	return math.Max(t, 0)
}

// ApplyCollisionResponse resolves an equal-mass elastic collision between p
// and other along the line joining their centres.
func (p *Particle) ApplyCollisionResponse(now float64, other *Particle) {
	dx, dy := p.X-other.X, p.Y-other.Y
	common := ((p.VX-other.VX)*dx + (p.VY-other.VY)*dy) / (dx*dx + dy*dy)

	p.VX -= common * dx
	p.VY -= common * dy
	other.VX += common * dx
	other.VY += common * dy

	p.lastUpdate = now
	other.lastUpdate = now
}

// ApplyWallResponse reflects the velocity component normal to w.
func (p *Particle) ApplyWallResponse(now float64, w Wall) {
	switch w {
	case Left, Right:
		p.VX = -p.VX
	case Top, Bottom:
		p.VY = -p.VY
	}
	p.lastUpdate = now
}

func (p *Particle) KineticEnergy() float64 {
	return 0.5 * (p.VX*p.VX + p.VY*p.VY)
}

func (p *Particle) Momentum() (float64, float64) { return p.VX, p.VY }

func (p *Particle) State() State {
	return State{Name: p.Name, X: p.X, Y: p.Y, VX: p.VX, VY: p.VY, Radius: p.Radius}
}

// String formats the particle as a scenario line: name x  y vx vy radius.
func (p *Particle) String() string { return p.State().String() }

func (s State) String() string {
	var sb strings.Builder
	if s.Name != "" {
		sb.WriteString(s.Name)
		sb.WriteByte(' ')
	}
	sb.WriteString(ftoa(s.X))
	sb.WriteString("  ")
	sb.WriteString(ftoa(s.Y))
	for _, v := range []float64{s.VX, s.VY, s.Radius} {
		sb.WriteByte(' ')
		sb.WriteString(ftoa(v))
	}
	return sb.String()
}

func (s State) KineticEnergy() float64 {
	return 0.5 * (s.VX*s.VX + s.VY*s.VY)
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// TotalKineticEnergy sums the kinetic energy of states.
func TotalKineticEnergy(states []State) float64 {
	total := 0.0
	for _, s := range states {
		total += s.KineticEnergy()
	}
	return total
}
