// Package sim runs the event-driven collision simulation. An Engine predicts
// every collision up front, then repeatedly jumps to the earliest pending one,
// resolves it and re-predicts only for the particles whose velocity changed.
// Predictions invalidated in the meantime stay queued and are skipped when
// popped.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/pqueue"
)

type Engine struct {
	cfg       Config
	particles []*particle.Particle
	queue     *pqueue.Queue[Event]
	clock     float64
	phase     Phase
	seq       uint64
	observers []Observer
	stats     Stats

	// scratch marks for predict, sized to the particle count
	mark []bool
}

// New validates the input and seeds the queue with every wall and pair
// prediction at time zero plus the termination event. The particles are
// copied; later changes to the arguments do not affect the engine.
func New(cfg Config, particles []*particle.Particle) (*Engine, error) {
	if err := validate(cfg, particles); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		particles: make([]*particle.Particle, len(particles)),
		queue:     pqueue.New(before),
		phase:     Seeded,
		observers: make([]Observer, 0),
		mark:      make([]bool, len(particles)),
	}
	for i, p := range particles {
		c := *p
		e.particles[i] = &c
	}

	all := make([]int, len(particles))
	for i := range all {
		all[i] = i
	}
	e.predict(all)
	e.schedule(Event{Time: cfg.Duration, Kind: KindTermination})

	return e, nil
}

func validate(cfg Config, particles []*particle.Particle) error {
	if !(cfg.Width > 0) || math.IsInf(cfg.Width, 0) {
		return fmt.Errorf("%w, got %g", ErrInvalidWidth, cfg.Width)
	}
	if !(cfg.Duration >= 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("%w, got %g", ErrInvalidDuration, cfg.Duration)
	}
	if len(particles) == 0 {
		return ErrNoParticles
	}
	for i, p := range particles {
		if p == nil {
			return &ParticleError{Index: i, Err: particle.ErrInvalidParticle}
		}
		if err := p.Validate(); err != nil {
			return &ParticleError{Index: i, Err: err}
		}
	}
	return nil
}

func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Engine) Config() Config { return e.cfg }
func (e *Engine) Clock() float64 { return e.clock }
func (e *Engine) Phase() Phase   { return e.phase }
func (e *Engine) Stats() Stats   { return e.stats }
func (e *Engine) Pending() int   { return e.queue.Len() }
func (e *Engine) NumParticles() int {
	return len(e.particles)
}

// Run steps until the termination event fires. The context is only checked
// between events, so a cancelled run stops on a fully applied state but never
// reaches Terminated.
func (e *Engine) Run(ctx context.Context) error {
	for e.phase != Terminated {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, _, err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step pops events until one is applied or the run terminates. It returns the
// applied frame and true, or false once the engine has terminated.
func (e *Engine) Step() (Frame, bool, error) {
	if e.phase == Terminated {
		return Frame{}, false, nil
	}
	e.phase = Running

	for {
		ev, err := e.queue.Pop()
		if err != nil {
			return Frame{}, false, fmt.Errorf("%w at t=%g: %v", ErrQueueUnderflow, e.clock, err)
		}

		if ev.Kind == KindTermination {
			e.advanceAll(ev.Time - e.clock)
			e.clock = ev.Time
			e.phase = Terminated
			return Frame{}, false, nil
		}

		if !e.isValid(ev) {
			e.stats.Stale++
			continue
		}

		delta := ev.Time - e.clock
		e.advanceAll(delta)
		e.clock = ev.Time

		switch ev.Kind {
		case KindPair:
			e.particles[ev.A].ApplyCollisionResponse(e.clock, e.particles[ev.B])
			e.stats.PairCollisions++
		case KindWall:
			e.particles[ev.A].ApplyWallResponse(e.clock, ev.Wall)
			e.stats.WallCollisions++
		}
		e.stats.Applied++

		e.predict(ev.Participants())

		f := Frame{Time: e.clock, Delta: delta, Event: ev, Particles: e.Particles()}
		for _, o := range e.observers {
			o.OnEvent(f)
		}
		return f, true, nil
	}
}

func (e *Engine) isValid(ev Event) bool {
	for _, i := range ev.Participants() {
		if !e.particles[i].IsValidFor(ev.stamp()) {
			return false
		}
	}
	return true
}

func (e *Engine) advanceAll(delta float64) {
	for _, p := range e.particles {
		p.Advance(delta)
	}
}

// predict queues fresh wall and pair predictions for the involved particles.
// A pair between two involved particles is predicted once.
//
// Contacts found while seeding are ignored, so input that starts touching a
// wall or another particle is not bounced at t=0. After an event a contact
// that is closing is resolved at the current clock; otherwise a particle
// pushed into a wall or a neighbour would pass through it.
func (e *Engine) predict(involved []int) {
	seeding := e.phase == Seeded

	for _, i := range involved {
		p := e.particles[i]

		for _, w := range particle.Walls {
			t := p.WallCollisionTime(w, e.cfg.Width)
			if seeding && t <= particle.Epsilon {
				continue
			}
			e.schedule(Event{
				Time:    e.clock + t,
				Created: e.clock,
				Kind:    KindWall,
				A:       i,
				Wall:    w,
			})
		}

		e.mark[i] = true
		for j, other := range e.particles {
			if e.mark[j] {
				continue
			}
			t := p.CollisionTimeWith(other)
			if !seeding && p.Closing(other) {
				t = 0
			}
			e.schedule(Event{
				Time:    e.clock + t,
				Created: e.clock,
				Kind:    KindPair,
				A:       i,
				B:       j,
			})
		}
	}

	for _, i := range involved {
		e.mark[i] = false
	}
}

// schedule drops predictions that can never be reached: no collision at all,
// or one after the termination event.
func (e *Engine) schedule(ev Event) {
	if math.IsInf(ev.Time, 1) || ev.Time > e.cfg.Duration {
		return
	}
	ev.seq = e.seq
	e.seq++
	e.queue.Push(ev)

	e.stats.Scheduled++
	if n := e.queue.Len(); n > e.stats.PeakQueue {
		e.stats.PeakQueue = n
	}
}

// Particles returns a snapshot of the current particle states.
func (e *Engine) Particles() []particle.State {
	out := make([]particle.State, len(e.particles))
	for i, p := range e.particles {
		out[i] = p.State()
	}
	return out
}

// FinalState is the end-of-run snapshot. It is only available once the
// termination event has fired.
func (e *Engine) FinalState() ([]particle.State, error) {
	if e.phase != Terminated {
		return nil, ErrNotTerminated
	}
	return e.Particles(), nil
}

// DiscardStale pops stale events sitting at the head of the queue and returns
// how many were dropped. Afterwards NextEventTime is the time of the next event
// Step would apply (or of termination).
func (e *Engine) DiscardStale() int {
	dropped := 0
	for {
		ev, ok := e.queue.Peek()
		if !ok || ev.Kind == KindTermination || e.isValid(ev) {
			return dropped
		}
		_, _ = e.queue.Pop()
		e.stats.Stale++
		dropped++
	}
}

// NextEventTime is the time of the earliest queued event, stale or not.
func (e *Engine) NextEventTime() float64 {
	ev, ok := e.queue.Peek()
	if !ok {
		return math.Inf(1)
	}
	return ev.Time
}

// Extrapolate returns the particle states at time t without touching the
// engine. t is clamped to [Clock, NextEventTime]; no valid event can occur in
// that window, so straight-line motion is exact there.
func (e *Engine) Extrapolate(t float64) []particle.State {
	t = math.Max(t, e.clock)
	t = math.Min(t, e.NextEventTime())
	dt := t - e.clock

	out := e.Particles()
	for i := range out {
		out[i].X += dt * out[i].VX
		out[i].Y += dt * out[i].VY
	}
	return out
}

func (e *Engine) KineticEnergy() float64 {
	total := 0.0
	for _, p := range e.particles {
		total += p.KineticEnergy()
	}
	return total
}
