package sim

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlesim/internal/particle"
)

func mustParticle(name string, x, y, vx, vy, r float64) *particle.Particle {
	p, err := particle.New(name, x, y, vx, vy, r)
	Expect(err).NotTo(HaveOccurred())
	return p
}

// lattice places n*n particles on a grid with deterministic, varied velocities.
func lattice(n int, width float64) []*particle.Particle {
	out := make([]*particle.Particle, 0, n*n)
	step := width / float64(n+1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k := float64(i*n + j)
			vx := 3 * math.Cos(k*1.7)
			vy := 3 * math.Sin(k*2.3)
			out = append(out, mustParticle("", step*float64(i+1), step*float64(j+1), vx, vy, step/5))
		}
	}
	return out
}

type recorder struct {
	frames []Frame
}

func (r *recorder) OnEvent(f Frame) { r.frames = append(r.frames, f) }

func (r *recorder) times() []float64 {
	out := make([]float64, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.Time
	}
	return out
}

var _ = Describe("Engine", func() {
	ctx := context.Background()

	Describe("construction", func() {
		DescribeTable("rejects bad input before scheduling anything",
			func(cfg Config, ps []*particle.Particle, target error) {
				e, err := New(cfg, ps)
				Expect(e).To(BeNil())
				Expect(err).To(MatchError(target))
			},
			Entry("no particles", Config{Width: 100, Duration: 10}, []*particle.Particle{}, ErrNoParticles),
			Entry("zero width", Config{Width: 0, Duration: 10},
				[]*particle.Particle{mustParticle("a", 5, 5, 0, 0, 1)}, ErrInvalidWidth),
			Entry("NaN width", Config{Width: math.NaN(), Duration: 10},
				[]*particle.Particle{mustParticle("a", 5, 5, 0, 0, 1)}, ErrInvalidWidth),
			Entry("negative duration", Config{Width: 100, Duration: -1},
				[]*particle.Particle{mustParticle("a", 5, 5, 0, 0, 1)}, ErrInvalidDuration),
			Entry("infinite duration", Config{Width: 100, Duration: math.Inf(1)},
				[]*particle.Particle{mustParticle("a", 5, 5, 0, 0, 1)}, ErrInvalidDuration),
			Entry("nil particle", Config{Width: 100, Duration: 10},
				[]*particle.Particle{nil}, particle.ErrInvalidParticle),
		)

		It("reports the index of an invalid particle", func() {
			bad := mustParticle("b", 5, 5, 0, 0, 1)
			bad.Radius = -1
			_, err := New(Config{Width: 100, Duration: 1}, []*particle.Particle{mustParticle("a", 5, 5, 0, 0, 1), bad})

			var perr *ParticleError
			Expect(err).To(BeAssignableToTypeOf(perr))
			Expect(err.(*ParticleError).Index).To(Equal(1))
			Expect(err).To(MatchError(particle.ErrInvalidParticle))
		})

		It("starts seeded and copies its input", func() {
			a := mustParticle("A", 10, 50, 5, 0, 5)
			e, err := New(Config{Width: 100, Duration: 1}, []*particle.Particle{a})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Phase()).To(Equal(Seeded))

			a.X = 99
			Expect(e.Particles()[0].X).To(Equal(10.0))
		})

		It("never queues diverging pairs", func() {
			ps := []*particle.Particle{
				mustParticle("L", 40, 50, -1, 0, 5),
				mustParticle("R", 60, 50, 1, 0, 5),
			}
			e, err := New(Config{Width: 100, Duration: 10}, ps)
			Expect(err).NotTo(HaveOccurred())
			// walls are 35 time units away, past the duration, so only
			// termination is pending
			Expect(e.Pending()).To(Equal(1))
		})
	})

	Describe("head-on collision", func() {
		var (
			e   *Engine
			rec *recorder
		)

		BeforeEach(func() {
			var err error
			e, err = New(Config{Width: 100, Duration: 100}, []*particle.Particle{
				mustParticle("A", 10, 50, 5, 0, 5),
				mustParticle("B", 90, 50, -5, 0, 5),
			})
			Expect(err).NotTo(HaveOccurred())
			rec = &recorder{}
			e.AddObserver(rec)
		})

		It("applies the first collision at t=7 and reverses both velocities", func() {
			f, ok, err := e.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(e.Phase()).To(Equal(Running))

			Expect(f.Time).To(BeNumerically("~", 7, 1e-12))
			Expect(f.Event.Kind).To(Equal(KindPair))
			Expect(e.Clock()).To(Equal(f.Time))

			a, b := f.Particles[0], f.Particles[1]
			Expect(a.X).To(BeNumerically("~", 45, 1e-9))
			Expect(b.X).To(BeNumerically("~", 55, 1e-9))
			Expect(a.VX).To(BeNumerically("~", -5, 1e-9))
			Expect(a.VY).To(BeNumerically("~", 0, 1e-9))
			Expect(b.VX).To(BeNumerically("~", 5, 1e-9))
			Expect(b.VY).To(BeNumerically("~", 0, 1e-9))
		})

		It("runs to exactly the configured duration", func() {
			Expect(e.Run(ctx)).To(Succeed())
			Expect(e.Phase()).To(Equal(Terminated))
			Expect(e.Clock()).To(Equal(100.0))

			final, err := e.FinalState()
			Expect(err).NotTo(HaveOccurred())
			Expect(final).To(HaveLen(2))
			Expect(rec.frames).To(HaveLen(e.Stats().Applied))
		})
	})

	Describe("wall bounce", func() {
		It("reflects at t=1 without moving the particle at the instant of impact", func() {
			e, err := New(Config{Width: 100, Duration: 1.5}, []*particle.Particle{
				mustParticle("P", 90, 50, 5, 0, 5),
			})
			Expect(err).NotTo(HaveOccurred())

			f, ok, err := e.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(f.Event.Kind).To(Equal(KindWall))
			Expect(f.Event.Wall).To(Equal(particle.Right))
			Expect(f.Time).To(BeNumerically("~", 1, 1e-12))
			Expect(f.Particles[0].X).To(BeNumerically("~", 95, 1e-12))
			Expect(f.Particles[0].VX).To(Equal(-5.0))

			Expect(e.Run(ctx)).To(Succeed())
			final, err := e.FinalState()
			Expect(err).NotTo(HaveOccurred())
			Expect(final[0].X).To(BeNumerically("~", 92.5, 1e-12))
		})
	})

	Describe("lazy invalidation", func() {
		// A hits B at 4, B hits C at 8, C bounces off the right wall at 13 and
		// comes back to hit B at 18. A-C at 10 and the early wall predictions
		// for A and B go stale along the way.
		var e *Engine
		var rec *recorder

		BeforeEach(func() {
			var err error
			e, err = New(Config{Width: 100, Duration: 20}, []*particle.Particle{
				mustParticle("A", 10, 50, 5, 0, 5),
				mustParticle("B", 40, 50, 0, 0, 5),
				mustParticle("C", 70, 50, 0, 0, 5),
			})
			Expect(err).NotTo(HaveOccurred())
			rec = &recorder{}
			e.AddObserver(rec)
			Expect(e.Run(ctx)).To(Succeed())
		})

		It("applies only the events that are still valid", func() {
			Expect(rec.times()).To(HaveLen(4))
			for i, want := range []float64{4, 8, 13, 18} {
				Expect(rec.times()[i]).To(BeNumerically("~", want, 1e-9))
			}
			Expect(rec.frames[2].Event.Kind).To(Equal(KindWall))
		})

		It("never applies a prediction older than a participant's last update", func() {
			last := map[int]float64{}
			for _, f := range rec.frames {
				for _, i := range f.Event.Participants() {
					Expect(f.Event.Created).To(BeNumerically(">=", last[i]))
					last[i] = f.Time
				}
			}
		})

		It("counts the discarded predictions", func() {
			s := e.Stats()
			Expect(s.Applied).To(Equal(4))
			Expect(s.PairCollisions).To(Equal(3))
			Expect(s.WallCollisions).To(Equal(1))
			Expect(s.Stale).To(Equal(3))
		})

		It("ends with the expected state", func() {
			final, err := e.FinalState()
			Expect(err).NotTo(HaveOccurred())
			Expect(final[0].X).To(BeNumerically("~", 30, 1e-9))
			Expect(final[1].X).To(BeNumerically("~", 50, 1e-9))
			Expect(final[1].VX).To(BeNumerically("~", -5, 1e-9))
			Expect(final[2].X).To(BeNumerically("~", 70, 1e-9))
			Expect(final[2].VX).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("contacts", func() {
		inBox := func(e *Engine) {
			final, err := e.FinalState()
			Expect(err).NotTo(HaveOccurred())
			w := e.Config().Width
			for _, s := range final {
				Expect(s.X).To(BeNumerically(">=", s.Radius-1e-9), s.Name)
				Expect(s.X).To(BeNumerically("<=", w-s.Radius+1e-9), s.Name)
				Expect(s.Y).To(BeNumerically(">=", s.Radius-1e-9), s.Name)
				Expect(s.Y).To(BeNumerically("<=", w-s.Radius+1e-9), s.Name)
			}
		}

		It("bounces off both walls of a corner hit at the same instant", func() {
			e, err := New(Config{Width: 100, Duration: 3}, []*particle.Particle{
				mustParticle("c", 10, 10, -5, -5, 5),
			})
			Expect(err).NotTo(HaveOccurred())
			rec := &recorder{}
			e.AddObserver(rec)
			Expect(e.Run(ctx)).To(Succeed())

			Expect(rec.times()).To(Equal([]float64{1, 1}))
			Expect(rec.frames[0].Event.Wall).To(Equal(particle.Left))
			Expect(rec.frames[1].Event.Wall).To(Equal(particle.Top))
			Expect(e.Stats().WallCollisions).To(Equal(2))
			Expect(e.Stats().Stale).To(Equal(1))

			inBox(e)
			final, _ := e.FinalState()
			Expect(final[0].X).To(BeNumerically("~", 15, 1e-12))
			Expect(final[0].Y).To(BeNumerically("~", 15, 1e-12))
			Expect(final[0].VX).To(Equal(5.0))
			Expect(final[0].VY).To(Equal(5.0))
		})

		It("reflects a resting particle knocked into the wall it touches", func() {
			e, err := New(Config{Width: 100, Duration: 6}, []*particle.Particle{
				mustParticle("rest", 5, 50, 0, 0, 5),
				mustParticle("striker", 30, 50, -5, 0, 5),
			})
			Expect(err).NotTo(HaveOccurred())
			rec := &recorder{}
			e.AddObserver(rec)
			Expect(e.Run(ctx)).To(Succeed())

			kinds := make([]Kind, len(rec.frames))
			for i, f := range rec.frames {
				kinds[i] = f.Event.Kind
				Expect(f.Time).To(BeNumerically("~", 3, 1e-12))
			}
			Expect(kinds).To(Equal([]Kind{KindPair, KindWall, KindPair}))

			inBox(e)
			final, _ := e.FinalState()
			Expect(final[0].X).To(BeNumerically("~", 5, 1e-12))
			Expect(final[0].VX).To(BeNumerically("~", 0, 1e-12))
			Expect(final[1].X).To(BeNumerically("~", 30, 1e-12))
			Expect(final[1].VX).To(BeNumerically("~", 5, 1e-12))
		})

		It("leaves contacts present at seeding alone", func() {
			e, err := New(Config{Width: 100, Duration: 1}, []*particle.Particle{
				mustParticle("P", 95, 50, 5, 0, 5),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Pending()).To(Equal(1))

			Expect(e.Run(ctx)).To(Succeed())
			Expect(e.Stats().Applied).To(Equal(0))
		})

		It("keeps a packed row inside the box", func() {
			ps := []*particle.Particle{mustParticle("m", 50, 50, -7, 3, 5)}
			for i := 0; i < 4; i++ {
				ps = append(ps, mustParticle("", 5+10*float64(i), 50, 0, 0, 5))
			}
			e, err := New(Config{Width: 100, Duration: 40}, ps)
			Expect(err).NotTo(HaveOccurred())
			before := e.KineticEnergy()
			Expect(e.Run(ctx)).To(Succeed())

			inBox(e)
			Expect(e.KineticEnergy()).To(BeNumerically("~", before, before*1e-9))
		})
	})

	Describe("termination", func() {
		It("terminates immediately for a zero duration", func() {
			e, err := New(Config{Width: 10, Duration: 0}, []*particle.Particle{mustParticle("a", 5, 5, 1, 1, 1)})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Run(ctx)).To(Succeed())
			Expect(e.Clock()).To(Equal(0.0))
			Expect(e.Stats().Applied).To(Equal(0))
		})

		It("keeps returning false after termination", func() {
			e, err := New(Config{Width: 10, Duration: 2}, []*particle.Particle{mustParticle("a", 5, 5, 0, 0, 1)})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Run(ctx)).To(Succeed())

			_, ok, err := e.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(e.Clock()).To(Equal(2.0))
		})

		It("does not report a final state for a cancelled run", func() {
			e, err := New(Config{Width: 100, Duration: 50}, lattice(3, 100))
			Expect(err).NotTo(HaveOccurred())

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			Expect(e.Run(cctx)).To(MatchError(context.Canceled))

			_, err = e.FinalState()
			Expect(err).To(MatchError(ErrNotTerminated))
		})
	})

	Describe("a crowded box", func() {
		run := func() *Engine {
			e, err := New(Config{Width: 200, Duration: 80}, lattice(5, 200))
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Run(ctx)).To(Succeed())
			return e
		}

		It("conserves kinetic energy", func() {
			e, err := New(Config{Width: 200, Duration: 80}, lattice(5, 200))
			Expect(err).NotTo(HaveOccurred())
			before := e.KineticEnergy()

			e.AddObserver(ObserverFunc(func(f Frame) {
				Expect(particle.TotalKineticEnergy(f.Particles)).To(BeNumerically("~", before, before*1e-9))
			}))
			Expect(e.Run(ctx)).To(Succeed())
			Expect(e.Stats().Applied).To(BeNumerically(">", 0))
			Expect(e.KineticEnergy()).To(BeNumerically("~", before, before*1e-9))
		})

		It("keeps every particle inside the box", func() {
			e := run()
			final, _ := e.FinalState()
			for _, s := range final {
				Expect(s.X).To(BeNumerically(">=", s.Radius-1e-6))
				Expect(s.X).To(BeNumerically("<=", 200-s.Radius+1e-6))
				Expect(s.Y).To(BeNumerically(">=", s.Radius-1e-6))
				Expect(s.Y).To(BeNumerically("<=", 200-s.Radius+1e-6))
			}
		})

		It("is deterministic", func() {
			a, b := run(), run()
			fa, _ := a.FinalState()
			fb, _ := b.FinalState()
			Expect(fa).To(Equal(fb))
			Expect(a.Stats()).To(Equal(b.Stats()))
		})

		It("observes non-decreasing event times", func() {
			e, err := New(Config{Width: 200, Duration: 80}, lattice(5, 200))
			Expect(err).NotTo(HaveOccurred())
			prev := 0.0
			e.AddObserver(ObserverFunc(func(f Frame) {
				Expect(f.Time).To(BeNumerically(">=", prev))
				Expect(f.Event.Time).To(BeNumerically(">=", f.Event.Created))
				prev = f.Time
			}))
			Expect(e.Run(ctx)).To(Succeed())
		})
	})

	Describe("playback helpers", func() {
		It("extrapolates positions without changing state", func() {
			e, err := New(Config{Width: 100, Duration: 100}, []*particle.Particle{
				mustParticle("A", 10, 50, 5, 0, 5),
				mustParticle("B", 90, 50, -5, 0, 5),
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(e.DiscardStale()).To(Equal(0))
			Expect(e.NextEventTime()).To(BeNumerically("~", 7, 1e-12))

			view := e.Extrapolate(2)
			Expect(view[0].X).To(Equal(20.0))
			Expect(e.Particles()[0].X).To(Equal(10.0))

			// beyond the next event the view is held at the event time
			view = e.Extrapolate(50)
			Expect(view[0].X).To(BeNumerically("~", 45, 1e-9))
			Expect(e.Clock()).To(Equal(0.0))
		})
	})
})
