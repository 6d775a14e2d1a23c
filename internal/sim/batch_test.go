package sim

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlesim/internal/particle"
)

var _ = Describe("RunBatch", func() {
	It("matches sequential runs and keeps job order", func() {
		jobs := []Job{
			{Name: "small", Config: Config{Width: 100, Duration: 30}, Particles: lattice(2, 100)},
			{Name: "medium", Config: Config{Width: 150, Duration: 30}, Particles: lattice(3, 150)},
			{Name: "large", Config: Config{Width: 200, Duration: 30}, Particles: lattice(4, 200)},
		}

		out, err := RunBatch(context.Background(), jobs, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(3))

		for i, job := range jobs {
			Expect(out[i].Name).To(Equal(job.Name))
			Expect(out[i].Clock).To(Equal(30.0))

			e, err := New(job.Config, job.Particles)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Run(context.Background())).To(Succeed())
			final, _ := e.FinalState()
			Expect(out[i].Final).To(Equal(final))
		}
	})

	It("fails when any job is invalid", func() {
		jobs := []Job{
			{Name: "ok", Config: Config{Width: 100, Duration: 5}, Particles: lattice(2, 100)},
			{Name: "bad", Config: Config{Width: 100, Duration: 5}, Particles: []*particle.Particle{}},
		}
		_, err := RunBatch(context.Background(), jobs, 4)
		Expect(err).To(MatchError(ErrNoParticles))
	})
})
