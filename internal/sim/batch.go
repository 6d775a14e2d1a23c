package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/particlesim/internal/particle"
)

// Job is one independent scenario for RunBatch.
type Job struct {
	Name      string
	Config    Config
	Particles []*particle.Particle
}

type Outcome struct {
	Name  string
	Clock float64
	Final []particle.State
	Stats Stats
}

// RunBatch runs independent jobs on up to workers goroutines. Each engine is
// still single-threaded and owned by exactly one goroutine. Outcomes keep the
// order of jobs; the first error cancels the remaining runs.
func RunBatch(ctx context.Context, jobs []Job, workers int) ([]Outcome, error) {
	if workers < 1 {
		workers = 1
	}
	outcomes := make([]Outcome, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			e, err := New(job.Config, job.Particles)
			if err != nil {
				return err
			}
			if err := e.Run(ctx); err != nil {
				return err
			}
			final, err := e.FinalState()
			if err != nil {
				return err
			}
			outcomes[i] = Outcome{Name: job.Name, Clock: e.Clock(), Final: final, Stats: e.Stats()}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
