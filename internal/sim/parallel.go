package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run in a batch. Setup builds a fresh simulator.
type Job struct {
	Name   string
	Config Config
	Setup  func() (*Simulator, error)
}

// RunBatch runs jobs concurrently, each on its own cloth. Results keep the
// order of jobs. The first failing job cancels the rest.
func RunBatch(ctx context.Context, jobs []Job, workers int) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			s, err := job.Setup()
			if err != nil {
				return err
			}
			res, err := s.Run(ctx, job.Config)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
