package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/boilersim/internal/dynamo"
)

// RunAll runs independent simulators in parallel, at most workers at a time (no limit when
// workers <= 0). Results are in input order. The first error cancels the remaining runs.
func RunAll(ctx context.Context, sims []*Simulator, workers int) ([]*dynamo.Trajectory, error) {
	results := make([]*dynamo.Trajectory, len(sims))
	err := runEach(ctx, sims, workers, func(i int, traj *dynamo.Trajectory) {
		results[i] = traj
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// RunMetrics is RunAll keeping only the metrics of each run. A trajectory is released as
// soon as its run finishes, so memory grows with workers rather than with len(sims).
func RunMetrics(ctx context.Context, sims []*Simulator, workers int) ([]map[string]float64, error) {
	results := make([]map[string]float64, len(sims))
	err := runEach(ctx, sims, workers, func(i int, traj *dynamo.Trajectory) {
		results[i] = traj.Metrics
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// runEach hands every finished trajectory to keep. keep is called concurrently, once per index.
func runEach(ctx context.Context, sims []*Simulator, workers int, keep func(int, *dynamo.Trajectory)) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, s := range sims {
		g.Go(func() error {
			traj, err := s.Run(ctx)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			keep(i, traj)
			return nil
		})
	}

	return g.Wait()
}
