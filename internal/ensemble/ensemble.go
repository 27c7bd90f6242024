package ensemble

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/kibbyd/spin-annealer/internal/anneal"
	"github.com/kibbyd/spin-annealer/internal/config"
)

// #endregion

// #region types

// SeedResult is the terminal record of one seed's run.
type SeedResult struct {
	Seed   int64
	Result anneal.Result
}

// Summary aggregates an ensemble into a consistency report. EnergySpread
// is the max-min gap across final energies; a large spread on a
// supposedly easy landscape means the schedule is quenching too fast.
type Summary struct {
	Runs          int
	Converged     int
	MinEnergy     float64
	MaxEnergy     float64
	MeanEnergy    float64
	EnergySpread  float64
	MinIterations int
	MaxIterations int
	Labels        map[string]int
}

// #endregion

// #region run

// Run executes the same configuration under each seed concurrently, one
// runner and one RNG stream per seed with no shared state. workers caps
// concurrent runs; 0 means unbounded. The first run error cancels the rest.
func Run(ctx context.Context, base config.RunConfig, seeds []int64, workers int) ([]SeedResult, Summary, error) {
	if len(seeds) == 0 {
		return nil, Summary{}, errors.New("ensemble: no seeds")
	}
	if err := base.Validate(); err != nil {
		return nil, Summary{}, err
	}

	results := make([]SeedResult, len(seeds))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			cfg := base
			cfg.Seed = seed
			runner, err := config.BuildRunner(cfg)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			res, err := runner.Run(ctx)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = SeedResult{Seed: seed, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	sum := Summarize(results)
	log.Printf("[ENSEMBLE] %d seeds: converged=%d energy=[%.4f, %.4f] spread=%.4f",
		sum.Runs, sum.Converged, sum.MinEnergy, sum.MaxEnergy, sum.EnergySpread)
	return results, sum, nil
}

// #endregion

// #region summarize

// Summarize reduces per-seed results to a Summary.
func Summarize(results []SeedResult) Summary {
	sum := Summary{
		Runs:          len(results),
		MinEnergy:     math.Inf(1),
		MaxEnergy:     math.Inf(-1),
		MinIterations: math.MaxInt,
		Labels:        make(map[string]int),
	}
	if len(results) == 0 {
		return Summary{Labels: map[string]int{}}
	}

	total := 0.0
	for _, r := range results {
		if r.Result.Outcome == anneal.OutcomeConverged {
			sum.Converged++
		}
		e := r.Result.FinalEnergy
		total += e
		sum.MinEnergy = math.Min(sum.MinEnergy, e)
		sum.MaxEnergy = math.Max(sum.MaxEnergy, e)
		if r.Result.Iterations < sum.MinIterations {
			sum.MinIterations = r.Result.Iterations
		}
		if r.Result.Iterations > sum.MaxIterations {
			sum.MaxIterations = r.Result.Iterations
		}
		sum.Labels[r.Result.FinalLabel]++
	}
	sum.MeanEnergy = total / float64(len(results))
	sum.EnergySpread = sum.MaxEnergy - sum.MinEnergy
	return sum
}

// #endregion
