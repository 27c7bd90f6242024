package replay

import (
	"context"
	"fmt"
	"math"

	"github.com/kibbyd/spin-annealer/internal/anneal"
	"github.com/kibbyd/spin-annealer/internal/config"
)

// #region types

// Check compares one expected value against the replayed one.
type Check struct {
	Name     string
	Expected string
	Got      string
	OK       bool
}

// ReplayResult captures the outcome of re-running a fixture.
type ReplayResult struct {
	Description string
	Result      anneal.Result
	Checks      []Check
	Passed      bool
}

// #endregion types

// #region replay

// Replay rebuilds the run from the fixture's seed and configuration,
// re-runs it entirely in-memory (applying the scripted perturbations at
// each convergence), and compares the terminal record against the pinned
// expectations. Determinism makes the comparison exact except for the
// optional energy tolerance.
func Replay(f *Fixture) (ReplayResult, error) {
	cfg := f.Config.ToRunConfig()
	if err := cfg.Validate(); err != nil {
		return ReplayResult{}, err
	}
	runner, err := config.BuildRunner(cfg)
	if err != nil {
		return ReplayResult{}, err
	}

	ctx := context.Background()
	res, err := runner.Run(ctx)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay run: %w", err)
	}
	for _, fp := range f.Perturbations {
		if res.Outcome != anneal.OutcomeConverged {
			break
		}
		if _, err := runner.Perturb(fp.ToRequest()); err != nil {
			return ReplayResult{}, fmt.Errorf("replay perturbation %s: %w", fp.Kind, err)
		}
		if res, err = runner.Run(ctx); err != nil {
			return ReplayResult{}, fmt.Errorf("replay resume: %w", err)
		}
	}

	out := ReplayResult{
		Description: f.Description,
		Result:      res,
		Passed:      true,
	}
	out.add("outcome", f.Expected.Outcome, string(res.Outcome),
		f.Expected.Outcome == string(res.Outcome))
	out.add("iterations", fmt.Sprintf("%d", f.Expected.Iterations), fmt.Sprintf("%d", res.Iterations),
		f.Expected.Iterations == res.Iterations)

	tol := f.Expected.EnergyTolerance
	if tol == 0 {
		tol = 1e-9
	}
	out.add("final_energy", fmt.Sprintf("%.6f", f.Expected.FinalEnergy), fmt.Sprintf("%.6f", res.FinalEnergy),
		math.Abs(f.Expected.FinalEnergy-res.FinalEnergy) <= tol)
	out.add("final_label", f.Expected.FinalLabel, res.FinalLabel,
		f.Expected.FinalLabel == res.FinalLabel)

	if f.Expected.FinalStateHash != "" {
		hash := runner.Snapshot().StateHash
		out.add("final_state_hash", f.Expected.FinalStateHash, hash,
			f.Expected.FinalStateHash == hash)
	}
	return out, nil
}

func (r *ReplayResult) add(name, expected, got string, ok bool) {
	r.Checks = append(r.Checks, Check{Name: name, Expected: expected, Got: got, OK: ok})
	if !ok {
		r.Passed = false
	}
}

// #endregion replay

// #region record

// Record runs the fixture's configuration once and pins the observed
// terminal record as the expectation, so the fixture re-passes under
// Replay on any machine. Used by fixture export.
func Record(f *Fixture) error {
	cfg := f.Config.ToRunConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	runner, err := config.BuildRunner(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	res, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	for _, fp := range f.Perturbations {
		if res.Outcome != anneal.OutcomeConverged {
			break
		}
		if _, err := runner.Perturb(fp.ToRequest()); err != nil {
			return fmt.Errorf("record perturbation %s: %w", fp.Kind, err)
		}
		if res, err = runner.Run(ctx); err != nil {
			return fmt.Errorf("record resume: %w", err)
		}
	}

	f.Expected = FixtureExpected{
		Outcome:        string(res.Outcome),
		Iterations:     res.Iterations,
		FinalEnergy:    res.FinalEnergy,
		FinalLabel:     res.FinalLabel,
		FinalStateHash: runner.Snapshot().StateHash,
	}
	return nil
}

// #endregion record
