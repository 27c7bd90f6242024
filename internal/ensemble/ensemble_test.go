package ensemble

import (
	"context"
	"testing"

	"github.com/kibbyd/spin-annealer/internal/anneal"
	"github.com/kibbyd/spin-annealer/internal/config"
)

func ringConfig() config.RunConfig {
	cfg := config.Default()
	cfg.Lattice.Size = 12
	cfg.Schedule.Steps = 300
	cfg.MaxIterations = 3000
	return cfg
}

func TestRunEnsembleRing(t *testing.T) {
	seeds := []int64{1, 7, 42, 1337}
	results, sum, err := Run(context.Background(), ringConfig(), seeds, 2)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != len(seeds) {
		t.Fatalf("expected %d results, got %d", len(seeds), len(results))
	}
	for i, r := range results {
		if r.Seed != seeds[i] {
			t.Fatalf("result %d carries seed %d, want %d", i, r.Seed, seeds[i])
		}
		if r.Result.Outcome != anneal.OutcomeConverged {
			t.Fatalf("seed %d did not converge: %s", r.Seed, r.Result.Outcome)
		}
	}
	if sum.Converged != len(seeds) {
		t.Fatalf("summary converged=%d, want %d", sum.Converged, len(seeds))
	}
	// Every converged ring run sits in the all-aligned ground state, so the
	// ensemble spread collapses to zero.
	if sum.EnergySpread != 0 {
		t.Fatalf("energy spread %f, want 0", sum.EnergySpread)
	}
	if sum.MinEnergy != -12 {
		t.Fatalf("min energy %f, want -12", sum.MinEnergy)
	}
	if sum.Labels["maximal coherence"] != len(seeds) {
		t.Fatalf("label counts: %v", sum.Labels)
	}
	// Seeds differ but the landscape is the same, so first-fixed-point
	// iterations cluster. Bound is loose; this is a statistical property.
	if spread := sum.MaxIterations - sum.MinIterations; spread > 200 {
		t.Fatalf("iteration spread %d too wide", spread)
	}
}

func TestRunEnsembleDeterministicPerSeed(t *testing.T) {
	seeds := []int64{3, 9}
	first, _, err := Run(context.Background(), ringConfig(), seeds, 0)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, _, err := Run(context.Background(), ringConfig(), seeds, 1)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := range seeds {
		if first[i].Result.Iterations != second[i].Result.Iterations {
			t.Fatalf("seed %d: iterations %d vs %d", seeds[i],
				first[i].Result.Iterations, second[i].Result.Iterations)
		}
		if first[i].Result.FinalEnergy != second[i].Result.FinalEnergy {
			t.Fatalf("seed %d: energy %f vs %f", seeds[i],
				first[i].Result.FinalEnergy, second[i].Result.FinalEnergy)
		}
	}
}

func TestRunEnsembleNoSeeds(t *testing.T) {
	if _, _, err := Run(context.Background(), ringConfig(), nil, 0); err == nil {
		t.Fatal("expected error for empty seed list")
	}
}

func TestRunEnsembleInvalidConfig(t *testing.T) {
	cfg := ringConfig()
	cfg.Lattice.Size = 0
	if _, _, err := Run(context.Background(), cfg, []int64{1}, 0); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSummarize(t *testing.T) {
	results := []SeedResult{
		{Seed: 1, Result: anneal.Result{Outcome: anneal.OutcomeConverged, Iterations: 40, FinalEnergy: -12, FinalLabel: "maximal coherence"}},
		{Seed: 2, Result: anneal.Result{Outcome: anneal.OutcomeMaxIterations, Iterations: 3000, FinalEnergy: -8, FinalLabel: "frustrated"}},
	}
	sum := Summarize(results)
	if sum.Runs != 2 || sum.Converged != 1 {
		t.Fatalf("runs/converged mismatch: %+v", sum)
	}
	if sum.MinEnergy != -12 || sum.MaxEnergy != -8 || sum.EnergySpread != 4 {
		t.Fatalf("energy stats mismatch: %+v", sum)
	}
	if sum.MeanEnergy != -10 {
		t.Fatalf("mean energy %f, want -10", sum.MeanEnergy)
	}
	if sum.MinIterations != 40 || sum.MaxIterations != 3000 {
		t.Fatalf("iteration stats mismatch: %+v", sum)
	}
	if sum.Labels["frustrated"] != 1 {
		t.Fatalf("label counts: %v", sum.Labels)
	}
}
