package replay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kibbyd/spin-annealer/internal/config"
	"github.com/kibbyd/spin-annealer/internal/perturb"
)

func TestLoadFixture(t *testing.T) {
	f := ringFixture()
	f.Perturbations = []FixturePerturbation{{Kind: "novel_coupling", Edge: [2]int{0, 6}, Weight: -1}}
	f.Expected = FixtureExpected{Outcome: "converged", Iterations: 40, FinalEnergy: -12, FinalLabel: "maximal coherence"}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Config.Seed != 42 || got.Config.Size != 12 {
		t.Fatalf("config mismatch: %+v", got.Config)
	}
	if len(got.Perturbations) != 1 || got.Perturbations[0].Kind != "novel_coupling" {
		t.Fatalf("perturbations mismatch: %+v", got.Perturbations)
	}
	if got.Expected.Iterations != 40 {
		t.Fatalf("expected mismatch: %+v", got.Expected)
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not json"), 0644)
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestFixtureConfigRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Tolerance = 0.5
	fc := FromRunConfig(cfg)
	back := fc.ToRunConfig()

	if back.Seed != cfg.Seed {
		t.Fatalf("seed mismatch: %d vs %d", back.Seed, cfg.Seed)
	}
	if back.Lattice.Size != cfg.Lattice.Size || back.Lattice.Topology != cfg.Lattice.Topology {
		t.Fatalf("lattice mismatch: %+v vs %+v", back.Lattice, cfg.Lattice)
	}
	if back.Schedule != cfg.Schedule || back.Tolerance != cfg.Tolerance {
		t.Fatalf("schedule mismatch: %+v vs %+v", back.Schedule, cfg.Schedule)
	}
}

func TestPerturbationConversion(t *testing.T) {
	fp := FixturePerturbation{Kind: "thermal_noise", Intensity: 0.2}
	req := fp.ToRequest()
	if req.Kind != perturb.KindThermalNoise || req.Intensity != 0.2 {
		t.Fatalf("conversion mismatch: %+v", req)
	}
}
