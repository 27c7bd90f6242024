package classify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFullAlignmentIsMaximalCoherence(t *testing.T) {
	table := DefaultTable()
	for _, m := range []float64{1.0, -1.0} {
		feat := Features{Energy: -20, EnergyPerSpin: -1, Magnetization: m}
		if got := table.Classify(feat); got != LabelMaximalCoherence {
			t.Fatalf("magnetization %f: expected %q, got %q", m, LabelMaximalCoherence, got)
		}
	}
}

func TestFirstMatchOrdering(t *testing.T) {
	table := DefaultTable()
	cases := []struct {
		feat Features
		want string
	}{
		{Features{Magnetization: 0.8, EnergyPerSpin: -0.9}, "strong alignment"},
		{Features{Magnetization: -0.6, EnergyPerSpin: -0.2}, "partial alignment"},
		{Features{Magnetization: 0.1, EnergyPerSpin: -0.7}, "settling"},
		{Features{Magnetization: 0.0, EnergyPerSpin: -0.1}, "frustrated"},
		{Features{Magnetization: 0.2, EnergyPerSpin: 0.5}, "disordered"},
	}
	for _, c := range cases {
		if got := table.Classify(c.feat); got != c.want {
			t.Fatalf("features %+v: expected %q, got %q", c.feat, c.want, got)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	table := DefaultTable()
	feat := Features{Energy: -7.5, EnergyPerSpin: -0.375, Magnetization: 0.55}
	first := table.Classify(feat)
	for i := 0; i < 50; i++ {
		if table.Classify(feat) != first {
			t.Fatal("classification varied across identical features")
		}
	}
}

func TestValidate(t *testing.T) {
	bad := []Table{
		{},
		{Rules: []Rule{{Label: "x", MinAbsMagnetization: f(0.5)}}},                      // no fallback
		{Rules: []Rule{{MinAbsMagnetization: f(0.5)}}, Fallback: "y"},                  // no label
		{Rules: []Rule{{Label: "x"}}, Fallback: "y"},                                   // no thresholds
		{Rules: []Rule{{Label: "x", MinAbsMagnetization: f(1.5)}}, Fallback: "y"},      // out of range
		{Rules: []Rule{{Label: "x", MinAbsMagnetization: f(-0.1)}}, Fallback: "y"},     // out of range
	}
	for i, table := range bad {
		if err := table.Validate(); !errors.Is(err, ErrInvalidTable) {
			t.Fatalf("table %d: expected ErrInvalidTable, got %v", i, err)
		}
	}
	if err := DefaultTable().Validate(); err != nil {
		t.Fatalf("default table should validate: %v", err)
	}
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.yaml")
	doc := `rules:
  - min_abs_magnetization: 0.9
    label: locked
  - max_energy_per_spin: 0.0
    label: cooling
fallback: hot
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := table.Classify(Features{Magnetization: 0.95}); got != "locked" {
		t.Fatalf("expected %q, got %q", "locked", got)
	}
	if got := table.Classify(Features{Magnetization: 0.1, EnergyPerSpin: 0.4}); got != "hot" {
		t.Fatalf("expected fallback %q, got %q", "hot", got)
	}
}

func TestLoadTableErrors(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	os.WriteFile(path, []byte("rules: {not a list}"), 0644)
	if _, err := LoadTable(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
