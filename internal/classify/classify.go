package classify

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// #region errors
// ErrInvalidTable covers empty rule tables, missing labels, and thresholds
// outside their domain.
var ErrInvalidTable = errors.New("invalid label table")

// #endregion errors

// #region types

// Features are the measurable summary statistics a label is derived from.
// Deliberately excludes the iteration index so the vocabulary order never
// leaks into the dynamics.
type Features struct {
	Energy        float64
	EnergyPerSpin float64
	Magnetization float64
}

// Rule is one ordered threshold rule. A nil threshold is not checked.
// A rule matches when every set threshold holds.
type Rule struct {
	MinAbsMagnetization *float64 `yaml:"min_abs_magnetization,omitempty"`
	MaxEnergyPerSpin    *float64 `yaml:"max_energy_per_spin,omitempty"`
	Label               string   `yaml:"label"`
}

// Table is an ordered, first-match rule chain with a fallback label.
// Purely for reporting; never feeds back into the dynamics.
type Table struct {
	Rules    []Rule `yaml:"rules"`
	Fallback string `yaml:"fallback"`
}

// #endregion types

// #region default-table

// LabelMaximalCoherence is the label the default table assigns to a fully
// aligned lattice (|m| = 1).
const LabelMaximalCoherence = "maximal coherence"

// DefaultTable returns the built-in vocabulary. The thresholds carry no
// intrinsic meaning; callers may swap the whole table without touching the
// lattice, scheduler, or detector contracts.
func DefaultTable() Table {
	return Table{
		Rules: []Rule{
			{MinAbsMagnetization: f(0.999), Label: LabelMaximalCoherence},
			{MinAbsMagnetization: f(0.75), Label: "strong alignment"},
			{MinAbsMagnetization: f(0.5), Label: "partial alignment"},
			{MaxEnergyPerSpin: f(-0.5), Label: "settling"},
			{MaxEnergyPerSpin: f(0.0), Label: "frustrated"},
		},
		Fallback: "disordered",
	}
}

func f(v float64) *float64 {
	return &v
}

// #endregion default-table

// #region classify

// Classify maps features through the ordered rule chain to a label.
// Pure and deterministic: bit-identical features always yield the same
// label.
func (t Table) Classify(feat Features) string {
	m := math.Abs(feat.Magnetization)
	for _, r := range t.Rules {
		if r.MinAbsMagnetization != nil && m < *r.MinAbsMagnetization {
			continue
		}
		if r.MaxEnergyPerSpin != nil && feat.EnergyPerSpin > *r.MaxEnergyPerSpin {
			continue
		}
		return r.Label
	}
	return t.Fallback
}

// Validate checks the table is usable: at least one rule, every rule
// labeled with at least one threshold set, magnetization thresholds in
// [0, 1], and a nonempty fallback.
func (t Table) Validate() error {
	if len(t.Rules) == 0 {
		return fmt.Errorf("no rules: %w", ErrInvalidTable)
	}
	if t.Fallback == "" {
		return fmt.Errorf("empty fallback label: %w", ErrInvalidTable)
	}
	for i, r := range t.Rules {
		if r.Label == "" {
			return fmt.Errorf("rule %d has no label: %w", i, ErrInvalidTable)
		}
		if r.MinAbsMagnetization == nil && r.MaxEnergyPerSpin == nil {
			return fmt.Errorf("rule %d (%q) has no thresholds: %w", i, r.Label, ErrInvalidTable)
		}
		if r.MinAbsMagnetization != nil {
			v := *r.MinAbsMagnetization
			if v < 0 || v > 1 || math.IsNaN(v) {
				return fmt.Errorf("rule %d magnetization threshold %f: %w", i, v, ErrInvalidTable)
			}
		}
	}
	return nil
}

// #endregion classify

// #region loader

// LoadTable reads a YAML label table from disk and validates it.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read label table %s: %w", path, err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parse label table %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// #endregion loader
