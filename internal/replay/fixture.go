package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kibbyd/spin-annealer/internal/classify"
	"github.com/kibbyd/spin-annealer/internal/config"
	"github.com/kibbyd/spin-annealer/internal/perturb"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture. It pins a
// seed and configuration to the trajectory they are expected to produce.
type Fixture struct {
	Description   string                `json:"description"`
	Config        FixtureConfig         `json:"config"`
	Perturbations []FixturePerturbation `json:"perturbations,omitempty"`
	Expected      FixtureExpected       `json:"expected"`
}

// FixtureConfig mirrors config.RunConfig with JSON tags.
type FixtureConfig struct {
	Seed          int64            `json:"seed"`
	Size          int              `json:"size"`
	Topology      string           `json:"topology"`
	Coupling      float64          `json:"coupling"`
	Field         []float64        `json:"field,omitempty"`
	ScheduleKind  string           `json:"schedule_kind"`
	ScheduleStart float64          `json:"schedule_start"`
	ScheduleEnd   float64          `json:"schedule_end"`
	ScheduleSteps int              `json:"schedule_steps"`
	MaxIterations int              `json:"max_iterations"`
	Window        int              `json:"window"`
	Tolerance     float64          `json:"tolerance"`
	Labels        []FixtureRule    `json:"labels,omitempty"`
	Fallback      string           `json:"fallback,omitempty"`
}

// FixtureRule mirrors classify.Rule with JSON tags.
type FixtureRule struct {
	MinAbsMagnetization *float64 `json:"min_abs_magnetization,omitempty"`
	MaxEnergyPerSpin    *float64 `json:"max_energy_per_spin,omitempty"`
	Label               string   `json:"label"`
}

// FixturePerturbation is one scripted disturbance, applied the next time
// the run converges.
type FixturePerturbation struct {
	Kind      string    `json:"kind"`
	Intensity float64   `json:"intensity,omitempty"`
	Bias      []float64 `json:"bias,omitempty"`
	Index     int       `json:"index,omitempty"`
	Edge      [2]int    `json:"edge,omitempty"`
	Weight    float64   `json:"weight,omitempty"`
}

// FixtureExpected pins the expected terminal record.
type FixtureExpected struct {
	Outcome         string  `json:"outcome"`
	Iterations      int     `json:"iterations"`
	FinalEnergy     float64 `json:"final_energy"`
	EnergyTolerance float64 `json:"energy_tolerance,omitempty"`
	FinalLabel      string  `json:"final_label"`
	FinalStateHash  string  `json:"final_state_hash,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToRunConfig converts a FixtureConfig to a domain RunConfig.
func (fc *FixtureConfig) ToRunConfig() config.RunConfig {
	cfg := config.RunConfig{
		Seed: fc.Seed,
		Lattice: config.LatticeConfig{
			Size:     fc.Size,
			Topology: config.Topology(fc.Topology),
			Coupling: fc.Coupling,
			Field:    fc.Field,
		},
		Schedule: config.ScheduleConfig{
			Kind:  fc.ScheduleKind,
			Start: fc.ScheduleStart,
			End:   fc.ScheduleEnd,
			Steps: fc.ScheduleSteps,
		},
		MaxIterations: fc.MaxIterations,
		Window:        fc.Window,
		Tolerance:     fc.Tolerance,
		Fallback:      fc.Fallback,
	}
	for _, r := range fc.Labels {
		cfg.Labels = append(cfg.Labels, classify.Rule{
			MinAbsMagnetization: r.MinAbsMagnetization,
			MaxEnergyPerSpin:    r.MaxEnergyPerSpin,
			Label:               r.Label,
		})
	}
	return cfg
}

// FromRunConfig converts a domain RunConfig to its fixture mirror.
func FromRunConfig(cfg config.RunConfig) FixtureConfig {
	fc := FixtureConfig{
		Seed:          cfg.Seed,
		Size:          cfg.Lattice.Size,
		Topology:      string(cfg.Lattice.Topology),
		Coupling:      cfg.Lattice.Coupling,
		Field:         cfg.Lattice.Field,
		ScheduleKind:  cfg.Schedule.Kind,
		ScheduleStart: cfg.Schedule.Start,
		ScheduleEnd:   cfg.Schedule.End,
		ScheduleSteps: cfg.Schedule.Steps,
		MaxIterations: cfg.MaxIterations,
		Window:        cfg.Window,
		Tolerance:     cfg.Tolerance,
		Fallback:      cfg.Fallback,
	}
	for _, r := range cfg.Labels {
		fc.Labels = append(fc.Labels, FixtureRule{
			MinAbsMagnetization: r.MinAbsMagnetization,
			MaxEnergyPerSpin:    r.MaxEnergyPerSpin,
			Label:               r.Label,
		})
	}
	return fc
}

// ToRequest converts a FixturePerturbation to a domain Request.
func (fp *FixturePerturbation) ToRequest() perturb.Request {
	return perturb.Request{
		Kind:      perturb.Kind(fp.Kind),
		Intensity: fp.Intensity,
		Bias:      fp.Bias,
		Index:     fp.Index,
		Edge:      fp.Edge,
		Weight:    fp.Weight,
	}
}

// #endregion fixture-loader
