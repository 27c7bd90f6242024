package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kibbyd/spin-annealer/internal/anneal"
	"github.com/kibbyd/spin-annealer/internal/classify"
	"github.com/kibbyd/spin-annealer/internal/fixedpoint"
	"github.com/kibbyd/spin-annealer/internal/lattice"
	"github.com/kibbyd/spin-annealer/internal/rng"
	"github.com/kibbyd/spin-annealer/internal/schedule"
)

// #region types

// Topology names the coupling generation rule.
type Topology string

const (
	TopologyRing     Topology = "ring"
	TopologyComplete Topology = "complete"
	TopologyRandom   Topology = "random"
)

// LatticeConfig describes how to build the lattice for a run.
type LatticeConfig struct {
	Size     int       `yaml:"size"`
	Topology Topology  `yaml:"topology"`
	Coupling float64   `yaml:"coupling"` // bond weight (ring/complete) or scale (random)
	Field    []float64 `yaml:"field,omitempty"`
}

// ScheduleConfig describes the temperature schedule.
type ScheduleConfig struct {
	Kind  string  `yaml:"kind"` // geometric | linear | constant
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Steps int     `yaml:"steps"`
}

// RunConfig is one run's full configuration. Immutable for the duration of
// the run.
type RunConfig struct {
	Seed          int64          `yaml:"seed"`
	Lattice       LatticeConfig  `yaml:"lattice"`
	Schedule      ScheduleConfig `yaml:"schedule"`
	MaxIterations int            `yaml:"max_iterations"`
	Window        int            `yaml:"window"`
	Tolerance     float64        `yaml:"tolerance"`

	// Labels overrides the built-in declaration table when non-empty.
	Labels   []classify.Rule `yaml:"labels,omitempty"`
	Fallback string          `yaml:"fallback,omitempty"`
}

// #endregion types

// #region defaults

// Default returns a runnable baseline: the 20-spin ferromagnetic ring with
// geometric decay.
func Default() RunConfig {
	return RunConfig{
		Seed: 42,
		Lattice: LatticeConfig{
			Size:     20,
			Topology: TopologyRing,
			Coupling: 1.0,
		},
		Schedule: ScheduleConfig{
			Kind:  "geometric",
			Start: 1.0,
			End:   0.01,
			Steps: 1000,
		},
		MaxIterations: 5000,
		Window:        fixedpoint.DefaultWindow,
	}
}

// #endregion defaults

// #region loader

// Load reads a YAML run config. Missing optional fields fall back to the
// defaults; validation errors surface at load time, before any run starts.
func Load(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// Validate checks the parts the builders cannot: topology names, schedule
// kinds, and the label table shape. Numeric bounds are re-checked by the
// component constructors.
func (c RunConfig) Validate() error {
	switch c.Lattice.Topology {
	case TopologyRing, TopologyComplete, TopologyRandom:
	default:
		return fmt.Errorf("topology %q: %w", c.Lattice.Topology, lattice.ErrInvalidConfiguration)
	}
	if c.Lattice.Size <= 0 {
		return fmt.Errorf("lattice size %d: %w", c.Lattice.Size, lattice.ErrInvalidConfiguration)
	}
	if len(c.Lattice.Field) > 0 && len(c.Lattice.Field) != c.Lattice.Size {
		return fmt.Errorf("field length %d for size %d: %w",
			len(c.Lattice.Field), c.Lattice.Size, lattice.ErrInvalidConfiguration)
	}
	switch c.Schedule.Kind {
	case "geometric", "linear", "constant":
	default:
		return fmt.Errorf("schedule kind %q: %w", c.Schedule.Kind, schedule.ErrInvalidConfiguration)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations %d: %w", c.MaxIterations, lattice.ErrInvalidConfiguration)
	}
	return c.Table().Validate()
}

// Table returns the configured label table, or the built-in default when
// the config carries none.
func (c RunConfig) Table() classify.Table {
	if len(c.Labels) == 0 {
		return classify.DefaultTable()
	}
	fallback := c.Fallback
	if fallback == "" {
		fallback = classify.DefaultTable().Fallback
	}
	return classify.Table{Rules: c.Labels, Fallback: fallback}
}

// #endregion loader

// #region build

// BuildRunner constructs the lattice, stream, schedule, and runner for one
// run. When the topology is random, couplings are drawn from the run's own
// stream before any sweep, so one seed fixes the whole trajectory.
func BuildRunner(c RunConfig) (*anneal.Runner, error) {
	stream := rng.NewStream(c.Seed)

	var lat *lattice.Lattice
	var err error
	switch c.Lattice.Topology {
	case TopologyRing:
		lat, err = lattice.NewRing(c.Lattice.Size, c.Lattice.Coupling)
	case TopologyComplete:
		lat, err = lattice.NewComplete(c.Lattice.Size, c.Lattice.Coupling)
	case TopologyRandom:
		lat, err = lattice.NewRandomSymmetric(c.Lattice.Size, c.Lattice.Coupling, stream)
	default:
		err = fmt.Errorf("topology %q: %w", c.Lattice.Topology, lattice.ErrInvalidConfiguration)
	}
	if err != nil {
		return nil, err
	}
	if len(c.Lattice.Field) > 0 {
		if err := lat.SetField(c.Lattice.Field); err != nil {
			return nil, err
		}
	}

	sched, err := buildSchedule(c.Schedule)
	if err != nil {
		return nil, err
	}

	return anneal.NewRunner(lat, stream, sched, c.Table(), anneal.Config{
		MaxIterations: c.MaxIterations,
		Window:        c.Window,
		Tolerance:     c.Tolerance,
	})
}

func buildSchedule(sc ScheduleConfig) (schedule.Schedule, error) {
	switch sc.Kind {
	case "geometric":
		return schedule.NewGeometric(sc.Start, sc.End, sc.Steps)
	case "linear":
		return schedule.NewLinear(sc.Start, sc.End, sc.Steps)
	case "constant":
		return schedule.NewConstant(sc.Start, sc.Steps)
	default:
		return nil, fmt.Errorf("schedule kind %q: %w", sc.Kind, schedule.ErrInvalidConfiguration)
	}
}

// #endregion build
