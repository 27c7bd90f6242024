package schedule

import (
	"errors"
	"fmt"
	"math"
)

// #region errors
// ErrInvalidConfiguration covers empty, negative, or non-decreasing
// temperature schedules. Surfaced at construction time.
var ErrInvalidConfiguration = errors.New("invalid temperature schedule")

// #endregion errors

// #region interface

// Schedule yields a monotonically non-increasing temperature sequence.
// At clamps its argument into [0, Steps()-1], so callers may keep asking
// past the end and receive the final temperature.
type Schedule interface {
	At(step int) float64
	Steps() int
}

// #endregion interface

// #region geometric

// Geometric decays from Start to End by a constant ratio per step.
type Geometric struct {
	start float64
	end   float64
	steps int
	ratio float64
}

// NewGeometric validates and builds a geometric decay schedule.
// Start and End must be positive with End <= Start.
func NewGeometric(start, end float64, steps int) (*Geometric, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("geometric steps %d: %w", steps, ErrInvalidConfiguration)
	}
	if start <= 0 || end <= 0 || end > start {
		return nil, fmt.Errorf("geometric bounds [%f, %f]: %w", start, end, ErrInvalidConfiguration)
	}
	ratio := 1.0
	if steps > 1 {
		ratio = math.Pow(end/start, 1/float64(steps-1))
	}
	return &Geometric{start: start, end: end, steps: steps, ratio: ratio}, nil
}

func (g *Geometric) At(step int) float64 {
	step = clampStep(step, g.steps)
	if step == g.steps-1 {
		return g.end
	}
	return g.start * math.Pow(g.ratio, float64(step))
}

func (g *Geometric) Steps() int {
	return g.steps
}

// #endregion geometric

// #region linear

// Linear interpolates from Start to End in equal decrements.
type Linear struct {
	start float64
	end   float64
	steps int
}

// NewLinear validates and builds a linear decay schedule.
// End may be zero; zero temperature degenerates to greedy descent.
func NewLinear(start, end float64, steps int) (*Linear, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("linear steps %d: %w", steps, ErrInvalidConfiguration)
	}
	if start < 0 || end < 0 || end > start {
		return nil, fmt.Errorf("linear bounds [%f, %f]: %w", start, end, ErrInvalidConfiguration)
	}
	return &Linear{start: start, end: end, steps: steps}, nil
}

func (l *Linear) At(step int) float64 {
	step = clampStep(step, l.steps)
	if l.steps == 1 {
		return l.end
	}
	frac := float64(step) / float64(l.steps-1)
	return l.start - (l.start-l.end)*frac
}

func (l *Linear) Steps() int {
	return l.steps
}

// #endregion linear

// #region constant

// Constant holds one temperature for every step. Zero is the pure greedy
// descent case.
type Constant struct {
	temp  float64
	steps int
}

// NewConstant validates and builds a constant schedule.
func NewConstant(temp float64, steps int) (*Constant, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("constant steps %d: %w", steps, ErrInvalidConfiguration)
	}
	if temp < 0 {
		return nil, fmt.Errorf("constant temperature %f: %w", temp, ErrInvalidConfiguration)
	}
	return &Constant{temp: temp, steps: steps}, nil
}

func (c *Constant) At(step int) float64 {
	return c.temp
}

func (c *Constant) Steps() int {
	return c.steps
}

// #endregion constant

// #region helpers

// Temperatures materializes a schedule into a slice.
func Temperatures(s Schedule) []float64 {
	out := make([]float64, s.Steps())
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

func clampStep(step, steps int) int {
	if step < 0 {
		return 0
	}
	if step >= steps {
		return steps - 1
	}
	return step
}

// #endregion helpers
