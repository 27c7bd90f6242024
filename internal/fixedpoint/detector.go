package fixedpoint

import (
	"errors"
	"fmt"
	"math"
)

// #region errors
// ErrInvalidConfiguration covers window sizes below 2 and negative
// tolerances.
var ErrInvalidConfiguration = errors.New("invalid detector configuration")

// #endregion errors

// DefaultWindow is the number of consecutive identical observations that
// declare a fixed point.
const DefaultWindow = 5

// #region detector

// Detector declares convergence when the lattice stops changing across a
// window of consecutive sweeps. State identity is judged by spin hash; when
// Tolerance > 0 an energy plateau within Tolerance also counts, which is
// cheaper but coarser.
//
// Convergence is an intentional stopping rule, not a failure. Once it fires
// it keeps answering true until Reset or a new divergent observation.
type Detector struct {
	window    int
	tolerance float64
	hashes    []string
	energies  []float64
}

// NewDetector builds a detector. Window must be at least 2.
func NewDetector(window int, tolerance float64) (*Detector, error) {
	if window < 2 {
		return nil, fmt.Errorf("window %d: %w", window, ErrInvalidConfiguration)
	}
	if tolerance < 0 || math.IsNaN(tolerance) {
		return nil, fmt.Errorf("tolerance %f: %w", tolerance, ErrInvalidConfiguration)
	}
	return &Detector{window: window, tolerance: tolerance}, nil
}

// Window returns the configured window size.
func (d *Detector) Window() int {
	return d.window
}

// #endregion detector

// #region observe

// Observe records one post-sweep observation, evicting the oldest once the
// window is full.
func (d *Detector) Observe(energy float64, hash string) {
	d.energies = append(d.energies, energy)
	d.hashes = append(d.hashes, hash)
	if len(d.hashes) > d.window {
		d.energies = d.energies[1:]
		d.hashes = d.hashes[1:]
	}
}

// Converged reports whether the window is full of pairwise-identical
// states. Querying repeatedly with no new observations is idempotent.
func (d *Detector) Converged() bool {
	if len(d.hashes) < d.window {
		return false
	}
	identical := true
	for _, h := range d.hashes[1:] {
		if h != d.hashes[0] {
			identical = false
			break
		}
	}
	if identical {
		return true
	}
	if d.tolerance > 0 {
		lo, hi := d.energies[0], d.energies[0]
		for _, e := range d.energies[1:] {
			if e < lo {
				lo = e
			}
			if e > hi {
				hi = e
			}
		}
		return hi-lo <= d.tolerance
	}
	return false
}

// Reset clears the window. Called after a perturbation so pre- and
// post-perturbation states are never compared as contiguous.
func (d *Detector) Reset() {
	d.energies = d.energies[:0]
	d.hashes = d.hashes[:0]
}

// #endregion observe
