package relation

// #region imports
import (
	"fmt"
	"math"

	"github.com/kibbyd/spin-annealer/internal/anneal"
)

// #endregion

// #region types

// Report summarizes how two independent runs relate. Overlap is the mean
// spin product (1 identical, -1 inverted, 0 uncorrelated); AlignedFraction
// is the share of sites holding the same spin.
type Report struct {
	Size             int
	AlignedFraction  float64
	Overlap          float64
	EnergyGap        float64 // |E_a - E_b|
	MagnetizationGap float64
	SameLabel        bool
	SameHash         bool
}

// #endregion types

// #region compare

// Compare relates two snapshots taken from independent runs. Neither run
// owns the other; both inputs are read-only copies. Sizes must match.
func Compare(a, b anneal.Snapshot) (Report, error) {
	if len(a.Spins) != len(b.Spins) {
		return Report{}, fmt.Errorf("lattice sizes differ: %d vs %d", len(a.Spins), len(b.Spins))
	}
	if len(a.Spins) == 0 {
		return Report{}, fmt.Errorf("empty snapshots")
	}

	aligned := 0
	overlap := 0.0
	for i := range a.Spins {
		product := float64(a.Spins[i]) * float64(b.Spins[i])
		overlap += product
		if product > 0 {
			aligned++
		}
	}
	n := float64(len(a.Spins))

	return Report{
		Size:             len(a.Spins),
		AlignedFraction:  float64(aligned) / n,
		Overlap:          overlap / n,
		EnergyGap:        math.Abs(a.Energy - b.Energy),
		MagnetizationGap: math.Abs(a.Magnetization - b.Magnetization),
		SameLabel:        a.Label == b.Label,
		SameHash:         a.StateHash != "" && a.StateHash == b.StateHash,
	}, nil
}

// Mirrored reports whether the two states are exact spin inversions of
// each other. The ferromagnetic ground state is two-fold degenerate, so
// converged runs often land on mirrored states that a hash comparison
// would call unrelated.
func Mirrored(r Report) bool {
	return r.Overlap == -1
}

// Identical reports whether the two states match site for site.
func Identical(r Report) bool {
	return r.Overlap == 1
}

// #endregion compare
