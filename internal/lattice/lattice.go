package lattice

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/kibbyd/spin-annealer/internal/rng"
)

// #region errors
var (
	// ErrInvalidConfiguration covers non-positive sizes, malformed fields,
	// and self-couplings. Fatal to construction of that lattice only.
	ErrInvalidConfiguration = errors.New("invalid lattice configuration")

	// ErrInvalidIndex covers out-of-range spin or edge indices. The lattice
	// is unchanged when it is returned.
	ErrInvalidIndex = errors.New("spin index out of range")
)

// #endregion errors

// #region types

// Coupling is one half of a symmetric pairwise bond. Every bond appears in
// the adjacency lists of both endpoints with the same weight.
type Coupling struct {
	To     int
	Weight float64
}

// Lattice is a fixed-size vector of binary spins in {-1,+1} with symmetric
// pairwise couplings and an optional external field. Size is fixed at
// construction; coupling symmetry is preserved across all mutations.
type Lattice struct {
	n     int
	spins []int8
	adj   [][]Coupling
	field []float64
}

// #endregion types

// #region constructors

// New creates a lattice of n spins, all +1, with no couplings and zero field.
func New(n int) (*Lattice, error) {
	if n <= 0 {
		return nil, fmt.Errorf("size %d: %w", n, ErrInvalidConfiguration)
	}
	spins := make([]int8, n)
	for i := range spins {
		spins[i] = 1
	}
	return &Lattice{
		n:     n,
		spins: spins,
		adj:   make([][]Coupling, n),
		field: make([]float64, n),
	}, nil
}

// NewRing creates a ring of n spins with every neighbor bond set to j.
func NewRing(n int, j float64) (*Lattice, error) {
	lat, err := New(n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := lat.SetCoupling(i, (i+1)%n, j); err != nil {
			return nil, err
		}
	}
	return lat, nil
}

// NewComplete creates a fully connected lattice with every bond set to j.
func NewComplete(n int, j float64) (*Lattice, error) {
	lat, err := New(n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for k := i + 1; k < n; k++ {
			if err := lat.SetCoupling(i, k, j); err != nil {
				return nil, err
			}
		}
	}
	return lat, nil
}

// NewRandomSymmetric creates a fully connected lattice with bond weights
// drawn uniformly from [-scale, scale) using the given stream. The stream
// draw order is fixed (i < j ascending), so identical seeds produce
// identical couplings.
func NewRandomSymmetric(n int, scale float64, stream *rng.Stream) (*Lattice, error) {
	if scale < 0 {
		return nil, fmt.Errorf("coupling scale %f: %w", scale, ErrInvalidConfiguration)
	}
	lat, err := New(n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for k := i + 1; k < n; k++ {
			w := (stream.Float64()*2 - 1) * scale
			if err := lat.SetCoupling(i, k, w); err != nil {
				return nil, err
			}
		}
	}
	return lat, nil
}

// #endregion constructors

// #region mutation

// SetCoupling sets the symmetric bond weight between spins i and j,
// replacing any existing bond. The diagonal stays zero: i == j is rejected.
func (l *Lattice) SetCoupling(i, j int, w float64) error {
	if i < 0 || i >= l.n || j < 0 || j >= l.n {
		return fmt.Errorf("coupling (%d,%d): %w", i, j, ErrInvalidIndex)
	}
	if i == j {
		return fmt.Errorf("self-coupling at %d: %w", i, ErrInvalidConfiguration)
	}
	l.setHalf(i, j, w)
	l.setHalf(j, i, w)
	return nil
}

// setHalf inserts or replaces the entry for `to` in adj[from], keeping the
// list sorted by target index so iteration order is deterministic.
func (l *Lattice) setHalf(from, to int, w float64) {
	list := l.adj[from]
	for idx, c := range list {
		if c.To == to {
			list[idx].Weight = w
			return
		}
		if c.To > to {
			list = append(list, Coupling{})
			copy(list[idx+1:], list[idx:])
			list[idx] = Coupling{To: to, Weight: w}
			l.adj[from] = list
			return
		}
	}
	l.adj[from] = append(list, Coupling{To: to, Weight: w})
}

// SetField replaces the external field vector. Length must equal the size.
func (l *Lattice) SetField(h []float64) error {
	if len(h) != l.n {
		return fmt.Errorf("field length %d for size %d: %w", len(h), l.n, ErrInvalidConfiguration)
	}
	copy(l.field, h)
	return nil
}

// AddField adds a bias vector onto the existing external field.
func (l *Lattice) AddField(bias []float64) error {
	if len(bias) != l.n {
		return fmt.Errorf("bias length %d for size %d: %w", len(bias), l.n, ErrInvalidConfiguration)
	}
	for i, b := range bias {
		l.field[i] += b
	}
	return nil
}

// #endregion mutation

// #region energy

// Energy computes the full Hamiltonian
// E = -Σ_{i<j} J_ij·s_i·s_j - Σ_i h_i·s_i.
func (l *Lattice) Energy() float64 {
	var e float64
	for i := 0; i < l.n; i++ {
		si := float64(l.spins[i])
		for _, c := range l.adj[i] {
			if c.To > i { // each bond counted once
				e -= c.Weight * si * float64(l.spins[c.To])
			}
		}
		e -= l.field[i] * si
	}
	return e
}

// FlipDelta returns the energy change that flipping spin i would cause,
// in O(degree(i)) time. The lattice is not mutated.
func (l *Lattice) FlipDelta(i int) (float64, error) {
	if i < 0 || i >= l.n {
		return 0, fmt.Errorf("flip %d: %w", i, ErrInvalidIndex)
	}
	// Local field on spin i; its energy contribution is -s_i * local,
	// so flipping costs 2 * s_i * local.
	local := l.field[i]
	for _, c := range l.adj[i] {
		local += c.Weight * float64(l.spins[c.To])
	}
	return 2 * float64(l.spins[i]) * local, nil
}

// Flip toggles spin i and returns the energy delta it caused.
func (l *Lattice) Flip(i int) (float64, error) {
	delta, err := l.FlipDelta(i)
	if err != nil {
		return 0, err
	}
	l.spins[i] = -l.spins[i]
	return delta, nil
}

// #endregion energy

// #region observers

// Size returns the number of spins.
func (l *Lattice) Size() int {
	return l.n
}

// Spin returns the value of spin i.
func (l *Lattice) Spin(i int) (int8, error) {
	if i < 0 || i >= l.n {
		return 0, fmt.Errorf("spin %d: %w", i, ErrInvalidIndex)
	}
	return l.spins[i], nil
}

// Spins returns a copy of the spin vector.
func (l *Lattice) Spins() []int8 {
	out := make([]int8, l.n)
	copy(out, l.spins)
	return out
}

// Degree returns the number of bonds attached to spin i.
func (l *Lattice) Degree(i int) (int, error) {
	if i < 0 || i >= l.n {
		return 0, fmt.Errorf("degree %d: %w", i, ErrInvalidIndex)
	}
	return len(l.adj[i]), nil
}

// CouplingWeight returns the bond weight between i and j (0 if unbonded).
func (l *Lattice) CouplingWeight(i, j int) (float64, error) {
	if i < 0 || i >= l.n || j < 0 || j >= l.n {
		return 0, fmt.Errorf("coupling (%d,%d): %w", i, j, ErrInvalidIndex)
	}
	for _, c := range l.adj[i] {
		if c.To == j {
			return c.Weight, nil
		}
	}
	return 0, nil
}

// Magnetization returns the mean spin in [-1, 1].
func (l *Lattice) Magnetization() float64 {
	var sum int
	for _, s := range l.spins {
		sum += int(s)
	}
	return float64(sum) / float64(l.n)
}

// Hash returns a hex digest of the current spin configuration.
// Two lattices of equal size with identical spins hash identically.
func (l *Lattice) Hash() string {
	buf := make([]byte, l.n)
	for i, s := range l.spins {
		if s > 0 {
			buf[i] = 1
		}
	}
	sum := sha256.Sum256(buf)
	return fmt.Sprintf("%x", sum[:8])
}

// Clone returns a deep copy sharing no state with the original.
func (l *Lattice) Clone() *Lattice {
	out := &Lattice{
		n:     l.n,
		spins: make([]int8, l.n),
		adj:   make([][]Coupling, l.n),
		field: make([]float64, l.n),
	}
	copy(out.spins, l.spins)
	copy(out.field, l.field)
	for i, list := range l.adj {
		out.adj[i] = make([]Coupling, len(list))
		copy(out.adj[i], list)
	}
	return out
}

// #endregion observers
