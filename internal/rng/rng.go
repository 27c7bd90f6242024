package rng

import "math/rand"

// #region stream
// Stream is a deterministic pseudo-random source owned by exactly one run.
// Identical seeds produce identical draw sequences. Not safe for concurrent
// use; each run owns its own Stream.
type Stream struct {
	seed  int64
	src   *rand.Rand
	draws uint64
}

// NewStream creates a stream seeded with the given value.
func NewStream(seed int64) *Stream {
	return &Stream{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// #endregion stream

// #region draws

// Float64 returns the next draw in [0, 1).
func (s *Stream) Float64() float64 {
	s.draws++
	return s.src.Float64()
}

// Intn returns the next draw in [0, n).
func (s *Stream) Intn(n int) int {
	s.draws++
	return s.src.Intn(n)
}

// Perm returns a deterministic permutation of [0, n).
func (s *Stream) Perm(n int) []int {
	s.draws++
	return s.src.Perm(n)
}

// #endregion draws

// #region accessors

// Seed returns the seed this stream was created with.
func (s *Stream) Seed() int64 {
	return s.seed
}

// Draws returns how many values have been drawn so far.
// Recorded in replay fixtures to cross-check stream position.
func (s *Stream) Draws() uint64 {
	return s.draws
}

// #endregion accessors
