// Package entropy provides the simulation's single seeded randomness
// source. Every stochastic decision in a run draws from one Source in a
// fixed order, so two runs with the same seed make the same choices.
package entropy

import (
	"math/rand"
)

// Source wraps a seeded PRNG. Not safe for concurrent use; the
// simulation draws from it single-threaded, in a documented order.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a deterministic source from the given seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform float64 in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Intn returns a uniform int in [0, n). Panics if n <= 0.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Bernoulli returns true with probability p. A draw is consumed even
// when p is 0 or 1, so the stream position never depends on the
// outcome.
func (s *Source) Bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

// Perm returns a random permutation of [0, n).
func (s *Source) Perm(n int) []int {
	return s.rng.Perm(n)
}

// Shuffle randomizes the order of n elements via the swap function.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// SampleInts draws k distinct values from pool without replacement,
// using a partial Fisher-Yates pass over a copy. The pool itself is
// not modified. If k exceeds len(pool), a shuffled copy of the whole
// pool is returned.
func (s *Source) SampleInts(pool []int, k int) []int {
	work := make([]int, len(pool))
	copy(work, pool)
	if k > len(work) {
		k = len(work)
	}
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k]
}
