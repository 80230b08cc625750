// Package rng provides the deterministic random stream shared by all passes.
//
// A Stream is created once per run from a seed and then handed, by pointer,
// to palette selection and to every drawing pass in a fixed order. Each pass
// continues from wherever the previous one left the stream, so the call
// order and arity of draws are part of the reproducibility contract.
//
// The generator is math/rand/v2's PCG seeded with the top 128 bits of the
// seed. It is not intended to match any other implementation bit for bit;
// the guarantee is that the same seed and the same call sequence always
// produce the same draws.
//
// A Stream is not safe for concurrent use.
package rng

import (
	"math/rand/v2"

	"github.com/matzehuels/dailyart/pkg/seed"
)

// Stream is a seeded sequence of uniform draws.
type Stream struct {
	r     *rand.Rand
	draws int
}

// New returns a stream seeded from s.
func New(s seed.Seed) *Stream {
	hi, lo := s.PCG()
	return &Stream{r: rand.New(rand.NewPCG(hi, lo))}
}

// IntRange returns a uniform integer in [lo, hi], both inclusive.
// Reversed bounds are swapped.
func (s *Stream) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	s.draws++
	return lo + s.r.IntN(hi-lo+1)
}

// FloatRange returns a uniform real in [lo, hi).
func (s *Stream) FloatRange(lo, hi float64) float64 {
	s.draws++
	return lo + (hi-lo)*s.r.Float64()
}

// IntN returns a uniform integer in [0, n). It panics if n <= 0.
func (s *Stream) IntN(n int) int {
	s.draws++
	return s.r.IntN(n)
}

// Draws reports how many values have been drawn from the stream.
func (s *Stream) Draws() int { return s.draws }

// Choose returns one element of items chosen uniformly.
// It panics if items is empty.
func Choose[T any](s *Stream, items []T) T {
	return items[s.IntN(len(items))]
}
