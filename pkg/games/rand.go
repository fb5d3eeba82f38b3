package games

import "math/rand/v2"

// Rand is the randomness source every mini-game draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a deterministic PCG source for the given seed.
// A Rand is not safe for concurrent use; the owning controller serializes access.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
