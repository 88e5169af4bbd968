// Package rng provides seeded, reproducible random streams for Monte Carlo
// sampling. A Stream is identified by a (seed, stream id) pair: the same pair
// always produces the same sequence, and distinct stream ids drawn from the
// same seed give independent sequences for parallel runs.
//
// Streams are not safe for concurrent use. Each sampling run owns its own.
package rng

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mathext/prng"
)

// golden is the splitmix64 increment (2^64 / phi).
const golden = 0x9e3779b97f4a7c15

// Stream is a deterministic pseudo-random generator bound to a single
// sampling run.
type Stream struct {
	seed     uint64
	streamID uint64
	rnd      *rand.Rand
}

// New creates the stream identified by (seed, streamID).
func New(seed, streamID uint64) *Stream {
	src := prng.NewXoshiro256starstar(mix(seed, streamID))
	return &Stream{
		seed:     seed,
		streamID: streamID,
		rnd:      rand.New(src),
	}
}

// ForSample returns the stream for sample index i of a run seeded with seed.
func ForSample(seed uint64, i int) *Stream {
	return New(seed, StreamID(seed, i))
}

// StreamID derives the stream id used for sample index i. The id only
// depends on (seed, i), so results do not depend on which worker executes
// which sample or in what order.
func StreamID(seed uint64, i int) uint64 {
	return splitmix64(seed ^ splitmix64(uint64(i)+golden))
}

// Seed returns the base seed of the stream.
func (s *Stream) Seed() uint64 { return s.seed }

// ID returns the stream id.
func (s *Stream) ID() uint64 { return s.streamID }

// Float64 returns a uniform value in [0, 1).
func (s *Stream) Float64() float64 {
	return s.rnd.Float64()
}

// IntN returns a uniform value in [0, n). It panics if n <= 0.
func (s *Stream) IntN(n int) int {
	return s.rnd.IntN(n)
}

// Spin returns -1 or +1 with equal probability.
func (s *Stream) Spin() int8 {
	if s.rnd.Uint64()>>63 == 0 {
		return -1
	}
	return 1
}

// Uint64 returns a uniform 64-bit value.
func (s *Stream) Uint64() uint64 {
	return s.rnd.Uint64()
}

// mix folds the stream id into the seed so that neighbouring (seed, id)
// pairs land far apart in xoshiro's state space.
func mix(seed, streamID uint64) uint64 {
	return splitmix64(splitmix64(seed) + streamID*golden)
}

func splitmix64(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
