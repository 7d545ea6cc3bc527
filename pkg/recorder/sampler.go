package recorder

import (
	"math"
	"math/rand/v2"
)

// Sampler draws count values from the inclusive range [lo, hi].
type Sampler[T Number] interface {
	Sample(count int, lo, hi T) []T
}

// SamplerFunc adapts an ordinary function to the Sampler interface.
type SamplerFunc[T Number] func(count int, lo, hi T) []T

// Sample calls f(count, lo, hi).
func (f SamplerFunc[T]) Sample(count int, lo, hi T) []T {
	return f(count, lo, hi)
}

// goldenGamma decorrelates the second PCG seed word from the first.
const goldenGamma = 0x9e3779b97f4a7c15

// UniformSampler draws independent integer-valued samples, uniformly
// distributed over [lo, hi]. For float types the samples are lo plus a
// whole number.
type UniformSampler[T Number] struct {
	rng *rand.Rand
}

// NewUniformSampler creates a sampler backed by src.
func NewUniformSampler[T Number](src rand.Source) *UniformSampler[T] {
	return &UniformSampler[T]{rng: rand.New(src)}
}

// NewSeededSampler creates a deterministic sampler. Equal seeds produce equal
// sequences.
func NewSeededSampler[T Number](seed uint64) *UniformSampler[T] {
	return NewUniformSampler[T](rand.NewPCG(seed, seed^goldenGamma))
}

// newRandomSampler seeds a sampler from the runtime's random source.
func newRandomSampler[T Number]() *UniformSampler[T] {
	return NewSeededSampler[T](rand.Uint64())
}

// Sample implements Sampler.
func (s *UniformSampler[T]) Sample(count int, lo, hi T) []T {
	values := make([]T, count)

	width := uint64(math.MaxUint64)

	span := math.Floor(float64(hi) - float64(lo))
	if span < 1<<63 {
		width = uint64(span) + 1
	}

	for i := range values {
		values[i] = lo + T(s.rng.Uint64N(width))
	}

	return values
}
