package field

import (
	"math/bits"

	"github.com/tuneinsight/lattigo/v5/ring"
	"github.com/tuneinsight/lattigo/v5/utils/sampling"
)

// Sampler is a distribution over the elements of a field.
type Sampler interface {
	Read() Element
}

// UniformSampler samples elements uniformly in [0, p-1].
// It does not own its PRNG: all draws consume the handle given at
// construction, and the sampler must not be shared across goroutines
// unless that handle is.
type UniformSampler struct {
	prng sampling.PRNG
	f    Field
	mask uint64
}

// NewUniformSampler creates a new UniformSampler over f drawing from prng.
func NewUniformSampler(prng sampling.PRNG, f Field) *UniformSampler {
	return &UniformSampler{
		prng: prng,
		f:    f,
		mask: (uint64(1) << bits.Len64(f.p-1)) - 1,
	}
}

// Read returns a uniform element of the field.
func (u *UniformSampler) Read() Element {
	return Element{v: ring.RandUniform(u.prng, u.f.p, u.mask), p: u.f.p}
}

// ReadVectorNew returns n independent uniform elements.
func (u *UniformSampler) ReadVectorNew(n int) (vec []Element) {
	vec = make([]Element, n)
	for i := range vec {
		vec[i] = u.Read()
	}
	return
}

// WithPRNG returns a copy of the sampler drawing from prng.
func (u *UniformSampler) WithPRNG(prng sampling.PRNG) *UniformSampler {
	return &UniformSampler{prng: prng, f: u.f, mask: u.mask}
}
