package gridlock

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"

	"github.com/ALTree/bigfloat"
	"github.com/montanaflynn/stats"
	"github.com/tuneinsight/lattigo/v5/utils/sampling"

	"github.com/KAIST-CryptLab/gridlock/core/field"
)

// cdtPrecision is the precision in bits used to build the sampling table.
const cdtPrecision = 128

// ErrorSampler samples the noise terms e_i of the public key from a
// discrete Gaussian of width sigma truncated to [-bound, bound].
// Sampling is done by inversion of a cumulative distribution table scaled
// to 2^64: one uint64 is read from the PRNG per sample.
type ErrorSampler struct {
	prng  sampling.PRNG
	f     field.Field
	bound int
	cdt   []uint64
}

// NewErrorSampler creates the noise sampler of params drawing from prng.
func NewErrorSampler(prng sampling.PRNG, params Parameters) *ErrorSampler {
	return newErrorSampler(prng, params.Field(), params.Sigma(), params.Bound())
}

func newErrorSampler(prng sampling.PRNG, f field.Field, sigma float64, bound int) *ErrorSampler {
	if sigma == 0 {
		bound = 0
	}
	return &ErrorSampler{
		prng:  prng,
		f:     f,
		bound: bound,
		cdt:   buildCDT(sigma, bound),
	}
}

// buildCDT returns the 2*bound thresholds t_i = floor(2^64 * Pr[X <= i - bound]),
// i = 0, ..., 2*bound-1, of the discrete Gaussian exp(-k^2/(2 sigma^2)) on [-bound, bound].
func buildCDT(sigma float64, bound int) (cdt []uint64) {

	if bound == 0 {
		return nil
	}

	weights := make([]*big.Float, 2*bound+1)
	total := new(big.Float).SetPrec(cdtPrecision)
	twoSigmaSquare := new(big.Float).SetPrec(cdtPrecision).SetFloat64(2 * sigma * sigma)

	for i := range weights {
		k := int64(i - bound)
		x := new(big.Float).SetPrec(cdtPrecision).SetInt64(-k * k)
		x.Quo(x, twoSigmaSquare)
		weights[i] = bigfloat.Exp(x)
		total.Add(total, weights[i])
	}

	scale := new(big.Float).SetPrec(cdtPrecision).SetInt(new(big.Int).Lsh(big.NewInt(1), 64))
	acc := new(big.Float).SetPrec(cdtPrecision)
	t := new(big.Float).SetPrec(cdtPrecision)

	cdt = make([]uint64, 2*bound)
	for i := range cdt {
		acc.Add(acc, weights[i])
		t.Quo(acc, total)
		t.Mul(t, scale)
		// values above 2^64-1 saturate
		cdt[i], _ = t.Uint64()
	}

	return
}

// Read returns one noise term.
func (s *ErrorSampler) Read() field.Element {

	if s.bound == 0 {
		return s.f.Zero()
	}

	var buf [8]byte
	if _, err := s.prng.Read(buf[:]); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}

	u := binary.BigEndian.Uint64(buf[:])
	i := sort.Search(len(s.cdt), func(i int) bool { return u < s.cdt[i] })

	return s.f.NewElementInt64(int64(i - s.bound))
}

// ReadVectorNew returns n independent noise terms.
func (s *ErrorSampler) ReadVectorNew(n int) (vec []field.Element) {
	vec = make([]field.Element, n)
	for i := range vec {
		vec[i] = s.Read()
	}
	return
}

// WithPRNG returns a copy of the sampler drawing from prng.
// The distribution table is shared.
func (s *ErrorSampler) WithPRNG(prng sampling.PRNG) *ErrorSampler {
	return &ErrorSampler{prng: prng, f: s.f, bound: s.bound, cdt: s.cdt}
}

// NoiseStatistics returns the mean and standard deviation of the centered
// representatives of samples.
func NoiseStatistics(samples []field.Element) (mean, stdev float64, err error) {

	data := make(stats.Float64Data, len(samples))
	for i, e := range samples {
		data[i] = float64(e.Centered())
	}

	if mean, err = stats.Mean(data); err != nil {
		return 0, 0, fmt.Errorf("stats.Mean: %w", err)
	}

	if stdev, err = stats.StandardDeviation(data); err != nil {
		return 0, 0, fmt.Errorf("stats.StandardDeviation: %w", err)
	}

	return
}
