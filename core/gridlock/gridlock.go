// Package gridlock implements GridLock, a public-key encryption scheme
// based on the Learning With Errors problem as described in
// arXiv:2401.03703.
//
// A plaintext is encrypted bit by bit: each bit becomes the sum of a random
// subset of public key rows, shifted by floor(p/2) when the bit is one.
// Decryption subtracts <a, s> and decodes to the nearest of the two anchors
// 0 and floor(p/2) on Z/pZ.
//
// This construction is IND-CPA only and is not hardened against side channels.
package gridlock

import (
	"fmt"
	"sync"

	"github.com/tuneinsight/lattigo/v5/utils/sampling"

	"github.com/KAIST-CryptLab/gridlock/core/field"
)

// GridLock is the scheme engine. It owns a single PRNG from which key
// generation and encryption draw. Those operations hold an internal lock
// for their whole duration, so an instance may be shared between
// goroutines, but its output stream is only reproducible when calls are
// made sequentially. Decryption does not touch the PRNG.
type GridLock struct {
	params  Parameters
	mu      sync.Mutex
	prng    sampling.PRNG
	uniform *field.UniformSampler
	chi     *ErrorSampler
	encoder *Encoder
}

// New creates a GridLock instance for params. If prng is nil, a new PRNG
// seeded from the operating system is created; passing a keyed PRNG
// (sampling.NewKeyedPRNG) makes every output deterministic.
func New(params Parameters, prng sampling.PRNG) (gl *GridLock, err error) {

	if params.N() == 0 {
		return nil, fmt.Errorf("%w: parameters are not initialized", ErrInvalidParameters)
	}

	if prng == nil {
		if prng, err = sampling.NewPRNG(); err != nil {
			return nil, fmt.Errorf("sampling.NewPRNG: %w", err)
		}
	}

	return &GridLock{
		params:  params,
		prng:    prng,
		uniform: field.NewUniformSampler(prng, params.Field()),
		chi:     NewErrorSampler(prng, params),
		encoder: NewEncoder(params),
	}, nil
}

// WithPRNG returns a new instance with the same parameters drawing from prng.
func (gl *GridLock) WithPRNG(prng sampling.PRNG) *GridLock {
	return &GridLock{
		params:  gl.params,
		prng:    prng,
		uniform: gl.uniform.WithPRNG(prng),
		chi:     gl.chi.WithPRNG(prng),
		encoder: gl.encoder,
	}
}

// Parameters returns the parameters of the instance.
func (gl *GridLock) Parameters() Parameters {
	return gl.params
}

func (p Parameters) checkSecretKey(sk *SecretKey) error {

	if sk == nil {
		return fmt.Errorf("%w: secret key is nil", ErrInvalidKeyLength)
	}

	if len(sk.Value) != p.n {
		return fmt.Errorf("%w: secret key has %d elements, want %d", ErrInvalidKeyLength, len(sk.Value), p.n)
	}

	for i, e := range sk.Value {
		if !p.f.Contains(e) {
			return fmt.Errorf("%w: secret key element %d is in Z/%dZ, want %s", ErrInvalidKeyLength, i, e.P(), p.f)
		}
	}

	return nil
}

func (p Parameters) checkPublicKey(pk *PublicKey) error {

	if pk == nil {
		return fmt.Errorf("%w: public key is nil", ErrInvalidKeyLength)
	}

	if len(pk.Value) != p.m {
		return fmt.Errorf("%w: public key has %d rows, want %d", ErrInvalidKeyLength, len(pk.Value), p.m)
	}

	for i := range pk.Value {
		if err := p.checkSample(pk.Value[i]); err != nil {
			return fmt.Errorf("%w: public key row %d: %w", ErrInvalidKeyLength, i, err)
		}
	}

	return nil
}

func (p Parameters) checkSample(s Sample) error {

	if len(s.A) != p.n {
		return fmt.Errorf("vector has %d elements, want %d", len(s.A), p.n)
	}

	if !p.f.Contains(s.B) {
		return fmt.Errorf("scalar is in Z/%dZ, want %s", s.B.P(), p.f)
	}

	for j, e := range s.A {
		if !p.f.Contains(e) {
			return fmt.Errorf("vector element %d is in Z/%dZ, want %s", j, e.P(), p.f)
		}
	}

	return nil
}
