package gridlock

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v5/ring"

	"github.com/KAIST-CryptLab/gridlock/core/field"
)

const (
	// DefaultEpsilon is the slack used to derive m when it is not given.
	DefaultEpsilon = 0.1
	// MaxN bounds the dimension so that 2n^2 stays far below field.MaxModulus.
	MaxN = 1 << 20
	// TailCut is the number of standard deviations kept by a derived noise bound.
	TailCut = 6
)

var (
	// N16P263 is a toy parameter set: n=16, p=263, m=43.
	N16P263 = ParametersLiteral{N: 16, M: 43, P: 263}

	// N64P4099 is the default parameter set: n=64, p=4099, m=594.
	N64P4099 = ParametersLiteral{N: 64, M: 594, P: 4099}
)

// ParametersLiteral is a literal representation of GridLock parameters.
// It has public fields and is used to express unchecked user-defined
// parameters literally into Go programs. The NewParametersFromLiteral
// function is used to generate the actual checked parameters from the
// literal representation.
//
// Zero-valued optional fields are derived:
//   - P: FindPrime(N)
//   - M: floor((1+Epsilon)(N+1) ln P)
//   - Epsilon: DefaultEpsilon
//   - Sigma: alpha*P/sqrt(2 pi) with alpha = 1/(sqrt(N) log2(N)^2)
//   - Bound: ceil(TailCut*Sigma), capped below P/4
//
// Noiseless instances must be created with NewParameters.
type ParametersLiteral struct {
	N            int
	M            int     `json:",omitempty"`
	P            uint64
	Epsilon      float64 `json:",omitempty"`
	Sigma        float64 `json:",omitempty"`
	Bound        int     `json:",omitempty"`
	SubsetPerBit bool    `json:",omitempty"`
}

// Parameters is the checked set of parameters of a GridLock instance.
// It is immutable and can be shared freely.
type Parameters struct {
	n            int
	m            int
	f            field.Field
	sigma        float64
	bound        int
	subsetPerBit bool
}

// NewParameters validates and returns a parameter set.
// sigma = 0 yields a noiseless (insecure) instance.
func NewParameters(n, m int, p uint64, sigma float64, bound int, subsetPerBit bool) (params Parameters, err error) {

	if n < 2 || n > MaxN {
		return Parameters{}, fmt.Errorf("%w: n=%d must be in [2, %d]", ErrInvalidParameters, n, MaxN)
	}

	if m < 1 {
		return Parameters{}, fmt.Errorf("%w: m=%d must be positive", ErrInvalidParameters, m)
	}

	n2 := uint64(n) * uint64(n)
	if p <= n2 || p >= 2*n2 {
		return Parameters{}, fmt.Errorf("%w: p=%d must satisfy n^2=%d < p < 2n^2=%d", ErrInvalidParameters, p, n2, 2*n2)
	}

	if !ring.IsPrime(p) {
		return Parameters{}, fmt.Errorf("%w: p=%d is not prime", ErrInvalidParameters, p)
	}

	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return Parameters{}, fmt.Errorf("%w: sigma=%f must be a finite non-negative number", ErrInvalidParameters, sigma)
	}

	if bound < 0 || uint64(bound) >= p/4 {
		return Parameters{}, fmt.Errorf("%w: bound=%d must be in [0, p/4=%d)", ErrInvalidParameters, bound, p/4)
	}

	var f field.Field
	if f, err = field.NewField(p); err != nil {
		return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	return Parameters{
		n:            n,
		m:            m,
		f:            f,
		sigma:        sigma,
		bound:        bound,
		subsetPerBit: subsetPerBit,
	}, nil
}

// NewParametersFromLiteral derives the unset fields of paramDef and
// returns the checked parameter set.
func NewParametersFromLiteral(paramDef ParametersLiteral) (params Parameters, err error) {

	if paramDef.Epsilon < 0 {
		return Parameters{}, fmt.Errorf("%w: epsilon=%f must be non-negative", ErrInvalidParameters, paramDef.Epsilon)
	}

	if paramDef.Epsilon == 0 {
		paramDef.Epsilon = DefaultEpsilon
	}

	if paramDef.N < 2 {
		return Parameters{}, fmt.Errorf("%w: n=%d must be at least 2", ErrInvalidParameters, paramDef.N)
	}

	if paramDef.P == 0 {
		if paramDef.P, err = FindPrime(paramDef.N); err != nil {
			return Parameters{}, err
		}
	}

	// p is validated by NewParameters, but the derivations below need p > 1.
	if paramDef.P < 2 {
		return Parameters{}, fmt.Errorf("%w: p=%d", ErrInvalidParameters, paramDef.P)
	}

	if paramDef.M == 0 {
		paramDef.M = DeriveM(paramDef.N, paramDef.P, paramDef.Epsilon)
	}

	if paramDef.Sigma == 0 {
		paramDef.Sigma = DeriveSigma(paramDef.N, paramDef.P)
	}

	if paramDef.Bound == 0 {
		paramDef.Bound = DeriveBound(paramDef.Sigma, paramDef.P)
	}

	return NewParameters(paramDef.N, paramDef.M, paramDef.P, paramDef.Sigma, paramDef.Bound, paramDef.SubsetPerBit)
}

// ParametersLiteral returns the fully specified literal of the parameter set.
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral{
		N:            p.n,
		M:            p.m,
		P:            p.f.P(),
		Sigma:        p.sigma,
		Bound:        p.bound,
		SubsetPerBit: p.subsetPerBit,
	}
}

// N returns the dimension of the secret.
func (p Parameters) N() int {
	return p.n
}

// M returns the number of public key rows.
func (p Parameters) M() int {
	return p.m
}

// P returns the modulus.
func (p Parameters) P() uint64 {
	return p.f.P()
}

// Field returns Z/pZ.
func (p Parameters) Field() field.Field {
	return p.f
}

// Sigma returns the width of the noise distribution.
func (p Parameters) Sigma() float64 {
	return p.sigma
}

// Bound returns the truncation bound of the noise distribution.
func (p Parameters) Bound() int {
	return p.bound
}

// SubsetPerBit reports whether Encrypt draws a new row subset for every bit
// instead of once per call.
func (p Parameters) SubsetPerBit() bool {
	return p.subsetPerBit
}

// Equal returns true if the receiver and other are the same parameter set.
func (p Parameters) Equal(other *Parameters) bool {
	return other != nil && p == *other
}

// MarshalJSON returns a JSON representation of the parameter set.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the receiver.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var params ParametersLiteral
	if err = json.Unmarshal(data, &params); err != nil {
		return err
	}
	*p, err = NewParametersFromLiteral(params)
	return
}

func (p Parameters) String() string {
	return fmt.Sprintf("n=%d/m=%d/p=%d/sigma=%.3f/bound=%d", p.n, p.m, p.f.P(), p.sigma, p.bound)
}

// FindPrime returns the smallest prime p with n^2 < p < 2n^2.
func FindPrime(n int) (uint64, error) {
	if n < 2 || n > MaxN {
		return 0, fmt.Errorf("%w: n=%d must be in [2, %d]", ErrInvalidParameters, n, MaxN)
	}
	n2 := uint64(n) * uint64(n)
	for p := n2 + 1; p < 2*n2; p++ {
		if ring.IsPrime(p) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: no prime in (%d, %d)", ErrInvalidParameters, n2, 2*n2)
}

// DeriveM returns floor((1+epsilon)(n+1) ln p).
func DeriveM(n int, p uint64, epsilon float64) int {
	return int(math.Floor((1 + epsilon) * float64(n+1) * math.Log(float64(p))))
}

// DeriveSigma returns alpha*p/sqrt(2 pi) with alpha = 1/(sqrt(n) log2(n)^2).
func DeriveSigma(n int, p uint64) float64 {
	logn := math.Log2(float64(n))
	alpha := 1 / (math.Sqrt(float64(n)) * logn * logn)
	return alpha * float64(p) / math.Sqrt(2*math.Pi)
}

// DeriveBound returns ceil(TailCut*sigma), capped to p/4 - 1.
func DeriveBound(sigma float64, p uint64) int {
	bound := int(math.Ceil(TailCut * sigma))
	if limit := int(p/4) - 1; bound > limit {
		bound = limit
	}
	if bound < 0 {
		bound = 0
	}
	return bound
}
