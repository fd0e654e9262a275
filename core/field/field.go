// Package field implements arithmetic over the prime field Z/pZ.
//
// A Field carries the modulus explicitly: every Element is created through
// a Field and remembers its modulus, so that elements of independently
// parameterized schemes can coexist in the same process.
package field

import (
	"fmt"
)

// MaxModulus is the exclusive upper bound on the modulus of a Field.
// Below it the sum of two representatives cannot overflow an uint64.
const MaxModulus = uint64(1) << 62

// Field is the ring of integers modulo p.
// The zero value is not a valid Field, use NewField.
type Field struct {
	p uint64
}

// NewField returns the field of integers modulo p.
// NewField does not test p for primality.
func NewField(p uint64) (f Field, err error) {
	if p < 2 || p >= MaxModulus {
		return Field{}, fmt.Errorf("invalid modulus %d: must be in [2, 2^62)", p)
	}
	return Field{p: p}, nil
}

// P returns the modulus.
func (f Field) P() uint64 {
	return f.p
}

// NewElement returns v mod p.
func (f Field) NewElement(v uint64) Element {
	return Element{v: v % f.p, p: f.p}
}

// NewElementInt64 returns v mod p, mapping negative values to p - (|v| mod p).
func (f Field) NewElementInt64(v int64) Element {
	if v >= 0 {
		return f.NewElement(uint64(v))
	}
	// -(v+1) is representable for every int64 including math.MinInt64
	abs := (uint64(-(v + 1)) + 1) % f.p
	if abs == 0 {
		return f.Zero()
	}
	return Element{v: f.p - abs, p: f.p}
}

// Zero returns the additive identity.
func (f Field) Zero() Element {
	return Element{v: 0, p: f.p}
}

// Half returns the element floor(p/2).
func (f Field) Half() Element {
	return Element{v: f.p / 2, p: f.p}
}

// Contains reports whether e was created by a field with the same modulus.
func (f Field) Contains(e Element) bool {
	return e.p == f.p
}

// NewVector returns a vector of n zeros.
func (f Field) NewVector(n int) (vec []Element) {
	vec = make([]Element, n)
	for i := range vec {
		vec[i] = f.Zero()
	}
	return
}

// Sum folds elems under Add, starting from Zero.
func (f Field) Sum(elems []Element) (sum Element) {
	sum = f.Zero()
	for _, e := range elems {
		sum = sum.Add(e)
	}
	return
}

// InnerProduct returns sum_i a[i]*b[i].
func (f Field) InnerProduct(a, b []Element) (Element, error) {
	if len(a) != len(b) {
		return f.Zero(), fmt.Errorf("cannot InnerProduct: len(a)=%d != len(b)=%d", len(a), len(b))
	}
	sum := f.Zero()
	for i := range a {
		sum = sum.Add(a[i].Mul(b[i]))
	}
	return sum, nil
}

// AddVector sets acc[i] = acc[i] + v[i] for every i.
// acc and v must have the same length.
func (f Field) AddVector(acc, v []Element) {
	if len(acc) != len(v) {
		panic(fmt.Errorf("cannot AddVector: len(acc)=%d != len(v)=%d", len(acc), len(v)))
	}
	for i := range acc {
		acc[i] = acc[i].Add(v[i])
	}
}

func (f Field) String() string {
	return fmt.Sprintf("Z/%dZ", f.p)
}
