package field

import (
	"fmt"
	"math/bits"
	"strconv"

	"github.com/tuneinsight/lattigo/v5/ring"
)

// Element is an integer modulo p, stored as its representative in [0, p-1].
// Elements are immutable values. Operating on elements of two different
// fields panics.
type Element struct {
	v uint64
	p uint64
}

// Uint64 returns the representative of e in [0, p-1].
func (e Element) Uint64() uint64 {
	return e.v
}

// P returns the modulus of the field e belongs to.
func (e Element) P() uint64 {
	return e.p
}

// Add returns e + o mod p.
func (e Element) Add(o Element) Element {
	e.mustMatch(o)
	return Element{v: ring.CRed(e.v+o.v, e.p), p: e.p}
}

// Sub returns e - o mod p, computed as (e + p - o) mod p.
func (e Element) Sub(o Element) Element {
	e.mustMatch(o)
	return Element{v: ring.CRed(e.v+e.p-o.v, e.p), p: e.p}
}

// Mul returns e * o mod p.
func (e Element) Mul(o Element) Element {
	e.mustMatch(o)
	hi, lo := bits.Mul64(e.v, o.v)
	return Element{v: bits.Rem64(hi, lo, e.p), p: e.p}
}

// Neg returns -e mod p.
func (e Element) Neg() Element {
	return Element{v: ring.CRed(e.p-e.v, e.p), p: e.p}
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool {
	return e.v == 0
}

// Equal reports whether e and o are the same element of the same field.
func (e Element) Equal(o Element) bool {
	return e.p == o.p && e.v == o.v
}

// Cmp compares the representatives of e and o and returns -1, 0 or +1.
func (e Element) Cmp(o Element) int {
	e.mustMatch(o)
	switch {
	case e.v < o.v:
		return -1
	case e.v > o.v:
		return 1
	default:
		return 0
	}
}

// DistanceToZero returns min(v, p-v), the distance from e to 0 on the ring.
func (e Element) DistanceToZero() uint64 {
	return min(e.v, e.p-e.v)
}

// DistanceTo returns the circular distance min(|e-o|, p-|e-o|).
func (e Element) DistanceTo(o Element) uint64 {
	var d uint64
	switch e.Cmp(o) {
	case -1:
		d = o.v - e.v
	case 1:
		d = e.v - o.v
	default:
		return 0
	}
	return min(d, e.p-d)
}

// Centered returns the representative of e in (-p/2, p/2].
func (e Element) Centered() int64 {
	if e.v > e.p>>1 {
		return -int64(e.p - e.v)
	}
	return int64(e.v)
}

func (e Element) String() string {
	return strconv.FormatUint(e.v, 10)
}

func (e Element) mustMatch(o Element) {
	if e.p != o.p {
		panic(fmt.Errorf("field mismatch: Z/%dZ and Z/%dZ", e.p, o.p))
	}
}
