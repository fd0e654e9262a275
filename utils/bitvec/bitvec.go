// Package bitvec implements an ordered, append-only sequence of bits.
package bitvec

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Bit is a single binary digit.
type Bit uint8

const (
	Zero Bit = 0
	One  Bit = 1
)

// BitVec is a sequence of bits in insertion order.
// Bytes are unpacked most significant bit first.
type BitVec struct {
	bits []Bit
}

// New returns an empty BitVec.
func New() *BitVec {
	return &BitVec{}
}

// FromBytes unpacks b into a BitVec of length 8*len(b).
func FromBytes(b []byte) *BitVec {
	bv := &BitVec{bits: make([]Bit, 0, len(b)<<3)}
	for _, c := range b {
		for i := 7; i >= 0; i-- {
			bv.bits = append(bv.bits, Bit((c>>i)&1))
		}
	}
	return bv
}

// Push appends b at the end of the sequence.
func (bv *BitVec) Push(b Bit) {
	bv.bits = append(bv.bits, b&1)
}

// Len returns the number of bits.
func (bv *BitVec) Len() int {
	return len(bv.bits)
}

// At returns the i-th bit.
func (bv *BitVec) At(i int) Bit {
	return bv.bits[i]
}

// Range calls fn on each bit from first to last and stops when fn returns false.
func (bv *BitVec) Range(fn func(i int, b Bit) bool) {
	for i, b := range bv.bits {
		if !fn(i, b) {
			return
		}
	}
}

// Bytes packs the sequence back into bytes.
// It returns an error if the length is not a multiple of 8.
func (bv *BitVec) Bytes() ([]byte, error) {
	if len(bv.bits)&7 != 0 {
		return nil, fmt.Errorf("cannot pack %d bits: length is not a multiple of 8", len(bv.bits))
	}
	out := make([]byte, len(bv.bits)>>3)
	for i, b := range bv.bits {
		out[i>>3] |= byte(b) << (7 - i&7)
	}
	return out, nil
}

// Equal reports whether both sequences hold the same bits in the same order.
func (bv *BitVec) Equal(other *BitVec) bool {
	return slices.Equal(bv.bits, other.bits)
}

func (bv *BitVec) String() string {
	var sb strings.Builder
	for _, b := range bv.bits {
		sb.WriteByte('0' + byte(b))
	}
	return sb.String()
}
