package gridlock

import (
	"github.com/KAIST-CryptLab/gridlock/core/field"
	"github.com/KAIST-CryptLab/gridlock/utils/bitvec"
)

type Decoder struct {
	params Parameters
}

func NewDecoder(params Parameters) *Decoder {
	return &Decoder{params: params}
}

// Decode returns the bit whose anchor is nearest to d using the circular
// distance of the ring. Ties decode to zero.
func (dec *Decoder) Decode(d field.Element) bitvec.Bit {
	if d.DistanceToZero() > d.DistanceTo(dec.params.Field().Half()) {
		return bitvec.One
	}
	return bitvec.Zero
}
