package gridlock

import (
	"github.com/KAIST-CryptLab/gridlock/core/field"
	"github.com/KAIST-CryptLab/gridlock/utils/bitvec"
)

// Encoder maps a plaintext bit to its anchor on the ring: 0 or floor(p/2).
type Encoder struct {
	params Parameters
}

func NewEncoder(params Parameters) *Encoder {
	return &Encoder{params: params}
}

func (enc *Encoder) Encode(b bitvec.Bit) field.Element {
	if b == bitvec.One {
		return enc.params.Field().Half()
	}
	return enc.params.Field().Zero()
}
