package gridlock

import (
	"github.com/google/go-cmp/cmp"

	"github.com/KAIST-CryptLab/gridlock/core/field"
)

// Sample is an LWE pair (a, b) with a in Z_p^n and b in Z_p.
// Public key rows and ciphertexts are both sequences of samples.
type Sample struct {
	A []field.Element
	B field.Element
}

// CopyNew returns a deep copy of the sample.
func (s Sample) CopyNew() Sample {
	a := make([]field.Element, len(s.A))
	copy(a, s.A)
	return Sample{A: a, B: s.B}
}

// SecretKey is a vector s in Z_p^n.
type SecretKey struct {
	Value []field.Element
}

// CopyNew returns a deep copy of the key.
func (sk SecretKey) CopyNew() *SecretKey {
	v := make([]field.Element, len(sk.Value))
	copy(v, sk.Value)
	return &SecretKey{Value: v}
}

// Equal performs a deep equal. A nil other is never equal.
func (sk SecretKey) Equal(other *SecretKey) bool {
	return other != nil && cmp.Equal(sk.Value, other.Value)
}

// PublicKey is the sequence of m samples (a_i, <a_i, s> + e_i), in
// generation order.
type PublicKey struct {
	Value []Sample
}

// CopyNew returns a deep copy of the key.
func (pk PublicKey) CopyNew() *PublicKey {
	return &PublicKey{Value: copySamples(pk.Value)}
}

// Equal performs a deep equal. A nil other is never equal.
func (pk PublicKey) Equal(other *PublicKey) bool {
	return other != nil && cmp.Equal(pk.Value, other.Value)
}

// Ciphertext holds one sample per plaintext bit, in plaintext order.
type Ciphertext struct {
	Value []Sample
}

// NewCiphertext returns an empty ciphertext with room for bits samples.
func NewCiphertext(bits int) *Ciphertext {
	return &Ciphertext{Value: make([]Sample, 0, bits)}
}

// Len returns the number of encrypted bits.
func (ct Ciphertext) Len() int {
	return len(ct.Value)
}

// CopyNew returns a deep copy of the ciphertext.
func (ct Ciphertext) CopyNew() *Ciphertext {
	return &Ciphertext{Value: copySamples(ct.Value)}
}

// Equal performs a deep equal. A nil other is never equal.
func (ct Ciphertext) Equal(other *Ciphertext) bool {
	return other != nil && cmp.Equal(ct.Value, other.Value)
}

func copySamples(samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	for i := range samples {
		out[i] = samples[i].CopyNew()
	}
	return out
}
