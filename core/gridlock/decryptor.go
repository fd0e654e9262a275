package gridlock

import (
	"fmt"

	"github.com/KAIST-CryptLab/gridlock/core/field"
	"github.com/KAIST-CryptLab/gridlock/utils/bitvec"
)

// Decryptor decrypts ciphertexts under a fixed secret key.
// It holds no randomness and is safe for concurrent use as long as the
// secret key is not modified.
type Decryptor struct {
	params  Parameters
	sk      *SecretKey
	decoder *Decoder
}

// NewDecryptor returns a Decryptor for sk.
func NewDecryptor(params Parameters, sk *SecretKey) (*Decryptor, error) {
	if err := params.checkSecretKey(sk); err != nil {
		return nil, err
	}
	return &Decryptor{
		params:  params,
		sk:      sk,
		decoder: NewDecoder(params),
	}, nil
}

// Decrypt returns the bits of ct in order.
func (dec *Decryptor) Decrypt(ct *Ciphertext) (msg *bitvec.BitVec, err error) {

	if ct == nil {
		return nil, fmt.Errorf("%w: ciphertext is nil", ErrInvalidCiphertext)
	}

	msg = bitvec.New()
	for i := range ct.Value {
		var b bitvec.Bit
		if b, err = dec.DecryptSample(ct.Value[i]); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		msg.Push(b)
	}

	return
}

// DecryptSample computes d = b - <a, s> and decodes it to the nearest anchor.
func (dec *Decryptor) DecryptSample(s Sample) (bitvec.Bit, error) {

	if err := dec.params.checkSample(s); err != nil {
		return bitvec.Zero, fmt.Errorf("%w: %w", ErrInvalidCiphertext, err)
	}

	dot, err := dec.params.Field().InnerProduct(s.A, dec.sk.Value)
	if err != nil {
		return bitvec.Zero, fmt.Errorf("%w: %w", ErrInvalidCiphertext, err)
	}

	return dec.decoder.Decode(s.B.Sub(dot)), nil
}

// Phase returns b - <a, s> for every sample of ct, that is the encoded bit
// plus the accumulated noise.
func (dec *Decryptor) Phase(ct *Ciphertext) (phase []field.Element, err error) {
	if ct == nil {
		return nil, fmt.Errorf("%w: ciphertext is nil", ErrInvalidCiphertext)
	}
	phase = make([]field.Element, len(ct.Value))
	for i, s := range ct.Value {
		if err = dec.params.checkSample(s); err != nil {
			return nil, fmt.Errorf("%w: sample %d: %w", ErrInvalidCiphertext, i, err)
		}
		dot, _ := dec.params.Field().InnerProduct(s.A, dec.sk.Value)
		phase[i] = s.B.Sub(dot)
	}
	return
}

// Decrypt decrypts ct with sk. It draws no randomness and takes no lock.
func (gl *GridLock) Decrypt(sk *SecretKey, ct *Ciphertext) (*bitvec.BitVec, error) {
	dec, err := NewDecryptor(gl.params, sk)
	if err != nil {
		return nil, err
	}
	return dec.Decrypt(ct)
}
