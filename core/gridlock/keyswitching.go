package gridlock

import (
	"fmt"
	"math/bits"

	"github.com/tuneinsight/lattigo/v5/utils/structs"

	"github.com/KAIST-CryptLab/gridlock/core/field"
)

// DefaultKeySwitchingBase is the decomposition base used when none is given.
const DefaultKeySwitchingBase = 4

// KeySwitchingKey re-encrypts ciphertexts under skIn into ciphertexts
// under skOut.
//
// Value[i][j] holds base-1 samples under skOut, one per non-zero signed
// digit v in [-base/2, base/2), each with phase -v * base^j * skIn[i].
type KeySwitchingKey struct {
	Base   int
	Digits int
	Value  []structs.Matrix[Sample]
}

// KeySwitchingDigits returns the number of signed base-b digits needed to
// decompose any element of Z/pZ, including the final carry.
func KeySwitchingDigits(p uint64, base int) int {
	logBase := bits.Len64(uint64(base)) - 1
	return (bits.Len64(p-1)+logBase-1)/logBase + 1
}

// Decompose writes v as sum_j d_j * base^j with signed digits d_j in
// [-base/2, base/2). base must be a power of two. The last digit absorbs
// the carry and is not signed: for v < p, digits must be at least
// KeySwitchingDigits(p, base).
func Decompose(v uint64, base, digits int) (d []int64) {

	logBase := bits.Len64(uint64(base)) - 1
	mask := uint64(base - 1)
	half := int64(base >> 1)

	d = make([]int64, digits)

	var carry uint64
	for j := range d {

		digit := int64((v & mask) + carry)
		v >>= logBase
		carry = 0

		if digit >= half && j < digits-1 {
			digit -= int64(base)
			carry = 1
		}

		d[j] = digit
	}

	return
}

func digitIndex(d int64, base int) int {
	if d > 0 {
		return int(d) - 1
	}
	return base/2 - int(d) - 2
}

// GenKeySwitchingKey returns a key switching skIn to skOut with the given
// decomposition base. base must be a power of two and at least 4.
func (gl *GridLock) GenKeySwitchingKey(skIn, skOut *SecretKey, base int) (ksk *KeySwitchingKey, err error) {

	params := gl.params
	f := params.Field()

	if base < 4 || base&(base-1) != 0 || uint64(base) > f.P() {
		return nil, fmt.Errorf("%w: key switching base %d must be a power of two in [4, p]", ErrInvalidParameters, base)
	}

	if err = params.checkSecretKey(skIn); err != nil {
		return nil, fmt.Errorf("input key: %w", err)
	}

	if err = params.checkSecretKey(skOut); err != nil {
		return nil, fmt.Errorf("output key: %w", err)
	}

	gl.mu.Lock()
	defer gl.mu.Unlock()

	n := params.N()
	digits := KeySwitchingDigits(f.P(), base)

	ksk = &KeySwitchingKey{
		Base:   base,
		Digits: digits,
		Value:  make([]structs.Matrix[Sample], n),
	}

	for i := 0; i < n; i++ {

		ksk.Value[i] = make(structs.Matrix[Sample], digits)

		// base^j * skIn[i]
		scaled := skIn.Value[i]

		for j := 0; j < digits; j++ {

			ksk.Value[i][j] = make([]Sample, base-1)

			for v := int64(-base / 2); v < int64(base/2); v++ {

				if v == 0 {
					continue
				}

				a := gl.uniform.ReadVectorNew(n)

				var dot field.Element
				if dot, err = f.InnerProduct(a, skOut.Value); err != nil {
					return nil, err
				}

				phase := scaled.Mul(f.NewElementInt64(v)).Neg()

				ksk.Value[i][j][digitIndex(v, base)] = Sample{A: a, B: dot.Add(gl.chi.Read()).Add(phase)}
			}

			scaled = scaled.Mul(f.NewElement(uint64(base)))
		}
	}

	return
}

// KeySwitch returns a ciphertext of the same bits as ct under the output
// key of ksk. It draws no randomness.
func (gl *GridLock) KeySwitch(ct *Ciphertext, ksk *KeySwitchingKey) (ctOut *Ciphertext, err error) {

	if ct == nil {
		return nil, fmt.Errorf("%w: ciphertext is nil", ErrInvalidCiphertext)
	}

	params := gl.params

	if err = params.checkKeySwitchingKey(ksk); err != nil {
		return nil, err
	}

	ctOut = NewCiphertext(ct.Len())

	for k, s := range ct.Value {

		if err = params.checkSample(s); err != nil {
			return nil, fmt.Errorf("%w: sample %d: %w", ErrInvalidCiphertext, k, err)
		}

		out := Sample{A: params.Field().NewVector(params.N()), B: s.B}

		for i, a := range s.A {
			for j, d := range Decompose(a.Uint64(), ksk.Base, ksk.Digits) {
				if d == 0 {
					continue
				}
				entry := ksk.Value[i][j][digitIndex(d, ksk.Base)]
				params.Field().AddVector(out.A, entry.A)
				out.B = out.B.Add(entry.B)
			}
		}

		ctOut.Value = append(ctOut.Value, out)
	}

	return
}

func (p Parameters) checkKeySwitchingKey(ksk *KeySwitchingKey) error {

	if ksk == nil {
		return fmt.Errorf("%w: key switching key is nil", ErrInvalidKeyLength)
	}

	if ksk.Base < 4 || ksk.Base&(ksk.Base-1) != 0 || ksk.Digits != KeySwitchingDigits(p.P(), ksk.Base) {
		return fmt.Errorf("%w: key switching key has base %d and %d digits", ErrInvalidKeyLength, ksk.Base, ksk.Digits)
	}

	if len(ksk.Value) != p.n {
		return fmt.Errorf("%w: key switching key has %d rows, want %d", ErrInvalidKeyLength, len(ksk.Value), p.n)
	}

	for i := range ksk.Value {
		if len(ksk.Value[i]) != ksk.Digits {
			return fmt.Errorf("%w: key switching key row %d has %d digits, want %d", ErrInvalidKeyLength, i, len(ksk.Value[i]), ksk.Digits)
		}
		for j := range ksk.Value[i] {
			if len(ksk.Value[i][j]) != ksk.Base-1 {
				return fmt.Errorf("%w: key switching key entry (%d, %d) has %d samples, want %d", ErrInvalidKeyLength, i, j, len(ksk.Value[i][j]), ksk.Base-1)
			}
			for k := range ksk.Value[i][j] {
				if err := p.checkSample(ksk.Value[i][j][k]); err != nil {
					return fmt.Errorf("%w: key switching key entry (%d, %d, %d): %w", ErrInvalidKeyLength, i, j, k, err)
				}
			}
		}
	}

	return nil
}
