package gridlock

import (
	"fmt"
	"math/bits"

	"github.com/tuneinsight/lattigo/v5/ring"
	"golang.org/x/exp/slices"

	"github.com/KAIST-CryptLab/gridlock/utils/bitvec"
)

// SampleSubset draws a subset S of [0, m) where every index is included
// independently with probability 1/m.
func (gl *GridLock) SampleSubset() []int {
	gl.mu.Lock()
	defer gl.mu.Unlock()
	return gl.sampleSubset()
}

func (gl *GridLock) sampleSubset() (subset []int) {
	m := uint64(gl.params.M())
	mask := (uint64(1) << bits.Len64(m-1)) - 1
	for i := uint64(0); i < m; i++ {
		if ring.RandUniform(gl.prng, m, mask) == 0 {
			subset = append(subset, int(i))
		}
	}
	return
}

// Encrypt encrypts msg bit by bit under pk. The row subset is drawn once
// per call and shared by all bits, unless the parameters set SubsetPerBit.
func (gl *GridLock) Encrypt(pk *PublicKey, msg *bitvec.BitVec) (ct *Ciphertext, err error) {

	if err = gl.params.checkPublicKey(pk); err != nil {
		return nil, err
	}

	gl.mu.Lock()
	defer gl.mu.Unlock()

	if msg == nil {
		msg = bitvec.New()
	}

	ct = NewCiphertext(msg.Len())

	if gl.params.SubsetPerBit() {
		msg.Range(func(_ int, b bitvec.Bit) bool {
			ct.Value = append(ct.Value, gl.encryptBit(gl.subsetSum(pk, gl.sampleSubset()), b))
			return true
		})
		return
	}

	sum := gl.subsetSum(pk, gl.sampleSubset())
	msg.Range(func(_ int, b bitvec.Bit) bool {
		ct.Value = append(ct.Value, gl.encryptBit(sum, b))
		return true
	})

	return
}

// EncryptWithSubset encrypts msg under pk using the given row subset for
// every bit. It draws no randomness. An empty subset is valid and yields
// samples (0, bit*floor(p/2)).
func (gl *GridLock) EncryptWithSubset(pk *PublicKey, msg *bitvec.BitVec, subset []int) (ct *Ciphertext, err error) {

	if err = gl.params.checkPublicKey(pk); err != nil {
		return nil, err
	}

	for _, i := range subset {
		if i < 0 || i >= len(pk.Value) {
			return nil, fmt.Errorf("%w: subset index %d out of range [0, %d)", ErrInvalidKeyLength, i, len(pk.Value))
		}
	}

	if msg == nil {
		msg = bitvec.New()
	}

	ct = NewCiphertext(msg.Len())
	sum := gl.subsetSum(pk, subset)
	msg.Range(func(_ int, b bitvec.Bit) bool {
		ct.Value = append(ct.Value, gl.encryptBit(sum, b))
		return true
	})

	return
}

// subsetSum returns (sum_{i in S} a_i, sum_{i in S} b_i).
func (gl *GridLock) subsetSum(pk *PublicKey, subset []int) (sum Sample) {
	f := gl.params.Field()
	sum = Sample{A: f.NewVector(gl.params.N()), B: f.Zero()}
	for _, i := range subset {
		f.AddVector(sum.A, pk.Value[i].A)
		sum.B = sum.B.Add(pk.Value[i].B)
	}
	return
}

func (gl *GridLock) encryptBit(sum Sample, b bitvec.Bit) Sample {
	return Sample{
		A: slices.Clone(sum.A),
		B: sum.B.Add(gl.encoder.Encode(b)),
	}
}
