package gridlock

import (
	"fmt"

	"github.com/KAIST-CryptLab/gridlock/core/field"
)

// GenSecretKey returns a new secret key of n uniform elements.
func (gl *GridLock) GenSecretKey() (sk *SecretKey) {
	gl.mu.Lock()
	defer gl.mu.Unlock()
	return &SecretKey{Value: gl.uniform.ReadVectorNew(gl.params.N())}
}

// GenPublicKey returns the m rows (a_i, <a_i, s> + e_i) for the secret key sk,
// with a_i uniform in Z_p^n and e_i drawn from the noise distribution.
func (gl *GridLock) GenPublicKey(sk *SecretKey) (pk *PublicKey, err error) {

	params := gl.params

	if err = params.checkSecretKey(sk); err != nil {
		return nil, err
	}

	gl.mu.Lock()
	defer gl.mu.Unlock()

	m := params.M()

	a := make([][]field.Element, m)
	for i := range a {
		a[i] = gl.uniform.ReadVectorNew(params.N())
	}

	e := gl.chi.ReadVectorNew(m)

	pk = &PublicKey{Value: make([]Sample, m)}
	for i := range pk.Value {

		var dot field.Element
		if dot, err = params.Field().InnerProduct(a[i], sk.Value); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		pk.Value[i] = Sample{A: a[i], B: dot.Add(e[i])}
	}

	return
}

// GenKeyPair returns a new secret key and its public key.
func (gl *GridLock) GenKeyPair() (sk *SecretKey, pk *PublicKey) {
	sk = gl.GenSecretKey()
	var err error
	if pk, err = gl.GenPublicKey(sk); err != nil {
		// Sanity check, sk is generated with the right shape.
		panic(err)
	}
	return
}
