package gridlock

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v5/utils/sampling"

	"github.com/KAIST-CryptLab/gridlock/utils/bitvec"
)

func TestDecompose(t *testing.T) {

	for _, p := range []uint64{263, 4099} {
		for _, base := range []int{4, 8, 16} {

			digits := KeySwitchingDigits(p, base)

			for v := uint64(0); v < p; v++ {
				d := Decompose(v, base, digits)
				require.Len(t, d, digits)

				var sum, pow int64 = 0, 1
				for j, dj := range d {
					if j < digits-1 {
						require.GreaterOrEqual(t, dj, -int64(base/2))
						require.Less(t, dj, int64(base/2))
					} else {
						require.Contains(t, []int64{0, 1}, dj)
					}
					sum += dj * pow
					pow *= int64(base)
				}
				require.Equal(t, int64(v), sum, "v=%d base=%d", v, base)
			}
		}
	}

	require.Equal(t, 6, KeySwitchingDigits(263, 4))
	require.Equal(t, 8, KeySwitchingDigits(4099, 4))
}

func TestKeySwitching(t *testing.T) {

	for _, paramsLit := range testParamsLiteral {

		params, err := NewParametersFromLiteral(paramsLit)
		require.NoError(t, err)

		prng, err := sampling.NewKeyedPRNG([]byte("keyswitching"))
		require.NoError(t, err)

		gl, err := New(params, prng)
		require.NoError(t, err)

		skIn, pkIn := gl.GenKeyPair()
		skOut := gl.GenSecretKey()

		t.Run(testString(params, "KeySwitch"), func(t *testing.T) {
			ksk, err := gl.GenKeySwitchingKey(skIn, skOut, DefaultKeySwitchingBase)
			require.NoError(t, err)
			require.Len(t, ksk.Value, params.N())
			require.Len(t, ksk.Value[0], ksk.Digits)
			require.Len(t, ksk.Value[0][0], DefaultKeySwitchingBase-1)

			pt := bitvec.FromBytes([]byte{2, 1, 3, 7, 0xaa, 0x55})

			ct, err := gl.Encrypt(pkIn, pt)
			require.NoError(t, err)

			ctOut, err := gl.KeySwitch(ct, ksk)
			require.NoError(t, err)
			require.Equal(t, ct.Len(), ctOut.Len())

			dec, err := gl.Decrypt(skOut, ctOut)
			require.NoError(t, err)
			require.True(t, pt.Equal(dec))
		})

		t.Run(testString(params, "KeySwitch/Invalid"), func(t *testing.T) {
			for _, base := range []int{0, 2, 3, 6} {
				_, err := gl.GenKeySwitchingKey(skIn, skOut, base)
				require.ErrorIs(t, err, ErrInvalidParameters)
			}

			_, err := gl.GenKeySwitchingKey(skIn, &SecretKey{}, DefaultKeySwitchingBase)
			require.ErrorIs(t, err, ErrInvalidKeyLength)

			_, err = gl.KeySwitch(NewCiphertext(0), nil)
			require.ErrorIs(t, err, ErrInvalidKeyLength)

			_, err = gl.KeySwitch(NewCiphertext(0), &KeySwitchingKey{Base: 1})
			require.ErrorIs(t, err, ErrInvalidKeyLength)

			_, err = gl.KeySwitch(nil, &KeySwitchingKey{})
			require.ErrorIs(t, err, ErrInvalidCiphertext)
		})
	}
}
