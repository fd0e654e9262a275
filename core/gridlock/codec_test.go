package gridlock

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v5/utils/sampling"

	"github.com/KAIST-CryptLab/gridlock/utils/bitvec"
)

func TestSerialization(t *testing.T) {

	params, err := NewParametersFromLiteral(N16P263)
	require.NoError(t, err)

	tc := newTestContext(t, params, "codec")

	ct, err := tc.gl.Encrypt(tc.pk, bitvec.FromBytes([]byte{2, 1, 3, 7}))
	require.NoError(t, err)

	t.Run(testString(params, "Serialization/SecretKey"), func(t *testing.T) {
		data, err := tc.sk.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, tc.sk.BinarySize())

		sk := new(SecretKey)
		require.NoError(t, sk.UnmarshalBinary(data))
		require.True(t, tc.sk.Equal(sk))

		var buf bytes.Buffer
		n, err := tc.sk.WriteTo(&buf)
		require.NoError(t, err)
		require.Equal(t, int64(tc.sk.BinarySize()), n)

		sk = new(SecretKey)
		n, err = sk.ReadFrom(&buf)
		require.NoError(t, err)
		require.Equal(t, int64(tc.sk.BinarySize()), n)
		require.True(t, tc.sk.Equal(sk))
	})

	t.Run(testString(params, "Serialization/PublicKey"), func(t *testing.T) {
		data, err := tc.pk.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, tc.pk.BinarySize())

		pk := new(PublicKey)
		require.NoError(t, pk.UnmarshalBinary(data))
		require.True(t, tc.pk.Equal(pk))

		var buf bytes.Buffer
		_, err = tc.pk.WriteTo(&buf)
		require.NoError(t, err)

		pk = new(PublicKey)
		_, err = pk.ReadFrom(&buf)
		require.NoError(t, err)
		require.True(t, tc.pk.Equal(pk))
	})

	t.Run(testString(params, "Serialization/Ciphertext"), func(t *testing.T) {
		data, err := ct.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, ct.BinarySize())

		ctNew := new(Ciphertext)
		require.NoError(t, ctNew.UnmarshalBinary(data))
		require.True(t, ct.Equal(ctNew))

		// the decoded ciphertext still decrypts
		dec, err := tc.gl.Decrypt(tc.sk, ctNew)
		require.NoError(t, err)
		out, err := dec.Bytes()
		require.NoError(t, err)
		require.Equal(t, []byte{2, 1, 3, 7}, out)
	})

	t.Run(testString(params, "Serialization/Empty"), func(t *testing.T) {
		data, err := NewCiphertext(0).MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, 16)

		ctNew := new(Ciphertext)
		require.NoError(t, ctNew.UnmarshalBinary(data))
		require.Equal(t, 0, ctNew.Len())
	})

	t.Run(testString(params, "Serialization/OutOfRange"), func(t *testing.T) {
		data, err := tc.sk.MarshalBinary()
		require.NoError(t, err)

		// first element of the key
		binary.LittleEndian.PutUint64(data[16:], params.P())

		sk := new(SecretKey)
		require.Error(t, sk.UnmarshalBinary(data))
	})

	t.Run(testString(params, "Serialization/Truncated"), func(t *testing.T) {
		data, err := ct.MarshalBinary()
		require.NoError(t, err)

		for _, size := range []int{0, 7, 16, len(data) / 2, len(data) - 1} {
			ctNew := new(Ciphertext)
			require.Error(t, ctNew.UnmarshalBinary(data[:size]), "size=%d", size)
		}
	})

	t.Run(testString(params, "Serialization/Oversized"), func(t *testing.T) {
		data := make([]byte, 16)
		binary.LittleEndian.PutUint64(data, params.P())
		binary.LittleEndian.PutUint64(data[8:], MaxSampleCount+1)

		pk := new(PublicKey)
		require.Error(t, pk.UnmarshalBinary(data))
	})

	t.Run(testString(params, "Serialization/HeaderOnly"), func(t *testing.T) {

		// headers announcing the largest accepted lengths, with no data behind
		samples := make([]byte, 16)
		binary.LittleEndian.PutUint64(samples, params.P())
		binary.LittleEndian.PutUint64(samples[8:], MaxSampleCount)

		vector := make([]byte, 16)
		binary.LittleEndian.PutUint64(vector, params.P())
		binary.LittleEndian.PutUint64(vector[8:], MaxVectorLength)

		var before, after runtime.MemStats
		runtime.GC()
		runtime.ReadMemStats(&before)

		require.Error(t, new(Ciphertext).UnmarshalBinary(samples))
		require.Error(t, new(PublicKey).UnmarshalBinary(samples))
		require.Error(t, new(SecretKey).UnmarshalBinary(vector))

		runtime.ReadMemStats(&after)
		require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
	})

	t.Run(testString(params, "Equal/Nil"), func(t *testing.T) {
		require.False(t, tc.sk.Equal(nil))
		require.False(t, tc.pk.Equal(nil))
		require.False(t, ct.Equal(nil))
		require.False(t, params.Equal(nil))
	})

	t.Run(testString(params, "Serialization/Deterministic"), func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte("codec"))
		require.NoError(t, err)
		gl, err := New(params, prng)
		require.NoError(t, err)

		sk := gl.GenSecretKey()
		a, err := sk.MarshalBinary()
		require.NoError(t, err)
		b, err := tc.sk.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, a, b)
	})
}
