package field

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v5/utils/sampling"
)

func testString(f Field, opname string) string {
	return fmt.Sprintf("%s/p=%d", opname, f.P())
}

func TestField(t *testing.T) {
	for _, p := range []uint64{2, 17, 263, 4099, 4611686018427387847} {
		f, err := NewField(p)
		require.NoError(t, err)

		testArithmetic(f, t)
		testDistance(f, t)
		testFolding(f, t)
		testUniformSampler(f, t)
	}

	t.Run("NewField/InvalidModulus", func(t *testing.T) {
		for _, p := range []uint64{0, 1, MaxModulus, math.MaxUint64} {
			_, err := NewField(p)
			require.Error(t, err)
		}
	})

	t.Run("Element/FieldMismatch", func(t *testing.T) {
		f1, _ := NewField(17)
		f2, _ := NewField(263)
		require.Panics(t, func() { f1.NewElement(1).Add(f2.NewElement(1)) })
		require.Panics(t, func() { f1.NewElement(1).DistanceTo(f2.NewElement(1)) })
	})
}

// elements returns the whole field for small moduli and a spread of
// representatives including the extremes otherwise.
func elements(f Field) (elems []Element) {
	if f.P() <= 263 {
		for v := uint64(0); v < f.P(); v++ {
			elems = append(elems, f.NewElement(v))
		}
		return
	}
	for _, v := range []uint64{0, 1, 2, f.P() / 2, f.P()/2 + 1, f.P() - 2, f.P() - 1, f.P() / 3, 12345} {
		elems = append(elems, f.NewElement(v))
	}
	return
}

func testArithmetic(f Field, t *testing.T) {

	t.Run(testString(f, "Element/Closure"), func(t *testing.T) {
		elems := elements(f)
		for _, a := range elems {
			for _, b := range elems {
				for _, c := range []Element{a.Add(b), a.Sub(b), a.Mul(b)} {
					require.Less(t, c.Uint64(), f.P())
					require.True(t, f.Contains(c))
				}
			}
		}
	})

	t.Run(testString(f, "Element/Identities"), func(t *testing.T) {
		one := f.NewElement(1)
		for _, a := range elements(f) {
			require.True(t, a.Add(f.Zero()).Equal(a))
			require.True(t, a.Mul(one).Equal(a))
			require.True(t, a.Sub(a).IsZero())
			require.True(t, a.Add(a.Neg()).IsZero())
			require.True(t, f.Zero().Sub(a).Equal(a.Neg()))
		}
	})

	t.Run(testString(f, "NewElement/Reduction"), func(t *testing.T) {
		require.Equal(t, uint64(0), f.NewElement(f.P()).Uint64())
		require.Equal(t, uint64(1), f.NewElement(f.P()+1).Uint64())
		require.Equal(t, math.MaxUint64%f.P(), f.NewElement(math.MaxUint64).Uint64())
		require.True(t, f.NewElementInt64(-1).Equal(f.NewElement(f.P()-1)))
		require.True(t, f.NewElementInt64(-int64(f.P())).IsZero())
		require.Less(t, f.NewElementInt64(math.MinInt64).Uint64(), f.P())
		require.True(t, f.NewElementInt64(math.MinInt64).Add(f.NewElementInt64(math.MaxInt64)).Equal(f.NewElementInt64(-1)))
	})

	t.Run(testString(f, "Element/Centered"), func(t *testing.T) {
		for _, k := range []int64{0, 1, -1, 5, -5} {
			if uint64(2*abs(k)) >= f.P() {
				continue
			}
			require.Equal(t, k, f.NewElementInt64(k).Centered())
		}
	})
}

func testDistance(f Field, t *testing.T) {

	half := f.P() / 2

	t.Run(testString(f, "Element/Distance"), func(t *testing.T) {
		elems := elements(f)
		for _, a := range elems {
			require.Zero(t, a.DistanceTo(a))
			require.LessOrEqual(t, a.DistanceToZero(), half)
			require.Equal(t, a.DistanceTo(f.Zero()), a.DistanceToZero())
			for _, b := range elems {
				require.Equal(t, a.DistanceTo(b), b.DistanceTo(a))
				require.Equal(t, a.Sub(b).DistanceToZero(), a.DistanceTo(b))
			}
		}
	})

	t.Run(testString(f, "Element/DistanceWraparound"), func(t *testing.T) {
		last := f.NewElement(f.P() - 1)
		require.Equal(t, uint64(1), last.DistanceToZero())
		require.Equal(t, uint64(1), last.DistanceTo(f.Zero()))
		if f.P() > 2 {
			require.Equal(t, uint64(2), last.DistanceTo(f.NewElement(1)))
		}
	})
}

func testFolding(f Field, t *testing.T) {

	t.Run(testString(f, "Field/Sum"), func(t *testing.T) {
		require.True(t, f.Sum(nil).IsZero())
		elems := elements(f)
		forward := f.Sum(elems)
		reversed := make([]Element, len(elems))
		for i := range elems {
			reversed[len(elems)-1-i] = elems[i]
		}
		require.True(t, forward.Equal(f.Sum(reversed)))
	})

	t.Run(testString(f, "Field/InnerProduct"), func(t *testing.T) {
		a := []Element{f.NewElement(1), f.NewElement(2), f.NewElement(3)}
		b := []Element{f.NewElement(4), f.NewElement(5), f.NewElement(6)}
		ip, err := f.InnerProduct(a, b)
		require.NoError(t, err)
		require.True(t, ip.Equal(f.NewElement(32)))

		_, err = f.InnerProduct(a, b[:2])
		require.Error(t, err)
	})

	t.Run(testString(f, "Field/AddVector"), func(t *testing.T) {
		acc := f.NewVector(3)
		v := []Element{f.NewElement(1), f.NewElement(f.P() - 1), f.Half()}
		f.AddVector(acc, v)
		f.AddVector(acc, v)
		for i := range acc {
			require.True(t, acc[i].Equal(v[i].Add(v[i])))
		}
		require.Panics(t, func() { f.AddVector(acc, v[:1]) })
	})
}

func testUniformSampler(f Field, t *testing.T) {

	t.Run(testString(f, "UniformSampler/Range"), func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte{'u', 'n', 'i'})
		require.NoError(t, err)
		us := NewUniformSampler(prng, f)
		for _, e := range us.ReadVectorNew(1 << 10) {
			require.Less(t, e.Uint64(), f.P())
			require.True(t, f.Contains(e))
		}
	})

	t.Run(testString(f, "UniformSampler/Deterministic"), func(t *testing.T) {
		prng0, err := sampling.NewKeyedPRNG([]byte{0x01})
		require.NoError(t, err)
		prng1, err := sampling.NewKeyedPRNG([]byte{0x01})
		require.NoError(t, err)
		v0 := NewUniformSampler(prng0, f).ReadVectorNew(64)
		v1 := NewUniformSampler(nil, f).WithPRNG(prng1).ReadVectorNew(64)
		require.Equal(t, v0, v1)
	})

	if f.P() > 263 {
		return
	}

	t.Run(testString(f, "UniformSampler/Coverage"), func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte{'c', 'o', 'v'})
		require.NoError(t, err)
		us := NewUniformSampler(prng, f)
		seen := make(map[uint64]int)
		for i := 0; i < int(f.P())*64; i++ {
			seen[us.Read().Uint64()]++
		}
		require.Len(t, seen, int(f.P()))
	})
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
