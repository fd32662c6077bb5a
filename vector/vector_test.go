package vector

import (
	"math/big"
	"testing"

	"github.com/hupe1980/nilq/ring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sv(pairs ...int64) Sparse[int64] {
	out := make(Sparse[int64], 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Entry[int64]{Gen: int(pairs[i]), Coef: pairs[i+1]})
	}
	return out
}

func TestCombine(t *testing.T) {
	r := ring.Int64{}

	t.Run("Sum", func(t *testing.T) {
		got := Sum[int64](r, sv(1, 2, 3, 1), sv(2, 5, 3, -1, 7, 4))
		assert.Equal(t, sv(1, 2, 2, 5, 7, 4), got)
		assert.True(t, got.Valid(r))
	})

	t.Run("Commutative", func(t *testing.T) {
		u, v := sv(1, 3, 4, -2, 9, 1), sv(2, 1, 4, 2, 10, 5)
		assert.Equal(t, Sum[int64](r, u, v), Sum[int64](r, v, u))
	})

	t.Run("Cancel", func(t *testing.T) {
		v := sv(1, 3, 4, -2, 9, 1)
		assert.Nil(t, Sum[int64](r, v, Prod[int64](r, -1, v)))
		assert.Nil(t, Diff[int64](r, v, v))
	})

	t.Run("ProdZero", func(t *testing.T) {
		assert.Nil(t, Prod[int64](r, 0, sv(1, 3)))
	})

	t.Run("ProdDropsZeroDivisors", func(t *testing.T) {
		m := ring.NewMod2k(3)
		v := Sparse[uint64]{{Gen: 1, Coef: 4}, {Gen: 2, Coef: 3}}
		assert.Equal(t, Sparse[uint64]{{Gen: 2, Coef: 6}}, Prod[uint64](m, 2, v))
	})
}

func TestSparseHelpers(t *testing.T) {
	r := ring.Int64{}
	v := sv(2, 1, 5, -3, 8, 7)

	assert.Equal(t, 2, v.Head())
	assert.Equal(t, 8, v.Last())
	assert.Equal(t, int64(-3), v.Coef(r, 5))
	assert.Equal(t, int64(0), v.Coef(r, 6))

	lo, hi := v.Split(5)
	assert.Equal(t, sv(2, 1), lo)
	assert.Equal(t, sv(5, -3, 8, 7), hi)

	assert.Equal(t, sv(3, 1, 6, -3, 9, 7), v.Map(func(g int) int { return g + 1 }))
	assert.Equal(t, "a - 3*b + 7*c", Format[int64](r, v, func(g int) string {
		return map[int]string{2: "a", 5: "b", 8: "c"}[g]
	}))
	assert.False(t, sv(2, 1, 2, 1).Valid(r))
	assert.False(t, sv(2, 0).Valid(r))
}

func TestHollow(t *testing.T) {
	r := ring.Int64{}

	t.Run("Traversal", func(t *testing.T) {
		h := NewHollow[int64](r, 10000)
		gens := []int{1, 63, 64, 65, 4095, 4096, 4097, 9000, 10000}
		for i, g := range gens {
			h.Set(g, int64(i+1))
		}
		require.Equal(t, len(gens), h.Len())

		var fwd []int
		for g := h.First(); g != End; g = h.Next(g) {
			fwd = append(fwd, g)
		}
		assert.Equal(t, gens, fwd)

		var back []int
		for g := h.Last(); g != End; g = h.Prev(g) {
			back = append(back, g)
		}
		for i, j := 0, len(back)-1; i < j; i, j = i+1, j-1 {
			back[i], back[j] = back[j], back[i]
		}
		assert.Equal(t, gens, back)
	})

	t.Run("AutoUnlink", func(t *testing.T) {
		h := NewHollow[int64](r, 200)
		h.Set(70, 5)
		h.Add(70, -5)
		assert.Equal(t, 0, h.Len())
		assert.Equal(t, End, h.First())
		assert.Equal(t, int64(0), h.Get(70))
	})

	t.Run("RoundTrip", func(t *testing.T) {
		h := NewHollow[int64](r, 300)
		v := sv(3, 2, 130, -1, 299, 4)
		h.Load(v)
		h.AddSparse(2, sv(3, -1, 131, 1))
		assert.Equal(t, sv(130, -1, 131, 2, 299, 4), h.ToSparse())

		h.Scale(3)
		assert.Equal(t, sv(130, -3, 131, 6, 299, 12), h.Take())
		assert.Equal(t, 0, h.Len())
		assert.Nil(t, h.ToSparse())
	})

	t.Run("BigIntZeroDefault", func(t *testing.T) {
		h := NewHollow[*big.Int](ring.Integer{}, 8)
		assert.Equal(t, 0, h.Get(3).Sign())
		h.Add(3, ring.Integer{}.FromInt(4))
		assert.Equal(t, int64(4), h.Get(3).Int64())
	})
}
