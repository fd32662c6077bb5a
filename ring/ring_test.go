package ring

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samples = []int64{-37, -8, -6, -1, 0, 1, 2, 3, 4, 6, 12, 17, 48, 96}

// checkContract exercises the identities every backend must satisfy.
func checkContract[T any](t *testing.T, r Ring[T]) {
	t.Helper()

	for _, x := range samples {
		a := r.FromInt(x)

		t.Run("neg/"+r.String(a), func(t *testing.T) {
			assert.True(t, r.IsZero(r.Add(a, r.Neg(a))))
			assert.True(t, r.Equal(r.Sub(r.Zero(), a), r.Neg(a)))
		})

		t.Run("unit_annihilator/"+r.String(a), func(t *testing.T) {
			u, ann := r.UnitAnnihilator(a)
			assert.True(t, r.IsZero(r.Mul(a, ann)))
			if !r.IsZero(a) {
				c := r.Mul(a, u)
				// The canonical associate is idempotent under normalization.
				u2, _ := r.UnitAnnihilator(c)
				assert.True(t, r.IsOne(u2), "canonical %s rescaled by %s", r.String(c), r.String(u2))
			}
		})

		for _, y := range samples {
			b := r.FromInt(y)

			g, s, tt := r.ExtendedGCD(a, b)
			assert.True(t, r.Equal(g, r.Add(r.Mul(s, a), r.Mul(tt, b))),
				"gcdext(%s,%s)", r.String(a), r.String(b))

			if r.IsZero(b) {
				continue
			}
			_, bc := canonical(r, b)
			q, rem := r.FloorDivMod(a, bc)
			assert.True(t, r.Equal(a, r.AddMul(rem, q, bc)))
			assert.True(t, r.IsReduced(rem, bc), "%s mod %s = %s", r.String(a), r.String(bc), r.String(rem))

			prod := r.Mul(a, b)
			if !r.IsZero(prod) {
				assert.True(t, r.Equal(r.Mul(r.DivExact(prod, b), b), prod))
			}

			assert.True(t, r.Equal(r.AddMul(a, b, b), r.Add(a, r.Mul(b, b))))
			assert.True(t, r.Equal(r.SubMul(a, b, b), r.Sub(a, r.Mul(b, b))))
			assert.True(t, r.Equal(r.MulInt(a, y), r.Mul(a, b)))
		}
	}
}

func canonical[T any](r Ring[T], a T) (T, T) {
	u, _ := r.UnitAnnihilator(a)
	return u, r.Mul(a, u)
}

func TestContract(t *testing.T) {
	t.Run("int64", func(t *testing.T) { checkContract[int64](t, Int64{}) })
	t.Run("integer", func(t *testing.T) { checkContract[*big.Int](t, Integer{}) })
	t.Run("mod2k:6", func(t *testing.T) { checkContract[uint64](t, NewMod2k(6)) })
	t.Run("mod2k:64", func(t *testing.T) { checkContract[uint64](t, NewMod2k(64)) })

	r, err := NewModPk(3, 4)
	require.NoError(t, err)
	t.Run("modpk:3:4", func(t *testing.T) { checkContract[uint64](t, r) })
}

func TestInt64Overflow(t *testing.T) {
	r := Int64{}

	assert.PanicsWithError(t, "ring: mul overflows fixed-width backend", func() {
		r.Mul(math.MaxInt64/2+1, 2)
	})
	assert.Panics(t, func() { r.Add(math.MaxInt64, 1) })
	assert.Panics(t, func() { r.Sub(math.MinInt64, 1) })
	assert.Panics(t, func() { r.Neg(math.MinInt64) })

	_, err := r.FromString("99999999999999999999")
	require.ErrorIs(t, err, ErrOverflow)
}

func TestMod2kCanonical(t *testing.T) {
	r := NewMod2k(6)

	u, ann := r.UnitAnnihilator(12) // 12 = 4 * 3
	assert.Equal(t, uint64(4), r.Mul(12, u))
	assert.Equal(t, uint64(16), ann)

	v, odd := r.Valuation(40)
	assert.Equal(t, 3, v)
	assert.Equal(t, uint64(5), odd)

	g, _, _ := r.ExtendedGCD(12, 8)
	assert.Equal(t, uint64(4), g)

	assert.Equal(t, uint64(63), r.FromInt(-1))
	x, err := r.FromString("-65")
	require.NoError(t, err)
	assert.Equal(t, uint64(63), x)
}

func TestModPk(t *testing.T) {
	_, err := NewModPk(4, 2)
	require.ErrorIs(t, err, ErrInvalidRing)

	_, err = NewModPk(2, 64)
	require.ErrorIs(t, err, ErrInvalidRing)

	r, err := NewModPk(5, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), r.FromInt(125))

	u, ann := r.UnitAnnihilator(50) // 50 = 25 * 2
	assert.Equal(t, uint64(25), r.Mul(50, u))
	assert.Equal(t, uint64(5), ann)
	assert.Equal(t, uint64(124), r.FromInt(-1))
	assert.Equal(t, uint64(67), r.FromInt(math.MinInt64))
}

func TestParseSpec(t *testing.T) {
	cases := []struct {
		in   string
		want Spec
		err  bool
	}{
		{in: "int64", want: Spec{Kind: KindInt64}},
		{in: "integer", want: Spec{Kind: KindInteger}},
		{in: "mod2k:6", want: Spec{Kind: KindMod2k, P: 2, K: 6}},
		{in: "modpk:3:4", want: Spec{Kind: KindModPk, P: 3, K: 4}},
		{in: "mod2k:65", err: true},
		{in: "mod2k", err: true},
		{in: "float", err: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSpec(tc.in)
			if tc.err {
				require.ErrorIs(t, err, ErrInvalidRing)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}
