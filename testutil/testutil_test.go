package testutil

import (
	"testing"

	"github.com/hupe1980/nilq/fpres"
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/ring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	a, b := NewRNG(4711), NewRNG(4711)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Coef(5), b.Coef(5))
	}

	a.Reset()
	first := a.Intn(1000)
	a.Reset()
	assert.Equal(t, first, a.Intn(1000))
	assert.Equal(t, int64(4711), a.Seed())
}

func TestRandomSparse(t *testing.T) {
	r := ring.Int64{}
	v := RandomSparse[int64](NewRNG(1), r, 64, 0.3, 4)

	require.NotEmpty(t, v)
	assert.True(t, v.Valid(r))
	for _, x := range v {
		assert.LessOrEqual(t, x.Gen, 64)
		assert.NotZero(t, x.Coef)
		assert.LessOrEqual(t, x.Coef, int64(4))
		assert.GreaterOrEqual(t, x.Coef, int64(-4))
	}
}

func TestLiePresentation_Parses(t *testing.T) {
	rng := NewRNG(7)
	for i := 0; i < 10; i++ {
		src := rng.LiePresentation([]string{"a", "b", "c"}, 3)
		fp, err := fpres.Parse("random", []byte(src), pc.LieRing)
		require.NoError(t, err, src)
		assert.Len(t, fp.Relators, 3)
	}
}
