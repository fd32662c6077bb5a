package relmat

import (
	"math/big"
	"testing"

	"github.com/hupe1980/nilq/internal/arena"
	"github.com/hupe1980/nilq/ring"
	"github.com/hupe1980/nilq/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	Gen  int
	Coef int64
}

func rowsOf[T any](t *testing.T, r ring.Ring[T], m *Matrix[T]) [][]pair {
	t.Helper()
	var out [][]pair
	for _, row := range m.Rows() {
		var ps []pair
		for _, e := range row {
			c, ok := r.ToInt(e.Coef)
			require.True(t, ok)
			ps = append(ps, pair{e.Gen, c})
		}
		out = append(out, ps)
	}
	return out
}

func vec[T any](r ring.Ring[T], pairs ...int64) vector.Sparse[T] {
	h := vector.NewHollow(r, 256)
	for i := 0; i < len(pairs); i += 2 {
		h.Add(int(pairs[i]), r.FromInt(pairs[i+1]))
	}
	return h.ToSparse()
}

func TestAddRow_Idempotent(t *testing.T) {
	r := ring.Int64{}
	a := arena.New[int64](r, 16)
	m := New[int64](r, a, 5, 4, 0)

	v := vec[int64](r, 5, 2, 6, 3, 8, -1)
	assert.False(t, m.AddRow(v))
	before := rowsOf[int64](t, r, m)

	assert.True(t, m.AddRow(v), "second insertion is already in the row space")
	assert.Equal(t, before, rowsOf[int64](t, r, m))
	assert.True(t, m.AddRow(vec[int64](r, 5, -4, 6, -6, 8, 2)), "multiples are redundant")
	assert.Equal(t, 0, a.Depth())

	st := m.Stats()
	assert.Equal(t, uint64(1), st.Inserts)
	assert.Equal(t, uint64(2), st.Redundant)
}

func TestAddRow_Euclid(t *testing.T) {
	r := ring.Int64{}
	a := arena.New[int64](r, 8)
	m := New[int64](r, a, 1, 2, 0)

	m.AddRow(vec[int64](r, 1, 4, 2, 1))
	m.AddRow(vec[int64](r, 1, 6))
	m.Hermite()

	// The lattice spanned by (4,1) and (6,0) has Hermite basis (2,2), (0,3).
	assert.Equal(t, [][]pair{{{1, 2}, {2, 2}}, {{2, 3}}}, rowsOf[int64](t, r, m))
}

func TestAddRow_ZeroDivisor(t *testing.T) {
	r := ring.NewMod2k(3)
	a := arena.New[uint64](r, 4)
	m := New[uint64](r, a, 1, 2, 0)

	assert.False(t, m.AddRow(vec[uint64](r, 1, 6, 2, 3)))
	m.Hermite()

	// 6 = 2*3 with 3 a unit; 4*(2,1) = (0,4) is forced into the row space.
	assert.Equal(t, [][]pair{{{1, 2}, {2, 1}}, {{2, 4}}}, rowsOf[uint64](t, r, m))
	assert.True(t, m.AddRow(vec[uint64](r, 2, 4)))
}

func TestPipeline_RingGenerality(t *testing.T) {
	input := [][]int64{
		{1, 4, 2, 2, 3, 1},
		{1, 6, 2, 1},
		{2, 2, 3, 3},
		{1, 2, 4, 5},
		{1, 6, 2, 1},
	}
	want := [][]pair{
		{{1, 2}, {4, 1}},
		{{2, 1}, {4, 1}},
		{{3, 1}},
		{{4, 2}},
	}

	t.Run("integers with 64-torsion", func(t *testing.T) {
		r := ring.Integer{}
		a := arena.New[*big.Int](r, 8)
		m := New[*big.Int](r, a, 1, 4, r.FromInt(64))
		for _, in := range input {
			m.Queue(vec[*big.Int](r, in...))
		}
		assert.Equal(t, uint64(4), m.Stats().Queued, "duplicate row is queued once")
		assert.Zero(t, m.Stats().Flushes)
		m.Hermite()
		assert.Equal(t, uint64(1), m.Stats().Flushes)
		assert.Equal(t, want, rowsOf[*big.Int](t, r, m))
	})

	t.Run("mod 2^6", func(t *testing.T) {
		r := ring.NewMod2k(6)
		a := arena.New[uint64](r, 8)
		m := New[uint64](r, a, 1, 4, 0)
		for _, in := range input {
			m.Queue(vec[uint64](r, in...))
		}
		m.Hermite()
		assert.Equal(t, want, rowsOf[uint64](t, r, m))
		assert.Equal(t, uint64(1), m.Stats().Duplicates)
	})
}

func TestQueue_ForcedFlush(t *testing.T) {
	r := ring.Int64{}
	a := arena.New[int64](r, 200)
	m := New[int64](r, a, 1, 100, 0, WithQueueFactor(1))

	for g := 1; g <= 100; g++ {
		m.Queue(vec[int64](r, int64(g), 1))
	}
	assert.Zero(t, m.Stats().Flushes)
	m.Queue(vec[int64](r, 1, 1, 2, 1))
	assert.Equal(t, uint64(1), m.Stats().Flushes, "queue beyond the limit is flushed")
	assert.Equal(t, 100, m.Len())
	assert.Equal(t, uint64(1), m.Stats().Flushes)

	assert.Panics(t, func() { m.Queue(vec[int64](r, 150, 1)) })
}
