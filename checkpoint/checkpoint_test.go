package checkpoint

import (
	"context"
	"math/big"
	"testing"

	"github.com/hupe1980/nilq/blobstore"
	"github.com/hupe1980/nilq/fpres"
	"github.com/hupe1980/nilq/internal/compress"
	"github.com/hupe1980/nilq/internal/engine"
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/ring"
	"github.com/hupe1980/nilq/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quotient runs the engine for the given number of classes and returns the
// engine, which still owns the presentation.
func quotient[T any](t *testing.T, r ring.Ring[T], sig pc.Signature, src string, classes int) *engine.Engine[T] {
	t.Helper()
	fp, err := fpres.Parse("", []byte(src), sig)
	require.NoError(t, err)
	e, err := engine.New(pc.New(r, sig, fp.Generators), fp.Relators, engine.Config[T]{TorsionExp: r.Zero()})
	require.NoError(t, err)
	t.Cleanup(e.Close)
	for c := 0; c < classes; c++ {
		_, err := e.Step(context.Background())
		require.NoError(t, err)
	}
	return e
}

func requireSamePresentation[T any](t *testing.T, want, got *pc.Presentation[T]) {
	t.Helper()
	r := want.Ring
	require.Equal(t, want.Signature, got.Signature)
	require.Equal(t, want.GenNames, got.GenNames)
	require.Equal(t, want.Class, got.Class)
	require.Equal(t, want.NrPcGens, got.NrPcGens)
	for g := 1; g <= want.NrPcGens; g++ {
		assert.Equal(t, want.Weight[g], got.Weight[g], "weight %d", g)
		assert.Equal(t, want.Def[g], got.Def[g], "definition %d", g)
		assert.True(t, r.Equal(want.Exponent[g], got.Exponent[g]), "exponent %d", g)
		assert.True(t, r.Equal(want.Annihilator[g], got.Annihilator[g]), "annihilator %d", g)
		assert.True(t, vector.Equal(r, want.Power[g], got.Power[g]), "power %d", g)
		for i := 1; i < g; i++ {
			assert.True(t, vector.Equal(r, want.Comm[g][i], got.Comm[g][i]), "commutator [%d,%d]", g, i)
		}
	}
	for x := range want.Epimorphism {
		assert.True(t, vector.Equal(r, want.Epimorphism[x], got.Epimorphism[x]), "image %d", x)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Run("lie int64", func(t *testing.T) {
		p := quotient(t, ring.Ring[int64](ring.Int64{}), pc.LieRing, "< a, b | 3*[b, a, a] >", 4).Presentation()
		data, err := Marshal(p)
		require.NoError(t, err)

		got, err := Unmarshal(data, ring.Ring[int64](ring.Int64{}))
		require.NoError(t, err)
		requireSamePresentation(t, p, got)
	})

	t.Run("group integer", func(t *testing.T) {
		r := ring.Ring[*big.Int](ring.Integer{})
		p := quotient(t, r, pc.Group, "< a, b | a^4, b^2, [b, a]^2 >", 3).Presentation()
		data, err := Marshal(p)
		require.NoError(t, err)

		got, err := Unmarshal(data, r)
		require.NoError(t, err)
		requireSamePresentation(t, p, got)
	})
}

func TestMarshal_Mode(t *testing.T) {
	r := ring.Ring[int64](ring.Int64{})
	fp, err := fpres.Parse("", []byte("< a, b | >"), pc.LieRing)
	require.NoError(t, err)
	e, err := engine.New(pc.New(r, pc.LieRing, fp.Generators), fp.Relators, engine.Config[int64]{Graded: true, TorsionExp: 8})
	require.NoError(t, err)
	defer e.Close()
	_, err = e.Step(context.Background())
	require.NoError(t, err)

	data, err := Marshal(e.Presentation())
	require.NoError(t, err)
	got, err := Unmarshal(data, r)
	require.NoError(t, err)
	assert.True(t, got.Graded)
	assert.Equal(t, int64(8), got.DefaultExponent)
}

func TestUnmarshal_BrokenTable(t *testing.T) {
	p := quotient(t, ring.Ring[int64](ring.Int64{}), pc.LieRing, "< a, b | >", 2).Presentation().Clone()
	p.Weight[1] = 2

	data, err := Marshal(p)
	require.NoError(t, err)
	_, err = Unmarshal(data, ring.Ring[int64](ring.Int64{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator 2 has weight 1 out of order")
}

func TestUnmarshal_Mismatch(t *testing.T) {
	p := quotient(t, ring.Ring[int64](ring.Int64{}), pc.LieRing, "< a, b | >", 2).Presentation()
	data, err := Marshal(p)
	require.NoError(t, err)

	_, err = Unmarshal(data, ring.Ring[*big.Int](ring.Integer{}))
	assert.ErrorIs(t, err, ErrMismatch)

	_, err = Unmarshal([]byte(`{"version":1,"ring":"int64","signature":"lie","nr_pc_gens":2,"weight":[0]}`), ring.Ring[int64](ring.Int64{}))
	assert.Error(t, err)

	_, err = Unmarshal([]byte("not json"), ring.Ring[int64](ring.Int64{}))
	assert.Error(t, err)
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	r := ring.Ring[int64](ring.Int64{})

	for _, typ := range []compress.Type{compress.None, compress.LZ4, compress.ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			blobs := blobstore.NewMemoryStore()
			s := New(blobs, WithCompression(typ))

			_, err := Load(ctx, s, "run-1", r)
			require.ErrorIs(t, err, ErrNoCheckpoint)

			p := quotient(t, r, pc.LieRing, "< a, b | >", 3).Presentation()
			name, err := Save(ctx, s, "run-1", p)
			require.NoError(t, err)
			assert.Equal(t, "run-1/class-0003.ckpt", name)

			latest, err := s.Latest(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, name, latest)

			got, err := Load(ctx, s, "run-1", r)
			require.NoError(t, err)
			requireSamePresentation(t, p, got)
		})
	}
}

func TestStore_Resume(t *testing.T) {
	ctx := context.Background()
	r := ring.Ring[int64](ring.Int64{})
	s := New(blobstore.NewLocalStore(t.TempDir()))

	fp, err := fpres.Parse("", []byte("< a, b | >"), pc.LieRing)
	require.NoError(t, err)

	first := quotient(t, r, pc.LieRing, "< a, b | >", 2)
	_, err = Save(ctx, s, "run-1", first.Presentation())
	require.NoError(t, err)

	p, err := Load(ctx, s, "run-1", r)
	require.NoError(t, err)
	e, err := engine.New(p, fp.Relators, engine.Config[int64]{})
	require.NoError(t, err)
	defer e.Close()
	for c := 0; c < 2; c++ {
		_, err := e.Step(ctx)
		require.NoError(t, err)
	}

	straight := quotient(t, r, pc.LieRing, "< a, b | >", 4)
	requireSamePresentation(t, straight.Presentation(), e.Presentation())
}

func TestStore_Keep(t *testing.T) {
	ctx := context.Background()
	r := ring.Ring[int64](ring.Int64{})
	s := New(blobstore.NewMemoryStore(), WithKeep(2))

	e := quotient(t, r, pc.LieRing, "< a, b | >", 0)
	for c := 1; c <= 4; c++ {
		_, err := e.Step(ctx)
		require.NoError(t, err)
		_, err = Save(ctx, s, "run-1", e.Presentation())
		require.NoError(t, err)
	}

	names, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1/class-0003.ckpt", "run-1/class-0004.ckpt"}, names)

	older, err := Read(ctx, s, "run-1/class-0003.ckpt", r)
	require.NoError(t, err)
	assert.Equal(t, 3, older.Class)
}

func TestRead_Corrupt(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	require.NoError(t, blobs.Put(ctx, "run-1/class-0001.ckpt", []byte{2, 0}))

	_, err := Read(ctx, New(blobs), "run-1/class-0001.ckpt", ring.Ring[int64](ring.Int64{}))
	assert.ErrorIs(t, err, compress.ErrCorrupt)
}
