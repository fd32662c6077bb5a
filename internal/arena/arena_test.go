package arena

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/nilq/resource"
	"github.com/hupe1980/nilq/ring"
	"github.com/hupe1980/nilq/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAcquirer struct {
	used  int64
	limit int64
}

func (c *countingAcquirer) AcquireMemory(_ context.Context, n int64) error {
	if c.limit > 0 && c.used+n > c.limit {
		return errors.New("over budget")
	}
	c.used += n
	return nil
}

func (c *countingAcquirer) ReleaseMemory(n int64) { c.used -= n }

func TestArena_LIFO(t *testing.T) {
	a := New[int64](ring.Int64{}, 16)

	outer := a.Acquire()
	outer.Set(3, 7)
	inner := a.Acquire()
	assert.Equal(t, 2, a.Depth())
	assert.Equal(t, 0, inner.Len(), "fresh vectors start empty")

	t.Run("out of order release panics", func(t *testing.T) {
		assert.PanicsWithValue(t, "arena: out-of-order release at depth 2", func() {
			a.Release(outer)
		})
	})

	inner.Set(5, 1)
	a.Release(inner)
	a.Release(outer)
	assert.Equal(t, 0, a.Depth())

	t.Run("released vectors are cleared", func(t *testing.T) {
		h := a.Acquire()
		defer a.Release(h)
		assert.Equal(t, 0, h.Len())
	})

	t.Run("empty stack", func(t *testing.T) {
		assert.Panics(t, func() { a.Release(outer) })
	})

	st := a.Stats()
	assert.Equal(t, 2, st.MaxDepth)
	assert.Equal(t, uint64(3), st.Acquires)
}

func TestArena_With(t *testing.T) {
	a := New[int64](ring.Int64{}, 4)
	a.With(func(h *vector.Hollow[int64]) {
		h.Set(4, 2)
		assert.Equal(t, 1, a.Depth())
	})
	assert.Equal(t, 0, a.Depth())
}

func TestArena_Resize(t *testing.T) {
	acq := &countingAcquirer{}
	a := New[int64](ring.Int64{}, 8, WithMemoryAcquirer(acq), WithDepth(2))

	require.NoError(t, a.Resize(context.Background(), 100))
	assert.Equal(t, 100, a.Size())
	assert.Equal(t, 100, a.Acquire().Cap())
	assert.Positive(t, acq.used)

	t.Run("resize while live panics", func(t *testing.T) {
		assert.Panics(t, func() { _ = a.Resize(context.Background(), 200) })
	})
	a.Release(a.slots[0])

	small := acq.used
	require.NoError(t, a.Resize(context.Background(), 1000))
	assert.Greater(t, acq.used, small)

	a.Free()
	assert.Equal(t, int64(0), acq.used)

	t.Run("budget exceeded", func(t *testing.T) {
		b := New[int64](ring.Int64{}, 8, WithMemoryAcquirer(&countingAcquirer{limit: 64}))
		err := b.Resize(context.Background(), 1<<16)
		require.Error(t, err)
	})
}

func TestArena_GrowPastLimit(t *testing.T) {
	// Depth 8 over int64 costs 64 bytes per generator plus 192.
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 400})
	a := New[int64](ring.Int64{}, 0, WithMemoryAcquirer(rc))

	require.NoError(t, a.Resize(context.Background(), 2))
	assert.Equal(t, int64(320), rc.MemoryUsage())
	require.NoError(t, a.Resize(context.Background(), 3))
	assert.Equal(t, int64(384), rc.MemoryUsage())

	// 512 bytes in total: the step alone would fit, the total does not.
	err := a.Resize(context.Background(), 5)
	require.ErrorIs(t, err, resource.ErrMemoryLimit)

	var mle *resource.MemoryLimitError
	require.ErrorAs(t, err, &mle)
	assert.Equal(t, int64(512), mle.Requested)
	assert.Zero(t, rc.MemoryUsage())
	assert.Zero(t, a.Stats().BytesReserved)

	a.Free()
	assert.Zero(t, rc.MemoryUsage())
}

func TestArena_ShrinkReleases(t *testing.T) {
	acq := &countingAcquirer{}
	a := New[int64](ring.Int64{}, 0, WithMemoryAcquirer(acq), WithDepth(1))

	require.NoError(t, a.Resize(context.Background(), 10))
	big := acq.used
	require.NoError(t, a.Resize(context.Background(), 2))
	assert.Less(t, acq.used, big)
	assert.Equal(t, acq.used, a.Stats().BytesReserved)
}
