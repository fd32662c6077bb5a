// Package arena provides the scratch-vector arena used by the quotient engine.
//
// # Discipline
//
// Acquire and Release are strictly LIFO: the vector being released must be
// the most recently acquired one that is still live. Every call site acquires
// and releases in nested fashion, typically
//
//	h := a.Acquire()
//	defer a.Release(h)
//
// Out-of-order release, releasing on an empty stack and resizing while
// vectors are live are programming errors and panic.
//
// # Memory Management
//
// Buffers are keyed by stack position and reused across acquisitions, so a
// steady-state computation allocates nothing. A released vector is cleared in
// time proportional to its nonzero slots. Resize charges the preallocated
// slots against an optional MemoryAcquirer. A growing arena gives back its
// reservation before asking for the new total, so a failed or blocked
// resize holds no memory.
package arena

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/hupe1980/nilq/ring"
	"github.com/hupe1980/nilq/vector"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

// DefaultDepth is the number of slots Resize preallocates and charges for.
const DefaultDepth = 8

// Stats tracks arena usage.
type Stats struct {
	Acquires      uint64 // Historical: total acquisitions
	MaxDepth      int    // Historical: deepest nesting seen
	Resizes       uint64 // Historical: number of effective resizes
	Unbudgeted    uint64 // Historical: slots allocated beyond the charged depth
	BytesReserved int64  // Current: bytes charged to the acquirer
}

type options struct {
	acquirer MemoryAcquirer
	depth    int
}

// Option is a configuration option for Arena.
type Option func(*options)

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(o *options) {
		o.acquirer = acquirer
	}
}

// WithDepth sets how many slots are preallocated on each resize.
func WithDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.depth = depth
		}
	}
}

// Arena is a LIFO stack of reusable hollow vectors sized to the current
// generator count. It is not safe for concurrent use.
type Arena[T any] struct {
	r     ring.Ring[T]
	size  int
	slots []*vector.Hollow[T]
	depth int
	opts  options
	stats Stats
}

// New creates an arena for generators 1..size.
func New[T any](r ring.Ring[T], size int, opts ...Option) *Arena[T] {
	o := options{depth: DefaultDepth}
	for _, fn := range opts {
		fn(&o)
	}
	return &Arena[T]{r: r, size: size, opts: o}
}

// Size returns the generator capacity of acquired vectors.
func (a *Arena[T]) Size() int { return a.size }

// Depth returns the number of live vectors.
func (a *Arena[T]) Depth() int { return a.depth }

// Stats returns a snapshot of the usage counters.
func (a *Arena[T]) Stats() Stats { return a.stats }

// Acquire returns an empty scratch vector covering generators 1..Size().
func (a *Arena[T]) Acquire() *vector.Hollow[T] {
	if a.depth == len(a.slots) {
		a.slots = append(a.slots, vector.NewHollow(a.r, a.size))
		if len(a.slots) > a.opts.depth {
			a.stats.Unbudgeted++
		}
	}
	h := a.slots[a.depth]
	a.depth++
	a.stats.Acquires++
	if a.depth > a.stats.MaxDepth {
		a.stats.MaxDepth = a.depth
	}
	return h
}

// Release returns h to the arena. h must be the most recently acquired live vector.
func (a *Arena[T]) Release(h *vector.Hollow[T]) {
	if a.depth == 0 {
		panic("arena: release on empty stack")
	}
	if a.slots[a.depth-1] != h {
		panic(fmt.Sprintf("arena: out-of-order release at depth %d", a.depth))
	}
	h.Reset()
	a.depth--
}

// With acquires a vector, runs fn and releases it.
func (a *Arena[T]) With(fn func(h *vector.Hollow[T])) {
	h := a.Acquire()
	defer a.Release(h)
	fn(h)
}

// Resize changes the generator capacity. No vector may be live.
func (a *Arena[T]) Resize(ctx context.Context, size int) error {
	if a.depth != 0 {
		panic(fmt.Sprintf("arena: resize with %d live vectors", a.depth))
	}
	if size == a.size && len(a.slots) > 0 {
		return nil
	}

	need := int64(a.opts.depth) * slotBytes[T](size)
	if a.opts.acquirer != nil {
		switch held := a.stats.BytesReserved; {
		case need > held:
			// The limit applies to the total, and a blocked arena holds nothing.
			a.opts.acquirer.ReleaseMemory(held)
			a.stats.BytesReserved = 0
			if err := a.opts.acquirer.AcquireMemory(ctx, need); err != nil {
				return fmt.Errorf("arena: reserve %d bytes: %w", need, err)
			}
		case need < held:
			a.opts.acquirer.ReleaseMemory(held - need)
		}
		a.stats.BytesReserved = need
	}

	a.size = size
	a.slots = a.slots[:0]
	for i := 0; i < a.opts.depth; i++ {
		a.slots = append(a.slots, vector.NewHollow(a.r, size))
	}
	a.stats.Resizes++
	return nil
}

// Free drops all buffers and returns charged memory.
func (a *Arena[T]) Free() {
	if a.depth != 0 {
		panic(fmt.Sprintf("arena: free with %d live vectors", a.depth))
	}
	a.slots = nil
	if a.opts.acquirer != nil && a.stats.BytesReserved > 0 {
		a.opts.acquirer.ReleaseMemory(a.stats.BytesReserved)
	}
	a.stats.BytesReserved = 0
}

// slotBytes estimates the footprint of one hollow vector over n generators.
func slotBytes[T any](n int) int64 {
	var zero T
	words := int64(n+64) / 64
	return int64(n+1)*int64(unsafe.Sizeof(zero)) + words*8 + (words/64+1)*8
}
