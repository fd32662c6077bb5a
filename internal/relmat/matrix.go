// Package relmat maintains the relation matrix among the tail generators of
// one class: a row space over the coefficient ring kept in Hermite normal
// form, indexed by pivot generator, with a deduplicated insertion queue.
//
// The ring need not be a field or even a domain. Elimination uses the ring's
// extended gcd and unit/annihilator decomposition, and whenever a pivot
// coefficient is a zero divisor the annihilated multiple of its row is fed
// back into the matrix so the row space stays closed.
package relmat

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/nilq/internal/arena"
	"github.com/hupe1980/nilq/internal/ordering"
	"github.com/hupe1980/nilq/ring"
	"github.com/hupe1980/nilq/vector"
)

// DefaultQueueFactor is the queue length, per column, that forces a flush.
const DefaultQueueFactor = 4

const minQueue = 64

// Stats tracks matrix activity.
type Stats struct {
	Queued     uint64
	Duplicates uint64
	Flushes    uint64
	Inserts    uint64
	Redundant  uint64
}

type options struct {
	queueFactor int
}

// Option configures a Matrix.
type Option func(*options)

// WithQueueFactor sets the per-column queue length that forces a flush.
func WithQueueFactor(f int) Option {
	return func(o *options) {
		if f > 0 {
			o.queueFactor = f
		}
	}
}

// Matrix is the relation matrix over generators offset..offset+n-1.
type Matrix[T any] struct {
	r       ring.Ring[T]
	a       *arena.Arena[T]
	offset  int
	rows    []vector.Sparse[T]
	torsion T

	queue []vector.Sparse[T]
	seen  map[uint64][]int
	limit int

	stats Stats
}

// New returns a matrix over the n generators starting at offset, seeded with
// torsion*g for every column g when torsion is nonzero. Scratch vectors come
// from a, which must cover generator offset+n-1.
func New[T any](r ring.Ring[T], a *arena.Arena[T], offset, n int, torsion T, opts ...Option) *Matrix[T] {
	o := options{queueFactor: DefaultQueueFactor}
	for _, fn := range opts {
		fn(&o)
	}
	m := &Matrix[T]{
		r:       r,
		a:       a,
		offset:  offset,
		rows:    make([]vector.Sparse[T], n),
		torsion: torsion,
		seen:    make(map[uint64][]int),
		limit:   max(o.queueFactor*n, minQueue),
	}
	m.seed()
	return m
}

func (m *Matrix[T]) seed() {
	if m.r.IsZero(m.torsion) {
		return
	}
	for i := range m.rows {
		m.AddRow(vector.Single(m.r, m.offset+i, m.torsion))
	}
}

// Cols returns the number of columns.
func (m *Matrix[T]) Cols() int { return len(m.rows) }

// Stats returns the activity counters.
func (m *Matrix[T]) Stats() Stats { return m.stats }

// Row returns the pivot row at generator g, or nil.
func (m *Matrix[T]) Row(g int) vector.Sparse[T] { return m.rows[g-m.offset] }

// Len returns the number of pivot rows.
func (m *Matrix[T]) Len() int {
	n := 0
	for _, row := range m.rows {
		if row != nil {
			n++
		}
	}
	return n
}

func (m *Matrix[T]) check(v vector.Sparse[T]) {
	if h := v.Head(); h != vector.End && (h < m.offset || v.Last() >= m.offset+len(m.rows)) {
		panic(fmt.Sprintf("relmat: row [%d,%d] outside columns [%d,%d)", h, v.Last(), m.offset, m.offset+len(m.rows)))
	}
}

// Queue adds v to the pending set unless an equal row is already queued. A
// full queue is flushed.
func (m *Matrix[T]) Queue(v vector.Sparse[T]) {
	if v.IsZero() {
		return
	}
	m.check(v)
	key := m.hash(v)
	for _, i := range m.seen[key] {
		if vector.Equal(m.r, m.queue[i], v) {
			m.stats.Duplicates++
			return
		}
	}
	m.seen[key] = append(m.seen[key], len(m.queue))
	m.queue = append(m.queue, v)
	m.stats.Queued++
	if len(m.queue) > m.limit {
		m.Flush()
	}
}

func (m *Matrix[T]) hash(v vector.Sparse[T]) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, e := range v {
		binary.LittleEndian.PutUint64(buf[:], uint64(e.Gen))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(m.r.String(e.Coef))
	}
	return d.Sum64()
}

// Flush merges the queue and the current rows into a fresh matrix. Rows are
// inserted in order of their earliest column in a fill-in reducing column
// order, shorter rows first. That order only decides insertion: pivots stay
// on the natural generator columns, so Row(g) always has head g.
func (m *Matrix[T]) Flush() {
	if len(m.queue) == 0 {
		return
	}
	all := make([]vector.Sparse[T], 0, len(m.queue)+len(m.rows))
	for _, row := range m.rows {
		if row != nil {
			all = append(all, row)
		}
	}
	all = append(all, m.queue...)

	patterns := make([]*roaring.Bitmap, len(all))
	for i, v := range all {
		b := roaring.New()
		for _, e := range v {
			b.Add(uint32(e.Gen - m.offset))
		}
		patterns[i] = b
	}
	pos := ordering.Positions(ordering.Markowitz(patterns))

	type keyed struct {
		key int
		v   vector.Sparse[T]
	}
	ks := make([]keyed, len(all))
	for i, v := range all {
		k := len(pos)
		for _, e := range v {
			k = min(k, pos[uint32(e.Gen-m.offset)])
		}
		ks[i] = keyed{key: k, v: v}
	}
	slices.SortStableFunc(ks, func(x, y keyed) int {
		if x.key != y.key {
			return x.key - y.key
		}
		return len(x.v) - len(y.v)
	})

	clear(m.rows)
	m.queue = m.queue[:0]
	clear(m.seen)
	m.stats.Flushes++

	m.seed()
	for _, k := range ks {
		m.AddRow(k.v)
	}
}

// AddRow reduces v into the matrix and reports whether v already lay in the
// row space.
func (m *Matrix[T]) AddRow(v vector.Sparse[T]) bool {
	m.check(v)
	r := m.r
	changed := false

	h := m.a.Acquire()
	defer m.a.Release(h)

	work := []vector.Sparse[T]{v}
	for len(work) > 0 {
		w := work[len(work)-1]
		work = work[:len(work)-1]
		h.Load(w)

		for g := h.First(); g != vector.End; g = h.First() {
			a := h.Get(g)
			idx := g - m.offset
			row := m.rows[idx]

			if row == nil {
				u, ann := r.UnitAnnihilator(a)
				m.rows[idx] = vector.Prod(r, u, h.ToSparse())
				changed = true
				if r.IsZero(ann) {
					h.Reset()
					break
				}
				h.Scale(ann)
				continue
			}

			b := row[0].Coef
			gcd, s, t := r.ExtendedGCD(a, b)
			if r.Equal(gcd, b) {
				h.AddSparse(r.Neg(r.DivExact(a, b)), row)
				continue
			}

			pivot := vector.Combine(r, s, h.ToSparse(), t, row)
			m.rows[idx] = pivot
			changed = true
			h.Scale(r.DivExact(b, gcd))
			h.AddSparse(r.Neg(r.DivExact(a, gcd)), row)

			if _, ann := r.UnitAnnihilator(gcd); !r.IsZero(ann) {
				if tail := vector.Prod(r, ann, pivot); !tail.IsZero() {
					work = append(work, tail)
				}
			}
		}
	}

	if changed {
		m.stats.Inserts++
	} else {
		m.stats.Redundant++
	}
	return !changed
}

// Hermite flushes the queue and reduces every row against the pivots of all
// later rows, so every entry above a pivot lies in its canonical range.
func (m *Matrix[T]) Hermite() {
	m.Flush()
	r := m.r

	h := m.a.Acquire()
	defer m.a.Release(h)

	for idx := len(m.rows) - 1; idx >= 0; idx-- {
		row := m.rows[idx]
		if len(row) < 2 {
			continue
		}
		h.Load(row)
		dirty := false
		for g := h.Next(row[0].Gen); g != vector.End; g = h.Next(g) {
			p := m.rows[g-m.offset]
			if p == nil {
				continue
			}
			q, _ := r.FloorDivMod(h.Get(g), p[0].Coef)
			if r.IsZero(q) {
				continue
			}
			h.AddSparse(r.Neg(q), p)
			dirty = true
		}
		if dirty {
			m.rows[idx] = h.ToSparse()
		}
		h.Reset()
	}
}

// Rows returns the pivot rows in increasing pivot order.
func (m *Matrix[T]) Rows() []vector.Sparse[T] {
	out := make([]vector.Sparse[T], 0, len(m.rows))
	for _, row := range m.rows {
		if row != nil {
			out = append(out, row)
		}
	}
	return out
}
