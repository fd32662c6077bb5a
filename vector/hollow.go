package vector

import (
	"math/bits"

	"github.com/hupe1980/nilq/ring"
)

// Hollow is a dense scratch vector over generators 1..Cap() with O(1) point
// access and ordered traversal of its nonzero slots.
//
// Occupancy is tracked in two bitmap levels: bit g of words marks a nonzero
// coefficient at g and bit w of summary marks a nonzero words[w]. Traversal
// skips empty 4096-generator blocks with a single word test.
//
// A Hollow is not safe for concurrent use. Obtain them from an arena.
type Hollow[T any] struct {
	r       ring.Ring[T]
	coef    []T
	words   []uint64
	summary []uint64
	zero    T
	count   int
}

// NewHollow returns an empty hollow vector for generators 1..n.
func NewHollow[T any](r ring.Ring[T], n int) *Hollow[T] {
	size := n + 1
	nw := (size + 63) >> 6
	return &Hollow[T]{
		r:       r,
		coef:    make([]T, size),
		words:   make([]uint64, nw),
		summary: make([]uint64, (nw+63)>>6),
		zero:    r.Zero(),
	}
}

// Cap returns the largest generator the vector can hold.
func (h *Hollow[T]) Cap() int { return len(h.coef) - 1 }

// Len returns the number of nonzero slots.
func (h *Hollow[T]) Len() int { return h.count }

// Ring returns the coefficient ring.
func (h *Hollow[T]) Ring() ring.Ring[T] { return h.r }

func (h *Hollow[T]) occupied(g int) bool {
	return h.words[g>>6]&(uint64(1)<<(uint(g)&63)) != 0
}

// Get returns the coefficient at g, or zero.
func (h *Hollow[T]) Get(g int) T {
	if h.occupied(g) {
		return h.coef[g]
	}
	return h.zero
}

// Set stores c at g. A zero c clears the slot.
func (h *Hollow[T]) Set(g int, c T) {
	if h.r.IsZero(c) {
		h.clear(g)
		return
	}
	h.coef[g] = c
	w := g >> 6
	bit := uint64(1) << (uint(g) & 63)
	if h.words[w]&bit != 0 {
		return
	}
	if h.words[w] == 0 {
		h.summary[w>>6] |= uint64(1) << (uint(w) & 63)
	}
	h.words[w] |= bit
	h.count++
}

func (h *Hollow[T]) clear(g int) {
	w := g >> 6
	bit := uint64(1) << (uint(g) & 63)
	if h.words[w]&bit == 0 {
		return
	}
	h.words[w] &^= bit
	h.coef[g] = h.zero
	h.count--
	if h.words[w] == 0 {
		h.summary[w>>6] &^= uint64(1) << (uint(w) & 63)
	}
}

// Add adds c at g.
func (h *Hollow[T]) Add(g int, c T) {
	h.Set(g, h.r.Add(h.Get(g), c))
}

// AddMul adds a*b at g.
func (h *Hollow[T]) AddMul(g int, a, b T) {
	h.Set(g, h.r.AddMul(h.Get(g), a, b))
}

// AddSparse adds a*v.
func (h *Hollow[T]) AddSparse(a T, v Sparse[T]) {
	if h.r.IsOne(a) {
		for _, e := range v {
			h.Add(e.Gen, e.Coef)
		}
		return
	}
	for _, e := range v {
		h.AddMul(e.Gen, a, e.Coef)
	}
}

// Load adds v with coefficient one.
func (h *Hollow[T]) Load(v Sparse[T]) {
	for _, e := range v {
		h.Add(e.Gen, e.Coef)
	}
}

// Scale multiplies every slot by a.
func (h *Hollow[T]) Scale(a T) {
	for g := h.First(); g != End; {
		next := h.Next(g)
		h.Set(g, h.r.Mul(a, h.coef[g]))
		g = next
	}
}

// First returns the smallest occupied generator, or End.
func (h *Hollow[T]) First() int { return h.Next(End) }

// Last returns the largest occupied generator, or End.
func (h *Hollow[T]) Last() int { return h.Prev(len(h.coef)) }

// Next returns the smallest occupied generator greater than g, or End.
func (h *Hollow[T]) Next(g int) int {
	g++
	if g >= len(h.coef) {
		return End
	}
	w := g >> 6
	if m := h.words[w] >> (uint(g) & 63); m != 0 {
		return g + bits.TrailingZeros64(m)
	}
	w++
	for sw := w >> 6; sw < len(h.summary); sw++ {
		s := h.summary[sw]
		if sw == w>>6 {
			s &= ^uint64(0) << (uint(w) & 63)
		}
		if s != 0 {
			ww := sw<<6 + bits.TrailingZeros64(s)
			return ww<<6 + bits.TrailingZeros64(h.words[ww])
		}
	}
	return End
}

// Prev returns the largest occupied generator smaller than g, or End.
func (h *Hollow[T]) Prev(g int) int {
	g--
	if g <= 0 {
		return End
	}
	if g >= len(h.coef) {
		g = len(h.coef) - 1
	}
	w := g >> 6
	if m := h.words[w] << (63 - uint(g)&63); m != 0 {
		return g - bits.LeadingZeros64(m)
	}
	w--
	if w < 0 {
		return End
	}
	for sw := w >> 6; sw >= 0; sw-- {
		s := h.summary[sw]
		if sw == w>>6 {
			s &= ^uint64(0) >> (63 - uint(w)&63)
		}
		if s != 0 {
			ww := sw<<6 + 63 - bits.LeadingZeros64(s)
			return ww<<6 + 63 - bits.LeadingZeros64(h.words[ww])
		}
	}
	return End
}

// ToSparse returns the nonzero slots as a sparse vector.
func (h *Hollow[T]) ToSparse() Sparse[T] {
	if h.count == 0 {
		return nil
	}
	out := make(Sparse[T], 0, h.count)
	for g := h.First(); g != End; g = h.Next(g) {
		out = append(out, Entry[T]{Gen: g, Coef: h.coef[g]})
	}
	return out
}

// Take returns the contents as a sparse vector and clears h.
func (h *Hollow[T]) Take() Sparse[T] {
	out := h.ToSparse()
	h.Reset()
	return out
}

// Reset clears every occupied slot in O(nonzero) time.
func (h *Hollow[T]) Reset() {
	if h.count == 0 {
		return
	}
	for sw, s := range h.summary {
		for s != 0 {
			ww := sw<<6 + bits.TrailingZeros64(s)
			s &= s - 1
			for m := h.words[ww]; m != 0; m &= m - 1 {
				h.coef[ww<<6+bits.TrailingZeros64(m)] = h.zero
			}
			h.words[ww] = 0
		}
		h.summary[sw] = 0
	}
	h.count = 0
}
