// Package vector provides the two vector representations used by the
// quotient engine: Sparse, the compact storage form, and Hollow, a dense
// overlay for accumulation with ordered traversal of its nonzero slots.
//
// Generators are positive integers; End (zero) means "no generator".
package vector

import (
	"strings"

	"github.com/hupe1980/nilq/ring"
)

// End marks the absence of a generator during traversal.
const End = 0

// Entry is one (generator, coefficient) pair.
type Entry[T any] struct {
	Gen  int
	Coef T
}

// Sparse is a list of entries with strictly increasing generators and no zero
// coefficients. The empty (or nil) vector is the zero element.
//
// Stored vectors are treated as immutable; all operations return new slices.
type Sparse[T any] []Entry[T]

// Unit returns the vector 1*g.
func Unit[T any](r ring.Ring[T], g int) Sparse[T] {
	return Sparse[T]{{Gen: g, Coef: r.One()}}
}

// Single returns c*g, or nil if c is zero.
func Single[T any](r ring.Ring[T], g int, c T) Sparse[T] {
	if r.IsZero(c) {
		return nil
	}
	return Sparse[T]{{Gen: g, Coef: c}}
}

// IsZero reports whether v is the zero vector.
func (v Sparse[T]) IsZero() bool { return len(v) == 0 }

// Head returns the first generator of v, or End.
func (v Sparse[T]) Head() int {
	if len(v) == 0 {
		return End
	}
	return v[0].Gen
}

// Last returns the last generator of v, or End.
func (v Sparse[T]) Last() int {
	if len(v) == 0 {
		return End
	}
	return v[len(v)-1].Gen
}

// Coef returns the coefficient at g, or zero.
func (v Sparse[T]) Coef(r ring.Ring[T], g int) T {
	lo, hi := 0, len(v)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if v[mid].Gen < g {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(v) && v[lo].Gen == g {
		return v[lo].Coef
	}
	return r.Zero()
}

// Clone returns a copy with exact capacity.
func (v Sparse[T]) Clone() Sparse[T] {
	if len(v) == 0 {
		return nil
	}
	out := make(Sparse[T], len(v))
	copy(out, v)
	return out
}

// Split returns the entries below g and the entries at or above g.
func (v Sparse[T]) Split(g int) (Sparse[T], Sparse[T]) {
	for i, e := range v {
		if e.Gen >= g {
			return v[:i:i], v[i:]
		}
	}
	return v, nil
}

// Tail returns the entries with generator >= g.
func (v Sparse[T]) Tail(g int) Sparse[T] {
	_, t := v.Split(g)
	return t
}

// Valid reports whether v satisfies the sparse invariants.
func (v Sparse[T]) Valid(r ring.Ring[T]) bool {
	prev := End
	for _, e := range v {
		if e.Gen <= prev || r.IsZero(e.Coef) {
			return false
		}
		prev = e.Gen
	}
	return true
}

// Map renumbers every generator through f. f must be strictly increasing on
// the generators of v.
func (v Sparse[T]) Map(f func(int) int) Sparse[T] {
	if len(v) == 0 {
		return nil
	}
	out := make(Sparse[T], len(v))
	for i, e := range v {
		out[i] = Entry[T]{Gen: f(e.Gen), Coef: e.Coef}
	}
	return out
}

// Format renders v as "c1*g1 + c2*g2" using name for generators.
func Format[T any](r ring.Ring[T], v Sparse[T], name func(int) string) string {
	if len(v) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, e := range v {
		c := r.String(e.Coef)
		neg := strings.HasPrefix(c, "-")
		switch {
		case i > 0 && neg:
			sb.WriteString(" - ")
			c = c[1:]
		case i > 0:
			sb.WriteString(" + ")
		case neg:
			sb.WriteString("-")
			c = c[1:]
		}
		if c != "1" {
			sb.WriteString(c)
			sb.WriteString("*")
		}
		sb.WriteString(name(e.Gen))
	}
	return sb.String()
}
