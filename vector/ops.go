package vector

import "github.com/hupe1980/nilq/ring"

// Combine returns a*u + b*v in one merge pass, dropping cancelled entries.
func Combine[T any](r ring.Ring[T], a T, u Sparse[T], b T, v Sparse[T]) Sparse[T] {
	out := make(Sparse[T], 0, len(u)+len(v))
	aOne, bOne := r.IsOne(a), r.IsOne(b)
	scale := func(s T, one bool, c T) T {
		if one {
			return c
		}
		return r.Mul(s, c)
	}
	i, j := 0, 0
	for i < len(u) || j < len(v) {
		var g int
		var c T
		switch {
		case j == len(v) || (i < len(u) && u[i].Gen < v[j].Gen):
			g, c = u[i].Gen, scale(a, aOne, u[i].Coef)
			i++
		case i == len(u) || v[j].Gen < u[i].Gen:
			g, c = v[j].Gen, scale(b, bOne, v[j].Coef)
			j++
		default:
			g = u[i].Gen
			c = r.Add(scale(a, aOne, u[i].Coef), scale(b, bOne, v[j].Coef))
			i++
			j++
		}
		if !r.IsZero(c) {
			out = append(out, Entry[T]{Gen: g, Coef: c})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Sum returns u + v.
func Sum[T any](r ring.Ring[T], u, v Sparse[T]) Sparse[T] {
	switch {
	case len(u) == 0:
		return v.Clone()
	case len(v) == 0:
		return u.Clone()
	}
	return Combine(r, r.One(), u, r.One(), v)
}

// Diff returns u - v.
func Diff[T any](r ring.Ring[T], u, v Sparse[T]) Sparse[T] {
	if len(v) == 0 {
		return u.Clone()
	}
	return Combine(r, r.One(), u, r.Neg(r.One()), v)
}

// Prod returns a*v.
func Prod[T any](r ring.Ring[T], a T, v Sparse[T]) Sparse[T] {
	if r.IsZero(a) || len(v) == 0 {
		return nil
	}
	if r.IsOne(a) {
		return v.Clone()
	}
	out := make(Sparse[T], 0, len(v))
	for _, e := range v {
		if c := r.Mul(a, e.Coef); !r.IsZero(c) {
			out = append(out, Entry[T]{Gen: e.Gen, Coef: c})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Neg returns -v.
func Neg[T any](r ring.Ring[T], v Sparse[T]) Sparse[T] {
	return Prod(r, r.Neg(r.One()), v)
}

// Equal reports whether u and v hold the same entries.
func Equal[T any](r ring.Ring[T], u, v Sparse[T]) bool {
	if len(u) != len(v) {
		return false
	}
	for i := range u {
		if u[i].Gen != v[i].Gen || !r.Equal(u[i].Coef, v[i].Coef) {
			return false
		}
	}
	return true
}

// Concat appends v to u. Every generator of v must exceed u.Last().
func Concat[T any](u, v Sparse[T]) Sparse[T] {
	if len(v) == 0 {
		return u
	}
	if len(u) == 0 {
		return v
	}
	out := make(Sparse[T], 0, len(u)+len(v))
	out = append(out, u...)
	return append(out, v...)
}
