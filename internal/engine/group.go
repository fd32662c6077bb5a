package engine

import (
	"github.com/hupe1980/nilq/fpres"
	"github.com/hupe1980/nilq/vector"
)

// groupAlgebra multiplies normal words g_1^a_1 ... g_n^a_n by collection
// from the left. Conjugation of a word by a power of g_i is evaluated by
// repeated squaring of the conjugation automorphism; the images of single
// generators under these squarings are cached until the presentation
// changes.
type groupAlgebra[T any] struct {
	e     *Engine[T]
	two   T
	cache map[conjKey]vector.Sparse[T]
}

// conjKey identifies g_k conjugated by g_i^(±2^t).
type conjKey struct {
	k, i, t int
	inv     bool
}

func newGroupAlgebra[T any](e *Engine[T]) *groupAlgebra[T] {
	return &groupAlgebra[T]{
		e:     e,
		two:   e.r.FromInt(2),
		cache: make(map[conjKey]vector.Sparse[T]),
	}
}

func (g *groupAlgebra[T]) reset() { clear(g.cache) }

func (g *groupAlgebra[T]) unit(k int) vector.Sparse[T] { return vector.Unit(g.e.r, k) }

func (g *groupAlgebra[T]) collect(v vector.Sparse[T]) vector.Sparse[T] { return g.mul(nil, v) }

func (g *groupAlgebra[T]) product(u, v vector.Sparse[T]) vector.Sparse[T] { return g.mul(u, v) }

// mul returns the normal form of u*v; u must be normal.
func (g *groupAlgebra[T]) mul(u, v vector.Sparse[T]) vector.Sparse[T] {
	acc := u
	for _, x := range v {
		acc = g.mulGen(acc, x.Gen, x.Coef)
	}
	return acc
}

// mulGen returns the normal form of acc * g_i^e.
//
// With acc = A g_i^a B, where A lies below i and B above it,
// acc * g_i^e = A g_i^(a+e) B^(g_i^e). A torsion exponent a+e = qE + s
// contributes Power[i]^q between g_i^s and the conjugated B.
func (g *groupAlgebra[T]) mulGen(acc vector.Sparse[T], i int, e T) vector.Sparse[T] {
	r, p := g.e.r, g.e.p
	if r.IsZero(e) {
		return acc
	}
	a, b := acc.Split(i)
	s := e
	if len(b) > 0 && b[0].Gen == i {
		s = r.Add(b[0].Coef, e)
		b = b[1:]
	}
	var pw vector.Sparse[T]
	if p.IsTorsion(i) && !r.IsReduced(s, p.Exponent[i]) {
		var q T
		q, s = r.FloorDivMod(s, p.Exponent[i])
		pw = g.pow(p.Power[i], q)
	}
	above := g.mul(pw, g.conj(b, i, e))

	out := make(vector.Sparse[T], 0, len(a)+1+len(above))
	out = append(out, a...)
	if !r.IsZero(s) {
		out = append(out, vector.Entry[T]{Gen: i, Coef: s})
	}
	out = append(out, above...)
	if len(out) == 0 {
		return nil
	}
	return out
}

// conj returns g_i^-e w g_i^e for a normal word w above i.
func (g *groupAlgebra[T]) conj(w vector.Sparse[T], i int, e T) vector.Sparse[T] {
	r := g.e.r
	if len(w) == 0 || r.IsZero(e) {
		return w
	}
	inv := r.Compare(e, r.Zero()) < 0
	n := e
	if inv {
		n = r.Neg(e)
	}
	for t := 0; !r.IsZero(n); t++ {
		q, bit := r.FloorDivMod(n, g.two)
		if !r.IsZero(bit) {
			w = g.apply(w, i, t, inv)
		}
		n = q
	}
	return w
}

// apply maps a normal word above i through conjugation by g_i^(±2^t).
func (g *groupAlgebra[T]) apply(w vector.Sparse[T], i, t int, inv bool) vector.Sparse[T] {
	p := g.e.p
	var acc vector.Sparse[T]
	for _, x := range w {
		if p.Comm[x.Gen][i].IsZero() {
			acc = g.mulGen(acc, x.Gen, x.Coef)
			continue
		}
		acc = g.mul(acc, g.pow(g.image(x.Gen, i, t, inv), x.Coef))
	}
	return acc
}

// image returns g_k conjugated by g_i^(±2^t), k > i.
func (g *groupAlgebra[T]) image(k, i, t int, inv bool) vector.Sparse[T] {
	key := conjKey{k: k, i: i, t: t, inv: inv}
	if w, ok := g.cache[key]; ok {
		return w
	}
	p := g.e.p
	var w vector.Sparse[T]
	switch {
	case t > 0:
		w = g.apply(g.image(k, i, t-1, inv), i, t-1, inv)
	case !inv:
		// g_k^g_i = g_k [g_k, g_i]
		w = vector.Concat(g.unit(k), p.Comm[k][i])
	default:
		// g_k^(g_i^-1) = g_k d where d^g_i = [g_k, g_i]^-1.
		w = vector.Concat(g.unit(k), g.apply(g.inverse(p.Comm[k][i]), i, 0, true))
	}
	g.cache[key] = w
	return w
}

// inverse returns the normal form of w^-1.
func (g *groupAlgebra[T]) inverse(w vector.Sparse[T]) vector.Sparse[T] {
	r := g.e.r
	var acc vector.Sparse[T]
	for k := len(w) - 1; k >= 0; k-- {
		acc = g.mulGen(acc, w[k].Gen, r.Neg(w[k].Coef))
	}
	return acc
}

// pow returns the normal form of w^n.
func (g *groupAlgebra[T]) pow(w vector.Sparse[T], n T) vector.Sparse[T] {
	r := g.e.r
	if len(w) == 0 || r.IsZero(n) {
		return nil
	}
	if len(w) == 1 {
		return g.mulGen(nil, w[0].Gen, r.Mul(w[0].Coef, n))
	}
	if r.Compare(n, r.Zero()) < 0 {
		w, n = g.inverse(w), r.Neg(n)
	}
	var acc vector.Sparse[T]
	for {
		q, bit := r.FloorDivMod(n, g.two)
		if !r.IsZero(bit) {
			acc = g.mul(acc, w)
		}
		if n = q; r.IsZero(n) {
			return acc
		}
		w = g.mul(w, w)
	}
}

// commutator returns u^-1 v^-1 u v.
func (g *groupAlgebra[T]) commutator(u, v vector.Sparse[T]) vector.Sparse[T] {
	return g.mul(g.mul(g.inverse(u), g.inverse(v)), g.mul(u, v))
}

func (g *groupAlgebra[T]) derivable(int, int) bool { return false }

func (g *groupAlgebra[T]) derive(j, i int) vector.Sparse[T] {
	fail("tails", g.e.p.Class, "group tail [%d,%d] cannot be derived", j, i)
	return nil
}

func (g *groupAlgebra[T]) consistency(emit func(op string, v vector.Sparse[T])) {
	p, r := g.e.p, g.e.r
	n, c := g.e.first-1, p.Class
	wt := p.Weight
	check := func(op string, lhs, rhs vector.Sparse[T]) {
		emit(op, vector.Diff(r, lhs, rhs))
	}

	// (g_k g_j) g_i = g_k (g_j g_i)
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n && wt[i]+wt[j] < c; j++ {
			for k := j + 1; k <= n && wt[i]+wt[j]+wt[k] <= c; k++ {
				gi, gj, gk := g.unit(i), g.unit(j), g.unit(k)
				check("associativity", g.mul(g.mul(gk, gj), gi), g.mul(gk, g.mul(gj, gi)))
			}
		}
	}

	for j := 1; j <= n; j++ {
		gj := g.unit(j)
		if !p.IsTorsion(j) {
			// g_k = (g_k g_j^-1) g_j
			for k := j + 1; k <= n && wt[j]+wt[k] <= c; k++ {
				gk := g.unit(k)
				check("inverse", g.mul(g.mul(gk, vector.Single(r, j, r.Neg(r.One()))), gj), gk)
			}
			continue
		}
		pre := vector.Single(r, j, r.Sub(p.Exponent[j], r.One()))
		// (g_j^(E-1) g_j) g_i = g_j^(E-1) (g_j g_i)
		for i := 1; i < j && wt[i]+wt[j] <= c; i++ {
			gi := g.unit(i)
			check("power", g.mul(g.mul(pre, gj), gi), g.mul(pre, g.mul(gj, gi)))
		}
		// (g_k g_j^(E-1)) g_j = g_k (g_j^(E-1) g_j)
		for k := j + 1; k <= n && wt[j]+wt[k] <= c; k++ {
			gk := g.unit(k)
			check("power", g.mul(g.mul(gk, pre), gj), g.mul(gk, g.mul(pre, gj)))
		}
		// (g_j^(E-1) g_j) g_j = g_j^(E-1) (g_j g_j)
		if 2*wt[j] <= c {
			check("power", g.mul(g.mul(pre, gj), gj), g.mul(pre, g.mul(gj, gj)))
		}
	}
}

func (g *groupAlgebra[T]) eval(n *fpres.Node) vector.Sparse[T] {
	p := g.e.p
	switch n.Op {
	case fpres.OpGen:
		return p.Epimorphism[n.Gen]
	case fpres.OpIdentity:
		return nil
	case fpres.OpProduct:
		acc := g.eval(n.Args[0])
		for _, a := range n.Args[1:] {
			acc = g.mul(acc, g.eval(a))
		}
		return acc
	case fpres.OpPower:
		return g.pow(g.eval(n.Args[0]), g.e.number(n))
	case fpres.OpConjugate:
		x, y := g.eval(n.Args[0]), g.eval(n.Args[1])
		return g.mul(g.mul(g.inverse(y), x), y)
	case fpres.OpCommutator:
		acc := g.eval(n.Args[0])
		for _, a := range n.Args[1:] {
			acc = g.commutator(acc, g.eval(a))
		}
		return acc
	case fpres.OpEqual:
		return g.mul(g.eval(n.Args[0]), g.inverse(g.eval(n.Args[1])))
	}
	fail("eval", p.Class, "operator %s is not defined in a group", n.Op)
	return nil
}
