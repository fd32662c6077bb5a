package engine

import (
	"github.com/hupe1980/nilq/fpres"
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/vector"
)

// lieAlgebra expands brackets bilinearly against the commutator table.
type lieAlgebra[T any] struct {
	e *Engine[T]
}

func (l *lieAlgebra[T]) reset() {}

func (l *lieAlgebra[T]) unit(g int) vector.Sparse[T] { return vector.Unit(l.e.r, g) }

func (l *lieAlgebra[T]) collect(v vector.Sparse[T]) vector.Sparse[T] {
	h := l.e.a.Acquire()
	defer l.e.a.Release(h)
	h.Load(v)
	collectHollow(l.e.p, h)
	return h.ToSparse()
}

// collectHollow reduces every torsion coefficient of h in increasing
// generator order. Power[g] only holds generators above g, so one forward
// pass suffices.
func collectHollow[T any](p *pc.Presentation[T], h *vector.Hollow[T]) {
	r := p.Ring
	for g := h.First(); g != vector.End; g = h.Next(g) {
		if !p.IsTorsion(g) {
			continue
		}
		c, e := h.Get(g), p.Exponent[g]
		if r.IsReduced(c, e) {
			continue
		}
		q, rem := r.FloorDivMod(c, e)
		h.Set(g, rem)
		if !r.IsZero(q) {
			h.AddSparse(q, p.Power[g])
		}
	}
}

func (l *lieAlgebra[T]) product(u, v vector.Sparse[T]) vector.Sparse[T] {
	p, r := l.e.p, l.e.r
	h := l.e.a.Acquire()
	defer l.e.a.Release(h)

	for _, x := range u {
		for _, y := range v {
			if x.Gen == y.Gen || p.Weight[x.Gen]+p.Weight[y.Gen] > p.Class {
				continue
			}
			c := r.Mul(x.Coef, y.Coef)
			if r.IsZero(c) {
				continue
			}
			if x.Gen > y.Gen {
				h.AddSparse(c, p.Comm[x.Gen][y.Gen])
			} else {
				h.AddSparse(r.Neg(c), p.Comm[y.Gen][x.Gen])
			}
		}
	}
	collectHollow(p, h)
	return h.ToSparse()
}

func (l *lieAlgebra[T]) derivable(j, i int) bool {
	p := l.e.p
	switch {
	case p.Def[i].Kind == pc.Commutator && p.IsDefining(i):
		return true
	case p.Def[i].Kind == pc.Power && p.IsDefining(i):
		return true
	case p.Def[j].Kind == pc.Power && p.IsDefining(j):
		return true
	}
	return false
}

func (l *lieAlgebra[T]) derive(j, i int) vector.Sparse[T] {
	p, r := l.e.p, l.e.r
	d := p.Def[i]
	switch {
	case d.Kind == pc.Commutator && p.IsDefining(i):
		// [j,[a,b]] = [[j,a],b] + [a,[j,b]]
		a, b := d.G, d.H
		ja := l.product(l.unit(j), l.unit(a))
		jb := l.product(l.unit(j), l.unit(b))
		return l.collect(vector.Sum(r, l.product(ja, l.unit(b)), l.product(l.unit(a), jb)))
	case d.Kind == pc.Power && p.IsDefining(i):
		g := d.G
		return l.collect(vector.Prod(r, p.Exponent[g], l.product(l.unit(j), l.unit(g))))
	}
	g := p.Def[j].G
	return l.collect(vector.Prod(r, p.Exponent[g], l.product(l.unit(g), l.unit(i))))
}

func (l *lieAlgebra[T]) consistency(emit func(op string, v vector.Sparse[T])) {
	p, r := l.e.p, l.e.r
	n, c := l.e.first-1, p.Class
	wt := p.Weight

	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n && wt[i]+wt[j] < c; j++ {
			for k := j + 1; k <= n && wt[i]+wt[j]+wt[k] <= c; k++ {
				gi, gj, gk := l.unit(i), l.unit(j), l.unit(k)
				jac := vector.Sum(r, l.product(l.product(gk, gj), gi), l.product(l.product(gj, gi), gk))
				jac = vector.Sum(r, jac, l.product(l.product(gi, gk), gj))
				emit("jacobi", l.collect(jac))
			}
		}
	}

	for i := 1; i <= n; i++ {
		if !p.IsTorsion(i) {
			continue
		}
		for j := 1; j <= n && wt[i]+wt[j] <= c; j++ {
			if j == i {
				continue
			}
			lhs := l.collect(vector.Prod(r, p.Exponent[i], l.product(l.unit(i), l.unit(j))))
			rhs := l.product(p.Power[i], l.unit(j))
			emit("torsion", l.collect(vector.Diff(r, lhs, rhs)))
		}
		if ann := p.Annihilator[i]; !r.IsZero(ann) {
			emit("annihilator", l.collect(vector.Prod(r, ann, p.Power[i])))
		}
	}
}

func (l *lieAlgebra[T]) eval(n *fpres.Node) vector.Sparse[T] {
	p, r := l.e.p, l.e.r
	switch n.Op {
	case fpres.OpGen:
		return p.Epimorphism[n.Gen]
	case fpres.OpIdentity:
		return nil
	case fpres.OpSum:
		acc := l.eval(n.Args[0])
		for _, a := range n.Args[1:] {
			acc = vector.Sum(r, acc, l.eval(a))
		}
		return l.collect(acc)
	case fpres.OpDiff, fpres.OpEqual:
		return l.collect(vector.Diff(r, l.eval(n.Args[0]), l.eval(n.Args[1])))
	case fpres.OpNeg:
		return l.collect(vector.Neg(r, l.eval(n.Args[0])))
	case fpres.OpScale:
		return l.collect(vector.Prod(r, l.e.number(n), l.eval(n.Args[0])))
	case fpres.OpBracket:
		acc := l.eval(n.Args[0])
		for _, a := range n.Args[1:] {
			acc = l.product(acc, l.eval(a))
		}
		return acc
	}
	fail("eval", p.Class, "operator %s is not defined in a Lie ring", n.Op)
	return nil
}
