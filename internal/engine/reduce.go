package engine

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/nilq/internal/relmat"
	"github.com/hupe1980/nilq/vector"
)

type reduction struct {
	survivors  int
	torsion    int
	eliminated int
}

// reduce reads the Hermite normal form of m. A tail with a unit pivot is
// eliminated and replaced by minus the rest of its row everywhere; a tail
// with a non-unit pivot e becomes torsion with e*t = -rest; a tail without a
// row stays free. Survivors are renumbered contiguously from the first tail.
func (e *Engine[T]) reduce(m *relmat.Matrix[T]) reduction {
	p, r := e.p, e.r
	first, last := e.first, e.first+m.Cols()-1

	var red reduction
	elim := roaring.New()
	subst := make(map[int]vector.Sparse[T])
	for t := last; t >= first; t-- {
		row := m.Row(t)
		if row == nil {
			p.SetExponent(t, r.Zero())
			continue
		}
		rest := vector.Neg(r, row[1:])
		if r.IsOne(row[0].Coef) {
			elim.Add(uint32(t))
			subst[t] = rest
			continue
		}
		p.SetExponent(t, row[0].Coef)
		p.Power[t] = e.alg.collect(rest)
	}

	index := make([]int, last+1)
	for g := 1; g < first; g++ {
		index[g] = g
	}
	next := first
	for t := first; t <= last; t++ {
		if elim.Contains(uint32(t)) {
			continue
		}
		index[t] = next
		next++
		red.survivors++
		if p.IsTorsion(t) {
			red.torsion++
		}
	}
	red.eliminated = int(elim.GetCardinality())
	renumber := func(g int) int { return index[g] }

	substitute := func(v vector.Sparse[T]) vector.Sparse[T] {
		if v.Last() < first {
			return v
		}
		lo, hi := v.Split(first)
		h := e.a.Acquire()
		h.Load(lo)
		for _, x := range hi {
			if s, ok := subst[x.Gen]; ok {
				h.AddSparse(x.Coef, s)
			} else {
				h.Add(x.Gen, x.Coef)
			}
		}
		v = h.Take()
		e.a.Release(h)
		return e.alg.collect(v)
	}

	// Collection reads the old numbering, so every value is computed before
	// any is renumbered.
	var slots []*vector.Sparse[T]
	for g := 1; g < first; g++ {
		slots = append(slots, &p.Power[g])
		for i := 1; i < g; i++ {
			slots = append(slots, &p.Comm[g][i])
		}
	}
	for x := range p.Epimorphism {
		slots = append(slots, &p.Epimorphism[x])
	}
	values := make([]vector.Sparse[T], len(slots))
	for k, s := range slots {
		values[k] = substitute(*s)
	}
	for k, s := range slots {
		*s = values[k].Map(renumber)
	}
	for t := first; t <= last; t++ {
		if elim.Contains(uint32(t)) {
			continue
		}
		if w := p.Power[t]; !w.IsZero() && w.Head() <= t {
			fail("reduce", p.Class, "power relation of %d is not above it", t)
		}
		p.Power[t] = p.Power[t].Map(renumber)
	}

	if red.eliminated > 0 {
		keep := func(g int) bool { return g < first || !elim.Contains(uint32(g)) }
		p.Weight = compact(p.Weight, keep)
		p.Def = compact(p.Def, keep)
		p.Exponent = compact(p.Exponent, keep)
		p.Annihilator = compact(p.Annihilator, keep)
		p.Power = compact(p.Power, keep)
		p.Comm = p.Comm[:next]
		for g := first; g < next; g++ {
			p.Comm[g] = make([]vector.Sparse[T], g)
		}
		p.NrPcGens = next - 1
	}

	if err := p.Check(); err != nil {
		fail("reduce", p.Class, "%v", err)
	}
	return red
}

// compact keeps the entries of s whose index satisfies keep.
func compact[E any](s []E, keep func(int) bool) []E {
	out := s[:0]
	for g, x := range s {
		if keep(g) {
			out = append(out, x)
		}
	}
	return out
}
