package engine

import (
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/vector"
)

// tailPlan lists the commutators whose values follow from fresh tails.
type tailPlan struct {
	derived [][2]int
}

// addTails extends the presentation by one new generator for every relation
// of class c that is not already exact and cannot be derived. The new
// generators get weight c; their relations become old value + tail.
func (e *Engine[T]) addTails(c int) tailPlan {
	p, r := e.p, e.r
	old := p.NrPcGens
	e.first = old + 1
	graded := e.cfg.Graded

	var (
		plan tailPlan
		defs []pc.Definition
	)
	for i := 1; i <= old; i++ {
		for j := i + 1; j <= old; j++ {
			w := p.Weight[i] + p.Weight[j]
			if w > c {
				break
			}
			if graded && w != c {
				continue
			}
			if _, ok := p.ExactCommutator(j, i); ok {
				continue
			}
			if e.alg.derivable(j, i) {
				plan.derived = append(plan.derived, [2]int{j, i})
				continue
			}
			defs = append(defs, pc.CommutatorDef(j, i))
		}
	}
	if !graded {
		for g := 1; g <= old; g++ {
			if !p.IsTorsion(g) {
				continue
			}
			if _, ok := p.ExactPower(g); ok {
				continue
			}
			defs = append(defs, pc.PowerDef(g))
		}
	}
	if !graded || c == 1 {
		for x := range p.Epimorphism {
			if _, ok := p.ExactImage(x); ok {
				continue
			}
			defs = append(defs, pc.ImageDef(x))
		}
	}

	first := p.Append(len(defs), c, defs, e.cfg.TorsionExp)
	for k, d := range defs {
		t := vector.Unit(r, first+k)
		switch d.Kind {
		case pc.Commutator:
			p.Comm[d.G][d.H] = vector.Sum(r, p.Comm[d.G][d.H], t)
		case pc.Power:
			p.Power[d.G] = vector.Sum(r, p.Power[d.G], t)
		case pc.Image:
			p.Epimorphism[d.G] = vector.Sum(r, p.Epimorphism[d.G], t)
		}
	}
	if n := p.NrPcGens - old; n != len(defs) {
		fail("tails", c, "introduced %d generators for %d relations", n, len(defs))
	}
	for g := first; g <= p.NrPcGens; g++ {
		if !p.IsDefining(g) && len(e.relationOf(p.Def[g]).Tail(g)) != 1 {
			fail("tails", c, "tail %d is not isolated in %s", g, p.Def[g])
		}
	}
	p.Class = c
	return plan
}

// relationOf returns the current value of the relation d defines.
func (e *Engine[T]) relationOf(d pc.Definition) vector.Sparse[T] {
	switch d.Kind {
	case pc.Commutator:
		return e.p.Comm[d.G][d.H]
	case pc.Power:
		return e.p.Power[d.G]
	case pc.Image:
		return e.p.Epimorphism[d.G]
	}
	return nil
}

// deriveTails fills in the derivable commutators. The plan is ordered so
// that every pair only depends on pairs before it.
func (e *Engine[T]) deriveTails(plan tailPlan) {
	for _, ji := range plan.derived {
		j, i := ji[0], ji[1]
		e.p.Comm[j][i] = e.alg.derive(j, i)
	}
}
