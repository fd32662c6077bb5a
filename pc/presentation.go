// Package pc holds the polycyclic presentation under construction: the
// generator table with weights and definitions, torsion exponents, power
// relations, the triangular commutator table and the epimorphism from the
// original generators.
//
// Generators are numbered 1..NrPcGens. Index 0 of every per-generator slice
// is unused so that generator numbers index directly.
package pc

import (
	"fmt"

	"github.com/hupe1980/nilq/ring"
	"github.com/hupe1980/nilq/vector"
)

// Signature selects the algebraic structure being quotiented.
type Signature uint8

const (
	// LieRing computes lower central quotients of a Lie ring.
	LieRing Signature = iota
	// Group computes lower central quotients of a group.
	Group
)

func (s Signature) String() string {
	switch s {
	case LieRing:
		return "lie"
	case Group:
		return "group"
	default:
		return fmt.Sprintf("Signature(%d)", s)
	}
}

// ParseSignature accepts "lie" or "group".
func ParseSignature(s string) (Signature, error) {
	switch s {
	case "lie", "lie-ring", "liering":
		return LieRing, nil
	case "group":
		return Group, nil
	default:
		return 0, fmt.Errorf("pc: unknown signature %q", s)
	}
}

// DefKind tags a generator definition.
type DefKind uint8

const (
	// Pending marks a generator that is not yet classified.
	Pending DefKind = iota
	// Image marks the image of original generator G.
	Image
	// Commutator marks the value of [G, H] with G > H.
	Commutator
	// Power marks the torsion relation of generator G.
	Power
)

// Definition records why a generator exists.
type Definition struct {
	Kind DefKind
	G    int
	H    int
}

// ImageDef returns Image(x).
func ImageDef(x int) Definition { return Definition{Kind: Image, G: x} }

// CommutatorDef returns Commutator(j, i).
func CommutatorDef(j, i int) Definition { return Definition{Kind: Commutator, G: j, H: i} }

// PowerDef returns Power(g).
func PowerDef(g int) Definition { return Definition{Kind: Power, G: g} }

func (d Definition) String() string {
	switch d.Kind {
	case Image:
		return fmt.Sprintf("Image(%d)", d.G)
	case Commutator:
		return fmt.Sprintf("Commutator(%d,%d)", d.G, d.H)
	case Power:
		return fmt.Sprintf("Power(%d)", d.G)
	default:
		return "Pending"
	}
}

// Presentation is a pc presentation over the coefficient ring T.
type Presentation[T any] struct {
	Ring      ring.Ring[T]
	Signature Signature
	// GenNames are the original generator names; Epimorphism is indexed alike.
	GenNames []string

	Class    int
	NrPcGens int

	// Graded and DefaultExponent record the mode the table is built in; a
	// resumed computation must continue in the same mode.
	Graded          bool
	DefaultExponent T

	Weight      []int
	Def         []Definition
	Exponent    []T
	Annihilator []T
	Power       []vector.Sparse[T]
	// Comm[j][i], i < j, is the value of [g_j, g_i]; len(Comm[j]) == j.
	Comm        [][]vector.Sparse[T]
	Epimorphism []vector.Sparse[T]
}

// New returns the class-0 presentation for the given original generators.
func New[T any](r ring.Ring[T], sig Signature, genNames []string) *Presentation[T] {
	return &Presentation[T]{
		Ring:            r,
		Signature:       sig,
		GenNames:        append([]string(nil), genNames...),
		DefaultExponent: r.Zero(),
		Weight:          []int{0},
		Def:             []Definition{{}},
		Exponent:        []T{r.Zero()},
		Annihilator:     []T{r.Zero()},
		Power:           []vector.Sparse[T]{nil},
		Comm:            [][]vector.Sparse[T]{nil},
		Epimorphism:     make([]vector.Sparse[T], len(genNames)),
	}
}

// NrGens returns the number of original generators.
func (p *Presentation[T]) NrGens() int { return len(p.GenNames) }

// IsTorsion reports whether g has a nonzero exponent.
func (p *Presentation[T]) IsTorsion(g int) bool { return !p.Ring.IsZero(p.Exponent[g]) }

// Append adds n generators of the given weight with exponent e, empty power
// relations and trivial commutators. It returns the first new generator.
func (p *Presentation[T]) Append(n, weight int, defs []Definition, e T) int {
	first := p.NrPcGens + 1
	_, ann := p.annihilatorOf(e)
	for k := 0; k < n; k++ {
		g := first + k
		p.Weight = append(p.Weight, weight)
		d := Definition{}
		if k < len(defs) {
			d = defs[k]
		}
		p.Def = append(p.Def, d)
		p.Exponent = append(p.Exponent, e)
		p.Annihilator = append(p.Annihilator, ann)
		p.Power = append(p.Power, nil)
		p.Comm = append(p.Comm, make([]vector.Sparse[T], g))
	}
	p.NrPcGens += n
	return first
}

// SetExponent records a torsion exponent and its annihilator.
func (p *Presentation[T]) SetExponent(g int, e T) {
	p.Exponent[g] = e
	_, p.Annihilator[g] = p.annihilatorOf(e)
}

func (p *Presentation[T]) annihilatorOf(e T) (T, T) {
	if p.Ring.IsZero(e) {
		return p.Ring.One(), p.Ring.Zero()
	}
	return p.Ring.UnitAnnihilator(e)
}

// ExactCommutator reports whether [g_j, g_i] is exactly a defining generator.
func (p *Presentation[T]) ExactCommutator(j, i int) (int, bool) {
	v := p.Comm[j][i]
	if len(v) != 1 || !p.Ring.IsOne(v[0].Coef) {
		return 0, false
	}
	k := v[0].Gen
	return k, p.Def[k] == CommutatorDef(j, i)
}

// ExactPower reports whether the power relation of g is exactly a defining generator.
func (p *Presentation[T]) ExactPower(g int) (int, bool) {
	v := p.Power[g]
	if !p.IsTorsion(g) || len(v) != 1 || !p.Ring.IsOne(v[0].Coef) {
		return 0, false
	}
	k := v[0].Gen
	return k, p.Def[k] == PowerDef(g)
}

// ExactImage reports whether the image of original generator x is exactly a defining generator.
func (p *Presentation[T]) ExactImage(x int) (int, bool) {
	v := p.Epimorphism[x]
	if len(v) != 1 || !p.Ring.IsOne(v[0].Coef) {
		return 0, false
	}
	k := v[0].Gen
	return k, p.Def[k] == ImageDef(x)
}

// IsDefining reports whether generator k equals its defining relation's value exactly.
func (p *Presentation[T]) IsDefining(k int) bool {
	d := p.Def[k]
	var got int
	var ok bool
	switch d.Kind {
	case Image:
		got, ok = p.ExactImage(d.G)
	case Commutator:
		got, ok = p.ExactCommutator(d.G, d.H)
	case Power:
		got, ok = p.ExactPower(d.G)
	}
	return ok && got == k
}

// Ranks returns the number of generators of each weight 1..Class.
func (p *Presentation[T]) Ranks() []int {
	out := make([]int, p.Class)
	for g := 1; g <= p.NrPcGens; g++ {
		if w := p.Weight[g]; w >= 1 && w <= p.Class {
			out[w-1]++
		}
	}
	return out
}

// Check verifies the numbering invariants of the table: generators are
// numbered 1..NrPcGens with nondecreasing weights up to Class, each has a
// definition in terms of earlier generators, and every stored relation is a
// normalized vector over 1..NrPcGens.
func (p *Presentation[T]) Check() error {
	n := p.NrPcGens
	if n < 0 || len(p.Weight) != n+1 || len(p.Def) != n+1 || len(p.Exponent) != n+1 ||
		len(p.Annihilator) != n+1 || len(p.Power) != n+1 || len(p.Comm) != n+1 ||
		len(p.Epimorphism) != len(p.GenNames) {
		return fmt.Errorf("pc: tables do not cover %d generators", n)
	}
	checkVec := func(v vector.Sparse[T], what string, args ...any) error {
		if !v.Valid(p.Ring) {
			return fmt.Errorf("pc: %s is not normalized", fmt.Sprintf(what, args...))
		}
		if !v.IsZero() && (v.Head() < 1 || v.Last() > n) {
			return fmt.Errorf("pc: %s leaves generators 1..%d", fmt.Sprintf(what, args...), n)
		}
		return nil
	}
	for g := 1; g <= n; g++ {
		if w := p.Weight[g]; w < 1 || w > p.Class || w < p.Weight[g-1] {
			return fmt.Errorf("pc: generator %d has weight %d out of order", g, w)
		}
		switch d := p.Def[g]; d.Kind {
		case Image:
			if d.G < 0 || d.G >= p.NrGens() {
				return fmt.Errorf("pc: generator %d is the image of unknown generator %d", g, d.G)
			}
		case Commutator:
			if d.H < 1 || d.H >= d.G || d.G >= g {
				return fmt.Errorf("pc: generator %d has definition %s", g, d)
			}
		case Power:
			if d.G < 1 || d.G >= g {
				return fmt.Errorf("pc: generator %d has definition %s", g, d)
			}
		default:
			return fmt.Errorf("pc: generator %d has no definition", g)
		}
		if err := checkVec(p.Power[g], "power relation of %d", g); err != nil {
			return err
		}
		if len(p.Comm[g]) != g {
			return fmt.Errorf("pc: commutator row %d has length %d", g, len(p.Comm[g]))
		}
		for i := 1; i < g; i++ {
			if err := checkVec(p.Comm[g][i], "commutator [%d,%d]", g, i); err != nil {
				return err
			}
		}
	}
	for x, v := range p.Epimorphism {
		if err := checkVec(v, "image of %s", p.GenNames[x]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy. Stored vectors are shared since they
// are never mutated in place.
func (p *Presentation[T]) Clone() *Presentation[T] {
	q := *p
	q.GenNames = append([]string(nil), p.GenNames...)
	q.Weight = append([]int(nil), p.Weight...)
	q.Def = append([]Definition(nil), p.Def...)
	q.Exponent = append([]T(nil), p.Exponent...)
	q.Annihilator = append([]T(nil), p.Annihilator...)
	q.Power = append([]vector.Sparse[T](nil), p.Power...)
	q.Epimorphism = append([]vector.Sparse[T](nil), p.Epimorphism...)
	q.Comm = make([][]vector.Sparse[T], len(p.Comm))
	for j := range p.Comm {
		q.Comm[j] = append([]vector.Sparse[T](nil), p.Comm[j]...)
	}
	return &q
}
