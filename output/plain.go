package output

import (
	"io"
	"strings"

	"github.com/hupe1980/nilq/pc"
)

// WritePlain lists the generators with weights and definitions, the images
// of the original generators, the torsion relations and every nontrivial
// commutator.
func WritePlain[T any](w io.Writer, p *pc.Presentation[T]) error {
	r := p.Ring
	ew := &errWriter{w: w}

	ew.printf("# %s quotient of class %d over %s\n", p.Signature, p.Class, r.Name())
	ew.printf("# %d generators, ranks %v\n", p.NrPcGens, p.Ranks())

	ew.printf("\ngenerators:\n")
	for g := 1; g <= p.NrPcGens; g++ {
		ew.printf("  %-6s weight %d  %s\n", genName(g), p.Weight[g], definition(p, p.Def[g]))
	}

	ew.printf("\nepimorphism:\n")
	for x, name := range p.GenNames {
		ew.printf("  %s -> %s\n", name, word(p, p.Epimorphism[x], genName))
	}

	torsion := false
	for g := 1; g <= p.NrPcGens; g++ {
		if !p.IsTorsion(g) {
			continue
		}
		if !torsion {
			ew.printf("\ntorsion:\n")
			torsion = true
		}
		e := r.String(p.Exponent[g])
		lhs := e + "*" + genName(g)
		if p.Signature == pc.Group {
			lhs = genName(g) + "^" + e
		}
		ew.printf("  %s = %s\n", lhs, word(p, p.Power[g], genName))
	}

	ew.printf("\nproducts:\n")
	for j := 2; j <= p.NrPcGens; j++ {
		for i := 1; i < j; i++ {
			if v := p.Comm[j][i]; !v.IsZero() {
				ew.printf("  [%s, %s] = %s\n", genName(j), genName(i), word(p, v, genName))
			}
		}
	}
	return ew.err
}

func definition[T any](p *pc.Presentation[T], d pc.Definition) string {
	switch d.Kind {
	case pc.Image:
		return "image of " + p.GenNames[d.G]
	case pc.Commutator:
		return "[" + genName(d.G) + ", " + genName(d.H) + "]"
	case pc.Power:
		e := p.Ring.String(p.Exponent[d.G])
		if p.Signature == pc.Group {
			return genName(d.G) + "^" + e
		}
		return e + "*" + genName(d.G)
	}
	return strings.ToLower(d.String())
}
