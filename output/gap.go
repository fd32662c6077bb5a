package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/vector"
)

// WriteGAP renders p as GAP code. A group becomes a finitely presented
// group F/rels on the pc generators; a Lie ring becomes a record of weights,
// torsion exponents, power relations and structure constants.
func WriteGAP[T any](w io.Writer, p *pc.Presentation[T]) error {
	ew := &errWriter{w: w}
	ew.printf("# %s quotient of class %d over %s\n", p.Signature, p.Class, p.Ring.Name())
	if p.Signature == pc.Group {
		writeGAPGroup(ew, p)
	} else {
		writeGAPLie(ew, p)
	}
	return ew.err
}

func gapGen(g int) string { return fmt.Sprintf("g[%d]", g) }

func writeGAPGroup[T any](ew *errWriter, p *pc.Presentation[T]) {
	gw := func(v vector.Sparse[T]) string {
		if v.IsZero() {
			return "One(F)"
		}
		return word(p, v, gapGen)
	}

	names := make([]string, p.NrPcGens)
	for g := range names {
		names[g] = strconv.Quote(genName(g + 1))
	}
	ew.printf("F := FreeGroup(%s);;\n", strings.Join(names, ", "))
	ew.printf("g := GeneratorsOfGroup(F);;\n")
	ew.printf("rels := [\n")
	for g := 1; g <= p.NrPcGens; g++ {
		if p.IsTorsion(g) {
			ew.printf("  %s^%s / (%s),\n", gapGen(g), p.Ring.String(p.Exponent[g]), gw(p.Power[g]))
		}
	}
	for j := 2; j <= p.NrPcGens; j++ {
		for i := 1; i < j; i++ {
			ew.printf("  Comm(%s, %s) / (%s),\n", gapGen(j), gapGen(i), gw(p.Comm[j][i]))
		}
	}
	ew.printf("];;\n")
	ew.printf("G := F / rels;;\n")

	images := make([]string, len(p.Epimorphism))
	for x, v := range p.Epimorphism {
		images[x] = fmt.Sprintf("  # %s\n  %s", p.GenNames[x], gw(v))
	}
	ew.printf("epi := [\n%s\n];;\n", strings.Join(images, ",\n"))
}

// gapVector renders v as a list of [generator, coefficient] pairs.
func gapVector[T any](p *pc.Presentation[T], v vector.Sparse[T]) string {
	parts := make([]string, len(v))
	for k, x := range v {
		parts[k] = fmt.Sprintf("[ %d, %s ]", x.Gen, p.Ring.String(x.Coef))
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

func writeGAPLie[T any](ew *errWriter, p *pc.Presentation[T]) {
	n := p.NrPcGens
	weights := make([]string, n)
	torsion := make([]string, n)
	powers := make([]string, n)
	for g := 1; g <= n; g++ {
		weights[g-1] = strconv.Itoa(p.Weight[g])
		torsion[g-1] = p.Ring.String(p.Exponent[g])
		powers[g-1] = gapVector(p, p.Power[g])
	}

	var products []string
	for j := 2; j <= n; j++ {
		for i := 1; i < j; i++ {
			if v := p.Comm[j][i]; !v.IsZero() {
				products = append(products, fmt.Sprintf("    [ %d, %d, %s ]", j, i, gapVector(p, v)))
			}
		}
	}
	images := make([]string, len(p.Epimorphism))
	for x, v := range p.Epimorphism {
		images[x] = fmt.Sprintf("    [ %s, %s ]", strconv.Quote(p.GenNames[x]), gapVector(p, v))
	}

	ew.printf("NilqLieRing := rec(\n")
	ew.printf("  ring := %s,\n", strconv.Quote(p.Ring.Name()))
	ew.printf("  class := %d,\n", p.Class)
	ew.printf("  weights := [ %s ],\n", strings.Join(weights, ", "))
	ew.printf("  torsion := [ %s ],\n", strings.Join(torsion, ", "))
	ew.printf("  powers := [ %s ],\n", strings.Join(powers, ", "))
	ew.printf("  products := [\n%s\n  ],\n", strings.Join(products, ",\n"))
	ew.printf("  epimorphism := [\n%s\n  ]\n", strings.Join(images, ",\n"))
	ew.printf(");\n")
}
