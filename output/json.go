package output

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/vector"
)

// Document is the JSON form of a presentation. Coefficients are decimal
// strings.
type Document struct {
	Signature   string      `json:"signature"`
	Ring        string      `json:"ring"`
	Class       int         `json:"class"`
	Ranks       []int       `json:"ranks"`
	Generators  []Generator `json:"generators"`
	Products    []Product   `json:"products"`
	Epimorphism []Image     `json:"epimorphism"`
}

// Term is one generator with its coefficient (an exponent for groups).
type Term struct {
	Gen  int    `json:"gen"`
	Coef string `json:"coef"`
}

// Generator describes a pc generator.
type Generator struct {
	Index      int    `json:"index"`
	Weight     int    `json:"weight"`
	Definition string `json:"definition"`
	Exponent   string `json:"exponent,omitempty"`
	Power      []Term `json:"power,omitempty"`
}

// Product is a nontrivial commutator [g_J, g_I].
type Product struct {
	J     int    `json:"j"`
	I     int    `json:"i"`
	Value []Term `json:"value"`
}

// Image is the image of an original generator.
type Image struct {
	Name  string `json:"name"`
	Value []Term `json:"value"`
}

func terms[T any](p *pc.Presentation[T], v vector.Sparse[T]) []Term {
	out := make([]Term, len(v))
	for k, x := range v {
		out[k] = Term{Gen: x.Gen, Coef: p.Ring.String(x.Coef)}
	}
	return out
}

// NewDocument builds the JSON document of p.
func NewDocument[T any](p *pc.Presentation[T]) Document {
	d := Document{
		Signature:   p.Signature.String(),
		Ring:        p.Ring.Name(),
		Class:       p.Class,
		Ranks:       p.Ranks(),
		Generators:  make([]Generator, 0, p.NrPcGens),
		Products:    []Product{},
		Epimorphism: make([]Image, len(p.Epimorphism)),
	}
	for g := 1; g <= p.NrPcGens; g++ {
		gen := Generator{Index: g, Weight: p.Weight[g], Definition: definition(p, p.Def[g])}
		if p.IsTorsion(g) {
			gen.Exponent = p.Ring.String(p.Exponent[g])
			gen.Power = terms(p, p.Power[g])
		}
		d.Generators = append(d.Generators, gen)
		for i := 1; i < g; i++ {
			if v := p.Comm[g][i]; !v.IsZero() {
				d.Products = append(d.Products, Product{J: g, I: i, Value: terms(p, v)})
			}
		}
	}
	for x, v := range p.Epimorphism {
		d.Epimorphism[x] = Image{Name: p.GenNames[x], Value: terms(p, v)}
	}
	return d
}

// WriteJSON renders p as an indented JSON document.
func WriteJSON[T any](w io.Writer, p *pc.Presentation[T]) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(p))
}
