package checkpoint

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/ring"
	"github.com/hupe1980/nilq/vector"
)

// FormatVersion is written into every snapshot.
const FormatVersion = 1

// ErrMismatch is returned when a snapshot does not fit the requested run.
var ErrMismatch = errors.New("checkpoint: snapshot does not match run")

// entry is a sparse vector entry; coefficients are decimal strings so that
// every ring backend round-trips exactly.
type entry struct {
	Gen  int    `json:"g"`
	Coef string `json:"c"`
}

type commutator struct {
	J     int     `json:"j"`
	I     int     `json:"i"`
	Value []entry `json:"v"`
}

type definition struct {
	Kind pc.DefKind `json:"k"`
	G    int        `json:"g,omitempty"`
	H    int        `json:"h,omitempty"`
}

// snapshot is the wire form of a presentation. Index 0 of the per-generator
// arrays is unused, as in pc.Presentation.
type snapshot struct {
	Version     int          `json:"version"`
	Ring        string       `json:"ring"`
	Signature   string       `json:"signature"`
	Generators  []string     `json:"generators"`
	Class       int          `json:"class"`
	Graded      bool         `json:"graded,omitempty"`
	DefaultExp  string       `json:"default_exponent,omitempty"`
	NrPcGens    int          `json:"nr_pc_gens"`
	Weight      []int        `json:"weight"`
	Def         []definition `json:"def"`
	Exponent    []string     `json:"exponent"`
	Power       [][]entry    `json:"power"`
	Comm        []commutator `json:"comm"`
	Epimorphism [][]entry    `json:"epimorphism"`
}

func encodeVector[T any](r ring.Ring[T], v vector.Sparse[T]) []entry {
	out := make([]entry, len(v))
	for k, x := range v {
		out[k] = entry{Gen: x.Gen, Coef: r.String(x.Coef)}
	}
	return out
}

func decodeVector[T any](r ring.Ring[T], es []entry, n int) (vector.Sparse[T], error) {
	if len(es) == 0 {
		return nil, nil
	}
	v := make(vector.Sparse[T], len(es))
	for k, e := range es {
		if e.Gen < 1 || e.Gen > n {
			return nil, fmt.Errorf("checkpoint: generator %d out of range 1..%d", e.Gen, n)
		}
		c, err := r.FromString(e.Coef)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: coefficient %q: %w", e.Coef, err)
		}
		v[k] = vector.Entry[T]{Gen: e.Gen, Coef: c}
	}
	if !v.Valid(r) {
		return nil, fmt.Errorf("checkpoint: vector is not strictly increasing with nonzero coefficients")
	}
	return v, nil
}

// Marshal encodes p as JSON.
func Marshal[T any](p *pc.Presentation[T]) ([]byte, error) {
	r := p.Ring
	n := p.NrPcGens
	s := snapshot{
		Version:     FormatVersion,
		Ring:        r.Name(),
		Signature:   p.Signature.String(),
		Generators:  p.GenNames,
		Class:       p.Class,
		Graded:      p.Graded,
		DefaultExp:  r.String(p.DefaultExponent),
		NrPcGens:    n,
		Weight:      p.Weight[:n+1],
		Def:         make([]definition, n+1),
		Exponent:    make([]string, n+1),
		Power:       make([][]entry, n+1),
		Epimorphism: make([][]entry, len(p.Epimorphism)),
	}
	for g := 1; g <= n; g++ {
		d := p.Def[g]
		s.Def[g] = definition{Kind: d.Kind, G: d.G, H: d.H}
		s.Exponent[g] = r.String(p.Exponent[g])
		s.Power[g] = encodeVector(r, p.Power[g])
		for i := 1; i < g; i++ {
			if v := p.Comm[g][i]; !v.IsZero() {
				s.Comm = append(s.Comm, commutator{J: g, I: i, Value: encodeVector(r, v)})
			}
		}
	}
	for x, v := range p.Epimorphism {
		s.Epimorphism[x] = encodeVector(r, v)
	}
	return json.Marshal(s)
}

// Unmarshal decodes a presentation over r. The snapshot must have been
// written for a ring with the same name.
func Unmarshal[T any](data []byte, r ring.Ring[T]) (*pc.Presentation[T], error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("checkpoint: decode: %w", err)
	}
	if s.Version != FormatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrMismatch, s.Version, FormatVersion)
	}
	if s.Ring != r.Name() {
		return nil, fmt.Errorf("%w: ring %s, want %s", ErrMismatch, s.Ring, r.Name())
	}
	sig, err := pc.ParseSignature(s.Signature)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: %w", err)
	}
	n := s.NrPcGens
	if n < 0 || len(s.Weight) != n+1 || len(s.Def) != n+1 || len(s.Exponent) != n+1 ||
		len(s.Power) != n+1 || len(s.Epimorphism) != len(s.Generators) {
		return nil, fmt.Errorf("checkpoint: inconsistent lengths for %d generators", n)
	}

	p := pc.New(r, sig, s.Generators)
	p.Class = s.Class
	p.Graded = s.Graded
	if s.DefaultExp != "" {
		if p.DefaultExponent, err = r.FromString(s.DefaultExp); err != nil {
			return nil, fmt.Errorf("checkpoint: default exponent: %w", err)
		}
	}
	defs := make([]pc.Definition, n)
	for g := 1; g <= n; g++ {
		d := s.Def[g]
		defs[g-1] = pc.Definition{Kind: d.Kind, G: d.G, H: d.H}
	}
	for g := 1; g <= n; g++ {
		p.Append(1, s.Weight[g], defs[g-1:g], r.Zero())
		e, err := r.FromString(s.Exponent[g])
		if err != nil {
			return nil, fmt.Errorf("checkpoint: exponent of %d: %w", g, err)
		}
		p.SetExponent(g, e)
	}
	for g := 1; g <= n; g++ {
		if p.Power[g], err = decodeVector(r, s.Power[g], n); err != nil {
			return nil, err
		}
	}
	for _, c := range s.Comm {
		if c.I < 1 || c.I >= c.J || c.J > n {
			return nil, fmt.Errorf("checkpoint: commutator [%d,%d] out of range", c.J, c.I)
		}
		if p.Comm[c.J][c.I], err = decodeVector(r, c.Value, n); err != nil {
			return nil, err
		}
	}
	for x, es := range s.Epimorphism {
		if p.Epimorphism[x], err = decodeVector(r, es, n); err != nil {
			return nil, err
		}
	}
	if err := p.Check(); err != nil {
		return nil, fmt.Errorf("checkpoint: %w", err)
	}
	return p, nil
}
