// Package engine advances a pc presentation one nilpotency class at a time.
//
// A step extends the presentation by tail generators, collects the
// consistency defects and relator values among the tails into a relation
// matrix, brings the matrix to Hermite normal form and eliminates or
// classifies the tails accordingly. Lie rings and groups share the driver
// and differ in the algebra strategy: bracket expansion or collection.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/nilq/fpres"
	"github.com/hupe1980/nilq/internal/arena"
	"github.com/hupe1980/nilq/internal/relmat"
	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/ring"
	"github.com/hupe1980/nilq/vector"
)

// Config controls a run.
type Config[T any] struct {
	// Graded restricts tails to the current weight layer (Lie rings only).
	Graded bool
	// TorsionExp is the exponent of new generators; zero means torsion-free.
	TorsionExp T
	// QueueFactor tunes the relation queue flush threshold.
	QueueFactor int
	// Arena options, e.g. a memory acquirer.
	ArenaOptions []arena.Option
}

// StepResult summarizes one class step.
type StepResult struct {
	Class      int
	Tails      int
	Derived    int
	NewGens    int
	Torsion    int
	Eliminated int
	Rows       int
	TotalGens  int
	Matrix     relmat.Stats
	Elapsed    time.Duration
}

// Engine owns the presentation under construction.
type Engine[T any] struct {
	p    *pc.Presentation[T]
	r    ring.Ring[T]
	a    *arena.Arena[T]
	alg  algebra[T]
	cfg  Config[T]
	rels []*fpres.Node

	// first is the first tail of the step in progress.
	first int
}

// New returns an engine for p, which is usually a fresh class-0
// presentation, with the relators of the finite presentation.
func New[T any](p *pc.Presentation[T], rels []*fpres.Node, cfg Config[T]) (*Engine[T], error) {
	if p.Signature == pc.Group {
		if cfg.Graded {
			return nil, fmt.Errorf("%w: graded mode applies to Lie rings only", ErrUnsupported)
		}
		if !p.Ring.Integral() {
			return nil, fmt.Errorf("%w: group exponents need an integral ring, not %s", ErrUnsupported, p.Ring.Name())
		}
	}
	if p.Ring.Compare(cfg.TorsionExp, p.Ring.Zero()) < 0 {
		return nil, fmt.Errorf("%w: negative default exponent", ErrUnsupported)
	}
	if cfg.QueueFactor <= 0 {
		cfg.QueueFactor = relmat.DefaultQueueFactor
	}
	if p.Class == 0 {
		p.Graded = cfg.Graded
		p.DefaultExponent = cfg.TorsionExp
	}
	e := &Engine[T]{
		p:    p,
		r:    p.Ring,
		a:    arena.New[T](p.Ring, p.NrPcGens, cfg.ArenaOptions...),
		cfg:  cfg,
		rels: rels,
	}
	switch p.Signature {
	case pc.Group:
		e.alg = newGroupAlgebra(e)
	default:
		e.alg = &lieAlgebra[T]{e: e}
	}
	return e, nil
}

// Presentation returns the presentation. It is valid between steps.
func (e *Engine[T]) Presentation() *pc.Presentation[T] { return e.p }

// Arena returns the scratch arena.
func (e *Engine[T]) Arena() *arena.Arena[T] { return e.a }

// Collect returns the normal form of v in the current presentation.
func (e *Engine[T]) Collect(v vector.Sparse[T]) vector.Sparse[T] { return e.alg.collect(v) }

// Product returns the bracket (Lie) or product (group) of u and v.
func (e *Engine[T]) Product(u, v vector.Sparse[T]) vector.Sparse[T] { return e.alg.product(u, v) }

// Eval evaluates an expression in the current presentation.
func (e *Engine[T]) Eval(n *fpres.Node) (v vector.Sparse[T], err error) {
	defer recoverStep(&err)
	return e.alg.eval(n), nil
}

// Close releases arena memory.
func (e *Engine[T]) Close() { e.a.Free() }

// Step computes the next class. It returns NewGens == 0 when the quotient
// has stabilized. An error leaves the presentation unusable.
func (e *Engine[T]) Step(ctx context.Context) (res StepResult, err error) {
	if err := ctx.Err(); err != nil {
		return res, err
	}
	defer recoverStep(&err)
	start := time.Now()
	p := e.p
	c := p.Class + 1
	old := p.NrPcGens
	res.Class = c

	plan := e.addTails(c)
	res.Tails = p.NrPcGens - old
	res.Derived = len(plan.derived)
	if err := e.a.Resize(ctx, p.NrPcGens); err != nil {
		return res, err
	}
	e.alg.reset()
	e.deriveTails(plan)

	m := relmat.New(e.r, e.a, e.first, res.Tails, e.cfg.TorsionExp, relmat.WithQueueFactor(e.cfg.QueueFactor))
	if res.Tails > 0 {
		e.checkConsistency(m)
		e.evalRelators(m)
	}
	m.Hermite()
	res.Rows = m.Len()
	res.Matrix = m.Stats()

	red := e.reduce(m)
	res.NewGens = red.survivors
	res.Torsion = red.torsion
	res.Eliminated = red.eliminated
	res.TotalGens = p.NrPcGens

	if d := e.a.Depth(); d != 0 {
		fail("step", c, "%d scratch vectors still live", d)
	}
	if err := e.a.Resize(ctx, p.NrPcGens); err != nil {
		return res, err
	}
	e.alg.reset()
	res.Elapsed = time.Since(start)
	return res, nil
}

// tailPart splits v at the first tail and requires the part below to vanish.
func (e *Engine[T]) tailPart(op string, v vector.Sparse[T]) vector.Sparse[T] {
	lo, hi := v.Split(e.first)
	if !lo.IsZero() {
		fail(op, e.p.Class, "defect %s does not lie in the centre",
			vector.Format(e.r, v, func(g int) string { return fmt.Sprintf("g%d", g) }))
	}
	return hi
}
