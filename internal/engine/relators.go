package engine

import (
	"github.com/hupe1980/nilq/fpres"
	"github.com/hupe1980/nilq/internal/relmat"
	"github.com/hupe1980/nilq/vector"
)

// checkConsistency queues every consistency defect. Defects must be
// central, i.e. lie in the span of the tails.
func (e *Engine[T]) checkConsistency(m *relmat.Matrix[T]) {
	e.alg.consistency(func(op string, v vector.Sparse[T]) {
		m.Queue(e.tailPart(op, v))
	})
}

// evalRelators queues the values of the defining relators. In graded mode
// the part below the tails belongs to lower layers and is dropped.
func (e *Engine[T]) evalRelators(m *relmat.Matrix[T]) {
	for _, n := range e.rels {
		v := e.alg.eval(n)
		if e.cfg.Graded {
			_, v = v.Split(e.first)
		} else {
			v = e.tailPart("relator", v)
		}
		m.Queue(v)
	}
}

// number converts an integer literal of the input into a ring element.
func (e *Engine[T]) number(n *fpres.Node) T {
	v, err := e.r.FromString(n.Num)
	if err != nil {
		fail("eval", e.p.Class, "integer %s at %d:%d: %v", n.Num, n.Pos.Line, n.Pos.Col, err)
	}
	return v
}
