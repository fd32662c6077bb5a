package engine

import (
	"github.com/hupe1980/nilq/fpres"
	"github.com/hupe1980/nilq/vector"
)

// algebra is the signature-specific part of a step.
type algebra[T any] interface {
	// collect returns the normal form of v.
	collect(v vector.Sparse[T]) vector.Sparse[T]
	// product is the Lie bracket or the group product.
	product(u, v vector.Sparse[T]) vector.Sparse[T]
	// derivable reports whether the tail of [g_j, g_i] follows from
	// earlier tails instead of needing a fresh generator.
	derivable(j, i int) bool
	// derive computes the value of [g_j, g_i] for a derivable pair.
	derive(j, i int) vector.Sparse[T]
	// consistency emits every defect among the current generators.
	consistency(emit func(op string, v vector.Sparse[T]))
	// eval evaluates a relator.
	eval(n *fpres.Node) vector.Sparse[T]
	// reset drops caches after the presentation changed.
	reset()
}
