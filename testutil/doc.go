// Package testutil provides deterministic random inputs for nilq tests.
//
// This package is intended for use in tests and benchmarks only.
//
//	rng := testutil.NewRNG(seed)
//	v := testutil.RandomSparse[int64](rng, ring.Int64{}, 40, 0.2, 9)
//	src := rng.LiePresentation([]string{"a", "b", "c"}, 2)
package testutil
