// Package nilq computes nilpotent quotients of finitely presented Lie rings
// and groups.
//
// Starting from generators and relators, nilq builds a consistent
// polycyclic (pc) presentation of the lower central series quotient one
// class at a time: it introduces tail generators for every relation of the
// new weight, collects the consistency defects and relator values among
// them into a relation matrix in Hermite normal form, and eliminates or
// classifies the tails. The run ends when a class adds no generators or the
// class bound is reached.
//
// # Quick Start
//
//	src := []byte("< a, b | [b, a, a], [b, a, b] >")
//	rep, err := nilq.Run(ctx, "heisenberg.nq", src,
//	    nilq.WithSignature(pc.Group),
//	    nilq.WithRing("integer"),
//	    nilq.WithMaxClass(10),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = rep.Render(os.Stdout, output.Plain)
//
// With the coefficient type known at compile time, Quotient returns the
// presentation itself:
//
//	fp, _ := fpres.Parse("free.nq", []byte("< a, b | >"), pc.LieRing)
//	res, _ := nilq.Quotient(ctx, ring.Ring[int64](ring.Int64{}), fp, nilq.WithMaxClass(4))
//	fmt.Println(res.Presentation.Ranks()) // [2 1 2 3]
//
// # Coefficient Rings
//
// Lie rings can be computed over the integers ("int64" with overflow
// detection, or arbitrary precision "integer"), over Z/2^k ("mod2k:<k>")
// and over Z/p^k ("modpk:<p>:<k>"). Groups need integer exponents.
//
// # Checkpoints
//
// WithCheckpointer writes a snapshot after every class to a blob store
// (local directory, S3, S3 with a DynamoDB commit pointer, or MinIO).
// WithResume continues a run from its latest snapshot.
//
// # Errors
//
// Malformed input wraps ErrInput and carries a *fpres.SyntaxError with the
// line and column. Internal inconsistencies and fixed-width overflow wrap
// ErrInvariant; failures during a class are reported as *RunError.
package nilq
