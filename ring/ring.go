// Package ring defines the coefficient ring contract the quotient engine is
// generic over, together with the concrete backends: checked machine words,
// arbitrary precision integers, Z/2^k and Z/p^k.
//
// None of these rings is a field. Division is only available as exact
// division, Euclidean floor division and the extended gcd; zero divisors are
// exposed through UnitAnnihilator.
package ring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrOverflow is the sentinel for arithmetic that does not fit a fixed-width backend.
var ErrOverflow = errors.New("ring: arithmetic overflow")

// ErrInvalidRing is returned by Parse for unknown ring specifications.
var ErrInvalidRing = errors.New("ring: invalid ring specification")

// OverflowError reports the operation that overflowed.
//
// Fixed-width backends panic with *OverflowError; the engine recovers it at
// the class boundary and returns it as an error.
type OverflowError struct {
	Op string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("ring: %s overflows fixed-width backend", e.Op)
}

func (e *OverflowError) Unwrap() error { return ErrOverflow }

// Ring is the coefficient ring contract.
//
// Elements are values of type T. Implementations must treat elements as
// immutable: no method may modify its arguments.
type Ring[T any] interface {
	// Name is a short stable identifier, e.g. "int64" or "mod2k:8".
	Name() string

	Zero() T
	One() T
	FromInt(i int64) T

	IsZero(a T) bool
	IsOne(a T) bool
	Equal(a, b T) bool

	// IsReduced reports whether a lies in [0,b), or b is zero.
	IsReduced(a, b T) bool

	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Neg(a T) T
	// AddMul returns a + b*c.
	AddMul(a, b, c T) T
	// SubMul returns a - b*c.
	SubMul(a, b, c T) T
	MulInt(a T, n int64) T

	// DivExact returns q with q*b = a. b must divide a.
	DivExact(a, b T) T
	// FloorDivMod returns q, r with a = q*b + r and r reduced against b.
	FloorDivMod(a, b T) (q, r T)
	// ExtendedGCD returns the canonical gcd g and s, t with g = s*a + t*b.
	ExtendedGCD(a, b T) (g, s, t T)
	// UnitAnnihilator returns a unit u with a*u canonical and ann with a*ann = 0.
	// ann is zero when a is not a zero divisor.
	UnitAnnihilator(a T) (unit, ann T)
	// Valuation returns v and a/p^v for the ring's prime p. Rings without a
	// distinguished prime return (0, a).
	Valuation(a T) (int, T)

	Compare(a, b T) int
	// ToInt converts to a machine integer; ok is false if a does not fit.
	ToInt(a T) (int64, bool)
	FromString(s string) (T, error)
	String(a T) string

	// Integral reports whether the ring is a model of the integers, which
	// group exponents require.
	Integral() bool
}

// Kind names a backend family.
type Kind string

const (
	KindInt64   Kind = "int64"
	KindInteger Kind = "integer"
	KindMod2k   Kind = "mod2k"
	KindModPk   Kind = "modpk"
)

// Spec is a parsed ring selection such as "mod2k:6" or "modpk:3:4".
type Spec struct {
	Kind Kind
	P    uint64
	K    uint
}

// ParseSpec parses a ring selection string.
//
// Accepted forms: "int64", "integer", "mod2k:<k>", "modpk:<p>:<k>".
func ParseSpec(s string) (Spec, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	switch Kind(parts[0]) {
	case KindInt64, KindInteger:
		if len(parts) != 1 {
			return Spec{}, fmt.Errorf("%w: %q", ErrInvalidRing, s)
		}
		return Spec{Kind: Kind(parts[0])}, nil
	case KindMod2k:
		if len(parts) != 2 {
			return Spec{}, fmt.Errorf("%w: %q (want mod2k:<k>)", ErrInvalidRing, s)
		}
		k, err := strconv.ParseUint(parts[1], 10, 8)
		if err != nil || k == 0 || k > 64 {
			return Spec{}, fmt.Errorf("%w: %q (k must be in 1..64)", ErrInvalidRing, s)
		}
		return Spec{Kind: KindMod2k, P: 2, K: uint(k)}, nil
	case KindModPk:
		if len(parts) != 3 {
			return Spec{}, fmt.Errorf("%w: %q (want modpk:<p>:<k>)", ErrInvalidRing, s)
		}
		p, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil || p < 2 {
			return Spec{}, fmt.Errorf("%w: %q (bad prime)", ErrInvalidRing, s)
		}
		k, err := strconv.ParseUint(parts[2], 10, 8)
		if err != nil || k == 0 {
			return Spec{}, fmt.Errorf("%w: %q (bad exponent)", ErrInvalidRing, s)
		}
		return Spec{Kind: KindModPk, P: p, K: uint(k)}, nil
	default:
		return Spec{}, fmt.Errorf("%w: %q", ErrInvalidRing, s)
	}
}

func (s Spec) String() string {
	switch s.Kind {
	case KindMod2k:
		return fmt.Sprintf("mod2k:%d", s.K)
	case KindModPk:
		return fmt.Sprintf("modpk:%d:%d", s.P, s.K)
	default:
		return string(s.Kind)
	}
}
