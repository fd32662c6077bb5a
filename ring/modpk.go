package ring

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strconv"
)

// ModPk is the ring Z/p^k for a prime p with p^k < 2^63, elements kept in
// [0, p^k). Products are reduced through a 128-bit intermediate.
type ModPk struct {
	p uint64
	k uint
	m uint64
}

var _ Ring[uint64] = ModPk{}

// NewModPk returns Z/p^k.
func NewModPk(p uint64, k uint) (ModPk, error) {
	if !isPrime(p) {
		return ModPk{}, fmt.Errorf("%w: %d is not prime", ErrInvalidRing, p)
	}
	if k == 0 {
		return ModPk{}, fmt.Errorf("%w: exponent must be positive", ErrInvalidRing)
	}
	m := uint64(1)
	for i := uint(0); i < k; i++ {
		hi, lo := bits.Mul64(m, p)
		if hi != 0 || lo > math.MaxInt64 {
			return ModPk{}, fmt.Errorf("%w: %d^%d does not fit 63 bits", ErrInvalidRing, p, k)
		}
		m = lo
	}
	return ModPk{p: p, k: k, m: m}, nil
}

func isPrime(p uint64) bool {
	if p < 2 {
		return false
	}
	for d := uint64(2); d*d <= p; d++ {
		if p%d == 0 {
			return false
		}
	}
	return true
}

func (r ModPk) Name() string { return fmt.Sprintf("%s:%d:%d", KindModPk, r.p, r.k) }

func (ModPk) Zero() uint64           { return 0 }
func (r ModPk) One() uint64          { return 1 % r.m }
func (ModPk) IsZero(a uint64) bool   { return a == 0 }
func (ModPk) IsOne(a uint64) bool    { return a == 1 }
func (ModPk) Equal(a, b uint64) bool { return a == b }
func (ModPk) Integral() bool         { return false }

func (ModPk) IsReduced(a, b uint64) bool { return b == 0 || a < b }

func (r ModPk) FromInt(i int64) uint64 {
	if i >= 0 {
		return uint64(i) % r.m
	}
	// -i may not be representable; reduce -(i+1) first.
	n := (uint64(-(i+1))%r.m + 1) % r.m
	return (r.m - n) % r.m
}

func (r ModPk) Add(a, b uint64) uint64 {
	s := a + b
	if s >= r.m {
		s -= r.m
	}
	return s
}

func (r ModPk) Sub(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return a + r.m - b
}

func (r ModPk) Neg(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return r.m - a
}

func (r ModPk) Mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, r.m)
}

func (r ModPk) AddMul(a, b, c uint64) uint64    { return r.Add(a, r.Mul(b, c)) }
func (r ModPk) SubMul(a, b, c uint64) uint64    { return r.Sub(a, r.Mul(b, c)) }
func (r ModPk) MulInt(a uint64, n int64) uint64 { return r.Mul(a, r.FromInt(n)) }

// Valuation returns the p-adic valuation; zero has valuation k.
func (r ModPk) Valuation(a uint64) (int, uint64) {
	if a == 0 {
		return int(r.k), 0
	}
	v := 0
	for a%r.p == 0 {
		a /= r.p
		v++
	}
	return v, a
}

func (r ModPk) powP(e uint) uint64 {
	x := uint64(1)
	for i := uint(0); i < e; i++ {
		x *= r.p
	}
	return x % r.m
}

// inverse inverts a unit with the extended Euclidean algorithm.
func (r ModPk) inverse(u uint64) uint64 {
	t, nt := int64(0), int64(1)
	rr, nr := int64(r.m), int64(u%r.m)
	for nr != 0 {
		q := rr / nr
		t, nt = nt, t-q*nt
		rr, nr = nr, rr-q*nr
	}
	if t < 0 {
		t += int64(r.m)
	}
	return uint64(t)
}

func (r ModPk) UnitAnnihilator(a uint64) (uint64, uint64) {
	if a == 0 {
		return r.One(), r.One()
	}
	v, u := r.Valuation(a)
	return r.inverse(u), r.powP(r.k - uint(v))
}

func (r ModPk) DivExact(a, b uint64) uint64 {
	v, u := r.Valuation(b)
	return r.Mul(a/r.powP(uint(v)), r.inverse(u))
}

func (ModPk) FloorDivMod(a, b uint64) (uint64, uint64) {
	if b == 0 {
		return 0, a
	}
	return a / b, a % b
}

func (r ModPk) ExtendedGCD(a, b uint64) (uint64, uint64, uint64) {
	if a == 0 && b == 0 {
		return 0, r.One(), 0
	}
	va, _ := r.Valuation(a)
	vb, _ := r.Valuation(b)
	if va <= vb {
		u, _ := r.UnitAnnihilator(a)
		return r.powP(uint(va)), u, 0
	}
	u, _ := r.UnitAnnihilator(b)
	return r.powP(uint(vb)), 0, u
}

func (ModPk) Compare(a, b uint64) int       { return cmpUint64(a, b) }
func (ModPk) ToInt(a uint64) (int64, bool)  { return int64(a), true }
func (ModPk) String(a uint64) string        { return strconv.FormatUint(a, 10) }

func (r ModPk) FromString(s string) (uint64, error) {
	return parseModular(s, new(big.Int).SetUint64(r.m))
}
