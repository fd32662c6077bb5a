package ring

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strconv"
)

// Mod2k is the ring Z/2^k for 1 <= k <= 64, elements kept in [0, 2^k).
//
// Canonical representatives are powers of two: the canonical associate of a
// nonzero a is 2^v with v its 2-adic valuation.
type Mod2k struct {
	k    uint
	mask uint64
}

var _ Ring[uint64] = Mod2k{}

// NewMod2k returns Z/2^k. It panics if k is outside 1..64.
func NewMod2k(k uint) Mod2k {
	if k == 0 || k > 64 {
		panic(fmt.Sprintf("ring: mod2k exponent %d out of range", k))
	}
	mask := uint64(math.MaxUint64)
	if k < 64 {
		mask = (uint64(1) << k) - 1
	}
	return Mod2k{k: k, mask: mask}
}

func (r Mod2k) Name() string { return fmt.Sprintf("%s:%d", KindMod2k, r.k) }

func (Mod2k) Zero() uint64             { return 0 }
func (Mod2k) One() uint64              { return 1 }
func (r Mod2k) FromInt(i int64) uint64 { return uint64(i) & r.mask }
func (Mod2k) IsZero(a uint64) bool     { return a == 0 }
func (Mod2k) IsOne(a uint64) bool      { return a == 1 }
func (Mod2k) Equal(a, b uint64) bool   { return a == b }
func (Mod2k) Integral() bool           { return false }

func (Mod2k) IsReduced(a, b uint64) bool { return b == 0 || a < b }

func (r Mod2k) Add(a, b uint64) uint64            { return (a + b) & r.mask }
func (r Mod2k) Sub(a, b uint64) uint64            { return (a - b) & r.mask }
func (r Mod2k) Mul(a, b uint64) uint64            { return (a * b) & r.mask }
func (r Mod2k) Neg(a uint64) uint64               { return (-a) & r.mask }
func (r Mod2k) AddMul(a, b, c uint64) uint64      { return (a + b*c) & r.mask }
func (r Mod2k) SubMul(a, b, c uint64) uint64      { return (a - b*c) & r.mask }
func (r Mod2k) MulInt(a uint64, n int64) uint64   { return (a * uint64(n)) & r.mask }
func (r Mod2k) pow2(v uint) uint64                { return (uint64(1) << v) & r.mask }
func (r Mod2k) Compare(a, b uint64) int           { return cmpUint64(a, b) }
func (r Mod2k) String(a uint64) string            { return strconv.FormatUint(a, 10) }
func (r Mod2k) FromString(s string) (uint64, error) {
	return parseModular(s, new(big.Int).Lsh(big.NewInt(1), r.k))
}

// Valuation returns the 2-adic valuation; zero has valuation k.
func (r Mod2k) Valuation(a uint64) (int, uint64) {
	if a == 0 {
		return int(r.k), 0
	}
	v := bits.TrailingZeros64(a)
	return v, a >> uint(v)
}

// inverseOdd inverts an odd element by Newton iteration.
func (r Mod2k) inverseOdd(u uint64) uint64 {
	x := u // correct to 3 bits
	for i := 0; i < 5; i++ {
		x *= 2 - u*x
	}
	return x & r.mask
}

func (r Mod2k) UnitAnnihilator(a uint64) (uint64, uint64) {
	if a == 0 {
		return 1, 1
	}
	v, odd := r.Valuation(a)
	return r.inverseOdd(odd), r.pow2(r.k - uint(v))
}

func (r Mod2k) DivExact(a, b uint64) uint64 {
	v, odd := r.Valuation(b)
	return ((a >> uint(v)) * r.inverseOdd(odd)) & r.mask
}

func (Mod2k) FloorDivMod(a, b uint64) (uint64, uint64) {
	if b == 0 {
		return 0, a
	}
	return a / b, a % b
}

func (r Mod2k) ExtendedGCD(a, b uint64) (uint64, uint64, uint64) {
	if a == 0 && b == 0 {
		return 0, 1, 0
	}
	va, _ := r.Valuation(a)
	vb, _ := r.Valuation(b)
	if va <= vb {
		u, _ := r.UnitAnnihilator(a)
		return r.pow2(uint(va)), u, 0
	}
	u, _ := r.UnitAnnihilator(b)
	return r.pow2(uint(vb)), 0, u
}

func (Mod2k) ToInt(a uint64) (int64, bool) {
	if a > math.MaxInt64 {
		return 0, false
	}
	return int64(a), true
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// parseModular parses a decimal integer of any size and reduces it modulo m.
func parseModular(s string, m *big.Int) (uint64, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return 0, fmt.Errorf("ring: invalid integer %q", s)
	}
	return v.Mod(v, m).Uint64(), nil
}
