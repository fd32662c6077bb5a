package ring

import (
	"fmt"
	"math/big"
)

// Integer is the ring of arbitrary precision integers.
//
// Elements are *big.Int values that are never mutated after construction, so
// they may be shared freely between vectors.
type Integer struct{}

var _ Ring[*big.Int] = Integer{}

var (
	bigZero = new(big.Int)
	bigOne  = big.NewInt(1)
)

func (Integer) Name() string              { return string(KindInteger) }
func (Integer) Zero() *big.Int            { return bigZero }
func (Integer) One() *big.Int             { return bigOne }
func (Integer) FromInt(i int64) *big.Int  { return big.NewInt(i) }
func (Integer) IsZero(a *big.Int) bool    { return a.Sign() == 0 }
func (Integer) IsOne(a *big.Int) bool     { return a.Cmp(bigOne) == 0 }
func (Integer) Equal(a, b *big.Int) bool  { return a.Cmp(b) == 0 }
func (Integer) Integral() bool            { return true }
func (Integer) Compare(a, b *big.Int) int { return a.Cmp(b) }
func (Integer) String(a *big.Int) string  { return a.String() }

func (Integer) IsReduced(a, b *big.Int) bool {
	if b.Sign() == 0 {
		return true
	}
	return a.Sign() >= 0 && a.CmpAbs(b) < 0
}

func (Integer) Add(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }
func (Integer) Sub(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }
func (Integer) Mul(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }
func (Integer) Neg(a *big.Int) *big.Int    { return new(big.Int).Neg(a) }

func (Integer) AddMul(a, b, c *big.Int) *big.Int {
	p := new(big.Int).Mul(b, c)
	return p.Add(a, p)
}

func (Integer) SubMul(a, b, c *big.Int) *big.Int {
	p := new(big.Int).Mul(b, c)
	return p.Sub(a, p)
}

func (Integer) MulInt(a *big.Int, n int64) *big.Int {
	return new(big.Int).Mul(a, big.NewInt(n))
}

func (Integer) DivExact(a, b *big.Int) *big.Int { return new(big.Int).Quo(a, b) }

// FloorDivMod performs Euclidean division: 0 <= r < |b|.
func (Integer) FloorDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	if b.Sign() == 0 {
		return bigZero, a
	}
	q, r := new(big.Int), new(big.Int)
	q.DivMod(a, b, r)
	return q, r
}

func (Integer) ExtendedGCD(a, b *big.Int) (*big.Int, *big.Int, *big.Int) {
	s, t := new(big.Int), new(big.Int)
	g := new(big.Int).GCD(s, t, a, b)
	return g, s, t
}

func (Integer) UnitAnnihilator(a *big.Int) (*big.Int, *big.Int) {
	switch a.Sign() {
	case -1:
		return big.NewInt(-1), bigZero
	case 0:
		return bigOne, bigOne
	default:
		return bigOne, bigZero
	}
}

func (Integer) Valuation(a *big.Int) (int, *big.Int) { return 0, a }

func (Integer) ToInt(a *big.Int) (int64, bool) {
	if !a.IsInt64() {
		return 0, false
	}
	return a.Int64(), true
}

func (Integer) FromString(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("ring: invalid integer %q", s)
	}
	return v, nil
}
