package ring

import (
	"math"
	"strconv"
)

// Int64 is the ring of integers on checked 64-bit machine words.
//
// Every operation that would wrap panics with *OverflowError.
type Int64 struct{}

var _ Ring[int64] = Int64{}

func (Int64) Name() string          { return string(KindInt64) }
func (Int64) Zero() int64           { return 0 }
func (Int64) One() int64            { return 1 }
func (Int64) FromInt(i int64) int64 { return i }
func (Int64) IsZero(a int64) bool   { return a == 0 }
func (Int64) IsOne(a int64) bool    { return a == 1 }
func (Int64) Equal(a, b int64) bool { return a == b }
func (Int64) Integral() bool        { return true }

func (Int64) IsReduced(a, b int64) bool {
	switch {
	case b == 0:
		return true
	case b == math.MinInt64:
		return a >= 0
	case b < 0:
		b = -b
	}
	return a >= 0 && a < b
}

func (Int64) Add(a, b int64) int64 {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		panic(&OverflowError{Op: "add"})
	}
	return c
}

func (Int64) Sub(a, b int64) int64 {
	c := a - b
	if (b > 0 && c > a) || (b < 0 && c < a) {
		panic(&OverflowError{Op: "sub"})
	}
	return c
}

func (Int64) Mul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		panic(&OverflowError{Op: "mul"})
	}
	c := a * b
	if c/b != a {
		panic(&OverflowError{Op: "mul"})
	}
	return c
}

func (Int64) Neg(a int64) int64 {
	if a == math.MinInt64 {
		panic(&OverflowError{Op: "neg"})
	}
	return -a
}

func (r Int64) AddMul(a, b, c int64) int64   { return r.Add(a, r.Mul(b, c)) }
func (r Int64) SubMul(a, b, c int64) int64   { return r.Sub(a, r.Mul(b, c)) }
func (r Int64) MulInt(a int64, n int64) int64 { return r.Mul(a, n) }

func (Int64) DivExact(a, b int64) int64 {
	if b == -1 && a == math.MinInt64 {
		panic(&OverflowError{Op: "divexact"})
	}
	return a / b
}

// FloorDivMod performs Euclidean division: 0 <= r < |b|.
func (Int64) FloorDivMod(a, b int64) (int64, int64) {
	if b == 0 {
		return 0, a
	}
	if b == -1 && a == math.MinInt64 {
		panic(&OverflowError{Op: "floordivmod"})
	}
	q, r := a/b, a%b
	if r < 0 {
		if b > 0 {
			q--
			r += b
		} else {
			q++
			r -= b
		}
	}
	return q, r
}

func (r Int64) ExtendedGCD(a, b int64) (int64, int64, int64) {
	oldR, rr := a, b
	oldS, s := int64(1), int64(0)
	oldT, t := int64(0), int64(1)
	for rr != 0 {
		q := oldR / rr
		oldR, rr = rr, r.Sub(oldR, r.Mul(q, rr))
		oldS, s = s, r.Sub(oldS, r.Mul(q, s))
		oldT, t = t, r.Sub(oldT, r.Mul(q, t))
	}
	if oldR < 0 {
		return r.Neg(oldR), r.Neg(oldS), r.Neg(oldT)
	}
	return oldR, oldS, oldT
}

func (Int64) UnitAnnihilator(a int64) (int64, int64) {
	switch {
	case a < 0:
		return -1, 0
	case a == 0:
		return 1, 1
	default:
		return 1, 0
	}
}

func (Int64) Valuation(a int64) (int, int64) { return 0, a }

func (Int64) Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (Int64) ToInt(a int64) (int64, bool) { return a, true }

func (Int64) FromString(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, &OverflowError{Op: "parse " + strconv.Quote(s)}
		}
		return 0, err
	}
	return v, nil
}

func (Int64) String(a int64) string { return strconv.FormatInt(a, 10) }
