// Package ordering computes fill-in reducing elimination orders for sparse
// 0/1 incidence patterns.
package ordering

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Markowitz returns the columns occurring in patterns in a greedy elimination
// order. Each step picks the column with the smallest Markowitz cost
// (r-1)*(c-1), where r is the number of live rows in the column and c the
// length of the shortest such row, then simulates the elimination so later
// costs account for fill-in. Ties go to the smaller column.
//
// patterns is not modified. The result is deterministic.
func Markowitz(patterns []*roaring.Bitmap) []uint32 {
	rows := make([]*roaring.Bitmap, len(patterns))
	cols := make(map[uint32]*roaring.Bitmap)
	live := roaring.New()

	for id, p := range patterns {
		rows[id] = p.Clone()
		it := p.Iterator()
		for it.HasNext() {
			c := it.Next()
			rs, ok := cols[c]
			if !ok {
				rs = roaring.New()
				cols[c] = rs
				live.Add(c)
			}
			rs.Add(uint32(id))
		}
	}

	order := make([]uint32, 0, len(cols))
	for !live.IsEmpty() {
		best, pivot := pick(live, cols, rows)
		order = append(order, best)
		eliminate(best, pivot, cols, rows)
		delete(cols, best)
		live.Remove(best)
	}
	return order
}

// pick returns the cheapest live column and the row to pivot on, or -1 when
// the column has no live rows left.
func pick(live *roaring.Bitmap, cols map[uint32]*roaring.Bitmap, rows []*roaring.Bitmap) (uint32, int) {
	var best uint32
	bestRow := -1
	bestCost := uint64(math.MaxUint64)

	it := live.Iterator()
	for it.HasNext() {
		c := it.Next()
		rs := cols[c]
		n := rs.GetCardinality()
		if n == 0 {
			return c, -1
		}
		short, shortLen := -1, uint64(math.MaxUint64)
		rit := rs.Iterator()
		for rit.HasNext() {
			id := int(rit.Next())
			if l := rows[id].GetCardinality(); l < shortLen {
				short, shortLen = id, l
			}
		}
		cost := (n - 1) * (shortLen - 1)
		if cost < bestCost {
			best, bestRow, bestCost = c, short, cost
			if cost == 0 {
				break
			}
		}
	}
	return best, bestRow
}

// eliminate merges the pivot row into every other row of column c and
// retires the pivot row.
func eliminate(c uint32, pivot int, cols map[uint32]*roaring.Bitmap, rows []*roaring.Bitmap) {
	if pivot < 0 {
		return
	}
	pr := rows[pivot]
	others := cols[c].Clone()
	others.Remove(uint32(pivot))

	oit := others.Iterator()
	for oit.HasNext() {
		id := oit.Next()
		fill := roaring.AndNot(pr, rows[id])
		rows[id].Or(pr)
		rows[id].Remove(c)
		fit := fill.Iterator()
		for fit.HasNext() {
			if f := fit.Next(); f != c {
				cols[f].Add(id)
			}
		}
	}

	pit := pr.Iterator()
	for pit.HasNext() {
		cols[pit.Next()].Remove(uint32(pivot))
	}
	rows[pivot] = roaring.New()
}

// Positions inverts an order into a column -> position map.
func Positions(order []uint32) map[uint32]int {
	pos := make(map[uint32]int, len(order))
	for i, c := range order {
		pos[c] = i
	}
	return pos
}
