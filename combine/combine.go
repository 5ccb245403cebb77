// Package combine implements the adaptive OR-summation strategy described
// in spec §4.D: summing a contiguous slice of bitmaps by whichever of five
// strategies the measured sizes favor. None of the teacher's packages
// perform an analogous cost-based dispatch, so this is grounded directly on
// the spec's cost formulas, built on top of this module's own bitmap
// package (spec component A).
package combine

import (
	"container/heap"
	"math"

	"github.com/fastbit/ibis/bitmap"
)

// Or sums bits[lo:hi] into a single bitmap, choosing the cheapest of five
// strategies by the cost rules in spec §4.D. nbits is the total number of
// bitmaps the slice is drawn from (used by the complement-check rule) and
// nrows is the bitmap length.
func Or(bits []*bitmap.Bitmap, lo, hi int, nbits int, nrows uint64) *bitmap.Bitmap {
	n := hi - lo
	if n <= 0 {
		return bitmap.New(nrows)
	}
	if n <= 2 {
		return directOr(bits, lo, hi, nrows)
	}

	if n > nbits/2 {
		return complementOr(bits, lo, hi, nbits, nrows)
	}

	u := wordCount(nrows)
	s2 := bitmapBytes(bits, lo) + bitmapBytes(bits, lo+1)
	if uint64(s2) >= u { //nolint:gosec
		return simpleLoopOr(bits, lo, hi, nrows)
	}

	t := uint64(0)
	for i := lo; i < hi; i++ {
		t += uint64(bitmapBytes(bits, i)) //nolint:gosec
	}
	nn := float64(n)
	if float64(t)*nn*nn <= float64(u)*math.Ln2 {
		return priorityQueueOr(bits, lo, hi, nrows)
	}

	return decompressedAccumulatorOr(bits, lo, hi, nrows)
}

func wordCount(nrows uint64) uint64 {
	return (nrows + 63) / 64
}

func bitmapBytes(bits []*bitmap.Bitmap, i int) int {
	if i < 0 || i >= len(bits) || bits[i] == nil {
		return 0
	}

	return bits[i].Bytes()
}

func at(bits []*bitmap.Bitmap, i int, nrows uint64) *bitmap.Bitmap {
	if i < 0 || i >= len(bits) || bits[i] == nil {
		return bitmap.New(nrows)
	}

	return bits[i]
}

// directOr handles N<=2 directly: the trivial case of spec rule 1.
func directOr(bits []*bitmap.Bitmap, lo, hi int, nrows uint64) *bitmap.Bitmap {
	res := at(bits, lo, nrows).Clone()
	for i := lo + 1; i < hi; i++ {
		res = res.Or(at(bits, i, nrows))
	}

	return res
}

// complementOr implements spec rule 2: when the slice covers more than half
// of all bitmaps, compute the OR of the complementary edges and invert.
func complementOr(bits []*bitmap.Bitmap, lo, hi, nbits int, nrows uint64) *bitmap.Bitmap {
	outside := bitmap.New(nrows)
	for i := 0; i < lo; i++ {
		outside.OrInto(at(bits, i, nrows))
	}
	for i := hi; i < nbits; i++ {
		outside.OrInto(at(bits, i, nrows))
	}
	total := bitmap.NewOnes(nrows)

	return total.And(outside.Not())
}

// simpleLoopOr implements spec rule 3: a direct OR loop, relying on the
// bitmap type's own amortized growth rather than pre-decompressing.
func simpleLoopOr(bits []*bitmap.Bitmap, lo, hi int, nrows uint64) *bitmap.Bitmap {
	res := at(bits, lo, nrows).Clone()
	for i := lo + 1; i < hi; i++ {
		res.OrInto(at(bits, i, nrows))
	}

	return res
}

// heapItem pairs a bitmap with its compressed byte size for the min-heap.
type heapItem struct {
	bm    *bitmap.Bitmap
	bytes int
}

type bitmapHeap []heapItem

func (h bitmapHeap) Len() int            { return len(h) }
func (h bitmapHeap) Less(i, j int) bool  { return h[i].bytes < h[j].bytes }
func (h bitmapHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *bitmapHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *bitmapHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

// priorityQueueOr implements spec rule 4: repeatedly merge the two smallest
// bitmaps by compressed size.
func priorityQueueOr(bits []*bitmap.Bitmap, lo, hi int, nrows uint64) *bitmap.Bitmap {
	h := make(bitmapHeap, 0, hi-lo)
	for i := lo; i < hi; i++ {
		b := at(bits, i, nrows)
		h = append(h, heapItem{bm: b, bytes: b.Bytes()})
	}
	heap.Init(&h)

	for h.Len() > 1 {
		a := heap.Pop(&h).(heapItem)
		b := heap.Pop(&h).(heapItem)
		merged := a.bm.Or(b.bm)
		heap.Push(&h, heapItem{bm: merged, bytes: merged.Bytes()})
	}

	if h.Len() == 0 {
		return bitmap.New(nrows)
	}

	return h[0].bm
}

// decompressedAccumulatorOr implements spec rule 5: pay a one-time
// decompression of the accumulator to avoid quadratic recompression cost.
func decompressedAccumulatorOr(bits []*bitmap.Bitmap, lo, hi int, nrows uint64) *bitmap.Bitmap {
	res := at(bits, lo, nrows).Clone()
	res.Decompress()
	for i := lo + 1; i < hi; i++ {
		res.OrInto(at(bits, i, nrows))
	}

	return res
}
