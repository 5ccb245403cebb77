package combine

import "github.com/fastbit/ibis/bitmap"

// Cached holds a previously computed OR-sum together with the range it
// covers, so a query planner can amortize successive range queries over the
// same bitmap array (spec §4.D "Incremental sum").
type Cached struct {
	Lo, Hi int
	Result *bitmap.Bitmap
}

// Resum computes OR(bits[lo:hi]) reusing prev when the incremental cost of
// adjusting prev.Result to the new range is lower than a fresh sum: the
// number of bits added plus removed compared to the full slice cost.
func Resum(bits []*bitmap.Bitmap, lo, hi int, nbits int, nrows uint64, prev *Cached) Cached {
	if prev == nil || prev.Result == nil {
		return Cached{Lo: lo, Hi: hi, Result: Or(bits, lo, hi, nbits, nrows)}
	}

	addCost := bytesInRange(bits, lo, prev.Lo) + bytesInRange(bits, prev.Hi, hi)
	removeCost := bytesInRange(bits, prev.Lo, lo) + bytesInRange(bits, hi, prev.Hi)
	fullCost := bytesInRange(bits, lo, hi)

	if addCost+removeCost >= fullCost {
		return Cached{Lo: lo, Hi: hi, Result: Or(bits, lo, hi, nbits, nrows)}
	}

	res := prev.Result.Clone()
	if lo < prev.Lo {
		res.OrInto(Or(bits, lo, prev.Lo, nbits, nrows))
	}
	if hi > prev.Hi {
		res.OrInto(Or(bits, prev.Hi, hi, nbits, nrows))
	}
	if prev.Lo < lo {
		res = res.AndNot(Or(bits, prev.Lo, lo, nbits, nrows))
	}
	if prev.Hi > hi {
		res = res.AndNot(Or(bits, hi, prev.Hi, nbits, nrows))
	}

	return Cached{Lo: lo, Hi: hi, Result: res}
}

func bytesInRange(bits []*bitmap.Bitmap, lo, hi int) int {
	if hi <= lo {
		return 0
	}
	total := 0
	for i := lo; i < hi; i++ {
		total += bitmapBytes(bits, i)
	}

	return total
}
