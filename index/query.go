package index

import (
	"github.com/fastbit/ibis/binning"
	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/column"
)

// The helpers in this file generalize Equality's and RangeEncoded's
// estimate/evaluate logic (spec §4.E "Variant implementations of estimate")
// into operations any type embedding Base can call against its own
// Bound/Bits, so two-level and multicomponent coarse layers answer queries
// from their own persisted bitmaps instead of an unpersisted delegate.

// equalityEstimate implements the disjoint-bin sandwich: lower = OR(hit
// bins), upper = OR(candidate bins).
func (b *Base) equalityEstimate(bounds []float64, r Range) (lower, upper *bitmap.Bitmap) {
	candLo, candHi, hitLo, hitHi := locateBins(bounds, r)
	lower = b.sumRange(hitLo, hitHi)
	upper = b.sumRange(candLo, candHi)

	return lower, upper
}

// equalityEstimateUpperCount is the popcount-only path for equalityEstimate's
// upper bound.
func (b *Base) equalityEstimateUpperCount(bounds []float64, r Range) uint64 {
	candLo, candHi, _, _ := locateBins(bounds, r)

	return b.estimateUpperCountFromBins(candLo, candHi)
}

// equalityEvaluate returns exact hits over disjoint bins, candidate-checking
// straddling bins against reader.
func (b *Base) equalityEvaluate(bounds []float64, r Range, reader column.Reader) *bitmap.Bitmap {
	candLo, candHi, hitLo, hitHi := locateBins(bounds, r)
	res := b.sumRange(hitLo, hitHi)

	for _, straddle := range [][2]int{{candLo, hitLo}, {hitHi, candHi}} {
		lo, hi := straddle[0], straddle[1]
		for i := lo; i < hi; i++ {
			b.activate(i)
			bm := b.Bits[i]
			if bm == nil || bm.IsEmpty() || reader == nil {
				continue
			}
			rows := rowsOf(bm)
			vals := reader.ReadRows(rows)
			for k, row := range rows {
				if r.Contains(vals[k]) {
					res.Set(row)
				}
			}
		}
	}

	return res
}

// equalityUndecidable turns an (lower, upper) sandwich into the undecidable
// mask plus the conservative "half" fallback fraction (spec §9 open
// question).
func equalityUndecidable(lower, upper *bitmap.Bitmap) (*bitmap.Bitmap, float32) {
	mask := upper.AndNot(lower)
	if mask.Cnt() == 0 {
		return mask, 0
	}

	return mask, 0.5
}

func equalityExpandRange(bounds []float64, r *Range) {
	if r.HasLo() {
		r.Lo = binning.ExpandRange(bounds, binning.OpGreaterEqual, r.Lo)
	}
	if r.HasHi() {
		r.Hi = binning.ExpandRange(bounds, binning.OpLessEqual, r.Hi)
	}
}

func equalityContractRange(bounds []float64, r *Range) {
	if r.HasLo() {
		r.Lo = binning.ContractRange(bounds, binning.OpGreaterEqual, r.Lo)
	}
	if r.HasHi() {
		r.Hi = binning.ContractRange(bounds, binning.OpLessEqual, r.Hi)
	}
}

// cumulativeBin returns bits[i] (the "< bounds[i]" cumulative bitmap),
// treating i<0 as the empty set and i>=nbins as the all-ones set.
func (b *Base) cumulativeBin(i int) *bitmap.Bitmap {
	switch {
	case i < 0:
		return bitmap.New(b.NRows)
	case i >= len(b.Bits):
		return bitmap.NewOnes(b.NRows)
	default:
		b.activate(i)
		return b.Bits[i]
	}
}

// cumulativeEstimate implements RangeEncoded-style estimate: lower/upper are
// AndNot differences of two cumulative bins.
func (b *Base) cumulativeEstimate(bounds []float64, r Range) (lower, upper *bitmap.Bitmap) {
	candLo, candHi, hitLo, hitHi := locateBins(bounds, r)
	lower = b.cumulativeBin(hitHi - 1).AndNot(b.cumulativeBin(hitLo - 1))
	upper = b.cumulativeBin(candHi - 1).AndNot(b.cumulativeBin(candLo - 1))

	return lower, upper
}

// cumulativeEvaluate resolves the undecidable rows left by cumulativeEstimate
// against reader.
func (b *Base) cumulativeEvaluate(bounds []float64, r Range, reader column.Reader) *bitmap.Bitmap {
	lower, upper := b.cumulativeEstimate(bounds, r)
	undecidable := upper.AndNot(lower)
	if undecidable.IsEmpty() || reader == nil {
		return lower
	}

	rows := rowsOf(undecidable)
	vals := reader.ReadRows(rows)
	res := lower.Clone()
	for k, row := range rows {
		if r.Contains(vals[k]) {
			res.Set(row)
		}
	}

	return res
}
