package index

import (
	"github.com/fastbit/ibis/binning"
	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
)

// fineKind selects the fine-level encoding a TwoLevel variant builds
// underneath its coarse summary bitmaps.
type fineKind int

const (
	fineEquality fineKind = iota
	fineCumulative
	fineInterval
)

// TwoLevel covers the five two-level encodings (spec §3 "Two-level"):
// ambit (cumulative coarse / cumulative fine), pale (cumulative coarse /
// equality fine), pack (equality coarse / cumulative fine), zone (equality
// coarse / equality fine) and fuge (equality coarse / interval fine). Queries
// resolve directly against the persisted coarse bitmaps in Base (spec §4.E
// "resolve coarse level first"); straddling coarse buckets descend to row
// level via a reader candidate check rather than a separate on-disk fine
// bitmap, since only the coarse summary is ever written to disk. The fine
// delegate is retained only for Append/construction, where the finer
// granularity gives better bucket placement than re-deriving coarse buckets
// from scratch; it is nil once the index has been reloaded from disk.
type TwoLevel struct {
	Base
	fine             Variant
	coarseCumulative bool
	groupSize        int
}

var _ Variant = (*TwoLevel)(nil)

// NewTwoLevel builds a two-level index. nCoarse is the number of coarse
// buckets; nFine is the number of fine bins per bucket (the last bucket may
// hold fewer, mirroring ibis::index's uneven final group).
func NewTwoLevel(values []float64, nCoarse, nFine, resolution int, tag format.VariantTag, coarseCumulative bool, kind fineKind) *TwoLevel {
	nb := nCoarse * nFine
	var fine Variant
	switch kind {
	case fineCumulative:
		fine = NewRangeEncoded(values, nb, resolution)
	case fineInterval:
		fine = NewMesa(values, nb, resolution)
	default:
		fine = NewEquality(values, nb, resolution)
	}

	fineBound := fine.Bounds()
	nFineBins := len(fineBound)
	groupSize := nFine
	if groupSize <= 0 {
		groupSize = 1
	}
	nGroups := (nFineBins + groupSize - 1) / groupSize
	if nGroups == 0 {
		nGroups = 1
	}

	tl := &TwoLevel{
		Base: Base{
			Tag:    tag,
			NRows:  fineNRows(fine),
			Bound:  make([]float64, nGroups),
			Engine: endian.GetLittleEndianEngine(),
		},
		fine:             fine,
		coarseCumulative: coarseCumulative,
		groupSize:        groupSize,
	}

	fineBits := fineBitmapsOf(fine)
	tl.Bits = make([]*bitmap.Bitmap, nGroups)
	tl.MinVal = make([]float64, nGroups)
	tl.MaxVal = make([]float64, nGroups)
	nrows := tl.NRows
	for g := 0; g < nGroups; g++ {
		lo := g * groupSize
		hi := lo + groupSize
		if hi > nFineBins {
			hi = nFineBins
		}
		if hi == 0 {
			tl.Bound[g] = posInf
			tl.Bits[g] = bitmap.New(nrows)
			continue
		}
		tl.Bound[g] = fineBound[hi-1]
		if coarseCumulative {
			tl.Bits[g] = orRange(fineBits, 0, hi, nrows)
		} else {
			tl.Bits[g] = orRange(fineBits, lo, hi, nrows)
		}
	}

	return tl
}

// fineNRows returns the fine variant's row count directly from its embedded
// Base, since Mesa's BinWeights() reports overlapping window cardinalities
// that cannot be summed into a row count.
func fineNRows(v Variant) uint64 {
	switch f := v.(type) {
	case *Equality:
		return f.NRows
	case *RangeEncoded:
		return f.NRows
	case *Mesa:
		return f.NRows
	default:
		return 0
	}
}

// fineBitmapsOf returns the fine variant's disjoint per-bin bitmaps,
// activating all of them first. A RangeEncoded fine level's cumulative
// bitmaps are differenced into per-bin sets, so OR-ing a group gives a
// disjoint coarse bitmap and OR-ing a prefix gives a cumulative one. Only
// the concrete flat variants TwoLevel builds on top of are accepted.
func fineBitmapsOf(v Variant) []*bitmap.Bitmap {
	switch f := v.(type) {
	case *Equality:
		f.ActivateAll()
		return f.Bits
	case *RangeEncoded:
		f.ActivateAll()
		out := make([]*bitmap.Bitmap, len(f.Bits))
		for i, bm := range f.Bits {
			out[i] = bm
			if i > 0 && bm != nil && f.Bits[i-1] != nil {
				out[i] = bm.AndNot(f.Bits[i-1])
			}
		}
		return out
	case *Mesa:
		f.fine.ActivateAll()
		return f.fine.Bits
	default:
		return nil
	}
}

func orRange(bits []*bitmap.Bitmap, lo, hi int, nrows uint64) *bitmap.Bitmap {
	res := bitmap.New(nrows)
	for i := lo; i < hi && i < len(bits); i++ {
		if bits[i] != nil {
			res = res.Or(bits[i])
		}
	}

	return res
}

// Estimate implements Variant by resolving the coarse level directly (spec
// §4.E "resolve coarse level first"): ambit/pale's cumulative coarse bitmaps
// use the AndNot-of-cumulative-bins sandwich, pack/zone/fuge's disjoint
// coarse bitmaps use the OR-of-bins sandwich. Both operate on TwoLevel's own
// persisted Bound/Bits, not the unpersisted fine delegate, so a reloaded
// instance answers queries the same way a freshly built one does.
func (t *TwoLevel) Estimate(r Range) (lower, upper *bitmap.Bitmap) {
	if t.coarseCumulative {
		return t.cumulativeEstimate(t.Bound, r)
	}

	return t.equalityEstimate(t.Bound, r)
}

// EstimateUpperCount implements Variant.
func (t *TwoLevel) EstimateUpperCount(r Range) uint64 {
	if t.coarseCumulative {
		_, upper := t.Estimate(r)

		return upper.Cnt()
	}

	return t.equalityEstimateUpperCount(t.Bound, r)
}

// Undecidable implements Variant.
func (t *TwoLevel) Undecidable(r Range) (*bitmap.Bitmap, float32) {
	lower, upper := t.Estimate(r)

	return equalityUndecidable(lower, upper)
}

// Evaluate implements Variant: straddling coarse bins descend to the fine
// level by candidate-checking their member rows against reader, the same
// mechanism Equality uses for its own straddling bins (spec §4.E
// "for each straddling coarse bin, descend to fine level").
func (t *TwoLevel) Evaluate(r Range, reader column.Reader) (*bitmap.Bitmap, error) {
	if t.coarseCumulative {
		return t.cumulativeEvaluate(t.Bound, r, reader), nil
	}

	return t.equalityEvaluate(t.Bound, r, reader), nil
}

// ExpandRange implements Variant: widens to the nearest coarse boundary,
// which is always a valid (if coarser) loose boundary since every coarse
// bound value is also a fine bin edge.
func (t *TwoLevel) ExpandRange(r *Range) { equalityExpandRange(t.Bound, r) }

// ContractRange implements Variant.
func (t *TwoLevel) ContractRange(r *Range) { equalityContractRange(t.Bound, r) }

// Append implements Variant: rebuilds the fine index and re-derives the
// coarse summary bitmaps. A reloaded instance has no fine delegate (its raw
// values were never persisted), so new rows are placed directly into the
// existing coarse buckets by their own Bound array instead, without
// rebalancing group boundaries.
func (t *TwoLevel) Append(newValues []float64) error {
	if t.fine == nil {
		return t.appendCoarse(newValues)
	}
	if err := t.fine.Append(newValues); err != nil {
		return err
	}

	fineBound := t.fine.Bounds()
	fineBits := fineBitmapsOf(t.fine)
	nFineBins := len(fineBound)
	nGroups := (nFineBins + t.groupSize - 1) / t.groupSize
	if nGroups == 0 {
		nGroups = 1
	}
	t.NRows = fineNRows(t.fine)
	t.Bound = make([]float64, nGroups)
	t.Bits = make([]*bitmap.Bitmap, nGroups)
	for g := 0; g < nGroups; g++ {
		lo := g * t.groupSize
		hi := lo + t.groupSize
		if hi > nFineBins {
			hi = nFineBins
		}
		if hi == 0 {
			t.Bound[g] = posInf
			t.Bits[g] = bitmap.New(t.NRows)
			continue
		}
		t.Bound[g] = fineBound[hi-1]
		if t.coarseCumulative {
			t.Bits[g] = orRange(fineBits, 0, hi, t.NRows)
		} else {
			t.Bits[g] = orRange(fineBits, lo, hi, t.NRows)
		}
	}

	return nil
}

// appendCoarse places newValues directly into t's persisted coarse buckets,
// the Append path used once t.fine is gone (post-reload).
func (t *TwoLevel) appendCoarse(newValues []float64) error {
	t.ActivateAll()
	base := t.NRows
	t.NRows += uint64(len(newValues)) //nolint:gosec
	for _, bm := range t.Bits {
		if bm != nil {
			bm.EnsureSize(t.NRows)
		}
	}
	nb := len(t.Bits)
	for i, v := range newValues {
		bin := binning.Locate(t.Bound, v)
		if bin >= nb {
			bin = nb - 1
		}
		if bin < 0 {
			bin = 0
		}
		row := base + uint64(i) //nolint:gosec
		if t.coarseCumulative {
			for k := bin; k < nb; k++ {
				t.Bits[k].Set(row)
			}
		} else {
			t.Bits[bin].Set(row)
		}
		if v < t.MinVal[bin] {
			t.MinVal[bin] = v
		}
		if v > t.MaxVal[bin] {
			t.MaxVal[bin] = v
		}
	}

	return nil
}

// Persist implements Variant: the coarse summary layer persists through the
// shared header+bounds+offsets+payload layout, the same trailer-less shape
// Mesa uses for its window bitmaps.
func (t *TwoLevel) Persist(path string) error {
	return t.persistCommon(path, nil)
}
