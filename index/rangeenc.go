package index

import (
	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/binning"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
)

// RangeEncoded is the cumulative ("range") variant: bitmap i marks rows
// with value < bounds[i] (spec §3, glossary "Cumulative (range-encoded)
// bitmap").
type RangeEncoded struct {
	Base
}

var _ Variant = (*RangeEncoded)(nil)

// NewRangeEncoded builds a cumulative index from raw values using the same
// DivideCounts boundary selection as Equality.
func NewRangeEncoded(values []float64, nbins int, resolution int) *RangeEncoded {
	cnt := binning.Histogram(values, resolution)
	bdry := binning.DivideCounts(nbins, cnt)

	lo, hi := minMax(values)
	width := (hi - lo) / float64(resolution)
	if width <= 0 {
		width = 1
	}
	bounds := make([]float64, len(bdry))
	for i, b := range bdry {
		bounds[i] = lo + float64(b)*width
	}
	if len(bounds) > 0 {
		bounds[len(bounds)-1] = posInf
	}

	r := &RangeEncoded{Base: Base{
		Tag: format.VariantRange, NRows: uint64(len(values)), //nolint:gosec
		Bound: bounds, Engine: endian.GetLittleEndianEngine(),
	}}
	r.build(values)

	return r
}

func (r *RangeEncoded) build(values []float64) {
	nb := len(r.Bound)
	r.Bits = make([]*bitmap.Bitmap, nb)
	r.MinVal = make([]float64, nb)
	r.MaxVal = make([]float64, nb)
	for i := range r.Bits {
		r.Bits[i] = bitmap.New(r.NRows)
		r.MinVal[i] = posInf
		r.MaxVal[i] = negInf
	}
	for row, v := range values {
		start := binning.Locate(r.Bound, v)
		for i := start; i < nb; i++ {
			r.Bits[i].Set(uint64(row)) //nolint:gosec
		}
		if v < r.MinVal[start] {
			r.MinVal[start] = v
		}
		if v > r.MaxVal[start] {
			r.MaxVal[start] = v
		}
	}
}

// Estimate implements Variant per spec §4.E: lower = bits[hit_hi-1]
// AND_NOT bits[hit_lo-1]; upper the same with the candidate indices.
func (r *RangeEncoded) Estimate(rg Range) (lower, upper *bitmap.Bitmap) {
	return r.cumulativeEstimate(r.Bound, rg)
}

// EstimateUpperCount implements Variant.
func (r *RangeEncoded) EstimateUpperCount(rg Range) uint64 {
	_, upper := r.Estimate(rg)

	return upper.Cnt()
}

// Undecidable implements Variant.
func (r *RangeEncoded) Undecidable(rg Range) (*bitmap.Bitmap, float32) {
	lower, upper := r.Estimate(rg)

	return equalityUndecidable(lower, upper)
}

// Evaluate implements Variant.
func (r *RangeEncoded) Evaluate(rg Range, reader column.Reader) (*bitmap.Bitmap, error) {
	return r.cumulativeEvaluate(r.Bound, rg, reader), nil
}

// ExpandRange implements Variant.
func (r *RangeEncoded) ExpandRange(rg *Range) { equalityExpandRange(r.Bound, rg) }

// ContractRange implements Variant.
func (r *RangeEncoded) ContractRange(rg *Range) { equalityContractRange(r.Bound, rg) }

// Append implements Variant.
func (r *RangeEncoded) Append(newValues []float64) error {
	base := r.NRows
	r.NRows += uint64(len(newValues)) //nolint:gosec
	for _, bm := range r.Bits {
		bm.EnsureSize(r.NRows)
	}
	nb := len(r.Bits)
	for i, v := range newValues {
		start := binning.Locate(r.Bound, v)
		for k := start; k < nb; k++ {
			r.Bits[k].Set(base + uint64(i)) //nolint:gosec
		}
	}

	return nil
}

// Persist implements Variant.
func (r *RangeEncoded) Persist(path string) error {
	return r.persistCommon(path, nil)
}
