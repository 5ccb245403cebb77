package index

import (
	"math"

	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
)

// Direct is the "direkte" variant: the value itself (a small non-negative
// integer) is used as the bin index, so every range query is resolvable
// exactly with no straddling bins (spec §4.E "Direct").
type Direct struct {
	Base
}

var _ Variant = (*Direct)(nil)

// NewDirect builds a direct index: one bitmap per distinct integer value in
// [0, max(values)].
func NewDirect(values []float64) *Direct {
	maxV := 0
	for _, v := range values {
		if int(v) > maxV {
			maxV = int(v)
		}
	}
	nb := maxV + 1

	d := &Direct{Base: Base{
		Tag: format.VariantDirekte, NRows: uint64(len(values)), //nolint:gosec
		Bound: make([]float64, nb), Engine: endian.GetLittleEndianEngine(),
	}}
	for i := range d.Bound {
		d.Bound[i] = float64(i + 1)
	}
	d.Bits = make([]*bitmap.Bitmap, nb)
	d.MinVal = make([]float64, nb)
	d.MaxVal = make([]float64, nb)
	for i := range d.Bits {
		d.Bits[i] = bitmap.New(d.NRows)
		d.MinVal[i] = float64(i)
		d.MaxVal[i] = float64(i)
	}
	for row, v := range values {
		d.Bits[int(v)].Set(uint64(row)) //nolint:gosec
	}

	return d
}

// queryBounds converts a Range into inclusive integer bin indices
// [qlo, qhi], clamped to the valid bin range.
func (d *Direct) queryBounds(r Range) (int, int) {
	qlo := 0
	if r.HasLo() {
		lo := r.Lo
		if !r.LoInclusive {
			lo = math.Floor(lo) + 1
		} else {
			lo = math.Ceil(lo)
		}
		qlo = int(lo)
	}
	qhi := len(d.Bits) - 1
	if r.HasHi() {
		hi := r.Hi
		if !r.HiInclusive {
			hi = math.Ceil(hi) - 1
		} else {
			hi = math.Floor(hi)
		}
		qhi = int(hi)
	}
	if qlo < 0 {
		qlo = 0
	}
	if qhi >= len(d.Bits) {
		qhi = len(d.Bits) - 1
	}

	return qlo, qhi
}

// Estimate implements Variant: lower == upper, no straddling is possible.
func (d *Direct) Estimate(r Range) (lower, upper *bitmap.Bitmap) {
	qlo, qhi := d.queryBounds(r)
	if qhi < qlo {
		empty := bitmap.New(d.NRows)
		return empty, empty.Clone()
	}
	res := d.sumRange(qlo, qhi+1)

	return res, res.Clone()
}

// EstimateUpperCount implements Variant.
func (d *Direct) EstimateUpperCount(r Range) uint64 {
	qlo, qhi := d.queryBounds(r)
	if qhi < qlo {
		return 0
	}

	return d.estimateUpperCountFromBins(qlo, qhi+1)
}

// Undecidable implements Variant: always empty, direct encoding has no
// straddling bins.
func (d *Direct) Undecidable(_ Range) (*bitmap.Bitmap, float32) {
	return bitmap.New(d.NRows), 0
}

// Evaluate implements Variant.
func (d *Direct) Evaluate(r Range, _ column.Reader) (*bitmap.Bitmap, error) {
	lower, _ := d.Estimate(r)

	return lower, nil
}

// ExpandRange implements Variant: a no-op, direct encoding needs no
// candidate check.
func (d *Direct) ExpandRange(_ *Range) {}

// ContractRange implements Variant.
func (d *Direct) ContractRange(_ *Range) {}

// Append implements Variant.
func (d *Direct) Append(newValues []float64) error {
	base := d.NRows
	d.NRows += uint64(len(newValues)) //nolint:gosec
	for _, bm := range d.Bits {
		bm.EnsureSize(d.NRows)
	}
	for i, v := range newValues {
		idx := int(v)
		if idx >= len(d.Bits) {
			for idx >= len(d.Bits) {
				d.Bits = append(d.Bits, bitmap.New(d.NRows))
				d.Bound = append(d.Bound, float64(len(d.Bound)+1))
				d.MinVal = append(d.MinVal, float64(len(d.MinVal)))
				d.MaxVal = append(d.MaxVal, float64(len(d.MaxVal)))
			}
		}
		d.Bits[idx].Set(base + uint64(i)) //nolint:gosec
	}

	return nil
}

// Persist implements Variant.
func (d *Direct) Persist(path string) error {
	return d.persistCommon(path, nil)
}
