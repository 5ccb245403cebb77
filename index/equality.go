package index

import (
	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/binning"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
)

// Equality is the equality-binned ("bin") variant: bitmap i marks rows with
// value in [bounds[i-1], bounds[i]) (spec §3, §4.E). It is the variant every
// other encoding's estimate/evaluate logic is grounded on.
type Equality struct {
	Base
	values []float64 // retained for Append; nil once persisted and reloaded
}

var _ Variant = (*Equality)(nil)

// NewEquality builds an equality-binned index from raw column values using
// binning.DivideCounts to choose bin edges. resolution controls the
// fine-grained histogram fed to DivideCounts.
func NewEquality(values []float64, nbins int, resolution int) *Equality {
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

	e := &Equality{Base: Base{
		Tag: format.VariantBin, NRows: uint64(len(values)), //nolint:gosec
		Bound: bounds, Engine: endian.GetLittleEndianEngine(),
	}}
	e.values = append([]float64(nil), values...)
	e.build(values)

	return e
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	return lo, hi
}

func (e *Equality) build(values []float64) {
	nb := len(e.Bound)
	e.Bits = make([]*bitmap.Bitmap, nb)
	e.MinVal = make([]float64, nb)
	e.MaxVal = make([]float64, nb)
	for i := range e.Bits {
		e.Bits[i] = bitmap.New(e.NRows)
		e.MinVal[i] = posInf
		e.MaxVal[i] = negInf
	}
	for row, v := range values {
		bin := binning.Locate(e.Bound, v)
		if bin >= nb {
			bin = nb - 1
		}
		e.Bits[bin].Set(uint64(row)) //nolint:gosec
		if v < e.MinVal[bin] {
			e.MinVal[bin] = v
		}
		if v > e.MaxVal[bin] {
			e.MaxVal[bin] = v
		}
	}
}

// Estimate implements Variant: lower = OR(hit bins), upper = OR(candidate
// bins), per spec §4.E "Variant implementations of estimate".
func (e *Equality) Estimate(r Range) (lower, upper *bitmap.Bitmap) {
	return e.equalityEstimate(e.Bound, r)
}

// EstimateUpperCount implements Variant.
func (e *Equality) EstimateUpperCount(r Range) uint64 {
	return e.equalityEstimateUpperCount(e.Bound, r)
}

// Undecidable implements Variant.
func (e *Equality) Undecidable(r Range) (*bitmap.Bitmap, float32) {
	lower, upper := e.Estimate(r)

	return equalityUndecidable(lower, upper)
}

// Evaluate implements Variant: exact hits, candidate-checking straddling
// bins against reader.
func (e *Equality) Evaluate(r Range, reader column.Reader) (*bitmap.Bitmap, error) {
	return e.equalityEvaluate(e.Bound, r, reader), nil
}

func rowsOf(bm *bitmap.Bitmap) []uint64 {
	var rows []uint64
	for i := uint64(0); i < bm.Size(); i++ {
		if bm.Get(i) {
			rows = append(rows, i)
		}
	}

	return rows
}

// ExpandRange implements Variant.
func (e *Equality) ExpandRange(r *Range) { equalityExpandRange(e.Bound, r) }

// ContractRange implements Variant.
func (e *Equality) ContractRange(r *Range) { equalityContractRange(e.Bound, r) }

// Append implements Variant: extends every bitmap and re-bins newValues.
func (e *Equality) Append(newValues []float64) error {
	base := e.NRows
	e.NRows += uint64(len(newValues)) //nolint:gosec
	for _, bm := range e.Bits {
		bm.EnsureSize(e.NRows)
	}
	for i, v := range newValues {
		bin := binning.Locate(e.Bound, v)
		if bin >= len(e.Bits) {
			bin = len(e.Bits) - 1
		}
		e.Bits[bin].Set(base + uint64(i)) //nolint:gosec
		if v < e.MinVal[bin] {
			e.MinVal[bin] = v
		}
		if v > e.MaxVal[bin] {
			e.MaxVal[bin] = v
		}
	}
	e.values = append(e.values, newValues...)

	return nil
}

// Persist implements Variant.
func (e *Equality) Persist(path string) error {
	return e.persistCommon(path, nil)
}
