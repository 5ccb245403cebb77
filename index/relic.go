package index

import (
	"sort"

	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/binning"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
)

// Relic is the basic-bitmap variant: one bitmap per distinct value, only
// suitable for low-cardinality columns (spec §3 "Basic bitmap").
type Relic struct {
	Base
	values []float64
}

var _ Variant = (*Relic)(nil)

// NewRelic builds a basic-bitmap index with exactly one bin per distinct
// value observed in values.
func NewRelic(values []float64) *Relic {
	distinct := distinctSorted(values)

	r := &Relic{Base: Base{
		Tag: format.VariantRelic, NRows: uint64(len(values)), //nolint:gosec
		Bound:  append([]float64(nil), distinct...),
		Engine: endian.GetLittleEndianEngine(),
	}}
	r.values = append([]float64(nil), values...)
	// Equality encoding needs an exclusive right edge per bin; each
	// distinct value v becomes its own bin [v, nextAfter(v)).
	for i := range r.Bound {
		r.Bound[i] = nextAfter(distinct, i)
	}

	nb := len(distinct)
	r.Bits = make([]*bitmap.Bitmap, nb)
	r.MinVal = append([]float64(nil), distinct...)
	r.MaxVal = append([]float64(nil), distinct...)
	for i := range r.Bits {
		r.Bits[i] = bitmap.New(r.NRows)
	}
	for row, v := range values {
		i := sort.SearchFloat64s(distinct, v)
		r.Bits[i].Set(uint64(row)) //nolint:gosec
	}

	return r
}

func distinctSorted(values []float64) []float64 {
	seen := make(map[float64]struct{}, len(values))
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Float64s(out)

	return out
}

// nextAfter returns a value strictly greater than distinct[i] and no
// greater than distinct[i+1], or +Inf for the last bin.
func nextAfter(distinct []float64, i int) float64 {
	if i+1 < len(distinct) {
		return distinct[i+1]
	}

	return posInf
}

// Estimate implements Variant, identical in shape to Equality's.
func (r *Relic) Estimate(rg Range) (lower, upper *bitmap.Bitmap) {
	candLo, candHi, hitLo, hitHi := locateBins(r.Bound, rg)
	lower = r.sumRange(hitLo, hitHi)
	upper = r.sumRange(candLo, candHi)

	return lower, upper
}

// EstimateUpperCount implements Variant.
func (r *Relic) EstimateUpperCount(rg Range) uint64 {
	candLo, candHi, _, _ := locateBins(r.Bound, rg)

	return r.estimateUpperCountFromBins(candLo, candHi)
}

// Undecidable implements Variant.
func (r *Relic) Undecidable(rg Range) (*bitmap.Bitmap, float32) {
	lower, upper := r.Estimate(rg)
	mask := upper.AndNot(lower)

	return mask, 0.5
}

// Evaluate implements Variant: relic bins each hold exactly one value
// (MinVal[i]), so a straddling bin at a query endpoint is decided by testing
// that value against rg, without a raw-value rescan through the reader.
func (r *Relic) Evaluate(rg Range, _ column.Reader) (*bitmap.Bitmap, error) {
	candLo, candHi, hitLo, hitHi := locateBins(r.Bound, rg)
	res := r.sumRange(hitLo, hitHi)
	for _, span := range [][2]int{{candLo, hitLo}, {hitHi, candHi}} {
		for i := span[0]; i < span[1]; i++ {
			if i < len(r.MinVal) && rg.Contains(r.MinVal[i]) {
				r.activate(i)
				if r.Bits[i] != nil {
					res = res.Or(r.Bits[i])
				}
			}
		}
	}

	return res, nil
}

// ExpandRange implements Variant.
func (r *Relic) ExpandRange(rg *Range) {
	if rg.HasLo() {
		rg.Lo = binning.ExpandRange(r.Bound, binning.OpGreaterEqual, rg.Lo)
	}
	if rg.HasHi() {
		rg.Hi = binning.ExpandRange(r.Bound, binning.OpLessEqual, rg.Hi)
	}
}

// ContractRange implements Variant.
func (r *Relic) ContractRange(rg *Range) {
	if rg.HasLo() {
		rg.Lo = binning.ContractRange(r.Bound, binning.OpGreaterEqual, rg.Lo)
	}
	if rg.HasHi() {
		rg.Hi = binning.ContractRange(r.Bound, binning.OpLessEqual, rg.Hi)
	}
}

// Append implements Variant: new distinct values require a full rebuild,
// since relic's bin set is exactly the set of distinct values observed.
func (r *Relic) Append(newValues []float64) error {
	rebuilt := NewRelic(append(append([]float64(nil), r.values...), newValues...))
	*r = *rebuilt

	return nil
}

// Persist implements Variant.
func (r *Relic) Persist(path string) error {
	return r.persistCommon(path, nil)
}
