package index

import (
	"math"

	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/format"
)

// Reduced is the reduced-precision variant family (spec §3 "bak"/"bak2"):
// values are rounded to a lower decimal precision, then equality-encoded.
// Precision is the number of significant decimal digits retained.
type Reduced struct {
	Equality
	precision int
}

var _ Variant = (*Reduced)(nil)

// NewReduced builds a reduced-precision index. tag distinguishes bak
// (format.VariantBak) from bak2 (format.VariantBak2); both share the same
// rounding + equality-encoding mechanics and differ only in the original's
// choice of how many extra correction bits bak2 retains, which this
// re-design folds into a single rounding precision knob.
func NewReduced(values []float64, precision int, tag format.VariantTag) *Reduced {
	rounded := make([]float64, len(values))
	for i, v := range values {
		rounded[i] = roundSignificant(v, precision)
	}

	distinct := distinctSorted(rounded)
	eq := NewEquality(rounded, len(distinct), max(len(distinct), 1))
	eq.Tag = tag

	return &Reduced{Equality: *eq, precision: precision}
}

func roundSignificant(v float64, digits int) float64 {
	if v == 0 || digits <= 0 || math.IsInf(v, 0) {
		return v
	}
	mag := math.Ceil(math.Log10(math.Abs(v)))
	factor := math.Pow(10, float64(digits)-mag)

	return math.Round(v*factor) / factor
}

// Evaluate implements Variant: the query range is rounded the same way
// values were before delegating to the underlying equality encoding, since
// a reduced-precision index can only ever answer at its retained precision.
// Straddling-bin candidate checks must compare against rounded values too,
// or a raw value that rounds onto the query boundary (e.g. 1.001 against a
// rounded range of exactly 1.0) would be wrongly rejected.
func (r *Reduced) Evaluate(rg Range, reader column.Reader) (*bitmap.Bitmap, error) {
	rg.Lo = roundSignificant(rg.Lo, r.precision)
	rg.Hi = roundSignificant(rg.Hi, r.precision)

	var rounded column.Reader
	if reader != nil {
		rounded = &roundingReader{Reader: reader, precision: r.precision}
	}

	return r.Equality.Evaluate(rg, rounded)
}

// roundingReader rounds every value a candidate check reads to the same
// precision the underlying equality bins were built at.
type roundingReader struct {
	column.Reader
	precision int
}

func (r *roundingReader) ReadAt(row uint64) float64 {
	return roundSignificant(r.Reader.ReadAt(row), r.precision)
}

func (r *roundingReader) ReadRows(rows []uint64) []float64 {
	vals := r.Reader.ReadRows(rows)
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = roundSignificant(v, r.precision)
	}

	return out
}
