package index

import (
	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/binning"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/format"
)

// Variant is the shared contract every encoding scheme implements (spec
// §4.E). The factory returns one of these; callers never see the concrete
// type, matching spec §9's "tagged variants over inheritance" redesign
// note (a Go interface playing the role of the original's abstract base
// class, without the deep inheritance hierarchy).
type Variant interface {
	// VariantTag matches the on-disk header byte.
	VariantTag() format.VariantTag
	// NBins returns the number of bitmaps this variant holds.
	NBins() uint32
	// Bounds returns the ascending bin-boundary array.
	Bounds() []float64
	// BinWeights returns the observed row count per bin.
	BinWeights() []uint32
	// Evaluate returns the exact set of rows matching r, performing a
	// candidate check against reader for any straddling bins.
	Evaluate(r Range, reader column.Reader) (*bitmap.Bitmap, error)
	// Estimate returns (lower, upper) such that lower is a subset of the
	// true answer and upper is a superset; lower == upper iff r falls
	// exactly on bin boundaries.
	Estimate(r Range) (lower, upper *bitmap.Bitmap)
	// EstimateUpperCount is a cheaper path to |upper| when the caller
	// doesn't need the bitmap itself.
	EstimateUpperCount(r Range) uint64
	// Undecidable returns upper \ lower and an estimate of what fraction
	// of those rows will satisfy r.
	Undecidable(r Range) (mask *bitmap.Bitmap, estimatedFraction float32)
	// ExpandRange widens r.Lo/r.Hi to the nearest bin boundary that keeps
	// the predicate loose.
	ExpandRange(r *Range)
	// ContractRange narrows r.Lo/r.Hi to the nearest bin boundary that
	// keeps the predicate tight.
	ContractRange(r *Range)
	// Append extends the index to cover new rows.
	Append(newValues []float64) error
	// Persist writes the index to path using the write-temp-then-rename
	// discipline (spec §5 "Transaction discipline").
	Persist(path string) error
}

// locateBins turns a query range into the four bin indices described in
// spec §4.E "locate": hit_lo..hit_hi are bins fully inside r (contribute to
// lower); cand_lo..cand_hi are bins overlapping r (contribute to upper).
// bounds is the ascending array of bin right-edges (bounds[i] is the
// exclusive upper edge of bin i; bin i's interval is
// [bounds[i-1], bounds[i])).
func locateBins(bounds []float64, r Range) (candLo, candHi, hitLo, hitHi int) {
	nb := len(bounds)
	candLo = 0
	if r.HasLo() {
		candLo = binning.Locate(bounds, r.Lo)
		if !r.LoInclusive {
			// An exclusive lower bound still overlaps the bin containing
			// r.Lo; when r.Lo == bounds[candLo-1] that bin is not fully
			// inside either (its left-edge value is excluded), see hitLo below.
		}
	}
	candHi = nb
	if r.HasHi() {
		idx := binning.Locate(bounds, r.Hi)
		candHi = idx + 1
		if !r.HiInclusive && idx > 0 && r.Hi == bounds[idx-1] {
			// Every value in bin idx is >= bounds[idx-1] == r.Hi, so an
			// exclusive upper bound rules that bin out.
			candHi = idx
		}
		if candHi > nb {
			candHi = nb
		}
	}
	if candHi < candLo {
		candHi = candLo
	}

	hitLo = candLo
	if r.HasLo() {
		leftEdge := negInf
		if candLo > 0 {
			leftEdge = bounds[candLo-1]
		}
		loFullyInside := r.Lo < leftEdge || (r.Lo == leftEdge && r.LoInclusive)
		if !loFullyInside {
			hitLo = candLo + 1
		}
	}
	hitHi = candHi
	if r.HasHi() && candHi > candLo {
		rightEdge := posInf
		if candHi-1 < nb {
			rightEdge = bounds[candHi-1]
		}
		hiFullyInside := r.Hi > rightEdge || (r.Hi == rightEdge && !r.HiInclusive)
		if !hiFullyInside {
			hitHi = candHi - 1
		}
	}
	if hitHi < hitLo {
		hitHi = hitLo
	}

	return candLo, candHi, hitLo, hitHi
}
