// Package ibis provides a compact bitmap-index library for columnar data,
// modeled on FastBit's IBIS encoding schemes.
//
// # Core Features
//
//   - ~20 bitmap encoding schemes (equality, range, interval, two-level,
//     multicomponent, reduced-precision, relic, slice, direct, keywords)
//   - Spec-string-driven variant selection, with a type/cardinality-aware
//     default when no spec is given
//   - Three load modes (full read, memory map, metadata-only) with lazy
//     per-bin bitmap activation
//   - Estimate/Evaluate split: cheap sandwich bounds for planning, exact
//     row sets when a raw-value reader is available for candidate checks
//
// # Basic Usage
//
// Building and querying an index over a numeric column:
//
//	import "github.com/fastbit/ibis"
//
//	values := []float64{1, 2, 2, 3, 5, 8, 13}
//	idx, err := ibis.Create(values, format.ColumnInt32, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hits, err := ibis.Evaluate(idx, ibis.Range{Lo: 2, Hi: 8, LoInclusive: true, HiInclusive: true}, reader)
//
// Persisting and reopening:
//
//	err = ibis.Persist(idx, "column.idx")
//	reopened, err := ibis.Load("column.idx", index.MemoryMap)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the binning,
// index, and config packages. For fine-grained control over a specific
// encoding scheme, use the index package directly.
package ibis

import (
	"fmt"

	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/config"
	"github.com/fastbit/ibis/format"
	"github.com/fastbit/ibis/index"
)

// Range is a query predicate over a column's value domain; re-exported so
// callers don't need to import index directly for the common path.
type Range = index.Range

// Variant is the constructed bitmap index for one column.
type Variant = index.Variant

// Full returns a range matching every value.
func Full() Range { return index.Full() }

// Create builds a bitmap index over values according to spec, the indexing
// directive resolved from a column's configuration (spec §4.C). An empty
// spec selects the type/cardinality-aware default. Returns (nil, nil) for
// an explicit "index=none" spec.
//
// Example:
//
//	idx, err := ibis.Create(values, format.ColumnInt32, "<binning nbins=100/>")
func Create(values []float64, colType format.ColumnType, spec string) (Variant, error) {
	return index.Build(values, colType, spec)
}

// CreateKeywords builds a term-document index over a free-text column.
//
// Parameters:
//   - docs: one string per row
//   - nbuckets: number of hash buckets (bitmaps); 0 selects a default
func CreateKeywords(docs []string, nbuckets int) *index.Keywords {
	return index.BuildKeywords(docs, nbuckets)
}

// ResolveSpec implements the spec §4.C lookup order for a column's indexing
// directive: column-local spec, then partition-local spec, then the global
// configuration store.
func ResolveSpec(columnSpec, partitionSpec string, global *config.Store, partition, column string) string {
	return config.ResolveIndexSpec(columnSpec, partitionSpec, global, partition, column)
}

// Evaluate returns the exact set of rows matching r, resolving any
// straddling bins with reader.
func Evaluate(v Variant, r Range, reader column.Reader) (*bitmap.Bitmap, error) {
	return v.Evaluate(r, reader)
}

// Estimate returns (lower, upper) sandwich bounds for r without touching raw
// values: lower is a subset of the true answer, upper is a superset.
func Estimate(v Variant, r Range) (lower, upper *bitmap.Bitmap) {
	return v.Estimate(r)
}

// EstimateCount is a cheaper path to |upper| when the caller doesn't need
// the bitmap itself, e.g. for query planning.
func EstimateCount(v Variant, r Range) uint64 {
	return v.EstimateUpperCount(r)
}

// Undecidable returns the rows Estimate can't resolve without a raw-value
// read (upper \ lower), plus an estimate of what fraction satisfy r.
func Undecidable(v Variant, r Range) (mask *bitmap.Bitmap, estimatedFraction float32) {
	return v.Undecidable(r)
}

// Append extends v to cover newValues, which are appended after the rows it
// already covers.
func Append(v Variant, newValues []float64) error {
	return v.Append(newValues)
}

// Persist writes v to path using the write-temp-then-rename discipline
// (spec §5 "Transaction discipline").
func Persist(v Variant, path string) error {
	return v.Persist(path)
}

// Load reopens a persisted index file in the requested mode. Every variant
// tag is reconstructed; see index.LoadVariant's doc comment for what a
// reloaded instance no longer holds.
func Load(path string, mode index.ReadMode) (Variant, error) {
	v, err := index.LoadVariant(path, mode)
	if err != nil {
		return nil, fmt.Errorf("ibis: load %s: %w", path, err)
	}

	return v, nil
}
