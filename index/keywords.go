package index

import (
	"errors"
	"strings"
	"unicode"

	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
	"github.com/fastbit/ibis/internal/hash"
)

var errKeywordsWrongAppend = errors.New("index: keywords variant requires AppendDocs, not Append")

// Keywords is the term-document variant (spec §3 "Keywords"): bitmap i
// marks every row (document) whose tokenized text contains at least one
// term hashing to bucket i. Terms are mapped to buckets with a 64-bit
// xxHash, so two distinct terms sharing a bucket is possible in principle
// but negligible in practice at realistic vocabulary sizes; this index
// accepts that risk rather than retaining per-row token lists, trading an
// astronomically unlikely false positive for a fixed, compact bitmap count.
type Keywords struct {
	Base
	nbuckets int
	docs     []string
}

var _ Variant = (*Keywords)(nil)

// Tokenize splits text into lowercase terms on runs of non-letter,
// non-digit characters.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// BucketOf returns the bitmap index a term hashes to.
func (k *Keywords) BucketOf(term string) int {
	return int(hash.ID(strings.ToLower(term)) % uint64(k.nbuckets)) //nolint:gosec
}

// NewKeywords builds a term-document index over docs with nbuckets
// bitmaps.
func NewKeywords(docs []string, nbuckets int) *Keywords {
	if nbuckets < 1 {
		nbuckets = 1
	}

	k := &Keywords{
		Base: Base{
			Tag: format.VariantKeywords, NRows: uint64(len(docs)), //nolint:gosec
			Bound:       make([]float64, nbuckets),
			Engine:      endian.GetLittleEndianEngine(),
			Compression: format.CompressionZstd,
		},
		nbuckets: nbuckets,
		docs:     append([]string(nil), docs...),
	}
	for i := range k.Bound {
		k.Bound[i] = float64(i + 1)
	}
	k.Bits = make([]*bitmap.Bitmap, nbuckets)
	k.MinVal = make([]float64, nbuckets)
	k.MaxVal = make([]float64, nbuckets)
	for i := range k.Bits {
		k.Bits[i] = bitmap.New(k.NRows)
	}

	for row, doc := range docs {
		for _, term := range Tokenize(doc) {
			k.Bits[k.BucketOf(term)].Set(uint64(row)) //nolint:gosec
		}
	}

	return k
}

// MatchTerm returns the exact Range an equality query for term maps to,
// for passing to Estimate/Evaluate/EstimateUpperCount.
func (k *Keywords) MatchTerm(term string) Range {
	b := float64(k.BucketOf(term))

	return Range{Lo: b, Hi: b, LoInclusive: true, HiInclusive: true}
}

// Estimate implements Variant: upper is the union of the requested buckets
// and lower is a copy of upper, i.e. a bucket hit is treated as a term hit,
// accepting the hash-collision risk noted on Keywords.
func (k *Keywords) Estimate(r Range) (lower, upper *bitmap.Bitmap) {
	candLo, candHi, _, _ := locateBins(k.Bound, r)
	upper = k.sumRange(candLo, candHi)

	return upper.Clone(), upper
}

// EstimateUpperCount implements Variant.
func (k *Keywords) EstimateUpperCount(r Range) uint64 {
	candLo, candHi, _, _ := locateBins(k.Bound, r)

	return k.estimateUpperCountFromBins(candLo, candHi)
}

// Undecidable implements Variant: always empty, per the collision-risk
// trade-off Keywords documents.
func (k *Keywords) Undecidable(_ Range) (*bitmap.Bitmap, float32) {
	return bitmap.New(k.NRows), 0
}

// Evaluate implements Variant.
func (k *Keywords) Evaluate(r Range, _ column.Reader) (*bitmap.Bitmap, error) {
	_, upper := k.Estimate(r)

	return upper, nil
}

// ExpandRange implements Variant: a no-op, bucket indices need no widening.
func (k *Keywords) ExpandRange(_ *Range) {}

// ContractRange implements Variant.
func (k *Keywords) ContractRange(_ *Range) {}

// Append implements Variant. Keywords is driven by text, not numeric column
// values, so the shared Variant.Append entry point always fails here; use
// AppendDocs instead.
func (k *Keywords) Append(_ []float64) error {
	return errKeywordsWrongAppend
}

// AppendDocs extends a term-document index with new documents.
func (k *Keywords) AppendDocs(newDocs []string) error {
	base := k.NRows
	k.NRows += uint64(len(newDocs)) //nolint:gosec
	for _, bm := range k.Bits {
		bm.EnsureSize(k.NRows)
	}
	for i, doc := range newDocs {
		for _, term := range Tokenize(doc) {
			k.Bits[k.BucketOf(term)].Set(base + uint64(i)) //nolint:gosec
		}
	}
	k.docs = append(k.docs, newDocs...)

	return nil
}

// Persist implements Variant.
func (k *Keywords) Persist(path string) error {
	return k.persistCommon(path, nil)
}
