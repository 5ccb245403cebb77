package ibis

import (
	"path/filepath"
	"testing"

	"github.com/fastbit/ibis/format"
	"github.com/fastbit/ibis/index"
	"github.com/stretchr/testify/require"
)

type sliceReader struct {
	values []float64
}

func (s *sliceReader) Type() format.ColumnType { return format.ColumnFloat64 }
func (s *sliceReader) ReadAt(row uint64) float64 {
	return s.values[row]
}
func (s *sliceReader) ReadRows(rows []uint64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = s.values[r]
	}
	return out
}

func TestCreateEvaluatePersistLoadRoundTrip(t *testing.T) {
	values := []float64{1, 2, 2, 3, 5, 8, 13}
	idx, err := Create(values, format.ColumnInt32, "")
	require.NoError(t, err)
	require.NotNil(t, idx)

	reader := &sliceReader{values: values}
	r := Range{Lo: 2, Hi: 8, LoInclusive: true, HiInclusive: true}
	hits, err := Evaluate(idx, r, reader)
	require.NoError(t, err)
	for row, v := range values {
		require.Equal(t, r.Contains(v), hits.Get(uint64(row)), "row %d", row)
	}

	path := filepath.Join(t.TempDir(), "round.idx")
	require.NoError(t, Persist(idx, path))

	reopened, err := Load(path, index.FullRead)
	require.NoError(t, err)
	require.Equal(t, idx.VariantTag(), reopened.VariantTag())
}

func TestCreateIndexNoneReturnsNil(t *testing.T) {
	idx, err := Create([]float64{1, 2, 3}, format.ColumnInt32, "index=none")
	require.NoError(t, err)
	require.Nil(t, idx)
}

func TestEstimateAndUndecidable(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	idx, err := Create(values, format.ColumnInt32, "<binning nbins=3/>")
	require.NoError(t, err)

	r := Range{Lo: 2, Hi: 7, LoInclusive: true, HiInclusive: true}
	lower, upper := Estimate(idx, r)
	require.NotNil(t, lower)
	require.NotNil(t, upper)

	mask, frac := Undecidable(idx, r)
	require.NotNil(t, mask)
	require.GreaterOrEqual(t, frac, float32(0))

	count := EstimateCount(idx, r)
	require.Equal(t, upper.Cnt(), count)
}

func TestCreateKeywordsAndMatchTerm(t *testing.T) {
	docs := []string{"alpha beta", "gamma alpha"}
	k := CreateKeywords(docs, 16)

	got, err := Evaluate(k, k.MatchTerm("alpha"), nil)
	require.NoError(t, err)
	require.True(t, got.Get(0))
	require.True(t, got.Get(1))
}

func TestAppendExtendsIndex(t *testing.T) {
	values := []float64{1, 2, 3}
	idx, err := Create(values, format.ColumnInt32, "")
	require.NoError(t, err)

	require.NoError(t, Append(idx, []float64{99}))

	reader := &sliceReader{values: []float64{1, 2, 3, 99}}
	r := Range{Lo: 99, Hi: 99, LoInclusive: true, HiInclusive: true}
	got, err := Evaluate(idx, r, reader)
	require.NoError(t, err)
	require.True(t, got.Get(3))
}

func TestResolveSpecPrecedence(t *testing.T) {
	require.Equal(t, "col-spec", ResolveSpec("col-spec", "part-spec", nil, "p", "c"))
	require.Equal(t, "part-spec", ResolveSpec("", "part-spec", nil, "p", "c"))
	require.Equal(t, "", ResolveSpec("", "", nil, "p", "c"))
}
