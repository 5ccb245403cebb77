package index

import (
	"testing"

	"github.com/fastbit/ibis/format"
	"github.com/stretchr/testify/require"
)

func TestTwoLevelZoneEvaluateExact(t *testing.T) {
	values := testValues()
	tl := NewTwoLevel(values, 3, 2, 100, format.VariantZone, false, fineEquality)
	reader := &fakeReader{values: values}

	r := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
	got, err := tl.Evaluate(r, reader)
	require.NoError(t, err)
	for row, v := range values {
		require.Equal(t, r.Contains(v), got.Get(uint64(row)), "row %d value %v", row, v)
	}
}

func TestTwoLevelAmbitEvaluateExact(t *testing.T) {
	values := testValues()
	tl := NewTwoLevel(values, 3, 2, 100, format.VariantAmbit, true, fineCumulative)
	reader := &fakeReader{values: values}

	r := Range{Lo: 2, Hi: 40, LoInclusive: true, HiInclusive: true}
	got, err := tl.Evaluate(r, reader)
	require.NoError(t, err)
	for row, v := range values {
		require.Equal(t, r.Contains(v), got.Get(uint64(row)), "row %d value %v", row, v)
	}
}

func TestTwoLevelCoarseBitsCoverAllRows(t *testing.T) {
	values := testValues()
	tl := NewTwoLevel(values, 3, 2, 100, format.VariantZone, false, fineEquality)

	require.Equal(t, len(tl.Bound), len(tl.Bits))
	for _, bm := range tl.Bits {
		require.NotNil(t, bm)
	}
}

func TestTwoLevelAppendRebuildsCoarseBitmaps(t *testing.T) {
	values := testValues()
	tl := NewTwoLevel(values, 3, 2, 100, format.VariantZone, false, fineEquality)

	require.NoError(t, tl.Append([]float64{1000}))
	require.Equal(t, uint64(len(values)+1), tl.NRows)
	require.Equal(t, len(tl.Bound), len(tl.Bits))

	reader := &fakeReader{values: append(append([]float64(nil), values...), 1000)}
	r := Range{Lo: 1000, Hi: 1000, LoInclusive: true, HiInclusive: true}
	got, err := tl.Evaluate(r, reader)
	require.NoError(t, err)
	require.True(t, got.Get(uint64(len(values))))
}
