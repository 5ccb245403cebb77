package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelicEvaluateExact(t *testing.T) {
	values := []float64{1, 2, 2, 3, 5, 8, 13}
	r := NewRelic(values)

	rg := Range{Lo: 2, Hi: 8, LoInclusive: true, HiInclusive: true}
	got, err := r.Evaluate(rg, nil)
	require.NoError(t, err)
	for row, v := range values {
		require.Equal(t, rg.Contains(v), got.Get(uint64(row)), "row %d value %v", row, v)
	}
}

func TestRelicOneBinPerDistinctValue(t *testing.T) {
	values := []float64{1, 1, 2, 2, 2, 3}
	r := NewRelic(values)
	require.Equal(t, 3, len(r.Bits))
}

func TestRelicAppendNewDistinctValue(t *testing.T) {
	values := []float64{1, 2, 3}
	r := NewRelic(values)
	require.NoError(t, r.Append([]float64{99}))
	require.Equal(t, uint64(4), r.NRows)

	rg := Range{Lo: 99, Hi: 99, LoInclusive: true, HiInclusive: true}
	got, err := r.Evaluate(rg, nil)
	require.NoError(t, err)
	require.True(t, got.Get(3))
}
