package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceEvaluateExact(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 15, 16, 17, 31}
	s := NewSlice(values)

	r := Range{Lo: 3, Hi: 16, LoInclusive: true, HiInclusive: true}
	got, err := s.Evaluate(r, nil)
	require.NoError(t, err)

	for row, v := range values {
		require.Equal(t, r.Contains(v), got.Get(uint64(row)), "row %d value %v", row, v)
	}
}

func TestSliceEvaluateExclusiveBounds(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5}
	s := NewSlice(values)

	r := Range{Lo: 1, Hi: 4, LoInclusive: false, HiInclusive: false}
	got, err := s.Evaluate(r, nil)
	require.NoError(t, err)
	for row, v := range values {
		require.Equal(t, r.Contains(v), got.Get(uint64(row)), "row %d value %v", row, v)
	}
}

func TestSliceEstimateExactSandwich(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	s := NewSlice(values)

	r := Range{Lo: 2, Hi: 5, LoInclusive: true, HiInclusive: true}
	lower, upper := s.Estimate(r)
	require.Equal(t, lower.Cnt(), upper.Cnt())
}

func TestSliceAppendGrowsBitPlanes(t *testing.T) {
	values := []float64{0, 1, 2, 3}
	s := NewSlice(values)
	initialPlanes := len(s.Bits)

	require.NoError(t, s.Append([]float64{100}))
	require.Greater(t, len(s.Bits), initialPlanes)
	require.Equal(t, uint64(len(values)+1), s.NRows)

	r := Range{Lo: 100, Hi: 100, LoInclusive: true, HiInclusive: true}
	got, err := s.Evaluate(r, nil)
	require.NoError(t, err)
	require.True(t, got.Get(uint64(len(values))))
}
