package binning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDivideCountsTrivial(t *testing.T) {
	cnt := []uint32{1, 1, 1, 1}
	bdry := DivideCounts(3, cnt) // nb*3/2 = 4 >= ncnt(4), trivial path
	require.Equal(t, []uint32{1, 2, 3, 4}, bdry)
}

func TestDivideCountsBalancesWeight(t *testing.T) {
	cnt := make([]uint32, 100)
	for i := range cnt {
		cnt[i] = 1
	}
	bdry := DivideCounts(5, cnt)
	require.LessOrEqual(t, len(bdry), 5)

	total := uint32(0)
	for _, c := range cnt {
		total += c
	}
	avg := total / 5

	prev := uint32(0)
	for _, b := range bdry {
		var w uint32
		for i := prev; i < b; i++ {
			w += cnt[i]
		}
		require.LessOrEqual(t, w, 2*avg, "bin weight should not exceed 2x average per spec law")
		prev = b
	}
	require.Equal(t, uint32(len(cnt)), bdry[len(bdry)-1])
}

func TestDivideCountsHeavySingleton(t *testing.T) {
	cnt := make([]uint32, 50)
	for i := range cnt {
		cnt[i] = 1
	}
	cnt[25] = 1000 // dominant singleton
	bdry := DivideCounts(5, cnt)
	require.NotEmpty(t, bdry)
	require.Equal(t, uint32(len(cnt)), bdry[len(bdry)-1])
}

func TestLocate(t *testing.T) {
	bounds := []float64{1.5, 4.5, 1e308}
	require.Equal(t, 0, Locate(bounds, 1))
	require.Equal(t, 1, Locate(bounds, 2))
	require.Equal(t, 1, Locate(bounds, 4))
	require.Equal(t, 2, Locate(bounds, 5))
}

func TestExpandContractRange(t *testing.T) {
	bounds := []float64{10, 20, 30}
	require.Equal(t, float64(20), ExpandRange(bounds, OpLess, 15))
	require.Equal(t, float64(10), ContractRange(bounds, OpLess, 15))
	require.Equal(t, float64(10), ExpandRange(bounds, OpGreaterEqual, 15))
	require.Equal(t, float64(20), ContractRange(bounds, OpGreaterEqual, 15))
}

func TestChooseMulticomponentBases(t *testing.T) {
	bases := ChooseMulticomponentBases(1000, 2)
	require.NotEmpty(t, bases)
	product := uint64(1)
	for _, b := range bases {
		product *= b
		require.GreaterOrEqual(t, b, uint64(2))
	}
	require.GreaterOrEqual(t, product, uint64(1000))
}
