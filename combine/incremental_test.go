package combine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResumMatchesFreshSum(t *testing.T) {
	nrows := uint64(1000)
	bits := partition(nrows, 20)

	first := Resum(bits, 2, 10, len(bits), nrows, nil)
	want := Or(bits, 2, 10, len(bits), nrows)
	require.True(t, want.Equal(first.Result))

	second := Resum(bits, 3, 12, len(bits), nrows, &first)
	wantSecond := Or(bits, 3, 12, len(bits), nrows)
	require.True(t, wantSecond.Equal(second.Result))
}
