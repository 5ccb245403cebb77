package index

import (
	"testing"

	"github.com/fastbit/ibis/format"
	"github.com/stretchr/testify/require"
)

func TestKeywordsEvaluateFindsTerm(t *testing.T) {
	docs := []string{
		"the quick brown fox",
		"lazy dogs sleep",
		"quick foxes run",
	}
	k := NewKeywords(docs, 64)

	got, err := k.Evaluate(k.MatchTerm("quick"), nil)
	require.NoError(t, err)
	require.True(t, got.Get(0))
	require.True(t, got.Get(2))
	require.False(t, got.Get(1))
}

func TestKeywordsUndecidableAlwaysEmpty(t *testing.T) {
	k := NewKeywords([]string{"a b", "c d"}, 16)
	mask, frac := k.Undecidable(k.MatchTerm("a"))
	require.Equal(t, float32(0), frac)
	for i := uint64(0); i < k.NRows; i++ {
		require.False(t, mask.Get(i))
	}
}

func TestKeywordsAppendDocsRequired(t *testing.T) {
	k := NewKeywords([]string{"a"}, 16)
	require.Error(t, k.Append([]float64{1}))

	require.NoError(t, k.AppendDocs([]string{"new term here"}))
	require.Equal(t, uint64(2), k.NRows)

	got, err := k.Evaluate(k.MatchTerm("term"), nil)
	require.NoError(t, err)
	require.True(t, got.Get(1))
}

func TestKeywordsDefaultsToZstdCompression(t *testing.T) {
	k := NewKeywords([]string{"a"}, 16)
	require.Equal(t, format.CompressionZstd, k.Compression)
}
