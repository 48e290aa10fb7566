package tracknumber

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate_Pattern(t *testing.T) {
	g := New()
	for i := 0; i < 1000; i++ {
		require.True(t, Valid(g.Generate()))
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := NewWithSource(rand.NewPCG(1, 2))
	b := NewWithSource(rand.NewPCG(1, 2))
	require.Equal(t, a.Generate(), b.Generate())
}

// Birthday bound: 10k draws out of 9e8 values collide with p ≈ 0.055,
// so a handful of duplicates is tolerated; a broken source would produce thousands.
func TestGenerate_MostlyUnique(t *testing.T) {
	g := New()
	seen := make(map[string]struct{}, 10_000)
	dups := 0
	for i := 0; i < 10_000; i++ {
		v := g.Generate()
		if _, ok := seen[v]; ok {
			dups++
		}
		seen[v] = struct{}{}
	}
	require.LessOrEqual(t, dups, 3)
}

func TestValid(t *testing.T) {
	require.True(t, Valid("TRK-100000000"))
	require.True(t, Valid("TRK-999999999"))
	require.False(t, Valid("TRK-12345678"))
	require.False(t, Valid("TRK-1234567890"))
	require.False(t, Valid("trk-123456789"))
	require.False(t, Valid("HACKED"))
}
