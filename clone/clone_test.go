package clone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestType1WhitespaceInsensitivity(t *testing.T) {
	a := Fragment{FilePath: "a.go", Raw: "func add(a, b int) int {\n  return a + b\n}", TokenCount: 10, LOC: 3}
	b := Fragment{FilePath: "b.go", Raw: "func add(a, b int) int {\n    // comment\n    return a + b\n}", TokenCount: 10, LOC: 4}

	pairs := DetectType1([]Fragment{a, b}, Type1Config{MinTokens: 5, MinLOC: 1})
	require.Len(t, pairs, 1)
	require.Equal(t, 1.0, pairs[0].Metrics.Similarity)
}

func TestType1ThresholdBoundary(t *testing.T) {
	a := Fragment{Raw: "x", TokenCount: 5, LOC: 2}
	b := Fragment{Raw: "x", TokenCount: 5, LOC: 2}
	pairs := DetectType1([]Fragment{a, b}, Type1Config{MinTokens: 5, MinLOC: 2})
	require.Len(t, pairs, 1)

	c := Fragment{Raw: "x", TokenCount: 4, LOC: 2}
	pairs = DetectType1([]Fragment{a, c}, Type1Config{MinTokens: 5, MinLOC: 2})
	require.Len(t, pairs, 0)
}

func TestType2RenamedIdentifiers(t *testing.T) {
	a := Fragment{Raw: "func add(x, y int) int { return x + y }", TokenCount: 10, LOC: 1}
	b := Fragment{Raw: "func sum(p, q int) int { return p + q }", TokenCount: 10, LOC: 1}
	pairs := DetectType2([]Fragment{a, b}, Type2Config{MinTokens: 5, MinLOC: 1})
	require.Len(t, pairs, 1)
}

func TestType3GapPrefilterRejectsDissimilarLength(t *testing.T) {
	a := Fragment{Raw: "a\nb\nc\nd\ne\nf\ng\nh", TokenCount: 20, LOC: 8}
	b := Fragment{Raw: "a", TokenCount: 5, LOC: 1}
	pairs := DetectType3([]Fragment{a, b}, Type3Config{MinTokens: 5, MinLOC: 1, MaxGapRatio: 0.2, MinSimilarity: 0})
	require.Len(t, pairs, 0)
}

func TestType3EditDistanceWithinGapBudget(t *testing.T) {
	a := Fragment{Raw: "x = 1\ny = 2\nz = 3", TokenCount: 15, LOC: 3}
	b := Fragment{Raw: "x = 1\nw = 9\nz = 3", TokenCount: 15, LOC: 3}
	pairs := DetectType3([]Fragment{a, b}, Type3Config{MinTokens: 5, MinLOC: 1, MaxGapRatio: 0.5, MinSimilarity: 0.3})
	require.Len(t, pairs, 1)
	require.Greater(t, pairs[0].Metrics.Similarity, 0.3)
}

func TestType4SemanticSimilarityOfStructurallyEqualFragments(t *testing.T) {
	a := Fragment{Raw: "if cond\nx = 1\nreturn x", TokenCount: 10, LOC: 3}
	b := Fragment{Raw: "if other\ny = 2\nreturn y", TokenCount: 10, LOC: 3}
	pairs := DetectType4([]Fragment{a, b}, DefaultType4Config())
	require.Len(t, pairs, 1)
	require.GreaterOrEqual(t, pairs[0].Metrics.SemanticSimilarity, 0.6)
}

func TestType4BelowThresholdNotReported(t *testing.T) {
	a := Fragment{Raw: "if cond\nx = 1\nreturn x", TokenCount: 10, LOC: 3}
	b := Fragment{Raw: "call(foo)\ncall(bar)\ncall(baz)\ncall(qux)", TokenCount: 10, LOC: 4}
	cfg := DefaultType4Config()
	cfg.MinSimilarity = 0.95
	pairs := DetectType4([]Fragment{a, b}, cfg)
	require.Len(t, pairs, 0)
}
