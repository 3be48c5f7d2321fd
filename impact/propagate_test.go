package impact

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graph"
)

// chain: N3 -> N2 -> N1 -> N0 (calls edges), matching spec §8 scenario 5.
func chainGraph() graph.Adjacency {
	g := graph.Adjacency{}
	g.AddEdge("N3", "N2")
	g.AddEdge("N2", "N1")
	g.AddEdge("N1", "N0")
	g.AddEdge("X", "N3") // callers beyond N3, for the extended-depth case below
	g.AddEdge("Y", "X")
	g.AddEdge("Z", "Y")
	return g
}

func ids(marks []Mark) map[string]bool {
	out := map[string]bool{}
	for _, m := range marks {
		out[m.NodeID] = true
	}
	return out
}

func TestImpactPropagationDepthCap(t *testing.T) {
	g := graph.Reverse(chainGraph()) // propagate from N0 against callers
	marks := Propagate(g, []string{"N0"}, DefaultDepthCap, nil)
	got := ids(marks)
	require.True(t, got["N0"])
	require.True(t, got["N1"])
	require.True(t, got["N2"])
	require.False(t, got["N3"])
}

func TestImpactPropagationCriticalExtendedDepth(t *testing.T) {
	g := graph.Reverse(chainGraph())
	critical := map[string]bool{"N0": true}
	marks := Propagate(g, []string{"N0"}, DefaultDepthCap, critical)
	got := ids(marks)
	require.True(t, got["N3"])
}

func TestUnionGraphs(t *testing.T) {
	a := graph.Adjacency{"x": {"y"}}
	b := graph.Adjacency{"x": {"z"}}
	u := UnionGraphs(a, b)
	require.ElementsMatch(t, []string{"y", "z"}, u["x"])
}

func TestConfidenceDecaysWithDepth(t *testing.T) {
	g := graph.Reverse(chainGraph())
	marks := Propagate(g, []string{"N0"}, DefaultDepthCap, nil)
	byID := map[string]Mark{}
	for _, m := range marks {
		byID[m.NodeID] = m
	}
	require.Equal(t, 1.0, byID["N0"].Confidence)
	require.Less(t, byID["N2"].Confidence, byID["N0"].Confidence)
}
