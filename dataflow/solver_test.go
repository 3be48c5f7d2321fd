package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/lattice"
)

// TestSolveForwardPowerSetConverges runs a small reaching-definitions style
// forward analysis over the power-set lattice: each node listed in gen
// contributes its element to its own set and, through the join over
// neighbours, to the nodes downstream of it.
func TestSolveForwardPowerSetConverges(t *testing.T) {
	edges := graph.Adjacency{}
	edges.AddEdge("entry", "a")
	edges.AddEdge("a", "b")
	edges.AddEdge("b", "exit")

	gen := map[string]string{"entry": "x", "a": "y"}

	transfer := func(node string, old lattice.PowerSet[string], neighbors map[string]lattice.PowerSet[string]) lattice.PowerSet[string] {
		merged := lattice.BottomPowerSet[string]()
		for _, v := range neighbors {
			merged = merged.Join(v)
		}
		if g, ok := gen[node]; ok {
			merged = merged.Join(lattice.NewPowerSet(g))
		}
		return merged
	}

	result := Solve[lattice.PowerSet[string]](
		[]string{"entry", "a", "b", "exit"},
		edges,
		Forward,
		lattice.BottomPowerSet[string](),
		transfer,
		DefaultConfig(),
	)

	assert.True(t, result.Converged)
	assert.ElementsMatch(t, []string{"x", "y"}, result.Values["a"].Slice())
	assert.ElementsMatch(t, []string{"x", "y"}, result.Values["b"].Slice())
	assert.ElementsMatch(t, []string{"x", "y"}, result.Values["exit"].Slice())
}

func TestSolveMonotonicityAcrossIterationBudgets(t *testing.T) {
	edges := graph.Adjacency{}
	edges.AddEdge("n0", "n1")
	edges.AddEdge("n1", "n2")

	gen := map[string]string{"n0": "a", "n1": "b", "n2": "c"}
	transfer := func(node string, old lattice.PowerSet[string], neighbors map[string]lattice.PowerSet[string]) lattice.PowerSet[string] {
		merged := old
		for _, v := range neighbors {
			merged = merged.Join(v)
		}
		if g, ok := gen[node]; ok {
			merged = merged.Join(lattice.NewPowerSet(g))
		}
		return merged
	}

	small := Solve[lattice.PowerSet[string]]([]string{"n0", "n1", "n2"}, edges, Forward, lattice.BottomPowerSet[string](), transfer, Config{MaxIterations: 1, UseWorklist: true})
	big := Solve[lattice.PowerSet[string]]([]string{"n0", "n1", "n2"}, edges, Forward, lattice.BottomPowerSet[string](), transfer, DefaultConfig())

	for node := range big.Values {
		assert.True(t, small.Values[node].LessEqual(big.Values[node]))
	}
	assert.True(t, big.Converged)
}

func TestSolveMaxIterationsZeroReturnsBottomNotConverged(t *testing.T) {
	edges := graph.Adjacency{}
	edges.AddEdge("a", "b")
	transfer := func(node string, old lattice.PowerSet[string], neighbors map[string]lattice.PowerSet[string]) lattice.PowerSet[string] {
		return old.Join(lattice.NewPowerSet("x"))
	}
	result := Solve[lattice.PowerSet[string]]([]string{"a", "b"}, edges, Forward, lattice.BottomPowerSet[string](), transfer, Config{MaxIterations: 0, UseWorklist: true})
	assert.False(t, result.Converged)
	for _, v := range result.Values {
		assert.Empty(t, v.Slice())
	}
}

func TestSolveWideningOnLoopHead(t *testing.T) {
	edges := graph.Adjacency{}
	edges.AddEdge("entry", "loop")
	edges.AddEdge("loop", "loop") // self loop
	edges.AddEdge("loop", "exit")

	step := map[string]int{}
	transfer := func(node string, old lattice.Interval, neighbors map[string]lattice.Interval) lattice.Interval {
		if node != "loop" {
			merged := lattice.BottomInterval()
			for _, v := range neighbors {
				merged = merged.Join(v)
			}
			return merged
		}
		step[node]++
		merged := lattice.BottomInterval()
		for _, v := range neighbors {
			merged = merged.Join(v)
		}
		return merged.Join(lattice.NewInterval(0, int64(step[node])))
	}

	result := Solve[lattice.Interval](
		[]string{"entry", "loop", "exit"},
		edges,
		Forward,
		lattice.BottomInterval(),
		transfer,
		Config{MaxIterations: 200, UseWidening: true, WideningThreshold: 5, UseNarrowing: true, UseWorklist: true},
	)
	assert.True(t, result.WideningPoints["loop"])
	assert.True(t, result.Values["loop"].HighInf)
}
