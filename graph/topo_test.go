package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopoSortOrdersDependencies(t *testing.T) {
	edges := Adjacency{}
	edges.AddEdge("a", "b")
	edges.AddEdge("b", "c")

	order, err := TopoSort([]string{"a", "b", "c"}, edges)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopoSortDetectsCycle(t *testing.T) {
	edges := Adjacency{}
	edges.AddEdge("a", "b")
	edges.AddEdge("b", "a")

	_, err := TopoSort([]string{"a", "b"}, edges)
	assert.Error(t, err)
	assert.True(t, HasCycle([]string{"a", "b"}, edges))
}

func TestBFSRespectsDepthCap(t *testing.T) {
	edges := Adjacency{}
	edges.AddEdge("n0", "n1")
	edges.AddEdge("n1", "n2")
	edges.AddEdge("n2", "n3")

	depth := BFS(edges, []string{"n0"}, 2)
	assert.Contains(t, depth, "n0")
	assert.Contains(t, depth, "n1")
	assert.Contains(t, depth, "n2")
	assert.NotContains(t, depth, "n3")
}
