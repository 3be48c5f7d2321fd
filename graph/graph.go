// Package graph holds small generic graph algorithms shared across the
// analysis kernel: strongly-connected components (Tarjan) and breadth-first
// traversal. Nodes are referenced by string ID and edges are stored as
// adjacency lists, never as direct pointers, so cyclic structures (call
// graphs, scope trees, dependency graphs) never need special ownership
// handling (spec §9).
package graph

// Adjacency is a directed graph expressed as an adjacency list keyed by
// node ID.
type Adjacency map[string][]string

// AddEdge appends a directed edge from -> to.
func (a Adjacency) AddEdge(from, to string) {
	a[from] = append(a[from], to)
}

// Nodes returns the set of node IDs that appear as a source, in
// unspecified order.
func (a Adjacency) Nodes() []string {
	nodes := make([]string, 0, len(a))
	for n := range a {
		nodes = append(nodes, n)
	}
	return nodes
}
