package graph

import "fmt"

// TopoSort returns a topological ordering of allNodes given edges (from ->
// to meaning from must precede to), or an error if the graph has a cycle.
func TopoSort(allNodes []string, edges Adjacency) ([]string, error) {
	indegree := make(map[string]int, len(allNodes))
	for _, n := range allNodes {
		indegree[n] = 0
	}
	for from, tos := range edges {
		if _, ok := indegree[from]; !ok {
			continue
		}
		for _, to := range tos {
			if _, ok := indegree[to]; !ok {
				continue
			}
			indegree[to]++
		}
	}
	var queue []string
	for _, n := range allNodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	order := make([]string, 0, len(allNodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, next := range edges[n] {
			if _, ok := indegree[next]; !ok {
				continue
			}
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if len(order) != len(allNodes) {
		return nil, fmt.Errorf("graph: cycle detected, ordered %d of %d nodes", len(order), len(allNodes))
	}
	return order, nil
}

// HasCycle reports whether the graph restricted to allNodes contains a
// cycle.
func HasCycle(allNodes []string, edges Adjacency) bool {
	_, err := TopoSort(allNodes, edges)
	return err != nil
}
