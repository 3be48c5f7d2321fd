package graph

// BFS runs a breadth-first traversal from the given roots, bounded by
// maxDepth (negative means unbounded), and returns the set of reached node
// IDs (including the roots) together with the depth at which each was
// first reached.
func BFS(edges Adjacency, roots []string, maxDepth int) map[string]int {
	depth := make(map[string]int, len(roots))
	queue := make([]string, 0, len(roots))
	for _, r := range roots {
		if _, seen := depth[r]; !seen {
			depth[r] = 0
			queue = append(queue, r)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := depth[cur]
		if maxDepth >= 0 && d >= maxDepth {
			continue
		}
		for _, next := range edges[cur] {
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = d + 1
			queue = append(queue, next)
		}
	}
	return depth
}

// Reverse returns the transposed adjacency list (all edges flipped).
func Reverse(edges Adjacency) Adjacency {
	rev := make(Adjacency, len(edges))
	for from, tos := range edges {
		for _, to := range tos {
			rev.AddEdge(to, from)
		}
	}
	return rev
}

// Union combines multiple adjacency lists into one, concatenating edge
// lists for shared source nodes.
func Union(graphs ...Adjacency) Adjacency {
	out := Adjacency{}
	for _, g := range graphs {
		for from, tos := range g {
			out[from] = append(out[from], tos...)
		}
	}
	return out
}
