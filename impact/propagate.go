package impact

import "github.com/viant/codegraph/graph"

// GraphType selects which edge-kind set a BFS propagation traverses,
// chosen per change type (spec §4.5).
type GraphType string

const (
	CallGraph       GraphType = "call-graph"       // signature changes: calls edges
	TypeFlow        GraphType = "type-flow"        // type/base-class changes: extends, implements
	DataFlow        GraphType = "data-flow"        // data structure changes: reads, writes
	FrameworkRoute  GraphType = "framework-route"  // decorator changes: calls + references
)

// DefaultDepthCap is the BFS depth cap applied to ordinary nodes.
const DefaultDepthCap = 2

// CriticalDepthCap is the extended cap applied to nodes in the critical
// set (entry points, public APIs).
const CriticalDepthCap = 5

// Mark is one impacted node, carrying the hop depth at which it was
// reached and a confidence that decays for indirect (non-primary) hops —
// a supplemented feature grounded in the original source's change
// analyzer, which attaches decayed confidence to transitive one-hop
// caller propagation (see DESIGN.md).
type Mark struct {
	NodeID     string
	Depth      int
	Confidence float64
}

// confidenceForDepth returns 1.0 for a direct hit (depth 0) and decays by
// 0.15 per hop thereafter, floored at 0.25.
func confidenceForDepth(depth int) float64 {
	c := 1.0 - 0.15*float64(depth)
	if c < 0.25 {
		c = 0.25
	}
	return c
}

// Propagate runs a multi-graph BFS from changed, over the edge kinds
// selected by graphType, honoring depth caps: nodes in critical get
// CriticalDepthCap, everything else gets depthCap (pass DefaultDepthCap
// for the spec default).
func Propagate(edges graph.Adjacency, changed []string, depthCap int, critical map[string]bool) []Mark {
	var ordinary, extended []string
	for _, id := range changed {
		if critical[id] && CriticalDepthCap > depthCap {
			extended = append(extended, id)
		} else {
			ordinary = append(ordinary, id)
		}
	}
	depth := graph.BFS(edges, ordinary, depthCap)
	for id, d := range graph.BFS(edges, extended, CriticalDepthCap) {
		if old, ok := depth[id]; !ok || d < old {
			depth[id] = d
		}
	}

	marks := make([]Mark, 0, len(depth))
	for id, d := range depth {
		marks = append(marks, Mark{NodeID: id, Depth: d, Confidence: confidenceForDepth(d)})
	}
	return marks
}

// EdgeKindsFor reports the edge kinds relevant to a graph type, mirroring
// the ir.EdgeKind values that feed graph.Adjacency construction.
func EdgeKindsFor(t GraphType) []string {
	switch t {
	case CallGraph:
		return []string{"calls"}
	case TypeFlow:
		return []string{"extends", "implements"}
	case DataFlow:
		return []string{"reads", "writes"}
	case FrameworkRoute:
		return []string{"calls", "references"}
	default:
		return nil
	}
}

// UnionGraphs combines multiple impact graphs built for different change
// types into one, matching spec §4.5's "multiple graphs are combined by
// unioning their edge sets."
func UnionGraphs(graphs ...graph.Adjacency) graph.Adjacency {
	return graph.Union(graphs...)
}
