// Package dataflow implements the generic fixed-point worklist solver that
// underlies C2/C3/C7 (spec §4.1): a user-defined lattice plus a monotone
// transfer function are iterated over a set of program nodes and edges
// until convergence, with widening/narrowing for infinite-height lattices.
package dataflow

import "github.com/viant/codegraph/graph"

// Direction selects whether a node's value is recomputed from its
// predecessors (Forward) or its successors (Backward).
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Element is the contract a lattice value must satisfy for the solver.
type Element[T any] interface {
	LessEqual(other T) bool
	Join(other T) T
	Meet(other T) T
	Widen(other T) T
	Narrow(other T) T
}

// TransferFunc computes a node's new value from its previous value and the
// current values of its incoming neighbors (predecessors for Forward,
// successors for Backward). It must be monotone; non-monotone functions
// yield unspecified but terminating behavior (spec §4.1 failure semantics).
type TransferFunc[T Element[T]] func(node string, old T, neighbors map[string]T) T

// Config tunes the solver. A zero Config is replaced by DefaultConfig by
// Solve.
type Config struct {
	MaxIterations     int // default 1000
	UseWidening       bool
	WideningThreshold int // iterations before widening activates, default 5
	UseNarrowing      bool
	UseWorklist       bool
}

// DefaultConfig returns the spec §4.1 default configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations:     1000,
		UseWidening:       true,
		WideningThreshold: 5,
		UseNarrowing:      true,
		UseWorklist:       true,
	}
}

// Result is the outcome of a solve.
type Result[T Element[T]] struct {
	Values         map[string]T
	Iterations     int
	Converged      bool
	WideningPoints map[string]bool
	NodeCount      int
	ChangeCount    int
}

// Solve runs the worklist fixed-point algorithm described in spec §4.1.
// allNodes is the full node set; edges maps a node to its Forward-direction
// successors. bottom is the lattice bottom element, used to initialize
// every node before iteration begins.
func Solve[T Element[T]](
	allNodes []string,
	edges graph.Adjacency,
	direction Direction,
	bottom T,
	transfer TransferFunc[T],
	cfg Config,
) Result[T] {
	if (cfg == Config{}) {
		cfg = DefaultConfig()
	}
	if cfg.WideningThreshold <= 0 {
		cfg.WideningThreshold = 5
	}

	values := make(map[string]T, len(allNodes))
	for _, n := range allNodes {
		values[n] = bottom
	}

	successors := edges
	predecessors := graph.Reverse(edges)
	incoming, outgoing := predecessors, successors
	if direction == Backward {
		incoming, outgoing = successors, predecessors
	}

	loopHeads := detectLoopHeads(allNodes, successors)
	visitCount := make(map[string]int, len(allNodes))
	wideningPoints := map[string]bool{}

	seed, err := graph.TopoSort(allNodes, successors)
	if err != nil {
		// cyclic graphs are expected (call graphs, CFGs with loops); fall
		// back to input order for the initial worklist seeding.
		seed = append([]string(nil), allNodes...)
	}
	if direction == Backward {
		seed = reverseSlice(seed)
	}

	iterations := 0
	changeCount := 0
	converged := true

	recompute := func(n string) (T, bool) {
		neighborVals := gatherNeighbors(n, incoming, values)
		newVal := transfer(n, values[n], neighborVals)
		if sameValue(values[n], newVal) {
			return values[n], false
		}
		newVal = applyWidening(cfg, loopHeads, n, values[n], newVal, visitCount, wideningPoints)
		return newVal, true
	}

	if !cfg.UseWorklist {
		for {
			if iterations >= cfg.MaxIterations {
				converged = false
				break
			}
			iterations++
			anyChange := false
			for _, n := range seed {
				newVal, changed := recompute(n)
				if changed {
					values[n] = newVal
					anyChange = true
					changeCount++
				}
			}
			if !anyChange {
				break
			}
		}
	} else {
		queue := append([]string(nil), seed...)
		queued := make(map[string]bool, len(seed))
		for _, n := range queue {
			queued[n] = true
		}
		for len(queue) > 0 {
			if iterations >= cfg.MaxIterations {
				converged = false
				break
			}
			iterations++
			n := queue[0]
			queue = queue[1:]
			queued[n] = false

			newVal, changed := recompute(n)
			if !changed {
				continue
			}
			values[n] = newVal
			changeCount++
			for _, next := range outgoing[n] {
				if !queued[next] {
					queue = append(queue, next)
					queued[next] = true
				}
			}
		}
	}

	if cfg.UseNarrowing && len(wideningPoints) > 0 {
		for i := 0; i < 10; i++ {
			anyChange := false
			for n := range wideningPoints {
				neighborVals := gatherNeighbors(n, incoming, values)
				candidate := values[n].Narrow(transfer(n, values[n], neighborVals))
				if candidate.LessEqual(values[n]) && !sameValue(candidate, values[n]) {
					values[n] = candidate
					anyChange = true
				}
			}
			if !anyChange {
				break
			}
		}
	}

	return Result[T]{
		Values:         values,
		Iterations:     iterations,
		Converged:      converged,
		WideningPoints: wideningPoints,
		NodeCount:      len(allNodes),
		ChangeCount:    changeCount,
	}
}

func applyWidening[T Element[T]](cfg Config, loopHeads map[string]bool, n string, old, computed T, visitCount map[string]int, wideningPoints map[string]bool) T {
	if !cfg.UseWidening || !loopHeads[n] {
		return computed
	}
	visitCount[n]++
	if visitCount[n] <= cfg.WideningThreshold {
		return computed
	}
	wideningPoints[n] = true
	return old.Widen(computed)
}

func gatherNeighbors[T Element[T]](n string, incoming graph.Adjacency, values map[string]T) map[string]T {
	neighbors := incoming[n]
	out := make(map[string]T, len(neighbors))
	for _, p := range neighbors {
		out[p] = values[p]
	}
	return out
}

// detectLoopHeads flags a node as a loop head if it belongs to a
// non-trivial strongly-connected component or has a self-loop, which
// approximates "reached by a control-flow back edge" (spec §4.1) without
// requiring callers to label edges specially.
func detectLoopHeads(allNodes []string, successors graph.Adjacency) map[string]bool {
	heads := map[string]bool{}
	for _, component := range graph.SCC(allNodes, successors) {
		if len(component) > 1 {
			for _, n := range component {
				heads[n] = true
			}
		}
	}
	for n, tos := range successors {
		for _, to := range tos {
			if to == n {
				heads[n] = true
			}
		}
	}
	return heads
}

func sameValue[T Element[T]](a, b T) bool {
	return a.LessEqual(b) && b.LessEqual(a)
}

func reverseSlice(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
