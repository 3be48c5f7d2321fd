package taint

import (
	"strings"

	"github.com/viant/codegraph/graph"
)

// Summary is a function's taint effect, computed bottom-up: whether its
// return value is ever tainted, and the confidence of that determination.
// A directly observed return-sink hit carries full confidence; a summary
// inherited only because a callee's return is tainted is the conservative
// case and carries the spec-mandated 0.80 confidence (spec §4.3).
type Summary struct {
	ReturnTainted bool
	Confidence    float64
}

// Function bundles a CFG with the metadata the interprocedural engine
// needs: which identifiers are intrinsically tainted on entry (explicit
// sources local to the function) and which callees it invokes.
type Function struct {
	ID              string
	CFG             *CFG
	ExplicitSources []Identifier
}

const inheritedConfidence = 0.80

// returnSinkName is the reserved sink name PropagateFunction recognizes as
// "this function's return value", letting interprocedural summary
// computation reuse the same intraprocedural walk.
const returnSinkName = "return"

// ComputeSummaries computes per-function taint summaries bottom-up over
// the call graph, iterating to a fixed point capped at 10 rounds (spec
// §4.3). callGraph maps a function ID to the IDs of functions it calls;
// names are resolved via ResolveCallee before lookup.
func ComputeSummaries(functions map[string]*Function, callGraph graph.Adjacency, config Config) map[string]Summary {
	summaries := make(map[string]Summary, len(functions))
	for id := range functions {
		summaries[id] = Summary{}
	}

	known := make(map[string]bool, len(functions))
	for id := range functions {
		known[id] = true
	}

	const roundCap = 10
	for round := 0; round < roundCap; round++ {
		changed := false
		for id, fn := range functions {
			findings := PropagateFunction(fn.CFG, config, fn.ExplicitSources)
			directHit := false
			for _, f := range findings {
				if f.Op.SinkName == returnSinkName {
					directHit = true
					break
				}
			}

			inherited := false
			for _, calleeName := range callGraph[id] {
				resolved, ok := ResolveCallee(calleeName, known)
				if !ok {
					continue
				}
				if summaries[resolved].ReturnTainted {
					inherited = true
				}
			}

			next := summaries[id]
			switch {
			case directHit:
				next = Summary{ReturnTainted: true, Confidence: 1.0}
			case inherited && !next.ReturnTainted:
				next = Summary{ReturnTainted: true, Confidence: inheritedConfidence}
			}
			if next != summaries[id] {
				changed = true
				summaries[id] = next
			}
		}
		if !changed {
			break
		}
	}
	return summaries
}

// ResolveCallee resolves a call-graph callee name against the set of known
// function IDs. A directly known name resolves as-is. Otherwise, an
// "external.X" reference is resolved against any known "*.X" or "*:X"
// symbol actually defined in the set, falling back to unresolved (spec
// §4.3's external-call name-resolution rule).
func ResolveCallee(name string, known map[string]bool) (string, bool) {
	if known[name] {
		return name, true
	}
	const externalPrefix = "external."
	if !strings.HasPrefix(name, externalPrefix) {
		return "", false
	}
	suffix := strings.TrimPrefix(name, externalPrefix)
	for id := range known {
		if strings.HasSuffix(id, "."+suffix) || strings.HasSuffix(id, ":"+suffix) {
			return id, true
		}
	}
	return "", false
}

// ApplyCallSummaries rewrites each OpCall op in cfg so that a second
// PropagateFunction pass sees call-site taint without re-walking the
// callee: a call whose resolved callee has a tainted return becomes an
// OpSource on Dst, and any other call becomes one OpAssign from each
// argument to Dst. Returns a new CFG; the input is left untouched.
func ApplyCallSummaries(cfg *CFG, summaries map[string]Summary, known map[string]bool) *CFG {
	out := &CFG{FunctionID: cfg.FunctionID, Entry: cfg.Entry, Blocks: make(map[string]*Block, len(cfg.Blocks))}
	for id, b := range cfg.Blocks {
		nb := &Block{ID: b.ID, Successors: append([]Successor(nil), b.Successors...)}
		for _, op := range b.Ops {
			if op.Kind != OpCall {
				nb.Ops = append(nb.Ops, op)
				continue
			}
			resolved, ok := ResolveCallee(op.Callee, known)
			tainted := ok && summaries[resolved].ReturnTainted
			if !tainted {
				// Conservative pass-through: taint flows if any argument is
				// already tainted at the call site (unknown callee body).
				for _, arg := range op.Args {
					nb.Ops = append(nb.Ops, Op{Kind: OpAssign, Dst: op.Dst, Src: arg, Line: op.Line})
				}
				continue
			}
			nb.Ops = append(nb.Ops, Op{Kind: OpSource, Dst: op.Dst, Line: op.Line})
		}
		out.Blocks[id] = nb
	}
	return out
}

// AffectedBySCCChange returns the set of functions an incremental change to
// any of changed should mark affected: the full strongly-connected
// component containing each changed function (mutual recursion means a
// change to one member affects all), plus every direct (one-hop) caller of
// that component from outside it (spec §4.3 SCC handling, mirroring the
// change-impact propagation in package impact).
func AffectedBySCCChange(callGraph graph.Adjacency, allFunctions []string, changed []string) []string {
	components := graph.SCC(allFunctions, callGraph)
	memberOf := make(map[string]int, len(allFunctions))
	for i, c := range components {
		for _, id := range c {
			memberOf[id] = i
		}
	}

	affected := map[string]bool{}
	changedComponents := map[int]bool{}
	for _, id := range changed {
		if idx, ok := memberOf[id]; ok {
			changedComponents[idx] = true
		}
	}
	for idx := range changedComponents {
		for _, id := range components[idx] {
			affected[id] = true
		}
	}

	reverse := graph.Reverse(callGraph)
	for idx := range changedComponents {
		for _, member := range components[idx] {
			for _, caller := range reverse[member] {
				if memberOf[caller] != idx {
					affected[caller] = true
				}
			}
		}
	}

	out := make([]string, 0, len(affected))
	for id := range affected {
		out = append(out, id)
	}
	return out
}
