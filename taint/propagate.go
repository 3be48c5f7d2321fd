package taint

import "github.com/viant/codegraph/smt"

// Finding is one tainted-sink hit recorded while walking a single
// function's CFG.
type Finding struct {
	Block      string
	Op         Op
	Tainted    Identifier
	Conditions []PathCondition
}

// PropagateFunction runs the path-sensitive forward taint walk over cfg
// as a worklist fixed point (the same shape as the generic dataflow
// engine in package dataflow, specialized to taint state): per-block
// entry state only grows (taint/sanitized sets union, conditions
// intersect at merges), branches duplicate state and append their
// condition, and successors are pruned via SMT feasibility before being
// enqueued (spec §4.3).
func PropagateFunction(cfg *CFG, config Config, sources []Identifier) []Finding {
	findings, _ := PropagateFunctionDetailed(cfg, config, sources)
	return findings
}

// PropagateFunctionDetailed runs the same fixed point as PropagateFunction
// but additionally returns a parent map recording, for each block, the
// predecessor block whose merge most recently changed its entry state.
// Vulnerability reporting walks this map backward from a finding's block to
// the entry to reconstruct a source-to-sink path (spec §4.3).
func PropagateFunctionDetailed(cfg *CFG, config Config, sources []Identifier) ([]Finding, map[string]string) {
	if config.MaxDepth <= 0 {
		config.MaxDepth = 100
	}

	parent := map[string]string{}
	entryState := map[string]*State{}
	for id := range cfg.Blocks {
		entryState[id] = NewState()
	}
	init := NewState()
	for _, src := range sources {
		init.Taint(src)
	}
	entryState[cfg.Entry] = init

	queue := []string{cfg.Entry}
	queued := map[string]bool{cfg.Entry: true}
	reached := map[string]bool{cfg.Entry: true}

	findingSeen := map[string]Finding{}

	const iterationCap = 100000
	iterations := 0
	for len(queue) > 0 {
		iterations++
		if iterations > iterationCap {
			break
		}
		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		block, ok := cfg.Blocks[id]
		if !ok {
			continue
		}
		state := entryState[id].Clone()

		for _, op := range block.Ops {
			switch op.Kind {
			case OpSource:
				state.Taint(op.Dst)
			case OpAssign:
				if state.IsTainted(op.Src) {
					state.Taint(op.Dst)
				}
			case OpSanitize:
				state.Sanitize(op.Dst)
			case OpSink:
				if state.IsTainted(op.Dst) {
					key := id + "|" + op.Dst.Key() + "|" + op.SinkName
					findingSeen[key] = Finding{
						Block: id, Op: op, Tainted: op.Dst,
						Conditions: append([]PathCondition(nil), state.Conditions...),
					}
				}
			}
		}

		for _, succ := range block.Successors {
			candidate := state.Clone()
			candidate.Depth = state.Depth + 1
			if succ.Cond != nil {
				candidate = state.Branch(*succ.Cond)
				candidate.Depth = state.Depth + 1
			}
			if candidate.Depth > config.MaxDepth {
				continue
			}
			if config.UseSMTPruning && config.Backend != nil && len(candidate.Conditions) > 0 {
				if smt.CheckPath(config.Backend, toSMTConditions(candidate.Conditions)) == smt.Infeasible {
					continue
				}
			}
			// The first state to reach a block is taken as is: merging it with
			// the empty placeholder would intersect away its path conditions.
			merged := candidate
			if reached[succ.Block] {
				merged = MergeAtJoin(entryState[succ.Block], candidate)
			}
			reached[succ.Block] = true
			if !stateEqual(merged, entryState[succ.Block]) {
				entryState[succ.Block] = merged
				parent[succ.Block] = id
				if !queued[succ.Block] {
					queued[succ.Block] = true
					queue = append(queue, succ.Block)
				}
			}
		}
	}

	findings := make([]Finding, 0, len(findingSeen))
	for _, f := range findingSeen {
		findings = append(findings, f)
	}
	return findings, parent
}

func stateEqual(a, b *State) bool {
	if a.Depth != b.Depth {
		return false
	}
	if len(a.Tainted) != len(b.Tainted) || len(a.Sanitized) != len(b.Sanitized) {
		return false
	}
	for k := range a.Tainted {
		if !b.Tainted[k] {
			return false
		}
	}
	for k := range a.Sanitized {
		if !b.Sanitized[k] {
			return false
		}
	}
	if len(a.Conditions) != len(b.Conditions) {
		return false
	}
	for i, c := range a.Conditions {
		if b.Conditions[i] != c {
			return false
		}
	}
	return true
}
