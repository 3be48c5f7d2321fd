package typestate

// Action is a single method call on a resource variable, located at a CFG
// block and source line.
type Action struct {
	Variable string
	Method   string
	Line     int
}

// Block is one CFG basic block: an ordered action list plus successor
// block IDs.
type Block struct {
	ID         string
	Actions    []Action
	Successors []string
}

// CFG is a function's control-flow graph, expressed as blocks keyed by ID
// plus a designated entry and the exit blocks (those with no successors,
// where resource-leak checks fire).
type CFG struct {
	Entry  string
	Blocks map[string]*Block
}

// predecessorsOf computes the reverse adjacency of the CFG.
func (c *CFG) predecessorsOf() map[string][]string {
	preds := make(map[string][]string, len(c.Blocks))
	for id, b := range c.Blocks {
		for _, succ := range b.Successors {
			preds[succ] = append(preds[succ], id)
		}
		if _, ok := preds[id]; !ok {
			preds[id] = nil
		}
	}
	return preds
}

// order returns blocks in a BFS order from Entry, a stable enough
// traversal for this bounded forward analysis.
func (c *CFG) order() []string {
	visited := map[string]bool{c.Entry: true}
	queue := []string{c.Entry}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		for _, succ := range c.Blocks[cur].Successors {
			if !visited[succ] {
				visited[succ] = true
				queue = append(queue, succ)
			}
		}
	}
	return out
}

// Analyze runs forward per-variable typestate dataflow over cfg against
// protocol and returns every detected violation (spec §4.7).
func Analyze(protocol *Protocol, cfg *CFG) []Violation {
	preds := cfg.predecessorsOf()
	order := cfg.order()

	// entryState[block][variable] = state at block entry.
	entryState := map[string]map[string]string{}
	// exitState[block][variable] = state at block exit.
	exitState := map[string]map[string]string{}
	for id := range cfg.Blocks {
		entryState[id] = map[string]string{}
		exitState[id] = map[string]string{}
	}

	var violations []Violation
	allVars := map[string]bool{}
	for _, b := range cfg.Blocks {
		for _, a := range b.Actions {
			allVars[a.Variable] = true
		}
	}

	changed := true
	for iter := 0; changed && iter < len(order)+2; iter++ {
		changed = false
		for _, id := range order {
			block := cfg.Blocks[id]
			merged := mergeEntry(protocol, preds[id], exitState, allVars)
			if !statesEqual(entryState[id], merged) {
				entryState[id] = merged
				changed = true
			}

			cur := cloneState(entryState[id])
			for _, a := range block.Actions {
				state, ok := cur[a.Variable]
				if !ok {
					state = protocol.Initial
				}
				next, ok := protocol.Next(state, a.Method)
				if !ok {
					kind := InvalidTransition
					if protocol.IsFinal(state) {
						kind = UseAfterClose
					}
					violations = append(violations, newViolation(kind, a.Variable, "", state, a.Line))
					continue
				}
				cur[a.Variable] = next
			}
			exitState[id] = cur
		}
	}

	// Resource-leak check: at every exit block (no successors), a
	// variable left in a non-final state is leaked, unless it is still in
	// the initial state or in InvalidState.
	for _, b := range cfg.Blocks {
		if len(b.Successors) > 0 {
			continue
		}
		for v, state := range exitState[b.ID] {
			if !protocol.IsFinal(state) && state != protocol.Initial && state != InvalidState {
				violations = append(violations, newViolation(ResourceLeak, v, "", state, lastLine(b)))
			}
		}
	}

	return dedupeViolations(violations)
}

func lastLine(b *Block) int {
	if len(b.Actions) == 0 {
		return 0
	}
	return b.Actions[len(b.Actions)-1].Line
}

// mergeEntry computes a block's entry state as the meet-over-paths of its
// predecessors' exit states: if every predecessor that tracks a variable
// agrees on its state, that state wins; otherwise the dedicated
// InvalidState sink is used for that variable (spec §4.7 merge policy).
func mergeEntry(protocol *Protocol, preds []string, exitState map[string]map[string]string, allVars map[string]bool) map[string]string {
	if len(preds) == 0 {
		return map[string]string{}
	}
	out := map[string]string{}
	for v := range allVars {
		var agreed string
		first := true
		disagree := false
		for _, p := range preds {
			s, ok := exitState[p][v]
			if !ok {
				s = protocol.Initial
			}
			if first {
				agreed = s
				first = false
				continue
			}
			if s != agreed {
				disagree = true
			}
		}
		if disagree {
			out[v] = InvalidState
		} else if agreed != protocol.Initial {
			out[v] = agreed
		}
	}
	return out
}

func cloneState(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func statesEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func dedupeViolations(in []Violation) []Violation {
	seen := map[Violation]bool{}
	var out []Violation
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
