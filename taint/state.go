// Package taint implements the path- and field-sensitive, inter-procedural
// taint engine (spec §4.3): per-block taint state, branch/join handling,
// SMT-guided path-feasibility pruning, bottom-up/top-down inter-procedural
// propagation with SCC handling, and vulnerability reporting.
package taint

import "strings"

// Identifier is a taint-tracked location: a whole variable, a
// (variable, field), a (variable, index) or a (variable, nested-field
// path). Lookup order is most-specific first, variable-level as fallback
// (spec §4.3).
type Identifier struct {
	Variable string
	Path     []string // field/index path components, empty for whole-variable
}

// Key renders the identifier into a stable map key.
func (id Identifier) Key() string {
	if len(id.Path) == 0 {
		return id.Variable
	}
	return id.Variable + "." + strings.Join(id.Path, ".")
}

// WholeVariable constructs a whole-variable identifier.
func WholeVariable(v string) Identifier { return Identifier{Variable: v} }

// Field constructs a (variable, field) identifier.
func Field(v, field string) Identifier { return Identifier{Variable: v, Path: []string{field}} }

// Index constructs a (variable, index) identifier, the array-subscript
// analogue of Field.
func Index(v string, idx string) Identifier { return Identifier{Variable: v, Path: []string{idx}} }

// NestedField constructs a (variable, nested-field-path) identifier.
func NestedField(v string, path ...string) Identifier {
	return Identifier{Variable: v, Path: append([]string(nil), path...)}
}

// lookupOrder returns the candidate keys to probe, most specific first,
// falling back to the bare variable (spec §4.3 lookup order).
func (id Identifier) lookupOrder() []string {
	if len(id.Path) == 0 {
		return []string{id.Variable}
	}
	order := make([]string, 0, len(id.Path)+1)
	for i := len(id.Path); i >= 1; i-- {
		order = append(order, id.Variable+"."+strings.Join(id.Path[:i], "."))
	}
	order = append(order, id.Variable)
	return order
}

// PathCondition is one accumulated branch condition along a path: a
// simple `variable op value` comparison extracted from the branch guard.
// A full implementation backs this extraction with a DFG/AST query; here
// it is taken directly from the IR walk (spec §9 notes this helper is a
// stand-in pending that richer extraction).
type PathCondition struct {
	Variable string
	Op       string // one of <, <=, >, >=, =, !=
	Value    string
	Negated  bool // true on the false-branch of the guard
}

// State is the per-CFG-block taint state: tainted identifiers, the
// ordered path-condition list taken to reach this block, a depth counter
// for loop-limiting, and sanitized identifiers (spec §3, §4.3).
type State struct {
	Tainted    map[string]bool
	Conditions []PathCondition
	Depth      int
	Sanitized  map[string]bool
}

// NewState creates an empty taint state.
func NewState() *State {
	return &State{Tainted: map[string]bool{}, Sanitized: map[string]bool{}}
}

// Clone returns a deep copy, used when a branch duplicates state.
func (s *State) Clone() *State {
	out := &State{
		Tainted:    make(map[string]bool, len(s.Tainted)),
		Sanitized:  make(map[string]bool, len(s.Sanitized)),
		Conditions: append([]PathCondition(nil), s.Conditions...),
		Depth:      s.Depth,
	}
	for k, v := range s.Tainted {
		out.Tainted[k] = v
	}
	for k, v := range s.Sanitized {
		out.Sanitized[k] = v
	}
	return out
}

// Taint marks id as tainted, clearing any sanitized mark on the same key.
func (s *State) Taint(id Identifier) {
	k := id.Key()
	s.Tainted[k] = true
	delete(s.Sanitized, k)
}

// Sanitize untaints only id's exact key (its specific field/element), not
// the whole variable (spec §4.3: "a sanitizer call untaints only its
// operand").
func (s *State) Sanitize(id Identifier) {
	k := id.Key()
	delete(s.Tainted, k)
	s.Sanitized[k] = true
}

// IsTainted reports whether id is tainted, probing most-specific-first
// then falling back to the bare variable.
func (s *State) IsTainted(id Identifier) bool {
	for _, k := range id.lookupOrder() {
		if s.Sanitized[k] {
			return false
		}
		if s.Tainted[k] {
			return true
		}
	}
	return false
}

// Branch duplicates state for a branch, appending cond to the new state's
// condition list.
func (s *State) Branch(cond PathCondition) *State {
	next := s.Clone()
	next.Conditions = append(next.Conditions, cond)
	return next
}

// MergeAtJoin combines states reaching a join point using meet-over-paths:
// union of tainted identifiers, intersection of path conditions, max
// depth, union of sanitized identifiers (spec §4.3).
func MergeAtJoin(states ...*State) *State {
	if len(states) == 0 {
		return NewState()
	}
	out := NewState()
	for k := range states[0].Tainted {
		out.Tainted[k] = true
	}
	for _, s := range states[1:] {
		for k := range s.Tainted {
			out.Tainted[k] = true
		}
	}
	for _, s := range states {
		for k := range s.Sanitized {
			out.Sanitized[k] = true
		}
		if s.Depth > out.Depth {
			out.Depth = s.Depth
		}
	}
	out.Conditions = intersectConditions(states)
	return out
}

func intersectConditions(states []*State) []PathCondition {
	if len(states) == 0 {
		return nil
	}
	counts := map[PathCondition]int{}
	for _, s := range states {
		seen := map[PathCondition]bool{}
		for _, c := range s.Conditions {
			if seen[c] {
				continue
			}
			seen[c] = true
			counts[c]++
		}
	}
	var out []PathCondition
	for _, c := range states[0].Conditions {
		if counts[c] == len(states) {
			out = append(out, c)
		}
	}
	return out
}
