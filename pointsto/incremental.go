package pointsto

// UpdateKind enumerates the three incremental update operations (spec
// §4.2).
type UpdateKind int

const (
	AddConstraint UpdateKind = iota
	RemoveConstraint
	ModifyConstraint
)

// Update describes one incremental change to the constraint set.
// ModifyConstraint treats Old as the constraint to remove and New as the
// constraint to add (remove-then-add).
type Update struct {
	Kind UpdateKind
	Old  Constraint
	New  Constraint
}

// ApplyIncremental applies a sequence of updates. For added constraints it
// runs the worklist only over the variables affected by the change plus
// every variable with a non-empty points-to set whose outgoing edges
// changed (spec §4.2); a removed constraint instead makes it rebuild every
// points-to set from the remaining constraints (see rebuildFrom). It
// bumps the solver's version exactly once per call and returns the set of
// affected variables for observability.
func (s *Solver) ApplyIncremental(updates ...Update) []string {
	affected := map[string]bool{}

	for _, u := range updates {
		switch u.Kind {
		case AddConstraint:
			s.applyAdd(u.New, affected)
		case RemoveConstraint:
			s.applyRemove(u.Old, affected)
		case ModifyConstraint:
			s.applyRemove(u.Old, affected)
			s.applyAdd(u.New, affected)
		}
	}

	limit := len(s.constraints)*100 + 10000
	iterations := 0
	for len(s.worklist) > 0 {
		if iterations >= limit {
			s.TimedOut = true
			break
		}
		iterations++
		v := s.worklist[0]
		s.worklist = s.worklist[1:]
		s.queued[v] = false
		s.propagate(v)
	}
	s.version++

	out := make([]string, 0, len(affected))
	for v := range affected {
		out = append(out, v)
	}
	return out
}

func (s *Solver) applyAdd(c Constraint, affected map[string]bool) {
	added := s.AddConstraint(c)
	switch added.Kind {
	case Alloc:
		if s.bitmap(added.LHS).Insert(added.RHS) {
			affected[added.LHS] = true
			s.enqueue(added.LHS)
		}
	case Copy:
		if s.addCopyEdge(added.RHS, added.LHS) {
			// immediately union rhs's current set into lhs and mark lhs
			// affected, per spec §4.2 incremental solver contract.
			if s.bitmap(added.LHS).UnionWith(s.bitmap(added.RHS)) {
				affected[added.LHS] = true
			}
			affected[added.LHS] = true
			if s.bitmap(added.RHS).Len() > 0 {
				s.enqueue(added.RHS)
			}
		}
	case Load, Store:
		affected[added.LHS] = true
		affected[added.RHS] = true
		if s.bitmap(added.RHS).Len() > 0 {
			s.enqueue(added.RHS)
		}
		if s.bitmap(added.LHS).Len() > 0 {
			s.enqueue(added.LHS)
		}
	}
}

func (s *Solver) applyRemove(c Constraint, affected map[string]bool) {
	idx := -1
	for i, existing := range s.constraints {
		if sameConstraint(*existing, c) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	removed := s.constraints[idx]
	s.constraints = append(s.constraints[:idx], s.constraints[idx+1:]...)

	switch removed.Kind {
	case Alloc:
		affected[removed.LHS] = true
	case Copy:
		s.removeCopyEdge(removed.RHS, removed.LHS)
		affected[removed.LHS] = true
		affected[removed.RHS] = true
	case Load:
		s.removeIndexed(s.loadByRHS, removed.RHS, removed)
		affected[removed.LHS] = true
		affected[removed.RHS] = true
	case Store:
		s.removeIndexed(s.storeByLHS, removed.LHS, removed)
		affected[removed.LHS] = true
		affected[removed.RHS] = true
	}
	// Points-to sets are monotone except during explicit removal of
	// constraints (spec §3 invariants): a removal recomputes every
	// points-to set from scratch, the simplest sound response, since a
	// removed Alloc/Copy may invalidate sites that were only reachable
	// through it.
	s.rebuildFrom(affected)
}

func (s *Solver) removeCopyEdge(rhs, lhs string) {
	if set, ok := s.copyEdgeSet[rhs]; ok {
		delete(set, lhs)
	}
	list := s.copyEdges[rhs]
	for i, l := range list {
		if l == lhs {
			s.copyEdges[rhs] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

func (s *Solver) removeIndexed(index map[string][]*Constraint, key string, removed *Constraint) {
	list := index[key]
	for i, c := range list {
		if c.ID == removed.ID {
			index[key] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// rebuildFrom clears all points-to sets, copy edges and the worklist, then
// re-seeds them from the remaining Alloc and Copy constraints so the
// caller's subsequent drain recomputes a sound fixed point. The seed set is
// not consulted: state unrelated to the removal is discarded and
// recomputed as well.
func (s *Solver) rebuildFrom(seed map[string]bool) {
	s.pts = map[string]*Bitmap{}
	s.copyEdges = map[string][]string{}
	s.copyEdgeSet = map[string]map[string]bool{}
	s.worklist = nil
	s.queued = map[string]bool{}

	for _, c := range s.constraints {
		if c.Kind == Alloc {
			if s.bitmap(c.LHS).Insert(c.RHS) {
				s.enqueue(c.LHS)
			}
		}
	}
	for _, c := range s.constraints {
		if c.Kind == Copy {
			if s.addCopyEdge(c.RHS, c.LHS) && s.bitmap(c.RHS).Len() > 0 {
				s.enqueue(c.RHS)
			}
		}
	}
}

// sameConstraint matches by ID when the caller supplied one (as returned
// from AddConstraint), otherwise falls back to structural equality so
// callers can remove a constraint they built by hand without tracking IDs.
func sameConstraint(a, b Constraint) bool {
	if b.ID != 0 {
		return a.ID == b.ID
	}
	return a.Kind == b.Kind && a.LHS == b.LHS && a.RHS == b.RHS
}
