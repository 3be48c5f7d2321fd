package pointsto

// Solver is the Andersen-style inclusion-constraint worklist solver (spec
// §4.2). Variables are plain strings; callers apply context-sensitivity by
// keying variables with pointsto.Var(name, ContextKey(ctx)) before adding
// constraints.
type Solver struct {
	constraints []*Constraint
	nextID      int

	pts map[string]*Bitmap

	copyEdges   map[string][]string // rhs -> []lhs  (pts(lhs) gains pts(rhs))
	copyEdgeSet map[string]map[string]bool

	loadByRHS  map[string][]*Constraint
	storeByLHS map[string][]*Constraint

	worklist []string
	queued   map[string]bool

	version      int
	TimedOut     bool
}

// NewSolver creates an empty solver.
func NewSolver() *Solver {
	return &Solver{
		pts:         map[string]*Bitmap{},
		copyEdges:   map[string][]string{},
		copyEdgeSet: map[string]map[string]bool{},
		loadByRHS:   map[string][]*Constraint{},
		storeByLHS:  map[string][]*Constraint{},
		queued:      map[string]bool{},
	}
}

func (s *Solver) bitmap(v string) *Bitmap {
	b, ok := s.pts[v]
	if !ok {
		b = NewBitmap()
		s.pts[v] = b
	}
	return b
}

// AddConstraint registers a constraint and assigns it an ID.
func (s *Solver) AddConstraint(c Constraint) *Constraint {
	c.ID = s.nextID
	s.nextID++
	stored := c
	s.constraints = append(s.constraints, &stored)
	s.index(&stored)
	return &stored
}

func (s *Solver) index(c *Constraint) {
	switch c.Kind {
	case Load:
		s.loadByRHS[c.RHS] = append(s.loadByRHS[c.RHS], c)
	case Store:
		s.storeByLHS[c.LHS] = append(s.storeByLHS[c.LHS], c)
	}
}

func (s *Solver) enqueue(v string) {
	if s.queued[v] {
		return
	}
	s.queued[v] = true
	s.worklist = append(s.worklist, v)
}

func (s *Solver) addCopyEdge(rhs, lhs string) bool {
	if s.copyEdgeSet[rhs] == nil {
		s.copyEdgeSet[rhs] = map[string]bool{}
	}
	if s.copyEdgeSet[rhs][lhs] {
		return false
	}
	s.copyEdgeSet[rhs][lhs] = true
	s.copyEdges[rhs] = append(s.copyEdges[rhs], lhs)
	return true
}

// Solve runs the full worklist algorithm over every constraint registered
// so far. It is idempotent to call again after AddConstraint calls, though
// ApplyIncremental (incremental.go) is the recommended path for update-driven
// re-solves.
func (s *Solver) Solve() {
	for _, c := range s.constraints {
		switch c.Kind {
		case Alloc:
			if s.bitmap(c.LHS).Insert(c.RHS) {
				s.enqueue(c.LHS)
			}
		case Copy:
			if s.addCopyEdge(c.RHS, c.LHS) {
				if s.bitmap(c.RHS).Len() > 0 {
					s.enqueue(c.RHS)
				}
			}
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
}

func (s *Solver) propagate(v string) {
	vBitmap := s.bitmap(v)
	for _, lhs := range s.copyEdges[v] {
		if s.bitmap(lhs).UnionWith(vBitmap) {
			s.enqueue(lhs)
		}
	}
	for _, c := range s.loadByRHS[v] {
		for _, site := range vBitmap.Slice() {
			if s.addCopyEdge(site, c.LHS) {
				if s.bitmap(site).Len() > 0 {
					s.enqueue(site)
				}
			}
		}
	}
	for _, c := range s.storeByLHS[v] {
		for _, site := range vBitmap.Slice() {
			if s.addCopyEdge(c.RHS, site) {
				if s.bitmap(c.RHS).Len() > 0 {
					s.enqueue(c.RHS)
				}
			}
		}
	}
}

// PointsTo returns the allocation-site bitmap for a variable, never nil.
// An unknown variable yields an empty set, not an error (spec §4.2 error
// conditions).
func (s *Solver) PointsTo(v string) *Bitmap {
	if b, ok := s.pts[v]; ok {
		return b.Clone()
	}
	return NewBitmap()
}

// MayAlias reports whether a and b's points-to sets intersect. It is
// symmetric by construction (spec §8 invariant 3).
func (s *Solver) MayAlias(a, b string) bool {
	return s.PointsTo(a).Intersects(s.PointsTo(b))
}

// Version returns the monotone version number, bumped on every full or
// incremental solve.
func (s *Solver) Version() int {
	return s.version
}
