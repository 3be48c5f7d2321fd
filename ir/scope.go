package ir

// ScopeKind distinguishes the granularity a scope represents.
type ScopeKind string

const (
	ScopeModule   ScopeKind = "module"
	ScopeClass    ScopeKind = "class"
	ScopeFunction ScopeKind = "function"
	ScopeBlock    ScopeKind = "block"
)

// Scope is a node in the scope tree. Each scope carries an ordered parent
// chain and a mutable, append-only alias table used for LEGB-style
// resolution (spec §3).
type Scope struct {
	ID      string
	Kind    ScopeKind
	Name    string
	Parent  *Scope
	Aliases map[string]string // local name -> fully-qualified name
}

// NewScope creates a scope nested under parent (nil for a root scope).
func NewScope(id string, kind ScopeKind, name string, parent *Scope) *Scope {
	return &Scope{ID: id, Kind: kind, Name: name, Parent: parent, Aliases: map[string]string{}}
}

// Bind appends a local-name -> fully-qualified-name alias. Scopes are
// append-only within a single analysis pass; rebinding the same local name
// overwrites its target, matching ordinary LEGB shadowing semantics, but
// never removes an entry.
func (s *Scope) Bind(local, fqn string) {
	if s.Aliases == nil {
		s.Aliases = map[string]string{}
	}
	s.Aliases[local] = fqn
}

// Resolve walks the parent chain (LEGB order: local, enclosing, global)
// looking for local. It returns the bound fully-qualified name and whether
// it was found.
func (s *Scope) Resolve(local string) (string, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if fqn, ok := cur.Aliases[local]; ok {
			return fqn, true
		}
	}
	return "", false
}

// Chain returns the ordered parent chain starting at s and ending at the
// outermost (module) scope.
func (s *Scope) Chain() []*Scope {
	var chain []*Scope
	for cur := s; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	return chain
}

// Tree owns a forest of scope roots for a session, keyed by scope ID for
// fast lookup regardless of nesting depth.
type Tree struct {
	byID  map[string]*Scope
	roots []*Scope
}

// NewTree creates an empty scope tree.
func NewTree() *Tree {
	return &Tree{byID: map[string]*Scope{}}
}

// Add registers a scope in the tree; if it has no parent it becomes a root.
func (t *Tree) Add(s *Scope) {
	t.byID[s.ID] = s
	if s.Parent == nil {
		t.roots = append(t.roots, s)
	}
}

// Get returns the scope with the given ID, if any.
func (t *Tree) Get(id string) (*Scope, bool) {
	s, ok := t.byID[id]
	return s, ok
}

// Roots returns the module-level scope roots.
func (t *Tree) Roots() []*Scope {
	return t.roots
}
