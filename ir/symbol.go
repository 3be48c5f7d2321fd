package ir

// SymbolTable maps a fully-qualified name to its owning node, built by
// scanning all nodes across a session's documents. Used by cross-file
// resolution (spec §3, §4.3).
type SymbolTable struct {
	byFQN map[string]*Node
}

// NewSymbolTable builds a symbol table from the given nodes. Later nodes
// with a duplicate FQN do not overwrite earlier ones, matching the
// first-occurrence merge policy used elsewhere in the kernel (e.g.
// linage.Merge in the teacher).
func NewSymbolTable(nodes []*Node) *SymbolTable {
	t := &SymbolTable{byFQN: make(map[string]*Node, len(nodes))}
	for _, n := range nodes {
		if n.FQN == "" {
			continue
		}
		if _, exists := t.byFQN[n.FQN]; !exists {
			t.byFQN[n.FQN] = n
		}
	}
	return t
}

// Lookup returns the node owning fqn, and whether it was found.
func (t *SymbolTable) Lookup(fqn string) (*Node, bool) {
	n, ok := t.byFQN[fqn]
	return n, ok
}

// Len reports the number of distinct fully-qualified names indexed.
func (t *SymbolTable) Len() int {
	return len(t.byFQN)
}

// Add registers a node, honoring the first-occurrence policy.
func (t *SymbolTable) Add(n *Node) {
	if n == nil || n.FQN == "" {
		return
	}
	if t.byFQN == nil {
		t.byFQN = make(map[string]*Node)
	}
	if _, exists := t.byFQN[n.FQN]; !exists {
		t.byFQN[n.FQN] = n
	}
}

// Remove drops fqn from the table, used during incremental updates.
func (t *SymbolTable) Remove(fqn string) {
	delete(t.byFQN, fqn)
}
