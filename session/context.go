// Package session wires the kernel packages (ir, pointsto, taint, clone,
// effect, typestate, impact, query, smt) into the orchestration surface a
// caller actually drives: a global cross-file context built from merged IR
// documents, incremental updates, and stage dispatch through the pipeline
// DAG (spec §4.1, §4.6, §6). Semantic extraction — turning source text into
// IR, CFGs, taint functions or points-to constraints — is an ingest
// collaborator's job; Session only consumes the result.
package session

import (
	"fmt"

	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/ir"
)

// GlobalContext is the merged, cross-file view of a session's documents:
// the symbol table, scope tree and two derived adjacency graphs (spec
// §3's "global context" used by cross-file resolution and impact
// analysis).
type GlobalContext struct {
	SymbolTable         *ir.SymbolTable
	Scopes              *ir.Tree
	CallGraph           graph.Adjacency
	FileDependencyGraph graph.Adjacency
}

// Delta describes an incremental change to the merged document set,
// mirroring pointsto.Update's add/remove/modify shape at the IR level
// (spec §4.1).
type Delta struct {
	AddedNodes    []*ir.Node
	RemovedNodes  []string // node IDs
	ModifiedNodes []*ir.Node
	AddedEdges    []*ir.Edge
	RemovedEdges  []*ir.Edge
}

// buildCallGraph derives a function/method call graph from EdgeCalls and
// EdgeInvokes edges, keyed by node ID (spec §3).
func buildCallGraph(nodes map[string]*ir.Node, edges []*ir.Edge) graph.Adjacency {
	g := graph.Adjacency{}
	for _, e := range edges {
		if e.Kind == ir.EdgeCalls || e.Kind == ir.EdgeInvokes {
			g.AddEdge(e.Source, e.Target)
		}
	}
	return g
}

// buildFileDependencyGraph derives a file-level dependency graph from
// EdgeImports edges, keyed by file path rather than node ID (spec §4.5's
// "file dependency graph" used by change-impact propagation).
func buildFileDependencyGraph(nodes map[string]*ir.Node, edges []*ir.Edge) graph.Adjacency {
	g := graph.Adjacency{}
	for _, e := range edges {
		if e.Kind != ir.EdgeImports {
			continue
		}
		src, srcOK := nodes[e.Source]
		dst, dstOK := nodes[e.Target]
		if !srcOK || !dstOK || src.File == dst.File {
			continue
		}
		g.AddEdge(src.File, dst.File)
	}
	return g
}

// buildGlobalContext merges documents into a GlobalContext, validating
// cross-document node-ID uniqueness (ir.Document.Validate only checks a
// single document).
func buildGlobalContext(docs []*ir.Document) (*GlobalContext, map[string]*ir.Node, error) {
	byID := map[string]*ir.Node{}
	var allNodes []*ir.Node
	var allEdges []*ir.Edge

	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, nil, err
		}
		for _, n := range doc.Nodes {
			if _, exists := byID[n.ID]; exists {
				return nil, nil, fmt.Errorf("session: duplicate node id %q across documents", n.ID)
			}
			byID[n.ID] = n
			allNodes = append(allNodes, n)
		}
		allEdges = append(allEdges, doc.Edges...)
	}

	scopes := ir.NewTree()
	ctx := &GlobalContext{
		SymbolTable:         ir.NewSymbolTable(allNodes),
		Scopes:              scopes,
		CallGraph:           buildCallGraph(byID, allEdges),
		FileDependencyGraph: buildFileDependencyGraph(byID, allEdges),
	}
	return ctx, byID, nil
}
