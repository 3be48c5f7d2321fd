// Package gosrc is an optional Go-source-to-IR adapter: it parses .go files
// with the same tree-sitter grammar inspector/golang.TreeSitterInspector
// uses, and emits the generic ir.Node/ir.Edge shape the analysis kernel
// consumes. It sits outside the kernel's import graph (SPEC_FULL.md's
// MODULE LAYOUT): nothing in ir, session, taint, pointsto, clone, effect,
// typestate, impact, query, pipeline, smt, graph, dataflow, lattice,
// refinement, or config imports this package.
package gosrc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/viant/codegraph/internal/ingest/project"
	"github.com/viant/codegraph/ir"
)

// pendingCall is a call site whose callee could not be resolved within the
// file it was found in; LoadDirectory resolves these once every file's
// nodes are known.
type pendingCall struct {
	callerID   string
	calleeName string
	line       int
}

// fileResult is one file's parse output, before cross-file call resolution.
type fileResult struct {
	nodes   []*ir.Node
	edges   []*ir.Edge
	pending []pendingCall
}

// LoadDirectory walks dir for .go files (skipping _test.go when skipTests
// is set) and merges every file's parse into a single ir.Document, so that
// cross-file call edges can reference nodes the per-file parse alone
// cannot see (spec §3's single-document node-ID scope).
func LoadDirectory(ctx context.Context, dir string, skipTests bool) (*ir.Document, error) {
	proj, err := project.Detect(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("gosrc: detecting project for %s: %w", dir, err)
	}

	var results []fileResult
	err = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		if skipTests && strings.HasSuffix(path, "_test.go") {
			return nil
		}
		src, rerr := os.ReadFile(path)
		if rerr != nil {
			return fmt.Errorf("gosrc: reading %s: %w", path, rerr)
		}
		importPath := project.ImportPathFor(proj, path)
		res, perr := parseFile(src, path, importPath)
		if perr != nil {
			return fmt.Errorf("gosrc: parsing %s: %w", path, perr)
		}
		results = append(results, *res)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return mergeResults(dir, results), nil
}

// ParseFile parses a single file's source without resolving cross-file
// calls, useful for incremental re-ingestion of one changed file (the
// caller is responsible for merging the returned nodes/edges into the
// session's existing document and re-resolving calls, mirroring
// session.Delta's shape).
func ParseFile(src []byte, filePath, importPath string) (*ir.Document, error) {
	res, err := parseFile(src, filePath, importPath)
	if err != nil {
		return nil, err
	}
	merged := mergeResults(filePath, []fileResult{*res})
	return merged, nil
}

func mergeResults(rootPath string, results []fileResult) *ir.Document {
	doc := &ir.Document{FilePath: rootPath}
	byFQN := map[string]string{} // FQN -> node ID, for call resolution
	for _, r := range results {
		doc.Nodes = append(doc.Nodes, r.nodes...)
		doc.Edges = append(doc.Edges, r.edges...)
		for _, n := range r.nodes {
			if n.FQN != "" {
				byFQN[n.FQN] = n.ID
			}
		}
	}
	for _, r := range results {
		for _, p := range r.pending {
			targetID, ok := resolveCallee(p.calleeName, byFQN)
			if !ok {
				continue
			}
			doc.Edges = append(doc.Edges, &ir.Edge{
				Source:   p.callerID,
				Target:   targetID,
				Kind:     ir.EdgeCalls,
				Metadata: map[string]string{"line": fmt.Sprintf("%d", p.line)},
			})
		}
	}
	return doc
}

// resolveCallee matches a bare or selector callee name ("Foo" or
// "recv.Foo") against the FQN index by suffix, same convention
// taint.ResolveCallee uses for "external.X" references.
func resolveCallee(name string, byFQN map[string]string) (string, bool) {
	if id, ok := byFQN[name]; ok {
		return id, true
	}
	suffix := name
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		suffix = name[idx+1:]
	}
	for fqn, id := range byFQN {
		if strings.HasSuffix(fqn, "."+suffix) {
			return id, true
		}
	}
	return "", false
}

func parseFile(src []byte, filePath, importPath string) (*fileResult, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	root := tree.RootNode()
	comments := commentIndex(root, src)

	res := &fileResult{}
	fileNode := &ir.Node{
		ID:       filePath + "#file",
		Kind:     ir.KindBlock,
		FQN:      importPath,
		File:     filePath,
		Language: "go",
		Span:     spanOf(root),
	}
	res.nodes = append(res.nodes, fileNode)

	types := map[string]*ir.Node{} // type name -> node, for attaching methods' receivers

	for _, typeNode := range queryCaptures(root, "(type_declaration) @t") {
		for i := uint32(0); i < typeNode.NamedChildCount(); i++ {
			spec := typeNode.NamedChild(int(i))
			if spec.Type() != "type_spec" {
				continue
			}
			nameNode := spec.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := nameNode.Content(src)
			n := &ir.Node{
				ID:        filePath + "#type#" + name,
				Kind:      ir.KindClass,
				FQN:       importPath + "." + name,
				File:      filePath,
				Language:  "go",
				ParentID:  fileNode.ID,
				Span:      spanOf(spec),
				Docstring: leadingComment(typeNode, comments),
				Modifiers: map[string]bool{"exported": isExported(name)},
			}
			types[name] = n
			res.nodes = append(res.nodes, n)
		}
	}

	for i, impNode := range queryCaptures(root, "(import_declaration) @i") {
		for _, path := range importPaths(impNode, src) {
			n := &ir.Node{
				ID:   fmt.Sprintf("%s#import#%d#%s", filePath, i, path),
				Kind: ir.KindImport,
				FQN:  path,
				File: "import:" + path,
			}
			res.nodes = append(res.nodes, n)
			res.edges = append(res.edges, &ir.Edge{Source: fileNode.ID, Target: n.ID, Kind: ir.EdgeImports})
		}
	}

	for _, funcNode := range queryCaptures(root, "(function_declaration) @f") {
		n, calls := parseFunction(funcNode, src, filePath, importPath, fileNode.ID, "", comments)
		if n == nil {
			continue
		}
		res.nodes = append(res.nodes, n)
		res.pending = append(res.pending, calls...)
	}

	for _, methodNode := range queryCaptures(root, "(method_declaration) @m") {
		receiver := receiverType(methodNode, src)
		parentID := fileNode.ID
		if t, ok := types[receiver]; ok {
			parentID = t.ID
		}
		n, calls := parseFunction(methodNode, src, filePath, importPath, parentID, receiver, comments)
		if n == nil {
			continue
		}
		n.Kind = ir.KindMethod
		res.nodes = append(res.nodes, n)
		res.pending = append(res.pending, calls...)
	}

	return res, nil
}

func parseFunction(node *sitter.Node, src []byte, filePath, importPath, parentID, receiver string, comments []commentSpan) (*ir.Node, []pendingCall) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil
	}
	name := nameNode.Content(src)
	fqn := importPath + "." + name
	id := filePath + "#func#" + name
	if receiver != "" {
		fqn = importPath + "." + strings.TrimPrefix(receiver, "*") + "." + name
		id = filePath + "#method#" + receiver + "#" + name
	}

	n := &ir.Node{
		ID:         id,
		Kind:       ir.KindFunction,
		FQN:        fqn,
		File:       filePath,
		Language:   "go",
		ParentID:   parentID,
		Span:       spanOf(node),
		Docstring:  leadingComment(node, comments),
		Params:     paramNames(node, src),
		ReturnType: resultType(node, src),
		Modifiers:  map[string]bool{"exported": isExported(name)},
	}

	var calls []pendingCall
	bodyNode := node.ChildByFieldName("body")
	if bodyNode != nil {
		for _, callNode := range queryCaptures(bodyNode, "(call_expression) @c") {
			callee := calleeName(callNode, src)
			if callee == "" {
				continue
			}
			calls = append(calls, pendingCall{
				callerID:   id,
				calleeName: callee,
				line:       int(callNode.StartPoint().Row) + 1,
			})
		}
	}
	return n, calls
}

func calleeName(callNode *sitter.Node, src []byte) string {
	fn := callNode.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	return fn.Content(src)
}

func paramNames(node *sitter.Node, src []byte) []string {
	paramsNode := node.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}
	var names []string
	for i := uint32(0); i < paramsNode.NamedChildCount(); i++ {
		p := paramsNode.NamedChild(int(i))
		if p.Type() != "parameter_declaration" {
			continue
		}
		if nameNode := p.ChildByFieldName("name"); nameNode != nil {
			names = append(names, nameNode.Content(src))
		}
	}
	return names
}

func resultType(node *sitter.Node, src []byte) string {
	result := node.ChildByFieldName("result")
	if result == nil {
		return ""
	}
	return result.Content(src)
}

func receiverType(methodNode *sitter.Node, src []byte) string {
	receiverNode := methodNode.ChildByFieldName("receiver")
	if receiverNode == nil {
		return ""
	}
	if t := receiverNode.ChildByFieldName("type"); t != nil {
		return strings.TrimPrefix(t.Content(src), "*")
	}
	for i := uint32(0); i < receiverNode.NamedChildCount(); i++ {
		child := receiverNode.NamedChild(int(i))
		if child.Type() == "parameter_declaration" {
			if t := child.ChildByFieldName("type"); t != nil {
				return strings.TrimPrefix(t.Content(src), "*")
			}
		}
	}
	return ""
}

func importPaths(importNode *sitter.Node, src []byte) []string {
	var paths []string
	for i := uint32(0); i < importNode.NamedChildCount(); i++ {
		child := importNode.NamedChild(int(i))
		if child.Type() != "import_spec" {
			continue
		}
		count := child.NamedChildCount()
		if count == 0 {
			continue
		}
		// The import path is always the last named child: a bare
		// "interpreted_string_literal", or the second child after a named
		// import's package_identifier alias.
		pathNode := child.NamedChild(int(count - 1))
		if pathNode.Type() != "interpreted_string_literal" {
			continue
		}
		paths = append(paths, strings.Trim(pathNode.Content(src), `"`))
	}
	return paths
}

// commentSpan is one top-level comment node's line range and text.
type commentSpan struct {
	startRow int
	endRow   int
	text     string
}

// commentIndex collects every comment node in the file once, sorted by
// position, so leadingComment can look up a declaration's doc comment
// without needing sibling-navigation (go-tree-sitter exposes byte/point
// ranges and Content reliably; this avoids depending on parent/sibling
// walks this package has no other grounded use for).
func commentIndex(root *sitter.Node, src []byte) []commentSpan {
	var spans []commentSpan
	for _, n := range queryCaptures(root, "(comment) @c") {
		spans = append(spans, commentSpan{
			startRow: int(n.StartPoint().Row),
			endRow:   int(n.EndPoint().Row),
			text:     n.Content(src),
		})
	}
	return spans
}

// leadingComment returns the single comment node that ends on the line
// directly preceding decl, trimmed of comment punctuation; earlier comment
// nodes in a contiguous block above it are not included. It stands in for
// the doc-comment association go/ast does automatically, which tree-sitter
// leaves to the caller.
func leadingComment(decl *sitter.Node, comments []commentSpan) string {
	declRow := int(decl.StartPoint().Row)
	var best *commentSpan
	for i := range comments {
		c := &comments[i]
		if c.endRow == declRow-1 && (best == nil || c.endRow > best.endRow) {
			best = c
		}
	}
	if best == nil {
		return ""
	}
	text := best.text
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	return strings.TrimSpace(text)
}

func spanOf(n *sitter.Node) ir.Span {
	start := n.StartPoint()
	end := n.EndPoint()
	return ir.Span{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
	}
}

func isExported(name string) bool {
	return name != "" && strings.ToUpper(name[:1]) == name[:1]
}

// queryCaptures runs a single-capture tree-sitter query against root and
// returns every captured node, the same cursor/match loop
// inspector/golang's TreeSitterInspector uses for each declaration kind.
func queryCaptures(root *sitter.Node, pattern string) []*sitter.Node {
	query := sitter.NewQuery([]byte(pattern), golang.GetLanguage())
	cursor := sitter.NewQueryCursor()
	cursor.Exec(query, root)

	var out []*sitter.Node
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			out = append(out, capture.Node)
		}
	}
	return out
}
