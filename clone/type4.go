package clone

import "strings"

// PDGNodeKind enumerates the simplified program-dependence-graph node
// kinds used by Type-4 semantic clone detection (spec §4.7).
type PDGNodeKind string

const (
	PDGFunction    PDGNodeKind = "function"
	PDGVariable    PDGNodeKind = "variable"
	PDGLiteral     PDGNodeKind = "literal"
	PDGBinaryOp    PDGNodeKind = "binary-op"
	PDGUnaryOp     PDGNodeKind = "unary-op"
	PDGCall        PDGNodeKind = "call"
	PDGReturn      PDGNodeKind = "return"
	PDGAssignment  PDGNodeKind = "assignment"
	PDGControlFlow PDGNodeKind = "control-flow"
)

// PDGEdgeKind enumerates the simplified PDG edge kinds.
type PDGEdgeKind string

const (
	PDGDataDep    PDGEdgeKind = "data-dep"
	PDGControlDep PDGEdgeKind = "control-dep"
	PDGCallEdge   PDGEdgeKind = "call"
)

// PDGNode is one node of a simplified per-fragment PDG.
type PDGNode struct {
	Kind    PDGNodeKind
	Operand string // e.g. the variable name, for data-dep linking
}

// PDGEdge is one directed edge between two node indices.
type PDGEdge struct {
	From, To int
	Kind     PDGEdgeKind
}

// PDG is the simplified program-dependence-graph built per fragment.
type PDG struct {
	Nodes []PDGNode
	Edges []PDGEdge
}

var binaryOps = []string{"+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "&&", "||"}

func classifyStatement(stmtTokens []string) PDGNodeKind {
	if len(stmtTokens) == 0 {
		return PDGLiteral
	}
	head := stmtTokens[0]
	switch head {
	case "return":
		return PDGReturn
	case "if", "for", "while", "switch", "else":
		return PDGControlFlow
	case "func", "function", "def":
		return PDGFunction
	}
	for _, tok := range stmtTokens {
		if tok == "=" {
			return PDGAssignment
		}
	}
	for i, tok := range stmtTokens {
		if tok == "(" && i > 0 && stmtTokens[i-1] == "ID" {
			return PDGCall
		}
	}
	for _, tok := range stmtTokens {
		for _, op := range binaryOps {
			if tok == op {
				return PDGBinaryOp
			}
		}
	}
	if len(stmtTokens) >= 2 && (stmtTokens[0] == "!" || stmtTokens[0] == "-") {
		return PDGUnaryOp
	}
	if stmtTokens[0] == "NUM" || stmtTokens[0] == "STR" {
		return PDGLiteral
	}
	return PDGVariable
}

// firstOperand returns the first whitespace-separated field of a statement,
// used as a cheap stand-in for the assigned/read variable when linking
// data-dep edges between statements.
func firstOperand(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// BuildPDG constructs a simplified per-fragment PDG from its statement
// list: one node per statement (classified heuristically), control-dep
// edges from a control-flow node to the statements that follow it until
// the next control-flow node, a data-dep edge to each statement from the
// most recent earlier statement with the same leading operand, and a call
// edge from the preceding statement to each call node.
func BuildPDG(raw string) PDG {
	rawStmts := strings.Split(raw, "\n")
	var pdg PDG
	lastControl := -1
	var lastOperandIdx = map[string]int{}

	for _, line := range rawStmts {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens := NormalizeTokens(Tokenize(line))
		kind := classifyStatement(tokens)
		idx := len(pdg.Nodes)
		operand := firstOperand(strings.TrimSpace(line))
		pdg.Nodes = append(pdg.Nodes, PDGNode{Kind: kind, Operand: operand})

		if kind == PDGControlFlow {
			lastControl = idx
		} else if lastControl >= 0 {
			pdg.Edges = append(pdg.Edges, PDGEdge{From: lastControl, To: idx, Kind: PDGControlDep})
		}

		if operand != "" {
			if prev, ok := lastOperandIdx[operand]; ok {
				pdg.Edges = append(pdg.Edges, PDGEdge{From: prev, To: idx, Kind: PDGDataDep})
			}
			lastOperandIdx[operand] = idx
		}

		if kind == PDGCall && idx > 0 {
			pdg.Edges = append(pdg.Edges, PDGEdge{From: idx - 1, To: idx, Kind: PDGCallEdge})
		}
	}
	return pdg
}

// histogram counts occurrences of a comparable key.
func histogram[K comparable](keys []K) map[K]int {
	h := map[K]int{}
	for _, k := range keys {
		h[k]++
	}
	return h
}

// jaccardOfHistograms computes weighted Jaccard similarity between two
// frequency histograms: sum(min(a,b)) / sum(max(a,b)) over the union of
// keys.
func jaccardOfHistograms[K comparable](a, b map[K]int) float64 {
	keys := map[K]bool{}
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}
	if len(keys) == 0 {
		return 1.0
	}
	var minSum, maxSum int
	for k := range keys {
		av, bv := a[k], b[k]
		if av < bv {
			minSum += av
			maxSum += bv
		} else {
			minSum += bv
			maxSum += av
		}
	}
	if maxSum == 0 {
		return 1.0
	}
	return float64(minSum) / float64(maxSum)
}

// twoNodePatterns extracts the multiset of (from-kind, to-kind) pairs
// along the PDG's edges, the "2-node pattern" histogram input.
func twoNodePatterns(pdg PDG) []string {
	patterns := make([]string, 0, len(pdg.Edges))
	for _, e := range pdg.Edges {
		patterns = append(patterns, string(pdg.Nodes[e.From].Kind)+"->"+string(pdg.Nodes[e.To].Kind))
	}
	return patterns
}

// SemanticWeights are the three histogram weights for Type-4 similarity,
// defaulting to 0.4 node-kind / 0.3 edge-kind / 0.3 2-node-pattern and
// required to sum to 1.0 (spec §4.7).
type SemanticWeights struct {
	NodeKind    float64
	EdgeKind    float64
	TwoNodePattern float64
}

// DefaultSemanticWeights returns the spec-mandated default weights.
func DefaultSemanticWeights() SemanticWeights {
	return SemanticWeights{NodeKind: 0.4, EdgeKind: 0.3, TwoNodePattern: 0.3}
}

// SemanticSimilarity computes the weighted Jaccard similarity between two
// PDGs from their node-kind, edge-kind and 2-node-pattern histograms.
func SemanticSimilarity(a, b PDG, w SemanticWeights) float64 {
	nodeKindsA := make([]PDGNodeKind, len(a.Nodes))
	for i, n := range a.Nodes {
		nodeKindsA[i] = n.Kind
	}
	nodeKindsB := make([]PDGNodeKind, len(b.Nodes))
	for i, n := range b.Nodes {
		nodeKindsB[i] = n.Kind
	}
	edgeKindsA := make([]PDGEdgeKind, len(a.Edges))
	for i, e := range a.Edges {
		edgeKindsA[i] = e.Kind
	}
	edgeKindsB := make([]PDGEdgeKind, len(b.Edges))
	for i, e := range b.Edges {
		edgeKindsB[i] = e.Kind
	}

	nodeSim := jaccardOfHistograms(histogram(nodeKindsA), histogram(nodeKindsB))
	edgeSim := jaccardOfHistograms(histogram(edgeKindsA), histogram(edgeKindsB))
	patternSim := jaccardOfHistograms(histogram(twoNodePatterns(a)), histogram(twoNodePatterns(b)))

	return w.NodeKind*nodeSim + w.EdgeKind*edgeSim + w.TwoNodePattern*patternSim
}

// Type4Config tunes Type-4 semantic-clone detection.
type Type4Config struct {
	MinTokens  int
	MinLOC     int
	Weights    SemanticWeights
	MinSimilarity float64 // spec §9: treat >= 0.6 as "candidate"
}

// DefaultType4Config returns the spec-recommended default configuration.
func DefaultType4Config() Type4Config {
	return Type4Config{Weights: DefaultSemanticWeights(), MinSimilarity: 0.6}
}

// DetectType4 finds semantic clones via simplified-PDG weighted Jaccard
// similarity. Reported similarities are candidates, not proofs (spec §9).
func DetectType4(fragments []Fragment, cfg Type4Config) []Pair {
	type entry struct {
		frag Fragment
		pdg  PDG
	}
	entries := make([]entry, 0, len(fragments))
	for _, f := range fragments {
		if !f.MeetsThreshold(cfg.MinTokens, cfg.MinLOC) {
			continue
		}
		entries = append(entries, entry{frag: f, pdg: BuildPDG(f.Raw)})
	}

	var pairs []Pair
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			sim := SemanticSimilarity(entries[i].pdg, entries[j].pdg, cfg.Weights)
			if sim < cfg.MinSimilarity {
				continue
			}
			pairs = append(pairs, Pair{
				A: entries[i].frag, B: entries[j].frag, Class: 4,
				Metrics: Metrics{Similarity: sim, SemanticSimilarity: sim},
				Info:    DetectionInfo{Algorithm: "type4-semantic-pdg-jaccard", Confidence: sim},
			})
		}
	}
	return pairs
}
