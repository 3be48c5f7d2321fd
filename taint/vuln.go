package taint

import "fmt"

// Severity classifies a vulnerability finding's impact.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityBySink gives a default severity per well-known sink name; an
// unrecognized sink defaults to SeverityMedium. A full implementation
// would source this from a configurable sink catalog (spec §9).
var severityBySink = map[string]Severity{
	"sql_exec":      SeverityCritical,
	"shell_exec":    SeverityCritical,
	"file_write":    SeverityHigh,
	"http_response": SeverityMedium,
	returnSinkName:  SeverityLow,
}

// Vulnerability is a reported source-to-sink taint flow.
type Vulnerability struct {
	FunctionID    string
	Sink          string
	Variable      Identifier
	Sources       []Identifier
	Severity      Severity
	Confidence    float64
	Path          []string // block IDs, entry first, sink block last
	PathTruncated bool
}

// maxPathNodes bounds backward parent-map reconstruction so a parent-map
// cycle (which should not occur but is not structurally impossible if a
// caller hand-builds one) cannot loop forever.
const maxPathNodes = 1000

// reconstructPath walks parent backward from block to the CFG entry,
// breaking after maxPathNodes hops and reporting truncation.
func reconstructPath(entry, block string, parent map[string]string) ([]string, bool) {
	var reversed []string
	cur := block
	visited := map[string]bool{}
	truncated := false
	for {
		reversed = append(reversed, cur)
		visited[cur] = true
		if cur == entry {
			break
		}
		if len(reversed) >= maxPathNodes {
			truncated = true
			break
		}
		next, ok := parent[cur]
		if !ok || visited[next] {
			break
		}
		cur = next
	}
	path := make([]string, len(reversed))
	for i, b := range reversed {
		path[len(reversed)-1-i] = b
	}
	return path, truncated
}

// Report runs PropagateFunctionDetailed and assembles Vulnerability records
// for every non-return sink hit, with a reconstructed source-to-sink path.
// Findings for the reserved return-sink name are summary-internal and are
// not reported as vulnerabilities here (use ComputeSummaries for those).
func Report(functionID string, cfg *CFG, config Config, sources []Identifier) []Vulnerability {
	findings, parent := PropagateFunctionDetailed(cfg, config, sources)

	out := make([]Vulnerability, 0, len(findings))
	for _, f := range findings {
		if f.Op.SinkName == returnSinkName {
			continue
		}
		path, truncated := reconstructPath(cfg.Entry, f.Block, parent)
		severity, ok := severityBySink[f.Op.SinkName]
		if !ok {
			severity = SeverityMedium
		}
		confidence := 1.0
		if len(f.Conditions) == 0 && config.UseSMTPruning {
			// No path condition survived to constrain this flow: still a
			// real finding, but slightly less specific than a
			// condition-pruned one.
			confidence = 0.95
		}
		out = append(out, Vulnerability{
			FunctionID:    functionID,
			Sink:          f.Op.SinkName,
			Variable:      f.Tainted,
			Sources:       sources,
			Severity:      severity,
			Confidence:    confidence,
			Path:          path,
			PathTruncated: truncated,
		})
	}
	return out
}

// String renders a vulnerability as a short, log-friendly summary line.
func (v Vulnerability) String() string {
	return fmt.Sprintf("%s: %s reaches sink %q (severity=%s, confidence=%.2f, path=%v)",
		v.FunctionID, v.Variable.Key(), v.Sink, v.Severity, v.Confidence, v.Path)
}
