package taint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/smt"
)

// buildGuardedSinkCFG models spec §8 scenario 3:
//
//	x = source()
//	if x > 10 {
//	    if x < 5 {
//	        sink(x)   // unreachable: x > 10 and x < 5 never both hold
//	    }
//	}
func buildGuardedSinkCFG() *CFG {
	return &CFG{
		FunctionID: "f",
		Entry:      "entry",
		Blocks: map[string]*Block{
			"entry": {
				ID:  "entry",
				Ops: []Op{{Kind: OpSource, Dst: WholeVariable("x")}},
				Successors: []Successor{
					{Block: "outer", Cond: &PathCondition{Variable: "x", Op: ">", Value: "10"}},
					{Block: "exit"},
				},
			},
			"outer": {
				ID: "outer",
				Successors: []Successor{
					{Block: "inner", Cond: &PathCondition{Variable: "x", Op: "<", Value: "5"}},
					{Block: "exit"},
				},
			},
			"inner": {
				ID:  "inner",
				Ops: []Op{{Kind: OpSink, Dst: WholeVariable("x"), SinkName: "sql_exec"}},
				Successors: []Successor{
					{Block: "exit"},
				},
			},
			"exit": {ID: "exit"},
		},
	}
}

func TestPropagateFunctionWithoutSMTPruningReportsInfeasiblePath(t *testing.T) {
	cfg := buildGuardedSinkCFG()
	findings := PropagateFunction(cfg, Config{MaxDepth: 100}, nil)
	require.Len(t, findings, 1, "without SMT pruning the contradictory path is still explored")
}

func TestPropagateFunctionWithSMTPruningEliminatesInfeasiblePath(t *testing.T) {
	cfg := buildGuardedSinkCFG()
	config := Config{MaxDepth: 100, UseSMTPruning: true, Backend: smt.NewMockBackend()}
	findings := PropagateFunction(cfg, config, nil)
	require.Empty(t, findings, "x>10 and x<5 can never both hold, so the sink is unreachable")
}

func TestSanitizeUntaintsOnlyItsOwnIdentifier(t *testing.T) {
	cfg := &CFG{
		FunctionID: "g",
		Entry:      "entry",
		Blocks: map[string]*Block{
			"entry": {
				ID: "entry",
				Ops: []Op{
					{Kind: OpSource, Dst: WholeVariable("req")},
					{Kind: OpAssign, Dst: Field("req", "body"), Src: WholeVariable("req")},
					{Kind: OpSanitize, Dst: Field("req", "body")},
					{Kind: OpSink, Dst: Field("req", "body"), SinkName: "http_response"},
					{Kind: OpSink, Dst: WholeVariable("req"), SinkName: "shell_exec"},
				},
			},
		},
	}
	findings := PropagateFunction(cfg, DefaultConfig(), nil)
	require.Len(t, findings, 1)
	require.Equal(t, "shell_exec", findings[0].Op.SinkName)
}

func TestMergeAtJoinUnionsTaintAndIntersectsConditions(t *testing.T) {
	a := NewState()
	a.Taint(WholeVariable("x"))
	a.Conditions = []PathCondition{{Variable: "y", Op: ">", Value: "0"}}

	b := NewState()
	b.Taint(WholeVariable("z"))
	b.Conditions = nil

	merged := MergeAtJoin(a, b)
	require.True(t, merged.IsTainted(WholeVariable("x")))
	require.True(t, merged.IsTainted(WholeVariable("z")))
	require.Empty(t, merged.Conditions, "condition present on only one incoming path does not survive the merge")
}

func TestResolveCalleeMatchesExternalSuffix(t *testing.T) {
	known := map[string]bool{"pkg.Helper": true, "other:Thing": true}

	resolved, ok := ResolveCallee("external.Helper", known)
	require.True(t, ok)
	require.Equal(t, "pkg.Helper", resolved)

	resolved, ok = ResolveCallee("external.Thing", known)
	require.True(t, ok)
	require.Equal(t, "other:Thing", resolved)

	_, ok = ResolveCallee("external.Missing", known)
	require.False(t, ok)
}

// buildReturnTaintingFunctions builds two functions, "a" calling "b", where
// only "b" has an explicit source reaching its return.
func buildReturnTaintingFunctions() map[string]*Function {
	return map[string]*Function{
		"a": {
			ID: "a",
			CFG: &CFG{
				FunctionID: "a",
				Entry:      "entry",
				Blocks: map[string]*Block{
					"entry": {
						ID: "entry",
						Ops: []Op{
							{Kind: OpCall, Dst: WholeVariable("r"), Callee: "b"},
							{Kind: OpSink, Dst: WholeVariable("r"), SinkName: returnSinkName},
						},
					},
				},
			},
		},
		"b": {
			ID: "b",
			CFG: &CFG{
				FunctionID: "b",
				Entry:      "entry",
				Blocks: map[string]*Block{
					"entry": {
						ID: "entry",
						Ops: []Op{
							{Kind: OpSource, Dst: WholeVariable("v")},
							{Kind: OpSink, Dst: WholeVariable("v"), SinkName: returnSinkName},
						},
					},
				},
			},
			ExplicitSources: nil,
		},
	}
}

func TestComputeSummariesPropagatesReturnTaintFromCallee(t *testing.T) {
	functions := buildReturnTaintingFunctions()
	callGraph := graph.Adjacency{"a": {"b"}}

	summaries := ComputeSummaries(functions, callGraph, DefaultConfig())

	require.True(t, summaries["b"].ReturnTainted)
	require.Equal(t, 1.0, summaries["b"].Confidence)

	require.True(t, summaries["a"].ReturnTainted)
	require.Equal(t, inheritedConfidence, summaries["a"].Confidence,
		"a's return is only tainted because b's is: inherited, conservative confidence")
}

func TestAffectedBySCCChangeMarksWholeComponentAndOneHopCallers(t *testing.T) {
	// A <-> B mutually recursive, C calls A, D is unrelated.
	callGraph := graph.Adjacency{}
	callGraph.AddEdge("A", "B")
	callGraph.AddEdge("B", "A")
	callGraph.AddEdge("C", "A")

	affected := AffectedBySCCChange(callGraph, []string{"A", "B", "C", "D"}, []string{"A"})

	set := map[string]bool{}
	for _, id := range affected {
		set[id] = true
	}
	require.True(t, set["A"])
	require.True(t, set["B"], "mutual recursion: a change to A affects B too")
	require.True(t, set["C"], "C calls into the changed component")
	require.False(t, set["D"], "D is unrelated to the changed component")
}

func TestReportReconstructsSourceToSinkPath(t *testing.T) {
	cfg := &CFG{
		FunctionID: "h",
		Entry:      "entry",
		Blocks: map[string]*Block{
			"entry": {
				ID:         "entry",
				Ops:        []Op{{Kind: OpSource, Dst: WholeVariable("x")}},
				Successors: []Successor{{Block: "mid"}},
			},
			"mid": {
				ID:         "mid",
				Successors: []Successor{{Block: "sink"}},
			},
			"sink": {
				ID:  "sink",
				Ops: []Op{{Kind: OpSink, Dst: WholeVariable("x"), SinkName: "sql_exec"}},
			},
		},
	}

	vulns := Report("h", cfg, DefaultConfig(), nil)
	require.Len(t, vulns, 1)
	v := vulns[0]
	require.Equal(t, SeverityCritical, v.Severity)
	require.Equal(t, []string{"entry", "mid", "sink"}, v.Path)
	require.False(t, v.PathTruncated)
}

func TestReportExcludesReturnSinkFindings(t *testing.T) {
	cfg := &CFG{
		FunctionID: "ret",
		Entry:      "entry",
		Blocks: map[string]*Block{
			"entry": {
				ID: "entry",
				Ops: []Op{
					{Kind: OpSource, Dst: WholeVariable("x")},
					{Kind: OpSink, Dst: WholeVariable("x"), SinkName: returnSinkName},
				},
			},
		},
	}
	vulns := Report("ret", cfg, DefaultConfig(), nil)
	require.Empty(t, vulns, "return-sink findings feed summaries, not the vulnerability report")
}
