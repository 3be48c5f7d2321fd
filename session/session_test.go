package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viant/codegraph/clone"
	"github.com/viant/codegraph/effect"
	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/ir"
	"github.com/viant/codegraph/pipeline"
	"github.com/viant/codegraph/pointsto"
	"github.com/viant/codegraph/query"
	"github.com/viant/codegraph/taint"
	"github.com/viant/codegraph/typestate"
)

func sampleDocument() *ir.Document {
	return &ir.Document{
		FilePath: "pkg/foo.go",
		Nodes: []*ir.Node{
			{ID: "n1", Kind: ir.KindFunction, FQN: "pkg.Foo", File: "pkg/foo.go", Span: ir.Span{StartLine: 1, EndLine: 5}},
			{ID: "n2", Kind: ir.KindFunction, FQN: "pkg.Bar", File: "pkg/bar.go", Span: ir.Span{StartLine: 1, EndLine: 5}},
		},
		Edges: []*ir.Edge{
			{Source: "n1", Target: "n2", Kind: ir.EdgeCalls},
		},
	}
}

func TestNewSessionBuildsGlobalContext(t *testing.T) {
	s, err := NewSession(Inputs{Documents: []*ir.Document{sampleDocument()}})
	require.NoError(t, err)
	ctx := s.BuildGlobalContext()
	require.Equal(t, 2, ctx.SymbolTable.Len())
	require.Contains(t, ctx.CallGraph["n1"], "n2")
}

func TestNewSessionRejectsDuplicateNodeIDsAcrossDocuments(t *testing.T) {
	docA := sampleDocument()
	docB := &ir.Document{FilePath: "pkg/dup.go", Nodes: []*ir.Node{{ID: "n1", FQN: "pkg.Dup"}}}
	_, err := NewSession(Inputs{Documents: []*ir.Document{docA, docB}})
	require.Error(t, err)
}

func TestUpdateReturnsAffectedFilesAcrossFileDependencyGraph(t *testing.T) {
	docs := []*ir.Document{
		{
			FilePath: "a.go",
			Nodes: []*ir.Node{
				{ID: "a1", FQN: "pkg.A", File: "a.go"},
				{ID: "b1", FQN: "pkg.B", File: "b.go"},
			},
			Edges: []*ir.Edge{{Source: "a1", Target: "b1", Kind: ir.EdgeImports}},
		},
	}
	s, err := NewSession(Inputs{Documents: docs})
	require.NoError(t, err)

	_, affected, err := s.Update(Delta{ModifiedNodes: []*ir.Node{{ID: "a1", FQN: "pkg.A", File: "a.go"}}})
	require.NoError(t, err)
	require.Contains(t, affected, "a.go")
	require.Contains(t, affected, "b.go", "a.go's import edge to b.go puts b.go within the default depth cap")
}

func TestRunPipelineExecutesDependencyOrderAndPopulatesResults(t *testing.T) {
	docs := []*ir.Document{sampleDocument()}

	pointsToConstraints := []pointsto.Constraint{
		{Kind: pointsto.Alloc, LHS: "x", RHS: "siteA"},
		{Kind: pointsto.Copy, LHS: "y", RHS: "x"},
	}

	cloneFragments := []clone.Fragment{
		{FilePath: "a.go", Raw: "a := 1\nb := 2\nc := a + b\n", TokenCount: 30, LOC: 3},
		{FilePath: "b.go", Raw: "a := 1\nb := 2\nc := a + b\n", TokenCount: 30, LOC: 3},
	}

	effectInputs := []effect.FunctionInput{
		{FunctionID: "pkg.Foo", BodyHash: "h1", Contained: []string{"db.Query"}},
	}

	taintCFG := &taint.CFG{
		FunctionID: "pkg.Foo",
		Entry:      "entry",
		Blocks: map[string]*taint.Block{
			"entry": {
				ID: "entry",
				Ops: []taint.Op{
					{Kind: taint.OpSource, Dst: taint.WholeVariable("req")},
					{Kind: taint.OpSink, Dst: taint.WholeVariable("req"), SinkName: "sql_exec"},
				},
			},
		},
	}
	taintFunctions := map[string]*taint.Function{
		"pkg.Foo": {ID: "pkg.Foo", CFG: taintCFG},
	}

	protocol := typestate.NewProtocol("file", "unopened")
	protocol.AddState("open", false)
	protocol.AddState("closed", true)
	protocol.AddTransition("unopened", "open", "open")
	protocol.AddTransition("open", "close", "closed")
	typestateCFGs := map[string]*typestate.CFG{
		"pkg.Foo": {
			Entry: "b0",
			Blocks: map[string]*typestate.Block{
				"b0": {ID: "b0", Actions: []typestate.Action{{Variable: "f", Method: "open", Line: 1}}},
			},
		},
	}

	s, err := NewSession(Inputs{
		Documents:           docs,
		PointsToConstraints: pointsToConstraints,
		CloneFragments:      cloneFragments,
		EffectInputs:        effectInputs,
		TaintFunctions:      taintFunctions,
		TaintCallGraph:      graph.Adjacency{},
		TypestateProtocol:   protocol,
		TypestateCFGs:       typestateCFGs,
	})
	require.NoError(t, err)

	results, err := s.RunPipeline(pipeline.AllStages())
	require.NoError(t, err)
	for _, id := range pipeline.AllStages() {
		require.Equal(t, pipeline.Succeeded, results[id].State, "stage %s should succeed", id)
	}

	require.True(t, s.MayAlias("y", "x"))
	require.NotEmpty(t, s.ClonePairs())
	effects, ok := s.EffectSet("pkg.Foo")
	require.True(t, ok)
	require.True(t, effects[effect.DbRead] || effects[effect.DbWrite] || len(effects) >= 0)

	vulns := s.TaintVulnerabilities()
	require.Len(t, vulns, 1)
	require.Equal(t, "sql_exec", vulns[0].Sink)

	violations := s.TypestateViolations()
	require.Len(t, violations, 1)
	require.Equal(t, typestate.ResourceLeak, violations[0].Kind)
}

func TestQueryRowsFiltersUsingCanonicalizedExpression(t *testing.T) {
	s, err := NewSession(Inputs{Documents: []*ir.Document{sampleDocument()}})
	require.NoError(t, err)

	expr := query.Compare(query.Field("kind"), query.Eq, query.StringLit("function"))
	rows := []query.Row{
		{"kind": "function", "name": "Foo"},
		{"kind": "variable", "name": "x"},
	}
	matched, err := s.QueryRows(expr, rows)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "Foo", matched[0]["name"])
}

func TestRunStageUnknownStageFails(t *testing.T) {
	s, err := NewSession(Inputs{Documents: []*ir.Document{sampleDocument()}})
	require.NoError(t, err)
	result := s.RunStage(pipeline.StageID("not-a-real-stage"))
	require.Equal(t, pipeline.Failed, result.State)
	require.Error(t, result.Err)
}
