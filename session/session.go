package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/viant/codegraph/clone"
	"github.com/viant/codegraph/config"
	"github.com/viant/codegraph/effect"
	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/impact"
	"github.com/viant/codegraph/ir"
	"github.com/viant/codegraph/pipeline"
	"github.com/viant/codegraph/pointsto"
	"github.com/viant/codegraph/query"
	"github.com/viant/codegraph/smt"
	"github.com/viant/codegraph/taint"
	"github.com/viant/codegraph/typestate"
)

// Inputs bundles the pre-extracted, language-specific artifacts a real
// ingest adapter (internal/ingest/gosrc, or any other front end) hands to
// a session: IR documents plus the per-analysis data each kernel package
// needs (constraints, CFGs, protocols) since synthesizing those from bare
// IR is outside this package's job (spec §1: parsing and semantic
// extraction are external collaborators).
type Inputs struct {
	Documents []*ir.Document

	PointsToConstraints []pointsto.Constraint

	TaintFunctions map[string]*taint.Function
	TaintCallGraph graph.Adjacency

	CloneFragments []clone.Fragment

	EffectInputs []effect.FunctionInput

	TypestateProtocol *typestate.Protocol
	TypestateCFGs     map[string]*typestate.CFG

	GitChurn map[string]int // file path -> commit touch count, supplied by an external VCS collaborator

	SMTBackend smt.Backend
	Config     config.Config
}

// Session is a single analysis session over a fixed set of ingested
// documents: the merged global context, every kernel package's working
// state, and the stage dispatcher (spec §3, §4.6, §6).
type Session struct {
	ID string

	documents []*ir.Document
	nodesByID map[string]*ir.Node

	context GlobalContext
	config  config.Config

	pointsToConstraints []pointsto.Constraint
	pointsToSolver      *pointsto.Solver

	taintFunctions map[string]*taint.Function
	taintCallGraph graph.Adjacency
	smtBackend     smt.Backend

	cloneFragments []clone.Fragment
	effectInputs   []effect.FunctionInput

	typestateProtocol *typestate.Protocol
	typestateCFGs     map[string]*typestate.CFG

	gitChurn map[string]int

	dag *pipeline.DAG

	// Results populated as stages run.
	chunks               []Chunk
	lexicalIndex         map[string][]string
	occurrences          []Occurrence
	clonePairs           []clone.Pair
	effectSummaries      map[string]effect.Summary
	taintSummaries       map[string]taint.Summary
	taintVulnerabilities []taint.Vulnerability
	typestateViolations  []typestate.Violation
	impactMarks          []impact.Mark
	costPlan             []impact.IndexPlan
	repoMap              map[string]int
	concurrencyFlags     []string
	queryReady           bool
}

// Occurrence is a generated symbol-occurrence record (spec §4.6 stage
// "occurrence-generation"): where a fully-qualified symbol appears.
type Occurrence struct {
	FQN  string
	File string
	Span ir.Span
}

// NewSession merges the given documents into a global context and stores
// the supplied kernel inputs, ready to drive via RunStage/RunPipeline.
func NewSession(in Inputs) (*Session, error) {
	ctx, byID, err := buildGlobalContext(in.Documents)
	if err != nil {
		return nil, fmt.Errorf("session: building global context: %w", err)
	}

	cfg := in.Config
	if cfg.Taint.MaxDepth == 0 {
		cfg = config.Default()
	}

	s := &Session{
		ID:                  uuid.NewString(),
		documents:           in.Documents,
		nodesByID:           byID,
		context:             *ctx,
		config:              cfg,
		pointsToConstraints: in.PointsToConstraints,
		taintFunctions:      in.TaintFunctions,
		taintCallGraph:      in.TaintCallGraph,
		smtBackend:          in.SMTBackend,
		cloneFragments:      in.CloneFragments,
		effectInputs:        in.EffectInputs,
		typestateProtocol:   in.TypestateProtocol,
		typestateCFGs:       in.TypestateCFGs,
		gitChurn:            in.GitChurn,
	}
	if s.smtBackend == nil {
		s.smtBackend = smt.NewMockBackend()
	}
	return s, nil
}

// BuildGlobalContext returns the session's current merged cross-file
// context.
func (s *Session) BuildGlobalContext() GlobalContext {
	return s.context
}

// Update applies an incremental delta to the document set, recomputes the
// global context, and returns the new context plus the set of files whose
// impact reaches beyond the changed nodes themselves (via the file
// dependency graph, spec §4.1, §4.5).
func (s *Session) Update(delta Delta) (GlobalContext, []string, error) {
	removed := make(map[string]bool, len(delta.RemovedNodes))
	for _, id := range delta.RemovedNodes {
		removed[id] = true
	}

	var changedIDs []string
	for _, doc := range s.documents {
		kept := doc.Nodes[:0:0]
		for _, n := range doc.Nodes {
			if removed[n.ID] {
				continue
			}
			kept = append(kept, n)
		}
		doc.Nodes = kept
	}
	for _, n := range delta.ModifiedNodes {
		changedIDs = append(changedIDs, n.ID)
	}
	for _, n := range delta.AddedNodes {
		changedIDs = append(changedIDs, n.ID)
	}
	if len(s.documents) > 0 {
		s.documents[0].Nodes = append(s.documents[0].Nodes, delta.AddedNodes...)
		s.documents[0].Nodes = replaceModified(s.documents[0].Nodes, delta.ModifiedNodes)
		s.documents[0].Edges = append(s.documents[0].Edges, delta.AddedEdges...)
		s.documents[0].Edges = removeEdges(s.documents[0].Edges, delta.RemovedEdges)
	}

	ctx, byID, err := buildGlobalContext(s.documents)
	if err != nil {
		return GlobalContext{}, nil, fmt.Errorf("session: update: %w", err)
	}
	s.context = *ctx
	s.nodesByID = byID

	changedFiles := map[string]bool{}
	for _, id := range changedIDs {
		if n, ok := byID[id]; ok {
			changedFiles[n.File] = true
		}
	}
	var roots []string
	for f := range changedFiles {
		roots = append(roots, f)
	}
	depthCap := s.config.Impact.DefaultDepthCap
	if depthCap == 0 {
		depthCap = 2
	}
	marks := impact.Propagate(s.context.FileDependencyGraph, roots, depthCap, nil)
	affected := map[string]bool{}
	for _, m := range marks {
		affected[m.NodeID] = true
	}
	for f := range changedFiles {
		affected[f] = true
	}
	out := make([]string, 0, len(affected))
	for f := range affected {
		out = append(out, f)
	}
	sort.Strings(out)
	return s.context, out, nil
}

func replaceModified(nodes []*ir.Node, modified []*ir.Node) []*ir.Node {
	if len(modified) == 0 {
		return nodes
	}
	byID := make(map[string]*ir.Node, len(modified))
	for _, n := range modified {
		byID[n.ID] = n
	}
	out := make([]*ir.Node, len(nodes))
	for i, n := range nodes {
		if replacement, ok := byID[n.ID]; ok {
			out[i] = replacement
		} else {
			out[i] = n
		}
	}
	return out
}

// edgeKey identifies an edge by its structural identity (source, target,
// kind), ignoring Metadata, which is not comparable and so cannot key a
// map directly.
func edgeKey(e *ir.Edge) string {
	return e.Source + "\x00" + e.Target + "\x00" + string(e.Kind)
}

func removeEdges(edges []*ir.Edge, removed []*ir.Edge) []*ir.Edge {
	if len(removed) == 0 {
		return edges
	}
	drop := make(map[string]bool, len(removed))
	for _, e := range removed {
		drop[edgeKey(e)] = true
	}
	out := edges[:0:0]
	for _, e := range edges {
		if drop[edgeKey(e)] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// StageResult reports the outcome of a single stage run.
type StageResult struct {
	Stage    pipeline.StageID
	State    pipeline.State
	Duration time.Duration
	Err      error
}

// RunStage executes a single stage's analysis directly, independent of any
// DAG dependency bookkeeping (the caller is responsible for ordering when
// calling stages ad hoc; RunPipeline handles ordering automatically).
func (s *Session) RunStage(id pipeline.StageID) StageResult {
	exec, ok := stageExecutors[id]
	if !ok {
		return StageResult{Stage: id, State: pipeline.Failed, Err: fmt.Errorf("session: unknown stage %q", id)}
	}
	start := time.Now()
	err := exec(s)
	dur := time.Since(start)
	if err != nil {
		return StageResult{Stage: id, State: pipeline.Failed, Duration: dur, Err: err}
	}
	return StageResult{Stage: id, State: pipeline.Succeeded, Duration: dur}
}

// RunPipeline builds a DAG over the enabled stage set and runs every
// stage in topological order, honoring the DAG's ready/skip bookkeeping
// (spec §4.6): a failed stage causes its transitive dependents to be
// reported Skipped rather than run.
func (s *Session) RunPipeline(enabled []pipeline.StageID) (map[pipeline.StageID]StageResult, error) {
	dag, err := pipeline.Build(enabled)
	if err != nil {
		return nil, fmt.Errorf("session: building pipeline: %w", err)
	}
	s.dag = dag

	for !dag.IsComplete() {
		ready := dag.GetParallelStages()
		if len(ready) == 0 {
			break
		}
		for _, id := range ready {
			dag.MarkRunning(id)
			start := time.Now()
			err := stageExecutors[id](s)
			dag.ProcessCompletion(id, err == nil, time.Since(start).Nanoseconds(), err)
		}
	}

	out := make(map[pipeline.StageID]StageResult, len(enabled))
	for _, id := range enabled {
		rec, ok := dag.Record(id)
		if !ok {
			continue
		}
		out[id] = StageResult{
			Stage:    id,
			State:    rec.State,
			Duration: time.Duration(rec.Duration),
			Err:      rec.Err,
		}
	}
	return out, nil
}

// PointsTo returns the allocation-site set for v (empty, not an error, if
// the points-to stage has not run or v is unknown).
func (s *Session) PointsTo(v string) *pointsto.Bitmap {
	if s.pointsToSolver == nil {
		return pointsto.NewBitmap()
	}
	return s.pointsToSolver.PointsTo(v)
}

// MayAlias reports whether a and b's points-to sets intersect.
func (s *Session) MayAlias(a, b string) bool {
	if s.pointsToSolver == nil {
		return false
	}
	return s.pointsToSolver.MayAlias(a, b)
}

// TaintVulnerabilities returns every vulnerability found by the most
// recent taint-analysis stage run.
func (s *Session) TaintVulnerabilities() []taint.Vulnerability {
	return s.taintVulnerabilities
}

// EffectSet returns the inferred effect set for a function, and whether
// one was computed.
func (s *Session) EffectSet(functionID string) (effect.Set, bool) {
	summary, ok := s.effectSummaries[functionID]
	return summary.Effects, ok
}

// ClonePairs returns every clone pair found across the Type-1..4
// detectors' most recent run.
func (s *Session) ClonePairs() []clone.Pair {
	return s.clonePairs
}

// TypestateViolations returns every protocol violation found by the most
// recent typestate-analysis stage run.
func (s *Session) TypestateViolations() []typestate.Violation {
	return s.typestateViolations
}

// QueryRows filters rows against a canonicalized query expression,
// exercising the query-engine stage's evaluator (spec §4.4, §6).
func (s *Session) QueryRows(expr *query.Expr, rows []query.Row) ([]query.Row, error) {
	canon, err := query.Canonicalize(expr)
	if err != nil {
		return nil, fmt.Errorf("session: canonicalizing query: %w", err)
	}
	out := make([]query.Row, 0, len(rows))
	for _, row := range rows {
		if query.Evaluate(canon, row) {
			out = append(out, row)
		}
	}
	return out, nil
}
