package session

import (
	"sort"

	"github.com/viant/codegraph/clone"
	"github.com/viant/codegraph/effect"
	"github.com/viant/codegraph/impact"
	"github.com/viant/codegraph/ir"
	"github.com/viant/codegraph/pipeline"
	"github.com/viant/codegraph/pointsto"
	"github.com/viant/codegraph/taint"
	"github.com/viant/codegraph/typestate"
)

// stageExecutors implements every stage in pipeline.AllStages() (spec
// §4.6). Each executor mutates the session's cached result fields and
// returns an error only on a genuine failure (missing required input is
// treated as a no-op success, matching the teacher's tolerant style —
// a stage with nothing to do is not a pipeline failure).
var stageExecutors = map[pipeline.StageID]func(*Session) error{
	pipeline.StageIRBuild:             (*Session).runIRBuild,
	pipeline.StageChunking:            (*Session).runChunking,
	pipeline.StageLexicalIndexing:     (*Session).runLexicalIndexing,
	pipeline.StageCrossFileResolution: (*Session).runCrossFileResolution,
	pipeline.StageOccurrenceGen:       (*Session).runOccurrenceGen,
	pipeline.StageSymbolExtraction:    (*Session).runSymbolExtraction,
	pipeline.StagePointsTo:            (*Session).runPointsTo,
	pipeline.StageCloneDetection:      (*Session).runCloneDetection,
	pipeline.StageEffectAnalysis:      (*Session).runEffectAnalysis,
	pipeline.StageTaintAnalysis:       (*Session).runTaintAnalysis,
	pipeline.StageCostAnalysis:        (*Session).runCostAnalysis,
	pipeline.StageRepoMap:             (*Session).runRepoMap,
	pipeline.StageConcurrencyAnalysis: (*Session).runConcurrencyAnalysis,
	pipeline.StageSMTVerification:     (*Session).runSMTVerification,
	pipeline.StageGitHistory:          (*Session).runGitHistory,
	pipeline.StageQueryEngineInit:     (*Session).runQueryEngineInit,
}

func (s *Session) runIRBuild() error {
	ctx, byID, err := buildGlobalContext(s.documents)
	if err != nil {
		return err
	}
	s.context = *ctx
	s.nodesByID = byID
	return nil
}

// runChunking splits any node whose span covers more lines than
// maxChunkLines into fixed-size line-range chunks (spec §9's chunking
// stage, left unspecified in granularity by spec.md beyond "large nodes
// are split for retrieval").
const maxChunkLines = 200

// Chunk is one retrieval-sized slice of a node too large to embed whole.
type Chunk struct {
	NodeID     string
	StartLine  int
	EndLine    int
}

func (s *Session) runChunking() error {
	var chunks []Chunk
	for _, n := range s.nodesByID {
		span := n.Span.EndLine - n.Span.StartLine + 1
		if span <= maxChunkLines {
			continue
		}
		for start := n.Span.StartLine; start <= n.Span.EndLine; start += maxChunkLines {
			end := start + maxChunkLines - 1
			if end > n.Span.EndLine {
				end = n.Span.EndLine
			}
			chunks = append(chunks, Chunk{NodeID: n.ID, StartLine: start, EndLine: end})
		}
	}
	s.chunks = chunks
	return nil
}

func (s *Session) runLexicalIndexing() error {
	index := map[string][]string{}
	for _, n := range s.nodesByID {
		for _, tok := range clone.Tokenize(n.FQN) {
			index[tok] = appendUnique(index[tok], n.ID)
		}
		for _, tok := range clone.Tokenize(n.Docstring) {
			index[tok] = appendUnique(index[tok], n.ID)
		}
	}
	s.lexicalIndex = index
	return nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// runCrossFileResolution adds every node that has an FQN to the session's
// symbol table. It does not resolve import aliases to target FQNs and does
// not record unresolved imports; it never fails.
func (s *Session) runCrossFileResolution() error {
	for _, n := range s.nodesByID {
		if n.FQN == "" {
			continue
		}
		s.context.SymbolTable.Add(n)
	}
	return nil
}

func (s *Session) runOccurrenceGen() error {
	var occurrences []Occurrence
	for _, n := range s.nodesByID {
		if n.FQN == "" {
			continue
		}
		occurrences = append(occurrences, Occurrence{FQN: n.FQN, File: n.File, Span: n.Span})
	}
	sort.Slice(occurrences, func(i, j int) bool { return occurrences[i].FQN < occurrences[j].FQN })
	s.occurrences = occurrences
	return nil
}

func (s *Session) runSymbolExtraction() error {
	var nodes []*ir.Node
	for _, n := range s.nodesByID {
		nodes = append(nodes, n)
	}
	s.context.SymbolTable = ir.NewSymbolTable(nodes)
	return nil
}

func (s *Session) runPointsTo() error {
	if len(s.pointsToConstraints) == 0 {
		return nil
	}
	solver := pointsto.NewSolver()
	for _, c := range s.pointsToConstraints {
		solver.AddConstraint(c)
	}
	solver.Solve()
	s.pointsToSolver = solver
	return nil
}

func (s *Session) runCloneDetection() error {
	if len(s.cloneFragments) == 0 {
		return nil
	}
	minTokens, minLOC := s.config.CloneMinTokens, s.config.CloneMinLOC
	if minTokens == 0 {
		minTokens = 20
	}
	if minLOC == 0 {
		minLOC = 3
	}

	var pairs []clone.Pair
	pairs = append(pairs, clone.DetectType1(s.cloneFragments, clone.Type1Config{MinTokens: minTokens, MinLOC: minLOC})...)
	pairs = append(pairs, clone.DetectType2(s.cloneFragments, clone.Type2Config{MinTokens: minTokens, MinLOC: minLOC})...)
	pairs = append(pairs, clone.DetectType3(s.cloneFragments, clone.Type3Config{
		MinTokens: minTokens, MinLOC: minLOC, MaxGapRatio: 0.3, MinSimilarity: 0.7,
	})...)
	pairs = append(pairs, clone.DetectType4(s.cloneFragments, clone.DefaultType4Config())...)
	s.clonePairs = pairs
	return nil
}

// runEffectAnalysis also drives typestate-protocol analysis: spec.md's 16
// pipeline stages have no dedicated typestate slot (typestate is grouped
// with effect inference under C7's per-function semantic analyses), so it
// piggybacks on this stage rather than needing a 17th stage ID (recorded
// as an Open Question resolution in DESIGN.md).
func (s *Session) runEffectAnalysis() error {
	if len(s.effectInputs) > 0 {
		engine := effect.NewEngine(effect.DefaultCacheSize)
		s.effectSummaries = engine.Infer(s.effectInputs)
	}

	if s.typestateProtocol != nil {
		var violations []typestate.Violation
		ids := make([]string, 0, len(s.typestateCFGs))
		for id := range s.typestateCFGs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			violations = append(violations, typestate.Analyze(s.typestateProtocol, s.typestateCFGs[id])...)
		}
		s.typestateViolations = violations
	}
	return nil
}

func (s *Session) runTaintAnalysis() error {
	if len(s.taintFunctions) == 0 {
		return nil
	}
	taintConfig := taint.Config{
		MaxDepth:      s.config.Taint.MaxDepth,
		UseSMTPruning: s.config.Taint.UseSMTPruning,
		Backend:       s.smtBackend,
	}
	if taintConfig.MaxDepth == 0 {
		taintConfig.MaxDepth = 100
	}

	summaries := taint.ComputeSummaries(s.taintFunctions, s.taintCallGraph, taintConfig)
	s.taintSummaries = summaries

	known := make(map[string]bool, len(s.taintFunctions))
	for id := range s.taintFunctions {
		known[id] = true
	}

	var vulns []taint.Vulnerability
	for id, fn := range s.taintFunctions {
		cfg := taint.ApplyCallSummaries(fn.CFG, summaries, known)
		vulns = append(vulns, taint.Report(id, cfg, taintConfig, fn.ExplicitSources)...)
	}
	s.taintVulnerabilities = vulns
	return nil
}

func (s *Session) runCostAnalysis() error {
	cfg := impact.DefaultCostModelConfig()
	changed := len(s.impactMarks)
	total := len(s.nodesByID)
	if total == 0 {
		total = 1
	}
	affectedFiles := 0
	seenFiles := map[string]bool{}
	for _, m := range s.impactMarks {
		if n, ok := s.nodesByID[m.NodeID]; ok && !seenFiles[n.File] {
			seenFiles[n.File] = true
			affectedFiles++
		}
	}
	s.costPlan = impact.Plan(cfg, changed, total, len(s.impactMarks), affectedFiles)
	return nil
}

func (s *Session) runRepoMap() error {
	m := map[string]int{}
	for _, n := range s.nodesByID {
		m[n.File]++
	}
	s.repoMap = m
	return nil
}

// runConcurrencyAnalysis flags pairs of nodes marked with the "goroutine"
// modifier whose points-to sets may alias, a coarse shared-state race
// signal (spec §9 notes full happens-before reasoning is out of scope;
// this is the aliasing-based approximation it asks for instead).
func (s *Session) runConcurrencyAnalysis() error {
	if s.pointsToSolver == nil {
		return nil
	}
	var goroutineVars []string
	for _, n := range s.nodesByID {
		if n.HasModifier("goroutine") {
			goroutineVars = append(goroutineVars, n.ID)
		}
	}
	var flagged []string
	for i := 0; i < len(goroutineVars); i++ {
		for j := i + 1; j < len(goroutineVars); j++ {
			if s.pointsToSolver.MayAlias(goroutineVars[i], goroutineVars[j]) {
				flagged = append(flagged, goroutineVars[i]+"~"+goroutineVars[j])
			}
		}
	}
	s.concurrencyFlags = flagged
	return nil
}

func (s *Session) runSMTVerification() error {
	if s.smtBackend == nil {
		return nil
	}
	// The theory-aware feasibility checks themselves run inline inside the
	// taint stage (spec §4.3's path pruning); this stage exists to confirm
	// a backend is wired and reachable before callers rely on it.
	s.smtBackend.Reset()
	return nil
}

func (s *Session) runGitHistory() error {
	// Churn data is supplied by an external VCS collaborator (Inputs.GitChurn);
	// nothing to compute here beyond making it available to queries.
	return nil
}

func (s *Session) runQueryEngineInit() error {
	s.queryReady = true
	return nil
}
