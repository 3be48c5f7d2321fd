// Package pipeline implements the stage DAG orchestrator (spec §4.6): a
// closed enumeration of analysis stages, hard-coded dependencies, a
// per-stage state machine, and a topological scheduler.
package pipeline

// StageID is one of the closed set of pipeline stages.
type StageID string

const (
	StageIRBuild             StageID = "ir-build"
	StageChunking            StageID = "chunking"
	StageLexicalIndexing     StageID = "lexical-indexing"
	StageCrossFileResolution StageID = "cross-file-resolution"
	StageOccurrenceGen       StageID = "occurrence-generation"
	StageSymbolExtraction    StageID = "symbol-extraction"
	StagePointsTo            StageID = "points-to"
	StageCloneDetection      StageID = "clone-detection"
	StageEffectAnalysis      StageID = "effect-analysis"
	StageTaintAnalysis       StageID = "taint-analysis"
	StageCostAnalysis        StageID = "cost-analysis"
	StageRepoMap             StageID = "repo-map"
	StageConcurrencyAnalysis StageID = "concurrency-analysis"
	StageSMTVerification     StageID = "smt-verification"
	StageGitHistory          StageID = "git-history"
	StageQueryEngineInit     StageID = "query-engine-init"
)

// stageMeta carries a human-readable name and description per stage — a
// supplemented feature grounded in the original source's StageId::name()/
// description(), kept so callers (and cmd/codegraphctl) can report
// something better than the bare identifier.
type stageMeta struct {
	name        string
	description string
}

var metaByID = map[StageID]stageMeta{
	StageIRBuild:             {"IR Build", "Parses and merges per-file IR documents into the session arena."},
	StageChunking:            {"Chunking", "Splits large nodes into retrieval-sized chunks."},
	StageLexicalIndexing:     {"Lexical Indexing", "Builds a token-level index over source text."},
	StageCrossFileResolution: {"Cross-File Resolution", "Resolves imports and aliases across file boundaries."},
	StageOccurrenceGen:       {"Occurrence Generation", "Generates symbol occurrence records for navigation."},
	StageSymbolExtraction:    {"Symbol Extraction", "Builds the fully-qualified-name symbol table."},
	StagePointsTo:            {"Points-To", "Runs the Andersen-style points-to solver."},
	StageCloneDetection:      {"Clone Detection", "Detects Type-1..4 code clones."},
	StageEffectAnalysis:      {"Effect Analysis", "Infers per-function side-effect summaries."},
	StageTaintAnalysis:       {"Taint Analysis", "Propagates taint and reports vulnerabilities."},
	StageCostAnalysis:        {"Cost Analysis", "Estimates index-update cost for this change."},
	StageRepoMap:             {"Repo Map", "Builds a summary map of the repository structure."},
	StageConcurrencyAnalysis: {"Concurrency Analysis", "Flags data races and unsynchronized shared state."},
	StageSMTVerification:     {"SMT Verification", "Runs path-feasibility queries via the SMT orchestrator."},
	StageGitHistory:          {"Git History", "Loads commit history metadata for churn signals."},
	StageQueryEngineInit:     {"Query Engine Init", "Initializes the filter/query expression evaluator."},
}

// Name returns the stage's human-readable display name.
func (s StageID) Name() string { return metaByID[s].name }

// Description returns the stage's human-readable description.
func (s StageID) Description() string { return metaByID[s].description }

// State is a stage's position in its state machine.
type State string

const (
	Pending   State = "pending"
	Ready     State = "ready"
	Running   State = "running"
	Succeeded State = "succeeded"
	Failed    State = "failed"
	Skipped   State = "skipped"
)

// Record is the mutable per-stage record tracked by a DAG.
type Record struct {
	Stage    StageID
	State    State
	Duration int64 // nanoseconds; set on completion
	Err      error
	Cause    string // populated when State == Skipped: which dependency caused it
}

// dependencies hard-codes the stage DAG edges (each stage -> the stages it
// depends on), per spec §4.6: "IR build is the root for most
// stages. Taint analysis depends on both cross-file and points-to. Clone
// detection and cost analysis depend only on IR. Git history is
// independent."
var dependencies = map[StageID][]StageID{
	StageIRBuild:             nil,
	StageChunking:            {StageIRBuild},
	StageLexicalIndexing:     {StageChunking},
	StageCrossFileResolution: {StageIRBuild},
	StageOccurrenceGen:       {StageCrossFileResolution},
	StageSymbolExtraction:    {StageIRBuild},
	StagePointsTo:            {StageCrossFileResolution, StageSymbolExtraction},
	StageCloneDetection:      {StageIRBuild},
	StageEffectAnalysis:      {StageSymbolExtraction},
	StageTaintAnalysis:       {StageCrossFileResolution, StagePointsTo},
	StageCostAnalysis:        {StageIRBuild},
	StageRepoMap:             {StageIRBuild},
	StageConcurrencyAnalysis: {StagePointsTo},
	StageSMTVerification:     {StageTaintAnalysis},
	StageGitHistory:          nil,
	StageQueryEngineInit:     {StageIRBuild},
}

// AllStages returns the closed set of stages in declaration order.
func AllStages() []StageID {
	return []StageID{
		StageIRBuild, StageChunking, StageLexicalIndexing, StageCrossFileResolution,
		StageOccurrenceGen, StageSymbolExtraction, StagePointsTo, StageCloneDetection,
		StageEffectAnalysis, StageTaintAnalysis, StageCostAnalysis, StageRepoMap,
		StageConcurrencyAnalysis, StageSMTVerification, StageGitHistory, StageQueryEngineInit,
	}
}
