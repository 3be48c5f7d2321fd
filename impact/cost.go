package impact

// IndexType enumerates the index kinds the cost model estimates update
// costs for.
type IndexType string

const (
	IndexGraph  IndexType = "graph"
	IndexVector IndexType = "vector"
	IndexLexical IndexType = "lexical"
)

// Strategy is the chosen update strategy for an index.
type Strategy string

const (
	Skip             Strategy = "skip"
	SyncIncremental  Strategy = "sync-incremental"
	AsyncIncremental Strategy = "async-incremental"
	FullRebuild      Strategy = "full-rebuild"
)

// CostModelConfig tunes the thresholds driving strategy selection.
type CostModelConfig struct {
	EdgeExplosionFactor float64 // graph cost multiplier per changed node
	GraphUnitCost       float64
	EmbeddingCost       float64 // vector cost per affected node
	PerFileCost         float64 // lexical cost per affected file

	FullRebuildChangeRatio float64 // choose FullRebuild above this changed/total ratio
	AsyncBatchThreshold    int     // choose AsyncIncremental above this many affected units
}

// DefaultCostModelConfig returns reasonable defaults for the linear cost
// model (spec §4.5).
func DefaultCostModelConfig() CostModelConfig {
	return CostModelConfig{
		EdgeExplosionFactor:    2.0,
		GraphUnitCost:          1.0,
		EmbeddingCost:          5.0,
		PerFileCost:            3.0,
		FullRebuildChangeRatio: 0.5,
		AsyncBatchThreshold:    200,
	}
}

// IndexPlan is the cost-model decision for one index type.
type IndexPlan struct {
	Index            IndexType
	RequiresUpdate   bool
	EstimatedCost    float64
	Strategy         Strategy
}

// Plan computes an IndexPlan for each index type given the size of the
// change and the total corpus size it's measured against.
func Plan(cfg CostModelConfig, changedNodes, totalNodes, affectedNodes, affectedFiles int) []IndexPlan {
	ratio := 0.0
	if totalNodes > 0 {
		ratio = float64(changedNodes) / float64(totalNodes)
	}

	graphCost := float64(changedNodes) * cfg.EdgeExplosionFactor * cfg.GraphUnitCost
	vectorCost := float64(affectedNodes) * cfg.EmbeddingCost
	lexicalCost := float64(affectedFiles) * cfg.PerFileCost

	return []IndexPlan{
		{Index: IndexGraph, RequiresUpdate: changedNodes > 0, EstimatedCost: graphCost,
			Strategy: strategyFor(changedNodes, affectedNodes, ratio, cfg)},
		{Index: IndexVector, RequiresUpdate: affectedNodes > 0, EstimatedCost: vectorCost,
			Strategy: strategyFor(changedNodes, affectedNodes, ratio, cfg)},
		{Index: IndexLexical, RequiresUpdate: affectedFiles > 0, EstimatedCost: lexicalCost,
			Strategy: strategyFor(changedNodes, affectedFiles, ratio, cfg)},
	}
}

func strategyFor(changedNodes, affectedUnits int, ratio float64, cfg CostModelConfig) Strategy {
	if changedNodes == 0 && affectedUnits == 0 {
		return Skip
	}
	if ratio > cfg.FullRebuildChangeRatio {
		return FullRebuild
	}
	if affectedUnits > cfg.AsyncBatchThreshold {
		return AsyncIncremental
	}
	return SyncIncremental
}
