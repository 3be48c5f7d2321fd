package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAcceptsFullCycleFreeStageSet(t *testing.T) {
	d, err := Build(AllStages())
	require.NoError(t, err)
	require.NotNil(t, d)
}

func TestExecutionOrderRespectsDependencies(t *testing.T) {
	d, err := Build([]StageID{StageIRBuild, StageCrossFileResolution, StagePointsTo, StageSymbolExtraction, StageTaintAnalysis})
	require.NoError(t, err)
	order := d.ExecutionOrder()
	index := map[StageID]int{}
	for i, s := range order {
		index[s] = i
	}
	require.Less(t, index[StageIRBuild], index[StageCrossFileResolution])
	require.Less(t, index[StagePointsTo], index[StageTaintAnalysis])
	require.Less(t, index[StageCrossFileResolution], index[StageTaintAnalysis])
}

func TestSchedulerRunsOnlyReadyStages(t *testing.T) {
	d, err := Build([]StageID{StageIRBuild, StageCloneDetection, StageCostAnalysis, StageGitHistory})
	require.NoError(t, err)

	ready := d.GetParallelStages()
	require.Contains(t, ready, StageIRBuild)
	require.Contains(t, ready, StageGitHistory)
	require.NotContains(t, ready, StageCloneDetection)

	d.MarkRunning(StageIRBuild)
	d.ProcessCompletion(StageIRBuild, true, 100, nil)

	ready = d.GetParallelStages()
	require.Contains(t, ready, StageCloneDetection)
	require.Contains(t, ready, StageCostAnalysis)
}

func TestFailurePropagatesSkipTransitively(t *testing.T) {
	d, err := Build([]StageID{StageIRBuild, StageCrossFileResolution, StageSymbolExtraction, StagePointsTo, StageTaintAnalysis, StageSMTVerification})
	require.NoError(t, err)

	d.ProcessCompletion(StageIRBuild, false, 5, fmt.Errorf("boom"))

	rec, _ := d.Record(StageCrossFileResolution)
	require.Equal(t, Skipped, rec.State)
	rec, _ = d.Record(StageTaintAnalysis)
	require.Equal(t, Skipped, rec.State)
	rec, _ = d.Record(StageSMTVerification)
	require.Equal(t, Skipped, rec.State)

	require.True(t, d.IsComplete())
}

func TestIsCompleteRequiresTerminalStates(t *testing.T) {
	d, err := Build([]StageID{StageIRBuild, StageCloneDetection})
	require.NoError(t, err)
	require.False(t, d.IsComplete())
	d.ProcessCompletion(StageIRBuild, true, 1, nil)
	require.False(t, d.IsComplete())
	d.ProcessCompletion(StageCloneDetection, true, 1, nil)
	require.True(t, d.IsComplete())
}
