package impact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCostModelSkipWhenNoWork(t *testing.T) {
	cfg := DefaultCostModelConfig()
	plans := Plan(cfg, 0, 1000, 0, 0)
	for _, p := range plans {
		require.Equal(t, Skip, p.Strategy)
		require.False(t, p.RequiresUpdate)
	}
}

func TestCostModelFullRebuildAboveRatio(t *testing.T) {
	cfg := DefaultCostModelConfig()
	plans := Plan(cfg, 600, 1000, 600, 50)
	for _, p := range plans {
		require.Equal(t, FullRebuild, p.Strategy)
	}
}

func TestCostModelAsyncAboveBatchThreshold(t *testing.T) {
	cfg := DefaultCostModelConfig()
	plans := Plan(cfg, 10, 10000, 500, 10)
	require.Equal(t, AsyncIncremental, plans[0].Strategy)
}

func TestCostModelSyncForSmallChange(t *testing.T) {
	cfg := DefaultCostModelConfig()
	plans := Plan(cfg, 5, 10000, 5, 2)
	for _, p := range plans {
		require.Equal(t, SyncIncremental, p.Strategy)
	}
}
