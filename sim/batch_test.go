package sim

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRunner_ReproducibleAcrossWorkerCounts(t *testing.T) {
	// GIVEN the same seed policy
	// WHEN the batch runs with different pool sizes
	// THEN the aggregate is identical: seeds derive from the run index,
	// not from scheduling order
	b := testBuild(t)

	run := func(workers int) AggregateStats {
		cfg := testConfig()
		cfg.SimsPerBuild = 20
		cfg.Workers = workers
		runner, err := NewBatchRunner(cfg)
		require.NoError(t, err)
		stats, err := runner.Run(context.Background(), b)
		require.NoError(t, err)
		return stats
	}

	assert.Equal(t, run(1), run(8))
}

func TestBatchRunner_InvalidBuildAtomicFailure(t *testing.T) {
	// An invalid build fails the whole batch before any simulation runs.
	cfg := testConfig()
	runner, err := NewBatchRunner(cfg)
	require.NoError(t, err)

	// Bypass NewBuild to hold an over-budget allocation.
	bad := &Build{
		Kind:       Borge,
		Level:      1,
		Talents:    map[string]int{"impeccable_impacts": 5},
		Attributes: map[string]int{},
	}

	stats, err := runner.Run(context.Background(), bad)
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, AggregateStats{}, stats)
}

func TestBatchRunner_ConfigValidation(t *testing.T) {
	cfg := testConfig()
	cfg.SimsPerBuild = 0
	_, err := NewBatchRunner(cfg)
	assert.Error(t, err)
}

func TestBatchRunner_AbortedRunsTallied(t *testing.T) {
	// GIVEN a cap no encounter can fit under
	// THEN every run aborts, is excluded from aggregates and tallied
	cfg := testConfig()
	cfg.SimsPerBuild = 10
	cfg.ActionCap = 2
	runner, err := NewBatchRunner(cfg)
	require.NoError(t, err)

	b, err := NewBuild(Borge, 1, nil, nil)
	require.NoError(t, err)

	stats, err := runner.Run(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Aborted)
	assert.Equal(t, 0, stats.Completed)
	assert.Zero(t, stats.StageMean)
}

func TestBatchRunner_ContextCancellation(t *testing.T) {
	cfg := testConfig()
	runner, err := NewBatchRunner(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runner.Run(ctx, testBuild(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	// Permuting the reduction order must not change the aggregate beyond
	// floating-point noise.
	cfg := testConfig()
	engine := NewEngine(BackendReference)
	b := testBuild(t)

	results := make([]*SimulationResult, 0, 30)
	for i := 0; i < 30; i++ {
		res, err := engine.Run(b, cfg, DeriveRunSeed(cfg.Seed, i))
		require.NoError(t, err)
		results = append(results, res)
	}

	base := Aggregate(results, 0)

	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]*SimulationResult, len(results))
		copy(shuffled, results)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		agg := Aggregate(shuffled, 0)

		assert.InDelta(t, base.StageMean, agg.StageMean, 1e-9)
		assert.InDelta(t, base.StageStdDev, agg.StageStdDev, 1e-9)
		assert.InDelta(t, base.LootMean, agg.LootMean, 1e-6)
		assert.InDelta(t, base.XPMean, agg.XPMean, 1e-6)
		assert.Equal(t, base.StageMin, agg.StageMin)
		assert.Equal(t, base.StageMax, agg.StageMax)
		assert.Equal(t, base.Completed, agg.Completed)
	}
}

func TestAggregate_ExcludesAborted(t *testing.T) {
	results := []*SimulationResult{
		{FinalStage: 10, Cause: CauseDeath},
		{FinalStage: 999, Cause: CauseAborted},
		{FinalStage: 20, Cause: CauseDeath},
	}
	agg := Aggregate(results, 1)

	assert.Equal(t, 4, agg.Runs)
	assert.Equal(t, 2, agg.Completed)
	assert.Equal(t, 1, agg.Aborted)
	assert.Equal(t, 1, agg.Overflowed)
	assert.InDelta(t, 15.0, agg.StageMean, 1e-9)
	assert.Equal(t, 20, agg.StageMax)
}

func TestAggregate_SurvivalRate(t *testing.T) {
	results := []*SimulationResult{
		{FinalStage: 300, Cause: CauseStageCap, ElapsedTime: 100},
		{FinalStage: 120, Cause: CauseDeath, ElapsedTime: 50},
		{FinalStage: 300, Cause: CauseStageCap, ElapsedTime: 100},
		{FinalStage: 80, Cause: CauseDeath, ElapsedTime: 40},
	}
	agg := Aggregate(results, 0)
	assert.InDelta(t, 0.5, agg.SurvivalRate, 1e-9)
}
