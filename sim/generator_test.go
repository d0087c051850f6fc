package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomBuild_AlwaysValid(t *testing.T) {
	// Every draw must satisfy budgets, caps and gates; RandomBuild goes
	// through NewBuild so a violation would surface as an error.
	rng := rand.New(rand.NewSource(11))
	for _, kind := range []HunterKind{Borge, Ozzy, Knox} {
		for _, level := range []int{1, 5, 40, 150} {
			for i := 0; i < 50; i++ {
				b, err := RandomBuild(kind, level, rng)
				require.NoError(t, err, "kind=%s level=%d draw=%d", kind, level, i)
				assert.NoError(t, b.Validate())
			}
		}
	}
}

func TestRandomBuild_SpendsFullBudget(t *testing.T) {
	// GIVEN an allocation space larger than the budget
	// THEN the walk spends every point
	rng := rand.New(rand.NewSource(12))
	for i := 0; i < 20; i++ {
		b, err := RandomBuild(Borge, 30, rng)
		require.NoError(t, err)
		assert.Equal(t, TalentBudget(30), b.TalentPointsSpent())
		assert.Equal(t, AttributeBudget(30), b.AttributePointsSpent())
	}
}

func TestRandomBuild_Deterministic(t *testing.T) {
	a, err := RandomBuild(Ozzy, 25, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	b, err := RandomBuild(Ozzy, 25, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestRandomBuild_GatesRespectedUnderCaps(t *testing.T) {
	// At very high levels the walk saturates caps; gated ids may only
	// hold points when their prerequisite does.
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 30; i++ {
		b, err := RandomBuild(Knox, 300, rng)
		require.NoError(t, err)
		if b.Talent("finishing_move") > 0 {
			assert.GreaterOrEqual(t, b.Talent("ghost_bullets"), 5)
		}
		if b.Attribute("space_pirate_armory") > 0 {
			assert.GreaterOrEqual(t, b.Attribute("shield_of_poseidon"), 2)
		}
	}
}
