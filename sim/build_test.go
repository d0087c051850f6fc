package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuild_ValidAllocation(t *testing.T) {
	// GIVEN an allocation inside both budgets with gates satisfied
	b, err := NewBuild(Borge, 30,
		map[string]int{"impeccable_impacts": 5, "death_is_my_companion": 2},
		map[string]int{"hp": 40, "power": 30, "soul_of_ares": 10},
	)
	require.NoError(t, err)
	assert.Equal(t, 7, b.TalentPointsSpent())
	assert.Equal(t, 80, b.AttributePointsSpent())
	assert.Equal(t, 2, b.Talent("death_is_my_companion"))
	assert.Equal(t, 0, b.Talent("unfair_advantage"))
}

func TestNewBuild_BudgetRejection(t *testing.T) {
	tests := []struct {
		name       string
		level      int
		talents    map[string]int
		attributes map[string]int
		sentinel   error
	}{
		{
			name:     "talent points over level",
			level:    3,
			talents:  map[string]int{"impeccable_impacts": 4},
			sentinel: ErrPointBudgetExceeded,
		},
		{
			name:       "attribute points over 3x level",
			level:      3,
			attributes: map[string]int{"hp": 5, "power": 5},
			sentinel:   ErrPointBudgetExceeded,
		},
		{
			name:     "unknown talent id",
			level:    10,
			talents:  map[string]int{"ghost_bullets": 1}, // Knox-only
			sentinel: ErrUnknownID,
		},
		{
			name:       "per-id cap exceeded",
			level:      100,
			attributes: map[string]int{"speed": 51},
			sentinel:   ErrMaxLevelExceeded,
		},
		{
			name:     "gated talent without prerequisite",
			level:    10,
			talents:  map[string]int{"death_is_my_companion": 1},
			sentinel: ErrUnlockGateViolated,
		},
		{
			name:       "gated attribute without prerequisite",
			level:      20,
			attributes: map[string]int{"explosive_punches": 1},
			sentinel:   ErrUnlockGateViolated,
		},
		{
			name:       "negative level allocation",
			level:      10,
			attributes: map[string]int{"hp": -1},
			sentinel:   ErrMaxLevelExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuild(Borge, tt.level, tt.talents, tt.attributes)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want *ValidationError, got %T", err)
			assert.True(t, errors.Is(err, tt.sentinel), "want %v, got %v", tt.sentinel, err)
		})
	}
}

func TestNewBuild_GateSatisfied(t *testing.T) {
	// GIVEN the prerequisite at exactly the gate level
	_, err := NewBuild(Borge, 20,
		map[string]int{"impeccable_impacts": 3, "death_is_my_companion": 1},
		nil,
	)
	assert.NoError(t, err)
}

func TestNewBuild_NeverClamps(t *testing.T) {
	// An over-budget allocation is rejected outright, not reduced.
	b, err := NewBuild(Ozzy, 1, nil, map[string]int{"hp": 4})
	assert.Nil(t, b)
	assert.Error(t, err)
}

func TestBuild_Fingerprint(t *testing.T) {
	a, err := NewBuild(Knox, 10,
		map[string]int{"ghost_bullets": 5, "unfair_advantage": 2},
		map[string]int{"hp": 10, "power": 10},
	)
	require.NoError(t, err)
	b, err := NewBuild(Knox, 10,
		map[string]int{"unfair_advantage": 2, "ghost_bullets": 5},
		map[string]int{"power": 10, "hp": 10},
	)
	require.NoError(t, err)

	// Same allocation, same fingerprint regardless of construction order.
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c, err := NewBuild(Knox, 10,
		map[string]int{"ghost_bullets": 6, "unfair_advantage": 1},
		map[string]int{"hp": 10, "power": 10},
	)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestBuild_CloneIndependence(t *testing.T) {
	orig, err := NewBuild(Borge, 10, map[string]int{"impeccable_impacts": 3}, map[string]int{"hp": 5})
	require.NoError(t, err)

	cl := orig.Clone()
	cl.Talents["impeccable_impacts"] = 9
	cl.Attributes["hp"] = 30

	assert.Equal(t, 3, orig.Talent("impeccable_impacts"))
	assert.Equal(t, 5, orig.Attribute("hp"))
}

func TestBudgets(t *testing.T) {
	assert.Equal(t, 40, TalentBudget(40))
	assert.Equal(t, 120, AttributeBudget(40))
}

func TestBuild_BonusDefaultsToOne(t *testing.T) {
	b, err := NewBuild(Borge, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Bonus("loot_mult"))
}
