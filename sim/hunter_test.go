package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHunterState_BaseStatsAtLevelOne(t *testing.T) {
	// Zero discretionary points: stats reduce to the kind's base table.
	b, err := NewBuild(Borge, 1, nil, nil)
	require.NoError(t, err)

	h := newHunterState(b)
	c := &CoeffsFor(Borge).Hunter
	assert.InDelta(t, c.HPBase, h.maxHP, 1e-9)
	assert.InDelta(t, c.PowerBase, h.power, 1e-9)
	assert.InDelta(t, c.SpeedBase, h.speed, 1e-9)
	assert.Equal(t, h.maxHP, h.hp)
	assert.Equal(t, 0, h.maxRevives)
}

func TestHunterState_StepYield(t *testing.T) {
	// 7 points at 2.5 per point with a 0.01 step every 5 points:
	// 7 * (2.5 + 0.01*1)
	assert.InDelta(t, 7*(2.5+0.01), stepYield(7, 2.5, 0.01, 5), 1e-9)
	// Below the first step the bonus is zero.
	assert.InDelta(t, 4*2.5, stepYield(4, 2.5, 0.01, 5), 1e-9)
}

func TestHunterState_AttributePointsRaiseStats(t *testing.T) {
	base, err := NewBuild(Borge, 40, nil, nil)
	require.NoError(t, err)
	invested, err := NewBuild(Borge, 40, nil, map[string]int{
		"hp": 40, "power": 40, "damage_reduction": 20, "speed": 20,
	})
	require.NoError(t, err)

	hb, hi := newHunterState(base), newHunterState(invested)
	assert.Greater(t, hi.maxHP, hb.maxHP)
	assert.Greater(t, hi.power, hb.power)
	assert.Greater(t, hi.dr, hb.dr)
	assert.Less(t, hi.speed, hb.speed, "speed points shorten the attack interval")
}

func TestHunterState_ReviveFraction(t *testing.T) {
	b, err := NewBuild(Borge, 20,
		map[string]int{"impeccable_impacts": 3, "death_is_my_companion": 2},
		nil,
	)
	require.NoError(t, err)

	h := newHunterState(b)
	require.Equal(t, 2, h.maxRevives)

	h.hp = -5
	require.True(t, h.tryRevive())
	// 0.10 + 0.05 * talent level 2
	assert.InDelta(t, h.maxHP*0.20, h.hp, 1e-9)

	h.hp = -5
	require.True(t, h.tryRevive())
	h.hp = -5
	assert.False(t, h.tryRevive(), "third revive must not exist")
	assert.Equal(t, 2, h.revivesUsed)
}

func TestHunterState_OzzyReviveStacksWithSisters(t *testing.T) {
	b, err := NewBuild(Ozzy, 30,
		map[string]int{"multistriker": 3, "death_is_my_companion": 2},
		map[string]int{"blessings_of_the_sisters": 3},
	)
	require.NoError(t, err)
	assert.Equal(t, 5, newHunterState(b).maxRevives)
}

func TestHunterState_KnoxSalvo(t *testing.T) {
	b, err := NewBuild(Knox, 30, nil, map[string]int{"projectiles_per_salvo": 3})
	require.NoError(t, err)

	h := newHunterState(b)
	c := &CoeffsFor(Knox).Hunter
	assert.Equal(t, c.SalvoProjectileBase+3, h.salvoProjectiles)
	assert.Greater(t, h.blockChance, 0.0)
}

func TestHunterState_GadgetsScaleCoreStats(t *testing.T) {
	plain, err := NewBuild(Borge, 10, nil, nil)
	require.NoError(t, err)
	geared, err := NewBuild(Borge, 10, nil, nil,
		WithGadgets(map[string]int{"auto_forge": 10}))
	require.NoError(t, err)

	hp, hg := newHunterState(plain), newHunterState(geared)
	assert.InDelta(t, hp.maxHP*1.10, hg.maxHP, 1e-9)
	assert.InDelta(t, hp.lootMult*1.10, hg.lootMult, 1e-9)
}

func TestHunterState_BonusMultipliers(t *testing.T) {
	b, err := NewBuild(Borge, 10, nil, nil,
		WithBonuses(map[string]float64{"hp_mult": 2.0, "loot_mult": 1.5}))
	require.NoError(t, err)

	plain, err := NewBuild(Borge, 10, nil, nil)
	require.NoError(t, err)

	hb, hp := newHunterState(b), newHunterState(plain)
	assert.InDelta(t, hp.maxHP*2.0, hb.maxHP, 1e-9)
	assert.InDelta(t, hp.lootMult*1.5, hb.lootMult, 1e-9)
}

func TestHunterState_RegenTickCapsAtMax(t *testing.T) {
	b, err := NewBuild(Borge, 10, nil, map[string]int{"regen": 30})
	require.NoError(t, err)

	h := newHunterState(b)
	h.hp = h.maxHP - 0.001
	h.regenTick()
	assert.Equal(t, h.maxHP, h.hp)

	// At full health the tick is a no-op.
	assert.Zero(t, h.regenTick())
}

func TestHunterState_BornForBattlePowerScalesWithMissingHP(t *testing.T) {
	b, err := NewBuild(Borge, 60, nil,
		map[string]int{"book_of_baal": 3, "born_for_battle": 5})
	require.NoError(t, err)

	h := newHunterState(b)
	full := h.effectivePower()
	h.hp = h.maxHP * 0.25
	assert.Greater(t, h.effectivePower(), full)
}
