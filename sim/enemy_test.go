package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBossStage(t *testing.T) {
	tests := []struct {
		stage int
		boss  bool
	}{
		{1, false}, {99, false}, {100, true}, {101, false},
		{200, true}, {250, false}, {1000, true},
	}
	for _, tt := range tests {
		if got := isBossStage(tt.stage); got != tt.boss {
			t.Errorf("isBossStage(%d) = %v, want %v", tt.stage, got, tt.boss)
		}
	}
}

func TestBossCycles(t *testing.T) {
	tests := []struct {
		stage  int
		cycles int
	}{
		{1, 0}, {100, 0}, {101, 1}, {200, 1}, {201, 2}, {350, 3},
	}
	for _, tt := range tests {
		if got := bossCycles(tt.stage); got != tt.cycles {
			t.Errorf("bossCycles(%d) = %d, want %d", tt.stage, got, tt.cycles)
		}
	}
}

func TestSpawnEnemy_ScalesWithStage(t *testing.T) {
	early := newEnemy(Borge, 10)
	late := newEnemy(Borge, 150)

	assert.Greater(t, late.hp, early.hp)
	assert.Greater(t, late.power, early.power)
	assert.Less(t, late.speed, early.speed, "enemies attack faster at depth")
}

func TestNewBoss_Multipliers(t *testing.T) {
	regular := newEnemy(Borge, 100)
	boss := newBoss(Borge, 100)

	c := &CoeffsFor(Borge).Enemy
	assert.InDelta(t, regular.maxHP*c.BossHPMult, boss.maxHP, 1e-6)
	assert.True(t, boss.isBoss)
	assert.False(t, boss.hasSecondary, "secondary attack starts at stage 200")

	deep := newBoss(Borge, 200)
	assert.True(t, deep.hasSecondary)
	assert.Greater(t, deep.speed2, deep.speed)
}

func TestEnemyDR_Schedule(t *testing.T) {
	assert.Zero(t, enemyDR(150, false), "no regular-enemy mitigation before stage 200")
	assert.InDelta(t, 0.05, enemyDR(100, true), 1e-9)
	assert.Greater(t, enemyDR(700, false), 0.0)
	assert.Greater(t, enemyDR(700, true), enemyDR(700, false))
}

func TestEnemy_EnrageRamp(t *testing.T) {
	boss := newBoss(Borge, 200)
	base := boss.speed

	for i := 0; i < 50; i++ {
		boss.addEnrage()
	}
	assert.Less(t, boss.speed, base)
	assert.GreaterOrEqual(t, boss.speed, 0.5)

	// Past the rage threshold the boss triples damage and always crits.
	boss.enrageStacks = enrageRageThreshold + 1
	rng := rand.New(rand.NewSource(1))
	dmg, crit := boss.attackDamage(rng)
	assert.True(t, crit)
	assert.InDelta(t, boss.basePower*3.0*boss.critDamage, dmg, 1e-6)
}

func TestEnemy_EnrageIgnoredForRegulars(t *testing.T) {
	e := newEnemy(Borge, 10)
	speed := e.speed
	e.addEnrage()
	assert.Equal(t, speed, e.speed)
	assert.Zero(t, e.enrageStacks)
}

func TestEnemy_TakeDamageAppliesDR(t *testing.T) {
	e := newEnemy(Borge, 700)
	assert.Greater(t, e.dr, 0.0)

	hpBefore := e.hp
	dealt := e.takeDamage(100)
	assert.InDelta(t, 100*(1-e.dr), dealt, 1e-9)
	assert.InDelta(t, hpBefore-dealt, e.hp, 1e-9)
}
