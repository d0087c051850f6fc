package sim

import (
	"math"
	"math/rand"
)

// enemy is the stage-scaled opposition for one encounter. Regular stages
// spawn enemiesPerStage of them; every 100th stage spawns a single boss with
// enrage mechanics and, from stage 200 on, a secondary attack timer.
type enemy struct {
	hp, maxHP  float64
	power      float64
	basePower  float64
	regen      float64
	dr         float64
	evade      float64
	critChance float64
	critDamage float64

	speed      float64
	baseSpeed  float64
	speed2     float64
	baseSpeed2 float64

	isBoss       bool
	hasSecondary bool
	enrageStacks int
	stunnedUntil float64
}

const (
	enemiesPerStage = 10
	bossInterval    = 100

	// At this many enrage stacks a boss deals triple damage and always crits.
	enrageRageThreshold = 200
)

// isBossStage reports whether a stage spawns a boss instead of regular enemies.
func isBossStage(stage int) bool {
	return stage > 0 && stage%bossInterval == 0
}

// bossCycles is the number of completed boss cycles before a stage.
func bossCycles(stage int) int {
	if stage < 1 {
		return 0
	}
	return (stage - 1) / bossInterval
}

// stageScale evaluates the piecewise-linear (plus optional exponential tail)
// stage-scaling ramp.
func stageScale(c *EnemyCoeffs, stage int) float64 {
	s := float64(stage)
	scale := 1.0
	for _, br := range c.ScalingBreaks {
		scale += math.Max(s-br.After, 0) * br.Slope
	}
	scale = math.Max(scale, 1.0)
	if c.ScalingExpAfter > 0 && c.ScalingExpRate > 0 {
		scale *= math.Pow(c.ScalingExpRate, math.Max(s-c.ScalingExpAfter, 0))
	}
	return scale
}

// enemyDR is the opposition's damage reduction; it only appears from stage
// 200 on and scales with completed boss cycles.
func enemyDR(stage int, boss bool) float64 {
	if stage < 200 {
		if boss {
			return 0.05
		}
		return 0.0
	}
	d := float64(bossCycles(stage))
	dr := math.Max(d-2, 0)*0.02 - 0.04
	if boss {
		dr += 0.05
	}
	return math.Max(dr, 0)
}

// enemyEvade appears from stage 100 on.
func enemyEvade(c *EnemyCoeffs, stage int) float64 {
	if stage < 100 {
		return 0.0
	}
	d := float64(bossCycles(stage))
	return math.Max(d-1, 0)*c.EvadeCycle + c.EvadeBase
}

func newEnemy(kind HunterKind, stage int) *enemy {
	return spawnEnemy(kind, stage, false)
}

func newBoss(kind HunterKind, stage int) *enemy {
	e := spawnEnemy(kind, stage, true)
	e.isBoss = true
	if stage >= 200 {
		e.hasSecondary = true
		e.speed2 = e.speed * 1.8
		e.baseSpeed2 = e.speed2
	}
	return e
}

func spawnEnemy(kind HunterKind, stage int, boss bool) *enemy {
	c := &CoeffsFor(kind).Enemy
	s := float64(stage)
	scale := stageScale(c, stage)
	cycle := float64(bossCycles(stage))

	hp := (c.HPBase + s*c.HPSlope) * scale * math.Pow(c.HPCycleGrowth, cycle)
	power := (c.PowerBase + s*c.PowerSlope) * scale * math.Pow(c.PowerCycleGrowth, cycle)
	regen := math.Max(s*c.RegenSlope*scale*math.Pow(c.RegenCycleGrowth, cycle), 0)
	speed := math.Max(c.SpeedBase-s*c.SpeedSlope, 0.5)

	critChance := math.Min(c.CritChanceBase+s*c.CritChanceSlope, c.CritChanceCap)
	critDamage := math.Min(c.CritDamageBase+s*c.CritDamageSlope, c.CritDamageCap)

	if boss {
		hp *= c.BossHPMult
		power *= c.BossPowerMult
		regen *= c.BossRegenMult
		speed *= c.BossSpeedMult
		critChance = math.Min(critChance+0.04, c.CritChanceCap+0.05)
	}

	return &enemy{
		hp: hp, maxHP: hp,
		power: power, basePower: power,
		regen:      regen,
		dr:         enemyDR(stage, boss),
		evade:      enemyEvade(c, stage),
		critChance: critChance,
		critDamage: critDamage,
		speed:      speed,
		baseSpeed:  speed,
	}
}

func (e *enemy) dead() bool { return e.hp <= 0 }

// takeDamage applies the enemy's damage reduction and returns the damage
// actually dealt.
func (e *enemy) takeDamage(dmg float64) float64 {
	actual := dmg * (1.0 - e.dr)
	e.hp -= actual
	return actual
}

func (e *enemy) regenTick() {
	if e.hp > 0 && e.hp < e.maxHP {
		e.hp = math.Min(e.hp+e.regen, e.maxHP)
	}
}

// attackDamage rolls the enemy's outgoing damage. At maximum enrage the
// boss deals triple base damage and always crits.
func (e *enemy) attackDamage(rng *rand.Rand) (dmg float64, crit bool) {
	power := e.basePower
	critChance := e.critChance
	if e.enrageStacks > enrageRageThreshold {
		power *= 3.0
		critChance = 1.0
	}
	if rng.Float64() < critChance {
		return power * e.critDamage, true
	}
	return power, false
}

// addEnrage accumulates one enrage stack, speeding up both attack timers.
// Enrage never raises damage until the rage threshold trips.
func (e *enemy) addEnrage() {
	if !e.isBoss {
		return
	}
	e.enrageStacks++
	frac := float64(e.enrageStacks) / float64(enrageRageThreshold)
	e.speed = math.Max(e.baseSpeed-e.baseSpeed*frac, 0.5)
	if e.hasSecondary && e.baseSpeed2 > 0 {
		e.speed2 = math.Max(e.baseSpeed2-e.baseSpeed2*frac, 0.5)
	}
}
