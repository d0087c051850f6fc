package sim

import (
	"math"
	"math/rand"
)

// combat holds the shared per-run resolution state. Both engine backends
// drive the exact same methods in the exact same order; only the scheduling
// machinery around them differs. Every random draw happens inside these
// methods, so for a fixed seed the two backends consume the rng stream
// identically and produce identical results.
type combat struct {
	h      *hunterState
	res    *SimulationResult
	rng    *rand.Rand
	coeffs *KindCoeffs
	cfg    *EngineConfig

	stage     int
	remaining int
	cur       *enemy

	// Actions spent on the current encounter; the per-encounter cap trips
	// an abort when a fight stalls (mutual regen exceeding damage output).
	encounterActions int

	// One-shot attack-speed bonus from the fires-of-war stun follow-up,
	// consumed by the next attack-interval query.
	fowBonus float64
}

func newCombat(b *Build, cfg *EngineConfig, seed RunSeed) *combat {
	res := &SimulationResult{Seed: seed}
	return &combat{
		h:      newHunterState(b),
		res:    res,
		rng:    NewRunRNG(seed),
		coeffs: CoeffsFor(b.Kind),
		cfg:    cfg,
	}
}

// attackInterval is the delay until the hunter's next attack, consuming any
// pending one-shot speed bonus.
func (c *combat) attackInterval() float64 {
	iv := c.h.speed - c.fowBonus
	c.fowBonus = 0
	return math.Max(iv, 0.1)
}

// startStage spawns the stage's opposition and readies the first enemy.
func (c *combat) startStage(stage int) {
	c.stage = stage
	if isBossStage(stage) {
		c.remaining = 1
	} else {
		c.remaining = enemiesPerStage
	}
	c.spawnNext()
}

// spawnNext pops the next enemy of the stage and applies on-spawn effects.
// Callers check remaining > 0 first.
func (c *combat) spawnNext() {
	c.remaining--
	if isBossStage(c.stage) {
		c.cur = newBoss(c.h.kind, c.stage)
	} else {
		c.cur = newEnemy(c.h.kind, c.stage)
	}
	e := c.cur
	b := c.h.build

	// Presence-of-god carves a slice off the spawn's health pool.
	if pog := b.Talent("presence_of_god"); pog > 0 {
		e.hp -= e.maxHP * 0.015 * float64(pog)
	}
	// Omen talents suppress the spawn's regeneration.
	if ood := b.Talent("omen_of_defeat"); ood > 0 {
		e.regen *= math.Max(1.0-0.08*float64(ood), 0)
	}
	if od := b.Talent("omen_of_decay"); od > 0 {
		e.regen *= math.Max(1.0-0.07*float64(od), 0)
	}
	if gom := b.Attribute("gift_of_medusa"); gom > 0 {
		e.regen *= math.Max(1.0-0.04*float64(gom), 0)
	}
	if snek := b.Attribute("soul_of_snek"); snek > 0 {
		e.power *= 1.0 - math.Min(0.012*float64(snek), 0.5)
		e.basePower = e.power
	}

	c.h.decayStacks = 0
	c.encounterActions = 0
}

// spendAction books one scheduled action against both the run total and the
// per-encounter cap. Returns false once the encounter cap is exceeded.
func (c *combat) spendAction() bool {
	c.res.Actions++
	c.encounterActions++
	return c.encounterActions <= c.cfg.ActionCap
}

// hunterAttack resolves one hunter attack against the current enemy and
// reports whether it died. Kind mechanics dispatch off the tag.
func (c *combat) hunterAttack() (killed bool) {
	e := c.cur

	// Enemy evasion checks once per attack, not per projectile.
	if e.evade > 0 && c.rng.Float64() < e.evade {
		return false
	}

	var dmg float64
	switch c.h.kind {
	case Borge:
		dmg = c.borgeAttackDamage()
	case Ozzy:
		dmg = c.ozzyAttackDamage()
	case Knox:
		dmg = c.knoxAttackDamage()
	}

	dealt := e.takeDamage(dmg)
	c.res.DamageDealt += dealt

	if c.h.lifesteal > 0 {
		c.h.heal(dealt * c.h.lifesteal)
	}
	if lh := c.h.build.Talent("life_of_the_hunt"); lh > 0 {
		c.h.heal(dealt * 0.006 * float64(lh))
	}

	// Effect procs stun the target and arm the fires-of-war follow-up.
	if c.rng.Float64() < c.h.effect {
		c.res.EffectProcs++
		c.applyStun(e)
	}

	if e.dead() {
		c.onKill()
		return true
	}
	return false
}

func (c *combat) applyStun(e *enemy) {
	duration := 0.65
	if e.isBoss {
		duration = 0.25
	}
	if ii := c.h.build.Talent("impeccable_impacts"); ii > 0 {
		duration += 0.05 * float64(ii)
	}
	e.stunnedUntil = math.Max(e.stunnedUntil, c.res.ElapsedTime+duration)
	if fow := c.h.build.Talent("fires_of_war"); fow > 0 {
		c.fowBonus = 0.1 * float64(fow)
	}
	if cs := c.h.build.Talent("crippling_shots"); cs > 0 {
		e.power *= 1.0 - math.Min(0.03*float64(cs), 0.3)
		e.basePower = e.power
	}
}

func (c *combat) borgeAttackDamage() float64 {
	dmg := c.h.effectivePower()
	chance, mult := c.h.effectiveCrit()
	if c.rng.Float64() < chance {
		c.res.Crits++
		if wa := c.h.build.Attribute("weakspot_analysis"); wa > 0 {
			mult += 0.03 * float64(wa)
		}
		dmg *= mult
	}
	return dmg
}

func (c *combat) ozzyAttackDamage() float64 {
	b := c.h.build
	power := c.h.effectivePower()
	dmg := power

	// Multistrike: a follow-up hit at a fraction of base power. A banked
	// trickster charge guarantees it.
	chance := c.h.critChance + 0.015*float64(b.Talent("multistriker"))
	multistrike := c.rng.Float64() < chance
	if !multistrike && c.h.tricksterCharges > 0 {
		c.h.tricksterCharges--
		multistrike = true
	}
	if multistrike {
		c.res.Crits++
		dmg += power * c.h.critDamage
	}
	if eb := b.Talent("echo_bullets"); eb > 0 {
		if c.rng.Float64() < 0.05*float64(eb) {
			dmg += power * 0.5
		}
	}

	// Decay stacks shave a sliver of the target's health pool per hit.
	if ood := b.Talent("omen_of_decay"); ood > 0 {
		dmg += float64(c.h.decayStacks) * 0.001 * float64(ood) * c.cur.maxHP
		c.h.decayStacks++
	}
	return dmg
}

func (c *combat) knoxAttackDamage() float64 {
	b := c.h.build
	power := c.h.effectivePower()
	perShot := power / float64(c.h.salvoProjectiles)
	if spa := b.Attribute("space_pirate_armory"); spa > 0 {
		perShot *= 1.0 + 0.01*float64(spa)
	}

	hits := c.h.salvoProjectiles
	if gb := b.Talent("ghost_bullets"); gb > 0 {
		pierce := 0.02 * float64(gb)
		for i := 0; i < c.h.salvoProjectiles; i++ {
			if c.rng.Float64() < pierce {
				hits++
			}
		}
	}
	dmg := perShot * float64(hits)

	chance, mult := c.h.effectiveCrit()
	if c.rng.Float64() < chance {
		c.res.Crits++
		dmg *= mult
	}

	// Charge roll banks souls that feed effectivePower.
	if c.rng.Float64() < c.h.chargeChance {
		c.h.soulStacks += int(math.Round(c.h.chargeGained))
	}
	return dmg
}

// onKill applies kill rewards and kill-triggered effects.
func (c *combat) onKill() {
	b := c.h.build
	c.res.Kills++
	if c.cur.isBoss {
		c.res.BossKills++
	}

	mult := c.h.lootMult
	if cll := b.Talent("call_me_lucky_loot"); cll > 0 {
		if c.rng.Float64() < 0.04*float64(cll) {
			mult *= 2.0
		}
	}
	awardKill(c.res, &c.coeffs.Loot, c.stage, mult)

	if ua := b.Talent("unfair_advantage"); ua > 0 {
		c.h.heal(c.h.maxHP * 0.02 * float64(ua))
		if b.Attribute("vectid_elixir") > 0 {
			c.h.empoweredRegen = 2
		}
	}
	if tb := b.Talent("tricksters_boon"); tb > 0 {
		if c.rng.Float64() < 0.12*float64(tb) {
			c.h.tricksterCharges++
		}
	}
}

// stageCleared awards stage experience and stage-clear effects; it returns
// ErrNumericOverflow if totals left the finite range.
func (c *combat) stageCleared() error {
	c.res.XP += stageXP(&c.coeffs.Loot, c.stage, c.h.xpMult)
	c.res.FinalStage = c.stage
	if ca := c.h.build.Talent("calypsos_advantage"); ca > 0 {
		c.h.soulStacks += ca
	}
	return c.res.checkOverflow()
}

// stageOutcome tells the scheduling layer what changed after a kill.
type stageOutcome int

const (
	newEnemySpawned stageOutcome = iota
	nextStageStarted
	runComplete
)

// afterKill advances past a dead enemy: next spawn, next stage, or run end.
// Backends reset the opposition's attack timers on the first two outcomes.
func (c *combat) afterKill() (stageOutcome, error) {
	if c.remaining > 0 {
		c.spawnNext()
		return newEnemySpawned, nil
	}
	if err := c.stageCleared(); err != nil {
		return runComplete, err
	}
	if c.stage >= c.cfg.MaxStage {
		c.res.Cause = CauseStageCap
		return runComplete, nil
	}
	c.startStage(c.stage + 1)
	return nextStageStarted, nil
}

// enemyAttack resolves one incoming hit. secondary marks the boss's extra
// attack timer. It reports whether the hunter died with no revive left.
func (c *combat) enemyAttack(secondary bool) (hunterDown bool) {
	e := c.cur

	if e.isBoss {
		e.addEnrage()
	}

	dmg, _ := e.attackDamage(c.rng)
	if secondary {
		dmg *= 0.5
	}

	// Evade (or block, for the salvo kind) checks before mitigation.
	if c.h.kind == Knox {
		if c.rng.Float64() < c.h.blockChance {
			dmg *= 0.5
			if c.h.build.Attribute("fortification_elixir") > 0 {
				c.h.empoweredBlockRegen = 2
			}
		}
	} else if c.h.evade > 0 && c.rng.Float64() < c.h.evade {
		c.res.Evades++
		if dod := c.h.build.Attribute("dance_of_dashes"); dod > 0 {
			if c.rng.Float64() < 0.2*float64(dod) {
				c.h.tricksterCharges++
			}
		}
		return false
	}

	taken := dmg * (1.0 - c.h.effectiveDR())
	c.h.hp -= taken
	c.res.DamageTaken += taken

	// Helltouch reflects a fraction of the hit back at the attacker.
	if hb := c.h.build.Attribute("helltouch_barrier"); hb > 0 {
		reflected := c.cur.takeDamage(taken * 0.08 * float64(hb))
		c.res.DamageDealt += reflected
		if c.cur.dead() {
			c.onKill()
		}
	}

	if c.h.dead() {
		if c.h.tryRevive() {
			c.res.RevivesUsed++
			return false
		}
		return true
	}
	return false
}

// regenTick advances both regeneration pools. Runs on a fixed one-second
// cadence in both backends.
func (c *combat) regenTick() {
	c.h.regenTick()
	if c.cur != nil && !c.cur.dead() {
		c.cur.regenTick()
	}
}
