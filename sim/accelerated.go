package sim

import "math"

// acceleratedEngine is the batch-throughput backend: a tight loop over four
// absolute timers instead of a heap, with zero allocation per event. It
// drives the identical resolution methods in the identical order (timer
// ties break hunter < enemy < boss-secondary < regen, matching the event
// priorities), so for a fixed seed it reproduces the reference backend's
// results exactly.
type acceleratedEngine struct{}

func (acceleratedEngine) Kind() BackendKind { return BackendAccelerated }

func (acceleratedEngine) Run(b *Build, cfg *EngineConfig, seed RunSeed) (*SimulationResult, error) {
	c := newCombat(b, cfg, seed)
	c.startStage(1)

	inf := math.Inf(1)
	tHunter := c.attackInterval()
	tEnemy := c.cur.speed
	tBoss := inf
	if c.cur.hasSecondary {
		tBoss = c.cur.speed2
	}
	tRegen := 1.0

	armEnemy := func(now float64) {
		tEnemy = now + c.cur.speed
		if c.cur.hasSecondary {
			tBoss = now + c.cur.speed2
		} else {
			tBoss = inf
		}
	}

	for {
		// Next timer to fire; ties resolve in priority order.
		now := tHunter
		kind := evHunterAttack
		if tEnemy < now {
			now, kind = tEnemy, evEnemyAttack
		}
		if tBoss < now {
			now, kind = tBoss, evBossSecondary
		}
		if tRegen < now {
			now, kind = tRegen, evRegen
		}

		switch kind {
		case evHunterAttack:
			c.res.ElapsedTime = now
			if !c.spendAction() {
				c.res.Cause = CauseAborted
				return c.res, nil
			}
			c.hunterAttack()
			if c.cur.dead() {
				outcome, err := c.afterKill()
				if err != nil {
					return c.res, err
				}
				if outcome == runComplete {
					return c.res, nil
				}
				armEnemy(now)
			}
			tHunter = now + c.attackInterval()

		case evEnemyAttack, evBossSecondary:
			if c.cur.stunnedUntil > now {
				if kind == evEnemyAttack {
					tEnemy = c.cur.stunnedUntil
				} else {
					tBoss = c.cur.stunnedUntil
				}
				continue
			}
			c.res.ElapsedTime = now
			if !c.spendAction() {
				c.res.Cause = CauseAborted
				return c.res, nil
			}
			if c.enemyAttack(kind == evBossSecondary) {
				c.res.Cause = CauseDeath
				return c.res, nil
			}
			if c.cur.dead() {
				outcome, err := c.afterKill()
				if err != nil {
					return c.res, err
				}
				if outcome == runComplete {
					return c.res, nil
				}
				armEnemy(now)
				continue
			}
			if kind == evEnemyAttack {
				tEnemy = now + c.cur.speed
			} else {
				tBoss = now + c.cur.speed2
			}

		case evRegen:
			c.res.ElapsedTime = now
			if !c.spendAction() {
				c.res.Cause = CauseAborted
				return c.res, nil
			}
			c.regenTick()
			tRegen = now + 1.0
		}
	}
}
