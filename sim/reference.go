package sim

// referenceEngine is the event-driven backend: a discrete-event loop over a
// priority heap. It is deliberately straightforward and serves as the
// semantic ground truth for parity validation.
type referenceEngine struct{}

func (referenceEngine) Kind() BackendKind { return BackendReference }

func (referenceEngine) Run(b *Build, cfg *EngineConfig, seed RunSeed) (*SimulationResult, error) {
	c := newCombat(b, cfg, seed)
	s := newScheduler()
	gen := 0

	c.startStage(1)
	s.push(c.attackInterval(), evHunterAttack, 0)
	scheduleEnemy(s, c, 0, 0)
	s.push(1.0, evRegen, 0)

	abort := func() (*SimulationResult, error) {
		c.res.Cause = CauseAborted
		return c.res, nil
	}

	for {
		ev := s.pop()

		switch ev.kind {
		case evHunterAttack:
			c.res.ElapsedTime = ev.at
			if !c.spendAction() {
				return abort()
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
				gen++
				scheduleEnemy(s, c, ev.at, gen)
			}
			s.push(ev.at+c.attackInterval(), evHunterAttack, 0)

		case evEnemyAttack, evBossSecondary:
			if ev.gen != gen {
				continue // timer of an already dead enemy
			}
			if c.cur.stunnedUntil > ev.at {
				s.push(c.cur.stunnedUntil, ev.kind, ev.gen)
				continue
			}
			c.res.ElapsedTime = ev.at
			if !c.spendAction() {
				return abort()
			}
			if c.enemyAttack(ev.kind == evBossSecondary) {
				c.res.Cause = CauseDeath
				return c.res, nil
			}
			if c.cur.dead() {
				// Reflected damage finished the enemy off.
				outcome, err := c.afterKill()
				if err != nil {
					return c.res, err
				}
				if outcome == runComplete {
					return c.res, nil
				}
				gen++
				scheduleEnemy(s, c, ev.at, gen)
				continue
			}
			interval := c.cur.speed
			if ev.kind == evBossSecondary {
				interval = c.cur.speed2
			}
			s.push(ev.at+interval, ev.kind, ev.gen)

		case evRegen:
			c.res.ElapsedTime = ev.at
			if !c.spendAction() {
				return abort()
			}
			c.regenTick()
			s.push(ev.at+1.0, evRegen, 0)
		}
	}
}

// scheduleEnemy arms the freshly spawned enemy's attack timers.
func scheduleEnemy(s *scheduler, c *combat, now float64, gen int) {
	s.push(now+c.cur.speed, evEnemyAttack, gen)
	if c.cur.hasSecondary {
		s.push(now+c.cur.speed2, evBossSecondary, gen)
	}
}
