package sim

import "math"

// hunterState is the mutable per-run combat state derived from an immutable
// Build. One instance exists per simulation run; nothing here is shared
// between runs, which is what keeps the batch fan-out lock-free.
type hunterState struct {
	build *Build
	kind  HunterKind
	level int

	maxHP      float64
	hp         float64
	power      float64
	regen      float64
	dr         float64
	evade      float64
	effect     float64
	critChance float64
	critDamage float64
	speed      float64
	lifesteal  float64

	// Knox salvo mechanics; zero-valued for other kinds.
	blockChance      float64
	chargeChance     float64
	chargeGained     float64
	salvoProjectiles int

	lootMult float64
	xpMult   float64

	maxRevives  int
	revivesUsed int

	// Runtime counters driven by the kind-specific hooks.
	tricksterCharges    int
	decayStacks         int
	soulStacks          int
	empoweredRegen      int
	empoweredBlockRegen int

	stage int
}

// newHunterState derives combat stats from a validated Build. Dispatch is
// over the kind tag; each arm reads its own coefficient table.
func newHunterState(b *Build) *hunterState {
	h := &hunterState{build: b, kind: b.Kind, level: b.Level, lootMult: 1.0, xpMult: 1.0}
	switch b.Kind {
	case Borge:
		h.deriveBorge()
	case Ozzy:
		h.deriveOzzy()
	case Knox:
		h.deriveKnox()
	}

	// Gadgets contribute ~1% per level to HP, power, regen and loot,
	// identically for every kind.
	gadget := 1.0
	for _, lvl := range b.Gadgets {
		gadget += 0.01 * float64(lvl)
	}
	h.maxHP *= gadget
	h.power *= gadget
	h.regen *= gadget
	h.lootMult *= gadget

	// Account-wide bonus multipliers, passed in explicitly on the Build.
	h.maxHP *= b.Bonus("hp_mult")
	h.power *= b.Bonus("power_mult")
	h.lootMult *= b.Bonus("loot_mult")
	h.xpMult *= b.Bonus("xp_mult")

	h.hp = h.maxHP
	h.speed = math.Max(h.speed, 0.1)
	return h
}

// stepYield models the milestone bonus: per-point yield grows every `step`
// points invested.
func stepYield(points int, per, bonus float64, step int) float64 {
	p := float64(points)
	return p * (per + bonus*math.Floor(p/float64(step)))
}

func (h *hunterState) deriveBorge() {
	b := h.build
	c := &CoeffsFor(Borge).Hunter

	ares := float64(b.Attribute("soul_of_ares"))
	ylith := float64(b.Attribute("essence_of_ylith"))
	sensors := float64(b.Attribute("superior_sensors"))
	punches := float64(b.Attribute("explosive_punches"))

	h.maxHP = (c.HPBase + stepYield(b.Attribute("hp"), c.HPPerPoint, c.HPStep, 5) +
		float64(b.Inscription("i3"))*6.0 + float64(b.Inscription("i27"))*24.0) *
		(1.0 + ares*0.01) *
		(1.0 + float64(b.Inscription("i60"))*0.03) *
		(1.0 + float64(b.Relic("disk_of_dawn"))*0.03)

	h.power = (c.PowerBase + stepYield(b.Attribute("power"), c.PowerPerPoint, c.PowerStep, 10) +
		float64(b.Inscription("i13")) + float64(b.Talent("impeccable_impacts"))*2.0) *
		(1.0 + ares*0.002) *
		(1.0 + float64(b.Inscription("i60"))*0.03) *
		(1.0 + float64(b.Relic("long_range_artillery_crawler"))*0.03)

	h.regen = (c.RegenBase + stepYield(b.Attribute("regen"), c.RegenPerPoint, c.RegenStep, 30) +
		ylith*0.04) * (1.0 + ylith*0.009)

	h.dr = float64(b.Attribute("damage_reduction"))*c.DRPerPoint +
		float64(b.Attribute("spartan_lineage"))*0.015 +
		float64(b.Inscription("i24"))*0.004

	h.evade = c.EvadeBase + float64(b.Attribute("evade_chance"))*c.EvadePerPoint + sensors*0.016
	h.effect = c.EffectBase + float64(b.Attribute("effect_chance"))*c.EffectPerPoint +
		sensors*0.012 + float64(b.Inscription("i11"))*0.02

	h.critChance = c.SpecialChanceBase + float64(b.Attribute("special_chance"))*c.SpecialChancePerPoint +
		punches*0.044 + float64(b.Inscription("i4"))*0.0065 +
		float64(b.Gem("innovation_node_#3"))*0.03
	h.critDamage = c.SpecialDamageBase + float64(b.Attribute("special_damage"))*c.SpecialDamagePerPoint +
		punches*0.08

	h.speed = c.SpeedBase - float64(b.Attribute("speed"))*c.SpeedPerPoint -
		float64(b.Inscription("i23"))*0.04

	h.lifesteal = float64(b.Attribute("book_of_baal")) * 0.0111

	h.lootMult = 1.0 + float64(b.Inscription("i14"))*1.1 + float64(b.Inscription("i44"))*1.08 +
		float64(b.Inscription("i60"))*0.03 + float64(b.Attribute("timeless_mastery"))*0.10

	h.maxRevives = b.Talent("death_is_my_companion")
}

func (h *hunterState) deriveOzzy() {
	b := h.build
	c := &CoeffsFor(Ozzy).Hunter

	lotl := float64(b.Attribute("living_off_the_land"))
	ibu := float64(b.Attribute("wings_of_ibu"))

	h.maxHP = (c.HPBase + stepYield(b.Attribute("hp"), c.HPPerPoint, c.HPStep, 5)) *
		(1.0 + lotl*0.02) *
		(1.0 + float64(b.Relic("disk_of_dawn"))*0.03)

	h.power = (c.PowerBase + stepYield(b.Attribute("power"), c.PowerPerPoint, c.PowerStep, 10)) *
		(1.0 + float64(b.Attribute("exo_piercers"))*0.012) *
		(1.0 + float64(b.Relic("bee_gone_companion_drone"))*0.03)

	h.regen = (c.RegenBase + stepYield(b.Attribute("regen"), c.RegenPerPoint, c.RegenStep, 30)) *
		(1.0 + lotl*0.02)

	h.dr = float64(b.Attribute("damage_reduction"))*c.DRPerPoint + ibu*0.026 +
		float64(b.Inscription("i37"))*0.0111

	h.evade = c.EvadeBase + float64(b.Attribute("evade_chance"))*c.EvadePerPoint + ibu*0.005
	h.effect = c.EffectBase + float64(b.Attribute("effect_chance"))*c.EffectPerPoint +
		float64(b.Attribute("extermination_protocol"))*0.028 +
		float64(b.Inscription("i31"))*0.006

	// For Ozzy the special pair drives multistrike, not crits: chance to
	// follow up, and the follow-up's damage fraction.
	h.critChance = c.SpecialChanceBase + float64(b.Attribute("special_chance"))*c.SpecialChancePerPoint +
		float64(b.Inscription("i40"))*0.005 + float64(b.Gem("innovation_node_#3"))*0.03
	h.critDamage = c.SpecialDamageBase + float64(b.Attribute("special_damage"))*c.SpecialDamagePerPoint

	h.speed = c.SpeedBase - float64(b.Attribute("speed"))*c.SpeedPerPoint -
		float64(b.Talent("thousand_needles"))*0.06 -
		float64(b.Inscription("i36"))*0.03

	h.lifesteal = float64(b.Attribute("shimmering_scorpion")) * 0.033

	h.lootMult = 1.0 + float64(b.Inscription("i32"))*0.5 +
		float64(b.Attribute("timeless_mastery"))*0.10
	h.xpMult = 1.0 + float64(b.Inscription("i33"))*0.75

	h.maxRevives = b.Talent("death_is_my_companion") + b.Attribute("blessings_of_the_sisters")
}

func (h *hunterState) deriveKnox() {
	b := h.build
	c := &CoeffsFor(Knox).Hunter

	kraken := float64(b.Attribute("release_the_kraken"))
	pirate := float64(b.Attribute("a_pirates_life_for_knox"))
	efficiency := float64(b.Attribute("serious_efficiency"))

	h.maxHP = (c.HPBase + stepYield(b.Attribute("hp"), c.HPPerPoint, c.HPStep, 5)) *
		(1.0 + kraken*0.005) *
		(1.0 + float64(b.Relic("disk_of_dawn"))*0.03)

	h.power = (c.PowerBase + stepYield(b.Attribute("power"), c.PowerPerPoint, c.PowerStep, 10)) *
		(1.0 + kraken*0.005)

	h.regen = (c.RegenBase + stepYield(b.Attribute("regen"), c.RegenPerPoint, c.RegenStep, 30)) *
		(1.0 + kraken*0.008)

	h.dr = float64(b.Attribute("damage_reduction"))*c.DRPerPoint + pirate*0.009

	h.blockChance = c.BlockBase + float64(b.Attribute("block_chance"))*c.BlockPerPoint +
		float64(b.Attribute("fortification_elixir"))*0.01 + pirate*0.008

	h.effect = c.EffectBase + float64(b.Attribute("effect_chance"))*c.EffectPerPoint +
		efficiency*0.02 + pirate*0.007

	h.chargeChance = c.ChargeChanceBase + float64(b.Attribute("charge_chance"))*c.ChargeChancePer +
		efficiency*0.01 + pirate*0.006
	h.chargeGained = c.ChargeGainedBase + float64(b.Attribute("charge_gained"))*c.ChargeGainedPer +
		float64(b.Attribute("shield_of_poseidon"))*0.1

	h.speed = c.SpeedBase - float64(b.Attribute("reload_time"))*c.SpeedPerPoint
	h.salvoProjectiles = c.SalvoProjectileBase + b.Attribute("projectiles_per_salvo")

	h.critChance = c.SpecialChanceBase
	h.critDamage = c.SpecialDamageBase + float64(b.Talent("finishing_move"))*0.2

	h.lootMult = 1.0 + float64(b.Attribute("timeless_mastery"))*0.13

	h.maxRevives = b.Talent("death_is_my_companion")
}

func (h *hunterState) dead() bool { return h.hp <= 0 }

// effectiveDR folds in the deal-with-death bonus that grows with each
// revive already spent.
func (h *hunterState) effectiveDR() float64 {
	dr := h.dr
	if dwd := h.build.Attribute("deal_with_death"); dwd > 0 && h.revivesUsed > 0 {
		dr += float64(dwd) * 0.016 * float64(h.revivesUsed)
	}
	return math.Min(dr, 0.95)
}

// effectivePower folds in revive, missing-hp and soul-stack bonuses.
func (h *hunterState) effectivePower() float64 {
	power := h.power
	if dwd := h.build.Attribute("deal_with_death"); dwd > 0 && h.revivesUsed > 0 {
		power *= 1.0 + float64(dwd)*0.02*float64(h.revivesUsed)
	}
	if bfb := h.build.Attribute("born_for_battle"); bfb > 0 {
		missing := 1.0 - h.hp/h.maxHP
		power *= 1.0 + missing*float64(bfb)*0.001
	}
	if h.soulStacks > 0 {
		per := 0.005 * (1.0 + float64(h.build.Attribute("soul_amplification"))*0.01)
		power *= 1.0 + float64(h.soulStacks)*per
	}
	return power
}

// effectiveCrit folds in the cycle-of-death bonus per revive spent.
func (h *hunterState) effectiveCrit() (chance, damage float64) {
	chance, damage = h.critChance, h.critDamage
	if cod := h.build.Attribute("cycle_of_death"); cod > 0 && h.revivesUsed > 0 {
		chance += float64(cod) * 0.023 * float64(h.revivesUsed)
		damage += float64(cod) * 0.02 * float64(h.revivesUsed)
	}
	return chance, damage
}

// heal raises hp up to the cap and returns the amount actually restored.
func (h *hunterState) heal(amount float64) float64 {
	healed := math.Min(amount, h.maxHP-h.hp)
	if healed > 0 {
		h.hp += healed
	}
	return healed
}

// regenTick applies one regeneration tick including the temporary
// empowered-regen windows opened by kind hooks.
func (h *hunterState) regenTick() float64 {
	if h.hp >= h.maxHP {
		return 0
	}
	regen := h.regen
	if h.empoweredRegen > 0 {
		h.empoweredRegen--
		regen *= 1.0 + float64(h.build.Attribute("vectid_elixir"))*0.15
	}
	if h.empoweredBlockRegen > 0 {
		h.empoweredBlockRegen--
		regen *= 1.0 + float64(h.build.Attribute("fortification_elixir"))*0.10
	}
	if li := h.build.Attribute("lifedrain_inhalers"); li > 0 {
		regen += (h.maxHP - h.hp) * 0.0008 * float64(li)
	}
	return h.heal(regen)
}

// tryRevive consumes a revive charge if one remains. The revive restores a
// fraction of max hp growing with the revive talent.
func (h *hunterState) tryRevive() bool {
	if h.revivesUsed >= h.maxRevives {
		return false
	}
	h.revivesUsed++
	frac := 0.10 + 0.05*float64(h.build.Talent("death_is_my_companion"))
	h.hp = h.maxHP * frac
	return true
}
