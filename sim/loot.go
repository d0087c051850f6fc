package sim

import "math"

// Loot and experience follow closed-form geometric series in the stage
// number, so a cleared stage awards an exact amount with no per-kill
// randomness. Rarity is a fixed three-way split of the per-kill value.

// lootPerKill is the value of one kill on a stage (0-indexed internally,
// callers pass the 1-based stage).
func lootPerKill(c *LootCoeffs, stage int, mult float64) float64 {
	v := c.KillBase * 0.01 * math.Pow(c.GrowthRate, float64(stage+1))
	if stage >= 101 {
		v *= c.Post100Mult
	}
	return v * mult
}

// awardKill credits one kill's loot into the result's rarity pools.
func awardKill(r *SimulationResult, c *LootCoeffs, stage int, mult float64) {
	v := lootPerKill(c, stage, mult)
	r.LootCommon += v * c.CommonShare
	r.LootUncommon += v * c.UncommonShare
	r.LootRare += v * c.RareShare
}

// stageXP is the experience for clearing a stage.
func stageXP(c *LootCoeffs, stage int, mult float64) float64 {
	return (c.XPBase + c.XPSlope*float64(stage)) * math.Pow(c.XPGrowth, float64(stage)) * mult
}
