package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Per-archetype formula coefficients. The real game's balance numbers were
// reverse engineered and drift between game versions, so everything a
// recalibration could touch lives here: defaults in code, overridable from a
// YAML table without changing engine code.

// HunterCoeffs derives base combat stats from allocated attribute points.
// The step fields model the game's milestone bonuses (every 5/10/30 points
// the per-point yield increases).
type HunterCoeffs struct {
	HPBase     float64 `yaml:"hp_base"`
	HPPerPoint float64 `yaml:"hp_per_point"`
	HPStep     float64 `yaml:"hp_step"` // extra per point per floor(points/5)

	PowerBase     float64 `yaml:"power_base"`
	PowerPerPoint float64 `yaml:"power_per_point"`
	PowerStep     float64 `yaml:"power_step"` // per floor(points/10)

	RegenBase     float64 `yaml:"regen_base"`
	RegenPerPoint float64 `yaml:"regen_per_point"`
	RegenStep     float64 `yaml:"regen_step"` // per floor(points/30)

	DRPerPoint float64 `yaml:"dr_per_point"`

	EvadeBase     float64 `yaml:"evade_base"`
	EvadePerPoint float64 `yaml:"evade_per_point"`

	EffectBase     float64 `yaml:"effect_base"`
	EffectPerPoint float64 `yaml:"effect_per_point"`

	SpecialChanceBase     float64 `yaml:"special_chance_base"`
	SpecialChancePerPoint float64 `yaml:"special_chance_per_point"`

	SpecialDamageBase     float64 `yaml:"special_damage_base"`
	SpecialDamagePerPoint float64 `yaml:"special_damage_per_point"`

	SpeedBase     float64 `yaml:"speed_base"`
	SpeedPerPoint float64 `yaml:"speed_per_point"` // subtracted per point

	// Knox-only salvo mechanics; zero for other kinds.
	BlockBase           float64 `yaml:"block_base"`
	BlockPerPoint       float64 `yaml:"block_per_point"`
	ChargeChanceBase    float64 `yaml:"charge_chance_base"`
	ChargeChancePer     float64 `yaml:"charge_chance_per_point"`
	ChargeGainedBase    float64 `yaml:"charge_gained_base"`
	ChargeGainedPer     float64 `yaml:"charge_gained_per_point"`
	SalvoProjectileBase int     `yaml:"salvo_projectile_base"`
}

// ScalingBreak adds Slope per stage beyond After to the enemy stage-scaling
// multiplier (piecewise-linear ramp extracted from the game).
type ScalingBreak struct {
	After float64 `yaml:"after"`
	Slope float64 `yaml:"slope"`
}

// EnemyCoeffs generates stage-scaled opposition. Growth factors apply per
// completed boss cycle (every 100 stages).
type EnemyCoeffs struct {
	HPBase        float64 `yaml:"hp_base"`
	HPSlope       float64 `yaml:"hp_slope"`
	HPCycleGrowth float64 `yaml:"hp_cycle_growth"`

	PowerBase        float64 `yaml:"power_base"`
	PowerSlope       float64 `yaml:"power_slope"`
	PowerCycleGrowth float64 `yaml:"power_cycle_growth"`

	RegenSlope       float64 `yaml:"regen_slope"`
	RegenCycleGrowth float64 `yaml:"regen_cycle_growth"`

	SpeedBase  float64 `yaml:"speed_base"`
	SpeedSlope float64 `yaml:"speed_slope"` // subtracted per stage

	CritChanceBase  float64 `yaml:"crit_chance_base"`
	CritChanceSlope float64 `yaml:"crit_chance_slope"`
	CritChanceCap   float64 `yaml:"crit_chance_cap"`

	CritDamageBase  float64 `yaml:"crit_damage_base"`
	CritDamageSlope float64 `yaml:"crit_damage_slope"`
	CritDamageCap   float64 `yaml:"crit_damage_cap"`

	// Enemy evasion appears from stage 100 on and scales per boss cycle.
	EvadeBase  float64 `yaml:"evade_base"`
	EvadeCycle float64 `yaml:"evade_cycle"`

	BossHPMult    float64 `yaml:"boss_hp_mult"`
	BossPowerMult float64 `yaml:"boss_power_mult"`
	BossRegenMult float64 `yaml:"boss_regen_mult"`
	BossSpeedMult float64 `yaml:"boss_speed_mult"`

	ScalingBreaks   []ScalingBreak `yaml:"scaling_breaks"`
	ScalingExpAfter float64        `yaml:"scaling_exp_after"` // 0 disables
	ScalingExpRate  float64        `yaml:"scaling_exp_rate"`
}

// LootCoeffs drives the geometric per-stage loot and experience series.
type LootCoeffs struct {
	KillBase      float64 `yaml:"kill_base"`
	GrowthRate    float64 `yaml:"growth_rate"`   // per-stage geometric factor
	Post100Mult   float64 `yaml:"post_100_mult"` // applied from stage 101 on
	CommonShare   float64 `yaml:"common_share"`
	UncommonShare float64 `yaml:"uncommon_share"`
	RareShare     float64 `yaml:"rare_share"`

	XPBase   float64 `yaml:"xp_base"`
	XPSlope  float64 `yaml:"xp_slope"`
	XPGrowth float64 `yaml:"xp_growth"`
}

// KindCoeffs bundles everything recalibratable for one archetype.
type KindCoeffs struct {
	Hunter HunterCoeffs `yaml:"hunter"`
	Enemy  EnemyCoeffs  `yaml:"enemy"`
	Loot   LootCoeffs   `yaml:"loot"`
}

var multiScalingBreaks = []ScalingBreak{
	{After: 149, Slope: 0.006}, {After: 199, Slope: 0.006},
	{After: 249, Slope: 0.006}, {After: 299, Slope: 0.006},
	{After: 309, Slope: 0.003}, {After: 319, Slope: 0.003},
	{After: 329, Slope: 0.004}, {After: 339, Slope: 0.004},
	{After: 349, Slope: 0.005}, {After: 359, Slope: 0.005},
	{After: 369, Slope: 0.006}, {After: 379, Slope: 0.006},
	{After: 389, Slope: 0.007},
}

var knoxScalingBreaks = []ScalingBreak{
	{After: 49, Slope: 0.006}, {After: 99, Slope: 0.006},
	{After: 119, Slope: 0.01}, {After: 129, Slope: 0.008},
	{After: 139, Slope: 0.006}, {After: 149, Slope: 0.006},
	{After: 159, Slope: 0.006}, {After: 169, Slope: 0.006},
	{After: 179, Slope: 0.006}, {After: 189, Slope: 0.006},
	{After: 199, Slope: 0.006}, {After: 219, Slope: 0.02},
	{After: 249, Slope: 0.006}, {After: 299, Slope: 0.006},
	{After: 309, Slope: 0.003}, {After: 319, Slope: 0.02},
	{After: 329, Slope: 0.004}, {After: 339, Slope: 0.004},
	{After: 349, Slope: 0.005}, {After: 359, Slope: 0.005},
	{After: 369, Slope: 0.006}, {After: 379, Slope: 0.006},
	{After: 389, Slope: 0.007},
}

var defaultCoeffs = map[HunterKind]*KindCoeffs{
	Borge: {
		Hunter: HunterCoeffs{
			HPBase: 43.0, HPPerPoint: 2.50, HPStep: 0.01,
			PowerBase: 3.0, PowerPerPoint: 0.5, PowerStep: 0.01,
			RegenBase: 0.02, RegenPerPoint: 0.03, RegenStep: 0.01,
			DRPerPoint: 0.0144,
			EvadeBase:  0.01, EvadePerPoint: 0.0034,
			EffectBase: 0.04, EffectPerPoint: 0.005,
			SpecialChanceBase: 0.05, SpecialChancePerPoint: 0.0018,
			SpecialDamageBase: 1.30, SpecialDamagePerPoint: 0.01,
			SpeedBase: 5.0, SpeedPerPoint: 0.03,
		},
		Enemy: EnemyCoeffs{
			HPBase: 9.0, HPSlope: 4.0, HPCycleGrowth: 2.85,
			PowerBase: 2.5, PowerSlope: 0.7, PowerCycleGrowth: 2.85,
			RegenSlope: 0.08, RegenCycleGrowth: 1.052,
			SpeedBase: 4.526, SpeedSlope: 0.006,
			CritChanceBase: 0.0322, CritChanceSlope: 0.0004, CritChanceCap: 0.25,
			CritDamageBase: 1.212, CritDamageSlope: 0.008, CritDamageCap: 2.5,
			EvadeBase: 0.004, EvadeCycle: 0.004,
			BossHPMult: 90.0, BossPowerMult: 3.63, BossRegenMult: 1.92, BossSpeedMult: 2.42,
			ScalingBreaks: multiScalingBreaks, ScalingExpAfter: 350, ScalingExpRate: 1.01,
		},
		Loot: LootCoeffs{
			KillBase: 1.0, GrowthRate: 1.05, Post100Mult: 5.0,
			CommonShare: 0.379, UncommonShare: 0.357, RareShare: 0.264,
			XPBase: 65.0, XPSlope: 15.0, XPGrowth: 1.04,
		},
	},
	Ozzy: {
		Hunter: HunterCoeffs{
			HPBase: 16.0, HPPerPoint: 2.0, HPStep: 0.03,
			PowerBase: 2.0, PowerPerPoint: 0.3, PowerStep: 0.01,
			RegenBase: 0.1, RegenPerPoint: 0.05, RegenStep: 0.01,
			DRPerPoint: 0.0035,
			EvadeBase:  0.05, EvadePerPoint: 0.0062,
			EffectBase: 0.04, EffectPerPoint: 0.0035,
			SpecialChanceBase: 0.05, SpecialChancePerPoint: 0.0038,
			SpecialDamageBase: 0.25, SpecialDamagePerPoint: 0.01,
			SpeedBase: 4.0, SpeedPerPoint: 0.02,
		},
		Enemy: EnemyCoeffs{
			HPBase: 11.0, HPSlope: 6.0, HPCycleGrowth: 2.9,
			PowerBase: 1.35, PowerSlope: 0.75, PowerCycleGrowth: 2.7,
			RegenSlope: 0.1, RegenCycleGrowth: 1.25,
			SpeedBase: 3.2, SpeedSlope: 0.004,
			CritChanceBase: 0.0994, CritChanceSlope: 0.0006, CritChanceCap: 0.25,
			CritDamageBase: 1.03, CritDamageSlope: 0.008, CritDamageCap: 2.5,
			EvadeBase: 0.01, EvadeCycle: 0.01,
			BossHPMult: 48.0, BossPowerMult: 3.0, BossRegenMult: 6.0, BossSpeedMult: 2.45,
			ScalingBreaks: multiScalingBreaks, ScalingExpAfter: 350, ScalingExpRate: 1.01,
		},
		Loot: LootCoeffs{
			KillBase: 1.0, GrowthRate: 1.05, Post100Mult: 5.0,
			CommonShare: 0.379, UncommonShare: 0.357, RareShare: 0.264,
			XPBase: 65.0, XPSlope: 15.0, XPGrowth: 1.04,
		},
	},
	Knox: {
		Hunter: HunterCoeffs{
			HPBase: 20.0, HPPerPoint: 2.0, HPStep: 0.02,
			PowerBase: 2.5, PowerPerPoint: 0.4, PowerStep: 0.01,
			RegenBase: 0.15, RegenPerPoint: 0.04, RegenStep: 0.01,
			DRPerPoint: 0.01,
			EffectBase: 0.04, EffectPerPoint: 0.004,
			SpecialChanceBase: 0.10,
			SpecialDamageBase: 1.0,
			SpeedBase: 4.0, SpeedPerPoint: 0.02,
			BlockBase: 0.05, BlockPerPoint: 0.005,
			ChargeChanceBase: 0.05, ChargeChancePer: 0.003,
			ChargeGainedBase: 1.0, ChargeGainedPer: 0.01,
			SalvoProjectileBase: 5,
		},
		Enemy: EnemyCoeffs{
			HPBase: 7.0, HPSlope: 9.0, HPCycleGrowth: 3.2,
			PowerBase: 2.4, PowerSlope: 1.4, PowerCycleGrowth: 2.7,
			RegenSlope: 0.04, RegenCycleGrowth: 1.4,
			SpeedBase: 6.005, SpeedSlope: 0.005,
			CritChanceBase: 0.0994, CritChanceSlope: 0.0006, CritChanceCap: 0.25,
			CritDamageBase: 1.032, CritDamageSlope: 0.008, CritDamageCap: 2.5,
			EvadeBase: 0.01, EvadeCycle: 0.01,
			BossHPMult: 120.0, BossPowerMult: 4.0, BossRegenMult: 2.0, BossSpeedMult: 2.85,
			ScalingBreaks: knoxScalingBreaks,
		},
		Loot: LootCoeffs{
			KillBase: 1.0, GrowthRate: 1.05, Post100Mult: 5.0,
			CommonShare: 0.379, UncommonShare: 0.357, RareShare: 0.264,
			XPBase: 65.0, XPSlope: 15.0, XPGrowth: 1.04,
		},
	},
}

// CoeffsFor returns the active coefficient table for a kind.
func CoeffsFor(kind HunterKind) *KindCoeffs {
	return defaultCoeffs[kind]
}

// LoadCoeffsFile parses a YAML coefficient table keyed by kind name.
// Missing kinds keep their defaults.
func LoadCoeffsFile(path string) (map[HunterKind]*KindCoeffs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]*KindCoeffs
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse coefficient table %s: %w", path, err)
	}
	out := make(map[HunterKind]*KindCoeffs, len(raw))
	for name, kc := range raw {
		kind, err := ParseHunterKind(name)
		if err != nil {
			return nil, err
		}
		out[kind] = kc
	}
	return out, nil
}

// ApplyCoeffsOverrides swaps in replacement coefficient tables. Intended for
// calibration tooling at process start, before any simulation runs.
func ApplyCoeffsOverrides(overrides map[HunterKind]*KindCoeffs) {
	for kind, kc := range overrides {
		defaultCoeffs[kind] = kc
	}
}
