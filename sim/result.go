package sim

import "math"

// TerminationCause records why a single run ended.
type TerminationCause int

const (
	// CauseStageCap means the run cleared the configured final stage.
	CauseStageCap TerminationCause = iota
	// CauseDeath means the hunter died with no revives left.
	CauseDeath
	// CauseAborted means the run hit the per-run action cap before either
	// terminal condition. Aborted runs carry no usable totals and are
	// excluded from aggregation.
	CauseAborted
)

func (c TerminationCause) String() string {
	switch c {
	case CauseStageCap:
		return "stage_cap"
	case CauseDeath:
		return "death"
	case CauseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// SimulationResult is the outcome of one run. All totals are plain sums over
// the run; rates are derived later during aggregation.
type SimulationResult struct {
	Seed       RunSeed
	FinalStage int
	Cause      TerminationCause

	Kills       int
	BossKills   int
	RevivesUsed int
	Crits       int
	Evades      int
	EffectProcs int

	LootCommon   float64
	LootUncommon float64
	LootRare     float64
	XP           float64

	DamageDealt float64
	DamageTaken float64

	// ElapsedTime is simulated combat time, not wall clock.
	ElapsedTime float64
	Actions     int
}

// TotalLoot sums the three rarity pools.
func (r *SimulationResult) TotalLoot() float64 {
	return r.LootCommon + r.LootUncommon + r.LootRare
}

// LootPerHour normalizes loot against simulated time (seconds).
func (r *SimulationResult) LootPerHour() float64 {
	if r.ElapsedTime <= 0 {
		return 0
	}
	return r.TotalLoot() / r.ElapsedTime * 3600.0
}

// checkOverflow reports ErrNumericOverflow if any accumulated total has left
// the finite float64 range. Called once per stage transition so a runaway
// multiplier is caught within one stage.
func (r *SimulationResult) checkOverflow() error {
	for _, v := range []float64{
		r.LootCommon, r.LootUncommon, r.LootRare, r.XP,
		r.DamageDealt, r.DamageTaken, r.ElapsedTime,
	} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return ErrNumericOverflow
		}
	}
	return nil
}
