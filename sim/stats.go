package sim

import "gonum.org/v1/gonum/stat"

// AggregateStats reduces a batch of runs for one Build. Aborted runs carry
// no usable totals and are excluded from every aggregate; they only appear
// in the tally. The reduction is a plain sum over per-run values, so it is
// independent of result order up to floating-point rounding.
type AggregateStats struct {
	Runs       int
	Completed  int
	Aborted    int
	Overflowed int

	StageMean   float64
	StageStdDev float64
	StageMin    int
	StageMax    int

	LootMean   float64
	LootStdDev float64
	XPMean     float64
	KillsMean  float64

	DamageDealtMean float64
	DamageTakenMean float64
	LootPerHour     float64

	// SurvivalRate is the fraction of completed runs that cleared the
	// final stage rather than dying.
	SurvivalRate float64
	BossKillMean float64
}

// Aggregate reduces a batch. Results with CauseAborted are excluded and
// tallied; overflowed is the count of runs that failed with a numeric
// overflow (their results never reach this function).
func Aggregate(results []*SimulationResult, overflowed int) AggregateStats {
	agg := AggregateStats{Runs: len(results) + overflowed, Overflowed: overflowed}

	stages := make([]float64, 0, len(results))
	loot := make([]float64, 0, len(results))
	survived := 0

	for _, r := range results {
		if r.Cause == CauseAborted {
			agg.Aborted++
			continue
		}
		if agg.Completed == 0 || r.FinalStage < agg.StageMin {
			agg.StageMin = r.FinalStage
		}
		if r.FinalStage > agg.StageMax {
			agg.StageMax = r.FinalStage
		}
		agg.Completed++

		stages = append(stages, float64(r.FinalStage))
		loot = append(loot, r.TotalLoot())
		agg.XPMean += r.XP
		agg.KillsMean += float64(r.Kills)
		agg.BossKillMean += float64(r.BossKills)
		agg.DamageDealtMean += r.DamageDealt
		agg.DamageTakenMean += r.DamageTaken
		agg.LootPerHour += r.LootPerHour()
		if r.Cause == CauseStageCap {
			survived++
		}
	}

	if agg.Completed == 0 {
		return agg
	}
	n := float64(agg.Completed)

	agg.StageMean = stat.Mean(stages, nil)
	agg.LootMean = stat.Mean(loot, nil)
	if agg.Completed > 1 {
		agg.StageStdDev = stat.StdDev(stages, nil)
		agg.LootStdDev = stat.StdDev(loot, nil)
	}
	agg.XPMean /= n
	agg.KillsMean /= n
	agg.BossKillMean /= n
	agg.DamageDealtMean /= n
	agg.DamageTakenMean /= n
	agg.LootPerHour /= n
	agg.SurvivalRate = float64(survived) / n

	return agg
}
