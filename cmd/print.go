package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	sim "github.com/hunter-sim/hunter-sim/sim"
	"github.com/hunter-sim/hunter-sim/sim/optimize"
)

// printReport writes the ranked optimizer output to stdout.
func printReport(r *optimize.Report, top int, start time.Time) {
	fmt.Printf("\n=== Optimization report (metric: %s) ===\n", r.Metric)
	fmt.Printf("tiers run: %d  stop: %s  engine: %s", r.TiersRun, r.StopReason, r.EngineUsed)
	if r.GateOverridden {
		fmt.Printf(" (safety gate: %s)", r.GateReason)
	}
	fmt.Println()
	fmt.Printf("distinct builds scored: %d  aborted runs: %d  overflow runs: %d\n",
		len(r.Ranked), r.AbortedRuns, r.OverflowRuns)
	for _, w := range r.ParityWarnings {
		fmt.Printf("warning: %s\n", w)
	}

	if r.Baseline != nil {
		fmt.Printf("baseline score: %.3f (mean stage %.1f)\n", r.Baseline.Score, r.Baseline.Stats.StageMean)
	}

	fmt.Printf("\nbest build (score %.3f", r.Best.Score)
	if r.Baseline != nil {
		fmt.Printf(", %+.1f%% vs baseline", r.Best.BaselineDeviation*100)
	}
	fmt.Println("):")
	printBuild(r.Best.Build)
	if d := r.Best.VsBaseline; d != nil {
		fmt.Printf("  vs baseline: stage %+.1f%%  loot %+.1f%%  loot/h %+.1f%%  xp %+.1f%%  kills %+.1f%%  damage %+.1f%%  survival %+.1f%%\n",
			d.StageMean*100, d.LootMean*100, d.LootPerHour*100, d.XPMean*100,
			d.KillsMean*100, d.DamageDealtMean*100, d.SurvivalRate*100)
	}

	fmt.Printf("\ntop %d:\n", top)
	for _, rb := range r.Top(top) {
		line := fmt.Sprintf("%3d. score %10.3f  stage %6.1f±%-5.1f  loot/h %12.1f  survival %5.1f%%",
			rb.Rank, rb.Score, rb.Stats.StageMean, rb.Stats.StageStdDev,
			rb.Stats.LootPerHour, rb.Stats.SurvivalRate*100)
		if r.Baseline != nil {
			line += fmt.Sprintf("  vs base %+6.1f%%", rb.BaselineDeviation*100)
		}
		fmt.Println(line)
	}
	fmt.Printf("\nelapsed: %s\n", time.Since(start).Round(time.Millisecond))
}

// printStats writes one build's batch statistics to stdout.
func printStats(b *sim.Build, s sim.AggregateStats, sel sim.Selection) {
	fmt.Printf("\n=== %s level %d (engine: %s) ===\n", b.Kind, b.Level, sel.Selected)
	fmt.Printf("runs: %d  completed: %d  aborted: %d  overflowed: %d\n",
		s.Runs, s.Completed, s.Aborted, s.Overflowed)
	fmt.Printf("stage: mean %.1f  stddev %.1f  min %d  max %d\n",
		s.StageMean, s.StageStdDev, s.StageMin, s.StageMax)
	fmt.Printf("loot: mean %.1f  per hour %.1f\n", s.LootMean, s.LootPerHour)
	fmt.Printf("xp: mean %.1f  kills: mean %.1f  boss kills: mean %.2f\n",
		s.XPMean, s.KillsMean, s.BossKillMean)
	fmt.Printf("damage dealt: %.1f  taken: %.1f\n", s.DamageDealtMean, s.DamageTakenMean)
	fmt.Printf("survival rate: %.1f%%\n", s.SurvivalRate*100)
}

// printBuild writes the non-zero allocation of a build.
func printBuild(b *sim.Build) {
	fmt.Printf("  %s level %d (talents %d/%d, attributes %d/%d)\n",
		b.Kind, b.Level,
		b.TalentPointsSpent(), sim.TalentBudget(b.Level),
		b.AttributePointsSpent(), sim.AttributeBudget(b.Level))
	fmt.Printf("  talents:    %s\n", formatAlloc(b.Talents))
	fmt.Printf("  attributes: %s\n", formatAlloc(b.Attributes))
}

func formatAlloc(m map[string]int) string {
	ids := make([]string, 0, len(m))
	for id, lvl := range m {
		if lvl > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s=%d", id, m[id]))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}
