package optimize

import (
	"sort"
	"time"

	"github.com/hunter-sim/hunter-sim/sim"
)

// RankedBuild is one line of the final report.
type RankedBuild struct {
	Rank  int
	Build *sim.Build
	Stats sim.AggregateStats
	Score float64

	// BaselineDeviation is (score - baseline) / baseline; zero when no
	// baseline was supplied or the baseline scored zero.
	BaselineDeviation float64

	// VsBaseline breaks the comparison down stat by stat. Nil when no
	// baseline was supplied.
	VsBaseline *StatDeviations
}

// StatDeviations holds the relative deviation of each aggregate against the
// baseline build, not just the active metric's score. A field is zero when
// the baseline's value for it is zero.
type StatDeviations struct {
	StageMean       float64
	LootMean        float64
	LootPerHour     float64
	XPMean          float64
	KillsMean       float64
	DamageDealtMean float64
	SurvivalRate    float64
}

func relDev(v, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (v - base) / base
}

// deviations compares one build's aggregates to the baseline's.
func deviations(s, base sim.AggregateStats) *StatDeviations {
	return &StatDeviations{
		StageMean:       relDev(s.StageMean, base.StageMean),
		LootMean:        relDev(s.LootMean, base.LootMean),
		LootPerHour:     relDev(s.LootPerHour, base.LootPerHour),
		XPMean:          relDev(s.XPMean, base.XPMean),
		KillsMean:       relDev(s.KillsMean, base.KillsMean),
		DamageDealtMean: relDev(s.DamageDealtMean, base.DamageDealtMean),
		SurvivalRate:    relDev(s.SurvivalRate, base.SurvivalRate),
	}
}

// Report is the optimizer's final output: every distinct allocation ever
// scored, ranked by the active metric, plus engine-selection metadata and
// the batch failure tallies.
type Report struct {
	Metric string

	Ranked   []RankedBuild
	Best     RankedBuild
	Baseline *RankedBuild

	EngineUsed     sim.BackendKind
	GateOverridden bool
	GateReason     string

	TiersRun   int
	StopReason string

	// BestHistory is the incumbent score after each tier, in order.
	BestHistory  []float64
	AbortedRuns  int
	OverflowRuns int

	ParityWarnings []string
	Elapsed        time.Duration

	// pool dedupes by allocation fingerprint across tiers, keeping the
	// best score per distinct build.
	pool map[string]Candidate
}

func newReport(metric Metric, sel sim.Selection) *Report {
	return &Report{
		Metric:         metric.Name(),
		EngineUsed:     sel.Selected,
		GateOverridden: sel.Overridden,
		GateReason:     sel.Reason,
		pool:           map[string]Candidate{},
	}
}

// absorb folds one scored tier into the dedupe pool.
func (r *Report) absorb(pop Population) {
	for _, c := range pop {
		fp := c.Build.Fingerprint()
		if prev, ok := r.pool[fp]; !ok || c.Score > prev.Score {
			r.pool[fp] = c
		}
	}
}

// AddParityWarning records an engine disagreement. Warnings never fail the
// optimization; they travel with the report.
func (r *Report) AddParityWarning(msg string) {
	r.ParityWarnings = append(r.ParityWarnings, msg)
}

// finalize ranks the deduped pool and computes baseline deviations.
func (r *Report) finalize(incumbent *Candidate, baseline *Candidate, elapsed time.Duration) {
	r.Elapsed = elapsed

	ranked := make([]RankedBuild, 0, len(r.pool))
	for _, c := range r.pool {
		ranked = append(ranked, RankedBuild{Build: c.Build, Stats: c.Stats, Score: c.Score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Build.Fingerprint() < ranked[j].Build.Fingerprint()
	})

	baseScore := 0.0
	if baseline != nil {
		baseScore = baseline.Score
		r.Baseline = &RankedBuild{Build: baseline.Build, Stats: baseline.Stats, Score: baseline.Score}
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
		if baseline != nil {
			ranked[i].BaselineDeviation = relDev(ranked[i].Score, baseScore)
			ranked[i].VsBaseline = deviations(ranked[i].Stats, baseline.Stats)
		}
	}
	r.Ranked = ranked

	r.Best = RankedBuild{Build: incumbent.Build, Stats: incumbent.Stats, Score: incumbent.Score}
	if baseline != nil {
		r.Best.BaselineDeviation = relDev(r.Best.Score, baseScore)
		r.Best.VsBaseline = deviations(r.Best.Stats, baseline.Stats)
	}
	for _, rb := range ranked {
		if rb.Build.Fingerprint() == incumbent.Build.Fingerprint() {
			r.Best.Rank = rb.Rank
			break
		}
	}
}

// Top returns the first n ranked builds.
func (r *Report) Top(n int) []RankedBuild {
	if n > len(r.Ranked) {
		n = len(r.Ranked)
	}
	return r.Ranked[:n]
}
