package optimize

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hunter-sim/hunter-sim/sim"
)

const (
	// survivorFraction is the share of a tier that breeds the next one.
	survivorFraction = 0.1
	// mutationRate is the per-offspring chance of a point perturbation.
	mutationRate = 0.3
	// breedAttempts bounds repair-and-revalidate retries before falling
	// back to a fresh random build.
	breedAttempts = 20
)

// Candidate pairs a build with its scored batch statistics.
type Candidate struct {
	Build *sim.Build
	Stats sim.AggregateStats
	Score float64
}

// Population is one scored tier, sorted by score descending.
type Population []Candidate

// Optimizer searches the valid allocation space with a tiered evolutionary
// loop: a uniformly random seed tier, then breed tiers built from the top
// survivors plus the incumbent best. The incumbent is injected into every
// breeding pool, which makes best-seen fitness monotone across tiers.
type Optimizer struct {
	cfg    *sim.EngineConfig
	runner *sim.BatchRunner
	metric Metric
	kind   sim.HunterKind
	level  int
	rng    *rand.Rand
}

// New validates the config and prepares an optimizer for one kind/level.
func New(cfg *sim.EngineConfig, kind sim.HunterKind, level int, metric Metric) (*Optimizer, error) {
	runner, err := sim.NewBatchRunner(cfg)
	if err != nil {
		return nil, err
	}
	if level < 1 {
		return nil, &sim.ValidationError{Detail: "level must be >= 1", Err: sim.ErrPointBudgetExceeded}
	}
	return &Optimizer{
		cfg:    cfg,
		runner: runner,
		metric: metric,
		kind:   kind,
		level:  level,
		rng:    rand.New(rand.NewSource(sim.DeriveStreamSeed(cfg.Seed, "optimizer"))),
	}, nil
}

// Run executes the tier loop until the tier count, a fitness plateau, the
// wall-clock budget or context cancellation stops it. Cancellation is only
// observed at tier boundaries so every scored tier is complete.
func (o *Optimizer) Run(ctx context.Context, baseline *sim.Build) (*Report, error) {
	start := time.Now()
	rep := newReport(o.metric, o.runner.Selection())

	builds, err := o.seedTier()
	if err != nil {
		return nil, err
	}

	var incumbent *Candidate
	var history []float64

	for tier := 1; tier <= o.cfg.Tiers; tier++ {
		if err := ctx.Err(); err != nil {
			rep.StopReason = "context cancelled"
			break
		}
		if o.cfg.TimeBudget > 0 && time.Since(start) > o.cfg.TimeBudget {
			rep.StopReason = "time budget exhausted"
			break
		}

		pop, err := o.scoreTier(ctx, builds, rep)
		if err != nil {
			return nil, err
		}
		rep.TiersRun = tier
		rep.absorb(pop)

		if incumbent == nil || pop[0].Score > incumbent.Score {
			c := pop[0]
			incumbent = &c
		}
		history = append(history, incumbent.Score)
		rep.BestHistory = history

		log.WithFields(log.Fields{
			"tier":   tier,
			"best":   incumbent.Score,
			"top":    pop[0].Score,
			"metric": o.metric.Name(),
		}).Info("tier complete")

		if o.plateaued(history) {
			rep.StopReason = "fitness plateau"
			break
		}
		if tier == o.cfg.Tiers {
			rep.StopReason = "tier budget exhausted"
			break
		}

		builds = o.breedTier(pop, incumbent)
	}

	if incumbent == nil {
		return nil, ctx.Err()
	}
	if o.runner.Selection().Selected == sim.BackendAccelerated {
		o.spotCheckParity(incumbent.Build, rep)
	}
	rep.finalize(incumbent, o.scoreBaseline(ctx, baseline, rep), time.Since(start))
	return rep, nil
}

// spotCheckParity cross-checks the incumbent on both backends when the
// accelerated one was selected. Disagreement becomes a report warning and
// the optimization keeps its accelerated results.
func (o *Optimizer) spotCheckParity(b *sim.Build, rep *Report) {
	_, err := sim.VerifyParity(b, o.cfg, sim.MinAcceleratedSims)
	attachDisagreement(rep, err)
}

// attachDisagreement records a backend disagreement on the report. Any
// other verification error is logged; neither fails the optimization.
func attachDisagreement(rep *Report, err error) {
	if err == nil {
		return
	}
	var dis *sim.DisagreementError
	if errors.As(err, &dis) {
		log.Warn(dis.Error())
		rep.AddParityWarning(dis.Error())
		return
	}
	log.WithError(err).Warn("parity spot check failed to run")
}

// Run is the package entry point: construct an optimizer for one
// kind/level and execute it. Baseline may be nil.
func Run(ctx context.Context, cfg *sim.EngineConfig, kind sim.HunterKind, level int, metric Metric, baseline *sim.Build) (*Report, error) {
	o, err := New(cfg, kind, level, metric)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, baseline)
}

// seedTier draws the first generation uniformly at random from the valid
// allocation space.
func (o *Optimizer) seedTier() ([]*sim.Build, error) {
	builds := make([]*sim.Build, 0, o.cfg.BuildsPerTier)
	seen := map[string]bool{}
	for len(builds) < o.cfg.BuildsPerTier {
		b, err := sim.RandomBuild(o.kind, o.level, o.rng)
		if err != nil {
			return nil, err
		}
		fp := b.Fingerprint()
		if seen[fp] && len(seen) < 1<<20 {
			// Tiny allocation spaces (level 1) cannot fill a tier with
			// distinct builds; accept the duplicate after one reroll.
			b2, err := sim.RandomBuild(o.kind, o.level, o.rng)
			if err != nil {
				return nil, err
			}
			b = b2
			fp = b.Fingerprint()
		}
		seen[fp] = true
		builds = append(builds, b)
	}
	return builds, nil
}

// scoreTier runs the batch for every build of a tier and sorts descending.
func (o *Optimizer) scoreTier(ctx context.Context, builds []*sim.Build, rep *Report) (Population, error) {
	pop := make(Population, 0, len(builds))
	for _, b := range builds {
		stats, err := o.runner.Run(ctx, b)
		if err != nil {
			return nil, err
		}
		rep.AbortedRuns += stats.Aborted
		rep.OverflowRuns += stats.Overflowed
		pop = append(pop, Candidate{Build: b, Stats: stats, Score: o.metric.Score(stats)})
	}
	sort.SliceStable(pop, func(i, j int) bool { return pop[i].Score > pop[j].Score })
	return pop, nil
}

// plateaued reports whether the incumbent's relative improvement over the
// configured window fell below the threshold.
func (o *Optimizer) plateaued(history []float64) bool {
	w := o.cfg.PlateauWindow
	if len(history) <= w {
		return false
	}
	prev := history[len(history)-1-w]
	curr := history[len(history)-1]
	if prev <= 0 {
		return curr <= 0
	}
	return (curr-prev)/prev < o.cfg.PlateauThreshold
}

// breedTier builds the next generation from the top survivors plus the
// incumbent, via crossover and point-perturbation mutation.
func (o *Optimizer) breedTier(pop Population, incumbent *Candidate) []*sim.Build {
	nSurvive := int(float64(len(pop)) * survivorFraction)
	if nSurvive < 2 {
		nSurvive = 2
	}
	if nSurvive > len(pop) {
		nSurvive = len(pop)
	}
	parents := make([]*sim.Build, 0, nSurvive+1)
	for _, c := range pop[:nSurvive] {
		parents = append(parents, c.Build)
	}
	// The incumbent always re-enters the pool, even when this tier's best
	// did not beat it.
	parents = append(parents, incumbent.Build)

	next := make([]*sim.Build, 0, o.cfg.BuildsPerTier)
	next = append(next, incumbent.Build)
	for len(next) < o.cfg.BuildsPerTier {
		a := parents[o.rng.Intn(len(parents))]
		b := parents[o.rng.Intn(len(parents))]
		child := o.breed(a, b)
		if child == nil {
			fresh, err := sim.RandomBuild(o.kind, o.level, o.rng)
			if err != nil {
				continue
			}
			child = fresh
		}
		next = append(next, child)
	}
	return next
}

// breed crosses two parents field by field, optionally mutates, repairs any
// budget overshoot and re-validates. Nil when no valid child emerged within
// the attempt bound.
func (o *Optimizer) breed(a, b *sim.Build) *sim.Build {
	cat := sim.CatalogFor(o.kind)
	for attempt := 0; attempt < breedAttempts; attempt++ {
		talents := crossMaps(o.rng, cat.TalentIDs(), a.Talents, b.Talents)
		attributes := crossMaps(o.rng, cat.AttributeIDs(), a.Attributes, b.Attributes)

		if o.rng.Float64() < mutationRate {
			mutate(o.rng, talents, cat.TalentIDs())
			mutate(o.rng, attributes, cat.AttributeIDs())
		}
		repair(o.rng, talents, sim.TalentBudget(o.level))
		repair(o.rng, attributes, sim.AttributeBudget(o.level))

		child, err := sim.NewBuild(o.kind, o.level, talents, attributes)
		if err == nil {
			return child
		}
	}
	return nil
}

// scoreBaseline scores the optional comparison build with the same batch
// settings. Nil baseline or a failed batch yields nil.
func (o *Optimizer) scoreBaseline(ctx context.Context, baseline *sim.Build, rep *Report) *Candidate {
	if baseline == nil {
		return nil
	}
	stats, err := o.runner.Run(ctx, baseline)
	if err != nil {
		log.WithError(err).Warn("baseline build failed to score")
		return nil
	}
	rep.AbortedRuns += stats.Aborted
	rep.OverflowRuns += stats.Overflowed
	return &Candidate{Build: baseline, Stats: stats, Score: o.metric.Score(stats)}
}

// crossMaps draws each id's level from one parent or the other.
func crossMaps(rng *rand.Rand, ids []string, a, b map[string]int) map[string]int {
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		v := a[id]
		if rng.Intn(2) == 1 {
			v = b[id]
		}
		if v > 0 {
			out[id] = v
		}
	}
	return out
}

// mutate moves one allocated point to a random catalog id, so an offspring
// can open an id neither parent had. Gate or cap violations introduced here
// are caught by the revalidation in breed.
func mutate(rng *rand.Rand, alloc map[string]int, ids []string) {
	from := sortedIDs(alloc)
	if len(from) == 0 || len(ids) == 0 {
		return
	}
	f := from[rng.Intn(len(from))]
	alloc[f]--
	if alloc[f] == 0 {
		delete(alloc, f)
	}
	alloc[ids[rng.Intn(len(ids))]]++
}

// repair drops random points until the allocation fits its budget again;
// crossover of two valid parents can overshoot.
func repair(rng *rand.Rand, alloc map[string]int, budget int) {
	total := 0
	for _, v := range alloc {
		total += v
	}
	for total > budget {
		ids := sortedIDs(alloc)
		id := ids[rng.Intn(len(ids))]
		alloc[id]--
		if alloc[id] == 0 {
			delete(alloc, id)
		}
		total--
	}
}

func sortedIDs(alloc map[string]int) []string {
	ids := make([]string, 0, len(alloc))
	for id, v := range alloc {
		if v > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
