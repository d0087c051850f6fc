package sim

import (
	"context"
	"errors"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

// BatchRunner fans one Build out to SimsPerBuild independent runs across a
// fixed worker pool and reduces the results. Run seeds derive from the
// top-level seed and the run index, so a batch is reproducible regardless
// of worker count or completion order.
type BatchRunner struct {
	cfg    *EngineConfig
	engine Engine
	sel    Selection
}

// NewBatchRunner validates the config, applies the backend safety gate and
// returns a runner safe for concurrent use.
func NewBatchRunner(cfg *EngineConfig) (*BatchRunner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine, sel := SelectEngine(cfg)
	return &BatchRunner{cfg: cfg, engine: engine, sel: sel}, nil
}

// Selection reports which backend actually runs and whether the safety
// gate overrode the request.
func (r *BatchRunner) Selection() Selection { return r.sel }

// Run executes the full batch for one Build. The Build is validated before
// any simulation is dispatched; an invalid Build fails the whole call with
// a *ValidationError and zero runs executed.
func (r *BatchRunner) Run(ctx context.Context, b *Build) (AggregateStats, error) {
	if err := b.Validate(); err != nil {
		return AggregateStats{}, err
	}

	type outcome struct {
		idx int
		res *SimulationResult
		err error
	}

	indices := make(chan int)
	outcomes := make(chan outcome, r.cfg.SimsPerBuild)

	var wg sync.WaitGroup
	for w := 0; w < r.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				res, err := r.engine.Run(b, r.cfg, DeriveRunSeed(r.cfg.Seed, i))
				outcomes <- outcome{idx: i, res: res, err: err}
			}
		}()
	}

	dispatched := 0
feed:
	for i := 0; i < r.cfg.SimsPerBuild; i++ {
		select {
		case indices <- i:
			dispatched++
		case <-ctx.Done():
			break feed
		}
	}
	close(indices)
	wg.Wait()
	close(outcomes)

	results := make([]*SimulationResult, 0, dispatched)
	overflowed := 0
	for o := range outcomes {
		if o.err != nil {
			if errors.Is(o.err, ErrNumericOverflow) {
				overflowed++
				log.WithField("run", o.idx).Warn("numeric overflow, run excluded")
				continue
			}
			return AggregateStats{}, o.err
		}
		results = append(results, o.res)
	}
	if err := ctx.Err(); err != nil {
		return AggregateStats{}, err
	}

	// Canonical order keeps the floating-point reduction identical across
	// repeated invocations with different worker interleavings.
	sort.Slice(results, func(i, j int) bool { return results[i].Seed < results[j].Seed })

	return Aggregate(results, overflowed), nil
}
