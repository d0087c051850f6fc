package sim

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
)

// Engine runs one simulation of a validated Build. Implementations must be
// stateless and safe for concurrent use; all per-run state lives inside Run.
type Engine interface {
	Kind() BackendKind
	Run(b *Build, cfg *EngineConfig, seed RunSeed) (*SimulationResult, error)
}

// MinAcceleratedSims is the documented minimum batch size for the
// accelerated backend. Below it the per-run variance dominates whatever
// throughput the backend buys, so the safety gate forces the reference
// backend instead.
const MinAcceleratedSims = 10

// ParityTolerance is the maximum tolerated relative difference in mean
// final stage between the two backends over a shared seed set.
const ParityTolerance = 0.05

// Selection records which backend actually ran and why.
type Selection struct {
	Requested  BackendKind
	Selected   BackendKind
	Overridden bool
	Reason     string
}

// NewEngine returns the backend implementation for a kind.
func NewEngine(kind BackendKind) Engine {
	if kind == BackendAccelerated {
		return acceleratedEngine{}
	}
	return referenceEngine{}
}

// SelectEngine applies the safety gate to the requested backend. The
// override is recorded, never silent.
func SelectEngine(cfg *EngineConfig) (Engine, Selection) {
	sel := Selection{Requested: cfg.Backend, Selected: cfg.Backend}
	if cfg.Backend == BackendAccelerated && cfg.SimsPerBuild < MinAcceleratedSims {
		sel.Selected = BackendReference
		sel.Overridden = true
		sel.Reason = fmt.Sprintf("sims_per_build %d below accelerated minimum %d",
			cfg.SimsPerBuild, MinAcceleratedSims)
		log.WithFields(log.Fields{
			"requested": sel.Requested.String(),
			"selected":  sel.Selected.String(),
		}).Warn(sel.Reason)
	}
	return NewEngine(sel.Selected), sel
}

// ParityReport compares the two backends over a shared seed set.
type ParityReport struct {
	Runs            int
	ReferenceMean   float64
	AcceleratedMean float64
	RelDiff         float64
	Within          bool
}

// DisagreementError reports a parity violation. It is a warning condition:
// callers log it and continue rather than failing the batch.
type DisagreementError struct {
	Report ParityReport
}

func (e *DisagreementError) Error() string {
	return fmt.Sprintf("backend disagreement %.2f%% exceeds tolerance %.2f%% (reference mean stage %.2f, accelerated %.2f)",
		e.Report.RelDiff*100, ParityTolerance*100,
		e.Report.ReferenceMean, e.Report.AcceleratedMean)
}

// VerifyParity runs both backends over the identical derived seeds and
// compares mean final stage. A *DisagreementError is returned alongside the
// report when the relative difference exceeds the tolerance; any other
// error is a hard failure of one of the runs.
func VerifyParity(b *Build, cfg *EngineConfig, runs int) (ParityReport, error) {
	if runs < 1 {
		runs = MinAcceleratedSims
	}
	ref, acc := referenceEngine{}, acceleratedEngine{}

	var refSum, accSum float64
	for i := 0; i < runs; i++ {
		seed := DeriveRunSeed(cfg.Seed, i)
		r, err := ref.Run(b, cfg, seed)
		if err != nil {
			return ParityReport{}, fmt.Errorf("reference run %d: %w", i, err)
		}
		a, err := acc.Run(b, cfg, seed)
		if err != nil {
			return ParityReport{}, fmt.Errorf("accelerated run %d: %w", i, err)
		}
		refSum += float64(r.FinalStage)
		accSum += float64(a.FinalStage)
	}

	rep := ParityReport{
		Runs:            runs,
		ReferenceMean:   refSum / float64(runs),
		AcceleratedMean: accSum / float64(runs),
	}
	denom := math.Max(rep.ReferenceMean, 1.0)
	rep.RelDiff = math.Abs(rep.ReferenceMean-rep.AcceleratedMean) / denom
	rep.Within = rep.RelDiff <= ParityTolerance
	if !rep.Within {
		return rep, &DisagreementError{Report: rep}
	}
	return rep, nil
}
