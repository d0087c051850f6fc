package sim

import (
	"fmt"
	"runtime"
	"time"
)

// BackendKind selects a simulation backend.
type BackendKind int

const (
	// BackendReference is the event-driven backend. It is the semantic
	// ground truth the accelerated backend is validated against.
	BackendReference BackendKind = iota
	// BackendAccelerated is the allocation-free timer-loop backend.
	BackendAccelerated
)

func (k BackendKind) String() string {
	switch k {
	case BackendReference:
		return "reference"
	case BackendAccelerated:
		return "accelerated"
	default:
		return fmt.Sprintf("BackendKind(%d)", int(k))
	}
}

// ParseBackend parses a backend name.
func ParseBackend(s string) (BackendKind, error) {
	switch s {
	case "reference", "ref":
		return BackendReference, nil
	case "accelerated", "fast":
		return BackendAccelerated, nil
	default:
		return 0, fmt.Errorf("unknown backend %q (want reference or accelerated)", s)
	}
}

// EngineConfig carries every run parameter. Supplied by the caller and
// read-only to the core once validated.
type EngineConfig struct {
	SimsPerBuild int         `yaml:"sims_per_build"`
	MaxStage     int         `yaml:"max_stage"`
	ActionCap    int         `yaml:"action_cap"` // per encounter
	Backend      BackendKind `yaml:"-"`
	Seed         int64       `yaml:"seed"`
	Workers      int         `yaml:"workers"`

	Tiers            int           `yaml:"tiers"`
	BuildsPerTier    int           `yaml:"builds_per_tier"`
	PlateauWindow    int           `yaml:"plateau_window"`
	PlateauThreshold float64       `yaml:"plateau_threshold"`
	TimeBudget       time.Duration `yaml:"time_budget"`
}

// DefaultEngineConfig returns the documented defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SimsPerBuild:     50,
		MaxStage:         1000,
		ActionCap:        5000,
		Backend:          BackendAccelerated,
		Seed:             0, // 0 means derive from wall clock
		Workers:          runtime.NumCPU(),
		Tiers:            10,
		BuildsPerTier:    100,
		PlateauWindow:    3,
		PlateauThreshold: 0.01,
	}
}

// Validate checks parameter sanity.
func (c *EngineConfig) Validate() error {
	if c.SimsPerBuild < 1 {
		return fmt.Errorf("sims_per_build must be >= 1, got %d", c.SimsPerBuild)
	}
	if c.MaxStage < 1 {
		return fmt.Errorf("max_stage must be >= 1, got %d", c.MaxStage)
	}
	if c.ActionCap < 1 {
		return fmt.Errorf("action_cap must be >= 1, got %d", c.ActionCap)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Tiers < 1 {
		return fmt.Errorf("tiers must be >= 1, got %d", c.Tiers)
	}
	if c.BuildsPerTier < 2 {
		return fmt.Errorf("builds_per_tier must be >= 2, got %d", c.BuildsPerTier)
	}
	if c.PlateauWindow < 1 {
		return fmt.Errorf("plateau_window must be >= 1, got %d", c.PlateauWindow)
	}
	if c.PlateauThreshold < 0 {
		return fmt.Errorf("plateau_threshold must be >= 0, got %g", c.PlateauThreshold)
	}
	if c.TimeBudget < 0 {
		return fmt.Errorf("time_budget must be >= 0, got %v", c.TimeBudget)
	}
	return nil
}
