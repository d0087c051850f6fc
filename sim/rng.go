package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === RunSeed ===

// RunSeed uniquely identifies a reproducible simulation run.
// Two runs with the same RunSeed on the same backend MUST produce
// bit-for-bit identical SimulationResults.
type RunSeed int64

// DeriveRunSeed derives the seed for run number idx of a batch from the
// batch-level master seed. Each run gets an isolated stream so that results
// do not depend on worker scheduling order.
func DeriveRunSeed(master int64, idx int) RunSeed {
	return RunSeed(master ^ fnv1a64(fmt.Sprintf("run_%d", idx)))
}

// DeriveStreamSeed derives an isolated seed for a named subsystem
// (build generation, crossover, mutation) from the master seed.
func DeriveStreamSeed(master int64, name string) int64 {
	return master ^ fnv1a64(name)
}

// NewRunRNG returns the RNG for one simulation run. NOT thread-safe; each
// run owns its instance.
func NewRunRNG(seed RunSeed) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
