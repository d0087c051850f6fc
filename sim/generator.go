package sim

import "math/rand"

// RandomBuild draws one uniformly random valid allocation for a kind and
// level: both point budgets fully spent where possible, per-id caps and
// unlock gates respected at every step. Used to seed the optimizer's first
// tier and as the mutation resample source.
func RandomBuild(kind HunterKind, level int, rng *rand.Rand) (*Build, error) {
	cat := CatalogFor(kind)

	talents := map[string]int{}
	spendPoints(rng, TalentBudget(level), cat.TalentIDs(), talents, func(id string) (int, *Gate) {
		def := cat.Talents[id]
		return def.Max, def.Requires
	})

	attributes := map[string]int{}
	spendPoints(rng, AttributeBudget(level), cat.AttributeIDs(), attributes, func(id string) (int, *Gate) {
		def := cat.Attributes[id]
		return def.Max, def.Requires
	})

	return NewBuild(kind, level, talents, attributes)
}

// spendPoints random-walks a budget one point at a time over the eligible
// ids. An id is eligible while below its cap and, if gated, once its
// prerequisite holds. Stops early when nothing is eligible.
func spendPoints(rng *rand.Rand, budget int, ids []string, alloc map[string]int, lookup func(string) (int, *Gate)) {
	eligible := make([]string, 0, len(ids))
	for p := 0; p < budget; p++ {
		eligible = eligible[:0]
		for _, id := range ids {
			max, gate := lookup(id)
			if max > 0 && alloc[id] >= max {
				continue
			}
			if gate != nil && alloc[gate.ID] < gate.Level {
				continue
			}
			eligible = append(eligible, id)
		}
		if len(eligible) == 0 {
			return
		}
		alloc[eligible[rng.Intn(len(eligible))]]++
	}
}
