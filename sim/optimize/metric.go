package optimize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hunter-sim/hunter-sim/sim"
)

// Metric scores one build's aggregate statistics. Higher is better; every
// built-in metric is already oriented that way.
type Metric interface {
	Name() string
	Score(s sim.AggregateStats) float64
}

type metricFunc struct {
	name string
	fn   func(sim.AggregateStats) float64
}

func (m metricFunc) Name() string                       { return m.name }
func (m metricFunc) Score(s sim.AggregateStats) float64 { return m.fn(s) }

// AvgStage ranks by mean final stage.
func AvgStage() Metric {
	return metricFunc{"avg_stage", func(s sim.AggregateStats) float64 { return s.StageMean }}
}

// LootPerHour ranks by mean loot normalized to simulated time.
func LootPerHour() Metric {
	return metricFunc{"loot_per_hour", func(s sim.AggregateStats) float64 { return s.LootPerHour }}
}

// SurvivalRate ranks by the fraction of runs clearing the stage cap.
func SurvivalRate() Metric {
	return metricFunc{"survival_rate", func(s sim.AggregateStats) float64 { return s.SurvivalRate }}
}

// AvgDamage ranks by mean damage dealt.
func AvgDamage() Metric {
	return metricFunc{"avg_damage", func(s sim.AggregateStats) float64 { return s.DamageDealtMean }}
}

// Weighted combines named metrics with fixed weights.
func Weighted(weights map[string]float64) (Metric, error) {
	type term struct {
		m Metric
		w float64
	}
	terms := make([]term, 0, len(weights))
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m, err := ParseMetric(name)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term{m, weights[name]})
	}
	label := fmt.Sprintf("weighted(%s)", strings.Join(names, ","))
	return metricFunc{label, func(s sim.AggregateStats) float64 {
		total := 0.0
		for _, t := range terms {
			total += t.w * t.m.Score(s)
		}
		return total
	}}, nil
}

// ParseMetric resolves a metric by name.
func ParseMetric(name string) (Metric, error) {
	switch name {
	case "avg_stage", "stage":
		return AvgStage(), nil
	case "loot_per_hour", "loot":
		return LootPerHour(), nil
	case "survival_rate", "survival":
		return SurvivalRate(), nil
	case "avg_damage", "damage":
		return AvgDamage(), nil
	default:
		return nil, fmt.Errorf("unknown metric %q", name)
	}
}
