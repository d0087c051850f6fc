package sim

import (
	"fmt"
	"sort"
	"strings"
)

// Build is one complete character configuration: a point allocation across
// talents and attributes plus auxiliary gear modifiers and account-wide
// bonuses. Builds are immutable once constructed; every mutation helper
// returns a copy. This is what makes the parallel batch fan-out and the
// optimizer's crossover safe without locking.
type Build struct {
	Kind  HunterKind
	Level int

	Talents    map[string]int
	Attributes map[string]int

	Relics       map[string]int
	Inscriptions map[string]int
	Gadgets      map[string]int
	Gems         map[string]int

	// Bonuses are account-wide multipliers shared across all hunter kinds,
	// passed in explicitly so a simulation stays a pure function of the Build.
	Bonuses map[string]float64
}

// TalentBudget is the number of talent points available at a level.
func TalentBudget(level int) int { return level }

// AttributeBudget is the number of attribute points available at a level.
func AttributeBudget(level int) int { return 3 * level }

// NewBuild validates the allocation against the kind's catalog and returns
// an immutable Build. Invalid allocations are rejected with a
// *ValidationError, never clamped.
func NewBuild(kind HunterKind, level int, talents, attributes map[string]int, opts ...BuildOption) (*Build, error) {
	if level < 1 {
		return nil, validationErrorf(ErrPointBudgetExceeded, "", "level must be >= 1, got %d", level)
	}
	b := &Build{
		Kind:       kind,
		Level:      level,
		Talents:    copyIntMap(talents),
		Attributes: copyIntMap(attributes),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.Relics == nil {
		b.Relics = map[string]int{}
	}
	if b.Inscriptions == nil {
		b.Inscriptions = map[string]int{}
	}
	if b.Gadgets == nil {
		b.Gadgets = map[string]int{}
	}
	if b.Gems == nil {
		b.Gems = map[string]int{}
	}
	if b.Bonuses == nil {
		b.Bonuses = map[string]float64{}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// BuildOption attaches auxiliary modifiers during construction.
type BuildOption func(*Build)

func WithRelics(m map[string]int) BuildOption       { return func(b *Build) { b.Relics = copyIntMap(m) } }
func WithInscriptions(m map[string]int) BuildOption { return func(b *Build) { b.Inscriptions = copyIntMap(m) } }
func WithGadgets(m map[string]int) BuildOption      { return func(b *Build) { b.Gadgets = copyIntMap(m) } }
func WithGems(m map[string]int) BuildOption         { return func(b *Build) { b.Gems = copyIntMap(m) } }

// WithBonuses sets the account-wide bonus multipliers.
func WithBonuses(m map[string]float64) BuildOption {
	return func(b *Build) {
		b.Bonuses = make(map[string]float64, len(m))
		for k, v := range m {
			b.Bonuses[k] = v
		}
	}
}

// Validate checks the allocation invariants:
//   - every id exists in the kind's catalog
//   - no id exceeds its per-id max
//   - every gated id satisfies its unlock prerequisite
//   - sum(talent levels) <= Level
//   - sum(attribute levels) <= 3 * Level
func (b *Build) Validate() error {
	cat := CatalogFor(b.Kind)
	if cat == nil {
		return validationErrorf(ErrUnknownID, "", "no catalog for kind %v", b.Kind)
	}

	talentSum := 0
	for id, lvl := range b.Talents {
		def, ok := cat.Talents[id]
		if !ok {
			return validationErrorf(ErrUnknownID, id, "talent not in %s catalog", b.Kind)
		}
		if lvl < 0 {
			return validationErrorf(ErrMaxLevelExceeded, id, "negative level %d", lvl)
		}
		if def.Max > 0 && lvl > def.Max {
			return validationErrorf(ErrMaxLevelExceeded, id, "level %d exceeds max %d", lvl, def.Max)
		}
		if lvl > 0 && def.Requires != nil && b.Talents[def.Requires.ID] < def.Requires.Level {
			return validationErrorf(ErrUnlockGateViolated, id,
				"requires %s >= %d, have %d", def.Requires.ID, def.Requires.Level, b.Talents[def.Requires.ID])
		}
		talentSum += lvl
	}
	if talentSum > TalentBudget(b.Level) {
		return validationErrorf(ErrPointBudgetExceeded, "",
			"talent points %d exceed budget %d at level %d", talentSum, TalentBudget(b.Level), b.Level)
	}

	attrSum := 0
	for id, lvl := range b.Attributes {
		def, ok := cat.Attributes[id]
		if !ok {
			return validationErrorf(ErrUnknownID, id, "attribute not in %s catalog", b.Kind)
		}
		if lvl < 0 {
			return validationErrorf(ErrMaxLevelExceeded, id, "negative level %d", lvl)
		}
		if def.Max > 0 && lvl > def.Max {
			return validationErrorf(ErrMaxLevelExceeded, id, "level %d exceeds max %d", lvl, def.Max)
		}
		if lvl > 0 && def.Requires != nil && b.Attributes[def.Requires.ID] < def.Requires.Level {
			return validationErrorf(ErrUnlockGateViolated, id,
				"requires %s >= %d, have %d", def.Requires.ID, def.Requires.Level, b.Attributes[def.Requires.ID])
		}
		attrSum += lvl
	}
	if attrSum > AttributeBudget(b.Level) {
		return validationErrorf(ErrPointBudgetExceeded, "",
			"attribute points %d exceed budget %d at level %d", attrSum, AttributeBudget(b.Level), b.Level)
	}

	return nil
}

// Talent returns the allocated level of a talent, zero if unallocated.
func (b *Build) Talent(id string) int { return b.Talents[id] }

// Attribute returns the allocated level of an attribute, zero if unallocated.
func (b *Build) Attribute(id string) int { return b.Attributes[id] }

// Relic, Inscription, Gadget and Gem return auxiliary modifier levels.
func (b *Build) Relic(id string) int       { return b.Relics[id] }
func (b *Build) Inscription(id string) int { return b.Inscriptions[id] }
func (b *Build) Gadget(id string) int      { return b.Gadgets[id] }
func (b *Build) Gem(id string) int         { return b.Gems[id] }

// Bonus returns an account-wide multiplier, defaulting to 1.
func (b *Build) Bonus(id string) float64 {
	if v, ok := b.Bonuses[id]; ok {
		return v
	}
	return 1.0
}

// TalentPointsSpent sums all allocated talent levels.
func (b *Build) TalentPointsSpent() int {
	n := 0
	for _, v := range b.Talents {
		n += v
	}
	return n
}

// AttributePointsSpent sums all allocated attribute levels.
func (b *Build) AttributePointsSpent() int {
	n := 0
	for _, v := range b.Attributes {
		n += v
	}
	return n
}

// Clone returns a deep copy. The copy is independently mutable by the
// optimizer's breeding code before it is re-validated through NewBuild.
func (b *Build) Clone() *Build {
	c := *b
	c.Talents = copyIntMap(b.Talents)
	c.Attributes = copyIntMap(b.Attributes)
	c.Relics = copyIntMap(b.Relics)
	c.Inscriptions = copyIntMap(b.Inscriptions)
	c.Gadgets = copyIntMap(b.Gadgets)
	c.Gems = copyIntMap(b.Gems)
	c.Bonuses = make(map[string]float64, len(b.Bonuses))
	for k, v := range b.Bonuses {
		c.Bonuses[k] = v
	}
	return &c
}

// Fingerprint returns a canonical string for deduplication: two builds with
// the same allocation (talents + attributes) share a fingerprint regardless
// of map iteration order.
func (b *Build) Fingerprint() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s/%d|", b.Kind, b.Level)
	writeSorted(&sb, b.Talents)
	sb.WriteByte('|')
	writeSorted(&sb, b.Attributes)
	return sb.String()
}

func writeSorted(sb *strings.Builder, m map[string]int) {
	ids := make([]string, 0, len(m))
	for id, lvl := range m {
		if lvl > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(sb, "%s:%d", id, m[id])
	}
}

func copyIntMap(m map[string]int) map[string]int {
	c := make(map[string]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
