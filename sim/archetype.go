package sim

import (
	"fmt"
	"sort"
)

// HunterKind is the closed set of character archetypes. Kind-specific combat
// mechanics are dispatched over this tag (see hunter.go), never through
// interface hierarchies.
type HunterKind int

const (
	Borge HunterKind = iota
	Ozzy
	Knox
)

func (k HunterKind) String() string {
	switch k {
	case Borge:
		return "Borge"
	case Ozzy:
		return "Ozzy"
	case Knox:
		return "Knox"
	default:
		return fmt.Sprintf("HunterKind(%d)", int(k))
	}
}

// ParseHunterKind parses a case-insensitive kind name.
func ParseHunterKind(s string) (HunterKind, error) {
	switch s {
	case "Borge", "borge":
		return Borge, nil
	case "Ozzy", "ozzy":
		return Ozzy, nil
	case "Knox", "knox":
		return Knox, nil
	default:
		return 0, fmt.Errorf("unknown hunter kind %q (want Borge, Ozzy or Knox)", s)
	}
}

// Gate is an unlock prerequisite: the referenced id must hold at least
// Level points before the gated id may hold any.
type Gate struct {
	ID    string
	Level int
}

// TalentDef bounds one talent. Max is the per-talent level cap.
type TalentDef struct {
	Max      int
	Requires *Gate
}

// AttributeDef bounds one attribute. Max == 0 means no per-id cap (the
// attribute-point budget is the only bound).
type AttributeDef struct {
	Max      int
	Requires *Gate
}

// Catalog is the allocation space for one hunter kind: which ids exist,
// their caps and their unlock gates. Catalogs are immutable package data.
type Catalog struct {
	Kind       HunterKind
	Talents    map[string]TalentDef
	Attributes map[string]AttributeDef

	talentIDs    []string // sorted, for deterministic iteration
	attributeIDs []string
}

// TalentIDs returns the talent ids in sorted order.
func (c *Catalog) TalentIDs() []string { return c.talentIDs }

// AttributeIDs returns the attribute ids in sorted order.
func (c *Catalog) AttributeIDs() []string { return c.attributeIDs }

func newCatalog(kind HunterKind, talents map[string]TalentDef, attributes map[string]AttributeDef) *Catalog {
	c := &Catalog{Kind: kind, Talents: talents, Attributes: attributes}
	for id := range talents {
		c.talentIDs = append(c.talentIDs, id)
	}
	for id := range attributes {
		c.attributeIDs = append(c.attributeIDs, id)
	}
	sort.Strings(c.talentIDs)
	sort.Strings(c.attributeIDs)
	return c
}

// Base combat stats are allocatable attributes with no per-id cap; the
// 3x-level budget is their only bound. Named attribute trees carry caps and
// unlock gates.
var borgeCatalog = newCatalog(Borge,
	map[string]TalentDef{
		"impeccable_impacts":    {Max: 10},
		"death_is_my_companion": {Max: 2, Requires: &Gate{ID: "impeccable_impacts", Level: 3}},
		"life_of_the_hunt":      {Max: 5, Requires: &Gate{ID: "death_is_my_companion", Level: 1}},
		"unfair_advantage":      {Max: 5},
		"omen_of_defeat":        {Max: 10},
		"call_me_lucky_loot":    {Max: 5},
		"presence_of_god":       {Max: 10},
		"fires_of_war":          {Max: 5, Requires: &Gate{ID: "presence_of_god", Level: 5}},
	},
	map[string]AttributeDef{
		"hp":               {},
		"power":            {},
		"regen":            {},
		"damage_reduction": {},
		"evade_chance":     {},
		"effect_chance":    {},
		"special_chance":   {},
		"special_damage":   {},
		"speed":            {Max: 50},

		"soul_of_ares":       {Max: 15},
		"essence_of_ylith":   {Max: 20},
		"spartan_lineage":    {Max: 10},
		"explosive_punches":  {Max: 12, Requires: &Gate{ID: "spartan_lineage", Level: 1}},
		"weakspot_analysis":  {Max: 10, Requires: &Gate{ID: "explosive_punches", Level: 1}},
		"superior_sensors":   {Max: 12},
		"book_of_baal":       {Max: 9},
		"born_for_battle":    {Max: 5, Requires: &Gate{ID: "book_of_baal", Level: 3}},
		"helltouch_barrier":  {Max: 10},
		"lifedrain_inhalers": {Max: 10},
		"timeless_mastery":   {Max: 5},
	})

var ozzyCatalog = newCatalog(Ozzy,
	map[string]TalentDef{
		"multistriker":          {Max: 10},
		"death_is_my_companion": {Max: 2, Requires: &Gate{ID: "multistriker", Level: 3}},
		"tricksters_boon":       {Max: 5},
		"unfair_advantage":      {Max: 5},
		"thousand_needles":      {Max: 10},
		"echo_bullets":          {Max: 5, Requires: &Gate{ID: "thousand_needles", Level: 5}},
		"crippling_shots":       {Max: 5},
		"omen_of_decay":         {Max: 10},
		"presence_of_god":       {Max: 10},
	},
	map[string]AttributeDef{
		"hp":               {},
		"power":            {},
		"regen":            {},
		"damage_reduction": {},
		"evade_chance":     {},
		"effect_chance":    {},
		"special_chance":   {},
		"special_damage":   {},
		"speed":            {Max: 50},

		"living_off_the_land":      {Max: 15},
		"exo_piercers":             {Max: 12},
		"wings_of_ibu":             {Max: 10},
		"dance_of_dashes":          {Max: 5, Requires: &Gate{ID: "wings_of_ibu", Level: 3}},
		"shimmering_scorpion":      {Max: 9},
		"vectid_elixir":            {Max: 5, Requires: &Gate{ID: "shimmering_scorpion", Level: 1}},
		"extermination_protocol":   {Max: 12},
		"soul_of_snek":             {Max: 10},
		"gift_of_medusa":           {Max: 10},
		"cycle_of_death":           {Max: 10},
		"deal_with_death":          {Max: 10, Requires: &Gate{ID: "cycle_of_death", Level: 3}},
		"blessings_of_the_sisters": {Max: 3},
		"timeless_mastery":         {Max: 5},
	})

var knoxCatalog = newCatalog(Knox,
	map[string]TalentDef{
		"calypsos_advantage":    {Max: 5},
		"death_is_my_companion": {Max: 2, Requires: &Gate{ID: "calypsos_advantage", Level: 2}},
		"unfair_advantage":      {Max: 5},
		"omen_of_defeat":        {Max: 10},
		"presence_of_god":       {Max: 10},
		"ghost_bullets":         {Max: 15},
		"finishing_move":        {Max: 5, Requires: &Gate{ID: "ghost_bullets", Level: 5}},
	},
	map[string]AttributeDef{
		"hp":                    {},
		"power":                 {},
		"regen":                 {},
		"damage_reduction":      {},
		"block_chance":          {},
		"effect_chance":         {},
		"charge_chance":         {},
		"charge_gained":         {},
		"reload_time":           {Max: 50},
		"projectiles_per_salvo": {Max: 4},

		"release_the_kraken":      {Max: 20},
		"a_pirates_life_for_knox": {Max: 15},
		"serious_efficiency":      {Max: 12},
		"shield_of_poseidon":      {Max: 10},
		"space_pirate_armory":     {Max: 10, Requires: &Gate{ID: "shield_of_poseidon", Level: 2}},
		"soul_amplification":      {Max: 10},
		"fortification_elixir":    {Max: 10},
		"timeless_mastery":        {Max: 5},
	})

// CatalogFor returns the immutable catalog for a hunter kind.
func CatalogFor(kind HunterKind) *Catalog {
	switch kind {
	case Borge:
		return borgeCatalog
	case Ozzy:
		return ozzyCatalog
	case Knox:
		return knoxCatalog
	default:
		return nil
	}
}
