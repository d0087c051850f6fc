package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	sim "github.com/hunter-sim/hunter-sim/sim"
)

// buildFile is the YAML build format. The JSON path below accepts the flat
// export format of the game's save tooling instead.
type buildFile struct {
	Hunter       string             `yaml:"hunter"`
	Level        int                `yaml:"level"`
	Talents      map[string]int     `yaml:"talents"`
	Attributes   map[string]int     `yaml:"attributes"`
	Relics       map[string]int     `yaml:"relics"`
	Inscriptions map[string]int     `yaml:"inscriptions"`
	Gadgets      map[string]int     `yaml:"gadgets"`
	Gems         map[string]int     `yaml:"gems"`
	Bonuses      map[string]float64 `yaml:"bonuses"`
}

// loadBuildFile reads a build from disk, dispatching on extension.
func loadBuildFile(path string) (*sim.Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".json" {
		return parseJSONBuild(data)
	}
	return parseYAMLBuild(data)
}

func parseYAMLBuild(data []byte) (*sim.Build, error) {
	var f buildFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse build file: %w", err)
	}
	kind, err := sim.ParseHunterKind(f.Hunter)
	if err != nil {
		return nil, err
	}
	return sim.NewBuild(kind, f.Level, f.Talents, f.Attributes,
		sim.WithRelics(f.Relics),
		sim.WithInscriptions(f.Inscriptions),
		sim.WithGadgets(f.Gadgets),
		sim.WithGems(f.Gems),
		sim.WithBonuses(f.Bonuses),
	)
}

// parseJSONBuild reads the flat JSON export: top-level "hunter" and "level"
// plus id→level objects for each allocation group.
func parseJSONBuild(data []byte) (*sim.Build, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse build file: invalid JSON")
	}
	root := gjson.ParseBytes(data)

	kind, err := sim.ParseHunterKind(root.Get("hunter").String())
	if err != nil {
		return nil, err
	}
	level := int(root.Get("level").Int())

	intMap := func(key string) map[string]int {
		m := map[string]int{}
		root.Get(key).ForEach(func(k, v gjson.Result) bool {
			m[k.String()] = int(v.Int())
			return true
		})
		return m
	}
	bonuses := map[string]float64{}
	root.Get("bonuses").ForEach(func(k, v gjson.Result) bool {
		bonuses[k.String()] = v.Float()
		return true
	})

	return sim.NewBuild(kind, level, intMap("talents"), intMap("attributes"),
		sim.WithRelics(intMap("relics")),
		sim.WithInscriptions(intMap("inscriptions")),
		sim.WithGadgets(intMap("gadgets")),
		sim.WithGems(intMap("gems")),
		sim.WithBonuses(bonuses),
	)
}
