package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/hunter-sim/hunter-sim/sim"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBuildFile_YAML(t *testing.T) {
	path := writeTemp(t, "build.yaml", `
hunter: Borge
level: 30
talents:
  impeccable_impacts: 5
attributes:
  hp: 40
  power: 30
bonuses:
  loot_mult: 1.25
`)
	b, err := loadBuildFile(path)
	require.NoError(t, err)
	assert.Equal(t, sim.Borge, b.Kind)
	assert.Equal(t, 30, b.Level)
	assert.Equal(t, 5, b.Talent("impeccable_impacts"))
	assert.Equal(t, 40, b.Attribute("hp"))
	assert.InDelta(t, 1.25, b.Bonus("loot_mult"), 1e-9)
}

func TestLoadBuildFile_JSON(t *testing.T) {
	// The flat export format the game tooling produces.
	path := writeTemp(t, "build.json", `{
  "hunter": "ozzy",
  "level": 20,
  "talents": {"multistriker": 4},
  "attributes": {"hp": 10, "living_off_the_land": 5},
  "bonuses": {"xp_mult": 2.0}
}`)
	b, err := loadBuildFile(path)
	require.NoError(t, err)
	assert.Equal(t, sim.Ozzy, b.Kind)
	assert.Equal(t, 20, b.Level)
	assert.Equal(t, 4, b.Talent("multistriker"))
	assert.Equal(t, 5, b.Attribute("living_off_the_land"))
	assert.InDelta(t, 2.0, b.Bonus("xp_mult"), 1e-9)
}

func TestLoadBuildFile_InvalidAllocationRejected(t *testing.T) {
	// Loading runs full validation: over-budget files fail here, not at
	// simulation time.
	path := writeTemp(t, "build.yaml", `
hunter: Borge
level: 1
attributes:
  hp: 100
`)
	_, err := loadBuildFile(path)
	require.Error(t, err)
	var verr *sim.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLoadBuildFile_BadJSON(t *testing.T) {
	path := writeTemp(t, "build.json", `{not json`)
	_, err := loadBuildFile(path)
	assert.Error(t, err)
}
