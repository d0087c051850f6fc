package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoeffsFor_AllKindsPresent(t *testing.T) {
	for _, kind := range []HunterKind{Borge, Ozzy, Knox} {
		c := CoeffsFor(kind)
		require.NotNil(t, c, "missing coefficient table for %s", kind)
		assert.Greater(t, c.Hunter.HPBase, 0.0)
		assert.Greater(t, c.Enemy.HPBase, 0.0)
		assert.Greater(t, c.Loot.GrowthRate, 1.0)
	}
}

func TestLoadCoeffsFile(t *testing.T) {
	// GIVEN a partial override table keyed by kind name
	dir := t.TempDir()
	path := filepath.Join(dir, "coeffs.yaml")
	data := `
Borge:
  hunter:
    hp_base: 99.0
  loot:
    growth_rate: 1.10
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	overrides, err := LoadCoeffsFile(path)
	require.NoError(t, err)
	require.Contains(t, overrides, Borge)
	assert.InDelta(t, 99.0, overrides[Borge].Hunter.HPBase, 1e-9)
	assert.InDelta(t, 1.10, overrides[Borge].Loot.GrowthRate, 1e-9)
}

func TestLoadCoeffsFile_UnknownKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coeffs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Gandalf:\n  hunter:\n    hp_base: 1\n"), 0o644))

	_, err := LoadCoeffsFile(path)
	assert.Error(t, err)
}
