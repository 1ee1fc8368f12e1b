package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and list normalization.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing name.
	p := new(Project)

	err := Validate(p)
	require.Error(t, err)

	// Duplicate lists are collapsed.
	p = &Project{
		Name:      "My Cool Mod",
		Optionals: []string{"tracers", "tracers", " "},
		Skip:      []string{"broken", "broken"},
	}

	require.NoError(t, Validate(p))
	require.Equal(t, []string{"tracers"}, p.Optionals)
	require.Equal(t, []string{"broken"}, p.Skip)
}

// TestDerivedNames verifies mod and key name fallbacks and overrides.
func TestDerivedNames(t *testing.T) {
	t.Parallel()

	p := &Project{Name: "My Cool Mod"}
	require.Equal(t, "MyCoolMod", p.ModName())
	require.Equal(t, "MyCoolMod", p.KeyName())

	p.ModNameOverride = "MCM"
	require.Equal(t, "MCM", p.ModName())
	require.Equal(t, "MCM", p.KeyName())

	p.KeyNameOverride = "mcm_release"
	require.Equal(t, "mcm_release", p.KeyName())
}

// TestSaveLoadRoundtrip ensures the descriptor is persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultProjectFilename)

	p := &Project{
		Name:            "My Cool Mod",
		Prefix:          "mcm",
		Version:         "1.2.3",
		Files:           []string{"*.md", "LICENSE"},
		ReusePrivateKey: true,
	}

	require.NoError(t, Save(path, p))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, p.Name, loaded.Name)
	require.Equal(t, p.Prefix, loaded.Prefix)
	require.Equal(t, p.Version, loaded.Version)
	require.Equal(t, p.Files, loaded.Files)
	require.True(t, loaded.ReusePrivateKey)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestFindRoot walks up from a nested directory to the descriptor location.
func TestFindRoot(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "addons", "main")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, Save(filepath.Join(dir, DefaultProjectFilename), &Project{Name: "Mod"}))

	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(nested))

	root, err := FindRoot()
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	expected, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	require.Equal(t, expected, resolved)
}
