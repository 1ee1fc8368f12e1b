package vfs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// TestOverlayReadsFallThrough checks that reads reach the physical layer
// when the memory layer has no entry for the path.
func TestOverlayReadsFallThrough(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "addons/main/config.cpp", []byte("class Main {};"), 0o644))

	o := NewOverlayOver(base)

	contents, err := afero.ReadFile(o.Fs(), "addons/main/config.cpp")
	require.NoError(t, err)
	require.Equal(t, "class Main {};", string(contents))
}

// TestOverlayWritesStayInMemory checks that staged writes never reach the base.
func TestOverlayWritesStayInMemory(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "addons/main/config.cpp", []byte("original"), 0o644))

	o := NewOverlayOver(base)
	require.NoError(t, afero.WriteFile(o.Fs(), "addons/main/config.cpp", []byte("staged"), 0o644))

	// The union sees the staged version.
	contents, err := afero.ReadFile(o.Fs(), "addons/main/config.cpp")
	require.NoError(t, err)
	require.Equal(t, "staged", string(contents))

	// The physical layer still has the original.
	contents, err = afero.ReadFile(base, "addons/main/config.cpp")
	require.NoError(t, err)
	require.Equal(t, "original", string(contents))
}

// TestOverlayDiscard drops staged writes and restores fall-through reads.
func TestOverlayDiscard(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "mod.cpp", []byte("original"), 0o644))

	o := NewOverlayOver(base)
	require.NoError(t, afero.WriteFile(o.Fs(), "mod.cpp", []byte("staged"), 0o644))
	require.NoError(t, afero.WriteFile(o.Fs(), "new.cpp", []byte("only staged"), 0o644))

	o.Discard()

	contents, err := afero.ReadFile(o.Fs(), "mod.cpp")
	require.NoError(t, err)
	require.Equal(t, "original", string(contents))

	_, err = o.Fs().Stat("new.cpp")
	require.Error(t, err)
}

// TestCopyFileAcrossFilesystems streams a file between two backends.
func TestCopyFileAcrossFilesystems(t *testing.T) {
	t.Parallel()

	src := afero.NewMemMapFs()
	dst := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(src, "addons/main.pbo", []byte("packed"), 0o644))
	require.NoError(t, dst.MkdirAll("release/addons", 0o755))

	require.NoError(t, CopyFile(src, "addons/main.pbo", dst, "release/addons/main.pbo"))

	contents, err := afero.ReadFile(dst, "release/addons/main.pbo")
	require.NoError(t, err)
	require.Equal(t, "packed", string(contents))

	// Missing source surfaces an error.
	require.Error(t, CopyFile(src, "addons/missing.pbo", dst, "release/addons/missing.pbo"))
}
